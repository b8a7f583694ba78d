package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecloud/service/internal/db"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"name": "Garcia"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name":"Garcia"}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStoreError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("get group: %w", db.ErrNotFound), http.StatusNotFound, "group not found"},
		{fmt.Errorf("create group: %w", db.ErrConflict), http.StatusConflict, "group already exists"},
		{fmt.Errorf("create group: %w", db.ErrInvalidReference), http.StatusBadRequest, "request references a missing or invalid record"},
		{errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		StoreError(rec, tt.err, "group")

		assert.Equal(t, tt.status, rec.Code)
		var body ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.msg, body.Error)
	}
}
