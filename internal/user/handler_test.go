package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecloud/service/internal/db"
)

type fakeStore struct {
	users []User
	err   error
}

func (f *fakeStore) List(ctx context.Context) ([]User, error) {
	return f.users, f.err
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("get user: %w", db.ErrNotFound)
}

func newRouter(store Store) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.StripSlashes)
	r.Route("/api/users", NewHandler(store).Routes)
	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestList(t *testing.T) {
	ana := User{ID: uuid.New(), Username: "ana", Email: "ana@example.com", FirstName: "Ana", LastName: "Garcia"}
	h := newRouter(&fakeStore{users: []User{ana}})

	rec := get(h, "/api/users/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(
		`[{"id":%q,"username":"ana","email":"ana@example.com","firstName":"Ana","lastName":"Garcia"}]`, ana.ID),
		rec.Body.String())

	rec = get(newRouter(&fakeStore{}), "/api/users")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestList_StoreFailure(t *testing.T) {
	rec := get(newRouter(&fakeStore{err: fmt.Errorf("list users: connection refused")}), "/api/users")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGet(t *testing.T) {
	ana := User{ID: uuid.New(), Username: "ana"}
	h := newRouter(&fakeStore{users: []User{ana}})

	rec := get(h, "/api/users/"+ana.ID.String()+"/")
	require.Equal(t, http.StatusOK, rec.Code)
	var got User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, ana, got)

	assert.Equal(t, http.StatusNotFound, get(h, "/api/users/"+uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/api/users/ana").Code)
}

func TestReadOnly(t *testing.T) {
	h := newRouter(&fakeStore{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/users", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNullable(t *testing.T) {
	var empty Nullable
	assert.Nil(t, empty.User())

	id := uuid.New()
	name := "ana"
	u := (&Nullable{ID: &id, Username: &name}).User()
	require.NotNil(t, u)
	assert.Equal(t, User{ID: id, Username: "ana"}, *u)
}
