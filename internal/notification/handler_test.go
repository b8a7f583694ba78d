package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecloud/service/internal/db"
)

type fakeStore struct {
	items map[uuid.UUID]*Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[uuid.UUID]*Notification)}
}

func (f *fakeStore) List(ctx context.Context, userID *uuid.UUID) ([]Notification, error) {
	var out []Notification
	for _, n := range f.items {
		if userID == nil || n.UserID == *userID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("get notification: %w", db.ErrNotFound)
	}
	cp := *n
	return &cp, nil
}

func (f *fakeStore) Create(ctx context.Context, in Input) (*Notification, error) {
	n := &Notification{ID: uuid.New(), UserID: in.UserID, TaskID: in.TaskID, Message: in.Message, Read: in.Read, SentAt: time.Now()}
	f.items[n.ID] = n
	return f.GetByID(ctx, n.ID)
}

func (f *fakeStore) Update(ctx context.Context, id uuid.UUID, in Input) (*Notification, error) {
	n, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("update notification: %w", db.ErrNotFound)
	}
	n.UserID, n.TaskID, n.Message, n.Read = in.UserID, in.TaskID, in.Message, in.Read
	return f.GetByID(ctx, id)
}

func (f *fakeStore) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("mark notification read: %w", db.ErrNotFound)
	}
	n.Read = true
	return f.GetByID(ctx, id)
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return fmt.Errorf("delete notification: %w", db.ErrNotFound)
	}
	delete(f.items, id)
	return nil
}

func newRouter(store Store) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.StripSlashes)
	r.Route("/api/notifications", NewHandler(store).Routes)
	return r
}

func send(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func create(t *testing.T, h http.Handler, userID uuid.UUID, msg string) Notification {
	t.Helper()
	rec := send(h, http.MethodPost, "/api/notifications/",
		fmt.Sprintf(`{"userId":%q,"taskId":%q,"message":%q}`, userID, uuid.New(), msg))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	return n
}

func TestCreateAndMarkRead(t *testing.T) {
	h := newRouter(newFakeStore())
	n := create(t, h, uuid.New(), "Electricity bill is due tomorrow")
	assert.False(t, n.Read)

	for i := 0; i < 2; i++ {
		rec := send(h, http.MethodPost, "/api/notifications/"+n.ID.String()+"/read/", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got Notification
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.True(t, got.Read)
		assert.Equal(t, n.Message, got.Message)
	}

	assert.Equal(t, http.StatusNotFound, send(h, http.MethodPost, "/api/notifications/"+uuid.NewString()+"/read", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(h, http.MethodPost, "/api/notifications/x/read", "").Code)
}

func TestCreate_Validation(t *testing.T) {
	h := newRouter(newFakeStore())

	rec := send(h, http.MethodPost, "/api/notifications",
		fmt.Sprintf(`{"userId":%q,"taskId":%q,"message":%q}`, uuid.New(), uuid.New(), strings.Repeat("m", 256)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "message must be at most 255 characters")

	rec = send(h, http.MethodPost, "/api/notifications", fmt.Sprintf(`{"userId":%q,"message":"hi"}`, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "taskId is required")
}

func TestList_FilterByUser(t *testing.T) {
	h := newRouter(newFakeStore())
	ana, luis := uuid.New(), uuid.New()
	create(t, h, ana, "one")
	create(t, h, ana, "two")
	create(t, h, luis, "three")

	rec := send(h, http.MethodGet, "/api/notifications?userId="+ana.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
	for _, n := range list {
		assert.Equal(t, ana, n.UserID)
	}

	assert.Equal(t, http.StatusBadRequest, send(h, http.MethodGet, "/api/notifications?userId=ana", "").Code)
}

func TestPatchMessage(t *testing.T) {
	h := newRouter(newFakeStore())
	n := create(t, h, uuid.New(), "old")

	rec := send(h, http.MethodPatch, "/api/notifications/"+n.ID.String(), `{"message":"new"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var got Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "new", got.Message)
	assert.Equal(t, n.UserID, got.UserID)
	assert.Equal(t, n.TaskID, got.TaskID)
}
