package task

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
	tasks    []*Task
	lastList Filter
}

func (f *fakeStore) find(id uuid.UUID) *Task {
	for _, t := range f.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func fill(t *Task, in Input) {
	t.GroupID, t.DocumentID, t.Title, t.Description = in.GroupID, in.DocumentID, in.Title, in.Description
	t.DueDate, t.Amount, t.Status = in.DueDate, in.Amount, in.Status
	t.CreatedBy, t.AssignedTo = in.CreatedBy, in.AssignedTo
}

func (f *fakeStore) List(ctx context.Context, filter Filter) ([]Task, error) {
	f.lastList = filter
	var out []Task
	for i := len(f.tasks) - 1; i >= 0; i-- {
		t := f.tasks[i]
		if filter.GroupID != nil && t.GroupID != *filter.GroupID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t := f.find(id)
	if t == nil {
		return nil, fmt.Errorf("get task: %w", db.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) Create(ctx context.Context, in Input) (*Task, error) {
	t := &Task{ID: uuid.New(), CreatedAt: time.Now()}
	fill(t, in)
	f.tasks = append(f.tasks, t)
	return f.GetByID(ctx, t.ID)
}

func (f *fakeStore) Update(ctx context.Context, id uuid.UUID, in Input) (*Task, error) {
	t := f.find(id)
	if t == nil {
		return nil, fmt.Errorf("update task: %w", db.ErrNotFound)
	}
	fill(t, in)
	return f.GetByID(ctx, id)
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete task: %w", db.ErrNotFound)
}

func newRouter(store Store) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.StripSlashes)
	r.Route("/api/tasks", NewHandler(store).Routes)
	return r
}

func send(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) Task {
	t.Helper()
	var task Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task), rec.Body.String())
	return task
}

func TestCreate(t *testing.T) {
	h := newRouter(&fakeStore{})
	groupID, docID := uuid.New(), uuid.New()

	rec := send(h, http.MethodPost, "/api/tasks/", fmt.Sprintf(
		`{"groupId":%q,"documentId":%q,"title":"Pay electricity","dueDate":"2024-03-31","amount":125.5}`,
		groupID, docID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decodeTask(t, rec)
	assert.Equal(t, StatusPending, task.Status)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-03-31", *task.DueDate)
	require.NotNil(t, task.Amount)
	assert.InDelta(t, 125.5, *task.Amount, 0.001)
	require.NotNil(t, task.DocumentID)
	assert.Equal(t, docID, *task.DocumentID)

	rec = send(h, http.MethodPost, "/api/tasks", fmt.Sprintf(`{"groupId":%q,"title":"Call plumber"}`, groupID))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"dueDate":null`)
	assert.Contains(t, rec.Body.String(), `"amount":null`)
}

func TestCreate_Validation(t *testing.T) {
	h := newRouter(&fakeStore{})
	groupID := uuid.New()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", fmt.Sprintf(`{"groupId":%q}`, groupID), "title is required"},
		{"bad date", fmt.Sprintf(`{"groupId":%q,"title":"x","dueDate":"31/03/2024"}`, groupID), "dueDate must be a date in YYYY-MM-DD format"},
		{"negative amount", fmt.Sprintf(`{"groupId":%q,"title":"x","amount":-1}`, groupID), "amount is out of range"},
		{"huge amount", fmt.Sprintf(`{"groupId":%q,"title":"x","amount":100000000}`, groupID), "amount is out of range"},
		{"bad status", fmt.Sprintf(`{"groupId":%q,"title":"x","status":"done"}`, groupID), "status must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(h, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestList_Filters(t *testing.T) {
	store := &fakeStore{}
	h := newRouter(store)
	home, work := uuid.New(), uuid.New()

	for _, body := range []string{
		fmt.Sprintf(`{"groupId":%q,"title":"a"}`, home),
		fmt.Sprintf(`{"groupId":%q,"title":"b","status":"completed"}`, home),
		fmt.Sprintf(`{"groupId":%q,"title":"c"}`, work),
	} {
		require.Equal(t, http.StatusCreated, send(h, http.MethodPost, "/api/tasks", body).Code)
	}

	rec := send(h, http.MethodGet, "/api/tasks/?groupId="+home.String()+"&status=pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Title)
	require.NotNil(t, store.lastList.GroupID)
	assert.Equal(t, home, *store.lastList.GroupID)
	assert.Equal(t, StatusPending, store.lastList.Status)

	rec = send(h, http.MethodGet, "/api/tasks", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, "c", tasks[0].Title)

	assert.Equal(t, http.StatusBadRequest, send(h, http.MethodGet, "/api/tasks?status=done", "").Code)
	assert.Equal(t, http.StatusBadRequest, send(h, http.MethodGet, "/api/tasks?groupId=42", "").Code)
}

func TestPatch(t *testing.T) {
	h := newRouter(&fakeStore{})
	created := decodeTask(t, send(h, http.MethodPost, "/api/tasks", fmt.Sprintf(
		`{"groupId":%q,"documentId":%q,"title":"Renew warranty","amount":20}`, uuid.New(), uuid.New())))

	rec := send(h, http.MethodPatch, "/api/tasks/"+created.ID.String()+"/", `{"status":"in_progress","documentId":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	task := decodeTask(t, rec)
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Nil(t, task.DocumentID)
	assert.Equal(t, "Renew warranty", task.Title)
	require.NotNil(t, task.Amount)
	assert.InDelta(t, 20.0, *task.Amount, 0.001)
}
