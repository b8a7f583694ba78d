package task

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/homecloud/service/internal/request"
	"github.com/homecloud/service/internal/response"
)

// Store is the persistence used by Handler.
type Store interface {
	List(ctx context.Context, f Filter) ([]Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	Create(ctx context.Context, in Input) (*Task, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler holds HTTP handlers for task endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a new task Handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts the task endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Replace)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// List godoc
//
//	@Summary		List tasks
//	@Description	Newest first, optionally filtered by group and status.
//	@Tags			tasks
//	@Produce		json
//	@Param			groupId	query		string	false	"Group ID"
//	@Param			status	query		string	false	"Status"	Enums(pending, in_progress, completed)
//	@Success		200		{array}		Task
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/tasks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var f Filter
	groupID, ok, err := request.QueryID(r, "groupId")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if ok {
		f.GroupID = &groupID
	}

	switch status := r.URL.Query().Get("status"); status {
	case "", StatusPending, StatusInProgress, StatusCompleted:
		f.Status = status
	default:
		response.BadRequest(w, "status must be one of: pending, in_progress, completed")
		return
	}

	tasks, err := h.store.List(r.Context(), f)
	if err != nil {
		response.StoreError(w, err, "task")
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	response.OK(w, tasks)
}

// Get godoc
//
//	@Summary	Get task
//	@Tags		tasks
//	@Produce	json
//	@Param		id	path		string	true	"Task ID"
//	@Success	200	{object}	Task
//	@Failure	400	{object}	response.ErrorBody
//	@Failure	404	{object}	response.ErrorBody
//	@Router		/tasks/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid task id")
		return
	}

	t, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "task")
		return
	}
	response.OK(w, t)
}

// Create godoc
//
//	@Summary		Create task
//	@Description	status defaults to "pending". dueDate uses YYYY-MM-DD.
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Input	true	"Task"
//	@Success		201		{object}	Task
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/tasks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	t, err := h.store.Create(r.Context(), in)
	if err != nil {
		response.StoreError(w, err, "task")
		return
	}
	response.Created(w, t)
}

// Replace godoc
//
//	@Summary	Replace task
//	@Tags		tasks
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string	true	"Task ID"
//	@Param		body	body		Input	true	"Task"
//	@Success	200		{object}	Task
//	@Failure	400		{object}	response.ErrorBody
//	@Failure	404		{object}	response.ErrorBody
//	@Router		/tasks/{id} [put]
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid task id")
		return
	}

	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	t, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "task")
		return
	}
	response.OK(w, t)
}

// Update godoc
//
//	@Summary		Update task
//	@Description	Applies only the fields present in the body.
//	@Tags			tasks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"Task ID"
//	@Param			body	body		Input	true	"Fields to change"
//	@Success		200		{object}	Task
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/tasks/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid task id")
		return
	}

	current, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "task")
		return
	}

	in := current.Input()
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	t, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "task")
		return
	}
	response.OK(w, t)
}

// Delete godoc
//
//	@Summary		Delete task
//	@Description	Also deletes the task's notifications.
//	@Tags			tasks
//	@Param			id	path	string	true	"Task ID"
//	@Success		204
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/tasks/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid task id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		response.StoreError(w, err, "task")
		return
	}
	response.NoContent(w)
}
