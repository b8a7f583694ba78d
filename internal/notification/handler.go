package notification

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
	List(ctx context.Context, userID *uuid.UUID) ([]Notification, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	Create(ctx context.Context, in Input) (*Notification, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler holds HTTP handlers for notification endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a new notification Handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts the notification endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Replace)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/read", h.MarkRead)
}

// List godoc
//
//	@Summary		List notifications
//	@Description	Newest first, optionally restricted to one user.
//	@Tags			notifications
//	@Produce		json
//	@Param			userId	query		string	false	"User ID"
//	@Success		200		{array}		Notification
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	id, ok, err := request.QueryID(r, "userId")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if ok {
		userID = &id
	}

	notifications, err := h.store.List(r.Context(), userID)
	if err != nil {
		response.StoreError(w, err, "notification")
		return
	}
	if notifications == nil {
		notifications = []Notification{}
	}
	response.OK(w, notifications)
}

// Get godoc
//
//	@Summary	Get notification
//	@Tags		notifications
//	@Produce	json
//	@Param		id	path		string	true	"Notification ID"
//	@Success	200	{object}	Notification
//	@Failure	400	{object}	response.ErrorBody
//	@Failure	404	{object}	response.ErrorBody
//	@Router		/notifications/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	n, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "notification")
		return
	}
	response.OK(w, n)
}

// Create godoc
//
//	@Summary		Create notification
//	@Tags			notifications
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Input	true	"Notification"
//	@Success		201		{object}	Notification
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/notifications [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	n, err := h.store.Create(r.Context(), in)
	if err != nil {
		response.StoreError(w, err, "notification")
		return
	}
	response.Created(w, n)
}

// Replace godoc
//
//	@Summary	Replace notification
//	@Tags		notifications
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string	true	"Notification ID"
//	@Param		body	body		Input	true	"Notification"
//	@Success	200		{object}	Notification
//	@Failure	400		{object}	response.ErrorBody
//	@Failure	404		{object}	response.ErrorBody
//	@Router		/notifications/{id} [put]
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	n, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "notification")
		return
	}
	response.OK(w, n)
}

// Update godoc
//
//	@Summary		Update notification
//	@Description	Applies only the fields present in the body.
//	@Tags			notifications
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"Notification ID"
//	@Param			body	body		Input	true	"Fields to change"
//	@Success		200		{object}	Notification
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/notifications/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	current, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "notification")
		return
	}

	in := current.Input()
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	n, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "notification")
		return
	}
	response.OK(w, n)
}

// Delete godoc
//
//	@Summary		Delete notification
//	@Tags			notifications
//	@Param			id	path	string	true	"Notification ID"
//	@Success		204
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/notifications/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		response.StoreError(w, err, "notification")
		return
	}
	response.NoContent(w)
}

// MarkRead godoc
//
//	@Summary		Mark notification read
//	@Description	Idempotent.
//	@Tags			notifications
//	@Produce		json
//	@Param			id	path		string	true	"Notification ID"
//	@Success		200	{object}	Notification
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/notifications/{id}/read [post]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid notification id")
		return
	}

	n, err := h.store.MarkRead(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "notification")
		return
	}
	response.OK(w, n)
}
