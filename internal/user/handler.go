package user

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
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// Handler holds HTTP handlers for user-related endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a new user Handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts the user endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// List godoc
//
//	@Summary		List users
//	@Description	Returns every user ordered by username.
//	@Tags			users
//	@Produce		json
//	@Success		200	{array}		User
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		response.StoreError(w, err, "user")
		return
	}
	if users == nil {
		users = []User{}
	}
	response.OK(w, users)
}

// Get godoc
//
//	@Summary		Get user
//	@Tags			users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	User
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	u, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "user")
		return
	}
	response.OK(w, u)
}
