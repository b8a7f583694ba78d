package group

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
	List(ctx context.Context) ([]Group, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Group, error)
	Create(ctx context.Context, in Input) (*Group, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Group, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler holds HTTP handlers for group endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a new group Handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts the group endpoints on r.
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
//	@Summary	List groups
//	@Tags		groups
//	@Produce	json
//	@Success	200	{array}		Group
//	@Failure	500	{object}	response.ErrorBody
//	@Router		/groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.List(r.Context())
	if err != nil {
		response.StoreError(w, err, "group")
		return
	}
	if groups == nil {
		groups = []Group{}
	}
	response.OK(w, groups)
}

// Get godoc
//
//	@Summary	Get group
//	@Tags		groups
//	@Produce	json
//	@Param		id	path		string	true	"Group ID"
//	@Success	200	{object}	Group
//	@Failure	400	{object}	response.ErrorBody
//	@Failure	404	{object}	response.ErrorBody
//	@Router		/groups/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid group id")
		return
	}

	g, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "group")
		return
	}
	response.OK(w, g)
}

// Create godoc
//
//	@Summary		Create group
//	@Description	groupType defaults to "family".
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Input	true	"Group"
//	@Success		201		{object}	Group
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	g, err := h.store.Create(r.Context(), in)
	if err != nil {
		response.StoreError(w, err, "group")
		return
	}
	response.Created(w, g)
}

// Replace godoc
//
//	@Summary	Replace group
//	@Tags		groups
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string	true	"Group ID"
//	@Param		body	body		Input	true	"Group"
//	@Success	200		{object}	Group
//	@Failure	400		{object}	response.ErrorBody
//	@Failure	404		{object}	response.ErrorBody
//	@Router		/groups/{id} [put]
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid group id")
		return
	}

	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	g, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "group")
		return
	}
	response.OK(w, g)
}

// Update godoc
//
//	@Summary		Update group
//	@Description	Applies only the fields present in the body.
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"Group ID"
//	@Param			body	body		Input	true	"Fields to change"
//	@Success		200		{object}	Group
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/groups/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid group id")
		return
	}

	current, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "group")
		return
	}

	in := current.Input()
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	g, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "group")
		return
	}
	response.OK(w, g)
}

// Delete godoc
//
//	@Summary		Delete group
//	@Description	Also deletes the group's profiles, documents and tasks.
//	@Tags			groups
//	@Param			id	path	string	true	"Group ID"
//	@Success		204
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/groups/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid group id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		response.StoreError(w, err, "group")
		return
	}
	response.NoContent(w)
}
