package profile

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
	List(ctx context.Context) ([]Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	Create(ctx context.Context, in Input) (*Profile, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler holds HTTP handlers for profile endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a new profile Handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts the profile endpoints on r.
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
//	@Summary	List profiles
//	@Tags		profiles
//	@Produce	json
//	@Success	200	{array}		Profile
//	@Failure	500	{object}	response.ErrorBody
//	@Router		/profiles [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.List(r.Context())
	if err != nil {
		response.StoreError(w, err, "profile")
		return
	}
	if profiles == nil {
		profiles = []Profile{}
	}
	response.OK(w, profiles)
}

// Get godoc
//
//	@Summary	Get profile
//	@Tags		profiles
//	@Produce	json
//	@Param		id	path		string	true	"Profile ID"
//	@Success	200	{object}	Profile
//	@Failure	400	{object}	response.ErrorBody
//	@Failure	404	{object}	response.ErrorBody
//	@Router		/profiles/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid profile id")
		return
	}

	p, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "profile")
		return
	}
	response.OK(w, p)
}

// Create godoc
//
//	@Summary		Create profile
//	@Description	role defaults to "member". A user can hold only one profile; a second one yields 409.
//	@Tags			profiles
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Input	true	"Profile"
//	@Success		201		{object}	Profile
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		409		{object}	response.ErrorBody
//	@Router			/profiles [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	p, err := h.store.Create(r.Context(), in)
	if err != nil {
		response.StoreError(w, err, "profile")
		return
	}
	response.Created(w, p)
}

// Replace godoc
//
//	@Summary	Replace profile
//	@Tags		profiles
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string	true	"Profile ID"
//	@Param		body	body		Input	true	"Profile"
//	@Success	200		{object}	Profile
//	@Failure	400		{object}	response.ErrorBody
//	@Failure	404		{object}	response.ErrorBody
//	@Router		/profiles/{id} [put]
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid profile id")
		return
	}

	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	p, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "profile")
		return
	}
	response.OK(w, p)
}

// Update godoc
//
//	@Summary		Update profile
//	@Description	Applies only the fields present in the body.
//	@Tags			profiles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"Profile ID"
//	@Param			body	body		Input	true	"Fields to change"
//	@Success		200		{object}	Profile
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/profiles/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid profile id")
		return
	}

	current, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "profile")
		return
	}

	in := current.Input()
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	p, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "profile")
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete profile
//	@Tags			profiles
//	@Param			id	path	string	true	"Profile ID"
//	@Success		204
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/profiles/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid profile id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		response.StoreError(w, err, "profile")
		return
	}
	response.NoContent(w)
}
