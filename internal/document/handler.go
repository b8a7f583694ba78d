package document

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
	List(ctx context.Context, groupID *uuid.UUID) ([]Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	Create(ctx context.Context, in Input) (*Document, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler holds HTTP handlers for document endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a new document Handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Routes mounts the document endpoints on r.
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
//	@Summary		List documents
//	@Description	Newest first, optionally restricted to one group.
//	@Tags			documents
//	@Produce		json
//	@Param			groupId	query		string	false	"Group ID"
//	@Success		200		{array}		Document
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/documents [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var groupID *uuid.UUID
	id, ok, err := request.QueryID(r, "groupId")
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if ok {
		groupID = &id
	}

	docs, err := h.store.List(r.Context(), groupID)
	if err != nil {
		response.StoreError(w, err, "document")
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	response.OK(w, docs)
}

// Get godoc
//
//	@Summary	Get document
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Document ID"
//	@Success	200	{object}	Document
//	@Failure	400	{object}	response.ErrorBody
//	@Failure	404	{object}	response.ErrorBody
//	@Router		/documents/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid document id")
		return
	}

	d, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "document")
		return
	}
	response.OK(w, d)
}

// Create godoc
//
//	@Summary		Create document
//	@Description	documentType defaults to "other"; processed starts false and is read-only.
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Input	true	"Document"
//	@Success		201		{object}	Document
//	@Failure		400		{object}	response.ErrorBody
//	@Router			/documents [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	d, err := h.store.Create(r.Context(), in)
	if err != nil {
		response.StoreError(w, err, "document")
		return
	}
	response.Created(w, d)
}

// Replace godoc
//
//	@Summary	Replace document
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string	true	"Document ID"
//	@Param		body	body		Input	true	"Document"
//	@Success	200		{object}	Document
//	@Failure	400		{object}	response.ErrorBody
//	@Failure	404		{object}	response.ErrorBody
//	@Router		/documents/{id} [put]
func (h *Handler) Replace(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid document id")
		return
	}

	var in Input
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	d, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "document")
		return
	}
	response.OK(w, d)
}

// Update godoc
//
//	@Summary		Update document
//	@Description	Applies only the fields present in the body.
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string	true	"Document ID"
//	@Param			body	body		Input	true	"Fields to change"
//	@Success		200		{object}	Document
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/documents/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid document id")
		return
	}

	current, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		response.StoreError(w, err, "document")
		return
	}

	in := current.Input()
	if err := request.Decode(r, &in); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	d, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		response.StoreError(w, err, "document")
		return
	}
	response.OK(w, d)
}

// Delete godoc
//
//	@Summary		Delete document
//	@Description	Tasks that reference the document keep existing without it.
//	@Tags			documents
//	@Param			id	path	string	true	"Document ID"
//	@Success		204
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/documents/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.ID(r)
	if err != nil {
		response.BadRequest(w, "invalid document id")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		response.StoreError(w, err, "document")
		return
	}
	response.NoContent(w)
}
