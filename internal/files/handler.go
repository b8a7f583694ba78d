// Package files exposes the object storage gateway over HTTP.
package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/homecloud/service/internal/response"
	"github.com/homecloud/service/internal/storage"
)

const (
	maxUploadMemory = 32 << 20

	msgNotConfigured = "storage is not configured"
)

// Gateway is the subset of *storage.Gateway used by the handlers.
type Gateway interface {
	Ready() bool
	Status() storage.Status
	SelfTest(ctx context.Context) (*storage.SelfTestResult, error)
	List(ctx context.Context, prefix string) []storage.BlobDescriptor
	Upload(ctx context.Context, stream io.ReadSeeker, name, contentType string) (string, error)
	Download(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	URL(name string) (string, bool)
}

// Handler holds HTTP handlers for the file storage endpoints.
type Handler struct {
	gw Gateway
}

// NewHandler creates a new files Handler.
func NewHandler(gw Gateway) *Handler {
	return &Handler{gw: gw}
}

// Routes mounts the storage endpoints on r. Trailing slashes are stripped by
// the router middleware, so "/files/" and "/files" are the same route.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/status", h.Status)
	r.Get("/test", h.SelfTest)
	r.Get("/files", h.List)
	r.Post("/files/upload", h.Upload)
	r.Get("/files/{name}/download", h.Download)
	r.Delete("/files/{name}/delete", h.Delete)
	r.Get("/files/{name}/url", h.URL)
}

type selfTestData struct {
	Message string `json:"message" example:"storage self-test passed"`
	*storage.SelfTestResult
}

type selfTestFailure struct {
	Error         string `json:"error"`
	UploadSuccess bool   `json:"uploadSuccess"`
}

type listData struct {
	Files []storage.BlobDescriptor `json:"files"`
	Total int                      `json:"total" example:"3"`
}

type uploadData struct {
	Message     string `json:"message"     example:"file uploaded"`
	BlobName    string `json:"blobName"    example:"hello.txt"`
	URL         string `json:"url"         example:"https://acct.blob.core.windows.net/files/hello.txt"`
	ContentType string `json:"contentType" example:"text/plain"`
}

type urlData struct {
	BlobName string `json:"blobName" example:"hello.txt"`
	URL      string `json:"url"      example:"https://acct.blob.core.windows.net/files/hello.txt"`
}

type messageData struct {
	Message string `json:"message"`
}

// Status godoc
//
//	@Summary		Storage status
//	@Description	Reports whether the storage gateway is configured. Container and account names are null when it is not.
//	@Tags			storage
//	@Produce		json
//	@Success		200	{object}	storage.Status
//	@Router			/azure/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.gw.Status())
}

// SelfTest godoc
//
//	@Summary		Storage self-test
//	@Description	Uploads a small text file, downloads it again and compares the content.
//	@Tags			storage
//	@Produce		json
//	@Success		200	{object}	selfTestData
//	@Failure		500	{object}	selfTestFailure
//	@Router			/azure/test [get]
func (h *Handler) SelfTest(w http.ResponseWriter, r *http.Request) {
	if !h.gw.Ready() {
		response.ServerError(w, msgNotConfigured+"; check your environment variables")
		return
	}

	res, err := h.gw.SelfTest(r.Context())
	if err != nil {
		response.JSON(w, http.StatusInternalServerError, selfTestFailure{
			Error:         "self-test upload failed",
			UploadSuccess: false,
		})
		return
	}

	response.OK(w, selfTestData{Message: "storage self-test passed", SelfTestResult: res})
}

// List godoc
//
//	@Summary		List files
//	@Description	Lists stored objects whose name starts with prefix. Listing failures yield an empty list.
//	@Tags			storage
//	@Produce		json
//	@Param			prefix	query		string	false	"Name prefix"
//	@Success		200		{object}	listData
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/azure/files [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if !h.gw.Ready() {
		response.ServerError(w, msgNotConfigured)
		return
	}

	files := h.gw.List(r.Context(), r.URL.Query().Get("prefix"))
	response.OK(w, listData{Files: files, Total: len(files)})
}

// Upload godoc
//
//	@Summary		Upload file
//	@Description	Uploads the multipart field "file". The object is named after blob_name, or the uploaded file name when blob_name is empty. Existing objects are overwritten.
//	@Tags			storage
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"File to upload"
//	@Param			blob_name	formData	string	false	"Object name"
//	@Success		200			{object}	uploadData
//	@Failure		400			{object}	response.ErrorBody
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/azure/files/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.gw.Ready() {
		response.ServerError(w, msgNotConfigured)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file found in request")
		return
	}
	defer file.Close()

	name := r.FormValue("blob_name")
	if name == "" {
		name = header.Filename
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectURL, err := h.gw.Upload(r.Context(), file, name, contentType)
	if err != nil {
		response.ServerError(w, "failed to upload file")
		return
	}

	response.OK(w, uploadData{
		Message:     "file uploaded",
		BlobName:    name,
		URL:         objectURL,
		ContentType: contentType,
	})
}

// Download godoc
//
//	@Summary		Download file
//	@Description	Streams the object content as an attachment.
//	@Tags			storage
//	@Produce		octet-stream
//	@Param			name	path		string	true	"Object name"
//	@Success		200		{file}		binary
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/azure/files/{name}/download [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	if !h.gw.Ready() {
		response.ServerError(w, msgNotConfigured)
		return
	}

	name, ok := blobName(w, r)
	if !ok {
		return
	}

	data, err := h.gw.Download(r.Context(), name)
	if err != nil {
		if storage.KindOf(err) == storage.ErrNotFound {
			response.NotFound(w, "file not found")
			return
		}
		response.ServerError(w, "failed to download file")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete godoc
//
//	@Summary		Delete file
//	@Description	Deletes the object. Deleting a missing object is reported as a failure.
//	@Tags			storage
//	@Produce		json
//	@Param			name	path		string	true	"Object name"
//	@Success		200		{object}	messageData
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/azure/files/{name}/delete [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.gw.Ready() {
		response.ServerError(w, msgNotConfigured)
		return
	}

	name, ok := blobName(w, r)
	if !ok {
		return
	}

	if err := h.gw.Delete(r.Context(), name); err != nil {
		response.ServerError(w, fmt.Sprintf("failed to delete file %s", name))
		return
	}

	response.OK(w, messageData{Message: fmt.Sprintf("file %s deleted", name)})
}

// URL godoc
//
//	@Summary		File URL
//	@Description	Returns the object URL. Existence is not checked.
//	@Tags			storage
//	@Produce		json
//	@Param			name	path		string	true	"Object name"
//	@Success		200		{object}	urlData
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/azure/files/{name}/url [get]
func (h *Handler) URL(w http.ResponseWriter, r *http.Request) {
	if !h.gw.Ready() {
		response.ServerError(w, msgNotConfigured)
		return
	}

	name, ok := blobName(w, r)
	if !ok {
		return
	}

	u, ok := h.gw.URL(name)
	if !ok {
		response.NotFound(w, "file not found")
		return
	}

	response.OK(w, urlData{BlobName: name, URL: u})
}

// blobName reads the {name} path parameter. The value is unescaped only when
// chi matched it against the still-escaped r.URL.RawPath; a parameter taken
// from r.URL.Path is already decoded.
func blobName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "name")
	if routedOnRawPath(r) {
		var err error
		if name, err = url.PathUnescape(name); err != nil {
			name = ""
		}
	}
	if name == "" {
		response.BadRequest(w, "invalid file name")
		return "", false
	}
	return name, true
}

// routedOnRawPath reports whether chi routed r on r.URL.RawPath. chi prefers
// RawPath when it is set, but StripSlashes reroutes on the decoded
// r.URL.Path whenever it trims a trailing slash.
func routedOnRawPath(r *http.Request) bool {
	raw := r.URL.RawPath
	return raw != "" && !strings.HasSuffix(raw, "/")
}
