package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/homecloud/service/internal/db"
)

// StoreError translates a repository error into an HTTP error response.
// resource names the entity in client-facing messages ("group").
func StoreError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		NotFound(w, resource+" not found")
	case errors.Is(err, db.ErrConflict):
		Conflict(w, resource+" already exists")
	case errors.Is(err, db.ErrInvalidReference):
		BadRequest(w, "request references a missing or invalid record")
	default:
		log.Printf("%s: %v", resource, err)
		InternalError(w)
	}
}
