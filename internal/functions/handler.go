// Package functions implements the HTTP endpoints served by the Azure
// Functions custom handler (cmd/functions).
package functions

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/homecloud/service/internal/response"
)

const (
	// APIVersion is reported by the echo endpoint.
	APIVersion = "v1"

	// Version is the functions app release reported by the health endpoint.
	Version = "1.0.0"

	maxEchoBody = 1 << 20
)

// Handler holds the function endpoints.
type Handler struct {
	appName     string
	environment string
	now         func() time.Time
}

// NewHandler creates a Handler reporting appName and environment in health checks.
func NewHandler(appName, environment string) *Handler {
	return &Handler{appName: appName, environment: environment, now: time.Now}
}

// Routes mounts the function endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Post("/echo", h.Echo)
	r.Get("/http_trigger", h.HTTPTrigger)
	r.Post("/http_trigger", h.HTTPTrigger)
}

type healthData struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	FunctionApp string    `json:"functionApp"`
	Environment string    `json:"environment"`
	Version     string    `json:"version"`
}

type echoData struct {
	APIVersion string      `json:"apiVersion"`
	EchoedData interface{} `json:"echoedData"`
	Timestamp  time.Time   `json:"timestamp"`
	Method     string      `json:"method"`
	URL        string      `json:"url"`
}

// Health reports that the functions host is up.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	log.Println("functions: health endpoint called")
	response.OK(w, healthData{
		Status:      "healthy",
		Timestamp:   h.now().UTC(),
		FunctionApp: h.appName,
		Environment: h.environment,
		Version:     Version,
	})
}

// Echo returns the JSON request body together with request metadata.
func (h *Handler) Echo(w http.ResponseWriter, r *http.Request) {
	var payload interface{}
	if err := decodeSingle(io.LimitReader(r.Body, maxEchoBody), &payload); err != nil {
		log.Printf("functions: invalid JSON received: %v", err)
		response.JSON(w, http.StatusBadRequest, response.ErrorBody{
			Error:   "Invalid JSON format",
			Message: "Please send valid JSON in the request body",
		})
		return
	}

	response.OK(w, echoData{
		APIVersion: APIVersion,
		EchoedData: payload,
		Timestamp:  h.now().UTC(),
		Method:     r.Method,
		URL:        requestURL(r),
	})
}

// decodeSingle decodes exactly one JSON value from body; anything but
// whitespace after it is an error.
func decodeSingle(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

// HTTPTrigger greets the caller by the name given in the query string or in
// a JSON body.
func (h *Handler) HTTPTrigger(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxEchoBody)).Decode(&body); err == nil {
			name = body.Name
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if name == "" {
		_, _ = io.WriteString(w, "This HTTP triggered function executed successfully. "+
			"Pass a name in the query string or in the request body for a personalized response.")
		return
	}
	_, _ = fmt.Fprintf(w, "Hello, %s. This HTTP triggered function executed successfully.", name)
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
