// Package storage defines the object storage gateway and the backends it can drive.
// The gateway is constructed once at startup and injected into HTTP handlers.
// STORAGE_PROVIDER selects Azure Blob Storage (default), an S3-compatible
// service through MinIO, or an in-process store for development.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/homecloud/service/internal/config"
)

// BlobDescriptor describes one stored object. Values are derived from the
// remote store on every call and never persisted locally.
type BlobDescriptor struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	URL          string    `json:"url"`
}

// Backend is the provider-specific client driven by the Gateway.
// Implementations report a missing object with an error wrapping ErrNotFound.
type Backend interface {
	// EnsureContainer creates the container if needed. created is false when it already existed.
	EnsureContainer(ctx context.Context) (created bool, err error)
	// Put stores reader under name, replacing any existing object.
	Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) error
	// Get returns the full content of the object.
	Get(ctx context.Context, name string) ([]byte, error)
	// Remove deletes the object.
	Remove(ctx context.Context, name string) error
	// List returns every object whose name starts with prefix.
	List(ctx context.Context, prefix string) ([]BlobDescriptor, error)
	// URL builds the absolute URL of an object without checking that it exists.
	URL(name string) (string, error)
}

// Connect builds the backend selected by cfg.Provider.
func Connect(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Provider {
	case config.ProviderAzure, "":
		return NewAzureBackend(cfg)
	case config.ProviderMinio:
		return NewMinioBackend(cfg)
	case config.ProviderMemory:
		return NewMemoryBackend(cfg.ContainerName), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
