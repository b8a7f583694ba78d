package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/homecloud/service/internal/config"
)

const (
	defaultContentType = "application/octet-stream"

	selfTestBlobName = "test_file.txt"
)

var selfTestContent = []byte("Hello from Home Cloud storage! This is a connectivity test.")

// Connector builds a Backend from configuration. Connect is the production connector.
type Connector func(cfg config.StorageConfig) (Backend, error)

// Status is the externally visible configuration of the gateway.
// Names are only reported once the gateway is ready.
type Status struct {
	Configured    bool    `json:"configured"`
	ContainerName *string `json:"containerName"`
	AccountName   *string `json:"accountName"`
}

// SelfTestResult reports the outcome of the upload/download round trip.
type SelfTestResult struct {
	URL             string `json:"testFileUrl"`
	UploadSuccess   bool   `json:"uploadSuccess"`
	DownloadSuccess bool   `json:"downloadSuccess"`
	ContentMatches  bool   `json:"contentMatches"`
	ContainerName   string `json:"containerName"`
}

// Gateway mediates all access to the object store.
//
// A Gateway is either ready or disabled, decided once by NewGateway and never
// revisited. A disabled gateway answers every operation with ErrNotConfigured
// without touching the network. The gateway holds no mutable state after
// construction and is safe for concurrent use.
type Gateway struct {
	cfg     config.StorageConfig
	backend Backend
}

// NewGateway validates cfg, connects through connect and makes sure the
// container exists. Any failure leaves the gateway disabled; it never returns nil.
func NewGateway(ctx context.Context, cfg config.StorageConfig, connect Connector) *Gateway {
	g := &Gateway{cfg: cfg}

	if !cfg.IsConfigured() {
		log.Printf("storage: %s storage is not configured, gateway disabled", providerName(cfg))
		return g
	}

	backend, err := connect(cfg)
	if err != nil {
		log.Printf("storage: initialise %s storage: %v", providerName(cfg), err)
		return g
	}

	ensureContainerExists(ctx, backend, cfg.ContainerName)
	g.backend = backend
	log.Printf("storage: %s gateway ready (container=%q)", providerName(cfg), cfg.ContainerName)
	return g
}

// ensureContainerExists creates the container, treating "already exists" as
// success. Other errors are logged and do not fail initialisation.
func ensureContainerExists(ctx context.Context, backend Backend, container string) {
	created, err := backend.EnsureContainer(ctx)
	switch {
	case err != nil:
		log.Printf("storage: create container %q: %v", container, err)
	case created:
		log.Printf("storage: created container %q", container)
	default:
		log.Printf("storage: container %q already exists", container)
	}
}

// Ready reports whether the gateway reached the ready state.
func (g *Gateway) Ready() bool {
	return g.backend != nil
}

// ContainerName returns the configured container (bucket) name.
func (g *Gateway) ContainerName() string {
	return g.cfg.ContainerName
}

// Status describes the gateway configuration.
func (g *Gateway) Status() Status {
	if !g.Ready() {
		return Status{}
	}
	container := g.cfg.ContainerName
	s := Status{Configured: true, ContainerName: &container}
	if g.cfg.AccountName != "" {
		account := g.cfg.AccountName
		s.AccountName = &account
	}
	return s
}

// Upload stores stream under name and returns the object's URL. The stream is
// rewound to its start first, and an existing object with the same name is
// overwritten.
func (g *Gateway) Upload(ctx context.Context, stream io.ReadSeeker, name, contentType string) (string, error) {
	const op = "upload"
	if !g.Ready() {
		return "", g.disabled(op, name)
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	size, err := rewind(stream)
	if err != nil {
		return "", g.fail(op, name, ErrTransport, fmt.Errorf("rewind input: %w", err))
	}

	if err := g.backend.Put(ctx, name, stream, size, contentType); err != nil {
		return "", g.fail(op, name, ErrTransport, err)
	}

	url, err := g.backend.URL(name)
	if err != nil {
		return "", g.fail(op, name, ErrTransport, err)
	}

	log.Printf("storage: uploaded %q (%d bytes, %s)", name, size, contentType)
	return url, nil
}

// Download returns the content of name, or an error matching ErrNotFound when
// the object does not exist.
func (g *Gateway) Download(ctx context.Context, name string) ([]byte, error) {
	const op = "download"
	if !g.Ready() {
		return nil, g.disabled(op, name)
	}

	data, err := g.backend.Get(ctx, name)
	if err != nil {
		return nil, g.fail(op, name, classify(err), err)
	}

	log.Printf("storage: downloaded %q (%d bytes)", name, len(data))
	return data, nil
}

// Delete removes name. A missing object is reported as ErrNotFound.
func (g *Gateway) Delete(ctx context.Context, name string) error {
	const op = "delete"
	if !g.Ready() {
		return g.disabled(op, name)
	}

	if err := g.backend.Remove(ctx, name); err != nil {
		return g.fail(op, name, classify(err), err)
	}

	log.Printf("storage: deleted %q", name)
	return nil
}

// List returns the objects whose name starts with prefix, in the order the
// store yields them. Failures are logged and produce an empty result, so
// callers cannot tell an empty container from a failed listing.
func (g *Gateway) List(ctx context.Context, prefix string) []BlobDescriptor {
	const op = "list"
	if !g.Ready() {
		_ = g.disabled(op, prefix)
		return []BlobDescriptor{}
	}

	blobs, err := g.backend.List(ctx, prefix)
	if err != nil {
		_ = g.fail(op, prefix, ErrTransport, err)
		return []BlobDescriptor{}
	}
	if blobs == nil {
		return []BlobDescriptor{}
	}
	return blobs
}

// URL returns the URL of name without checking that the object exists.
// ok is false when the gateway is disabled or the URL cannot be built.
func (g *Gateway) URL(name string) (url string, ok bool) {
	if !g.Ready() {
		return "", false
	}
	url, err := g.backend.URL(name)
	if err != nil {
		log.Printf("storage: url %q: %v", name, err)
		return "", false
	}
	return url, true
}

// SelfTest uploads a fixed text file, downloads it again and compares the bytes.
// An error is returned only when the upload itself fails.
func (g *Gateway) SelfTest(ctx context.Context) (*SelfTestResult, error) {
	url, err := g.Upload(ctx, bytes.NewReader(selfTestContent), selfTestBlobName, "text/plain")
	if err != nil {
		return nil, err
	}

	res := &SelfTestResult{
		URL:           url,
		UploadSuccess: true,
		ContainerName: g.cfg.ContainerName,
	}

	data, err := g.Download(ctx, selfTestBlobName)
	if err == nil {
		res.DownloadSuccess = true
		res.ContentMatches = bytes.Equal(data, selfTestContent)
	}
	return res, nil
}

func (g *Gateway) disabled(op, name string) error {
	log.Printf("storage: %s %q: gateway not configured", op, name)
	return &Error{Op: op, Name: name, Kind: ErrNotConfigured}
}

func (g *Gateway) fail(op, name string, kind, err error) error {
	if errors.Is(kind, ErrNotFound) {
		log.Printf("storage: %s %q: object not found", op, name)
	} else {
		log.Printf("storage: %s %q: %v", op, name, err)
	}
	return &Error{Op: op, Name: name, Kind: kind, Err: err}
}

// classify maps a backend error onto the failure taxonomy.
func classify(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return ErrTransport
}

// rewind seeks stream back to its start and returns its total length.
func rewind(stream io.ReadSeeker) (int64, error) {
	size, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := stream.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

func providerName(cfg config.StorageConfig) string {
	if cfg.Provider == "" {
		return config.ProviderAzure
	}
	return cfg.Provider
}
