package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryBackend keeps objects in process memory. It is meant for local
// development and tests; contents are lost on restart.
type MemoryBackend struct {
	container string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// NewMemoryBackend returns an empty in-memory store.
func NewMemoryBackend(container string) *MemoryBackend {
	return &MemoryBackend{
		container: container,
		objects:   make(map[string]memoryObject),
	}
}

// EnsureContainer always reports an existing container.
func (m *MemoryBackend) EnsureContainer(context.Context) (bool, error) {
	return false, nil
}

func (m *MemoryBackend) Put(_ context.Context, name string, reader io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = memoryObject{data: data, contentType: contentType, lastModified: time.Now().UTC()}
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[name]
	if !ok {
		return nil, notFound(fmt.Errorf("memory: %q", name))
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

func (m *MemoryBackend) Remove(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[name]; !ok {
		return notFound(fmt.Errorf("memory: %q", name))
	}
	delete(m.objects, name)
	return nil
}

// List returns matching objects sorted by name, like Azure and S3 listings.
func (m *MemoryBackend) List(_ context.Context, prefix string) ([]BlobDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blobs := make([]BlobDescriptor, 0, len(m.objects))
	for name, obj := range m.objects {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		url, _ := m.URL(name)
		blobs = append(blobs, BlobDescriptor{
			Name:         name,
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
			URL:          url,
		})
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name < blobs[j].Name })
	return blobs, nil
}

func (m *MemoryBackend) URL(name string) (string, error) {
	return fmt.Sprintf("memory://%s/%s", m.container, name), nil
}

// ContentType returns the content type recorded for name.
func (m *MemoryBackend) ContentType(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[name]
	return obj.contentType, ok
}
