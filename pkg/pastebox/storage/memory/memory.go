// Package memory provides an in-memory implementation of pastebox.BlobStore.
package memory

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pastebox/pastebox/pkg/pastebox"
)

// Backend is an in-memory implementation of the pastebox.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
	}
}

// Len returns the number of stored blobs. Test helper.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

// Upload stores the reader's bytes under the stored name
func (b *Backend) Upload(ctx context.Context, storedName string, reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[storedName] = data
	return nil
}

// Download opens the blob stored under the given name
func (b *Backend) Download(ctx context.Context, storedName string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[storedName]
	if !exists {
		return nil, pastebox.ErrBlobNotFound
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the blob; deleting a missing blob succeeds silently
func (b *Backend) Delete(ctx context.Context, storedName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, storedName)
	return nil
}

// GetBlobMeta retrieves metadata for a blob in memory
func (b *Backend) GetBlobMeta(ctx context.Context, storedName string) (*pastebox.BlobMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[storedName]
	if !exists {
		return nil, pastebox.ErrBlobNotFound
	}

	return &pastebox.BlobMeta{
		Key:         storedName,
		Size:        int64(len(data)),
		ContentType: http.DetectContentType(data),
		UpdatedAt:   time.Now().UTC(),
	}, nil
}
