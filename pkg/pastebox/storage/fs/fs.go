// Package fs provides a filesystem implementation of pastebox.BlobStore.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pastebox/pastebox/pkg/pastebox"
)

// Backend is a filesystem implementation of the pastebox.BlobStore interface
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing blobs
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

// blobPath resolves a stored name under the base directory, rejecting
// names that would escape it.
func (b *Backend) blobPath(storedName string) (string, error) {
	if storedName == "" || strings.ContainsAny(storedName, "/\\") || strings.Contains(storedName, "..") {
		return "", fmt.Errorf("invalid stored name: %q", storedName)
	}
	return filepath.Join(b.baseDir, storedName), nil
}

// Upload persists the reader's bytes under the stored name
func (b *Backend) Upload(ctx context.Context, storedName string, reader io.Reader) error {
	filePath, err := b.blobPath(storedName)
	if err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Download opens the blob stored under the given name
func (b *Backend) Download(ctx context.Context, storedName string) (io.ReadCloser, error) {
	filePath, err := b.blobPath(storedName)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if os.IsNotExist(err) {
		return nil, pastebox.ErrBlobNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes the blob. Absence of the target is success: Delete runs
// during cleanup where the blob may already be gone.
func (b *Backend) Delete(ctx context.Context, storedName string) error {
	filePath, err := b.blobPath(storedName)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// GetBlobMeta retrieves metadata for a blob on the filesystem
func (b *Backend) GetBlobMeta(ctx context.Context, storedName string) (*pastebox.BlobMeta, error) {
	filePath, err := b.blobPath(storedName)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, pastebox.ErrBlobNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	// Detect content type
	contentType := "application/octet-stream"
	if file, err := os.Open(filePath); err == nil {
		defer file.Close()
		buffer := make([]byte, 512)
		if n, err := file.Read(buffer); err == nil {
			contentType = http.DetectContentType(buffer[:n])
		}
	}

	return &pastebox.BlobMeta{
		Key:         storedName,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
	}, nil
}
