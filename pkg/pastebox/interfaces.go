package pastebox

import (
	"context"
	"io"
	"time"
)

// BlobStore defines the interface for keyed blob storage backends.
type BlobStore interface {
	// Upload persists the reader's bytes under the given stored name.
	Upload(ctx context.Context, storedName string, reader io.Reader) error

	// Download opens the blob stored under the given name. It returns
	// ErrBlobNotFound when no blob exists under that name.
	Download(ctx context.Context, storedName string) (io.ReadCloser, error)

	// Delete removes the blob stored under the given name. Deleting a blob
	// that does not exist succeeds silently: Delete is invoked during
	// cleanup where the blob may already be gone.
	Delete(ctx context.Context, storedName string) error

	// GetBlobMeta retrieves storage-level metadata for a blob. It returns
	// ErrBlobNotFound when no blob exists under that name.
	GetBlobMeta(ctx context.Context, storedName string) (*BlobMeta, error)
}

// BlobMeta contains storage-level metadata about one blob.
type BlobMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
}

// Catalog defines the interface for durable item metadata persistence.
// Implementations must serialize writes so that no two inserts observe the
// same identifier and identifiers are never reused.
type Catalog interface {
	// Insert assigns the next identifier, stores the record and returns the
	// identifier. The item's ID field is ignored on input.
	Insert(ctx context.Context, item *Item) (int64, error)

	// GetByID returns the record for the given identifier, or
	// ErrItemNotFound.
	GetByID(ctx context.Context, id int64) (*Item, error)

	// ListPage returns one newest-first page of records plus the total
	// record count at query time. Pages beyond the end yield an empty
	// slice, not an error.
	ListPage(ctx context.Context, page, pageSize int) ([]*Item, int64, error)

	// Delete removes the record for the given identifier. Deleting a
	// nonexistent identifier is a no-op.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every record. Identifier assignment continues from
	// where it left off; identifiers are never reused.
	DeleteAll(ctx context.Context) error

	// AllBlobNames returns the blob name pair of every record. Callers use
	// it to snapshot reclaimable storage before DeleteAll.
	AllBlobNames(ctx context.Context) ([]BlobNames, error)
}

// Thumbnailer defines the interface for deriving fixed-size previews from
// image payloads.
type Thumbnailer interface {
	// Derive reads an image and produces encoded thumbnail bytes. It
	// returns an error wrapping ErrUnsupportedImage when the source cannot
	// be decoded; decoding failures are deterministic, so callers must not
	// retry.
	Derive(ctx context.Context, source io.Reader) ([]byte, error)

	// Supports returns true if the thumbnailer handles the given MIME type.
	Supports(contentType string) bool
}
