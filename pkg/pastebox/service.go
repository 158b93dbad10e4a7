package pastebox

import (
	"context"
	"io"
)

// Service is the item lifecycle coordinator. It owns the consistency
// between the metadata catalog, the primary blob store and the thumbnail
// store: every catalog record references a blob that exists for as long as
// the record does.
type Service interface {
	// IngestFile stores an uploaded file as a durable item. For
	// text-classified payloads the content is additionally captured into
	// the record; for image-classified payloads a thumbnail is derived
	// best-effort. On error no catalog record is created.
	IngestFile(ctx context.Context, req IngestFileRequest) (*Item, error)

	// IngestText stores a raw text paste as a durable item. The text is
	// written as the stored blob so downloads work, and captured verbatim
	// into the record's inline content.
	IngestText(ctx context.Context, req IngestTextRequest) (*Item, error)

	// GetItem returns the item record, or ErrItemNotFound.
	GetItem(ctx context.Context, id int64) (*Item, error)

	// DownloadItem resolves the item's stored blob for transport as a named
	// attachment.
	DownloadItem(ctx context.Context, id int64) (*Download, error)

	// OpenThumbnail opens a derived thumbnail blob by name.
	OpenThumbnail(ctx context.Context, thumbnailName string) (io.ReadCloser, error)

	// ListPage returns one newest-first page of items.
	ListPage(ctx context.Context, page int) (*Page, error)

	// DeleteItem removes the item's blobs and its catalog record as one
	// logical unit. It returns ErrItemNotFound when the item does not
	// exist, so a repeated delete fails cleanly.
	DeleteItem(ctx context.Context, id int64) error

	// DeleteAllItems snapshots every record's blob names, best-effort
	// deletes all referenced blobs and clears the catalog. Individual blob
	// deletion failures are collected, not short-circuited.
	DeleteAllItems(ctx context.Context) error
}
