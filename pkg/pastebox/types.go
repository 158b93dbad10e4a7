package pastebox

import (
	"strings"
	"time"
)

// Content type constants.
const (
	// ContentTypeTextPaste is assigned to items ingested as raw text.
	ContentTypeTextPaste = "text/plain"

	// TextPasteDisplayName is the display name assigned to raw text pastes.
	TextPasteDisplayName = "text-paste.txt"
)

// ThumbnailPrefix is prepended to an item's stored name to form the name
// of its derived thumbnail blob.
const ThumbnailPrefix = "thumb_"

// DefaultPageSize is the number of items per listing page.
const DefaultPageSize = 10

// Item is one stored paste or uploaded file plus its metadata. All fields
// are immutable after insertion; there is no update operation.
type Item struct {
	ID            int64     `json:"id"`
	StoredName    string    `json:"stored_name"`
	DisplayName   string    `json:"display_name"`
	ContentType   string    `json:"content_type"`
	SizeBytes     int64     `json:"size_bytes"`
	InlineContent string    `json:"inline_content,omitempty"`
	ThumbnailName string    `json:"thumbnail_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// HasThumbnail reports whether a derived thumbnail blob exists for the item.
// A false result for an image item is legitimate: derivation is best-effort.
func (i *Item) HasThumbnail() bool {
	return i.ThumbnailName != ""
}

// IsText reports whether the item's payload is text-classified, meaning its
// content was captured into InlineContent at ingestion time.
func (i *Item) IsText() bool {
	return IsTextContentType(i.ContentType)
}

// IsImage reports whether the item's payload is image-classified.
func (i *Item) IsImage() bool {
	return IsImageContentType(i.ContentType)
}

// IsTextContentType reports whether a MIME type is text-classified.
func IsTextContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "text/")
}

// IsImageContentType reports whether a MIME type is image-classified.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// Page is one window of the newest-first item listing.
type Page struct {
	Items       []*Item `json:"items"`
	CurrentPage int     `json:"current_page"`
	TotalPages  int     `json:"total_pages"`
	TotalCount  int64   `json:"total_count"`
	HasNextPage bool    `json:"has_next_page"`
	HasPrevPage bool    `json:"has_prev_page"`
}

// BlobNames is the pair of blob names referenced by one catalog record.
// ThumbnailName is empty when the item has no thumbnail.
type BlobNames struct {
	StoredName    string
	ThumbnailName string
}
