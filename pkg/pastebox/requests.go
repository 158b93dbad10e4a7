package pastebox

import "io"

// IngestFileRequest contains parameters for ingesting an uploaded file.
type IngestFileRequest struct {
	// Data is the raw uploaded payload.
	Data []byte

	// DisplayName is the original, user-supplied file name.
	DisplayName string

	// ContentType is the declared MIME type of the payload. It drives
	// inline content capture (text/*) and thumbnail derivation (image/*).
	ContentType string
}

// IngestTextRequest contains parameters for ingesting a raw text paste.
type IngestTextRequest struct {
	Text string
}

// Download pairs an item's metadata with an open reader over its stored
// blob. The caller owns Body and must close it.
type Download struct {
	Item *Item
	Body io.ReadCloser
}
