package pastebox

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrItemNotFound indicates an item was not found in the catalog
	ErrItemNotFound = errors.New("item not found")

	// ErrBlobNotFound indicates no blob exists under the requested name
	ErrBlobNotFound = errors.New("blob not found")

	// ErrInvalidInput indicates neither a file nor a text payload was supplied
	ErrInvalidInput = errors.New("no file or text provided")

	// ErrUnsupportedImage indicates the source bytes could not be decoded as
	// an image. Thumbnail derivation recovers from this locally; it is never
	// surfaced to callers of the ingest operations.
	ErrUnsupportedImage = errors.New("unsupported or corrupt image")
)

// ItemError represents an error related to a catalog operation on one item
type ItemError struct {
	ItemID int64
	Op     string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item operation %s failed for item %d: %v", e.Op, e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
