package pastebox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/pastebox/pastebox/pkg/pastebox/storedname"
)

// service implements the Service interface
type service struct {
	catalog     Catalog
	blobs       BlobStore
	thumbs      BlobStore
	thumbnailer Thumbnailer
	names       storedname.Generator
	logger      *slog.Logger
	pageSize    int
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithCatalog sets the metadata catalog for the service
func WithCatalog(catalog Catalog) Option {
	return func(s *service) {
		s.catalog = catalog
	}
}

// WithBlobStore sets the primary blob store for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobs = store
	}
}

// WithThumbnailStore sets a dedicated blob store for derived thumbnails.
// When unset, thumbnails share the primary store; the name prefix keeps
// them distinct.
func WithThumbnailStore(store BlobStore) Option {
	return func(s *service) {
		s.thumbs = store
	}
}

// WithThumbnailer sets the thumbnail deriver. Without one, image items are
// ingested without thumbnails.
func WithThumbnailer(thumbnailer Thumbnailer) Option {
	return func(s *service) {
		s.thumbnailer = thumbnailer
	}
}

// WithNameGenerator sets the stored-name generator
func WithNameGenerator(g storedname.Generator) Option {
	return func(s *service) {
		s.names = g
	}
}

// WithLogger sets the structured logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithPageSize overrides the listing page size
func WithPageSize(pageSize int) Option {
	return func(s *service) {
		if pageSize > 0 {
			s.pageSize = pageSize
		}
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		pageSize: DefaultPageSize,
	}

	for _, option := range options {
		option(s)
	}

	if s.catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if s.blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.thumbs == nil {
		s.thumbs = s.blobs
	}
	if s.names == nil {
		s.names = storedname.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Ingest operations

func (s *service) IngestFile(ctx context.Context, req IngestFileRequest) (*Item, error) {
	// A zero-byte file is a legitimate upload; only the absence of any
	// payload at all is rejected, and the transport layer decides that.
	storedName := s.names.Generate(req.DisplayName)
	if err := s.blobs.Upload(ctx, storedName, bytes.NewReader(req.Data)); err != nil {
		return nil, &StorageError{Backend: "primary", Key: storedName, Op: "upload", Err: err}
	}

	item := &Item{
		StoredName:  storedName,
		DisplayName: req.DisplayName,
		ContentType: req.ContentType,
		SizeBytes:   int64(len(req.Data)),
		CreatedAt:   time.Now().UTC(),
	}

	if IsTextContentType(req.ContentType) {
		// A payload that is not valid UTF-8 never blocks ingestion; the
		// record simply carries no inline content.
		if utf8.Valid(req.Data) {
			item.InlineContent = string(req.Data)
		} else {
			s.logger.Warn("Skipping inline capture of non-UTF-8 text payload",
				"stored_name", storedName, "content_type", req.ContentType)
		}
	}

	if IsImageContentType(req.ContentType) {
		item.ThumbnailName = s.deriveThumbnail(ctx, storedName, req.Data)
	}

	id, err := s.catalog.Insert(ctx, item)
	if err != nil {
		// The blob written above is acceptable orphaned state; a catalog
		// record pointing at a missing blob would not be.
		return nil, &ItemError{Op: "ingest_file", Err: err}
	}
	item.ID = id

	s.logger.Info("Item ingested",
		"item_id", id, "stored_name", storedName,
		"content_type", req.ContentType, "size_bytes", item.SizeBytes)

	return item, nil
}

func (s *service) IngestText(ctx context.Context, req IngestTextRequest) (*Item, error) {
	if req.Text == "" {
		return nil, ErrInvalidInput
	}

	data := []byte(req.Text)
	storedName := s.names.Generate(TextPasteDisplayName)
	if err := s.blobs.Upload(ctx, storedName, bytes.NewReader(data)); err != nil {
		return nil, &StorageError{Backend: "primary", Key: storedName, Op: "upload", Err: err}
	}

	item := &Item{
		StoredName:    storedName,
		DisplayName:   TextPasteDisplayName,
		ContentType:   ContentTypeTextPaste,
		SizeBytes:     int64(len(data)),
		InlineContent: req.Text,
		CreatedAt:     time.Now().UTC(),
	}

	id, err := s.catalog.Insert(ctx, item)
	if err != nil {
		return nil, &ItemError{Op: "ingest_text", Err: err}
	}
	item.ID = id

	s.logger.Info("Text paste ingested", "item_id", id, "stored_name", storedName, "size_bytes", item.SizeBytes)

	return item, nil
}

// deriveThumbnail generates and stores a thumbnail for an image payload.
// It returns the thumbnail's stored name, or "" when derivation or storage
// failed; neither failure aborts the parent ingestion.
func (s *service) deriveThumbnail(ctx context.Context, storedName string, data []byte) string {
	if s.thumbnailer == nil {
		return ""
	}

	thumbData, err := s.thumbnailer.Derive(ctx, bytes.NewReader(data))
	if err != nil {
		// Deterministic for the same bytes, so no retry.
		s.logger.Warn("Thumbnail derivation failed",
			"stored_name", storedName, "error", err)
		return ""
	}

	thumbnailName := ThumbnailPrefix + storedName
	if err := s.thumbs.Upload(ctx, thumbnailName, bytes.NewReader(thumbData)); err != nil {
		s.logger.Warn("Thumbnail upload failed",
			"thumbnail_name", thumbnailName, "error", err)
		return ""
	}

	return thumbnailName
}

// Lookup operations

func (s *service) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.catalog.GetByID(ctx, id)
}

func (s *service) DownloadItem(ctx context.Context, id int64) (*Download, error) {
	item, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := s.blobs.Download(ctx, item.StoredName)
	if err != nil {
		return nil, &StorageError{Backend: "primary", Key: item.StoredName, Op: "download", Err: err}
	}

	return &Download{Item: item, Body: body}, nil
}

func (s *service) OpenThumbnail(ctx context.Context, thumbnailName string) (io.ReadCloser, error) {
	body, err := s.thumbs.Download(ctx, thumbnailName)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			return nil, err
		}
		return nil, &StorageError{Backend: "thumbnail", Key: thumbnailName, Op: "download", Err: err}
	}
	return body, nil
}

func (s *service) ListPage(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	items, totalCount, err := s.catalog.ListPage(ctx, page, s.pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Item{}
	}

	totalPages := int((totalCount + int64(s.pageSize) - 1) / int64(s.pageSize))

	return &Page{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}, nil
}

// Delete operations

func (s *service) DeleteItem(ctx context.Context, id int64) error {
	item, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Blobs go first: a crash mid-sequence leaves at worst an orphaned
	// blob, never a catalog record pointing at nothing.
	if err := s.blobs.Delete(ctx, item.StoredName); err != nil {
		return &StorageError{Backend: "primary", Key: item.StoredName, Op: "delete", Err: err}
	}

	if item.ThumbnailName != "" {
		if err := s.thumbs.Delete(ctx, item.ThumbnailName); err != nil {
			return &StorageError{Backend: "thumbnail", Key: item.ThumbnailName, Op: "delete", Err: err}
		}
	}

	if err := s.catalog.Delete(ctx, id); err != nil {
		return &ItemError{ItemID: id, Op: "delete", Err: err}
	}

	s.logger.Info("Item deleted", "item_id", id, "stored_name", item.StoredName)

	return nil
}

func (s *service) DeleteAllItems(ctx context.Context) error {
	// Snapshot before clearing: the catalog holds the only record of which
	// blobs are reclaimable.
	names, err := s.catalog.AllBlobNames(ctx)
	if err != nil {
		return &ItemError{Op: "delete_all", Err: err}
	}

	var errs []error
	for _, n := range names {
		if err := s.blobs.Delete(ctx, n.StoredName); err != nil {
			s.logger.Error("Failed to delete blob", "stored_name", n.StoredName, "error", err)
			errs = append(errs, &StorageError{Backend: "primary", Key: n.StoredName, Op: "delete", Err: err})
		}
		if n.ThumbnailName == "" {
			continue
		}
		if err := s.thumbs.Delete(ctx, n.ThumbnailName); err != nil {
			s.logger.Error("Failed to delete thumbnail", "thumbnail_name", n.ThumbnailName, "error", err)
			errs = append(errs, &StorageError{Backend: "thumbnail", Key: n.ThumbnailName, Op: "delete", Err: err})
		}
	}

	// Blob failures never abort the clear; the error report carries them.
	if err := s.catalog.DeleteAll(ctx); err != nil {
		errs = append(errs, &ItemError{Op: "delete_all", Err: err})
	}

	s.logger.Info("All items deleted", "snapshot_size", len(names), "failed_deletions", len(errs))

	return errors.Join(errs...)
}
