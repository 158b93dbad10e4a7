// Package pastebox provides the item storage engine for a self-hosted
// paste/file service: a metadata catalog, pluggable blob storage, derived
// thumbnails and a lifecycle coordinator tying them together.
//
// Basic usage:
//
//	blobs, err := fsstorage.New(fsstorage.Config{BaseDir: "./uploads"})
//	if err != nil { ... }
//	svc, err := pastebox.New(
//	    pastebox.WithCatalog(memorycatalog.New()),
//	    pastebox.WithBlobStore(blobs),
//	    pastebox.WithThumbnailer(thumbnail.New()),
//	)
//
// The coordinator guarantees that a catalog record never outlives its
// stored blob: ingestion writes blobs before the record, deletion removes
// blobs before the record.
package pastebox
