// Package config loads server configuration and assembles a running
// pastebox.Service from it.
package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pastebox/pastebox/pkg/pastebox"
	"github.com/pastebox/pastebox/pkg/pastebox/auth"
	memorycatalog "github.com/pastebox/pastebox/pkg/pastebox/catalog/memory"
	pgcatalog "github.com/pastebox/pastebox/pkg/pastebox/catalog/postgres"
	sqlitecatalog "github.com/pastebox/pastebox/pkg/pastebox/catalog/sqlite"
	fsstorage "github.com/pastebox/pastebox/pkg/pastebox/storage/fs"
	memorystorage "github.com/pastebox/pastebox/pkg/pastebox/storage/memory"
	s3storage "github.com/pastebox/pastebox/pkg/pastebox/storage/s3"
	"github.com/pastebox/pastebox/pkg/pastebox/thumbnail"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:          "8080",
		Environment:   "development",
		DatabaseType:  "sqlite",
		DatabasePath:  "./data/pastebox.db",
		StorageType:   "fs",
		UploadDir:     "./data/uploads",
		ThumbnailDir:  "./data/thumbnails",
		SessionSecret: "",
	}
}

// ServerConfig represents server configuration for the pastebox service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Session
	SessionSecret string

	// Catalog configuration
	DatabaseType string // "memory", "sqlite", "postgres"
	DatabasePath string // sqlite database file
	DatabaseURL  string // postgres connection string

	// Storage configuration
	StorageType  string // "memory", "fs", "s3"
	UploadDir    string // fs: where stored blobs live
	ThumbnailDir string // fs: where derived thumbnails live
	S3           S3Config
}

// S3Config carries the S3 backend settings. Uploads and thumbnails
// share the bucket under distinct key prefixes.
type S3Config struct {
	Region                 string
	Bucket                 string
	AccessKeyID            string
	SecretAccessKey        string
	Endpoint               string
	UsePathStyle           bool
	CreateBucketIfNotExist bool
	UploadPrefix           string
	ThumbnailPrefix        string
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.SessionSecret == "" {
		return errors.New("session_secret is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "sqlite":
		if c.DatabasePath == "" {
			return errors.New("database_path is required when using sqlite")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	default:
		return errors.New("database_type must be 'memory', 'sqlite' or 'postgres'")
	}

	switch c.StorageType {
	case "memory":
	case "fs":
		if c.UploadDir == "" || c.ThumbnailDir == "" {
			return errors.New("upload_dir and thumbnail_dir are required when using fs storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using s3 storage")
		}
	default:
		return errors.New("storage_type must be 'memory', 'fs' or 's3'")
	}

	return nil
}

// BuildService creates a Service and the credential store backing the
// shared password from the server configuration.
func (c *ServerConfig) BuildService() (pastebox.Service, auth.CredentialStore, error) {
	catalog, creds, err := c.buildCatalog()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	blobs, thumbs, err := c.buildStorage()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build storage: %w", err)
	}

	svc, err := pastebox.New(
		pastebox.WithCatalog(catalog),
		pastebox.WithBlobStore(blobs),
		pastebox.WithThumbnailStore(thumbs),
		pastebox.WithThumbnailer(thumbnail.New()),
	)
	if err != nil {
		return nil, nil, err
	}

	return svc, creds, nil
}

// buildCatalog creates a Catalog and its companion credential store
func (c *ServerConfig) buildCatalog() (pastebox.Catalog, auth.CredentialStore, error) {
	switch c.DatabaseType {
	case "memory":
		return memorycatalog.New(), auth.NewMemoryStore(), nil

	case "sqlite":
		cat, err := sqlitecatalog.Open(c.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return cat, cat.Credentials(), nil

	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		cat := pgcatalog.NewWithPool(pool)
		if err := cat.EnsureSchema(context.Background()); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		return cat, cat.Credentials(), nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildStorage creates the blob store for uploads and the one for thumbnails
func (c *ServerConfig) buildStorage() (pastebox.BlobStore, pastebox.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), memorystorage.New(), nil

	case "fs":
		blobs, err := fsstorage.New(fsstorage.Config{BaseDir: c.UploadDir})
		if err != nil {
			return nil, nil, err
		}
		thumbs, err := fsstorage.New(fsstorage.Config{BaseDir: c.ThumbnailDir})
		if err != nil {
			return nil, nil, err
		}
		return blobs, thumbs, nil

	case "s3":
		uploadPrefix := c.S3.UploadPrefix
		if uploadPrefix == "" {
			uploadPrefix = "uploads/"
		}
		thumbPrefix := c.S3.ThumbnailPrefix
		if thumbPrefix == "" {
			thumbPrefix = "thumbnails/"
		}
		blobs, err := s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			KeyPrefix:              uploadPrefix,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
		})
		if err != nil {
			return nil, nil, err
		}
		thumbs, err := s3storage.New(s3storage.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			KeyPrefix:       thumbPrefix,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		return blobs, thumbs, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}
