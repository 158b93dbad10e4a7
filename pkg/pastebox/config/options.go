package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithSessionSecret sets the HMAC secret used to sign session cookies
func WithSessionSecret(secret string) Option {
	return func(c *ServerConfig) error {
		if secret == "" {
			return fmt.Errorf("session secret cannot be empty")
		}
		c.SessionSecret = secret
		return nil
	}
}

// WithMemoryCatalog selects the in-memory item catalog
func WithMemoryCatalog() Option {
	return func(c *ServerConfig) error {
		c.DatabaseType = "memory"
		return nil
	}
}

// WithSQLiteCatalog selects the SQLite item catalog at the given path
func WithSQLiteCatalog(path string) Option {
	return func(c *ServerConfig) error {
		if path == "" {
			return fmt.Errorf("sqlite database path cannot be empty")
		}
		c.DatabaseType = "sqlite"
		c.DatabasePath = path
		return nil
	}
}

// WithPostgresCatalog selects the Postgres item catalog
func WithPostgresCatalog(databaseURL string) Option {
	return func(c *ServerConfig) error {
		if databaseURL == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = "postgres"
		c.DatabaseURL = databaseURL
		return nil
	}
}

// WithMemoryStorage selects in-memory blob storage
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.StorageType = "memory"
		return nil
	}
}

// WithFilesystemStorage selects filesystem blob storage with separate
// directories for uploads and thumbnails
func WithFilesystemStorage(uploadDir, thumbnailDir string) Option {
	return func(c *ServerConfig) error {
		if uploadDir == "" {
			return fmt.Errorf("upload directory cannot be empty")
		}
		if thumbnailDir == "" {
			return fmt.Errorf("thumbnail directory cannot be empty")
		}
		c.StorageType = "fs"
		c.UploadDir = uploadDir
		c.ThumbnailDir = thumbnailDir
		return nil
	}
}

// WithS3Storage selects S3 blob storage
func WithS3Storage(s3 S3Config) Option {
	return func(c *ServerConfig) error {
		if s3.Bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		c.StorageType = "s3"
		c.S3 = s3
		return nil
	}
}
