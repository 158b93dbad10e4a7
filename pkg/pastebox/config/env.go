package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is the flat environment mapping read by cleanenv.
type envConfig struct {
	Port          string `env:"PORT" env-default:""`
	Environment   string `env:"ENVIRONMENT" env-default:""`
	SessionSecret string `env:"SESSION_SECRET" env-default:""`

	DatabaseType string `env:"DATABASE_TYPE" env-default:""`
	DatabasePath string `env:"DATABASE_PATH" env-default:""`
	DatabaseURL  string `env:"DATABASE_URL" env-default:""`

	StorageType  string `env:"STORAGE_TYPE" env-default:""`
	UploadDir    string `env:"UPLOAD_DIR" env-default:""`
	ThumbnailDir string `env:"THUMBNAIL_DIR" env-default:""`

	S3Region          string `env:"AWS_S3_REGION" env-default:""`
	S3Bucket          string `env:"AWS_S3_BUCKET" env-default:""`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	S3Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	S3UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	S3CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// WithEnv applies environment variable overrides.
//
// Environment variable mapping:
//
//	PORT            - Server port (default: "8080")
//	ENVIRONMENT     - Runtime environment (default: "development")
//	SESSION_SECRET  - HMAC secret for session cookies (required)
//
//	DATABASE_TYPE   - "memory", "sqlite" or "postgres" (default: "sqlite")
//	DATABASE_PATH   - sqlite database file (default: "./data/pastebox.db")
//	DATABASE_URL    - postgres connection string
//
//	STORAGE_TYPE    - "memory", "fs" or "s3" (default: "fs")
//	UPLOAD_DIR      - fs: directory for stored blobs
//	THUMBNAIL_DIR   - fs: directory for derived thumbnails
//
//	AWS_S3_REGION, AWS_S3_BUCKET, AWS_ACCESS_KEY_ID,
//	AWS_SECRET_ACCESS_KEY, AWS_S3_ENDPOINT,
//	AWS_S3_USE_PATH_STYLE, AWS_S3_CREATE_BUCKET - s3 backend settings
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return err
		}

		setIfPresent(&c.Port, env.Port)
		setIfPresent(&c.Environment, env.Environment)
		setIfPresent(&c.SessionSecret, env.SessionSecret)

		setIfPresent(&c.DatabaseType, env.DatabaseType)
		setIfPresent(&c.DatabasePath, env.DatabasePath)
		setIfPresent(&c.DatabaseURL, env.DatabaseURL)
		if env.DatabaseURL != "" && env.DatabaseType == "" {
			c.DatabaseType = "postgres"
		}

		setIfPresent(&c.StorageType, env.StorageType)
		setIfPresent(&c.UploadDir, env.UploadDir)
		setIfPresent(&c.ThumbnailDir, env.ThumbnailDir)
		if env.S3Bucket != "" && env.StorageType == "" {
			c.StorageType = "s3"
		}

		setIfPresent(&c.S3.Region, env.S3Region)
		setIfPresent(&c.S3.Bucket, env.S3Bucket)
		setIfPresent(&c.S3.AccessKeyID, env.S3AccessKeyID)
		setIfPresent(&c.S3.SecretAccessKey, env.S3SecretAccessKey)
		setIfPresent(&c.S3.Endpoint, env.S3Endpoint)
		if env.S3UsePathStyle {
			c.S3.UsePathStyle = true
		}
		if env.S3CreateBucket {
			c.S3.CreateBucketIfNotExist = true
		}

		return nil
	}
}

func setIfPresent(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
