package storage

import (
	"context"
	"fmt"
)

// Config selects and configures a driver.
type Config struct {
	Driver string // "local" | "s3"

	LocalRoot string
	LocalURL  string

	S3Bucket   string
	S3Region   string
	S3Key      string
	S3Secret   string
	S3Endpoint string // leave empty for real AWS
	S3URL      string
}

// New boots the disk named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return newLocalDisk(cfg.LocalRoot, cfg.LocalURL)
	case "s3":
		return newS3Disk(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q (supported: local, s3)", cfg.Driver)
	}
}
