package storage

import (
	"context"
	"fmt"

	"github.com/jaki95/eventseq/config"
)

// New creates the storage configured in cfg.
func New(ctx context.Context, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case "local":
		return NewLocalFileStorage(cfg.DataDir, cfg.Storage.TempDir)
	case "gcs":
		prefix := cfg.Storage.ObjectPrefix
		if prefix == "" {
			prefix = cfg.DataDir
		}
		return NewGCSStorage(ctx, cfg.Storage.Bucket, prefix, cfg.Storage.TempDir, cfg.Storage.CredentialsFile)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
