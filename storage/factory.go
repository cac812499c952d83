package storage

import (
	"fmt"
	"log/slog"

	"github.com/pmalinen/EncryptBin/config"
)

// NewStore creates a paste storage backend based on the configuration.
// The backend is selected exactly once at startup; callers hold the
// returned PasteStore and never branch on the backend again.
func NewStore(cfg *config.Config, logger *slog.Logger) (PasteStore, error) {
	switch cfg.Storage {
	case config.StorageLocal:
		logger.Info("using local filesystem storage", "data_dir", cfg.DataDir)
		return NewFilesystemStore(cfg.DataDir)

	case config.StorageS3:
		logger.Info("using S3 storage",
			"bucket", cfg.S3Bucket,
			"prefix", cfg.S3Prefix)
		return NewS3Store(cfg.S3Bucket, cfg.S3Prefix)

	case config.StorageMongo:
		logger.Info("using MongoDB storage",
			"uri", cfg.MongoURI,
			"database", cfg.MongoDB,
			"collection", cfg.MongoCollection)
		return NewMongoStore(cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection)

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: local, s3, mongodb)", cfg.Storage)
	}
}
