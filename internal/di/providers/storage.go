package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/muzaapp/muza-server/internal/config"
	"github.com/muzaapp/muza-server/internal/logger"
	"github.com/muzaapp/muza-server/internal/storage"
)

// ProvideFileStore provides the audio/cover file store. Object storage is
// attached as a mirror only when an S3 endpoint is configured.
func ProvideFileStore(i do.Injector) (*storage.FileStore, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	local, err := storage.NewLocalBackend(cfg.Storage.FilesDir)
	if err != nil {
		return nil, err
	}

	var remote *storage.S3Backend
	if cfg.S3Configured() {
		remote, err = storage.NewS3Backend(context.Background(), storage.S3Config{
			Endpoint:  cfg.Storage.S3Endpoint,
			Bucket:    cfg.Storage.S3Bucket,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
			UseSSL:    cfg.Storage.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		log.Info("object storage mirror enabled",
			"endpoint", cfg.Storage.S3Endpoint, "bucket", cfg.Storage.S3Bucket)
	}

	return storage.NewFileStore(local, remote, cfg.Server.BaseURL, cfg.Storage.CDNDomain, log.Logger), nil
}
