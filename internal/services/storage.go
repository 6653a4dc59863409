package services

import (
	"context"
	"net/url"

	"contentos/internal/config"
)

// AssetStorage persists generated asset bytes and returns a public URL.
type AssetStorage interface {
	StoreAsset(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

// DataURLStorage is the zero-infrastructure default: assets are served
// inline as data URLs and only their metadata hits the database.
type DataURLStorage struct{}

func (DataURLStorage) StoreAsset(_ context.Context, data []byte, _ string, contentType string) (string, error) {
	return "data:" + contentType + "," + url.PathEscape(string(data)), nil
}

// NewAssetStorage picks the storage backend from config. Anything other
// than an S3-compatible provider falls back to inline data URLs.
func NewAssetStorage(cfg *config.Config) (AssetStorage, error) {
	switch cfg.Storage.Provider {
	case "s3", "r2":
		svc, err := NewS3Service(
			cfg.Storage.S3.BucketName,
			cfg.Storage.S3.Endpoint,
			cfg.Storage.S3.Region,
			cfg.Storage.S3.AccessKey,
			cfg.Storage.S3.SecretKey,
			cfg.Storage.Provider == "r2",
		)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return DataURLStorage{}, nil
	}
}
