package model

import (
	"context"
	"io"
)

// AssetStorage holds binary course assets (cover images, module materials).
type AssetStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
