package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/coursedesk/coursedesk-server/internal/model"
)

// AssetStorage is a mock for model.AssetStorage.
type AssetStorage struct {
	mock.Mock
}

var _ model.AssetStorage = (*AssetStorage)(nil)

func (m *AssetStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *AssetStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *AssetStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *AssetStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
