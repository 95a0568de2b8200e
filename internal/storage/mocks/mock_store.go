package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"uploadapi/internal/storage"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, bucket storage.Bucket, folder, filename string, r io.Reader) (string, error) {
	args := m.Called(ctx, bucket, folder, filename, r)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockStore) RemoveAll(paths []string) (int, int) {
	args := m.Called(paths)
	return args.Int(0), args.Int(1)
}

func (m *MockStore) Walk(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) Size(path string) (int64, error) {
	args := m.Called(path)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) DiskPath(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}
