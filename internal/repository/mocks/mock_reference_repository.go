package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"uploadapi/internal/registry"
)

type MockReferenceRepository struct {
	mock.Mock
}

func (m *MockReferenceRepository) ListPaths(ctx context.Context, entry registry.Entry) ([]string, int, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]string), args.Int(1), args.Error(2)
}
