package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// PreviewStore - мок repository.PreviewStore.
type PreviewStore struct {
	mock.Mock
}

func (m *PreviewStore) Put(ctx context.Context, id string, document []byte, ttl time.Duration) error {
	args := m.Called(ctx, id, document, ttl)
	return args.Error(0)
}

func (m *PreviewStore) Get(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
