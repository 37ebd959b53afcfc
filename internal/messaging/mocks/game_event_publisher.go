package mocks

import (
	"context"

	"sergis-author/internal/model"

	"github.com/stretchr/testify/mock"
)

// GameEventPublisher - мок messaging.GameEventPublisher.
type GameEventPublisher struct {
	mock.Mock
}

func (m *GameEventPublisher) PublishGamePublished(ctx context.Context, event model.GamePublishedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
