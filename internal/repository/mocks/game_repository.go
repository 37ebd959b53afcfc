package mocks

import (
	"context"
	"encoding/json"
	"time"

	"sergis-author/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// GameRepository - мок repository.GameRepository.
type GameRepository struct {
	mock.Mock
}

func (m *GameRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.GameSummary, error) {
	args := m.Called(ctx, authorID)
	games, _ := args.Get(0).([]model.GameSummary)
	return games, args.Error(1)
}

func (m *GameRepository) Get(ctx context.Context, authorID uuid.UUID, name string) (*model.GameRecord, error) {
	args := m.Called(ctx, authorID, name)
	game, _ := args.Get(0).(*model.GameRecord)
	return game, args.Error(1)
}

func (m *GameRepository) Exists(ctx context.Context, authorID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, authorID, name)
	return args.Bool(0), args.Error(1)
}

func (m *GameRepository) Upsert(ctx context.Context, authorID uuid.UUID, name string, document json.RawMessage) (*model.GameRecord, error) {
	args := m.Called(ctx, authorID, name, document)
	game, _ := args.Get(0).(*model.GameRecord)
	return game, args.Error(1)
}

func (m *GameRepository) Rename(ctx context.Context, authorID uuid.UUID, oldName, newName string) error {
	args := m.Called(ctx, authorID, oldName, newName)
	return args.Error(0)
}

func (m *GameRepository) Delete(ctx context.Context, authorID uuid.UUID, name string) error {
	args := m.Called(ctx, authorID, name)
	return args.Error(0)
}

func (m *GameRepository) Publish(ctx context.Context, authorID uuid.UUID, name string, access model.Access, at time.Time) (uuid.UUID, error) {
	args := m.Called(ctx, authorID, name, access, at)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *GameRepository) GetPublished(ctx context.Context, id uuid.UUID) (*model.PublishedGame, error) {
	args := m.Called(ctx, id)
	game, _ := args.Get(0).(*model.PublishedGame)
	return game, args.Error(1)
}
