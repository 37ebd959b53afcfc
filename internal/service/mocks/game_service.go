package mocks

import (
	"context"
	"time"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/model"
	"sergis-author/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// GameService - мок service.GameService.
type GameService struct {
	mock.Mock
}

func (m *GameService) ListGames(ctx context.Context, authorID uuid.UUID) (storage.GameList, error) {
	args := m.Called(ctx, authorID)
	list, _ := args.Get(0).(storage.GameList)
	return list, args.Error(1)
}

func (m *GameService) LoadGame(ctx context.Context, authorID uuid.UUID, name string) (*gamedata.Game, error) {
	args := m.Called(ctx, authorID, name)
	game, _ := args.Get(0).(*gamedata.Game)
	return game, args.Error(1)
}

func (m *GameService) SaveGame(ctx context.Context, authorID uuid.UUID, name string, game *gamedata.Game) (time.Time, error) {
	args := m.Called(ctx, authorID, name, game)
	modified, _ := args.Get(0).(time.Time)
	return modified, args.Error(1)
}

func (m *GameService) RenameGame(ctx context.Context, authorID uuid.UUID, oldName, newName string) error {
	args := m.Called(ctx, authorID, oldName, newName)
	return args.Error(0)
}

func (m *GameService) RemoveGame(ctx context.Context, authorID uuid.UUID, name string) error {
	args := m.Called(ctx, authorID, name)
	return args.Error(0)
}

func (m *GameService) CheckGameName(ctx context.Context, authorID uuid.UUID, name string) error {
	args := m.Called(ctx, authorID, name)
	return args.Error(0)
}

func (m *GameService) PreviewGame(ctx context.Context, authorID uuid.UUID, game *gamedata.Game) (string, error) {
	args := m.Called(ctx, authorID, game)
	return args.String(0), args.Error(1)
}

func (m *GameService) GetPreview(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *GameService) PublishGame(ctx context.Context, authorID uuid.UUID, name string, access model.Access) (uuid.UUID, error) {
	args := m.Called(ctx, authorID, name, access)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

func (m *GameService) GetPublished(ctx context.Context, id uuid.UUID, viewer uuid.UUID) (*model.PublishedGame, error) {
	args := m.Called(ctx, id, viewer)
	game, _ := args.Get(0).(*model.PublishedGame)
	return game, args.Error(1)
}

func (m *GameService) LockPrompts(ctx context.Context, authorID uuid.UUID, owner, game string, indices []int) (bool, error) {
	args := m.Called(ctx, authorID, owner, game, indices)
	return args.Bool(0), args.Error(1)
}

func (m *GameService) UnlockPrompts(ctx context.Context, authorID uuid.UUID, owner, game string, indices []int) error {
	args := m.Called(ctx, authorID, owner, game, indices)
	return args.Error(0)
}
