package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/lock"
	messagingmocks "sergis-author/internal/messaging/mocks"
	"sergis-author/internal/model"
	"sergis-author/internal/repository/mocks"
	"sergis-author/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gameServiceFixture struct {
	svc       *gameServiceImpl
	games     *mocks.GameRepository
	previews  *mocks.PreviewStore
	publisher *messagingmocks.GameEventPublisher
	author    uuid.UUID
	now       time.Time
}

func newGameServiceFixture(t *testing.T) *gameServiceFixture {
	t.Helper()
	f := &gameServiceFixture{
		games:     new(mocks.GameRepository),
		previews:  new(mocks.PreviewStore),
		publisher: new(messagingmocks.GameEventPublisher),
		author:    uuid.New(),
		now:       time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC),
	}
	locks := lock.NewPromptLocks(lock.NewMemoryLocker(), time.Minute, nil)
	svc := NewGameService(f.games, f.previews, f.publisher, locks, GameServiceConfig{PreviewTTL: time.Hour}, zap.NewNop())
	f.svc = svc.(*gameServiceImpl)
	f.svc.now = func() time.Time { return f.now }
	t.Cleanup(func() {
		f.games.AssertExpectations(t)
		f.previews.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})
	return f
}

func TestSaveGameStoresExportedDocument(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()
	game := gamedata.NewGame("", "mapper")
	gamedata.AddPrompt(game, gamedata.NewPromptEntry("Start"))

	f.games.On("Upsert", ctx, f.author, "Flood", mock.MatchedBy(func(doc json.RawMessage) bool {
		var raw map[string]any
		if err := json.Unmarshal(doc, &raw); err != nil {
			return false
		}
		_, hasID := raw["id"]
		return !hasID && raw["modified"] == "2024-06-01T08:30:00.000Z"
	})).Return(&model.GameRecord{}, nil).Once()

	modified, err := f.svc.SaveGame(ctx, f.author, "Flood", game)

	require.NoError(t, err)
	assert.Equal(t, f.now, modified)
	assert.Equal(t, f.now, game.Modified.Time)
}

func TestSaveGameRejectsInvalidName(t *testing.T) {
	f := newGameServiceFixture(t)

	_, err := f.svc.SaveGame(context.Background(), f.author, "My Game!", gamedata.NewGame("", ""))

	assert.ErrorIs(t, err, model.ErrInvalidGameName)
	f.games.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadGameRunsCheck(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()
	doc := json.RawMessage(`{"name":"Flood","promptList":[{"prompt":{"title":"A","choices":["x","y"]}}]}`)
	f.games.On("Get", ctx, f.author, "Flood").Return(&model.GameRecord{Document: doc}, nil).Once()

	game, err := f.svc.LoadGame(ctx, f.author, "Flood")

	require.NoError(t, err)
	require.Len(t, game.PromptList, 1)
	assert.Len(t, game.PromptList[0].ActionList, 2)
	assert.Equal(t, gamedata.DefaultGenerator, game.Generator)
}

func TestLoadGameErrors(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()
	f.games.On("Get", ctx, f.author, "missing").Return(nil, model.ErrNotFound).Once()
	f.games.On("Get", ctx, f.author, "broken").Return(&model.GameRecord{Document: json.RawMessage(`[]`)}, nil).Once()

	_, err := f.svc.LoadGame(ctx, f.author, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.LoadGame(ctx, f.author, "broken")
	assert.ErrorIs(t, err, gamedata.ErrMalformedDocument)
}

func TestListGames(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()
	f.games.On("ListByAuthor", ctx, f.author).Return([]model.GameSummary{
		{Name: "a", UpdatedAt: f.now},
		{Name: "b", UpdatedAt: f.now.Add(time.Hour)},
	}, nil).Once()

	list, err := f.svc.ListGames(ctx, f.author)

	require.NoError(t, err)
	assert.Equal(t, storage.GameList{"a": f.now, "b": f.now.Add(time.Hour)}, list)
}

func TestCheckGameName(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()
	f.games.On("Exists", ctx, f.author, "taken").Return(true, nil).Once()
	f.games.On("Exists", ctx, f.author, "free").Return(false, nil).Once()

	assert.ErrorIs(t, f.svc.CheckGameName(ctx, f.author, "My Game!"), model.ErrInvalidGameName)
	assert.ErrorIs(t, f.svc.CheckGameName(ctx, f.author, "taken"), model.ErrGameExists)
	assert.NoError(t, f.svc.CheckGameName(ctx, f.author, "free"))
}

func TestRenameGame(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()
	f.games.On("Rename", ctx, f.author, "a", "b").Return(model.ErrGameExists).Once()

	assert.ErrorIs(t, f.svc.RenameGame(ctx, f.author, "a", "b"), model.ErrGameExists)
	assert.ErrorIs(t, f.svc.RenameGame(ctx, f.author, "a", "b c"), model.ErrInvalidGameName)
}

func TestPreviewGameIsContentAddressed(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()
	game := gamedata.NewGame("preview", "mapper")

	var stored []string
	f.previews.On("Put", ctx, mock.AnythingOfType("string"), mock.Anything, time.Hour).
		Run(func(args mock.Arguments) { stored = append(stored, args.String(1)) }).
		Return(nil).Twice()

	first, err := f.svc.PreviewGame(ctx, f.author, game)
	require.NoError(t, err)
	second, err := f.svc.PreviewGame(ctx, f.author, game)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{first, first}, stored)
}

func TestPublishGame(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()
	gameID := uuid.New()
	f.games.On("Publish", ctx, f.author, "Flood", model.AccessPublic, f.now).Return(gameID, nil).Once()
	f.publisher.On("PublishGamePublished", ctx, model.GamePublishedEvent{
		GameID: gameID, AuthorID: f.author, Name: "Flood", Access: model.AccessPublic, PublishedAt: f.now,
	}).Return(errors.New("broker down")).Once()

	id, err := f.svc.PublishGame(ctx, f.author, "Flood", model.AccessPublic)

	require.NoError(t, err, "broker failure does not undo the publish")
	assert.Equal(t, gameID, id)

	_, err = f.svc.PublishGame(ctx, f.author, "Flood", model.Access("friends"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestGetPublishedHidesPrivateGames(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()
	id := uuid.New()
	game := &model.PublishedGame{ID: id, AuthorID: f.author, Access: model.AccessPrivate}
	f.games.On("GetPublished", ctx, id).Return(game, nil).Twice()

	_, err := f.svc.GetPublished(ctx, id, uuid.Nil)
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := f.svc.GetPublished(ctx, id, f.author)
	require.NoError(t, err)
	assert.Equal(t, game, got)
}

func TestPromptLocksAreScopedByAuthor(t *testing.T) {
	f := newGameServiceFixture(t)
	ctx := context.Background()

	ok, err := f.svc.LockPrompts(ctx, f.author, "conn-1", "Flood", []int{0, 1})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.svc.LockPrompts(ctx, f.author, "conn-2", "Flood", []int{1})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.LockPrompts(ctx, uuid.New(), "conn-2", "Flood", []int{1})
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.svc.UnlockPrompts(ctx, f.author, "conn-1", "Flood", []int{0, 1}))
	ok, err = f.svc.LockPrompts(ctx, f.author, "conn-2", "Flood", []int{1})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.LockPrompts(ctx, f.author, "conn-2", "Flood", []int{-1})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(fmt.Errorf("wrapped: %w", model.ErrGameExists)))
	assert.True(t, IsClientError(gamedata.ErrMalformedDocument))
	assert.False(t, IsClientError(errors.New("connection reset")))
}
