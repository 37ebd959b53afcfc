// Package service содержит бизнес-логику сервера: игры авторов и сессии.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/lock"
	"sergis-author/internal/messaging"
	"sergis-author/internal/model"
	"sergis-author/internal/repository"
	"sergis-author/internal/storage"
	"sergis-author/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GameService - операции над играми одного автора.
type GameService interface {
	ListGames(ctx context.Context, authorID uuid.UUID) (storage.GameList, error)
	LoadGame(ctx context.Context, authorID uuid.UUID, name string) (*gamedata.Game, error)
	// SaveGame возвращает время изменения, записанное в документ.
	SaveGame(ctx context.Context, authorID uuid.UUID, name string, game *gamedata.Game) (time.Time, error)
	RenameGame(ctx context.Context, authorID uuid.UUID, oldName, newName string) error
	RemoveGame(ctx context.Context, authorID uuid.UUID, name string) error
	CheckGameName(ctx context.Context, authorID uuid.UUID, name string) error

	// PreviewGame сохраняет документ для предпросмотра и возвращает его идентификатор.
	PreviewGame(ctx context.Context, authorID uuid.UUID, game *gamedata.Game) (string, error)
	GetPreview(ctx context.Context, id string) ([]byte, error)
	PublishGame(ctx context.Context, authorID uuid.UUID, name string, access model.Access) (uuid.UUID, error)
	// GetPublished отдает приватную игру только ее автору (viewer).
	GetPublished(ctx context.Context, id uuid.UUID, viewer uuid.UUID) (*model.PublishedGame, error)

	LockPrompts(ctx context.Context, authorID uuid.UUID, owner, game string, indices []int) (bool, error)
	UnlockPrompts(ctx context.Context, authorID uuid.UUID, owner, game string, indices []int) error
}

// GameServiceConfig - настройки GameService.
type GameServiceConfig struct {
	PreviewTTL time.Duration
}

type gameServiceImpl struct {
	games     repository.GameRepository
	previews  repository.PreviewStore
	publisher messaging.GameEventPublisher
	locks     *lock.PromptLocks
	cfg       GameServiceConfig
	now       func() time.Time
	logger    *zap.Logger
}

// NewGameService создает GameService.
func NewGameService(
	games repository.GameRepository,
	previews repository.PreviewStore,
	publisher messaging.GameEventPublisher,
	locks *lock.PromptLocks,
	cfg GameServiceConfig,
	logger *zap.Logger,
) GameService {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &gameServiceImpl{
		games:     games,
		previews:  previews,
		publisher: publisher,
		locks:     locks,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger.Named("GameService"),
	}
}

func (s *gameServiceImpl) ListGames(ctx context.Context, authorID uuid.UUID) (storage.GameList, error) {
	summaries, err := s.games.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("error getting game list: %w", err)
	}
	list := make(storage.GameList, len(summaries))
	for _, g := range summaries {
		list[g.Name] = g.UpdatedAt
	}
	return list, nil
}

func (s *gameServiceImpl) LoadGame(ctx context.Context, authorID uuid.UUID, name string) (*gamedata.Game, error) {
	record, err := s.games.Get(ctx, authorID, name)
	if err != nil {
		return nil, fmt.Errorf("error loading game %q: %w", name, err)
	}
	game, err := gamedata.Import(record.Document)
	if err != nil {
		s.logger.Error("Stored game document is malformed", zap.String("gameID", record.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("error loading game %q: %w", name, err)
	}
	return game, nil
}

func (s *gameServiceImpl) SaveGame(ctx context.Context, authorID uuid.UUID, name string, game *gamedata.Game) (time.Time, error) {
	if !storage.ValidGameName(name) {
		return time.Time{}, fmt.Errorf("error saving game %q: %w", name, model.ErrInvalidGameName)
	}
	if game == nil {
		return time.Time{}, fmt.Errorf("error saving game %q: %w", name, model.ErrInvalidInput)
	}

	game.Modified = gamedata.NewTimestamp(s.now())
	document, err := gamedata.Export(game)
	if err != nil {
		return time.Time{}, fmt.Errorf("error saving game %q: %w", name, err)
	}
	if _, err := s.games.Upsert(ctx, authorID, name, document); err != nil {
		return time.Time{}, fmt.Errorf("error saving game %q: %w", name, err)
	}

	gameSavesTotal.Inc()
	s.logger.Debug("Game saved", zap.String("authorID", authorID.String()), zap.String("name", name), zap.Int("prompts", len(game.PromptList)))
	return game.Modified.Time, nil
}

func (s *gameServiceImpl) RenameGame(ctx context.Context, authorID uuid.UUID, oldName, newName string) error {
	if !storage.ValidGameName(newName) {
		return fmt.Errorf("error renaming game %q: %w", oldName, model.ErrInvalidGameName)
	}
	if oldName == newName {
		if _, err := s.games.Get(ctx, authorID, oldName); err != nil {
			return fmt.Errorf("error renaming game %q: %w", oldName, err)
		}
		return nil
	}
	if err := s.games.Rename(ctx, authorID, oldName, newName); err != nil {
		return fmt.Errorf("error renaming game %q to %q: %w", oldName, newName, err)
	}
	return nil
}

func (s *gameServiceImpl) RemoveGame(ctx context.Context, authorID uuid.UUID, name string) error {
	if err := s.games.Delete(ctx, authorID, name); err != nil {
		return fmt.Errorf("error removing game %q: %w", name, err)
	}
	s.logger.Info("Game removed", zap.String("authorID", authorID.String()), zap.String("name", name))
	return nil
}

func (s *gameServiceImpl) CheckGameName(ctx context.Context, authorID uuid.UUID, name string) error {
	if !storage.ValidGameName(name) {
		return fmt.Errorf("game name %q: %w", name, model.ErrInvalidGameName)
	}
	exists, err := s.games.Exists(ctx, authorID, name)
	if err != nil {
		return fmt.Errorf("error checking game name %q: %w", name, err)
	}
	if exists {
		return fmt.Errorf("game name %q: %w", name, model.ErrGameExists)
	}
	return nil
}

func (s *gameServiceImpl) PreviewGame(ctx context.Context, authorID uuid.UUID, game *gamedata.Game) (string, error) {
	if game == nil {
		return "", fmt.Errorf("error previewing game: %w", model.ErrInvalidInput)
	}
	document, err := gamedata.Export(game)
	if err != nil {
		return "", fmt.Errorf("error previewing game: %w", err)
	}
	id := utils.DocumentHash(document)
	if err := s.previews.Put(ctx, id, document, s.cfg.PreviewTTL); err != nil {
		return "", fmt.Errorf("error previewing game: %w", err)
	}
	gamePreviewsTotal.Inc()
	s.logger.Debug("Preview stored", zap.String("authorID", authorID.String()), zap.String("previewID", id))
	return id, nil
}

func (s *gameServiceImpl) GetPreview(ctx context.Context, id string) ([]byte, error) {
	return s.previews.Get(ctx, id)
}

func (s *gameServiceImpl) PublishGame(ctx context.Context, authorID uuid.UUID, name string, access model.Access) (uuid.UUID, error) {
	if !access.Valid() {
		return uuid.Nil, fmt.Errorf("%w: unknown access %q", model.ErrInvalidInput, access)
	}
	publishedAt := s.now().UTC()
	id, err := s.games.Publish(ctx, authorID, name, access, publishedAt)
	if err != nil {
		return uuid.Nil, fmt.Errorf("error publishing game %q: %w", name, err)
	}
	gamePublishesTotal.WithLabelValues(string(access)).Inc()

	event := model.GamePublishedEvent{
		GameID:      id,
		AuthorID:    authorID,
		Name:        name,
		Access:      access,
		PublishedAt: publishedAt,
	}
	// Игра уже опубликована; сбой брокера только логируется.
	if err := s.publisher.PublishGamePublished(ctx, event); err != nil {
		s.logger.Error("Failed to send game published event", zap.String("gameID", id.String()), zap.Error(err))
	}
	s.logger.Info("Game published", zap.String("gameID", id.String()), zap.String("access", string(access)))
	return id, nil
}

func (s *gameServiceImpl) GetPublished(ctx context.Context, id uuid.UUID, viewer uuid.UUID) (*model.PublishedGame, error) {
	game, err := s.games.GetPublished(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.Access != model.AccessPublic && game.AuthorID != viewer {
		// Чужая приватная игра неотличима от несуществующей.
		return nil, model.ErrNotFound
	}
	return game, nil
}

func (s *gameServiceImpl) LockPrompts(ctx context.Context, authorID uuid.UUID, owner, game string, indices []int) (bool, error) {
	if len(indices) == 0 {
		return true, nil
	}
	for _, index := range indices {
		if index < 0 {
			return false, fmt.Errorf("%w: negative prompt index %d", model.ErrInvalidInput, index)
		}
	}
	ok, err := s.locks.Lock(ctx, authorID.String(), game, owner, indices)
	if err != nil {
		return false, fmt.Errorf("error locking prompts of %q: %w", game, err)
	}
	return ok, nil
}

func (s *gameServiceImpl) UnlockPrompts(ctx context.Context, authorID uuid.UUID, owner, game string, indices []int) error {
	if err := s.locks.Unlock(ctx, authorID.String(), game, owner, indices); err != nil {
		return fmt.Errorf("error unlocking prompts of %q: %w", game, err)
	}
	return nil
}

// IsClientError сообщает, вызвана ли ошибка запросом клиента, а не сбоем сервера.
func IsClientError(err error) bool {
	for _, target := range []error{
		model.ErrNotFound, model.ErrGameExists, model.ErrInvalidGameName, model.ErrPromptLocked,
		model.ErrInvalidInput, model.ErrBadRequest, gamedata.ErrMalformedDocument,
		model.ErrUnauthorized, model.ErrForbidden, model.ErrUserAlreadyExists, model.ErrInvalidCredentials,
		model.ErrTokenInvalid, model.ErrTokenExpired, model.ErrTokenMalformed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
