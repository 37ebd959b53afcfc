package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/lock"
	"sergis-author/internal/model"
	"sergis-author/internal/storage"

	"github.com/google/uuid"
)

// Ключи совпадают с ключами браузерного хранилища редактора.
const (
	gameListKey    = "gameList"
	gameKeyPrefix  = "game_"
	recentFilesKey = "sergis_author_recent_files"
	maxRecentFiles = 10

	lockScope = "local"
	lockTTL   = 10 * time.Minute
)

var (
	_ storage.Backend      = (*Backend)(nil)
	_ storage.PromptLocker = (*Backend)(nil)
)

// Backend реализует storage.Backend поверх Store.
type Backend struct {
	mu    sync.Mutex
	store Store
	locks *lock.PromptLocks
	owner string
	now   func() time.Time
}

// New создает локальное хранилище поверх store.
func New(store Store) *Backend {
	return &Backend{
		store: store,
		locks: lock.NewPromptLocks(lock.NewMemoryLocker(), lockTTL, nil),
		owner: uuid.NewString(),
		now:   time.Now,
	}
}

func gameKey(name string) string {
	return gameKeyPrefix + name
}

// Init создает пустой список игр, если его еще нет, и проверяет, что он читается.
func (b *Backend) Init(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.store.Get(ctx, gameListKey)
	if errors.Is(err, ErrKeyNotFound) {
		return b.writeGameList(ctx, map[string]gamedata.Timestamp{})
	}
	if err != nil {
		return fmt.Errorf("error initializing local storage: %w", err)
	}
	if _, err := b.readGameList(ctx); err != nil {
		return fmt.Errorf("error initializing local storage: %w", err)
	}
	return nil
}

func (b *Backend) GetGameList(ctx context.Context) (storage.GameList, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.readGameList(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting game list: %w", err)
	}
	out := make(storage.GameList, len(list))
	for name, ts := range list {
		out[name] = ts.Time
	}
	return out, nil
}

func (b *Backend) LoadGame(ctx context.Context, name string) (*gamedata.Game, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := b.store.Get(ctx, gameKey(name))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, fmt.Errorf("error loading game %q: %w", name, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading game %q: %w", name, err)
	}
	game, err := gamedata.Import([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("error loading game %q: %w", name, err)
	}
	if err := b.touchRecent(ctx, name); err != nil {
		return nil, fmt.Errorf("error loading game %q: %w", name, err)
	}
	return game, nil
}

// SaveGame выставляет game.Modified в текущее время и записывает экспортированный документ.
func (b *Backend) SaveGame(ctx context.Context, name string, game *gamedata.Game) error {
	if !storage.ValidGameName(name) {
		return fmt.Errorf("error saving game %q: %w", name, model.ErrInvalidGameName)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.readGameList(ctx)
	if err != nil {
		return fmt.Errorf("error saving game %q: %w", name, err)
	}

	game.Modified = gamedata.NewTimestamp(b.now())
	data, err := gamedata.Export(game)
	if err != nil {
		return fmt.Errorf("error saving game %q: %w", name, err)
	}
	if err := b.store.Set(ctx, gameKey(name), string(data)); err != nil {
		return fmt.Errorf("error saving game %q: %w", name, err)
	}

	list[name] = game.Modified
	if err := b.writeGameList(ctx, list); err != nil {
		return fmt.Errorf("error saving game %q: %w", name, err)
	}
	if err := b.touchRecent(ctx, name); err != nil {
		return fmt.Errorf("error saving game %q: %w", name, err)
	}
	return nil
}

func (b *Backend) RenameGame(ctx context.Context, oldName, newName string) error {
	if !storage.ValidGameName(newName) {
		return fmt.Errorf("error renaming game %q: %w", oldName, model.ErrInvalidGameName)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.readGameList(ctx)
	if err != nil {
		return fmt.Errorf("error renaming game %q: %w", oldName, err)
	}
	modified, ok := list[oldName]
	if !ok {
		return fmt.Errorf("error renaming game %q: %w", oldName, model.ErrNotFound)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := list[newName]; taken {
		return fmt.Errorf("error renaming game %q to %q: %w", oldName, newName, model.ErrGameExists)
	}

	data, err := b.store.Get(ctx, gameKey(oldName))
	if err != nil {
		return fmt.Errorf("error renaming game %q: %w", oldName, err)
	}
	if err := b.store.Set(ctx, gameKey(newName), data); err != nil {
		return fmt.Errorf("error renaming game %q: %w", oldName, err)
	}
	if err := b.store.Delete(ctx, gameKey(oldName)); err != nil {
		return fmt.Errorf("error renaming game %q: %w", oldName, err)
	}

	delete(list, oldName)
	list[newName] = modified
	if err := b.writeGameList(ctx, list); err != nil {
		return fmt.Errorf("error renaming game %q: %w", oldName, err)
	}

	recent, err := b.readRecent(ctx)
	if err != nil {
		return fmt.Errorf("error renaming game %q: %w", oldName, err)
	}
	for i, name := range recent {
		if name == oldName {
			recent[i] = newName
		}
	}
	return b.writeRecent(ctx, recent)
}

func (b *Backend) RemoveGame(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.readGameList(ctx)
	if err != nil {
		return fmt.Errorf("error removing game %q: %w", name, err)
	}
	if _, ok := list[name]; !ok {
		return fmt.Errorf("error removing game %q: %w", name, model.ErrNotFound)
	}
	if err := b.store.Delete(ctx, gameKey(name)); err != nil {
		return fmt.Errorf("error removing game %q: %w", name, err)
	}
	delete(list, name)
	if err := b.writeGameList(ctx, list); err != nil {
		return fmt.Errorf("error removing game %q: %w", name, err)
	}

	recent, err := b.readRecent(ctx)
	if err != nil {
		return fmt.Errorf("error removing game %q: %w", name, err)
	}
	return b.writeRecent(ctx, slices.DeleteFunc(recent, func(n string) bool { return n == name }))
}

func (b *Backend) CheckGameName(ctx context.Context, name string) error {
	if !storage.ValidGameName(name) {
		return fmt.Errorf("game name %q: %w", name, model.ErrInvalidGameName)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	list, err := b.readGameList(ctx)
	if err != nil {
		return fmt.Errorf("error checking game name %q: %w", name, err)
	}
	if _, taken := list[name]; taken {
		return fmt.Errorf("game name %q: %w", name, model.ErrGameExists)
	}
	return nil
}

// RecentFiles возвращает недавно открытые игры, последняя - первой.
func (b *Backend) RecentFiles(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readRecent(ctx)
}

func (b *Backend) LockPrompts(ctx context.Context, game string, indices []int) (bool, error) {
	return b.locks.Lock(ctx, lockScope, game, b.owner, indices)
}

func (b *Backend) UnlockPrompts(ctx context.Context, game string, indices []int) error {
	return b.locks.Unlock(ctx, lockScope, game, b.owner, indices)
}

func (b *Backend) Close() error {
	return b.store.Close()
}

// readGameList читает gameList; отсутствующий ключ - пустой список.
func (b *Backend) readGameList(ctx context.Context) (map[string]gamedata.Timestamp, error) {
	raw, err := b.store.Get(ctx, gameListKey)
	if errors.Is(err, ErrKeyNotFound) {
		return map[string]gamedata.Timestamp{}, nil
	}
	if err != nil {
		return nil, err
	}
	list := map[string]gamedata.Timestamp{}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("corrupted %s: %w", gameListKey, err)
	}
	return list, nil
}

func (b *Backend) writeGameList(ctx context.Context, list map[string]gamedata.Timestamp) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", gameListKey, err)
	}
	return b.store.Set(ctx, gameListKey, string(data))
}

// readRecent читает список недавних файлов; битое значение считается пустым списком.
func (b *Backend) readRecent(ctx context.Context) ([]string, error) {
	raw, err := b.store.Get(ctx, recentFilesKey)
	if errors.Is(err, ErrKeyNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	var recent []string
	if err := json.Unmarshal([]byte(raw), &recent); err != nil || recent == nil {
		return []string{}, nil
	}
	return recent, nil
}

func (b *Backend) writeRecent(ctx context.Context, recent []string) error {
	if len(recent) > maxRecentFiles {
		recent = recent[:maxRecentFiles]
	}
	data, err := json.Marshal(recent)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", recentFilesKey, err)
	}
	return b.store.Set(ctx, recentFilesKey, string(data))
}

// touchRecent переносит name в начало списка недавних файлов.
func (b *Backend) touchRecent(ctx context.Context, name string) error {
	recent, err := b.readRecent(ctx)
	if err != nil {
		return err
	}
	recent = slices.DeleteFunc(recent, func(n string) bool { return n == name })
	return b.writeRecent(ctx, append([]string{name}, recent...))
}
