// Package storage описывает общий контракт хранилищ игр: локального и удаленного.
package storage

import (
	"context"
	"regexp"
	"sort"
	"time"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/model"
)

// Backend - набор операций, одинаковый для всех хранилищ.
type Backend interface {
	// Init подготавливает хранилище: открывает соединение, получает токен сессии.
	Init(ctx context.Context) error
	// GetGameList возвращает имена игр и время их последнего изменения.
	GetGameList(ctx context.Context) (GameList, error)
	// LoadGame загружает документ; результат уже прошел gamedata.Check.
	LoadGame(ctx context.Context, name string) (*gamedata.Game, error)
	// SaveGame сохраняет документ под именем, перезаписывая существующий.
	SaveGame(ctx context.Context, name string, game *gamedata.Game) error
	RenameGame(ctx context.Context, oldName, newName string) error
	RemoveGame(ctx context.Context, name string) error
	// CheckGameName возвращает nil, если имя допустимо и свободно,
	// model.ErrInvalidGameName или model.ErrGameExists иначе.
	CheckGameName(ctx context.Context, name string) error
	Close() error
}

// Previewer умеет выложить документ для предпросмотра и вернуть его адрес.
type Previewer interface {
	PreviewGame(ctx context.Context, game *gamedata.Game) (string, error)
}

// Publisher публикует сохраненную игру и возвращает ее адрес.
type Publisher interface {
	PublishGame(ctx context.Context, name string, access model.Access) (string, error)
}

// PromptLocker выдает рекомендательные блокировки промптов на время правки.
type PromptLocker interface {
	// LockPrompts захватывает все индексы или ни один; false - если кто-то уже держит блокировку.
	LockPrompts(ctx context.Context, game string, indices []int) (bool, error)
	UnlockPrompts(ctx context.Context, game string, indices []int) error
}

// GameList - имя игры -> время последнего изменения.
type GameList map[string]time.Time

// Names возвращает имена игр по алфавиту.
func (l GameList) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var gameNamePattern = regexp.MustCompile(`^[A-Za-z0-9~$"':;,.\-_]+$`)

// ValidGameName сообщает, подходит ли имя под допустимый набор символов.
func ValidGameName(name string) bool {
	return gameNamePattern.MatchString(name)
}
