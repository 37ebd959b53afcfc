// Package repository хранит авторов и их игры в PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"sergis-author/internal/model"

	"github.com/google/uuid"
)

// AuthorRepository - учетные записи авторов.
type AuthorRepository interface {
	// Create вставляет автора и заполняет ID и CreatedAt. Занятое имя - model.ErrUserAlreadyExists.
	Create(ctx context.Context, author *model.Author) error
	GetByUsername(ctx context.Context, username string) (*model.Author, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
}

// GameRepository - игры авторов. Имя уникально в пределах автора.
type GameRepository interface {
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.GameSummary, error)
	Get(ctx context.Context, authorID uuid.UUID, name string) (*model.GameRecord, error)
	Exists(ctx context.Context, authorID uuid.UUID, name string) (bool, error)
	// Upsert создает игру или заменяет ее документ.
	Upsert(ctx context.Context, authorID uuid.UUID, name string, document json.RawMessage) (*model.GameRecord, error)
	Rename(ctx context.Context, authorID uuid.UUID, oldName, newName string) error
	Delete(ctx context.Context, authorID uuid.UUID, name string) error
	// Publish выставляет доступ и время публикации, возвращает ID игры.
	Publish(ctx context.Context, authorID uuid.UUID, name string, access model.Access, at time.Time) (uuid.UUID, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*model.PublishedGame, error)
}

// PreviewStore хранит экспортированные документы для предпросмотра с ограниченным сроком жизни.
type PreviewStore interface {
	Put(ctx context.Context, id string, document []byte, ttl time.Duration) error
	Get(ctx context.Context, id string) ([]byte, error)
}
