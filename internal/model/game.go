package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Access определяет видимость опубликованной игры.
type Access string

const (
	AccessPublic  Access = "public"
	AccessPrivate Access = "private"
)

// Valid сообщает, допустимо ли значение.
func (a Access) Valid() bool {
	return a == AccessPublic || a == AccessPrivate
}

// GameRecord - строка таблицы games: документ автора, сохраненный под именем.
type GameRecord struct {
	ID          uuid.UUID       `db:"id"`
	AuthorID    uuid.UUID       `db:"author_id"`
	Name        string          `db:"name"`
	Document    json.RawMessage `db:"document"`
	Access      *Access         `db:"access"`
	PublishedAt *time.Time      `db:"published_at"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// GameSummary - элемент списка игр автора.
type GameSummary struct {
	Name      string    `json:"name" db:"name"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PublishedGame - опубликованная игра, отдаваемая по GET /published/:id.
type PublishedGame struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	AuthorID    uuid.UUID       `json:"-" db:"author_id"`
	Name        string          `json:"name" db:"name"`
	Author      string          `json:"author" db:"author"`
	Access      Access          `json:"access" db:"access"`
	PublishedAt time.Time       `json:"published_at" db:"published_at"`
	Document    json.RawMessage `json:"document" db:"document"`
}

// GamePublishedEvent уходит в брокер после публикации.
type GamePublishedEvent struct {
	GameID      uuid.UUID `json:"game_id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Name        string    `json:"name"`
	Access      Access    `json:"access"`
	PublishedAt time.Time `json:"published_at"`
}
