package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"sergis-author/internal/database"
	"sergis-author/internal/model"
	"sergis-author/internal/repository"
	"sergis-author/internal/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type RepositorySuite struct {
	suite.Suite
	ctx     context.Context
	pool    *pgxpool.Pool
	authors repository.AuthorRepository
	games   repository.GameRepository
	author  *model.Author
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	logger := zap.NewNop()

	connStr := testutil.StartPostgres(s.T())
	s.Require().NoError(database.ApplyMigrations(connStr, logger))
	// Повторный запуск ничего не меняет.
	s.Require().NoError(database.ApplyMigrations(connStr, logger))

	pool, err := database.NewPool(s.ctx, database.PoolConfig{URL: connStr, MaxConns: 4}, logger)
	s.Require().NoError(err)
	s.pool = pool

	s.authors = repository.NewPgAuthorRepository(pool, logger)
	s.games = repository.NewPgGameRepository(pool, logger)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *RepositorySuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "TRUNCATE TABLE games, authors CASCADE")
	s.Require().NoError(err)

	s.author = &model.Author{Username: "mapper", PasswordHash: "hash"}
	s.Require().NoError(s.authors.Create(s.ctx, s.author))
}

func (s *RepositorySuite) TestAuthors() {
	s.NotEqual(uuid.Nil, s.author.ID)
	s.False(s.author.CreatedAt.IsZero())

	dup := &model.Author{Username: "mapper", PasswordHash: "x"}
	s.ErrorIs(s.authors.Create(s.ctx, dup), model.ErrUserAlreadyExists)

	byName, err := s.authors.GetByUsername(s.ctx, "mapper")
	s.Require().NoError(err)
	s.Equal(s.author.ID, byName.ID)
	s.Equal("hash", byName.PasswordHash)

	byID, err := s.authors.GetByID(s.ctx, s.author.ID)
	s.Require().NoError(err)
	s.Equal("mapper", byID.Username)

	_, err = s.authors.GetByUsername(s.ctx, "ghost")
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *RepositorySuite) TestGameLifecycle() {
	doc := json.RawMessage(`{"name": "Flood", "promptList": []}`)

	created, err := s.games.Upsert(s.ctx, s.author.ID, "Flood", doc)
	s.Require().NoError(err)
	s.Nil(created.Access)
	s.Nil(created.PublishedAt)

	updated, err := s.games.Upsert(s.ctx, s.author.ID, "Flood", json.RawMessage(`{"name": "Flood v2"}`))
	s.Require().NoError(err)
	s.Equal(created.ID, updated.ID)
	s.False(updated.UpdatedAt.Before(created.UpdatedAt))

	got, err := s.games.Get(s.ctx, s.author.ID, "Flood")
	s.Require().NoError(err)
	s.JSONEq(`{"name": "Flood v2"}`, string(got.Document))

	exists, err := s.games.Exists(s.ctx, s.author.ID, "Flood")
	s.Require().NoError(err)
	s.True(exists)

	_, err = s.games.Upsert(s.ctx, s.author.ID, "Other", doc)
	s.Require().NoError(err)
	s.ErrorIs(s.games.Rename(s.ctx, s.author.ID, "Flood", "Other"), model.ErrGameExists)
	s.ErrorIs(s.games.Rename(s.ctx, s.author.ID, "Nope", "X"), model.ErrNotFound)
	s.Require().NoError(s.games.Rename(s.ctx, s.author.ID, "Flood", "Renamed"))

	list, err := s.games.ListByAuthor(s.ctx, s.author.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("Other", list[0].Name)
	s.Equal("Renamed", list[1].Name)

	s.Require().NoError(s.games.Delete(s.ctx, s.author.ID, "Other"))
	s.ErrorIs(s.games.Delete(s.ctx, s.author.ID, "Other"), model.ErrNotFound)
	_, err = s.games.Get(s.ctx, s.author.ID, "Other")
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *RepositorySuite) TestGamesAreScopedByAuthor() {
	other := &model.Author{Username: "second", PasswordHash: "hash"}
	s.Require().NoError(s.authors.Create(s.ctx, other))

	_, err := s.games.Upsert(s.ctx, s.author.ID, "Shared", json.RawMessage(`{}`))
	s.Require().NoError(err)
	_, err = s.games.Upsert(s.ctx, other.ID, "Shared", json.RawMessage(`{}`))
	s.Require().NoError(err, "same name under another author")

	list, err := s.games.ListByAuthor(s.ctx, other.ID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *RepositorySuite) TestPublish() {
	_, err := s.games.Upsert(s.ctx, s.author.ID, "Flood", json.RawMessage(`{"name": "Flood"}`))
	s.Require().NoError(err)

	at := time.Now().UTC().Truncate(time.Millisecond)
	id, err := s.games.Publish(s.ctx, s.author.ID, "Flood", model.AccessPublic, at)
	s.Require().NoError(err)

	published, err := s.games.GetPublished(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("mapper", published.Author)
	s.Equal(model.AccessPublic, published.Access)
	s.True(at.Equal(published.PublishedAt))
	s.JSONEq(`{"name": "Flood"}`, string(published.Document))

	_, err = s.games.Publish(s.ctx, s.author.ID, "Missing", model.AccessPrivate, at)
	s.ErrorIs(err, model.ErrNotFound)

	_, err = s.games.GetPublished(s.ctx, uuid.New())
	s.ErrorIs(err, model.ErrNotFound)
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}
