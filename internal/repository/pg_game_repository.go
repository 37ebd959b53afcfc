package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sergis-author/internal/database"
	"sergis-author/internal/model"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	gameColumns = `id, author_id, name, document, access, published_at, created_at, updated_at`

	listGamesQuery  = `SELECT name, updated_at FROM games WHERE author_id = $1 ORDER BY name`
	getGameQuery    = `SELECT ` + gameColumns + ` FROM games WHERE author_id = $1 AND name = $2`
	gameExistsQuery = `SELECT EXISTS (SELECT 1 FROM games WHERE author_id = $1 AND name = $2)`
	upsertGameQuery = `
        INSERT INTO games (author_id, name, document)
        VALUES ($1, $2, $3)
        ON CONFLICT (author_id, name) DO UPDATE SET
            document = EXCLUDED.document,
            updated_at = NOW()
        RETURNING ` + gameColumns
	renameGameQuery  = `UPDATE games SET name = $3, updated_at = NOW() WHERE author_id = $1 AND name = $2`
	deleteGameQuery  = `DELETE FROM games WHERE author_id = $1 AND name = $2`
	publishGameQuery = `
        UPDATE games SET access = $3, published_at = $4
        WHERE author_id = $1 AND name = $2
        RETURNING id`
	getPublishedQuery = `
        SELECT g.id, g.author_id, g.name, a.username AS author, g.access, g.published_at, g.document
        FROM games g JOIN authors a ON a.id = g.author_id
        WHERE g.id = $1 AND g.published_at IS NOT NULL`
)

var _ GameRepository = (*pgGameRepository)(nil)

type pgGameRepository struct {
	db     database.DBTX
	logger *zap.Logger
}

// NewPgGameRepository создает GameRepository поверх Postgres.
func NewPgGameRepository(db database.DBTX, logger *zap.Logger) GameRepository {
	return &pgGameRepository{db: db, logger: logger.Named("PgGameRepo")}
}

func (r *pgGameRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.GameSummary, error) {
	games := []model.GameSummary{}
	if err := pgxscan.Select(ctx, r.db, &games, listGamesQuery, authorID); err != nil {
		r.logger.Error("Failed to list games", zap.String("authorID", authorID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (r *pgGameRepository) Get(ctx context.Context, authorID uuid.UUID, name string) (*model.GameRecord, error) {
	var game model.GameRecord
	if err := pgxscan.Get(ctx, r.db, &game, getGameQuery, authorID, name); err != nil {
		if pgxscan.NotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get game %q: %w", name, err)
	}
	return &game, nil
}

func (r *pgGameRepository) Exists(ctx context.Context, authorID uuid.UUID, name string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, gameExistsQuery, authorID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check game %q: %w", name, err)
	}
	return exists, nil
}

func (r *pgGameRepository) Upsert(ctx context.Context, authorID uuid.UUID, name string, document json.RawMessage) (*model.GameRecord, error) {
	var game model.GameRecord
	if err := pgxscan.Get(ctx, r.db, &game, upsertGameQuery, authorID, name, document); err != nil {
		r.logger.Error("Failed to upsert game", zap.String("authorID", authorID.String()), zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to save game %q: %w", name, err)
	}
	r.logger.Debug("Game saved", zap.String("gameID", game.ID.String()), zap.String("name", name))
	return &game, nil
}

func (r *pgGameRepository) Rename(ctx context.Context, authorID uuid.UUID, oldName, newName string) error {
	tag, err := r.db.Exec(ctx, renameGameQuery, authorID, oldName, newName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return model.ErrGameExists
		}
		return fmt.Errorf("failed to rename game %q: %w", oldName, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *pgGameRepository) Delete(ctx context.Context, authorID uuid.UUID, name string) error {
	tag, err := r.db.Exec(ctx, deleteGameQuery, authorID, name)
	if err != nil {
		return fmt.Errorf("failed to delete game %q: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *pgGameRepository) Publish(ctx context.Context, authorID uuid.UUID, name string, access model.Access, at time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, publishGameQuery, authorID, name, string(access), at).Scan(&id); err != nil {
		if pgxscan.NotFound(err) {
			return uuid.Nil, model.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to publish game %q: %w", name, err)
	}
	return id, nil
}

func (r *pgGameRepository) GetPublished(ctx context.Context, id uuid.UUID) (*model.PublishedGame, error) {
	var game model.PublishedGame
	if err := pgxscan.Get(ctx, r.db, &game, getPublishedQuery, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get published game %s: %w", id, err)
	}
	return &game, nil
}
