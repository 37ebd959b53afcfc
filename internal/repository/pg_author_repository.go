package repository

import (
	"context"
	"errors"
	"fmt"

	"sergis-author/internal/database"
	"sergis-author/internal/model"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	uniqueViolationCode = "23505"

	createAuthorQuery        = `INSERT INTO authors (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	getAuthorByUsernameQuery = `SELECT id, username, password_hash, created_at FROM authors WHERE username = $1`
	getAuthorByIDQuery       = `SELECT id, username, password_hash, created_at FROM authors WHERE id = $1`
)

var _ AuthorRepository = (*pgAuthorRepository)(nil)

type pgAuthorRepository struct {
	db     database.DBTX
	logger *zap.Logger
}

// NewPgAuthorRepository создает AuthorRepository поверх Postgres.
func NewPgAuthorRepository(db database.DBTX, logger *zap.Logger) AuthorRepository {
	return &pgAuthorRepository{db: db, logger: logger.Named("PgAuthorRepo")}
}

func (r *pgAuthorRepository) Create(ctx context.Context, author *model.Author) error {
	err := r.db.QueryRow(ctx, createAuthorQuery, author.Username, author.PasswordHash).Scan(&author.ID, &author.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			r.logger.Warn("Attempted to create duplicate author", zap.String("username", author.Username))
			return model.ErrUserAlreadyExists
		}
		r.logger.Error("Failed to create author", zap.String("username", author.Username), zap.Error(err))
		return fmt.Errorf("failed to create author in postgres: %w", err)
	}
	r.logger.Info("Author created", zap.String("authorID", author.ID.String()), zap.String("username", author.Username))
	return nil
}

func (r *pgAuthorRepository) GetByUsername(ctx context.Context, username string) (*model.Author, error) {
	return r.getOne(ctx, getAuthorByUsernameQuery, username)
}

func (r *pgAuthorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return r.getOne(ctx, getAuthorByIDQuery, id)
}

func (r *pgAuthorRepository) getOne(ctx context.Context, query string, arg any) (*model.Author, error) {
	var author model.Author
	if err := pgxscan.Get(ctx, r.db, &author, query, arg); err != nil {
		if pgxscan.NotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get author from postgres: %w", err)
	}
	return &author, nil
}
