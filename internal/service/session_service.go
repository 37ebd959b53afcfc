package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sergis-author/internal/auth"
	"sergis-author/internal/model"
	"sergis-author/internal/repository"

	"go.uber.org/zap"
)

// SessionService регистрирует авторов и выдает токены сессий.
type SessionService interface {
	Register(ctx context.Context, username, password string) (*model.Author, error)
	Login(ctx context.Context, username, password string) (*model.TokenResponse, error)
}

type sessionServiceImpl struct {
	authors repository.AuthorRepository
	hasher  *auth.PasswordHasher
	issuer  auth.TokenIssuer
	logger  *zap.Logger
}

// NewSessionService создает SessionService.
func NewSessionService(authors repository.AuthorRepository, hasher *auth.PasswordHasher, issuer auth.TokenIssuer, logger *zap.Logger) SessionService {
	return &sessionServiceImpl{
		authors: authors,
		hasher:  hasher,
		issuer:  issuer,
		logger:  logger.Named("SessionService"),
	}
}

func (s *sessionServiceImpl) Register(ctx context.Context, username, password string) (*model.Author, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", model.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	author := &model.Author{Username: username, PasswordHash: hash}
	if err := s.authors.Create(ctx, author); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error registering author %q: %w", username, err)
	}

	registrationsTotal.Inc()
	s.logger.Info("Author registered", zap.String("authorID", author.ID.String()), zap.String("username", username))
	author.PasswordHash = ""
	return author, nil
}

func (s *sessionServiceImpl) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	author, err := s.authors.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			loginsTotal.WithLabelValues("invalid").Inc()
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error logging in %q: %w", username, err)
	}
	if err := s.hasher.Compare(author.PasswordHash, password); err != nil {
		loginsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	token, expiresAt, err := s.issuer.IssueToken(author)
	if err != nil {
		return nil, fmt.Errorf("error logging in %q: %w", username, err)
	}
	loginsTotal.WithLabelValues("success").Inc()
	s.logger.Debug("Session issued", zap.String("authorID", author.ID.String()))

	public := *author
	public.PasswordHash = ""
	return &model.TokenResponse{Token: token, ExpiresAt: expiresAt, Author: public}, nil
}
