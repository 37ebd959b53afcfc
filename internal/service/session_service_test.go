package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sergis-author/internal/auth"
	"sergis-author/internal/model"
	"sergis-author/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newSessionService(t *testing.T) (SessionService, *mocks.AuthorRepository, *auth.JWTManager, *auth.PasswordHasher) {
	t.Helper()
	authors := new(mocks.AuthorRepository)
	t.Cleanup(func() { authors.AssertExpectations(t) })
	jwtManager, err := auth.NewJWTManager("test-secret", time.Hour, nil)
	require.NoError(t, err)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	return NewSessionService(authors, hasher, jwtManager, zap.NewNop()), authors, jwtManager, hasher
}

func TestRegister(t *testing.T) {
	svc, authors, _, hasher := newSessionService(t)
	ctx := context.Background()
	authorID := uuid.New()

	authors.On("Create", ctx, mock.MatchedBy(func(a *model.Author) bool {
		return a.Username == "mapper" && hasher.Compare(a.PasswordHash, "secret1") == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Author).ID = authorID
	}).Return(nil).Once()

	author, err := svc.Register(ctx, "  mapper ", "secret1")

	require.NoError(t, err)
	assert.Equal(t, authorID, author.ID)
	assert.Empty(t, author.PasswordHash)
}

func TestRegisterErrors(t *testing.T) {
	svc, authors, _, _ := newSessionService(t)
	ctx := context.Background()
	authors.On("Create", ctx, mock.Anything).Return(model.ErrUserAlreadyExists).Once()

	_, err := svc.Register(ctx, "mapper", "secret1")
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)

	_, err = svc.Register(ctx, " ", "secret1")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestLogin(t *testing.T) {
	svc, authors, jwtManager, hasher := newSessionService(t)
	ctx := context.Background()
	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	stored := &model.Author{ID: uuid.New(), Username: "mapper", PasswordHash: hash}
	authors.On("GetByUsername", ctx, "mapper").Return(stored, nil)

	resp, err := svc.Login(ctx, "mapper", "secret1")
	require.NoError(t, err)
	assert.Empty(t, resp.Author.PasswordHash)

	claims, err := jwtManager.VerifyToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.AuthorID)
	assert.Equal(t, "mapper", claims.Username)

	_, err = svc.Login(ctx, "mapper", "wrong")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestLoginUnknownAuthor(t *testing.T) {
	svc, authors, _, _ := newSessionService(t)
	ctx := context.Background()
	authors.On("GetByUsername", ctx, "ghost").Return(nil, model.ErrNotFound).Once()
	authors.On("GetByUsername", ctx, "db").Return(nil, errors.New("conn refused")).Once()

	_, err := svc.Login(ctx, "ghost", "x")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "db", "x")
	assert.ErrorContains(t, err, "conn refused")
	assert.NotErrorIs(t, err, model.ErrInvalidCredentials)
}
