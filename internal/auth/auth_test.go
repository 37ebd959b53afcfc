package auth

import (
	"context"
	"testing"
	"time"

	"sergis-author/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAuthor() *model.Author {
	return &model.Author{ID: uuid.New(), Username: "mapper"}
}

func TestIssueAndVerifyToken(t *testing.T) {
	m, err := NewJWTManager("secret", time.Hour, nil)
	require.NoError(t, err)
	author := testAuthor()

	token, expiresAt, err := m.IssueToken(author)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, author.ID, claims.AuthorID)
	assert.Equal(t, author.ID.String(), claims.Subject)
	assert.Equal(t, "mapper", claims.Username)
}

func TestVerifyTokenErrors(t *testing.T) {
	m, err := NewJWTManager("secret", time.Minute, nil)
	require.NoError(t, err)
	token, _, err := m.IssueToken(testAuthor())
	require.NoError(t, err)

	other, err := NewJWTManager("another", time.Minute, nil)
	require.NoError(t, err)
	_, err = other.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)

	_, err = m.VerifyToken(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, model.ErrTokenMalformed)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestVerifyTokenRejectsMissingAuthor(t *testing.T) {
	m, err := NewJWTManager("secret", time.Minute, nil)
	require.NoError(t, err)
	claims := &model.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.VerifyToken(context.Background(), token)
	assert.ErrorIs(t, err, model.ErrTokenInvalid)
}

func TestNewJWTManagerValidation(t *testing.T) {
	_, err := NewJWTManager("", time.Minute, nil)
	assert.Error(t, err)
	_, err = NewJWTManager("s", 0, nil)
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, h.Compare(hash, "correct horse"))
	assert.ErrorIs(t, h.Compare(hash, "battery staple"), model.ErrInvalidCredentials)
	assert.Error(t, h.Compare("garbage", "x"))
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
}
