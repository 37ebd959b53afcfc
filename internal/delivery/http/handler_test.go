package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sergis-author/internal/auth"
	"sergis-author/internal/model"
	"sergis-author/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	router   *gin.Engine
	sessions *mocks.SessionService
	games    *mocks.GameService
	tokens   *auth.JWTManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewJWTManager("http-secret", time.Hour, zap.NewNop())
	require.NoError(t, err)
	f := &fixture{
		router:   gin.New(),
		sessions: new(mocks.SessionService),
		games:    new(mocks.GameService),
		tokens:   tokens,
	}
	NewHandler(f.sessions, f.games, tokens, nil, zap.NewNop()).RegisterRoutes(f.router)
	return f
}

func (f *fixture) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) token(t *testing.T, authorID uuid.UUID) string {
	t.Helper()
	token, _, err := f.tokens.IssueToken(&model.Author{ID: authorID, Username: "ana"})
	require.NoError(t, err)
	return token
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	author := &model.Author{ID: uuid.New(), Username: "ana"}
	f.sessions.On("Register", mock.Anything, "ana", "secret-pass").Return(author, nil).Once()
	f.sessions.On("Register", mock.Anything, "bob", "secret-pass").Return(nil, model.ErrUserAlreadyExists).Once()

	w := f.do(http.MethodPost, "/api/register", model.RegisterRequest{Username: "ana", Password: "secret-pass"}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), author.ID.String())
	assert.NotContains(t, w.Body.String(), "password")

	w = f.do(http.MethodPost, "/api/register", model.RegisterRequest{Username: "bob", Password: "secret-pass"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/api/register", map[string]string{"username": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.sessions.AssertExpectations(t)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	resp := &model.TokenResponse{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	f.sessions.On("Login", mock.Anything, "ana", "right").Return(resp, nil).Once()
	f.sessions.On("Login", mock.Anything, "ana", "wrong").Return(nil, model.ErrInvalidCredentials).Once()

	w := f.do(http.MethodPost, "/api/session", model.LoginRequest{Username: "ana", Password: "right"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got model.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "tok", got.Token)

	w = f.do(http.MethodPost, "/api/session", model.LoginRequest{Username: "ana", Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid username or password"}`, w.Body.String())
}

func TestCurrentSession(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New()

	w := f.do(http.MethodGet, "/api/session", nil, f.token(t, authorID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"author_id":%q,"username":"ana"}`, authorID), w.Body.String())

	w = f.do(http.MethodGet, "/api/session", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodGet, "/api/session", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetPreview(t *testing.T) {
	f := newFixture(t)
	f.games.On("GetPreview", mock.Anything, "abc").Return([]byte(`{"name":"Flood"}`), nil).Once()
	f.games.On("GetPreview", mock.Anything, "gone").Return(nil, model.ErrNotFound).Once()

	w := f.do(http.MethodGet, "/preview/abc", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"name":"Flood"}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

	w = f.do(http.MethodGet, "/preview/gone", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPublished(t *testing.T) {
	f := newFixture(t)
	authorID := uuid.New()
	gameID := uuid.New()
	published := &model.PublishedGame{
		ID: gameID, AuthorID: authorID, Name: "Flood", Author: "ana",
		Access: model.AccessPrivate, Document: json.RawMessage(`{"name":"Flood"}`),
	}
	f.games.On("GetPublished", mock.Anything, gameID, authorID).Return(published, nil).Once()
	f.games.On("GetPublished", mock.Anything, gameID, uuid.Nil).Return(nil, model.ErrNotFound).Once()

	w := f.do(http.MethodGet, "/published/"+gameID.String(), nil, f.token(t, authorID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"document":{"name":"Flood"}`)
	assert.NotContains(t, w.Body.String(), authorID.String(), "author id is not exposed")

	w = f.do(http.MethodGet, "/published/"+gameID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "anonymous viewer cannot see a private game")

	w = f.do(http.MethodGet, "/published/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.games.AssertExpectations(t)
}

func TestHandleServiceErrorStatuses(t *testing.T) {
	f := newFixture(t)
	h := NewHandler(f.sessions, f.games, f.tokens, nil, zap.NewNop())
	cases := map[error]int{
		model.ErrPromptLocked:                            http.StatusLocked,
		fmt.Errorf("wrap: %w", model.ErrInvalidGameName): http.StatusBadRequest,
		model.ErrForbidden:                               http.StatusForbidden,
		model.ErrTokenExpired:                            http.StatusUnauthorized,
		fmt.Errorf("db down"):                            http.StatusInternalServerError,
	}
	for err, status := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		h.handleServiceError(c, err)
		assert.Equal(t, status, w.Code, err.Error())
	}
}
