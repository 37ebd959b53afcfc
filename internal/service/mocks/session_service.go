package mocks

import (
	"context"

	"sergis-author/internal/model"

	"github.com/stretchr/testify/mock"
)

// SessionService - мок service.SessionService.
type SessionService struct {
	mock.Mock
}

func (m *SessionService) Register(ctx context.Context, username, password string) (*model.Author, error) {
	args := m.Called(ctx, username, password)
	author, _ := args.Get(0).(*model.Author)
	return author, args.Error(1)
}

func (m *SessionService) Login(ctx context.Context, username, password string) (*model.TokenResponse, error) {
	args := m.Called(ctx, username, password)
	resp, _ := args.Get(0).(*model.TokenResponse)
	return resp, args.Error(1)
}
