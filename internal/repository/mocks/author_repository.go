package mocks

import (
	"context"

	"sergis-author/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// AuthorRepository - мок repository.AuthorRepository.
type AuthorRepository struct {
	mock.Mock
}

func (m *AuthorRepository) Create(ctx context.Context, author *model.Author) error {
	args := m.Called(ctx, author)
	return args.Error(0)
}

func (m *AuthorRepository) GetByUsername(ctx context.Context, username string) (*model.Author, error) {
	args := m.Called(ctx, username)
	author, _ := args.Get(0).(*model.Author)
	return author, args.Error(1)
}

func (m *AuthorRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	args := m.Called(ctx, id)
	author, _ := args.Get(0).(*model.Author)
	return author, args.Error(1)
}
