package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sergis-author/internal/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const previewKeyPrefix = "sergis:preview:"

var _ PreviewStore = (*redisPreviewStore)(nil)

type redisPreviewStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPreviewStore создает PreviewStore поверх Redis.
func NewRedisPreviewStore(client *redis.Client, logger *zap.Logger) PreviewStore {
	return &redisPreviewStore{client: client, logger: logger.Named("RedisPreviewStore")}
}

func (s *redisPreviewStore) Put(ctx context.Context, id string, document []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, previewKeyPrefix+id, document, ttl).Err(); err != nil {
		s.logger.Error("Failed to store preview", zap.String("previewID", id), zap.Error(err))
		return fmt.Errorf("failed to store preview %s: %w", id, err)
	}
	return nil
}

func (s *redisPreviewStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, previewKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preview %s: %w", id, err)
	}
	return data, nil
}
