package repository_test

import (
	"context"
	"testing"
	"time"

	"sergis-author/internal/model"
	"sergis-author/internal/repository"
	"sergis-author/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisPreviewStore(t *testing.T) {
	client := testutil.StartRedis(t)
	store := repository.NewRedisPreviewStore(client, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc", []byte(`{"name":"x"}`), time.Minute))

	data, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x"}`, string(data))

	ttl, err := client.TTL(ctx, "sergis:preview:abc").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
