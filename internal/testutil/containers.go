// Package testutil поднимает Postgres, Redis и RabbitMQ в контейнерах для интеграционных тестов.
// Тесты пропускаются в режиме -short и без доступного Docker.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SkipWithoutDocker пропускает тест в режиме -short или без Docker.
func SkipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// StartRedis запускает Redis и возвращает подключенный клиент.
// Контейнер и клиент закрываются через t.Cleanup.
func StartRedis(t *testing.T) *redis.Client {
	t.Helper()
	SkipWithoutDocker(t)
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(time.Minute),
		),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "Failed to start redis container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err(), "Failed to connect to test redis")
	return client
}

// StartPostgres запускает Postgres и возвращает строку подключения.
func StartPostgres(t *testing.T) string {
	t.Helper()
	SkipWithoutDocker(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "Failed to start postgres container")

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get postgres connection string")
	return connStr
}

// StartRabbitMQ запускает RabbitMQ и возвращает AMQP URL.
func StartRabbitMQ(t *testing.T) string {
	t.Helper()
	SkipWithoutDocker(t)
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").WithStartupTimeout(2*time.Minute),
		),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "Failed to start rabbitmq container")

	url, err := container.AmqpURL(ctx)
	require.NoError(t, err)
	return url
}
