// Package messaging публикует события об играх в RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sergis-author/internal/model"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// ExchangeGameEvents - fanout exchange событий об играх.
	ExchangeGameEvents = "sergis_game_events"
	// EventGamePublished - тип события публикации, уходит в заголовке event_type.
	EventGamePublished = "game.published"
)

// GameEventPublisher отправляет события об играх.
type GameEventPublisher interface {
	PublishGamePublished(ctx context.Context, event model.GamePublishedEvent) error
}

// channel - часть amqp.Channel, нужная издателю.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQGamePublisher реализует GameEventPublisher поверх RabbitMQ.
type RabbitMQGamePublisher struct {
	ch     channel
	logger *zap.Logger
}

// NewRabbitMQGamePublisher открывает канал и объявляет durable fanout exchange.
func NewRabbitMQGamePublisher(conn *amqp.Connection, logger *zap.Logger) (*RabbitMQGamePublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := ch.ExchangeDeclare(ExchangeGameEvents, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", ExchangeGameEvents, err)
	}
	logger.Info("Game events exchange declared", zap.String("exchange", ExchangeGameEvents))
	return &RabbitMQGamePublisher{ch: ch, logger: logger.Named("GamePublisher")}, nil
}

// PublishGamePublished публикует событие game.published.
func (p *RabbitMQGamePublisher) PublishGamePublished(ctx context.Context, event model.GamePublishedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal game event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, ExchangeGameEvents, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         EventGamePublished,
		Headers:      amqp.Table{"event_type": EventGamePublished},
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.logger.Error("Failed to publish game event", zap.String("gameID", event.GameID.String()), zap.Error(err))
		return fmt.Errorf("failed to publish game event: %w", err)
	}
	p.logger.Debug("Game event published", zap.String("gameID", event.GameID.String()), zap.String("access", string(event.Access)))
	return nil
}

// Close закрывает канал RabbitMQ.
func (p *RabbitMQGamePublisher) Close() error {
	if p.ch != nil {
		return p.ch.Close()
	}
	return nil
}

// NopPublisher отбрасывает события; используется, когда брокер не настроен.
type NopPublisher struct{}

func (NopPublisher) PublishGamePublished(context.Context, model.GamePublishedEvent) error { return nil }

// Connect подключается к RabbitMQ, повторяя попытки с паузой retryDelay.
func Connect(ctx context.Context, url string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp.Connection, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			logger.Info("Connected to RabbitMQ")
			return conn, nil
		}
		lastErr = err
		logger.Warn("Failed to connect to RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("rabbitmq unavailable after %d attempts: %w", maxRetries, lastErr)
}
