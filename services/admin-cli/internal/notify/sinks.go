package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/rabbitmq"
)

// LogSink пишет уведомления в лог
type LogSink struct {
	logger logger.Logger
}

// NewLogSink создает приемник, пишущий в лог
func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

// Deliver пишет уведомление в лог; ошибки пишутся с уровнем warn
func (s *LogSink) Deliver(ctx context.Context, n Notification) error {
	fields := []logger.Field{
		logger.CtxField(ctx),
		logger.String("id", n.ID),
		logger.String("kind", string(n.Kind)),
		logger.String("message", n.Message),
	}
	if n.Kind == KindError {
		s.logger.Warn("уведомление", fields...)
	} else {
		s.logger.Info("уведомление", fields...)
	}
	return nil
}

// Event сообщение об уведомлении в брокере
type Event struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	DurationMs int64  `json:"durationMs"`
	CreatedAt  string `json:"createdAt"`
	Source     string `json:"source"`
}

// AMQPSink публикует уведомления в RabbitMQ с ключом notifications.<kind>
type AMQPSink struct {
	publisher rabbitmq.Publisher
	source    string
}

// NewAMQPSink создает приемник поверх продюсера RabbitMQ
func NewAMQPSink(publisher rabbitmq.Publisher, source string) *AMQPSink {
	return &AMQPSink{publisher: publisher, source: source}
}

// RoutingKey возвращает routing key для типа уведомления
func RoutingKey(kind Kind) string {
	return "notifications." + string(kind)
}

// Deliver публикует уведомление
func (s *AMQPSink) Deliver(ctx context.Context, n Notification) error {
	body, err := json.Marshal(Event{
		ID:         n.ID,
		Kind:       n.Kind,
		Message:    n.Message,
		DurationMs: n.Duration.Milliseconds(),
		CreatedAt:  n.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Source:     s.source,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	return s.publisher.Publish(ctx, body,
		rabbitmq.WithRoutingKey(RoutingKey(n.Kind)),
		rabbitmq.WithHeaders(amqp091.Table{
			"kind":   string(n.Kind),
			"source": s.source,
		}),
	)
}
