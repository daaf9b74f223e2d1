package rabbitmq

import (
	"context"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// TestProducer_PublishWithoutChannel без канала публикация невозможна
func TestProducer_PublishWithoutChannel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for _, producer := range []*Producer{
		NewProducer(&Connection{}, NewConfig()),
		NewProducer(nil, NewConfig()),
	} {
		if err := producer.Publish(ctx, []byte(`{"kind":"info"}`)); err == nil {
			t.Error("Expected error when publishing without a channel")
		}
	}
}

// TestPublishOptions проверяет опции публикации
func TestPublishOptions(t *testing.T) {
	opts := &PublishOptions{}

	WithExchange("test-exchange")(opts)
	WithRoutingKey("notifications.error")(opts)
	WithMandatory(true)(opts)
	WithHeaders(amqp091.Table{"kind": "error"})(opts)

	if opts.Exchange != "test-exchange" {
		t.Errorf("Expected exchange 'test-exchange', got %s", opts.Exchange)
	}
	if opts.RoutingKey != "notifications.error" {
		t.Errorf("Expected routing key 'notifications.error', got %s", opts.RoutingKey)
	}
	if !opts.Mandatory {
		t.Error("Expected mandatory flag")
	}
	if opts.Headers["kind"] != "error" {
		t.Errorf("Expected header kind=error, got %v", opts.Headers["kind"])
	}
}

func TestProducerImplementsPublisher(t *testing.T) {
	var _ Publisher = NewProducer(&Connection{}, NewConfig())
}
