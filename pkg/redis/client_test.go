package redis

import (
	"context"
	"testing"
	"time"
)

// TestConnect_Unreachable проверяет, что после исчерпания попыток возвращается ошибка
func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config := NewConfig()
	config.Addr = "127.0.0.1:1"
	config.MaxRetries = 1
	config.RetryInterval = 10 * time.Millisecond

	if _, err := Connect(ctx, config); err == nil {
		t.Error("Expected error when connecting to unreachable redis")
	}
}

// TestConnect_Cancelled отмена контекста прерывает ожидание между попытками
func TestConnect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := NewConfig()
	config.Addr = "127.0.0.1:1"
	config.RetryInterval = time.Hour

	start := time.Now()
	if _, err := Connect(ctx, config); err == nil {
		t.Error("Expected error for cancelled context")
	}
	if time.Since(start) > time.Minute {
		t.Error("Expected cancelled connect to return immediately")
	}
}

// TestHealthCheck проверяет health check без инициализированного клиента
func TestHealthCheck(t *testing.T) {
	client := &Client{}
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Error("Expected error when client is not initialized")
	}
	if err := client.Close(); err != nil {
		t.Errorf("Expected nil close on empty client, got %v", err)
	}
}

// TestNewConfig проверяет создание конфигурации по умолчанию
func TestNewConfig(t *testing.T) {
	config := NewConfig()

	if config.Addr != "localhost:6379" {
		t.Errorf("Expected addr 'localhost:6379', got %s", config.Addr)
	}
	if config.PoolSize != 10 || config.MinIdleConn != 2 {
		t.Errorf("Unexpected pool settings %d/%d", config.PoolSize, config.MinIdleConn)
	}
	if config.MaxRetries != 3 || config.RetryInterval != time.Second {
		t.Errorf("Unexpected retry settings %d/%s", config.MaxRetries, config.RetryInterval)
	}

	opts := config.Options()
	if opts.Addr != config.Addr || opts.MinIdleConns != config.MinIdleConn {
		t.Error("Expected options to mirror config")
	}
}
