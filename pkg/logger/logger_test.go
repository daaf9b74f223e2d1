package logger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TestNewLogger_Environments проверяет создание логгера для разных окружений
func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"dev", "staging", "prod"} {
		log, err := NewLogger(env, "debug", "admin-cli")
		require.NoError(t, err)
		require.NotNil(t, log)

		log.Debug("debug message")
		log.With(String("component", "test"), Int("instance", 1)).Info("message with fields")
	}
}

// TestNewLogger_InvalidLevel при некорректном уровне используется info
func TestNewLogger_InvalidLevel(t *testing.T) {
	log, err := NewLogger("dev", "invalid", "admin-cli")
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.Equal(t, "info", parseLevel("invalid").String())
	assert.Equal(t, "warn", parseLevel("warn").String())
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Error("never written", Error(nil))
	assert.NoError(t, log.With(String("k", "v")).Sync())
}

// TestCtxField проверяет извлечение trace_id из контекста
func TestCtxField(t *testing.T) {
	field := CtxField(context.Background())
	assert.Equal(t, "trace_id", field.Key)
	assert.Equal(t, "unknown", field.String)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	assert.Equal(t, "test-trace-123", CtxField(ctx).String)

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	spanCtx, span := tp.Tracer("test").Start(ctx, "op")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), CtxField(spanCtx).String)
}

// TestFields проверяет создание различных типов полей
func TestFields(t *testing.T) {
	assert.Equal(t, "name", String("name", "test").Key)
	assert.Equal(t, "tags", Strings("tags", []string{"a"}).Key)
	assert.Equal(t, "count", Int("count", 42).Key)
	assert.Equal(t, "size", Int64("size", 42).Key)
	assert.Equal(t, "value", Float64("value", 3.14).Key)
	assert.Equal(t, "active", Bool("active", true).Key)
	assert.Equal(t, "elapsed", Duration("elapsed", time.Second).Key)
	assert.Equal(t, "data", Any("data", map[string]interface{}{"key": "value"}).Key)

	errField := Error(nil)
	assert.Equal(t, "error", errField.Key)
	assert.Equal(t, "nil", errField.String)
}
