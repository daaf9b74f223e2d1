package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNewMetrics проверяет создание системы метрик
func TestNewMetrics(t *testing.T) {
	m := NewMetricsWithRegistry("test_service", prometheus.NewRegistry())

	if m.RequestCount == nil || m.RequestDuration == nil || m.ErrorsCount == nil {
		t.Fatal("Expected request collectors to be created")
	}
	if m.CacheEvents == nil || m.InFlight == nil {
		t.Fatal("Expected cache collectors to be created")
	}
	if m.Tracer == nil {
		t.Error("Expected Tracer, got nil")
	}
}

// TestNewMetrics_Reregister повторное создание в том же реестре использует существующие коллекторы
func TestNewMetrics_Reregister(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := NewMetricsWithRegistry("twice", registry)
	second := NewMetricsWithRegistry("twice", registry)

	first.CacheEvent("customers", "hit")
	second.CacheEvent("customers", "hit")

	if got := testutil.ToFloat64(first.CacheEvents.WithLabelValues("customers", "hit")); got != 2 {
		t.Errorf("Expected shared counter value 2, got %v", got)
	}
}

// TestObserveRequest проверяет счетчики запросов и ошибок
func TestObserveRequest(t *testing.T) {
	m := NewMetricsWithRegistry("observe", prometheus.NewRegistry())

	_, span := m.StartRequest(context.Background(), "GET", "/customers")
	m.ObserveRequest(span, "GET", "/customers", 200, "", 10*time.Millisecond)
	span.End()
	m.ObserveRequest(nil, "GET", "/customers", 500, "api", 5*time.Millisecond)

	if got := testutil.ToFloat64(m.RequestCount.WithLabelValues("GET", "/customers", "200")); got != 1 {
		t.Errorf("Expected 1 successful request, got %v", got)
	}
	if got := testutil.ToFloat64(m.ErrorsCount.WithLabelValues("GET", "/customers", "api")); got != 1 {
		t.Errorf("Expected 1 api error, got %v", got)
	}
}

func TestInFlight(t *testing.T) {
	m := NewMetricsWithRegistry("inflight", prometheus.NewRegistry())
	m.IncInFlight("orders")
	m.IncInFlight("orders")
	m.DecInFlight("orders")

	if got := testutil.ToFloat64(m.InFlight.WithLabelValues("orders")); got != 1 {
		t.Errorf("Expected 1 in-flight fetch, got %v", got)
	}
}

// TestGetHandler проверяет обработчик метрик
func TestGetHandler(t *testing.T) {
	m := NewMetricsWithRegistry("handler", prometheus.NewRegistry())
	m.CacheEvent("products", "miss")

	w := httptest.NewRecorder()
	m.GetHandler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if !strings.Contains(w.Body.String(), "handler_query_cache_events_total") {
		t.Error("Expected cache events metric in output")
	}
}

// TestMiddleware проверяет сбор метрик входящих запросов
func TestMiddleware(t *testing.T) {
	m := NewMetricsWithRegistry("middleware", prometheus.NewRegistry())

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/orders/1", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
	if got := testutil.ToFloat64(m.ErrorsCount.WithLabelValues("GET", "/api/v1/orders/1", "client_error")); got != 1 {
		t.Errorf("Expected client error counted, got %v", got)
	}
}

func TestInitializeOpenTelemetry(t *testing.T) {
	shutdown := InitializeOpenTelemetry("admin-cli", "test")
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Expected clean shutdown, got %v", err)
	}
}
