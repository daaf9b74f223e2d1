package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// Metrics представляет систему метрик
type Metrics struct {
	// Запросы к API
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsCount     *prometheus.CounterVec

	// Кеш запросов
	CacheEvents *prometheus.CounterVec
	InFlight    *prometheus.GaugeVec

	registry prometheus.Registerer

	// OpenTelemetry Tracer
	Tracer trace.Tracer `json:"-"`
}

// NewMetrics создает систему метрик в глобальном реестре Prometheus
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry создает систему метрик в указанном реестре
func NewMetricsWithRegistry(namespace string, registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		ErrorsCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "errors_total",
				Help:      "Total number of API errors by kind",
			},
			[]string{"method", "endpoint", "error_type"},
		),
		CacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "query_cache",
				Name:      "events_total",
				Help:      "Query cache events (hit, miss, stale, dedup, evict, invalidate)",
			},
			[]string{"resource", "event"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "query_cache",
				Name:      "in_flight",
				Help:      "Number of in-flight fetches",
			},
			[]string{"resource"},
		),
		registry: registry,
		Tracer:   otel.Tracer(namespace),
	}

	m.RequestCount = register(registry, m.RequestCount)
	m.RequestDuration = register(registry, m.RequestDuration)
	m.ErrorsCount = register(registry, m.ErrorsCount)
	m.CacheEvents = register(registry, m.CacheEvents)
	m.InFlight = register(registry, m.InFlight)

	return m
}

// register регистрирует коллектор; при повторной регистрации
// возвращается уже существующий
func register[C prometheus.Collector](registry prometheus.Registerer, c C) C {
	if err := registry.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// GetHandler возвращает HTTP обработчик для эндпоинта /metrics
func (m *Metrics) GetHandler() http.Handler {
	if gatherer, ok := m.registry.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

// StartRequest начинает спан запроса к API
func (m *Metrics) StartRequest(ctx context.Context, method, endpoint string) (context.Context, trace.Span) {
	return m.Tracer.Start(ctx, "api.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", endpoint),
		),
	)
}

// ObserveRequest фиксирует результат запроса к API.
// errorType пустой для успешных запросов
func (m *Metrics) ObserveRequest(span trace.Span, method, endpoint string, status int, errorType string, duration time.Duration) {
	m.RequestCount.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	if errorType != "" {
		m.ErrorsCount.WithLabelValues(method, endpoint, errorType).Inc()
	}

	if span != nil {
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Float64("http.duration", duration.Seconds()),
		)
		if errorType != "" {
			span.SetAttributes(attribute.String("error.type", errorType))
		}
	}
}

// CacheEvent увеличивает счетчик событий кеша
func (m *Metrics) CacheEvent(resource, event string) {
	m.CacheEvents.WithLabelValues(resource, event).Inc()
}

// IncInFlight увеличивает количество активных загрузок
func (m *Metrics) IncInFlight(resource string) {
	m.InFlight.WithLabelValues(resource).Inc()
}

// DecInFlight уменьшает количество активных загрузок
func (m *Metrics) DecInFlight(resource string) {
	m.InFlight.WithLabelValues(resource).Dec()
}

// Middleware собирает метрики входящих HTTP запросов (mock-сервер)
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.Tracer.Start(r.Context(), r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(wrapped, r.WithContext(ctx))

		errorType := ""
		if wrapped.statusCode >= 500 {
			errorType = "server_error"
		} else if wrapped.statusCode >= 400 {
			errorType = "client_error"
		}
		m.ObserveRequest(span, r.Method, r.URL.Path, wrapped.statusCode, errorType, time.Since(start))
	})
}

// responseWriter обертка для перехвата статуса ответа
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader перехватывает установку статуса
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// InitializeOpenTelemetry инициализирует OpenTelemetry и возвращает функцию остановки
func InitializeOpenTelemetry(serviceName, version string) func(context.Context) error {
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		)),
	)

	otel.SetTracerProvider(tp)

	return tp.Shutdown
}
