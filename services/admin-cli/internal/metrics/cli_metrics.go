package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/metrics"
)

// Namespace пространство имен метрик CLI
const Namespace = "admin_cli"

// CLIMetrics метрики команд и авторизации CLI поверх общих метрик
type CLIMetrics struct {
	*metrics.Metrics
	logger logger.Logger
}

// NewCLIMetrics создает метрики CLI в глобальном реестре
func NewCLIMetrics(log logger.Logger) *CLIMetrics {
	return NewCLIMetricsWithRegistry(log, prometheus.DefaultRegisterer)
}

// NewCLIMetricsWithRegistry создает метрики CLI в указанном реестре
func NewCLIMetricsWithRegistry(log logger.Logger, registry prometheus.Registerer) *CLIMetrics {
	if log == nil {
		log = logger.NewNop()
	}
	return &CLIMetrics{
		Metrics: metrics.NewMetricsWithRegistry(Namespace, registry),
		logger:  log,
	}
}

// CommandExecuted регистрирует выполнение команды
func (c *CLIMetrics) CommandExecuted(ctx context.Context, command string, success bool, duration time.Duration) {
	if c == nil {
		return
	}
	c.logger.Debug("команда выполнена",
		logger.CtxField(ctx),
		logger.String("command", command),
		logger.Bool("success", success),
		logger.Duration("duration", duration))

	c.record("command", command, success, duration)
}

// AuthEvent регистрирует вход, выход, проверку сессии и обновление токена
func (c *CLIMetrics) AuthEvent(ctx context.Context, event string, success bool, duration time.Duration) {
	if c == nil {
		return
	}
	c.logger.Debug("событие авторизации",
		logger.CtxField(ctx),
		logger.String("event", event),
		logger.Bool("success", success),
		logger.Duration("duration", duration))

	c.record("auth", event, success, duration)
}

// OutputGenerated регистрирует генерацию вывода
func (c *CLIMetrics) OutputGenerated(ctx context.Context, format string, recordCount int, duration time.Duration) {
	if c == nil {
		return
	}
	c.logger.Debug("вывод сформирован",
		logger.CtxField(ctx),
		logger.String("format", format),
		logger.Int("record_count", recordCount),
		logger.Duration("duration", duration))

	c.record("output", format, true, duration)
}

func (c *CLIMetrics) record(kind, name string, success bool, duration time.Duration) {
	endpoint := kind + ":" + name
	c.RequestCount.WithLabelValues("cli", endpoint, getStatusLabel(success)).Inc()
	c.RequestDuration.WithLabelValues("cli", endpoint).Observe(duration.Seconds())
	if !success {
		c.ErrorsCount.WithLabelValues("cli", endpoint, "execution_failed").Inc()
	}
}

func getStatusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
