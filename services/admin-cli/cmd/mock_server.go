package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/metrics"
	"AdminPanelPlatform/services/admin-cli/internal/mockapi"
)

// shutdownTimeout время на завершение активных запросов
const shutdownTimeout = 30 * time.Second

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Запустить локальный mock-бэкенд",
	Long: `Запускает in-memory реализацию REST API панели с демонстрационными данными.
Пользователь по умолчанию: admin@example.com / admin123.
Метрики Prometheus доступны на /metrics, проверки состояния на /health, /ready и /live.`,
	RunE: handleMockServer,
}

func init() {
	mockServerCmd.Flags().String("host", "", "адрес для прослушивания (по умолчанию из mock_server.host)")
	mockServerCmd.Flags().Int("port", 0, "порт (по умолчанию из mock_server.port)")
	mockServerCmd.Flags().Bool("rotate-refresh", false, "выдавать новый refresh токен при каждом обновлении")
	mockServerCmd.Flags().Bool("seed", true, "заполнить демонстрационными данными")
}

func handleMockServer(cmd *cobra.Command, args []string) error {
	cfg := appCfg.MockServer
	host, _ := cmd.Flags().GetString("host")
	if host == "" {
		host = cfg.Host
	}
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = cfg.Port
	}
	rotate, _ := cmd.Flags().GetBool("rotate-refresh")
	seed, _ := cmd.Flags().GetBool("seed")

	accessTTL, err := time.ParseDuration(cfg.AccessTTL)
	if err != nil {
		return handleError(fmt.Errorf("invalid mock_server.access_ttl: %w", err), cmd)
	}
	refreshTTL, err := time.ParseDuration(cfg.RefreshTTL)
	if err != nil {
		return handleError(fmt.Errorf("invalid mock_server.refresh_ttl: %w", err), cmd)
	}

	shutdownTracing := metrics.InitializeOpenTelemetry("admin-mock-api", Version)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			appLogger.Warn("Ошибка остановки трассировки", logger.Error(err))
		}
	}()

	server, err := mockapi.NewServer(mockapi.Config{
		AccessSecret:        cfg.AccessSecret,
		RefreshSecret:       cfg.RefreshSecret,
		AccessTTL:           accessTTL,
		RefreshTTL:          refreshTTL,
		RotateRefreshTokens: rotate,
		Seed:                seed,
		BcryptCost:          bcrypt.DefaultCost,
		Metrics:             metrics.NewMetrics("admin_mock_api"),
		Version:             Version,
	}, appLogger)
	if err != nil {
		return handleError(err, cmd)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = rootCtx
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return handleError(serveMock(ctx, net.JoinHostPort(host, strconv.Itoa(port)), server), cmd)
}

// serveMock обслуживает запросы до отмены ctx и корректно завершает сервер
func serveMock(ctx context.Context, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Mock API запущен", logger.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mock server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info("Остановка mock API...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mock server shutdown failed: %w", err)
	}
	appLogger.Info("Mock API остановлен")
	return nil
}
