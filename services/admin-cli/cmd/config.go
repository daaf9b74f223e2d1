package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	pkgconfig "AdminPanelPlatform/pkg/config"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/services/admin-cli/internal/output"
)

const secretMask = "********"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Управление конфигурацией",
	Long:  `Команды для создания и просмотра файла конфигурации CLI.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Инициализировать конфигурацию",
	Long:  "Создать файл конфигурации с настройками по умолчанию",
	RunE:  handleConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Показать конфигурацию",
	Long:  "Показать действующую конфигурацию с учетом файла, окружения и флагов",
	RunE:  handleConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().StringP("path", "p", "", "путь для создания конфигурации")
	configInitCmd.Flags().BoolP("force", "f", false, "перезаписать существующий файл")

	configShowCmd.Flags().BoolP("show-secrets", "x", false, "показать секретные данные")
}

func handleConfigInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		defaultPath, _, err := configPath()
		if err != nil {
			return handleError(err, cmd)
		}
		path = defaultPath
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return handleError(fmt.Errorf("config file %s already exists, use --force to overwrite", path), cmd)
		}
	}

	if err := pkgconfig.Default().Save(path); err != nil {
		return handleError(fmt.Errorf("failed to save config: %w", err), cmd)
	}

	appLogger.Info("Конфигурация создана", logger.String("path", path))
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
	return nil
}

func handleConfigShow(cmd *cobra.Command, args []string) error {
	showSecrets, _ := cmd.Flags().GetBool("show-secrets")

	cfg := *appCfg
	if !showSecrets {
		maskSecrets(&cfg)
	}

	printer := output.NewPrinter(outFormat, cmd.OutOrStdout(), cmd.ErrOrStderr())
	var data interface{} = cfg
	if outFormat == output.FormatTable {
		data = configTable(&cfg)
	}
	return handleError(printer.Print(cmd.CommandPath(), data, nil), cmd)
}

func maskSecrets(cfg *pkgconfig.Config) {
	if cfg.Redis.Password != "" {
		cfg.Redis.Password = secretMask
	}
	cfg.MockServer.AccessSecret = secretMask
	cfg.MockServer.RefreshSecret = secretMask
}

// configTable плоское представление конфигурации
func configTable(cfg *pkgconfig.Config) *output.TableData {
	table := output.NewTableData("Key", "Value")
	rows := [][2]string{
		{"environment", cfg.Environment},
		{"logger.level", cfg.Logger.Level},
		{"api.base_url", cfg.API.BaseURL},
		{"api.timeout", cfg.API.Timeout},
		{"cache.stale_time", cfg.Cache.StaleTime},
		{"cache.gc_time", cfg.Cache.GCTime},
		{"cache.sweep_interval", cfg.Cache.SweepInterval},
		{"session.backend", cfg.Session.Backend},
		{"session.path", cfg.Session.Path},
		{"redis.addr", cfg.Redis.Addr},
		{"redis.password", cfg.Redis.Password},
		{"redis.db", strconv.Itoa(cfg.Redis.DB)},
		{"rabbitmq.enabled", strconv.FormatBool(cfg.RabbitMQ.Enabled)},
		{"rabbitmq.url", cfg.RabbitMQ.URL},
		{"rabbitmq.exchange", cfg.RabbitMQ.Exchange},
		{"notifications.default_duration", cfg.Notifications.DefaultDuration},
		{"mock_server.host", cfg.MockServer.Host},
		{"mock_server.port", strconv.Itoa(cfg.MockServer.Port)},
		{"mock_server.access_secret", cfg.MockServer.AccessSecret},
		{"mock_server.refresh_secret", cfg.MockServer.RefreshSecret},
	}
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = "-"
		}
		table.AddRow(row[0], value)
	}
	return table
}
