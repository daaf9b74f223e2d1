package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pkgconfig "AdminPanelPlatform/pkg/config"
	pkgerrors "AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/services/admin-cli/internal/output"
)

// Version версия CLI
const Version = "1.0.0"

var (
	rootCtx   = context.Background()
	appCfg    *pkgconfig.Config
	appLogger logger.Logger = logger.NewNop()
	outFormat               = output.FormatTable
)

// Execute запускает корневую команду
func Execute(ctx context.Context) error {
	rootCtx = ctx
	return rootCmd.ExecuteContext(ctx)
}

// rootCmd корневая команда
var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin Panel CLI - управление клиентами, заказами и каталогом",
	Long: `Admin Panel CLI - клиент REST API панели администратора.

Поддерживает вход и выход, управление клиентами, заказами, товарами,
компаниями и категориями, а также запуск локального mock-бэкенда.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "файл конфигурации (по умолчанию ~/.admin-panel/config.yaml)")
	rootCmd.PersistentFlags().StringP("server", "s", "", "адрес API, например http://localhost:8080")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "формат вывода (table, json, yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "режим отладки")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetEnvPrefix("ADMIN_PANEL")
	viper.AutomaticEnv()

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(customersCmd)
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(newNamedCmd(companiesResource))
	rootCmd.AddCommand(newNamedCmd(categoriesResource))
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(mockServerCmd)
	rootCmd.AddCommand(configCmd)
}

// configPath возвращает путь к файлу конфигурации: флаг, затем файл по умолчанию
func configPath() (string, bool, error) {
	if path := viper.GetString("config"); path != "" {
		return path, true, nil
	}
	dir, err := pkgconfig.DefaultDir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(dir, "config.yaml"), false, nil
}

// initConfig загружает конфигурацию и применяет глобальные флаги
func initConfig() error {
	path, explicit, err := configPath()
	if err != nil {
		return err
	}
	if !explicit {
		// Файл по умолчанию необязателен
		if _, statErr := os.Stat(path); statErr != nil {
			path = ""
		}
	}

	cfg, err := pkgconfig.LoadConfig(path)
	if err != nil {
		return err
	}

	if server := viper.GetString("server"); server != "" {
		cfg.API.BaseURL = server
	}
	if viper.GetBool("debug") {
		cfg.Logger.Level = "debug"
	}

	format, err := output.ParseFormat(viper.GetString("output"))
	if err != nil {
		return pkgerrors.New(pkgerrors.ErrValidation, err.Error())
	}

	log, err := logger.NewLogger(cfg.Environment, cfg.Logger.Level, "admin-cli")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appCfg = cfg
	appLogger = log
	outFormat = format
	return nil
}

// handleError единообразно обрабатывает ошибки команд
func handleError(err error, cmd *cobra.Command) error {
	if err == nil {
		return nil
	}

	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		appErr = pkgerrors.New(pkgerrors.ErrInternal, err.Error())
	}

	appLogger.Error("Команда завершилась с ошибкой",
		logger.String("command", cmd.CommandPath()),
		logger.String("code", string(appErr.Code)),
		logger.Error(appErr))

	return fmt.Errorf("%s: %s", cmd.Name(), userMessage(appErr))
}

// silentError ошибка, о которой пользователь уже уведомлен
type silentError struct {
	cause error
}

func (e *silentError) Error() string { return e.cause.Error() }
func (e *silentError) Unwrap() error { return e.cause }

// IsSilent сообщает, что ошибку не нужно выводить повторно
func IsSilent(err error) bool {
	var silent *silentError
	return errors.As(err, &silent)
}

// userMessage сообщение для пользователя. Для ошибок валидации выводятся все поля
func userMessage(err *pkgerrors.Error) string {
	switch err.Code {
	case pkgerrors.ErrValidation:
		if err.Details != "" {
			return err.Details
		}
		return err.Message
	case pkgerrors.ErrInternal:
		return err.Error()
	default:
		return err.GetUserMessage()
	}
}
