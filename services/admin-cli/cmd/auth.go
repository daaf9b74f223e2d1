package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"AdminPanelPlatform/services/admin-cli/internal/auth"
	"AdminPanelPlatform/services/admin-cli/internal/output"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление аутентификацией",
	Long: `Команды для управления сессией администратора:
вход, выход и проверка статуса.`,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Войти в систему",
	Long: `Выполняет вход по email и паролю.
Токены сохраняются в хранилище сессии для последующих команд.`,
	Args: cobra.MaximumNArgs(1),
	RunE: handleLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из системы",
	Long:  `Завершает сессию на сервере и удаляет сохраненные токены.`,
	RunE:  handleLogout,
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Проверить статус аутентификации",
	Long:  `Восстанавливает сохраненную сессию и показывает текущего пользователя.`,
	RunE:  handleAuthStatus,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Пользователи панели",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать список пользователей",
	RunE:  handleUsersList,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	usersCmd.AddCommand(usersListCmd)

	loginCmd.Flags().StringP("email", "e", "", "email")
	loginCmd.Flags().StringP("password", "p", "", "пароль (или переменная ADMIN_PANEL_PASSWORD)")
}

func handleLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	if len(args) > 0 {
		email = args[0]
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("ADMIN_PANEL_PASSWORD")
	}
	if password == "" && email != "" {
		password = promptPassword()
	}

	return runWith(cmd, runOptions{anonymous: true}, func(ctx context.Context, a *app) error {
		if err := a.flow.Login(ctx, auth.LoginInput{Email: strings.TrimSpace(email), Password: password}); err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.SessionTable(a.session.Snapshot()), a.session.Snapshot()), 1, nil)
	})
}

// promptPassword читает пароль из stdin
func promptPassword() string {
	fmt.Fprint(os.Stderr, "Enter password: ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func handleLogout(cmd *cobra.Command, args []string) error {
	return runWith(cmd, runOptions{anonymous: true}, func(ctx context.Context, a *app) error {
		return a.flow.Logout(ctx)
	})
}

func handleAuthStatus(cmd *cobra.Command, args []string) error {
	return runWith(cmd, runOptions{anonymous: true}, func(ctx context.Context, a *app) error {
		if a.flow.Phase() == auth.PhaseAuthenticated {
			// Данные пользователя уточняются на сервере
			if me := a.services.Users.Me(ctx); me.Err == nil && me.Data != nil {
				a.session.SetUser(me.Data)
			}
		}
		state := a.session.Snapshot()
		return a.print(ctx, cmd, a.view(output.SessionTable(state), state), 1, nil)
	})
}

func handleUsersList(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		res := a.services.Users.List(ctx)
		if res.Err != nil {
			return res.Err
		}
		return a.print(ctx, cmd, a.view(output.UsersTable(res.Data), res.Data), len(res.Data), nil)
	})
}
