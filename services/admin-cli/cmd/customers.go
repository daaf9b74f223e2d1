package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/output"
)

var customersCmd = &cobra.Command{
	Use:     "customers",
	Aliases: []string{"customer"},
	Short:   "Управление клиентами",
	Long: `Команды для управления клиентами (магазинами):
просмотр, создание, изменение статуса, удаление и восстановление.`,
}

var customersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать список клиентов",
	RunE:  handleCustomersList,
}

var customersGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Показать клиента",
	Args:  cobra.ExactArgs(1),
	RunE:  handleCustomersGet,
}

var customersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать клиента",
	RunE:  handleCustomersCreate,
}

var customersUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Изменить клиента",
	Long:  `Изменяет клиента. Неуказанные поля сохраняют текущие значения.`,
	Args:  cobra.ExactArgs(1),
	RunE:  handleCustomersUpdate,
}

var customersStatusCmd = &cobra.Command{
	Use:   "status [id] [active|inactive|pending]",
	Short: "Изменить статус клиента",
	Args:  cobra.ExactArgs(2),
	RunE:  handleCustomersStatus,
}

var customersDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Удалить клиента",
	Long:  `Помечает клиента удаленным. Запись можно восстановить командой restore.`,
	Args:  cobra.ExactArgs(1),
	RunE:  handleCustomersDelete,
}

var customersRestoreCmd = &cobra.Command{
	Use:   "restore [id]",
	Short: "Восстановить клиента",
	Args:  cobra.ExactArgs(1),
	RunE:  handleCustomersRestore,
}

func init() {
	customersCmd.AddCommand(customersListCmd)
	customersCmd.AddCommand(customersGetCmd)
	customersCmd.AddCommand(customersCreateCmd)
	customersCmd.AddCommand(customersUpdateCmd)
	customersCmd.AddCommand(customersStatusCmd)
	customersCmd.AddCommand(customersDeleteCmd)
	customersCmd.AddCommand(customersRestoreCmd)

	addListFlags(customersListCmd, "shopName, ownerName, city, registrationDate, totalOrders, totalSpent")
	customersListCmd.Flags().String("status", "", "статус (active, inactive, pending)")
	customersListCmd.Flags().String("area", "", "район")
	customersListCmd.Flags().String("city", "", "город")

	for _, c := range []*cobra.Command{customersCreateCmd, customersUpdateCmd} {
		c.Flags().String("shop-name", "", "название магазина")
		c.Flags().String("owner-name", "", "имя владельца")
		c.Flags().String("phone", "", "телефон владельца")
		c.Flags().String("email", "", "email владельца")
		c.Flags().String("address", "", "адрес")
		c.Flags().String("area", "", "район")
		c.Flags().String("city", "", "город")
		c.Flags().String("state", "", "штат")
		c.Flags().String("pincode", "", "почтовый индекс")
		c.Flags().String("status", "", "статус (active, inactive, pending)")
		c.Flags().String("notes", "", "заметки")
	}
}

func handleCustomersList(cmd *cobra.Command, args []string) error {
	common, err := listParams(cmd)
	if err != nil {
		return handleError(err, cmd)
	}
	status, _ := cmd.Flags().GetString("status")
	area, _ := cmd.Flags().GetString("area")
	city, _ := cmd.Flags().GetString("city")

	params := api.CustomerListParams{
		ListParams: common,
		Status:     api.CustomerStatus(status),
		Area:       area,
		City:       city,
	}

	return run(cmd, func(ctx context.Context, a *app) error {
		p, err := pageOf(a.services.Customers.List(ctx, params))
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.CustomersTable(p.Items), p.Items), len(p.Items), pageMeta(p))
	})
}

func handleCustomersGet(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		c, err := detailOf(a.services.Customers.Get(ctx, args[0]))
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.CustomerDetails(c), c), 1, nil)
	})
}

// applyCustomerFlags переносит указанные флаги в тело запроса
func applyCustomerFlags(cmd *cobra.Command, input *api.CustomerInput) {
	overlayString(cmd, "shop-name", &input.ShopName)
	overlayString(cmd, "owner-name", &input.OwnerName)
	overlayString(cmd, "phone", &input.OwnerPhone)
	overlayString(cmd, "email", &input.OwnerEmail)
	overlayString(cmd, "address", &input.Address)
	overlayString(cmd, "area", &input.Area)
	overlayString(cmd, "city", &input.City)
	overlayString(cmd, "state", &input.State)
	overlayString(cmd, "pincode", &input.Pincode)
	overlayString(cmd, "notes", &input.Notes)
	if cmd.Flags().Changed("status") {
		status, _ := cmd.Flags().GetString("status")
		input.Status = api.CustomerStatus(status)
	}
}

func customerInputOf(c *api.Customer) api.CustomerInput {
	return api.CustomerInput{
		ShopName:   c.ShopName,
		OwnerName:  c.OwnerName,
		OwnerPhone: c.OwnerPhone,
		OwnerEmail: c.OwnerEmail,
		Address:    c.Address,
		Area:       c.Area,
		City:       c.City,
		State:      c.State,
		Pincode:    c.Pincode,
		Status:     c.Status,
		Notes:      c.Notes,
	}
}

func handleCustomersCreate(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		var input api.CustomerInput
		applyCustomerFlags(cmd, &input)

		c, err := a.services.Customers.Create(ctx, input)
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.CustomerDetails(c), c), 1, nil)
	})
}

func handleCustomersUpdate(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		current, err := detailOf(a.services.Customers.Get(ctx, args[0]))
		if err != nil {
			return err
		}
		input := customerInputOf(current)
		applyCustomerFlags(cmd, &input)

		c, err := a.services.Customers.Update(ctx, args[0], input)
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.CustomerDetails(c), c), 1, nil)
	})
}

func handleCustomersStatus(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		c, err := a.services.Customers.UpdateStatus(ctx, args[0], api.CustomerStatus(args[1]))
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.CustomerDetails(c), c), 1, nil)
	})
}

func handleCustomersDelete(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		return a.services.Customers.Delete(ctx, args[0])
	})
}

func handleCustomersRestore(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		c, err := a.services.Customers.Restore(ctx, args[0])
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.CustomerDetails(c), c), 1, nil)
	})
}
