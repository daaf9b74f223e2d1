package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/output"
)

var ordersCmd = &cobra.Command{
	Use:     "orders",
	Aliases: []string{"order"},
	Short:   "Управление заказами",
	Long: `Команды для управления заказами:
просмотр, создание, смена статуса и трекинга, удаление и восстановление.`,
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать список заказов",
	RunE:  handleOrdersList,
}

var ordersGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Показать заказ",
	Args:  cobra.ExactArgs(1),
	RunE:  handleOrdersGet,
}

var ordersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать заказ",
	Long: `Создает заказ. Позиции задаются флагом --item "название=коробки",
флаг можно повторять.`,
	RunE: handleOrdersCreate,
}

var ordersUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Изменить заказ",
	Long:  `Изменяет заказ. Неуказанные поля сохраняют текущие значения; --item заменяет все позиции.`,
	Args:  cobra.ExactArgs(1),
	RunE:  handleOrdersUpdate,
}

var ordersStatusCmd = &cobra.Command{
	Use:   "status [id] [pending|processing|shipped|delivered|cancelled]",
	Short: "Изменить статус заказа",
	Args:  cobra.ExactArgs(2),
	RunE:  handleOrdersStatus,
}

var ordersDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Удалить заказ",
	Args:  cobra.ExactArgs(1),
	RunE:  handleOrdersDelete,
}

var ordersRestoreCmd = &cobra.Command{
	Use:   "restore [id]",
	Short: "Восстановить заказ",
	Args:  cobra.ExactArgs(1),
	RunE:  handleOrdersRestore,
}

func init() {
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersGetCmd)
	ordersCmd.AddCommand(ordersCreateCmd)
	ordersCmd.AddCommand(ordersUpdateCmd)
	ordersCmd.AddCommand(ordersStatusCmd)
	ordersCmd.AddCommand(ordersDeleteCmd)
	ordersCmd.AddCommand(ordersRestoreCmd)

	addListFlags(ordersListCmd, "date, customerName, status, items")
	ordersListCmd.Flags().String("status", "", "статус заказа")
	ordersListCmd.Flags().String("from", "", "дата начала (YYYY-MM-DD)")
	ordersListCmd.Flags().String("to", "", "дата окончания включительно (YYYY-MM-DD)")

	for _, c := range []*cobra.Command{ordersCreateCmd, ordersUpdateCmd} {
		c.Flags().String("customer-name", "", "имя клиента")
		c.Flags().String("address", "", "адрес доставки")
		c.Flags().String("email", "", "email клиента")
		c.Flags().String("phone", "", "телефон клиента")
		c.Flags().String("status", "", "статус заказа")
		c.Flags().StringArray("item", nil, "позиция заказа: название=коробки")
		c.Flags().String("shipping", "", "способ доставки")
		c.Flags().String("tracking", "", "трек-номер")
		c.Flags().String("notes", "", "заметки")
	}

	ordersStatusCmd.Flags().String("tracking", "", "трек-номер")
	ordersStatusCmd.Flags().String("shipping", "", "способ доставки")
}

func handleOrdersList(cmd *cobra.Command, args []string) error {
	common, err := listParams(cmd)
	if err != nil {
		return handleError(err, cmd)
	}
	from, err := parseDateFlag(cmd, "from")
	if err != nil {
		return handleError(err, cmd)
	}
	to, err := parseDateFlag(cmd, "to")
	if err != nil {
		return handleError(err, cmd)
	}
	status, _ := cmd.Flags().GetString("status")

	params := api.OrderListParams{
		ListParams: common,
		Status:     api.OrderStatus(status),
		DateFrom:   from,
		DateTo:     to,
	}

	return run(cmd, func(ctx context.Context, a *app) error {
		p, err := pageOf(a.services.Orders.List(ctx, params))
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.OrdersTable(p.Items), p.Items), len(p.Items), pageMeta(p))
	})
}

func handleOrdersGet(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		o, err := detailOf(a.services.Orders.Get(ctx, args[0]))
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.OrderDetails(o), o), 1, nil)
	})
}

// applyOrderFlags переносит указанные флаги в тело запроса
func applyOrderFlags(cmd *cobra.Command, input *api.OrderInput) error {
	overlayString(cmd, "customer-name", &input.CustomerName)
	overlayString(cmd, "address", &input.CustomerAddress)
	overlayString(cmd, "email", &input.CustomerEmail)
	overlayString(cmd, "phone", &input.CustomerPhone)
	overlayString(cmd, "shipping", &input.ShippingMethod)
	overlayString(cmd, "tracking", &input.TrackingNumber)
	overlayString(cmd, "notes", &input.Notes)
	if cmd.Flags().Changed("status") {
		status, _ := cmd.Flags().GetString("status")
		input.Status = api.OrderStatus(status)
	}
	if cmd.Flags().Changed("item") {
		values, _ := cmd.Flags().GetStringArray("item")
		items, err := parseItems(values)
		if err != nil {
			return err
		}
		input.OrderItems = items
	}
	return nil
}

func orderInputOf(o *api.Order) api.OrderInput {
	return api.OrderInput{
		CustomerName:    o.CustomerName,
		CustomerAddress: o.CustomerAddress,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		Status:          o.Status,
		OrderItems:      o.OrderItems,
		ShippingMethod:  o.ShippingMethod,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
	}
}

func handleOrdersCreate(cmd *cobra.Command, args []string) error {
	var input api.OrderInput
	if err := applyOrderFlags(cmd, &input); err != nil {
		return handleError(err, cmd)
	}

	return run(cmd, func(ctx context.Context, a *app) error {
		o, err := a.services.Orders.Create(ctx, input)
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.OrderDetails(o), o), 1, nil)
	})
}

func handleOrdersUpdate(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		current, err := detailOf(a.services.Orders.Get(ctx, args[0]))
		if err != nil {
			return err
		}
		input := orderInputOf(current)
		if err := applyOrderFlags(cmd, &input); err != nil {
			return err
		}

		o, err := a.services.Orders.Update(ctx, args[0], input)
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.OrderDetails(o), o), 1, nil)
	})
}

func handleOrdersStatus(cmd *cobra.Command, args []string) error {
	tracking, _ := cmd.Flags().GetString("tracking")
	shipping, _ := cmd.Flags().GetString("shipping")
	update := api.OrderStatusUpdate{
		Status:         api.OrderStatus(args[1]),
		TrackingNumber: tracking,
		ShippingMethod: shipping,
	}

	return run(cmd, func(ctx context.Context, a *app) error {
		o, err := a.services.Orders.UpdateStatus(ctx, args[0], update)
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.OrderDetails(o), o), 1, nil)
	})
}

func handleOrdersDelete(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		return a.services.Orders.Delete(ctx, args[0])
	})
}

func handleOrdersRestore(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		o, err := a.services.Orders.Restore(ctx, args[0])
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(output.OrderDetails(o), o), 1, nil)
	})
}
