package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/output"
)

// locationsPageSize размер страницы при загрузке адресов клиентов
const locationsPageSize = 100

var locationsCmd = &cobra.Command{
	Use:   "locations [state] [city]",
	Short: "Показать штаты, города или районы",
	Long: `Строит справочник локаций по адресам клиентов.
Без аргументов выводит штаты, со штатом - его города, со штатом и городом - районы.`,
	Args: cobra.MaximumNArgs(2),
	RunE: handleLocations,
}

func handleLocations(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		if err := a.seedLocations(ctx); err != nil {
			return err
		}

		var header string
		var values []string
		switch len(args) {
		case 0:
			header, values = "State", a.locations.States()
		case 1:
			header, values = "City", a.locations.Cities(args[0])
		default:
			header, values = "Area", a.locations.Areas(args[0], args[1])
		}
		return a.print(ctx, cmd, a.view(output.ValuesTable(header, values), values), len(values), nil)
	})
}

// seedLocations заполняет справочник адресами всех клиентов
func (a *app) seedLocations(ctx context.Context) error {
	for page := 1; ; page++ {
		res := a.services.Customers.List(ctx, api.CustomerListParams{
			ListParams: api.ListParams{Page: page, Limit: locationsPageSize},
		})
		p, err := pageOf(res)
		if err != nil {
			return err
		}
		a.locations.Seed(p.Items)
		if len(p.Items) == 0 || page*locationsPageSize >= p.Total {
			return nil
		}
	}
}
