package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/output"
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"product"},
	Short:   "Управление товарами",
	Long: `Команды для управления каталогом товаров:
просмотр с фильтрами, создание, изменение, удаление и восстановление.`,
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать список товаров",
	RunE:  handleProductsList,
}

var productsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Показать товар",
	Args:  cobra.ExactArgs(1),
	RunE:  handleProductsGet,
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать товар",
	Long: `Создает товар. Варианты задаются флагом --variant "название=цена",
флаг можно повторять.`,
	RunE: handleProductsCreate,
}

var productsUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Изменить товар",
	Long:  `Изменяет товар. Неуказанные поля сохраняют текущие значения; --variant заменяет все варианты.`,
	Args:  cobra.ExactArgs(1),
	RunE:  handleProductsUpdate,
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Удалить товар",
	Args:  cobra.ExactArgs(1),
	RunE:  handleProductsDelete,
}

var productsRestoreCmd = &cobra.Command{
	Use:   "restore [id]",
	Short: "Восстановить товар",
	Args:  cobra.ExactArgs(1),
	RunE:  handleProductsRestore,
}

func init() {
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsGetCmd)
	productsCmd.AddCommand(productsCreateCmd)
	productsCmd.AddCommand(productsUpdateCmd)
	productsCmd.AddCommand(productsDeleteCmd)
	productsCmd.AddCommand(productsRestoreCmd)

	addListFlags(productsListCmd, "name, price")
	productsListCmd.Flags().StringSlice("company", nil, "ID компаний")
	productsListCmd.Flags().StringSlice("category", nil, "ID категорий")
	productsListCmd.Flags().Float64("min-price", 0, "минимальная цена")
	productsListCmd.Flags().Float64("max-price", 0, "максимальная цена")
	productsListCmd.Flags().Bool("out-of-stock", false, "только товары, которых нет в наличии (false - только в наличии)")

	for _, c := range []*cobra.Command{productsCreateCmd, productsUpdateCmd} {
		c.Flags().String("name", "", "название")
		c.Flags().String("company", "", "ID компании")
		c.Flags().String("category", "", "ID категории")
		c.Flags().StringArray("variant", nil, "вариант: название=цена")
		c.Flags().Bool("out-of-stock", false, "нет в наличии")
		c.Flags().Bool("pieces", false, "продается поштучно")
		c.Flags().Bool("pack", false, "продается упаковками")
		c.Flags().Int("pack-size", 0, "штук в упаковке")
	}
}

func handleProductsList(cmd *cobra.Command, args []string) error {
	common, err := listParams(cmd)
	if err != nil {
		return handleError(err, cmd)
	}
	companies, _ := cmd.Flags().GetStringSlice("company")
	categories, _ := cmd.Flags().GetStringSlice("category")

	params := api.ProductListParams{
		ListParams:  common,
		CompanyIDs:  companies,
		CategoryIDs: categories,
		MinPrice:    optionalFloat(cmd, "min-price"),
		MaxPrice:    optionalFloat(cmd, "max-price"),
	}
	if cmd.Flags().Changed("out-of-stock") {
		outOfStock, _ := cmd.Flags().GetBool("out-of-stock")
		params.OutOfStock = &outOfStock
	}

	return run(cmd, func(ctx context.Context, a *app) error {
		p, err := pageOf(a.services.Products.List(ctx, params))
		if err != nil {
			return err
		}
		companyNames, categoryNames := a.catalogNames(ctx)
		table := output.ProductsTable(p.Items, companyNames, categoryNames)
		return a.print(ctx, cmd, a.view(table, p.Items), len(p.Items), pageMeta(p))
	})
}

// catalogNames справочники названий компаний и категорий для таблиц.
// Ошибка загрузки не мешает выводу: вместо названий останутся идентификаторы
func (a *app) catalogNames(ctx context.Context) (map[string]string, map[string]string) {
	companies := make(map[string]string)
	categories := make(map[string]string)

	if res := a.services.Companies.List(ctx); res.Err == nil {
		for _, c := range res.Data {
			companies[c.ID] = c.Name
		}
	} else {
		a.log.Debug("Справочник компаний недоступен", logger.Error(res.Err))
	}
	if res := a.services.Categories.List(ctx); res.Err == nil {
		for _, c := range res.Data {
			categories[c.ID] = c.Name
		}
	} else {
		a.log.Debug("Справочник категорий недоступен", logger.Error(res.Err))
	}
	return companies, categories
}

func handleProductsGet(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		p, err := detailOf(a.services.Products.Get(ctx, args[0]))
		if err != nil {
			return err
		}
		return a.printProduct(ctx, cmd, p)
	})
}

// applyProductFlags переносит указанные флаги в тело запроса
func applyProductFlags(cmd *cobra.Command, input *api.ProductInput) error {
	overlayString(cmd, "name", &input.Name)
	overlayString(cmd, "company", &input.CompanyID)
	overlayString(cmd, "category", &input.CategoryID)
	overlayBool(cmd, "out-of-stock", &input.IsOutOfStock)
	overlayBool(cmd, "pieces", &input.AvailableInPieces)
	overlayBool(cmd, "pack", &input.AvailableInPack)
	if size := optionalInt(cmd, "pack-size"); size != nil {
		input.PackSize = size
	}
	if cmd.Flags().Changed("variant") {
		values, _ := cmd.Flags().GetStringArray("variant")
		variants, err := parseVariants(values)
		if err != nil {
			return err
		}
		input.Variants = variants
	}
	return nil
}

func productInputOf(p *api.Product) api.ProductInput {
	return api.ProductInput{
		Name:              p.Name,
		CompanyID:         p.CompanyID,
		CategoryID:        p.CategoryID,
		Variants:          p.Variants,
		IsOutOfStock:      p.IsOutOfStock,
		AvailableInPieces: p.AvailableInPieces,
		AvailableInPack:   p.AvailableInPack,
		PackSize:          p.PackSize,
	}
}

func (a *app) printProduct(ctx context.Context, cmd *cobra.Command, p *api.Product) error {
	companies, categories := a.catalogNames(ctx)
	return a.print(ctx, cmd, a.view(output.ProductDetails(p, companies, categories), p), 1, nil)
}

func handleProductsCreate(cmd *cobra.Command, args []string) error {
	var input api.ProductInput
	if err := applyProductFlags(cmd, &input); err != nil {
		return handleError(err, cmd)
	}

	return run(cmd, func(ctx context.Context, a *app) error {
		p, err := a.services.Products.Create(ctx, input)
		if err != nil {
			return err
		}
		return a.printProduct(ctx, cmd, p)
	})
}

func handleProductsUpdate(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		current, err := detailOf(a.services.Products.Get(ctx, args[0]))
		if err != nil {
			return err
		}
		input := productInputOf(current)
		if err := applyProductFlags(cmd, &input); err != nil {
			return err
		}

		p, err := a.services.Products.Update(ctx, args[0], input)
		if err != nil {
			return err
		}
		return a.printProduct(ctx, cmd, p)
	})
}

func handleProductsDelete(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		return a.services.Products.Delete(ctx, args[0])
	})
}

func handleProductsRestore(cmd *cobra.Command, args []string) error {
	return run(cmd, func(ctx context.Context, a *app) error {
		p, err := a.services.Products.Restore(ctx, args[0])
		if err != nil {
			return err
		}
		return a.printProduct(ctx, cmd, p)
	})
}
