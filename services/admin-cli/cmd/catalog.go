package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/output"
)

// namedResource операции справочника с единственным полем name
type namedResource struct {
	use   string
	alias string
	short string

	list    func(ctx context.Context, a *app) (*output.TableData, interface{}, int, error)
	get     func(ctx context.Context, a *app, id string) (*output.TableData, interface{}, error)
	create  func(ctx context.Context, a *app, input api.NamedInput) (*output.TableData, interface{}, error)
	update  func(ctx context.Context, a *app, id string, input api.NamedInput) (*output.TableData, interface{}, error)
	remove  func(ctx context.Context, a *app, id string) error
	restore func(ctx context.Context, a *app, id string) (*output.TableData, interface{}, error)
}

var companiesResource = namedResource{
	use:   "companies",
	alias: "company",
	short: "Управление компаниями-производителями",
	list: func(ctx context.Context, a *app) (*output.TableData, interface{}, int, error) {
		res := a.services.Companies.List(ctx)
		if res.Err != nil {
			return nil, nil, 0, res.Err
		}
		return output.CompaniesTable(res.Data), res.Data, len(res.Data), nil
	},
	get: func(ctx context.Context, a *app, id string) (*output.TableData, interface{}, error) {
		c, err := detailOf(a.services.Companies.Get(ctx, id))
		return companyView(c, err)
	},
	create: func(ctx context.Context, a *app, input api.NamedInput) (*output.TableData, interface{}, error) {
		return companyView(a.services.Companies.Create(ctx, input))
	},
	update: func(ctx context.Context, a *app, id string, input api.NamedInput) (*output.TableData, interface{}, error) {
		return companyView(a.services.Companies.Update(ctx, id, input))
	},
	remove: func(ctx context.Context, a *app, id string) error {
		return a.services.Companies.Delete(ctx, id)
	},
	restore: func(ctx context.Context, a *app, id string) (*output.TableData, interface{}, error) {
		return companyView(a.services.Companies.Restore(ctx, id))
	},
}

var categoriesResource = namedResource{
	use:   "categories",
	alias: "category",
	short: "Управление категориями товаров",
	list: func(ctx context.Context, a *app) (*output.TableData, interface{}, int, error) {
		res := a.services.Categories.List(ctx)
		if res.Err != nil {
			return nil, nil, 0, res.Err
		}
		return output.CategoriesTable(res.Data), res.Data, len(res.Data), nil
	},
	get: func(ctx context.Context, a *app, id string) (*output.TableData, interface{}, error) {
		c, err := detailOf(a.services.Categories.Get(ctx, id))
		return categoryView(c, err)
	},
	create: func(ctx context.Context, a *app, input api.NamedInput) (*output.TableData, interface{}, error) {
		return categoryView(a.services.Categories.Create(ctx, input))
	},
	update: func(ctx context.Context, a *app, id string, input api.NamedInput) (*output.TableData, interface{}, error) {
		return categoryView(a.services.Categories.Update(ctx, id, input))
	},
	remove: func(ctx context.Context, a *app, id string) error {
		return a.services.Categories.Delete(ctx, id)
	},
	restore: func(ctx context.Context, a *app, id string) (*output.TableData, interface{}, error) {
		return categoryView(a.services.Categories.Restore(ctx, id))
	},
}

func companyView(c *api.Company, err error) (*output.TableData, interface{}, error) {
	if err != nil {
		return nil, nil, err
	}
	return output.CompaniesTable([]api.Company{*c}), c, nil
}

func categoryView(c *api.Category, err error) (*output.TableData, interface{}, error) {
	if err != nil {
		return nil, nil, err
	}
	return output.CategoriesTable([]api.Category{*c}), c, nil
}

// newNamedCmd создает дерево команд справочника
func newNamedCmd(r namedResource) *cobra.Command {
	root := &cobra.Command{
		Use:     r.use,
		Aliases: []string{r.alias},
		Short:   r.short,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Показать список",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				table, data, count, err := r.list(ctx, a)
				if err != nil {
					return err
				}
				return a.print(ctx, cmd, a.view(table, data), count, nil)
			})
		},
	}

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Показать запись",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				return printNamed(ctx, cmd, a)(r.get(ctx, a, args[0]))
			})
		},
	}

	createCmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Создать запись",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				return printNamed(ctx, cmd, a)(r.create(ctx, a, api.NamedInput{Name: strings.TrimSpace(args[0])}))
			})
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update [id] [name]",
		Short: "Переименовать запись",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				return printNamed(ctx, cmd, a)(r.update(ctx, a, args[0], api.NamedInput{Name: strings.TrimSpace(args[1])}))
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Удалить запись",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				return r.remove(ctx, a, args[0])
			})
		},
	}

	restoreCmd := &cobra.Command{
		Use:   "restore [id]",
		Short: "Восстановить запись",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app) error {
				return printNamed(ctx, cmd, a)(r.restore(ctx, a, args[0]))
			})
		},
	}

	root.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd, restoreCmd)
	return root
}

// printNamed выводит запись справочника, если операция прошла успешно
func printNamed(ctx context.Context, cmd *cobra.Command, a *app) func(*output.TableData, interface{}, error) error {
	return func(table *output.TableData, data interface{}, err error) error {
		if err != nil {
			return err
		}
		return a.print(ctx, cmd, a.view(table, data), 1, nil)
	}
}
