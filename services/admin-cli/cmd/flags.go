package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	pkgerrors "AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/output"
	"AdminPanelPlatform/services/admin-cli/internal/query"
)

// addListFlags добавляет флаги пагинации, сортировки и поиска
func addListFlags(cmd *cobra.Command, sortKeys string) {
	cmd.Flags().Int("page", 1, "номер страницы")
	cmd.Flags().Int("limit", 20, "записей на странице")
	cmd.Flags().String("sort-by", "", "поле сортировки ("+sortKeys+")")
	cmd.Flags().String("sort-order", "", "направление сортировки (asc, desc)")
	cmd.Flags().StringP("search", "q", "", "строка поиска")
}

// listParams читает общие параметры списка
func listParams(cmd *cobra.Command) (api.ListParams, error) {
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	sortBy, _ := cmd.Flags().GetString("sort-by")
	sortOrder, _ := cmd.Flags().GetString("sort-order")
	search, _ := cmd.Flags().GetString("search")

	order := api.SortOrder(strings.ToLower(sortOrder))
	switch order {
	case "", api.SortAsc, api.SortDesc:
	default:
		return api.ListParams{}, invalidFlag("sort-order", "must be asc or desc")
	}

	return api.ListParams{
		Page:      page,
		Limit:     limit,
		SortBy:    sortBy,
		SortOrder: order,
		Search:    search,
	}, nil
}

func invalidFlag(name, message string) error {
	err := pkgerrors.New(pkgerrors.ErrValidation, fmt.Sprintf("--%s %s", name, message))
	err.Fields = map[string]string{name: message}
	return err
}

// parseDateFlag разбирает дату в формате 2006-01-02
func parseDateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, time.Local)
	if err != nil {
		return time.Time{}, invalidFlag(name, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// optionalFloat возвращает значение флага, только если он указан
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

// optionalInt возвращает значение флага, только если он указан
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

// overlayString заменяет значение, если флаг указан
func overlayString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

// overlayBool заменяет значение, если флаг указан
func overlayBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}

// splitPair разбирает значение вида "name=value"
func splitPair(value string) (string, string, bool) {
	i := strings.LastIndex(value, "=")
	if i < 0 {
		return strings.TrimSpace(value), "", false
	}
	return strings.TrimSpace(value[:i]), strings.TrimSpace(value[i+1:]), true
}

// parseVariants разбирает флаги --variant "500ml=40"
func parseVariants(values []string) ([]api.ProductVariant, error) {
	variants := make([]api.ProductVariant, 0, len(values))
	for _, value := range values {
		name, price, ok := splitPair(value)
		if !ok {
			return nil, invalidFlag("variant", fmt.Sprintf("%q must look like name=price", value))
		}
		mrp, err := strconv.ParseFloat(price, 64)
		if err != nil {
			return nil, invalidFlag("variant", fmt.Sprintf("%q has invalid price", value))
		}
		variants = append(variants, api.ProductVariant{Name: name, MRP: mrp})
	}
	return variants, nil
}

// parseItems разбирает флаги --item "Masala Chips=3", где число означает коробки
func parseItems(values []string) ([]api.OrderItem, error) {
	items := make([]api.OrderItem, 0, len(values))
	for _, value := range values {
		name, qty, ok := splitPair(value)
		item := api.OrderItem{Name: name}
		if ok {
			boxes, err := strconv.Atoi(qty)
			if err != nil || boxes < 0 {
				return nil, invalidFlag("item", fmt.Sprintf("%q has invalid quantity", value))
			}
			item.Boxes = &boxes
		}
		items = append(items, item)
	}
	return items, nil
}

// pageMeta метаданные страницы для json и yaml вывода
func pageMeta[T any](page *api.Page[T]) *output.Metadata {
	return output.PageMetadata(page.Total, page.Page, page.Limit)
}

// detailOf возвращает сущность из результата чтения
func detailOf[T any](res query.Result[*T]) (*T, error) {
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Data == nil {
		return nil, pkgerrors.New(pkgerrors.ErrNotFound, "Resource not found")
	}
	return res.Data, nil
}

// pageOf возвращает страницу из результата чтения
func pageOf[T any](res query.Result[*api.Page[T]]) (*api.Page[T], error) {
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Data == nil {
		return &api.Page[T]{Items: []T{}}, nil
	}
	return res.Data, nil
}
