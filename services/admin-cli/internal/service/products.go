package service

import (
	"context"
	"fmt"

	"AdminPanelPlatform/pkg/validation"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/query"
)

// ProductService запросы и мутации товаров
type ProductService struct {
	deps *Deps
}

// List возвращает страницу товаров через кеш
func (s *ProductService) List(ctx context.Context, params api.ProductListParams) query.Result[*api.Page[api.Product]] {
	key := query.ListKey(query.Products, params.Values())
	return read(ctx, s.deps, key, true, func(ctx context.Context) (*api.Page[api.Product], error) {
		return s.deps.API.ListProducts(ctx, params)
	})
}

// Get возвращает товар; при пустом id запрос не выполняется
func (s *ProductService) Get(ctx context.Context, id string) query.Result[*api.Product] {
	return read(ctx, s.deps, query.DetailKey(query.Products, id), id != "", func(ctx context.Context) (*api.Product, error) {
		return s.deps.API.GetProduct(ctx, id)
	})
}

// ValidateProduct проверяет форму товара: название, компания, категория
// и хотя бы один вариант с названием
func ValidateProduct(v *validation.Validator, input api.ProductInput) error {
	var p validation.Problems
	p.Merge(v.ValidateRequiredFields(map[string]string{
		"name":       input.Name,
		"companyId":  input.CompanyID,
		"categoryId": input.CategoryID,
	}, []string{"name", "companyId", "categoryId"}))

	if len(input.Variants) == 0 {
		p.Add("variants", "at least one variant is required")
	}
	for i, variant := range input.Variants {
		field := fmt.Sprintf("variants[%d].name", i)
		p.Merge(v.ValidateRequiredFields(map[string]string{field: variant.Name}, []string{field}))
		p.Merge(v.ValidateNonNegative(fmt.Sprintf("variants[%d].mrp", i), variant.MRP))
	}
	if input.PackSize != nil && *input.PackSize <= 0 {
		p.Add("packSize", "must be positive")
	}
	return p.Err()
}

func productID(p *api.Product) string { return p.ID }

// Create создает товар
func (s *ProductService) Create(ctx context.Context, input api.ProductInput) (*api.Product, error) {
	if err := ValidateProduct(s.deps.Validator, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Products, "product", actionCreate, "", func(ctx context.Context) (*api.Product, error) {
		return s.deps.API.CreateProduct(ctx, input)
	}, productID)
}

// Update полностью обновляет товар
func (s *ProductService) Update(ctx context.Context, id string, input api.ProductInput) (*api.Product, error) {
	if err := ValidateProduct(s.deps.Validator, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Products, "product", actionUpdate, id, func(ctx context.Context) (*api.Product, error) {
		return s.deps.API.UpdateProduct(ctx, id, input)
	}, productID)
}

// Delete мягко удаляет товар
func (s *ProductService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.deps, query.Products, "product", id, s.deps.API.DeleteProduct)
}

// Restore восстанавливает товар
func (s *ProductService) Restore(ctx context.Context, id string) (*api.Product, error) {
	return mutate(ctx, s.deps, query.Products, "product", actionRestore, id, func(ctx context.Context) (*api.Product, error) {
		return s.deps.API.RestoreProduct(ctx, id)
	}, productID)
}
