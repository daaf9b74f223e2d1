package service

import (
	"context"

	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/query"
)

// CompanyService запросы и мутации компаний
type CompanyService struct {
	deps *Deps
}

// List возвращает все компании
func (s *CompanyService) List(ctx context.Context) query.Result[[]api.Company] {
	return read(ctx, s.deps, query.ListKey(query.Companies, nil), true, s.deps.API.ListCompanies)
}

// Get возвращает компанию; при пустом id запрос не выполняется
func (s *CompanyService) Get(ctx context.Context, id string) query.Result[*api.Company] {
	return read(ctx, s.deps, query.DetailKey(query.Companies, id), id != "", func(ctx context.Context) (*api.Company, error) {
		return s.deps.API.GetCompany(ctx, id)
	})
}

func companyID(c *api.Company) string { return c.ID }

// Create создает компанию
func (s *CompanyService) Create(ctx context.Context, input api.NamedInput) (*api.Company, error) {
	if err := validateNamed(s.deps, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Companies, "company", actionCreate, "", func(ctx context.Context) (*api.Company, error) {
		return s.deps.API.CreateCompany(ctx, input)
	}, companyID)
}

// Update переименовывает компанию
func (s *CompanyService) Update(ctx context.Context, id string, input api.NamedInput) (*api.Company, error) {
	if err := validateNamed(s.deps, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Companies, "company", actionUpdate, id, func(ctx context.Context) (*api.Company, error) {
		return s.deps.API.UpdateCompany(ctx, id, input)
	}, companyID)
}

// Delete мягко удаляет компанию
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.deps, query.Companies, "company", id, s.deps.API.DeleteCompany)
}

// Restore восстанавливает компанию
func (s *CompanyService) Restore(ctx context.Context, id string) (*api.Company, error) {
	return mutate(ctx, s.deps, query.Companies, "company", actionRestore, id, func(ctx context.Context) (*api.Company, error) {
		return s.deps.API.RestoreCompany(ctx, id)
	}, companyID)
}

// CategoryService запросы и мутации категорий
type CategoryService struct {
	deps *Deps
}

// List возвращает все категории
func (s *CategoryService) List(ctx context.Context) query.Result[[]api.Category] {
	return read(ctx, s.deps, query.ListKey(query.Categories, nil), true, s.deps.API.ListCategories)
}

// Get возвращает категорию; при пустом id запрос не выполняется
func (s *CategoryService) Get(ctx context.Context, id string) query.Result[*api.Category] {
	return read(ctx, s.deps, query.DetailKey(query.Categories, id), id != "", func(ctx context.Context) (*api.Category, error) {
		return s.deps.API.GetCategory(ctx, id)
	})
}

func categoryID(c *api.Category) string { return c.ID }

// Create создает категорию
func (s *CategoryService) Create(ctx context.Context, input api.NamedInput) (*api.Category, error) {
	if err := validateNamed(s.deps, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Categories, "category", actionCreate, "", func(ctx context.Context) (*api.Category, error) {
		return s.deps.API.CreateCategory(ctx, input)
	}, categoryID)
}

// Update переименовывает категорию
func (s *CategoryService) Update(ctx context.Context, id string, input api.NamedInput) (*api.Category, error) {
	if err := validateNamed(s.deps, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Categories, "category", actionUpdate, id, func(ctx context.Context) (*api.Category, error) {
		return s.deps.API.UpdateCategory(ctx, id, input)
	}, categoryID)
}

// Delete мягко удаляет категорию
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.deps, query.Categories, "category", id, s.deps.API.DeleteCategory)
}

// Restore восстанавливает категорию
func (s *CategoryService) Restore(ctx context.Context, id string) (*api.Category, error) {
	return mutate(ctx, s.deps, query.Categories, "category", actionRestore, id, func(ctx context.Context) (*api.Category, error) {
		return s.deps.API.RestoreCategory(ctx, id)
	}, categoryID)
}

func validateNamed(d *Deps, input api.NamedInput) error {
	return d.Validator.ValidateRequiredFields(map[string]string{"name": input.Name}, []string{"name"})
}

// UserService чтение пользователей панели
type UserService struct {
	deps *Deps
}

// List возвращает пользователей панели
func (s *UserService) List(ctx context.Context) query.Result[[]api.User] {
	return read(ctx, s.deps, query.ListKey(query.Users, nil), true, s.deps.API.ListUsers)
}

// Me возвращает текущего пользователя
func (s *UserService) Me(ctx context.Context) query.Result[*api.User] {
	return read(ctx, s.deps, query.DetailKey(query.Me, "current"), true, s.deps.API.Me)
}
