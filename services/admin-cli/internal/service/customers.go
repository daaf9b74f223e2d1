package service

import (
	"context"
	"strings"

	"AdminPanelPlatform/pkg/validation"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/query"
)

// CustomerRequiredFields обязательные поля формы клиента
var CustomerRequiredFields = []string{
	"shopName", "ownerName", "ownerPhone", "address", "area", "city", "state", "pincode",
}

// CustomerService запросы и мутации клиентов
type CustomerService struct {
	deps *Deps
}

// List возвращает страницу клиентов через кеш
func (s *CustomerService) List(ctx context.Context, params api.CustomerListParams) query.Result[*api.Page[api.Customer]] {
	key := query.ListKey(query.Customers, params.Values())
	return read(ctx, s.deps, key, true, func(ctx context.Context) (*api.Page[api.Customer], error) {
		return s.deps.API.ListCustomers(ctx, params)
	})
}

// Get возвращает клиента; при пустом id запрос не выполняется
func (s *CustomerService) Get(ctx context.Context, id string) query.Result[*api.Customer] {
	return read(ctx, s.deps, query.DetailKey(query.Customers, id), id != "", func(ctx context.Context) (*api.Customer, error) {
		return s.deps.API.GetCustomer(ctx, id)
	})
}

// ValidateCustomer проверяет форму клиента перед отправкой
func ValidateCustomer(v *validation.Validator, input api.CustomerInput) error {
	var p validation.Problems
	p.Merge(v.ValidateRequiredFields(map[string]string{
		"shopName":   input.ShopName,
		"ownerName":  input.OwnerName,
		"ownerPhone": input.OwnerPhone,
		"address":    input.Address,
		"area":       input.Area,
		"city":       input.City,
		"state":      input.State,
		"pincode":    input.Pincode,
	}, CustomerRequiredFields))
	if strings.TrimSpace(input.OwnerPhone) != "" {
		p.Merge(v.ValidatePhone("ownerPhone", input.OwnerPhone))
	}
	if strings.TrimSpace(input.Pincode) != "" {
		p.Merge(v.ValidatePincode("pincode", input.Pincode))
	}
	if input.OwnerEmail != "" {
		p.Merge(v.ValidateEmail("ownerEmail", input.OwnerEmail))
	}
	if input.Status != "" {
		p.Merge(v.ValidateEnum(string(input.Status), api.CustomerStatuses, "status"))
	}
	return p.Err()
}

func customerID(c *api.Customer) string { return c.ID }

// Create создает клиента
func (s *CustomerService) Create(ctx context.Context, input api.CustomerInput) (*api.Customer, error) {
	if err := ValidateCustomer(s.deps.Validator, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Customers, "customer", actionCreate, "", func(ctx context.Context) (*api.Customer, error) {
		return s.deps.API.CreateCustomer(ctx, input)
	}, customerID)
}

// Update полностью обновляет клиента
func (s *CustomerService) Update(ctx context.Context, id string, input api.CustomerInput) (*api.Customer, error) {
	if err := s.deps.Validator.ValidateRequiredFields(map[string]string{"id": id}, []string{"id"}); err != nil {
		return nil, err
	}
	if err := ValidateCustomer(s.deps.Validator, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Customers, "customer", actionUpdate, id, func(ctx context.Context) (*api.Customer, error) {
		return s.deps.API.UpdateCustomer(ctx, id, input)
	}, customerID)
}

// UpdateStatus меняет статус клиента
func (s *CustomerService) UpdateStatus(ctx context.Context, id string, status api.CustomerStatus) (*api.Customer, error) {
	if err := s.deps.Validator.ValidateEnum(string(status), api.CustomerStatuses, "status"); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Customers, "customer", actionStatus, id, func(ctx context.Context) (*api.Customer, error) {
		return s.deps.API.UpdateCustomerStatus(ctx, id, status)
	}, customerID)
}

// Delete мягко удаляет клиента
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.deps, query.Customers, "customer", id, s.deps.API.DeleteCustomer)
}

// Restore восстанавливает клиента
func (s *CustomerService) Restore(ctx context.Context, id string) (*api.Customer, error) {
	return mutate(ctx, s.deps, query.Customers, "customer", actionRestore, id, func(ctx context.Context) (*api.Customer, error) {
		return s.deps.API.RestoreCustomer(ctx, id)
	}, customerID)
}
