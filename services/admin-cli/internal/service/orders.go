package service

import (
	"context"
	"fmt"

	"AdminPanelPlatform/pkg/validation"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/query"
)

// OrderService запросы и мутации заказов
type OrderService struct {
	deps *Deps
}

// List возвращает страницу заказов через кеш
func (s *OrderService) List(ctx context.Context, params api.OrderListParams) query.Result[*api.Page[api.Order]] {
	key := query.ListKey(query.Orders, params.Values())
	return read(ctx, s.deps, key, true, func(ctx context.Context) (*api.Page[api.Order], error) {
		return s.deps.API.ListOrders(ctx, params)
	})
}

// Get возвращает заказ; при пустом id запрос не выполняется
func (s *OrderService) Get(ctx context.Context, id string) query.Result[*api.Order] {
	return read(ctx, s.deps, query.DetailKey(query.Orders, id), id != "", func(ctx context.Context) (*api.Order, error) {
		return s.deps.API.GetOrder(ctx, id)
	})
}

// ValidateOrder проверяет форму заказа
func ValidateOrder(v *validation.Validator, input api.OrderInput) error {
	var p validation.Problems
	p.Merge(v.ValidateRequiredFields(map[string]string{
		"customerName":    input.CustomerName,
		"customerAddress": input.CustomerAddress,
	}, []string{"customerName", "customerAddress"}))
	if input.Status != "" {
		p.Merge(v.ValidateEnum(string(input.Status), api.OrderStatuses, "status"))
	}
	if input.CustomerEmail != "" {
		p.Merge(v.ValidateEmail("customerEmail", input.CustomerEmail))
	}
	for i, item := range input.OrderItems {
		field := fmt.Sprintf("orderItems[%d].name", i)
		p.Merge(v.ValidateRequiredFields(map[string]string{field: item.Name}, []string{field}))
	}
	return p.Err()
}

func orderID(o *api.Order) string { return o.ID }

// Create создает заказ
func (s *OrderService) Create(ctx context.Context, input api.OrderInput) (*api.Order, error) {
	if err := ValidateOrder(s.deps.Validator, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Orders, "order", actionCreate, "", func(ctx context.Context) (*api.Order, error) {
		return s.deps.API.CreateOrder(ctx, input)
	}, orderID)
}

// Update полностью обновляет заказ
func (s *OrderService) Update(ctx context.Context, id string, input api.OrderInput) (*api.Order, error) {
	if err := ValidateOrder(s.deps.Validator, input); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Orders, "order", actionUpdate, id, func(ctx context.Context) (*api.Order, error) {
		return s.deps.API.UpdateOrder(ctx, id, input)
	}, orderID)
}

// UpdateStatus меняет статус заказа
func (s *OrderService) UpdateStatus(ctx context.Context, id string, update api.OrderStatusUpdate) (*api.Order, error) {
	if err := s.deps.Validator.ValidateEnum(string(update.Status), api.OrderStatuses, "status"); err != nil {
		return nil, err
	}
	return mutate(ctx, s.deps, query.Orders, "order", actionStatus, id, func(ctx context.Context) (*api.Order, error) {
		return s.deps.API.UpdateOrderStatus(ctx, id, update)
	}, orderID)
}

// Delete мягко удаляет заказ
func (s *OrderService) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.deps, query.Orders, "order", id, s.deps.API.DeleteOrder)
}

// Restore восстанавливает заказ
func (s *OrderService) Restore(ctx context.Context, id string) (*api.Order, error) {
	return mutate(ctx, s.deps, query.Orders, "order", actionRestore, id, func(ctx context.Context) (*api.Order, error) {
		return s.deps.API.RestoreOrder(ctx, id)
	}, orderID)
}
