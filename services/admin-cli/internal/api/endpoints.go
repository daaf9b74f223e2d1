package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Ресурсы REST API
const (
	ResourceCustomers  = "customers"
	ResourceOrders     = "orders"
	ResourceProducts   = "products"
	ResourceCompanies  = "companies"
	ResourceCategories = "categories"
)

func call[T any](ctx context.Context, c *Client, method, endpoint string, query url.Values, body any) (*T, error) {
	var out T
	if err := c.Do(ctx, method, endpoint, query, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func entityPath(resource, id string, suffix ...string) string {
	parts := append([]string{"", resource, url.PathEscape(id)}, suffix...)
	return strings.Join(parts, "/")
}

// Login вход по email и паролю
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	return call[LoginResponse](ctx, c, http.MethodPost, "/auth/login", nil, req)
}

// Refresh обменивает refresh токен на новый access токен
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	return call[RefreshResponse](ctx, c, http.MethodPost, "/auth/refresh", nil, RefreshRequest{RefreshToken: refreshToken})
}

// Me возвращает текущего пользователя
func (c *Client) Me(ctx context.Context) (*User, error) {
	return call[User](ctx, c, http.MethodGet, "/auth/me", nil, nil)
}

// Logout завершает сессию на сервере
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, RefreshRequest{RefreshToken: refreshToken}, nil)
}

// ListUsers возвращает пользователей панели
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	users, err := call[[]User](ctx, c, http.MethodGet, "/auth/users", nil, nil)
	if err != nil {
		return nil, err
	}
	return *users, nil
}

// ListCustomers возвращает страницу клиентов
func (c *Client) ListCustomers(ctx context.Context, params CustomerListParams) (*Page[Customer], error) {
	return call[Page[Customer]](ctx, c, http.MethodGet, "/"+ResourceCustomers, params.Values(), nil)
}

// GetCustomer возвращает клиента по id
func (c *Client) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return call[Customer](ctx, c, http.MethodGet, entityPath(ResourceCustomers, id), nil, nil)
}

// CreateCustomer создает клиента
func (c *Client) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	return call[Customer](ctx, c, http.MethodPost, "/"+ResourceCustomers, nil, input)
}

// UpdateCustomer полностью обновляет клиента
func (c *Client) UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*Customer, error) {
	return call[Customer](ctx, c, http.MethodPut, entityPath(ResourceCustomers, id), nil, input)
}

// UpdateCustomerStatus меняет статус клиента
func (c *Client) UpdateCustomerStatus(ctx context.Context, id string, status CustomerStatus) (*Customer, error) {
	return call[Customer](ctx, c, http.MethodPatch, entityPath(ResourceCustomers, id, "status"), nil, CustomerStatusUpdate{Status: status})
}

// DeleteCustomer мягко удаляет клиента
func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, entityPath(ResourceCustomers, id), nil, nil, nil)
}

// RestoreCustomer восстанавливает удаленного клиента
func (c *Client) RestoreCustomer(ctx context.Context, id string) (*Customer, error) {
	return call[Customer](ctx, c, http.MethodPatch, entityPath(ResourceCustomers, id, "restore"), nil, nil)
}

// ListOrders возвращает страницу заказов
func (c *Client) ListOrders(ctx context.Context, params OrderListParams) (*Page[Order], error) {
	return call[Page[Order]](ctx, c, http.MethodGet, "/"+ResourceOrders, params.Values(), nil)
}

// GetOrder возвращает заказ по id
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	return call[Order](ctx, c, http.MethodGet, entityPath(ResourceOrders, id), nil, nil)
}

// CreateOrder создает заказ
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (*Order, error) {
	return call[Order](ctx, c, http.MethodPost, "/"+ResourceOrders, nil, input)
}

// UpdateOrder полностью обновляет заказ
func (c *Client) UpdateOrder(ctx context.Context, id string, input OrderInput) (*Order, error) {
	return call[Order](ctx, c, http.MethodPut, entityPath(ResourceOrders, id), nil, input)
}

// UpdateOrderStatus меняет статус заказа
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, update OrderStatusUpdate) (*Order, error) {
	return call[Order](ctx, c, http.MethodPatch, entityPath(ResourceOrders, id, "status"), nil, update)
}

// DeleteOrder мягко удаляет заказ
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, entityPath(ResourceOrders, id), nil, nil, nil)
}

// RestoreOrder восстанавливает удаленный заказ
func (c *Client) RestoreOrder(ctx context.Context, id string) (*Order, error) {
	return call[Order](ctx, c, http.MethodPatch, entityPath(ResourceOrders, id, "restore"), nil, nil)
}

// ListProducts возвращает страницу товаров
func (c *Client) ListProducts(ctx context.Context, params ProductListParams) (*Page[Product], error) {
	return call[Page[Product]](ctx, c, http.MethodGet, "/"+ResourceProducts, params.Values(), nil)
}

// GetProduct возвращает товар по id
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	return call[Product](ctx, c, http.MethodGet, entityPath(ResourceProducts, id), nil, nil)
}

// CreateProduct создает товар
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	return call[Product](ctx, c, http.MethodPost, "/"+ResourceProducts, nil, input)
}

// UpdateProduct полностью обновляет товар
func (c *Client) UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error) {
	return call[Product](ctx, c, http.MethodPut, entityPath(ResourceProducts, id), nil, input)
}

// DeleteProduct мягко удаляет товар
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, entityPath(ResourceProducts, id), nil, nil, nil)
}

// RestoreProduct восстанавливает удаленный товар
func (c *Client) RestoreProduct(ctx context.Context, id string) (*Product, error) {
	return call[Product](ctx, c, http.MethodPatch, entityPath(ResourceProducts, id, "restore"), nil, nil)
}

// ListCompanies возвращает все компании
func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	companies, err := call[[]Company](ctx, c, http.MethodGet, "/"+ResourceCompanies, nil, nil)
	if err != nil {
		return nil, err
	}
	return *companies, nil
}

// GetCompany возвращает компанию по id
func (c *Client) GetCompany(ctx context.Context, id string) (*Company, error) {
	return call[Company](ctx, c, http.MethodGet, entityPath(ResourceCompanies, id), nil, nil)
}

// CreateCompany создает компанию
func (c *Client) CreateCompany(ctx context.Context, input NamedInput) (*Company, error) {
	return call[Company](ctx, c, http.MethodPost, "/"+ResourceCompanies, nil, input)
}

// UpdateCompany переименовывает компанию
func (c *Client) UpdateCompany(ctx context.Context, id string, input NamedInput) (*Company, error) {
	return call[Company](ctx, c, http.MethodPut, entityPath(ResourceCompanies, id), nil, input)
}

// DeleteCompany мягко удаляет компанию
func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, entityPath(ResourceCompanies, id), nil, nil, nil)
}

// RestoreCompany восстанавливает удаленную компанию
func (c *Client) RestoreCompany(ctx context.Context, id string) (*Company, error) {
	return call[Company](ctx, c, http.MethodPatch, entityPath(ResourceCompanies, id, "restore"), nil, nil)
}

// ListCategories возвращает все категории
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := call[[]Category](ctx, c, http.MethodGet, "/"+ResourceCategories, nil, nil)
	if err != nil {
		return nil, err
	}
	return *categories, nil
}

// GetCategory возвращает категорию по id
func (c *Client) GetCategory(ctx context.Context, id string) (*Category, error) {
	return call[Category](ctx, c, http.MethodGet, entityPath(ResourceCategories, id), nil, nil)
}

// CreateCategory создает категорию
func (c *Client) CreateCategory(ctx context.Context, input NamedInput) (*Category, error) {
	return call[Category](ctx, c, http.MethodPost, "/"+ResourceCategories, nil, input)
}

// UpdateCategory переименовывает категорию
func (c *Client) UpdateCategory(ctx context.Context, id string, input NamedInput) (*Category, error) {
	return call[Category](ctx, c, http.MethodPut, entityPath(ResourceCategories, id), nil, input)
}

// DeleteCategory мягко удаляет категорию
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, entityPath(ResourceCategories, id), nil, nil, nil)
}

// RestoreCategory восстанавливает удаленную категорию
func (c *Client) RestoreCategory(ctx context.Context, id string) (*Category, error) {
	return call[Category](ctx, c, http.MethodPatch, entityPath(ResourceCategories, id, "restore"), nil, nil)
}
