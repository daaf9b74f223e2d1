package api

import (
	"encoding/json"
	"time"
)

// Envelope конверт ответа REST API
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// rawEnvelope используется клиентом до декодирования data в конкретный тип
type rawEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Page страница списка
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// User пользователь панели
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// LoginRequest тело запроса входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse ответ на вход
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// RefreshRequest тело запроса обновления токена
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse ответ на обновление токена.
// RefreshToken заполняется, если сервер ротирует refresh токены
type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// CustomerStatus статус клиента
type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
	CustomerPending  CustomerStatus = "pending"
)

// CustomerStatuses допустимые статусы клиента
var CustomerStatuses = []string{string(CustomerActive), string(CustomerInactive), string(CustomerPending)}

// Customer клиент (магазин)
type Customer struct {
	ID               string         `json:"id"`
	ShopName         string         `json:"shopName"`
	OwnerName        string         `json:"ownerName"`
	OwnerPhone       string         `json:"ownerPhone"`
	OwnerEmail       string         `json:"ownerEmail"`
	Address          string         `json:"address"`
	Area             string         `json:"area"`
	City             string         `json:"city"`
	State            string         `json:"state"`
	Pincode          string         `json:"pincode"`
	Status           CustomerStatus `json:"status"`
	RegistrationDate time.Time      `json:"registrationDate"`
	TotalOrders      int            `json:"totalOrders"`
	TotalSpent       float64        `json:"totalSpent"`
	Notes            string         `json:"notes,omitempty"`
}

// CustomerInput тело создания и обновления клиента
type CustomerInput struct {
	ShopName   string         `json:"shopName"`
	OwnerName  string         `json:"ownerName"`
	OwnerPhone string         `json:"ownerPhone"`
	OwnerEmail string         `json:"ownerEmail,omitempty"`
	Address    string         `json:"address"`
	Area       string         `json:"area"`
	City       string         `json:"city"`
	State      string         `json:"state"`
	Pincode    string         `json:"pincode"`
	Status     CustomerStatus `json:"status,omitempty"`
	Notes      string         `json:"notes,omitempty"`
}

// CustomerStatusUpdate тело PATCH статуса клиента
type CustomerStatusUpdate struct {
	Status CustomerStatus `json:"status"`
}

// OrderStatus статус заказа
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses допустимые статусы заказа
var OrderStatuses = []string{
	string(OrderPending), string(OrderProcessing), string(OrderShipped),
	string(OrderDelivered), string(OrderCancelled),
}

// OrderItem позиция заказа
type OrderItem struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Boxes             *int   `json:"boxes,omitempty"`
	Pieces            *int   `json:"pieces,omitempty"`
	Pack              *int   `json:"pack,omitempty"`
	PackSize          *int   `json:"packSize,omitempty"`
	AvailableInPieces bool   `json:"availableInPieces"`
	AvailableInPack   bool   `json:"availableInPack"`
}

// Order заказ
type Order struct {
	ID              string      `json:"id"`
	CustomerName    string      `json:"customerName"`
	CustomerAddress string      `json:"customerAddress"`
	Status          OrderStatus `json:"status"`
	Date            time.Time   `json:"date"`
	Items           int         `json:"items"`
	CustomerEmail   string      `json:"customerEmail,omitempty"`
	CustomerPhone   string      `json:"customerPhone,omitempty"`
	OrderItems      []OrderItem `json:"orderItems,omitempty"`
	ShippingMethod  string      `json:"shippingMethod,omitempty"`
	TrackingNumber  string      `json:"trackingNumber,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

// OrderInput тело создания и обновления заказа
type OrderInput struct {
	CustomerName    string      `json:"customerName"`
	CustomerAddress string      `json:"customerAddress"`
	CustomerEmail   string      `json:"customerEmail,omitempty"`
	CustomerPhone   string      `json:"customerPhone,omitempty"`
	Status          OrderStatus `json:"status,omitempty"`
	OrderItems      []OrderItem `json:"orderItems,omitempty"`
	ShippingMethod  string      `json:"shippingMethod,omitempty"`
	TrackingNumber  string      `json:"trackingNumber,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

// OrderStatusUpdate тело PATCH статуса заказа
type OrderStatusUpdate struct {
	Status         OrderStatus `json:"status"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	ShippingMethod string      `json:"shippingMethod,omitempty"`
}

// ProductVariant вариант товара
type ProductVariant struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	MRP  float64 `json:"mrp"`
}

// Product товар
type Product struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	CompanyID         string           `json:"companyId"`
	CategoryID        string           `json:"categoryId"`
	Variants          []ProductVariant `json:"variants"`
	IsOutOfStock      bool             `json:"isOutOfStock"`
	AvailableInPieces bool             `json:"availableInPieces"`
	AvailableInPack   bool             `json:"availableInPack"`
	PackSize          *int             `json:"packSize,omitempty"`
}

// ProductInput тело создания и обновления товара
type ProductInput struct {
	Name              string           `json:"name"`
	CompanyID         string           `json:"companyId"`
	CategoryID        string           `json:"categoryId"`
	Variants          []ProductVariant `json:"variants"`
	IsOutOfStock      bool             `json:"isOutOfStock"`
	AvailableInPieces bool             `json:"availableInPieces"`
	AvailableInPack   bool             `json:"availableInPack"`
	PackSize          *int             `json:"packSize,omitempty"`
}

// MinPrice минимальная цена среди вариантов
func (p Product) MinPrice() float64 {
	if len(p.Variants) == 0 {
		return 0
	}
	min := p.Variants[0].MRP
	for _, v := range p.Variants[1:] {
		if v.MRP < min {
			min = v.MRP
		}
	}
	return min
}

// Company компания-производитель
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category категория товаров
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NamedInput тело создания и обновления компании или категории
type NamedInput struct {
	Name string `json:"name"`
}
