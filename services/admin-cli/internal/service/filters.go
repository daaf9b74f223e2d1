package service

import (
	"sort"
	"strings"
	"time"

	"AdminPanelPlatform/services/admin-cli/internal/api"
)

// Клиентская фильтрация уже загруженных списков. Функции не изменяют входной
// срез и возвращают новый.

// CustomerFilter фильтр списка клиентов
type CustomerFilter struct {
	Search string
	Status api.CustomerStatus
	Area   string
	City   string
}

// FilterCustomers фильтрует клиентов по строке поиска, статусу, району и городу
func FilterCustomers(customers []api.Customer, f CustomerFilter) []api.Customer {
	needle := normalize(f.Search)
	out := make([]api.Customer, 0, len(customers))
	for _, c := range customers {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Area != "" && !strings.EqualFold(c.Area, f.Area) {
			continue
		}
		if f.City != "" && !strings.EqualFold(c.City, f.City) {
			continue
		}
		if needle != "" && !containsAny(needle, c.ShopName, c.OwnerName, c.OwnerPhone, c.OwnerEmail, c.Area, c.City) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SortCustomers сортирует клиентов по полю: shopName, ownerName, city,
// registrationDate, totalOrders, totalSpent. Неизвестное поле сохраняет порядок
func SortCustomers(customers []api.Customer, by string, order api.SortOrder) []api.Customer {
	out := append([]api.Customer(nil), customers...)
	var less func(a, b api.Customer) int
	switch by {
	case "shopName":
		less = func(a, b api.Customer) int { return compareFold(a.ShopName, b.ShopName) }
	case "ownerName":
		less = func(a, b api.Customer) int { return compareFold(a.OwnerName, b.OwnerName) }
	case "city":
		less = func(a, b api.Customer) int { return compareFold(a.City, b.City) }
	case "registrationDate":
		less = func(a, b api.Customer) int { return compareTime(a.RegistrationDate, b.RegistrationDate) }
	case "totalOrders":
		less = func(a, b api.Customer) int { return compareFloat(float64(a.TotalOrders), float64(b.TotalOrders)) }
	case "totalSpent":
		less = func(a, b api.Customer) int { return compareFloat(a.TotalSpent, b.TotalSpent) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return ordered(less(out[i], out[j]), order) })
	return out
}

// OrderFilter фильтр списка заказов. Границы дат включительные, по дню
type OrderFilter struct {
	Search   string
	Status   api.OrderStatus
	DateFrom time.Time
	DateTo   time.Time
}

// FilterOrders фильтрует заказы по строке поиска, статусу и диапазону дат
func FilterOrders(orders []api.Order, f OrderFilter) []api.Order {
	needle := normalize(f.Search)
	out := make([]api.Order, 0, len(orders))
	for _, o := range orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if !f.DateFrom.IsZero() && o.Date.Before(startOfDay(f.DateFrom)) {
			continue
		}
		if !f.DateTo.IsZero() && !o.Date.Before(startOfDay(f.DateTo).AddDate(0, 0, 1)) {
			continue
		}
		if needle != "" && !containsAny(needle, o.ID, o.CustomerName, o.CustomerAddress, o.CustomerEmail, o.TrackingNumber) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// SortOrders сортирует заказы по полю: date, customerName, status, items
func SortOrders(orders []api.Order, by string, order api.SortOrder) []api.Order {
	out := append([]api.Order(nil), orders...)
	var less func(a, b api.Order) int
	switch by {
	case "date":
		less = func(a, b api.Order) int { return compareTime(a.Date, b.Date) }
	case "customerName":
		less = func(a, b api.Order) int { return compareFold(a.CustomerName, b.CustomerName) }
	case "status":
		less = func(a, b api.Order) int { return compareFold(string(a.Status), string(b.Status)) }
	case "items":
		less = func(a, b api.Order) int { return compareFloat(float64(a.Items), float64(b.Items)) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return ordered(less(out[i], out[j]), order) })
	return out
}

// ProductFilter фильтр списка товаров
type ProductFilter struct {
	Search      string
	CompanyIDs  []string
	CategoryIDs []string
	MinPrice    *float64
	MaxPrice    *float64
	OutOfStock  *bool
}

// FilterProducts фильтрует товары. Цена товара - минимальная цена его вариантов
func FilterProducts(products []api.Product, f ProductFilter) []api.Product {
	needle := normalize(f.Search)
	companies := toSet(f.CompanyIDs)
	categories := toSet(f.CategoryIDs)
	out := make([]api.Product, 0, len(products))
	for _, p := range products {
		if len(companies) > 0 && !companies[p.CompanyID] {
			continue
		}
		if len(categories) > 0 && !categories[p.CategoryID] {
			continue
		}
		if f.OutOfStock != nil && p.IsOutOfStock != *f.OutOfStock {
			continue
		}
		price := p.MinPrice()
		if f.MinPrice != nil && price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && price > *f.MaxPrice {
			continue
		}
		if needle != "" && !containsAny(needle, append([]string{p.Name}, variantNames(p)...)...) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortProducts сортирует товары по полю: name, price
func SortProducts(products []api.Product, by string, order api.SortOrder) []api.Product {
	out := append([]api.Product(nil), products...)
	var less func(a, b api.Product) int
	switch by {
	case "name":
		less = func(a, b api.Product) int { return compareFold(a.Name, b.Name) }
	case "price":
		less = func(a, b api.Product) int { return compareFloat(a.MinPrice(), b.MinPrice()) }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return ordered(less(out[i], out[j]), order) })
	return out
}

func variantNames(p api.Product) []string {
	names := make([]string, len(p.Variants))
	for i, v := range p.Variants {
		names[i] = v.Name
	}
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareTime(a, b time.Time) int {
	return a.Compare(b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func ordered(cmp int, order api.SortOrder) bool {
	if order == api.SortDesc {
		return cmp > 0
	}
	return cmp < 0
}
