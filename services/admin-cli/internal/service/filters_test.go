package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"AdminPanelPlatform/services/admin-cli/internal/api"
)

func customersFixture() []api.Customer {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []api.Customer{
		{ID: "1", ShopName: "Sharma Stores", OwnerName: "Ravi", City: "Pune", Area: "Kothrud", Status: api.CustomerActive, RegistrationDate: base, TotalSpent: 500},
		{ID: "2", ShopName: "acme mart", OwnerName: "Meena", City: "Mumbai", Area: "Andheri", Status: api.CustomerPending, RegistrationDate: base.AddDate(0, 1, 0), TotalSpent: 1500},
		{ID: "3", ShopName: "Bharat Traders", OwnerName: "Arjun", OwnerPhone: "9988776655", City: "pune", Area: "Baner", Status: api.CustomerInactive, RegistrationDate: base.AddDate(0, -1, 0), TotalSpent: 50},
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}

func customerIDs(c []api.Customer) []string { return ids(c, func(c api.Customer) string { return c.ID }) }
func orderIDs(o []api.Order) []string       { return ids(o, func(o api.Order) string { return o.ID }) }
func productIDs(p []api.Product) []string   { return ids(p, func(p api.Product) string { return p.ID }) }

func TestFilterCustomers(t *testing.T) {
	customers := customersFixture()

	tests := []struct {
		name   string
		filter CustomerFilter
		want   []string
	}{
		{"empty filter keeps all", CustomerFilter{}, []string{"1", "2", "3"}},
		{"search is case insensitive", CustomerFilter{Search: "  ACME "}, []string{"2"}},
		{"search by phone", CustomerFilter{Search: "99887"}, []string{"3"}},
		{"status", CustomerFilter{Status: api.CustomerActive}, []string{"1"}},
		{"city ignores case", CustomerFilter{City: "PUNE"}, []string{"1", "3"}},
		{"city and area", CustomerFilter{City: "pune", Area: "baner"}, []string{"3"}},
		{"no match", CustomerFilter{Search: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, customerIDs(FilterCustomers(customers, tt.filter)))
		})
	}
}

func TestSortCustomers(t *testing.T) {
	customers := customersFixture()

	assert.Equal(t, []string{"2", "3", "1"}, customerIDs(SortCustomers(customers, "shopName", api.SortAsc)))
	assert.Equal(t, []string{"2", "1", "3"}, customerIDs(SortCustomers(customers, "registrationDate", api.SortDesc)))
	assert.Equal(t, []string{"3", "1", "2"}, customerIDs(SortCustomers(customers, "totalSpent", "")))
	assert.Equal(t, []string{"1", "2", "3"}, customerIDs(SortCustomers(customers, "unknown", api.SortAsc)))

	// Исходный срез не меняется
	assert.Equal(t, []string{"1", "2", "3"}, customerIDs(customers))
}

func TestFilterOrders(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2024, 6, d, h, 0, 0, 0, time.UTC) }
	orders := []api.Order{
		{ID: "o1", CustomerName: "Sharma Stores", Status: api.OrderPending, Date: day(1, 9)},
		{ID: "o2", CustomerName: "Acme Mart", Status: api.OrderShipped, Date: day(3, 23), TrackingNumber: "TRK-42"},
		{ID: "o3", CustomerName: "Bharat Traders", Status: api.OrderPending, Date: day(5, 0)},
	}

	assert.Equal(t, []string{"o1", "o3"}, orderIDs(FilterOrders(orders, OrderFilter{Status: api.OrderPending})))
	assert.Equal(t, []string{"o2"}, orderIDs(FilterOrders(orders, OrderFilter{Search: "trk-42"})))
	// Границы дат включают весь день
	assert.Equal(t, []string{"o2", "o3"}, orderIDs(FilterOrders(orders, OrderFilter{
		DateFrom: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	})))
	assert.Equal(t, []string{"o1", "o2"}, orderIDs(FilterOrders(orders, OrderFilter{
		DateTo: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	})))

	assert.Equal(t, []string{"o3", "o2", "o1"}, orderIDs(SortOrders(orders, "date", api.SortDesc)))
	assert.Equal(t, []string{"o2", "o3", "o1"}, orderIDs(SortOrders(orders, "customerName", api.SortAsc)))
}

func TestFilterProducts(t *testing.T) {
	products := []api.Product{
		{ID: "p1", Name: "Masala Chips", CompanyID: "acme", CategoryID: "snacks",
			Variants: []api.ProductVariant{{Name: "50g", MRP: 20}, {Name: "150g", MRP: 50}}},
		{ID: "p2", Name: "Lemon Soda", CompanyID: "globex", CategoryID: "drinks",
			Variants: []api.ProductVariant{{Name: "250ml", MRP: 25}}},
		{ID: "p3", Name: "Cola", CompanyID: "globex", CategoryID: "drinks", IsOutOfStock: true,
			Variants: []api.ProductVariant{{Name: "500ml", MRP: 40}}},
	}
	inStock := false
	outOfStock := true
	minPrice, maxPrice := 21.0, 40.0

	tests := []struct {
		name   string
		filter ProductFilter
		want   []string
	}{
		{"company", ProductFilter{CompanyIDs: []string{"globex"}}, []string{"p2", "p3"}},
		{"several companies", ProductFilter{CompanyIDs: []string{"globex", "acme"}}, []string{"p1", "p2", "p3"}},
		{"category and stock", ProductFilter{CategoryIDs: []string{"drinks"}, OutOfStock: &inStock}, []string{"p2"}},
		{"out of stock", ProductFilter{OutOfStock: &outOfStock}, []string{"p3"}},
		{"price uses cheapest variant", ProductFilter{MinPrice: &minPrice, MaxPrice: &maxPrice}, []string{"p2", "p3"}},
		{"search variant name", ProductFilter{Search: "150G"}, []string{"p1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, productIDs(FilterProducts(products, tt.filter)))
		})
	}

	assert.Equal(t, []string{"p1", "p2", "p3"}, productIDs(SortProducts(products, "price", api.SortAsc)))
	assert.Equal(t, []string{"p3", "p2", "p1"}, productIDs(SortProducts(products, "name", api.SortAsc)))
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, "Failed to update status of order", failureMessage(assert.AnError, "order", actionStatus))
	assert.Equal(t, "Customer", capitalize("customer"))
	assert.Equal(t, "", capitalize(""))
}
