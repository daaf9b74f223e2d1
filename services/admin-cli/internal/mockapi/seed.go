package mockapi

import (
	"time"

	"AdminPanelPlatform/services/admin-cli/internal/api"
)

// seed заполняет коллекции демонстрационными данными
func (s *Server) seed() {
	now := s.now().UTC()

	acme := s.companies.insert(api.Company{Name: "Acme Foods"})
	globex := s.companies.insert(api.Company{Name: "Globex Beverages"})
	snacks := s.categories.insert(api.Category{Name: "Snacks"})
	drinks := s.categories.insert(api.Category{Name: "Drinks"})

	packSize := 12
	s.products.insert(api.Product{
		Name:       "Masala Chips",
		CompanyID:  acme.ID,
		CategoryID: snacks.ID,
		Variants: []api.ProductVariant{
			{ID: "v-chips-50", Name: "50g", MRP: 20},
			{ID: "v-chips-150", Name: "150g", MRP: 50},
		},
		AvailableInPieces: true,
		AvailableInPack:   true,
		PackSize:          &packSize,
	})
	s.products.insert(api.Product{
		Name:       "Lemon Soda",
		CompanyID:  globex.ID,
		CategoryID: drinks.ID,
		Variants: []api.ProductVariant{
			{ID: "v-soda-250", Name: "250ml", MRP: 25},
		},
		AvailableInPieces: true,
	})
	s.products.insert(api.Product{
		Name:         "Cola Classic",
		CompanyID:    globex.ID,
		CategoryID:   drinks.ID,
		Variants:     []api.ProductVariant{{ID: "v-cola-500", Name: "500ml", MRP: 40}},
		IsOutOfStock: true,
	})

	s.customers.insert(api.Customer{
		ShopName:         "Sharma General Store",
		OwnerName:        "Ravi Sharma",
		OwnerPhone:       "9876543210",
		OwnerEmail:       "ravi@example.com",
		Address:          "12 MG Road",
		Area:             "Indiranagar",
		City:             "Bengaluru",
		State:            "Karnataka",
		Pincode:          "560038",
		Status:           api.CustomerActive,
		RegistrationDate: now.AddDate(0, -3, 0),
		TotalOrders:      14,
		TotalSpent:       18250,
	})
	s.customers.insert(api.Customer{
		ShopName:         "Patel Provisions",
		OwnerName:        "Meena Patel",
		OwnerPhone:       "9123456780",
		Address:          "45 Station Road",
		Area:             "Navrangpura",
		City:             "Ahmedabad",
		State:            "Gujarat",
		Pincode:          "380009",
		Status:           api.CustomerPending,
		RegistrationDate: now.AddDate(0, 0, -10),
	})

	pieces := 24
	s.orders.insert(api.Order{
		CustomerName:    "Sharma General Store",
		CustomerAddress: "12 MG Road, Indiranagar, Bengaluru",
		Status:          api.OrderProcessing,
		Date:            now.Add(-48 * time.Hour),
		Items:           1,
		OrderItems: []api.OrderItem{
			{ID: "item-1", Name: "Masala Chips 50g", Pieces: &pieces, AvailableInPieces: true},
		},
	})
	s.orders.insert(api.Order{
		CustomerName:    "Patel Provisions",
		CustomerAddress: "45 Station Road, Navrangpura, Ahmedabad",
		Status:          api.OrderPending,
		Date:            now.Add(-2 * time.Hour),
	})
}
