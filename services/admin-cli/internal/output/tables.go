package output

import (
	"fmt"
	"strconv"
	"strings"

	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/notify"
	"AdminPanelPlatform/services/admin-cli/internal/session"
)

// CustomersTable создает таблицу клиентов
func CustomersTable(customers []api.Customer) *TableData {
	table := NewTableData("ID", "Shop", "Owner", "Phone", "City", "Status", "Orders", "Spent")
	for _, c := range customers {
		table.AddRowWithStyle([]string{
			c.ID,
			c.ShopName,
			c.OwnerName,
			c.OwnerPhone,
			orDash(c.City),
			withIcon(string(c.Status)),
			strconv.Itoa(c.TotalOrders),
			formatMoney(c.TotalSpent),
		}, statusStyle(string(c.Status)))
	}
	return table
}

// CustomerDetails карточка клиента
func CustomerDetails(c *api.Customer) *TableData {
	table := NewTableData("Field", "Value")
	table.AddRow("ID", c.ID)
	table.AddRow("Shop", c.ShopName)
	table.AddRow("Owner", c.OwnerName)
	table.AddRow("Phone", c.OwnerPhone)
	table.AddRow("Email", orDash(c.OwnerEmail))
	table.AddRow("Address", orDash(c.Address))
	table.AddRow("Area", orDash(c.Area))
	table.AddRow("City", orDash(c.City))
	table.AddRow("State", orDash(c.State))
	table.AddRow("Pincode", orDash(c.Pincode))
	table.AddRowWithStyle([]string{"Status", withIcon(string(c.Status))}, statusStyle(string(c.Status)))
	table.AddRow("Registered", formatDate(c.RegistrationDate))
	table.AddRow("Orders", strconv.Itoa(c.TotalOrders))
	table.AddRow("Spent", formatMoney(c.TotalSpent))
	table.AddRow("Notes", orDash(c.Notes))
	return table
}

// OrdersTable создает таблицу заказов
func OrdersTable(orders []api.Order) *TableData {
	table := NewTableData("ID", "Customer", "Status", "Date", "Items", "Tracking")
	for _, o := range orders {
		table.AddRowWithStyle([]string{
			o.ID,
			o.CustomerName,
			withIcon(string(o.Status)),
			formatDate(o.Date),
			strconv.Itoa(o.Items),
			orDash(o.TrackingNumber),
		}, statusStyle(string(o.Status)))
	}
	return table
}

// OrderDetails карточка заказа вместе с позициями
func OrderDetails(o *api.Order) *TableData {
	table := NewTableData("Field", "Value")
	table.AddRow("ID", o.ID)
	table.AddRow("Customer", o.CustomerName)
	table.AddRow("Address", o.CustomerAddress)
	table.AddRow("Email", orDash(o.CustomerEmail))
	table.AddRow("Phone", orDash(o.CustomerPhone))
	table.AddRowWithStyle([]string{"Status", withIcon(string(o.Status))}, statusStyle(string(o.Status)))
	table.AddRow("Date", formatDate(o.Date))
	table.AddRow("Shipping", orDash(o.ShippingMethod))
	table.AddRow("Tracking", orDash(o.TrackingNumber))
	table.AddRow("Notes", orDash(o.Notes))
	for i, item := range o.OrderItems {
		table.AddRow(fmt.Sprintf("Item %d", i+1), describeItem(item))
	}
	return table
}

func describeItem(item api.OrderItem) string {
	parts := []string{item.Name}
	if item.Boxes != nil {
		parts = append(parts, fmt.Sprintf("%d boxes", *item.Boxes))
	}
	if item.Pieces != nil {
		parts = append(parts, fmt.Sprintf("%d pcs", *item.Pieces))
	}
	if item.Pack != nil {
		parts = append(parts, fmt.Sprintf("%d packs", *item.Pack))
	}
	return strings.Join(parts, ", ")
}

// ProductsTable создает таблицу товаров. Справочники переводят идентификаторы
// компаний и категорий в названия; неизвестные идентификаторы выводятся как есть
func ProductsTable(products []api.Product, companies, categories map[string]string) *TableData {
	table := NewTableData("ID", "Name", "Company", "Category", "Price", "Variants", "Stock")
	for _, p := range products {
		style := StyleDefault
		stock := "in stock"
		if p.IsOutOfStock {
			style = StyleError
			stock = "out of stock"
		}
		table.AddRowWithStyle([]string{
			p.ID,
			p.Name,
			lookup(companies, p.CompanyID),
			lookup(categories, p.CategoryID),
			formatMoney(p.MinPrice()),
			strconv.Itoa(len(p.Variants)),
			stock,
		}, style)
	}
	return table
}

// ProductDetails карточка товара с вариантами
func ProductDetails(p *api.Product, companies, categories map[string]string) *TableData {
	table := NewTableData("Field", "Value")
	table.AddRow("ID", p.ID)
	table.AddRow("Name", p.Name)
	table.AddRow("Company", lookup(companies, p.CompanyID))
	table.AddRow("Category", lookup(categories, p.CategoryID))
	if p.IsOutOfStock {
		table.AddRowWithStyle([]string{"Stock", "out of stock"}, StyleError)
	} else {
		table.AddRowWithStyle([]string{"Stock", "in stock"}, StyleSuccess)
	}
	table.AddRow("Pieces", yesNo(p.AvailableInPieces))
	table.AddRow("Packs", yesNo(p.AvailableInPack))
	table.AddRow("Pack size", formatOptionalInt(p.PackSize))
	for _, v := range p.Variants {
		table.AddRow("Variant "+v.Name, formatMoney(v.MRP))
	}
	return table
}

func lookup(names map[string]string, id string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return orDash(id)
}

// CompaniesTable создает таблицу компаний
func CompaniesTable(companies []api.Company) *TableData {
	table := NewTableData("ID", "Name")
	for _, c := range companies {
		table.AddRow(c.ID, c.Name)
	}
	return table
}

// CategoriesTable создает таблицу категорий
func CategoriesTable(categories []api.Category) *TableData {
	table := NewTableData("ID", "Name")
	for _, c := range categories {
		table.AddRow(c.ID, c.Name)
	}
	return table
}

// UsersTable создает таблицу пользователей
func UsersTable(users []api.User) *TableData {
	table := NewTableData("ID", "Email", "Name", "Role")
	for _, u := range users {
		table.AddRow(u.ID, u.Email, u.Name, u.Role)
	}
	return table
}

// ValuesTable таблица из одной колонки
func ValuesTable(header string, values []string) *TableData {
	table := NewTableData(header)
	for _, v := range values {
		table.AddRow(v)
	}
	return table
}

// SessionTable описание текущей сессии
func SessionTable(st session.State) *TableData {
	table := NewTableData("Field", "Value")
	if !st.IsAuthenticated {
		table.AddRowWithStyle([]string{"Status", withIcon("inactive")}, StyleError)
		if st.Error != "" {
			table.AddRow("Error", st.Error)
		}
		return table
	}
	table.AddRowWithStyle([]string{"Status", withIcon("active")}, StyleSuccess)
	if st.User != nil {
		table.AddRow("User", st.User.Email)
		table.AddRow("Name", orDash(st.User.Name))
		table.AddRow("Role", orDash(st.User.Role))
	}
	table.AddRow("Expires", formatTime(st.ExpiresAt))
	return table
}

var kindStyles = map[notify.Kind]RowStyle{
	notify.KindSuccess: StyleSuccess,
	notify.KindError:   StyleError,
	notify.KindInfo:    StyleInfo,
}

// NotificationLines строки уведомлений для вывода после команды
func NotificationLines(items []notify.Notification, useColors bool) string {
	lines := make([]string, 0, len(items))
	for _, n := range items {
		line := fmt.Sprintf("%s %s", getStatusIcon(string(n.Kind)), n.Message)
		if useColors {
			line = colorize(line, kindStyles[n.Kind])
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
