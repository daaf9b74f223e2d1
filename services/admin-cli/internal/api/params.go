package api

import (
	"net/url"
	"strconv"
	"time"
)

// SortOrder направление сортировки
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListParams общие параметры списков: пагинация, сортировка, поиск
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
	Search    string
}

// Values сериализует параметры в query string; нулевые значения опускаются
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.SortBy != "" {
		v.Set("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		v.Set("sortOrder", string(p.SortOrder))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	return v
}

// CustomerListParams фильтры списка клиентов
type CustomerListParams struct {
	ListParams
	Status CustomerStatus
	Area   string
	City   string
}

// Values сериализует параметры
func (p CustomerListParams) Values() url.Values {
	v := p.ListParams.Values()
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	if p.Area != "" {
		v.Set("area", p.Area)
	}
	if p.City != "" {
		v.Set("city", p.City)
	}
	return v
}

// OrderListParams фильтры списка заказов
type OrderListParams struct {
	ListParams
	Status   OrderStatus
	DateFrom time.Time
	DateTo   time.Time
}

// Values сериализует параметры; даты передаются в формате 2006-01-02
func (p OrderListParams) Values() url.Values {
	v := p.ListParams.Values()
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	if !p.DateFrom.IsZero() {
		v.Set("dateFrom", p.DateFrom.Format(time.DateOnly))
	}
	if !p.DateTo.IsZero() {
		v.Set("dateTo", p.DateTo.Format(time.DateOnly))
	}
	return v
}

// ProductListParams фильтры списка товаров
type ProductListParams struct {
	ListParams
	CompanyIDs  []string
	CategoryIDs []string
	MinPrice    *float64
	MaxPrice    *float64
	OutOfStock  *bool
}

// Values сериализует параметры; массивы передаются повторяющимися ключами
func (p ProductListParams) Values() url.Values {
	v := p.ListParams.Values()
	for _, id := range p.CompanyIDs {
		v.Add("companyId", id)
	}
	for _, id := range p.CategoryIDs {
		v.Add("categoryId", id)
	}
	if p.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}
	if p.OutOfStock != nil {
		v.Set("outOfStock", strconv.FormatBool(*p.OutOfStock))
	}
	return v
}
