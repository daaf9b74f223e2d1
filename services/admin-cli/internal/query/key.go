package query

import (
	"net/url"
	"sort"
	"strings"
)

// Resource логическое имя ресурса в кеше
type Resource string

const (
	Customers  Resource = "customers"
	Orders     Resource = "orders"
	Products   Resource = "products"
	Companies  Resource = "companies"
	Categories Resource = "categories"
	Users      Resource = "users"
	Me         Resource = "me"
)

// Scope область ключа: список или отдельная сущность
type Scope string

const (
	ScopeList   Scope = "list"
	ScopeDetail Scope = "detail"
)

// Key составной ключ кеша
type Key struct {
	Resource Resource
	Scope    Scope
	// ID задан для ScopeDetail
	ID string
	// Params каноническая форма параметров списка
	Params string
}

// ListKey ключ списка. Параметры сортируются по имени, значения массивов
// тоже сортируются, поэтому порядок элементов фильтра не влияет на ключ
func ListKey(resource Resource, params url.Values) Key {
	return Key{Resource: resource, Scope: ScopeList, Params: canonical(params)}
}

// DetailKey ключ отдельной сущности
func DetailKey(resource Resource, id string) Key {
	return Key{Resource: resource, Scope: ScopeDetail, ID: id}
}

// String возвращает строковую форму ключа
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.Resource))
	b.WriteByte('/')
	b.WriteString(string(k.Scope))
	if k.Scope == ScopeDetail {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(k.ID))
	}
	if k.Params != "" {
		b.WriteByte('?')
		b.WriteString(k.Params)
	}
	return b.String()
}

func canonical(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for name, values := range params {
		if len(values) == 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		values := append([]string(nil), params[name]...)
		sort.Strings(values)
		for _, value := range values {
			if value == "" {
				continue
			}
			parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(value))
		}
	}
	return strings.Join(parts, "&")
}
