// Package locations хранит иерархию штат → город → район, введенную за время
// сессии. Данные живут только в памяти процесса и не связаны с кешем запросов
package locations

import (
	"sort"
	"strings"
	"sync"

	"AdminPanelPlatform/services/admin-cli/internal/api"
)

// node значение с исходным написанием и дочерними узлами по нормализованному ключу
type node struct {
	name     string
	children map[string]*node
}

func newNode(name string) *node {
	return &node{name: name, children: make(map[string]*node)}
}

// child возвращает дочерний узел, создавая его при необходимости.
// Первое введенное написание сохраняется
func (n *node) child(name string) *node {
	key := normalize(name)
	c, ok := n.children[key]
	if !ok {
		c = newNode(strings.TrimSpace(name))
		n.children[key] = c
	}
	return c
}

func (n *node) names() []string {
	out := make([]string, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c.name)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// Cache потокобезопасный справочник локаций сессии
type Cache struct {
	mu   sync.RWMutex
	root *node
}

// NewCache создает пустой справочник
func NewCache() *Cache {
	return &Cache{root: newNode("")}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AddState добавляет штат. Пустое значение игнорируется
func (c *Cache) AddState(state string) bool {
	if normalize(state) == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root.child(state)
	return true
}

// AddCity добавляет город штата; штат создается при необходимости
func (c *Cache) AddCity(state, city string) bool {
	if normalize(state) == "" || normalize(city) == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root.child(state).child(city)
	return true
}

// AddArea добавляет район города
func (c *Cache) AddArea(state, city, area string) bool {
	if normalize(state) == "" || normalize(city) == "" || normalize(area) == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root.child(state).child(city).child(area)
	return true
}

// States возвращает штаты по алфавиту
func (c *Cache) States() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root.names()
}

// Cities возвращает города штата по алфавиту
func (c *Cache) Cities(state string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.root.children[normalize(state)]
	if !ok {
		return []string{}
	}
	return s.names()
}

// Areas возвращает районы города по алфавиту
func (c *Cache) Areas(state, city string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.root.children[normalize(state)]
	if !ok {
		return []string{}
	}
	ct, ok := s.children[normalize(city)]
	if !ok {
		return []string{}
	}
	return ct.names()
}

// Seed заполняет справочник адресами клиентов
func (c *Cache) Seed(customers []api.Customer) {
	for _, cu := range customers {
		switch {
		case c.AddArea(cu.State, cu.City, cu.Area):
		case c.AddCity(cu.State, cu.City):
		default:
			c.AddState(cu.State)
		}
	}
}

// Reset очищает справочник
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = newNode("")
}
