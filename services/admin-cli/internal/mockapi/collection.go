package mockapi

import (
	"sync"

	"github.com/google/uuid"
)

// record запись коллекции с признаком мягкого удаления
type record[T any] struct {
	entity  T
	deleted bool
}

// collection потокобезопасное хранилище сущностей с мягким удалением.
// Порядок вставки сохраняется
type collection[T any] struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*record[T]
	setID   func(*T, string)
}

func newCollection[T any](setID func(*T, string)) *collection[T] {
	return &collection[T]{
		records: make(map[string]*record[T]),
		setID:   setID,
	}
}

// insert добавляет сущность с новым uuid
func (c *collection[T]) insert(entity T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	c.setID(&entity, id)
	c.records[id] = &record[T]{entity: entity}
	c.order = append(c.order, id)
	return entity
}

// active возвращает неудаленные сущности в порядке вставки
func (c *collection[T]) active() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		if r := c.records[id]; !r.deleted {
			out = append(out, r.entity)
		}
	}
	return out
}

// get возвращает неудаленную сущность
func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.records[id]
	if !ok || r.deleted {
		var zero T
		return zero, false
	}
	return r.entity, true
}

// update применяет fn к неудаленной сущности
func (c *collection[T]) update(id string, fn func(*T)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.records[id]
	if !ok || r.deleted {
		var zero T
		return zero, false
	}
	fn(&r.entity)
	c.setID(&r.entity, id)
	return r.entity, true
}

// softDelete помечает сущность удаленной
func (c *collection[T]) softDelete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.records[id]
	if !ok || r.deleted {
		return false
	}
	r.deleted = true
	return true
}

// restoreResult исход восстановления
type restoreResult int

const (
	restoreOK restoreResult = iota
	restoreNotFound
	restoreNotDeleted
)

// restore снимает пометку удаления; поля сущности не меняются
func (c *collection[T]) restore(id string) (T, restoreResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.records[id]
	if !ok {
		var zero T
		return zero, restoreNotFound
	}
	if !r.deleted {
		return r.entity, restoreNotDeleted
	}
	r.deleted = false
	return r.entity, restoreOK
}
