package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"AdminPanelPlatform/pkg/logger"
)

// Kind тип уведомления
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultDuration время показа уведомления по умолчанию
const DefaultDuration = 4 * time.Second

const sinkTimeout = 5 * time.Second

// Notification кратковременное сообщение пользователю
type Notification struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Sink получает копию каждого уведомления
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// Option настройка шины
type Option func(*Bus)

// WithDefaultDuration задает время показа по умолчанию
func WithDefaultDuration(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.defaultDuration = d
		}
	}
}

// WithSink подключает приемник уведомлений
func WithSink(sink Sink) Option {
	return func(b *Bus) {
		if sink != nil {
			b.sinks = append(b.sinks, sink)
		}
	}
}

// Bus шина уведомлений. Уведомления хранятся в памяти в порядке поступления
// (старые первыми) и удаляются по истечении Duration
type Bus struct {
	logger          logger.Logger
	defaultDuration time.Duration
	sinks           []Sink

	mu          sync.Mutex
	items       []Notification
	timers      map[string]*time.Timer
	subscribers map[int]chan Notification
	nextID      int
	closed      bool

	wg sync.WaitGroup
}

// NewBus создает шину уведомлений
func NewBus(log logger.Logger, opts ...Option) *Bus {
	if log == nil {
		log = logger.NewNop()
	}
	b := &Bus{
		logger:          log,
		defaultDuration: DefaultDuration,
		timers:          make(map[string]*time.Timer),
		subscribers:     make(map[int]chan Notification),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Success публикует уведомление об успехе
func (b *Bus) Success(message string) Notification {
	return b.Push(KindSuccess, message, 0)
}

// Error публикует уведомление об ошибке
func (b *Bus) Error(message string) Notification {
	return b.Push(KindError, message, 0)
}

// Info публикует информационное уведомление
func (b *Bus) Info(message string) Notification {
	return b.Push(KindInfo, message, 0)
}

// Push публикует уведомление; duration <= 0 означает время по умолчанию.
// После закрытия шины уведомление возвращается, но не сохраняется
func (b *Bus) Push(kind Kind, message string, duration time.Duration) Notification {
	if duration <= 0 {
		duration = b.defaultDuration
	}
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		Duration:  duration,
		CreatedAt: time.Now(),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return n
	}
	b.items = append(b.items, n)
	b.timers[n.ID] = time.AfterFunc(duration, func() { b.expire(n.ID) })
	for _, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
		}
	}
	b.wg.Add(len(b.sinks))
	b.mu.Unlock()

	for _, sink := range b.sinks {
		go b.deliver(sink, n)
	}
	return n
}

func (b *Bus) deliver(sink Sink, n Notification) {
	defer b.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := sink.Deliver(ctx, n); err != nil {
		b.logger.Warn("не удалось доставить уведомление",
			logger.String("id", n.ID),
			logger.String("kind", string(n.Kind)),
			logger.Error(err))
	}
}

func (b *Bus) expire(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(id)
}

func (b *Bus) removeLocked(id string) bool {
	for i, item := range b.items {
		if item.ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			if timer, ok := b.timers[id]; ok {
				timer.Stop()
				delete(b.timers, id)
			}
			return true
		}
	}
	return false
}

// List возвращает активные уведомления, старые первыми
func (b *Bus) List() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notification, len(b.items))
	copy(out, b.items)
	return out
}

// Dismiss удаляет уведомление до истечения его времени
func (b *Bus) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeLocked(id)
}

// Subscribe возвращает канал новых уведомлений и функцию отписки
func (b *Bus) Subscribe() (<-chan Notification, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Notification, 16)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subscribers[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
}

// Close останавливает таймеры, закрывает подписки и ждет доставки в приемники
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
	b.items = nil
	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()

	b.wg.Wait()
}
