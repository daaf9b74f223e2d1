package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/metrics"
)

// Значения окон по умолчанию
const (
	DefaultStaleTime     = 5 * time.Minute
	DefaultGCTime        = 10 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultFetchTimeout  = 30 * time.Second
)

// Status состояние результата запроса
type Status string

const (
	// StatusIdle запрос отключен и не выполнялся
	StatusIdle    Status = "idle"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Options параметры одного чтения. Нулевые окна заменяются значениями кеша
type Options struct {
	StaleTime time.Duration
	GCTime    time.Duration
	// Enabled nil означает включено
	Enabled *bool
}

// Enabled возвращает указатель для Options.Enabled
func Enabled(enabled bool) *bool {
	return &enabled
}

// Result результат чтения через кеш
type Result[T any] struct {
	Data T
	// HasData данные присутствуют, в том числе при ошибке последней загрузки
	HasData   bool
	Err       error
	Status    Status
	FromCache bool
	IsStale   bool
	FetchedAt time.Time
}

// Config настройки кеша
type Config struct {
	StaleTime     time.Duration
	GCTime        time.Duration
	SweepInterval time.Duration
	// FetchTimeout ограничивает фоновую перезагрузку
	FetchTimeout time.Duration
	Now          func() time.Time
	Logger       logger.Logger
	Metrics      *metrics.Metrics
}

type entry struct {
	key          Key
	data         any
	hasData      bool
	err          error
	fetchedAt    time.Time
	staleAfter   time.Time
	expiresAfter time.Time
	invalidated  bool
	refreshing   bool
	observers    int
	lastAccess   time.Time
	// gen увеличивается при инвалидации и записи извне; результат загрузки,
	// начатой до изменения, не сохраняется
	gen uint64
}

// Cache кеш серверных данных с окнами свежести и инвалидацией
type Cache struct {
	cfg    Config
	logger logger.Logger

	mu      sync.Mutex
	entries map[string]*entry

	group singleflight.Group
	bg    sync.WaitGroup
}

// NewCache создает кеш
func NewCache(cfg Config) *Cache {
	if cfg.StaleTime <= 0 {
		cfg.StaleTime = DefaultStaleTime
	}
	if cfg.GCTime <= 0 {
		cfg.GCTime = DefaultGCTime
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Cache{
		cfg:     cfg,
		logger:  log,
		entries: make(map[string]*entry),
	}
}

func (c *Cache) event(resource Resource, event string) {
	if c.cfg.Metrics != nil {
		c.cfg.Metrics.CacheEvent(string(resource), event)
	}
}

func (c *Cache) windows(opts Options) (time.Duration, time.Duration) {
	stale, gc := opts.StaleTime, opts.GCTime
	if stale <= 0 {
		stale = c.cfg.StaleTime
	}
	if gc <= 0 {
		gc = c.cfg.GCTime
	}
	return stale, gc
}

type fetchFunc func(ctx context.Context) (any, error)

// Fetch читает значение ключа через кеш:
//   - Enabled=false: без запроса, статус idle;
//   - нет записи, запись инвалидирована или истекла: блокирующая загрузка;
//   - свежая запись: данные из кеша без запроса;
//   - устаревшая запись: данные из кеша сразу и одна фоновая перезагрузка.
//
// Одновременные загрузки одного ключа объединяются. Ошибка загрузки
// не удаляет ранее полученные данные
func Fetch[T any](ctx context.Context, c *Cache, key Key, opts Options, fetcher func(ctx context.Context) (T, error)) Result[T] {
	if opts.Enabled != nil && !*opts.Enabled {
		return Result[T]{Status: StatusIdle}
	}

	stale, gc := c.windows(opts)
	fetch := func(ctx context.Context) (any, error) {
		return fetcher(ctx)
	}

	now := c.cfg.Now()
	k := key.String()

	c.mu.Lock()
	e := c.entries[k]
	switch {
	case e != nil && e.hasData && !e.invalidated && now.After(e.expiresAfter) && e.observers == 0:
		delete(c.entries, k)
		c.mu.Unlock()
		c.event(key.Resource, "evict")
		return fetchBlocking[T](ctx, c, key, fetch, stale, gc)

	case e == nil || !e.hasData:
		c.mu.Unlock()
		c.event(key.Resource, "miss")
		return fetchBlocking[T](ctx, c, key, fetch, stale, gc)

	case e.invalidated:
		c.mu.Unlock()
		c.event(key.Resource, "invalidated_read")
		return fetchBlocking[T](ctx, c, key, fetch, stale, gc)

	case now.After(e.staleAfter):
		e.lastAccess = now
		res := resultOf[T](e)
		res.IsStale = true
		spawn := !e.refreshing
		e.refreshing = true
		c.mu.Unlock()

		c.event(key.Resource, "stale")
		if spawn {
			c.refetch(ctx, key, fetch, stale, gc)
		}
		return res

	default:
		e.lastAccess = now
		res := resultOf[T](e)
		c.mu.Unlock()
		c.event(key.Resource, "hit")
		return res
	}
}

func resultOf[T any](e *entry) Result[T] {
	res := Result[T]{
		Status:    StatusSuccess,
		FromCache: true,
		FetchedAt: e.fetchedAt,
		Err:       e.err,
	}
	if e.err != nil {
		res.Status = StatusError
	}
	if e.hasData {
		if data, ok := e.data.(T); ok {
			res.Data = data
			res.HasData = true
		}
	}
	return res
}

func fetchBlocking[T any](ctx context.Context, c *Cache, key Key, fetch fetchFunc, stale, gc time.Duration) Result[T] {
	v, err, shared := c.group.Do(key.String(), func() (interface{}, error) {
		return c.load(ctx, key, fetch, stale, gc)
	})
	if shared {
		c.event(key.Resource, "dedup")
	}

	if err != nil {
		// Ранее полученные данные возвращаются вместе с ошибкой
		c.mu.Lock()
		defer c.mu.Unlock()
		res := Result[T]{Err: err, Status: StatusError}
		if e, ok := c.entries[key.String()]; ok {
			prev := resultOf[T](e)
			res.Data, res.HasData, res.FetchedAt = prev.Data, prev.HasData, prev.FetchedAt
		}
		return res
	}

	data, ok := v.(T)
	if !ok {
		return Result[T]{
			Err:    errors.New(errors.ErrInternal, fmt.Sprintf("query %s returned %T", key, v)),
			Status: StatusError,
		}
	}
	return Result[T]{Data: data, HasData: true, Status: StatusSuccess, FetchedAt: c.cfg.Now()}
}

// load выполняет загрузку и сохраняет результат, если запись не менялась
// с момента начала загрузки
func (c *Cache) load(ctx context.Context, key Key, fetch fetchFunc, stale, gc time.Duration) (any, error) {
	k := key.String()

	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		now := c.cfg.Now()
		e = &entry{key: key, lastAccess: now, expiresAfter: now.Add(gc)}
		c.entries[k] = e
	}
	gen := e.gen
	c.mu.Unlock()

	if c.cfg.Metrics != nil {
		c.cfg.Metrics.IncInFlight(string(key.Resource))
		defer c.cfg.Metrics.DecInFlight(string(key.Resource))
	}

	data, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.entries[k]
	if !ok || current != e || current.gen != gen {
		c.logger.Debug("результат загрузки устарел и не сохранен", logger.String("key", k))
		if ok && current == e {
			e.refreshing = false
		}
		return data, err
	}

	now := c.cfg.Now()
	e.refreshing = false
	e.lastAccess = now
	if err != nil {
		e.err = err
		c.logger.Debug("ошибка загрузки запроса", logger.String("key", k), logger.Error(err))
		return nil, err
	}

	e.data = data
	e.hasData = true
	e.err = nil
	e.invalidated = false
	e.fetchedAt = now
	e.staleAfter = now.Add(stale)
	e.expiresAfter = now.Add(gc)
	return data, nil
}

// refetch запускает фоновую перезагрузку. Отмена контекста вызывающего
// не прерывает ее; длительность ограничена FetchTimeout
func (c *Cache) refetch(parent context.Context, key Key, fetch fetchFunc, stale, gc time.Duration) {
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), c.cfg.FetchTimeout)
		defer cancel()

		_, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
			return c.load(ctx, key, fetch, stale, gc)
		})
		if err != nil {
			c.logger.Warn("фоновая перезагрузка не удалась",
				logger.String("key", key.String()),
				logger.Error(err))
		}
	}()
}

// Invalidate помечает все записи ресурса устаревшими: следующее чтение
// выполнит блокирующую загрузку. Загрузки, начатые до вызова, не сохраняются,
// и новые чтения к ним не присоединяются
func (c *Cache) Invalidate(resource Resource) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, e := range c.entries {
		if e.key.Resource != resource {
			continue
		}
		e.invalidated = true
		e.gen++
		c.group.Forget(e.key.String())
		count++
	}
	if count > 0 {
		c.event(resource, "invalidate")
	}
	return count
}

// SetEntity записывает сущность в ключ DetailKey(resource, id) как свежую
func (c *Cache) SetEntity(resource Resource, id string, data any) {
	c.Set(DetailKey(resource, id), data, Options{})
}

// Set записывает значение ключа как свежее
func (c *Cache) Set(key Key, data any, opts Options) {
	stale, gc := c.windows(opts)
	now := c.cfg.Now()
	k := key.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k]
	if !ok {
		e = &entry{key: key}
		c.entries[k] = e
	}
	e.data = data
	e.hasData = true
	e.err = nil
	e.invalidated = false
	e.gen++
	c.group.Forget(k)
	e.fetchedAt = now
	e.staleAfter = now.Add(stale)
	e.expiresAfter = now.Add(gc)
	e.lastAccess = now
}

// Remove удаляет запись
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := key.String()
	delete(c.entries, k)
	c.group.Forget(k)
}

// Peek возвращает данные ключа без загрузки и без учета свежести
func Peek[T any](c *Cache, key Key) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	e, ok := c.entries[key.String()]
	if !ok || !e.hasData {
		return zero, false
	}
	data, ok := e.data.(T)
	return data, ok
}

// Observe отмечает ключ как наблюдаемый: такие записи не вытесняются.
// Возвращает функцию снятия наблюдения
func (c *Cache) Observe(key Key) func() {
	k := key.String()
	c.mu.Lock()
	e, ok := c.entries[k]
	if !ok {
		now := c.cfg.Now()
		e = &entry{key: key, lastAccess: now, expiresAfter: now.Add(c.cfg.GCTime)}
		c.entries[k] = e
	}
	e.observers++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			e.observers--
			if e.observers == 0 {
				// окно вытеснения отсчитывается с момента потери наблюдателей
				now := c.cfg.Now()
				if until := now.Add(c.cfg.GCTime); until.After(e.expiresAfter) {
					e.expiresAfter = until
				}
			}
		})
	}
}

// Sweep вытесняет ненаблюдаемые записи, у которых истекло окно вытеснения
func (c *Cache) Sweep() int {
	now := c.cfg.Now()

	c.mu.Lock()
	var evicted []Resource
	for k, e := range c.entries {
		if e.observers > 0 || e.refreshing || !now.After(e.expiresAfter) {
			continue
		}
		delete(c.entries, k)
		evicted = append(evicted, e.key.Resource)
	}
	c.mu.Unlock()

	for _, resource := range evicted {
		c.event(resource, "evict")
	}
	if len(evicted) > 0 {
		c.logger.Debug("записи кеша вытеснены", logger.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Start запускает периодическое вытеснение до отмены ctx
func (c *Cache) Start(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.SweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// Wait ждет завершения фоновых перезагрузок
func (c *Cache) Wait() {
	c.bg.Wait()
}

// Len возвращает количество записей
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
