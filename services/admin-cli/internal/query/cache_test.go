package query

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/metrics"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type counter struct {
	calls atomic.Int32
}

func (c *counter) fetcher(prefix string) func(ctx context.Context) ([]string, error) {
	return func(ctx context.Context) ([]string, error) {
		n := c.calls.Add(1)
		return []string{fmt.Sprintf("%s-%d", prefix, n)}, nil
	}
}

func newTestCache(clock *fakeClock) *Cache {
	return NewCache(Config{
		StaleTime: 5 * time.Minute,
		GCTime:    10 * time.Minute,
		Now:       clock.Now,
		Logger:    logger.NewNop(),
	})
}

func TestKey_OrderInsensitive(t *testing.T) {
	a := ListKey(Products, url.Values{
		"companyId": {"c2", "c1"},
		"page":      {"1"},
	})
	b := ListKey(Products, url.Values{
		"page":      {"1"},
		"companyId": {"c1", "c2"},
		"search":    {""},
	})
	assert.Equal(t, a, b)
	assert.Equal(t, "products/list?companyId=c1&companyId=c2&page=1", a.String())

	assert.Equal(t, "customers/detail/a%2Fb", DetailKey(Customers, "a/b").String())
	assert.Equal(t, "orders/list", ListKey(Orders, nil).String())
	assert.NotEqual(t, ListKey(Orders, nil), ListKey(Customers, nil))
}

func TestFetch_Disabled(t *testing.T) {
	cache := newTestCache(newFakeClock())
	var c counter

	res := Fetch(context.Background(), cache, DetailKey(Customers, ""), Options{Enabled: Enabled(false)}, c.fetcher("x"))
	assert.Equal(t, StatusIdle, res.Status)
	assert.False(t, res.HasData)
	assert.Equal(t, int32(0), c.calls.Load())
	assert.Equal(t, 0, cache.Len())
}

func TestFetch_ConcurrentDeduplication(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := ListKey(Customers, url.Values{"page": {"1"}})

	var calls atomic.Int32
	release := make(chan struct{})
	fetcher := func(ctx context.Context) ([]string, error) {
		calls.Add(1)
		<-release
		return []string{"acme"}, nil
	}

	const readers = 10
	var wg sync.WaitGroup
	results := make([]Result[[]string], readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Fetch(context.Background(), cache, key, Options{}, fetcher)
		}(i)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, res := range results {
		assert.Equal(t, StatusSuccess, res.Status)
		assert.Equal(t, []string{"acme"}, res.Data)
	}
}

func TestFetch_StaleTimeWindow(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(clock)
	key := ListKey(Orders, nil)
	var c counter
	ctx := context.Background()

	first := Fetch(ctx, cache, key, Options{}, c.fetcher("orders"))
	require.NoError(t, first.Err)
	assert.False(t, first.FromCache)
	assert.Equal(t, []string{"orders-1"}, first.Data)

	clock.Advance(4*time.Minute + 59*time.Second)
	second := Fetch(ctx, cache, key, Options{}, c.fetcher("orders"))
	assert.True(t, second.FromCache)
	assert.False(t, second.IsStale)
	assert.Equal(t, []string{"orders-1"}, second.Data)
	assert.Equal(t, int32(1), c.calls.Load())

	clock.Advance(2 * time.Second)
	third := Fetch(ctx, cache, key, Options{}, c.fetcher("orders"))
	assert.True(t, third.FromCache)
	assert.True(t, third.IsStale)
	assert.Equal(t, []string{"orders-1"}, third.Data, "stale data is returned immediately")

	// Повторное чтение во время фоновой перезагрузки не запускает вторую
	Fetch(ctx, cache, key, Options{}, c.fetcher("orders"))
	cache.Wait()
	assert.Equal(t, int32(2), c.calls.Load())

	fourth := Fetch(ctx, cache, key, Options{}, c.fetcher("orders"))
	assert.False(t, fourth.IsStale)
	assert.Equal(t, []string{"orders-2"}, fourth.Data)
	assert.Equal(t, int32(2), c.calls.Load())
}

func TestFetch_BackgroundRefetchSurvivesCallerCancel(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(clock)
	key := ListKey(Products, nil)
	var c counter

	Fetch(context.Background(), cache, key, Options{}, c.fetcher("p"))
	clock.Advance(6 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	var sawCancel atomic.Bool
	res := Fetch(ctx, cache, key, Options{}, func(ctx context.Context) ([]string, error) {
		time.Sleep(20 * time.Millisecond)
		sawCancel.Store(ctx.Err() != nil)
		return []string{"p-fresh"}, nil
	})
	cancel()
	assert.True(t, res.IsStale)

	cache.Wait()
	assert.False(t, sawCancel.Load())
	data, ok := Peek[[]string](cache, key)
	assert.True(t, ok)
	assert.Equal(t, []string{"p-fresh"}, data)
}

func TestFetch_InvalidateForcesRefetch(t *testing.T) {
	cache := newTestCache(newFakeClock())
	list := ListKey(Customers, url.Values{"status": {"active"}})
	other := ListKey(Orders, nil)
	var c, o counter
	ctx := context.Background()

	Fetch(ctx, cache, list, Options{}, c.fetcher("customers"))
	Fetch(ctx, cache, other, Options{}, o.fetcher("orders"))

	assert.Equal(t, 1, cache.Invalidate(Customers))

	res := Fetch(ctx, cache, list, Options{}, c.fetcher("customers"))
	assert.False(t, res.FromCache)
	assert.Equal(t, []string{"customers-2"}, res.Data)

	Fetch(ctx, cache, other, Options{}, o.fetcher("orders"))
	assert.Equal(t, int32(1), o.calls.Load(), "other resources stay cached")
}

func TestFetch_InvalidationDuringFetchIsNotOverwritten(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := ListKey(Customers, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Result[[]string])
	go func() {
		done <- Fetch(context.Background(), cache, key, Options{}, func(ctx context.Context) ([]string, error) {
			close(started)
			<-release
			return []string{"before-mutation"}, nil
		})
	}()

	<-started
	cache.Invalidate(Customers)
	close(release)
	res := <-done
	assert.Equal(t, []string{"before-mutation"}, res.Data)

	var c counter
	next := Fetch(context.Background(), cache, key, Options{}, c.fetcher("after"))
	assert.Equal(t, int32(1), c.calls.Load())
	assert.Equal(t, []string{"after-1"}, next.Data)
}

func TestFetch_ReadAfterInvalidateDoesNotJoinEarlierFetch(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := ListKey(Customers, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Result[[]string])
	go func() {
		done <- Fetch(context.Background(), cache, key, Options{}, func(ctx context.Context) ([]string, error) {
			close(started)
			<-release
			return []string{"before-mutation"}, nil
		})
	}()

	<-started
	cache.Invalidate(Customers)

	var c counter
	next := Fetch(context.Background(), cache, key, Options{}, c.fetcher("after"))
	assert.Equal(t, int32(1), c.calls.Load())
	assert.Equal(t, []string{"after-1"}, next.Data)

	close(release)
	first := <-done
	assert.Equal(t, []string{"before-mutation"}, first.Data)

	cached, ok := Peek[[]string](cache, key)
	require.True(t, ok)
	assert.Equal(t, []string{"after-1"}, cached)
}

func TestSet_WriteDuringFetchIsKept(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := DetailKey(Orders, "o1")

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Result[string])
	go func() {
		done <- Fetch(context.Background(), cache, key, Options{}, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "loaded", nil
		})
	}()

	<-started
	cache.Set(key, "written", Options{})
	close(release)
	<-done

	cached, ok := Peek[string](cache, key)
	require.True(t, ok)
	assert.Equal(t, "written", cached)
}

func TestSetEntity_SeedsDetail(t *testing.T) {
	cache := newTestCache(newFakeClock())
	cache.SetEntity(Orders, "o1", "order-o1")

	var calls atomic.Int32
	res := Fetch(context.Background(), cache, DetailKey(Orders, "o1"), Options{}, func(ctx context.Context) (string, error) {
		calls.Add(1)
		return "fetched", nil
	})
	assert.Equal(t, "order-o1", res.Data)
	assert.True(t, res.FromCache)
	assert.Equal(t, int32(0), calls.Load())

	cache.Remove(DetailKey(Orders, "o1"))
	_, ok := Peek[string](cache, DetailKey(Orders, "o1"))
	assert.False(t, ok)
}

func TestFetch_ErrorKeepsPreviousData(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := ListKey(Companies, nil)
	ctx := context.Background()

	Fetch(ctx, cache, key, Options{}, func(ctx context.Context) ([]string, error) {
		return []string{"acme"}, nil
	})
	cache.Invalidate(Companies)

	res := Fetch(ctx, cache, key, Options{}, func(ctx context.Context) ([]string, error) {
		return nil, fmt.Errorf("boom")
	})
	assert.Equal(t, StatusError, res.Status)
	assert.EqualError(t, res.Err, "boom")
	assert.True(t, res.HasData)
	assert.Equal(t, []string{"acme"}, res.Data)

	data, ok := Peek[[]string](cache, key)
	assert.True(t, ok)
	assert.Equal(t, []string{"acme"}, data)
}

func TestFetch_FirstErrorHasNoData(t *testing.T) {
	cache := newTestCache(newFakeClock())
	res := Fetch(context.Background(), cache, ListKey(Categories, nil), Options{}, func(ctx context.Context) ([]string, error) {
		return nil, fmt.Errorf("unreachable")
	})
	assert.Equal(t, StatusError, res.Status)
	assert.False(t, res.HasData)

	var c counter
	next := Fetch(context.Background(), cache, ListKey(Categories, nil), Options{}, c.fetcher("k"))
	assert.Equal(t, StatusSuccess, next.Status)
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestFetch_ExpiredEntryBlocks(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(clock)
	key := ListKey(Users, nil)
	var c counter

	Fetch(context.Background(), cache, key, Options{}, c.fetcher("u"))
	clock.Advance(11 * time.Minute)

	res := Fetch(context.Background(), cache, key, Options{}, c.fetcher("u"))
	assert.False(t, res.FromCache)
	assert.False(t, res.IsStale)
	assert.Equal(t, []string{"u-2"}, res.Data)
}

func TestSweep_RespectsObservers(t *testing.T) {
	clock := newFakeClock()
	cache := newTestCache(clock)
	var c counter
	ctx := context.Background()

	observed := ListKey(Customers, nil)
	unobserved := ListKey(Orders, nil)
	Fetch(ctx, cache, observed, Options{}, c.fetcher("c"))
	Fetch(ctx, cache, unobserved, Options{}, c.fetcher("o"))

	release := cache.Observe(observed)
	clock.Advance(11 * time.Minute)

	assert.Equal(t, 1, cache.Sweep())
	assert.Equal(t, 1, cache.Len())

	release()
	release()
	assert.Equal(t, 0, cache.Sweep(), "gc window restarts when the last observer leaves")

	clock.Advance(11 * time.Minute)
	assert.Equal(t, 1, cache.Sweep())
	assert.Equal(t, 0, cache.Len())
}

func TestStart_SweepsPeriodically(t *testing.T) {
	clock := newFakeClock()
	cache := NewCache(Config{GCTime: time.Minute, SweepInterval: 5 * time.Millisecond, Now: clock.Now})
	var c counter
	Fetch(context.Background(), cache, ListKey(Products, nil), Options{}, c.fetcher("p"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache.Start(ctx)

	clock.Advance(2 * time.Minute)
	assert.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestFetch_TypeMismatch(t *testing.T) {
	cache := newTestCache(newFakeClock())
	key := DetailKey(Products, "p1")
	cache.Set(key, 42, Options{})

	res := Fetch(context.Background(), cache, key, Options{}, func(ctx context.Context) (string, error) {
		return "p1", nil
	})
	assert.False(t, res.HasData)
}

func TestCache_Metrics(t *testing.T) {
	m := metrics.NewMetricsWithRegistry("query_test", prometheus.NewRegistry())
	clock := newFakeClock()
	cache := NewCache(Config{Now: clock.Now, Metrics: m})
	var c counter
	key := ListKey(Customers, nil)

	Fetch(context.Background(), cache, key, Options{}, c.fetcher("c"))
	Fetch(context.Background(), cache, key, Options{}, c.fetcher("c"))
	cache.Invalidate(Customers)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvents.WithLabelValues("customers", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvents.WithLabelValues("customers", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEvents.WithLabelValues("customers", "invalidate")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight.WithLabelValues("customers")))
}
