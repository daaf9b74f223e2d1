package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/services/admin-cli/internal/api"
	"AdminPanelPlatform/services/admin-cli/internal/auth"
	"AdminPanelPlatform/services/admin-cli/internal/mockapi"
	"AdminPanelPlatform/services/admin-cli/internal/notify"
	"AdminPanelPlatform/services/admin-cli/internal/query"
	"AdminPanelPlatform/services/admin-cli/internal/service"
	"AdminPanelPlatform/services/admin-cli/internal/session"
	"AdminPanelPlatform/services/admin-cli/internal/store"
)

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

type harness struct {
	mock    *mockapi.Server
	server  *httptest.Server
	storage *store.MemoryStorage
	flow    *auth.Flow
	bus     *notify.Bus
	cache   *query.Cache
	nav     *recordingNavigator
	svc     *service.Services
}

func newHarness(t *testing.T, seed bool) *harness {
	t.Helper()

	mock, err := mockapi.NewServer(mockapi.Config{Seed: seed}, nil)
	require.NoError(t, err)
	server := httptest.NewServer(mock)
	t.Cleanup(server.Close)

	log := logger.NewNop()
	bus := notify.NewBus(log, notify.WithDefaultDuration(time.Minute))
	t.Cleanup(bus.Close)

	client := api.NewClient(api.ClientConfig{BaseURL: server.URL, Timeout: 5 * time.Second}, nil, log, nil)
	storage := store.NewMemoryStorage()
	nav := &recordingNavigator{}
	flow := auth.NewFlow(client, session.NewStore(storage, log), bus, nav, log, nil)
	client.SetTokenSource(flow)

	cache := query.NewCache(query.Config{Logger: log})
	t.Cleanup(cache.Wait)

	return &harness{
		mock:    mock,
		server:  server,
		storage: storage,
		flow:    flow,
		bus:     bus,
		cache:   cache,
		nav:     nav,
		svc:     service.New(service.Deps{API: client, Cache: cache, Bus: bus, Log: log}),
	}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	require.NoError(t, h.flow.Login(context.Background(), auth.LoginInput{
		Email:    mockapi.DefaultEmail,
		Password: mockapi.DefaultPassword,
	}))
}

func (h *harness) messages(kind notify.Kind) []string {
	var out []string
	for _, n := range h.bus.List() {
		if n.Kind == kind {
			out = append(out, n.Message)
		}
	}
	return out
}

func acmeStore() api.CustomerInput {
	return api.CustomerInput{
		ShopName:   "Acme Store",
		OwnerName:  "Wile Coyote",
		OwnerPhone: "9000000001",
		Address:    "1 Desert Road",
		Area:       "Mesa",
		City:       "Phoenix",
		State:      "Arizona",
		Pincode:    "850001",
	}
}

func shopNames(page *api.Page[api.Customer]) []string {
	names := make([]string, 0, len(page.Items))
	for _, c := range page.Items {
		names = append(names, c.ShopName)
	}
	return names
}

func TestLoginScenario(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)

	assert.Equal(t, auth.PhaseAuthenticated, h.flow.Phase())
	assert.Equal(t, auth.RouteDashboard, h.nav.last())
	assert.Equal(t, []string{auth.MessageLoginSuccess}, h.messages(notify.KindSuccess))

	state := h.flow.Session().Snapshot()
	assert.True(t, state.IsAuthenticated)
	require.NotNil(t, state.User)
	assert.Equal(t, mockapi.DefaultEmail, state.User.Email)

	access, ok, err := h.storage.Get(context.Background(), store.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, state.AccessToken, access)

	me := h.svc.Users.Me(context.Background())
	require.NoError(t, me.Err)
	assert.Equal(t, mockapi.DefaultEmail, me.Data.Email)
}

func TestCreateCustomerInvalidatesList(t *testing.T) {
	h := newHarness(t, true)
	h.login(t)
	ctx := context.Background()

	before := h.svc.Customers.List(ctx, api.CustomerListParams{})
	require.NoError(t, before.Err)
	assert.NotContains(t, shopNames(before.Data), "Acme Store")

	// Свежий список отдается из кеша
	cached := h.svc.Customers.List(ctx, api.CustomerListParams{})
	assert.True(t, cached.FromCache)
	assert.Equal(t, 1, h.mock.Requests(http.MethodGet, "/customers"))

	created, err := h.svc.Customers.Create(ctx, acmeStore())
	require.NoError(t, err)
	assert.Contains(t, h.messages(notify.KindSuccess), "Customer created successfully")

	after := h.svc.Customers.List(ctx, api.CustomerListParams{})
	require.NoError(t, after.Err)
	assert.Contains(t, shopNames(after.Data), "Acme Store")
	assert.Equal(t, 2, h.mock.Requests(http.MethodGet, "/customers"))

	// Карточка клиента заполнена результатом мутации без запроса
	detail := h.svc.Customers.Get(ctx, created.ID)
	require.NoError(t, detail.Err)
	assert.True(t, detail.FromCache)
	assert.Equal(t, "Acme Store", detail.Data.ShopName)
	assert.Equal(t, 0, h.mock.Requests(http.MethodGet, "/customers/"+created.ID))
}

func TestUpdateStatusSeedsDetail(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)
	ctx := context.Background()

	created, err := h.svc.Customers.Create(ctx, acmeStore())
	require.NoError(t, err)

	_, err = h.svc.Customers.UpdateStatus(ctx, created.ID, api.CustomerInactive)
	require.NoError(t, err)
	assert.Contains(t, h.messages(notify.KindSuccess), "Customer status updated successfully")

	detail := h.svc.Customers.Get(ctx, created.ID)
	require.NoError(t, detail.Err)
	assert.Equal(t, api.CustomerInactive, detail.Data.Status)
	assert.Equal(t, 0, h.mock.Requests(http.MethodGet, "/customers/"+created.ID))
}

func TestOrderDeleteRestoreRoundTrip(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)
	ctx := context.Background()

	order, err := h.svc.Orders.Create(ctx, api.OrderInput{
		CustomerName:    "Acme Store",
		CustomerAddress: "1 Desert Road",
		OrderItems:      []api.OrderItem{{Name: "Rocket skates"}},
	})
	require.NoError(t, err)

	require.NoError(t, h.svc.Orders.Delete(ctx, order.ID))
	assert.Contains(t, h.messages(notify.KindSuccess), "Order deleted successfully")

	list := h.svc.Orders.List(ctx, api.OrderListParams{})
	require.NoError(t, list.Err)
	assert.Empty(t, list.Data.Items)

	detail := h.svc.Orders.Get(ctx, order.ID)
	require.Error(t, detail.Err)
	assert.Equal(t, http.StatusNotFound, errors.StatusOf(detail.Err))

	restored, err := h.svc.Orders.Restore(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, *order, *restored)

	list = h.svc.Orders.List(ctx, api.OrderListParams{})
	require.NoError(t, list.Err)
	require.Len(t, list.Data.Items, 1)
	assert.Equal(t, *order, list.Data.Items[0])

	detail = h.svc.Orders.Get(ctx, order.ID)
	require.NoError(t, detail.Err)
	assert.Equal(t, *order, *detail.Data)
}

func TestEquivalentQueriesAreDeduplicated(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids := []string{"c1", "c2"}
			if i%2 == 1 {
				ids = []string{"c2", "c1"}
			}
			res := h.svc.Products.List(ctx, api.ProductListParams{CompanyIDs: ids})
			assert.NoError(t, res.Err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, h.mock.Requests(http.MethodGet, "/products"))
}

func TestExpiredAccessTokenIsRefreshedOnce(t *testing.T) {
	h := newHarness(t, true)
	h.login(t)
	ctx := context.Background()
	tokenBefore := h.flow.AccessToken()

	h.mock.FailNext(http.MethodGet, "/customers", http.StatusUnauthorized, "Token expired")
	res := h.svc.Customers.List(ctx, api.CustomerListParams{})
	require.NoError(t, res.Err)
	assert.Len(t, res.Data.Items, 2)

	assert.Equal(t, 2, h.mock.Requests(http.MethodGet, "/customers"))
	assert.Equal(t, 1, h.mock.Requests(http.MethodPost, "/auth/refresh"))
	assert.NotEqual(t, tokenBefore, h.flow.AccessToken())
	assert.Equal(t, auth.PhaseAuthenticated, h.flow.Phase())
}

func TestRefreshFailureLogsOut(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)
	ctx := context.Background()

	h.mock.RevokeAllSessions()
	h.mock.FailNext(http.MethodPost, "/customers", http.StatusUnauthorized, "Token expired")

	_, err := h.svc.Customers.Create(ctx, acmeStore())
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))

	assert.Equal(t, auth.PhaseAnonymous, h.flow.Phase())
	assert.Equal(t, auth.RouteLogin, h.nav.last())
	// Уведомление о завершении сессии публикует Auth Flow, мутация свое не добавляет
	assert.Equal(t, []string{auth.MessageSessionExpired}, h.messages(notify.KindError))

	_, ok, err := h.storage.Get(ctx, store.KeyRefreshToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidationBlocksRequest(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)
	ctx := context.Background()
	before := h.mock.TotalRequests()

	input := acmeStore()
	input.ShopName = ""
	input.Pincode = "abc"
	_, err := h.svc.Customers.Create(ctx, input)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "shopName")
	assert.Contains(t, appErr.Fields, "pincode")

	_, err = h.svc.Products.Create(ctx, api.ProductInput{Name: "Tea", CompanyID: "c", CategoryID: "k"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	_, err = h.svc.Companies.Create(ctx, api.NamedInput{})
	assert.True(t, errors.IsValidation(err))

	assert.Equal(t, before, h.mock.TotalRequests())
	assert.Empty(t, h.messages(notify.KindError))
}

func TestServerErrorIsNotified(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)
	ctx := context.Background()

	h.mock.FailNext(http.MethodPost, "/customers", http.StatusConflict, "Customer with this phone already exists")
	_, err := h.svc.Customers.Create(ctx, acmeStore())
	require.Error(t, err)
	assert.True(t, errors.IsAPI(err))
	assert.Equal(t, []string{"Customer with this phone already exists"}, h.messages(notify.KindError))
}

func TestNetworkErrorUsesGenericMessage(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)
	ctx := context.Background()

	h.server.Close()
	_, err := h.svc.Companies.Create(ctx, api.NamedInput{Name: "Acme"})
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))
	assert.Equal(t, []string{"Failed to create company"}, h.messages(notify.KindError))
}

func TestGetWithoutIDIsIdle(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)
	before := h.mock.TotalRequests()

	res := h.svc.Products.Get(context.Background(), "")
	assert.Equal(t, query.StatusIdle, res.Status)
	assert.False(t, res.HasData)
	assert.Equal(t, before, h.mock.TotalRequests())
}

func TestCatalogLifecycle(t *testing.T) {
	h := newHarness(t, false)
	h.login(t)
	ctx := context.Background()

	company, err := h.svc.Companies.Create(ctx, api.NamedInput{Name: "Acme"})
	require.NoError(t, err)
	category, err := h.svc.Categories.Create(ctx, api.NamedInput{Name: "Gadgets"})
	require.NoError(t, err)

	product, err := h.svc.Products.Create(ctx, api.ProductInput{
		Name:       "Anvil",
		CompanyID:  company.ID,
		CategoryID: category.ID,
		Variants:   []api.ProductVariant{{Name: "50kg", MRP: 999}},
	})
	require.NoError(t, err)

	products := h.svc.Products.List(ctx, api.ProductListParams{CompanyIDs: []string{company.ID}})
	require.NoError(t, products.Err)
	require.Len(t, products.Data.Items, 1)
	assert.Equal(t, product.ID, products.Data.Items[0].ID)

	require.NoError(t, h.svc.Categories.Delete(ctx, category.ID))
	categories := h.svc.Categories.List(ctx)
	require.NoError(t, categories.Err)
	assert.Empty(t, categories.Data)

	_, err = h.svc.Categories.Restore(ctx, category.ID)
	require.NoError(t, err)
	categories = h.svc.Categories.List(ctx)
	require.NoError(t, categories.Err)
	assert.Len(t, categories.Data, 1)

	renamed, err := h.svc.Companies.Update(ctx, company.ID, api.NamedInput{Name: "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", renamed.Name)
	companies := h.svc.Companies.List(ctx)
	require.NoError(t, companies.Err)
	require.Len(t, companies.Data, 1)
	assert.Equal(t, "Acme Corp", companies.Data[0].Name)
}
