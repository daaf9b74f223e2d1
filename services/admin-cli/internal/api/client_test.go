package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AdminPanelPlatform/pkg/errors"
	"AdminPanelPlatform/pkg/logger"
	"AdminPanelPlatform/pkg/metrics"
)

type fakeTokens struct {
	token      atomic.Value
	refreshes  atomic.Int32
	refreshTo  string
	refreshErr error
}

func newFakeTokens(token string) *fakeTokens {
	f := &fakeTokens{}
	f.token.Store(token)
	return f
}

func (f *fakeTokens) AccessToken() string { return f.token.Load().(string) }

func (f *fakeTokens) Refresh(ctx context.Context) error {
	f.refreshes.Add(1)
	if f.refreshErr != nil {
		return f.refreshErr
	}
	f.token.Store(f.refreshTo)
	return nil
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": success, "data": data, "message": message})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.NewMetricsWithRegistry("api_test", prometheus.NewRegistry())
	log, err := logger.NewLogger("test", "debug", "admin-cli")
	require.NoError(t, err)
	return NewClient(ClientConfig{BaseURL: server.URL, Timeout: 2 * time.Second}, tokens, log, m)
}

func TestClient_AttachesBearerExceptAuthEndpoints(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path+"|"+r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		writeEnvelope(w, http.StatusOK, true, map[string]string{"id": "1"}, "")
	}, newFakeTokens("access-1"))

	ctx := context.Background()
	_, err := client.GetCustomer(ctx, "1")
	require.NoError(t, err)
	_, err = client.Login(ctx, LoginRequest{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	_, err = client.Refresh(ctx, "refresh")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/v1/customers/1|Bearer access-1",
		"/api/v1/auth/login|",
		"/api/v1/auth/refresh|",
	}, seen)
}

func TestClient_RefreshesOnceAndRetries(t *testing.T) {
	var calls atomic.Int32
	tokens := newFakeTokens("expired")
	tokens.refreshTo = "fresh"

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeEnvelope(w, http.StatusUnauthorized, false, nil, "token expired")
			return
		}
		writeEnvelope(w, http.StatusOK, true, Customer{ID: "c1", ShopName: "Acme Store"}, "")
	}, tokens)

	customer, err := client.GetCustomer(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Store", customer.ShopName)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), tokens.refreshes.Load())
}

func TestClient_SecondUnauthorizedDoesNotLoop(t *testing.T) {
	var calls atomic.Int32
	tokens := newFakeTokens("expired")
	tokens.refreshTo = "still-bad"

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "token expired")
	}, tokens)

	_, err := client.ListCustomers(context.Background(), CustomerListParams{})
	require.Error(t, err)
	assert.True(t, errors.IsAPI(err))
	assert.Equal(t, http.StatusUnauthorized, errors.StatusOf(err))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, int32(1), tokens.refreshes.Load())
}

func TestClient_RefreshFailureIsAuthError(t *testing.T) {
	var calls atomic.Int32
	tokens := newFakeTokens("expired")
	tokens.refreshErr = fmt.Errorf("refresh rejected")

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "token expired")
	}, tokens)

	err := client.DeleteOrder(context.Background(), "o1")
	require.Error(t, err)
	assert.True(t, errors.IsAuth(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_AuthEndpointsSkipRefresh(t *testing.T) {
	tokens := newFakeTokens("expired")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, nil, "Invalid credentials")
	}, tokens)

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "bad"})
	require.Error(t, err)
	assert.True(t, errors.IsAPI(err))
	assert.Equal(t, "Invalid credentials", errors.UserMessage(err))

	_, err = client.Me(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(0), tokens.refreshes.Load())
}

func TestClient_NonSuccessResponses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/customers/missing":
			writeEnvelope(w, http.StatusNotFound, false, nil, "Customer not found")
		case "/api/v1/orders/plain":
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		default:
			writeEnvelope(w, http.StatusOK, false, nil, "Pincode is invalid")
		}
	}, newFakeTokens("t"))

	ctx := context.Background()

	_, err := client.GetCustomer(ctx, "missing")
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrAPI, appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Customer not found", appErr.Message)
	assert.NotEmpty(t, appErr.Payload)

	_, err = client.GetOrder(ctx, "plain")
	appErr, ok = errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, "Bad Gateway", appErr.Message)
	assert.JSONEq(t, `"upstream down"`, string(appErr.Payload))

	_, err = client.CreateCustomer(ctx, CustomerInput{ShopName: "x"})
	appErr, ok = errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrAPI, appErr.Code)
	assert.Equal(t, http.StatusOK, appErr.Status)
	assert.Equal(t, "Pincode is invalid", appErr.Message)
}

func TestClient_NetworkErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := NewClient(ClientConfig{BaseURL: baseURL}, nil, logger.NewNop(), nil)
	_, err := client.ListCompanies(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))
	assert.Equal(t, "Network error, please check your connection", errors.UserMessage(err))
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(ClientConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, nil, nil, nil)
	assert.Equal(t, 50*time.Millisecond, client.Timeout())

	_, err := client.ListCategories(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))
}

func TestClient_QueryArraysAsRepeatedKeys(t *testing.T) {
	var query map[string][]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeEnvelope(w, http.StatusOK, true, Page[Product]{Items: []Product{}, Total: 0, Page: 2, Limit: 10}, "")
	}, newFakeTokens("t"))

	min := 10.5
	outOfStock := false
	page, err := client.ListProducts(context.Background(), ProductListParams{
		ListParams:  ListParams{Page: 2, Limit: 10, SortBy: "name", SortOrder: SortAsc, Search: "soap"},
		CompanyIDs:  []string{"c1", "c2"},
		CategoryIDs: []string{"k1"},
		MinPrice:    &min,
		OutOfStock:  &outOfStock,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)

	assert.Equal(t, []string{"c1", "c2"}, query["companyId"])
	assert.Equal(t, []string{"k1"}, query["categoryId"])
	assert.Equal(t, []string{"10.5"}, query["minPrice"])
	assert.Equal(t, []string{"false"}, query["outOfStock"])
	assert.Equal(t, []string{"soap"}, query["search"])
	assert.Equal(t, []string{"asc"}, query["sortOrder"])
	assert.NotContains(t, query, "maxPrice")
}

func TestClient_RestoreUsesPatch(t *testing.T) {
	var method, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		writeEnvelope(w, http.StatusOK, true, Category{ID: "k1", Name: "Soaps"}, "")
	}, newFakeTokens("t"))

	category, err := client.RestoreCategory(context.Background(), "k1")
	require.NoError(t, err)
	assert.Equal(t, "Soaps", category.Name)
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/api/v1/categories/k1/restore", path)
}

func TestOrderListParams_Values(t *testing.T) {
	params := OrderListParams{
		Status:   OrderShipped,
		DateFrom: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
	}
	values := params.Values()
	assert.Equal(t, "shipped", values.Get("status"))
	assert.Equal(t, "2024-01-02", values.Get("dateFrom"))
	assert.Empty(t, values.Get("dateTo"))
	assert.Empty(t, values.Get("page"))
}

func TestProduct_MinPrice(t *testing.T) {
	p := Product{Variants: []ProductVariant{{MRP: 30}, {MRP: 12.5}, {MRP: 20}}}
	assert.Equal(t, 12.5, p.MinPrice())
	assert.Equal(t, 0.0, Product{}.MinPrice())
}
