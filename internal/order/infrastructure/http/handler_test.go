package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storelab/checkout/internal/catalog"
	catalogmem "github.com/storelab/checkout/internal/catalog/memory"
	invapp "github.com/storelab/checkout/internal/inventory/application"
	invmem "github.com/storelab/checkout/internal/inventory/infrastructure/memory"
	"github.com/storelab/checkout/internal/order/application"
	ordermem "github.com/storelab/checkout/internal/order/infrastructure/memory"
	"github.com/storelab/checkout/pkg/metrics"
)

type testEnv struct {
	srv     *httptest.Server
	stock   *invmem.Repository
	catalog *catalogmem.Catalog
}

func newTestServer(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mx := metrics.NewCheckout(prometheus.NewRegistry())

	stock := invmem.NewRepository()
	ledger := invapp.NewLedger(log, stock, mx)
	lookup := catalogmem.NewCatalog()
	svc := application.NewService(log, ordermem.NewStore(), ledger, lookup, mx)
	h := NewHandler(log, svc, ledger)

	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, stock: stock, catalog: lookup}
}

func (e *testEnv) seed(id, price string, stock int) {
	e.catalog.Put(catalog.Product{ID: id, Name: id, Price: decimal.RequireFromString(price), Stock: stock})
	e.stock.Seed(id, stock)
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func createReq(productID string, qty int) map[string]any {
	return map[string]any{
		"items":           []map[string]any{{"productId": productID, "quantity": qty}},
		"shippingAddress": "12 Main St",
		"paymentMethod":   "card",
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	e := newTestServer(t)
	e.seed("p1", "19.99", 5)

	resp, body := e.do(t, http.MethodPost, "/orders", "u1", createReq("p1", 3))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, "59.97", body["totalAmount"])
	assert.NotEmpty(t, body["id"])

	resp, stock := e.do(t, http.MethodGet, "/products/p1/stock", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, stock["stock"])
}

func TestCreateOrderRequiresIdentity(t *testing.T) {
	e := newTestServer(t)
	resp, body := e.do(t, http.MethodPost, "/orders", "", createReq("p1", 1))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing_caller_identity", errorCode(body))
}

func TestCreateOrderEmptyCartEndpoint(t *testing.T) {
	e := newTestServer(t)
	resp, body := e.do(t, http.MethodPost, "/orders", "u1", map[string]any{
		"items": []map[string]any{}, "shippingAddress": "a", "paymentMethod": "card",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "empty_cart", errorCode(body))
}

func TestCreateOrderInsufficientStockEndpoint(t *testing.T) {
	e := newTestServer(t)
	e.seed("p1", "10.00", 1)

	resp, body := e.do(t, http.MethodPost, "/orders", "u1", createReq("p1", 2))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "insufficient_stock", errorCode(body))
	errBody := body["error"].(map[string]any)
	assert.EqualValues(t, 2, errBody["requested"])
	assert.EqualValues(t, 1, errBody["available"])
}

func TestGetOrderEndpoint(t *testing.T) {
	e := newTestServer(t)
	e.seed("p1", "10.00", 5)

	_, created := e.do(t, http.MethodPost, "/orders", "u1", createReq("p1", 1))
	id := created["id"].(string)

	resp, body := e.do(t, http.MethodGet, "/orders/"+id, "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["id"])

	resp, body = e.do(t, http.MethodGet, "/orders/unknown", "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "order_not_found", errorCode(body))
}

func TestListOrdersEndpoint(t *testing.T) {
	e := newTestServer(t)
	e.seed("p1", "10.00", 10)
	e.do(t, http.MethodPost, "/orders", "u1", createReq("p1", 1))
	e.do(t, http.MethodPost, "/orders", "u1", createReq("p1", 2))
	e.do(t, http.MethodPost, "/orders", "u2", createReq("p1", 1))

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/orders?userId=u1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out, 2)
}

func TestStatusTransitionEndpoint(t *testing.T) {
	e := newTestServer(t)
	e.seed("p1", "10.00", 5)
	_, created := e.do(t, http.MethodPost, "/orders", "u1", createReq("p1", 2))
	id := created["id"].(string)

	for _, status := range []string{"processing", "shipped", "delivered"} {
		resp, body := e.do(t, http.MethodPut, fmt.Sprintf("/orders/%s/status", id), "u1",
			map[string]any{"status": status})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, status, body["status"])
	}

	// Delivered is terminal.
	resp, body := e.do(t, http.MethodPut, fmt.Sprintf("/orders/%s/status", id), "u1",
		map[string]any{"status": "cancelled"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "invalid_transition", errorCode(body))
}

func TestStatusTransitionUnknownLiteral(t *testing.T) {
	e := newTestServer(t)
	resp, body := e.do(t, http.MethodPut, "/orders/whatever/status", "u1",
		map[string]any{"status": "refunded"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "unknown_status", errorCode(body))
}

// The dedup middleware guards order creation only; reads must never bounce
// on a reused key.
func TestCreateMiddlewareScopedToCreate(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mx := metrics.NewCheckout(prometheus.NewRegistry())

	stock := invmem.NewRepository()
	ledger := invapp.NewLedger(log, stock, mx)
	svc := application.NewService(log, ordermem.NewStore(), ledger, catalogmem.NewCatalog(), mx)
	h := NewHandler(log, svc, ledger)

	rejectAll := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})
	}
	srv := httptest.NewServer(h.Routes(rejectAll))
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+"/orders", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/orders?userId=u1")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCancelEndpointRestoresStock(t *testing.T) {
	e := newTestServer(t)
	e.seed("p1", "10.00", 2)
	_, created := e.do(t, http.MethodPost, "/orders", "u1", createReq("p1", 2))
	id := created["id"].(string)

	_, stock := e.do(t, http.MethodGet, "/products/p1/stock", "", nil)
	require.EqualValues(t, 0, stock["stock"])

	resp, _ := e.do(t, http.MethodPut, fmt.Sprintf("/orders/%s/status", id), "u1",
		map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, stock = e.do(t, http.MethodGet, "/products/p1/stock", "", nil)
	assert.EqualValues(t, 2, stock["stock"])
}
