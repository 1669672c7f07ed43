package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-importa/internal/app"
	"github.com/noah-isme/backend-importa/internal/db/dbtest"
	"github.com/noah-isme/backend-importa/internal/fx"
	"github.com/noah-isme/backend-importa/internal/money"
	"github.com/noah-isme/backend-importa/internal/ratelimit"
)

type harness struct {
	t      *testing.T
	router http.Handler
	store  *dbtest.Fake
}

func newHarness(t *testing.T, opts app.Options) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := dbtest.New()
	rates := fx.NewProvider(fx.ProviderConfig{Source: fx.StaticSource{Rate: money.MustParse("5.30")}})
	a, err := app.New(app.Dependencies{Store: store, Redis: client, Rates: rates, Logger: zerolog.Nop()}, opts)
	require.NoError(t, err)

	r := chi.NewRouter()
	a.Routes(r)
	return &harness{t: t, router: r, store: store}
}

func (h *harness) do(method, path string, body any, headers ...string) (int, map[string]any, http.Header) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	var out map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	}
	return rr.Code, out, rr.Header()
}

func data(m map[string]any) map[string]any {
	return m["data"].(map[string]any)
}

func TestImportFlowOverHTTP(t *testing.T) {
	h := newHarness(t, app.Options{IdempotencyTTL: time.Hour, BodyLimitBytes: 1 << 16})

	code, body, _ := h.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Perfumes"})
	require.Equal(t, http.StatusCreated, code, body)
	categoryID := data(body)["id"].(string)

	code, body, _ = h.do(http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Sauvage", "brand": "Dior", "categoryId": categoryID, "foreignCost": "10.00", "stock": 5,
	})
	require.Equal(t, http.StatusCreated, code, body)
	productID := data(body)["id"].(string)

	code, body, _ = h.do(http.MethodPost, "/api/v1/customers", map[string]any{
		"fullName": "Ana Souza", "phone": "555-0101", "address": "Rua A, 1",
	})
	require.Equal(t, http.StatusCreated, code, body)
	customerID := data(body)["id"].(string)

	orderReq := map[string]any{
		"customerId":    customerID,
		"paymentMethod": "one_time",
		"paymentStatus": "paid",
		"serviceFee":    "10.00",
		"lines":         []map[string]any{{"productId": productID, "quantity": 2, "unitMargin": "15.00"}},
	}
	code, body, _ = h.do(http.MethodPost, "/api/v1/orders", orderReq, "Idempotency-Key", "order-1")
	require.Equal(t, http.StatusCreated, code, body)
	created := data(body)
	require.Equal(t, "159.06", created["totalRevenue"])
	require.Equal(t, "40.00", created["totalProfit"])
	require.Equal(t, "open", created["status"])
	line := created["lines"].([]any)[0].(map[string]any)
	require.Equal(t, "5.59", line["exchangeRate"])
	require.Equal(t, "59.53", line["unitCost"])

	code, replay, headers := h.do(http.MethodPost, "/api/v1/orders", orderReq, "Idempotency-Key", "order-1")
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, "true", headers.Get("Idempotent-Replayed"))
	require.Equal(t, created["id"], data(replay)["id"])
	require.Equal(t, 1, h.store.Calls("CreateOrder"))

	code, body, _ = h.do(http.MethodGet, "/api/v1/products/"+productID, nil)
	require.Equal(t, http.StatusOK, code)
	require.EqualValues(t, 3, data(body)["stock"])

	code, body, _ = h.do(http.MethodGet, "/api/v1/customers/"+customerID+"/total-spent", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "0.00", data(body)["totalSpent"])

	code, body, _ = h.do(http.MethodPatch, "/api/v1/orders/"+created["id"].(string)+"/status", map[string]any{"deliveryStatus": "delivered"})
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, "closed", data(body)["status"])

	code, body, _ = h.do(http.MethodGet, "/api/v1/customers/"+customerID+"/total-spent", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "159.06", data(body)["totalSpent"])

	code, body, _ = h.do(http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, code)
	summary := data(body)
	require.Equal(t, "159.06", summary["totalRevenue"])
	require.Equal(t, "40.00", summary["totalProfit"])
	require.Equal(t, "5.59", summary["currentAdjustedRate"])
	require.EqualValues(t, 0, summary["openOrdersCount"])

	code, body, _ = h.do(http.MethodGet, "/api/v1/fx/rate", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "5.59", data(body)["adjustedRate"])

	code, body, _ = h.do(http.MethodGet, "/api/v1/events?topic=order.status_changed", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, body["data"].([]any), 1)
}

func TestOrderShortageLeavesNoTrace(t *testing.T) {
	h := newHarness(t, app.Options{})

	_, body, _ := h.do(http.MethodPost, "/api/v1/products", map[string]any{"name": "Kit", "brand": "Acme", "foreignCost": "1.00", "stock": 1})
	productID := data(body)["id"].(string)
	_, body, _ = h.do(http.MethodPost, "/api/v1/customers", map[string]any{"fullName": "Bia", "phone": "1", "address": "x"})
	customerID := data(body)["id"].(string)

	code, body, _ := h.do(http.MethodPost, "/api/v1/orders", map[string]any{
		"customerId":    customerID,
		"paymentMethod": "one_time",
		"paymentStatus": "unpaid",
		"lines":         []map[string]any{{"productId": productID, "quantity": 4, "unitMargin": "0"}},
	})
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "INSUFFICIENT_STOCK", body["error"].(map[string]any)["code"])

	code, body, _ = h.do(http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, body["data"])
}

func TestOrderWritesAreRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := newHarness(t, app.Options{
		OrderLimiter:   ratelimit.SlidingWindow{Client: client, Prefix: "rl:"},
		OrderRateLimit: ratelimit.Config{Key: ratelimit.ByClientIP("orders:"), Window: time.Minute, Max: 1},
	})

	code, _, _ := h.do(http.MethodPost, "/api/v1/orders", map[string]any{})
	require.Equal(t, http.StatusBadRequest, code)
	code, body, _ := h.do(http.MethodPost, "/api/v1/orders", map[string]any{})
	require.Equal(t, http.StatusTooManyRequests, code)
	require.Equal(t, ratelimit.CodeRateLimited, body["error"].(map[string]any)["code"])

	code, _, _ = h.do(http.MethodGet, "/api/v1/orders", nil)
	require.Equal(t, http.StatusOK, code)
}

func TestNewRequiresStoreAndRates(t *testing.T) {
	_, err := app.New(app.Dependencies{}, app.Options{})
	require.Error(t, err)
	_, err = app.New(app.Dependencies{Store: dbtest.New()}, app.Options{})
	require.Error(t, err)
}
