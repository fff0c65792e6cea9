package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/rentledger/backend/internal/application/billing"
	expenseapp "github.com/rentledger/backend/internal/application/expense"
	invoicingapp "github.com/rentledger/backend/internal/application/invoicing"
	meteringapp "github.com/rentledger/backend/internal/application/metering"
	occupancyapp "github.com/rentledger/backend/internal/application/occupancy"
	paymentapp "github.com/rentledger/backend/internal/application/payment"
	propertyapp "github.com/rentledger/backend/internal/application/property"
	reportapp "github.com/rentledger/backend/internal/application/report"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/cache"
	"github.com/rentledger/backend/internal/infrastructure/persistence"
	"github.com/rentledger/backend/internal/interfaces/http/handler"
	"github.com/rentledger/backend/internal/interfaces/http/middleware"
	"github.com/rentledger/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...shared.DomainEvent) error { return nil }

func newTestEngine(t *testing.T, cfg EngineConfig) *testutil.APIClient {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	repos := persistence.NewGormRepositories(db)
	pub := nopPublisher{}
	log := zap.NewNop()

	idem := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = idem.Close() })

	tenants := occupancyapp.NewTenantService(scope, repos, pub, log)
	invoices := invoicingapp.NewInvoiceService(scope, repos, pub, log, invoicingapp.Config{Prefix: "INV"})
	handlers := Handlers{
		Property: handler.NewPropertyHandler(propertyapp.NewPropertyService(scope, repos, pub, log), tenants),
		Tenant:   handler.NewTenantHandler(tenants),
		Reading:  handler.NewReadingHandler(meteringapp.NewReadingService(scope, repos, pub, log)),
		Billing:  handler.NewBillingHandler(billingapp.NewBillingService(scope, repos, pub, log, invoices, true)),
		Invoice:  handler.NewInvoiceHandler(invoices),
		Payment:  handler.NewPaymentHandler(paymentapp.NewPaymentService(scope, repos, pub, log, idem, time.Hour)),
		Expense:  handler.NewExpenseHandler(expenseapp.NewExpenseService(repos, log)),
		Report:   handler.NewReportHandler(reportapp.NewReportService(repos, log)),
	}
	system := handler.NewSystemHandler("rentledger", "test", map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})
	return testutil.NewAPIClient(t, NewEngine(cfg, log, handlers, system))
}

func defaultEngineConfig() EngineConfig {
	return EngineConfig{
		CORS:           middleware.DefaultCORSConfig(),
		Security:       middleware.DefaultSecurityConfig(),
		MaxBodySize:    1 << 20,
		RequestTimeout: 5 * time.Second,
		Swagger:        middleware.SwaggerConfig{Enabled: false},
	}
}

// seed creates a fixed-water property with one tenant on unit G1
func seed(t *testing.T, api *testutil.APIClient) (propertyID, tenantID string) {
	t.Helper()
	code, env, _ := api.Do(http.MethodPost, "/api/v1/properties", map[string]any{
		"name":            "Garden Estate",
		"payment_details": map[string]any{"bank": "KCB", "deadline_day": 5},
		"utilities":       map[string]any{"water_method": "Fixed", "water_rate": 500, "garbage_fee": 500},
		"unit_types": []map[string]any{
			{"type": "2BR", "rent": 9000, "deposit": 18000, "unit_ids": []string{"G1", "G2"}},
		},
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	propertyID = testutil.Decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID

	code, env, _ = api.Do(http.MethodPost, "/api/v1/tenants", map[string]any{
		"property_id": propertyID,
		"unit_id":     "G1",
		"name":        "Amina",
		"phone":       "+254700000001",
		"lease_start": "2025-06-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	tenantID = testutil.Decode[struct {
		ID string `json:"id"`
	}](t, env.Data).ID
	return propertyID, tenantID
}

func TestEngine_BillingAndPaymentFlow(t *testing.T) {
	api := newTestEngine(t, defaultEngineConfig())
	propertyID, tenantID := seed(t, api)

	code, env, _ := api.Do(http.MethodGet, "/api/v1/properties/"+propertyID+"/units?status=vacant", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, testutil.Decode[[]map[string]any](t, env.Data), 1)

	// first generation creates the bill and its invoice
	code, env, _ = api.Do(http.MethodPost, "/api/v1/billing/generate/"+propertyID, map[string]string{"period": "2025-06"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	generated := testutil.Decode[billingapp.GenerateBillsResponse](t, env.Data)
	assert.True(t, generated.Created)
	assert.Equal(t, 1, generated.InvoicesIssued)
	require.Len(t, generated.Bills, 1)
	assert.Equal(t, "10000", generated.Bills[0].TotalDue.String())

	code, env, _ = api.Do(http.MethodPost, "/api/v1/billing/generate/"+propertyID, map[string]string{"period": "2025-06"})
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, testutil.Decode[billingapp.GenerateBillsResponse](t, env.Data).Created)

	code, env, _ = api.Do(http.MethodPost, "/api/v1/billing/generate/"+propertyID+"?strict=true", map[string]string{"period": "2025-06"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, shared.CodePeriodAlreadyBilled, env.Error.Code)

	// a retried payment with the same key is refused
	payment := map[string]any{"tenant_id": tenantID, "period": "2025-06", "amount": 4000, "method": "mpesa", "reference": "QX1"}
	code, env, _ = api.Do(http.MethodPost, "/api/v1/properties/"+propertyID+"/payments", payment, handler.IdempotencyKeyHeader, "pay-1")
	require.Equal(t, http.StatusCreated, code, env.Error)
	recorded := testutil.Decode[paymentapp.RecordPaymentResponse](t, env.Data)
	require.NotNil(t, recorded.Applied)
	assert.Equal(t, "6000", recorded.Applied.Balance.String())

	code, env, _ = api.Do(http.MethodPost, "/api/v1/properties/"+propertyID+"/payments", payment, handler.IdempotencyKeyHeader, "pay-1")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "DUPLICATE_REQUEST", env.Error.Code)

	code, env, _ = api.Do(http.MethodGet, "/api/v1/properties/"+propertyID+"/payments?tenantId="+tenantID, nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)

	code, env, _ = api.Do(http.MethodGet, "/api/v1/reports/"+propertyID+"/balances?status=Owing", nil)
	require.Equal(t, http.StatusOK, code)
	balances := testutil.Decode[reportapp.BalancesReport](t, env.Data)
	require.Len(t, balances.Items, 1)
	assert.Equal(t, "6000", balances.TotalOutstanding.String())

	code, env, _ = api.Do(http.MethodGet, "/api/v1/billing/tenant/"+tenantID+"/carry-forward?period=2025-07", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "6000", testutil.Decode[billingapp.CarryForwardResponse](t, env.Data).Balance.String())

	code, env, _ = api.Do(http.MethodGet, "/api/v1/properties/"+propertyID+"/invoices?period=2025-06", nil)
	require.Equal(t, http.StatusOK, code)
	invoices := testutil.Decode[[]invoicingapp.InvoiceResponse](t, env.Data)
	require.Len(t, invoices, 1)
	// the payment lands after the June deadline and still reads as partial
	assert.Equal(t, "PartiallyPaid", invoices[0].Status)

	// without a renderer the PDF route reports the dependency as unavailable
	code, env, _ = api.Do(http.MethodGet, "/api/v1/properties/"+propertyID+"/invoices/"+invoices[0].ID.String()+"/pdf", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "RENDERER_UNAVAILABLE", env.Error.Code)

	code, env, _ = api.Do(http.MethodPost, "/api/v1/properties/"+propertyID+"/invoices/overdue", map[string]string{"as_of": "2025-07-01T00:00:00Z"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, testutil.Decode[invoicingapp.MarkOverdueResponse](t, env.Data).Marked)
}

func TestEngine_ErrorMapping(t *testing.T) {
	api := newTestEngine(t, defaultEngineConfig())
	propertyID, tenantID := seed(t, api)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"malformed path id", http.MethodGet, "/api/v1/properties/not-a-uuid", nil, http.StatusBadRequest, "ERR_INVALID_INPUT"},
		{"unknown property", http.MethodGet, "/api/v1/properties/00000000-0000-0000-0000-000000000001", nil, http.StatusNotFound, "PROPERTY_NOT_FOUND"},
		{"bad period", http.MethodPost, "/api/v1/billing/generate/" + propertyID, map[string]string{"period": "2025-13"}, http.StatusBadRequest, "ERR_VALIDATION"},
		{"missing period", http.MethodGet, "/api/v1/billing/" + propertyID, nil, http.StatusBadRequest, "INVALID_PERIOD"},
		{"occupied unit", http.MethodPost, "/api/v1/tenants", map[string]any{
			"property_id": propertyID, "unit_id": "G1", "name": "Baraka", "lease_start": "2025-06-01T00:00:00Z",
		}, http.StatusConflict, "UNIT_NOT_VACANT"},
		{"payment before billing", http.MethodPost, "/api/v1/properties/" + propertyID + "/payments", map[string]any{
			"tenant_id": tenantID, "period": "2025-09", "amount": 100,
		}, http.StatusUnprocessableEntity, "NO_BILL_FOR_PERIOD"},
		{"zero expense", http.MethodPost, "/api/v1/properties/" + propertyID + "/expenses", map[string]any{
			"amount": 0, "description": "plumbing", "date": "2025-06-10T00:00:00Z",
		}, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"bad date filter", http.MethodGet, "/api/v1/properties/" + propertyID + "/expenses?from=June", nil, http.StatusBadRequest, "ERR_INVALID_INPUT"},
		{"bad standing", http.MethodGet, "/api/v1/reports/" + propertyID + "/balances?status=Late", nil, http.StatusBadRequest, "ERR_INVALID_INPUT"},
		{"unknown route", http.MethodGet, "/api/v1/nowhere", nil, http.StatusNotFound, "ERR_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env, headers := api.Do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, headers.Get(middleware.RequestIDKey), env.RequestID)
		})
	}
}

func TestEngine_SystemRoutes(t *testing.T) {
	api := newTestEngine(t, defaultEngineConfig())

	code, env, _ := api.Do(http.MethodGet, "/api/v1/ping", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	health := testutil.Decode[handler.HealthResponse](t, w.Body.Bytes())
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "ok", health.Checks["database"])

	w = httptest.NewRecorder()
	api.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code, "docs are hidden when disabled")
}

func TestEngine_RateLimitPerProperty(t *testing.T) {
	cfg := defaultEngineConfig()
	cfg.RateLimiter = middleware.NewRateLimiter(1, time.Minute)
	t.Cleanup(cfg.RateLimiter.Close)
	api := newTestEngine(t, cfg)

	first := "/api/v1/properties/00000000-0000-0000-0000-00000000000a"
	second := "/api/v1/properties/00000000-0000-0000-0000-00000000000b"
	code, _, _ := api.Do(http.MethodGet, first, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, env, _ := api.Do(http.MethodGet, first, nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "ERR_RATE_LIMITED", env.Error.Code)

	code, _, _ = api.Do(http.MethodGet, second, nil)
	assert.Equal(t, http.StatusNotFound, code, "another property has its own budget")
}

func TestEngine_HealthDegraded(t *testing.T) {
	failing := handler.NewSystemHandler("rentledger", "test", map[string]handler.HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	engine := NewEngine(defaultEngineConfig(), nil, Handlers{}, failing)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
