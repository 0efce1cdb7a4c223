package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nebenkosten/internal/core/apperror"
	"nebenkosten/internal/domain/calculation"
	"nebenkosten/internal/domain/plausibility"
	"nebenkosten/internal/infrastructure/http/v1/dto"
	"nebenkosten/internal/infrastructure/metrics"
	"nebenkosten/internal/infrastructure/storage/memory"
	"nebenkosten/pkg/logger"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details struct {
		Violations []apperror.Violation `json:"violations"`
	} `json:"details"`
}

type validBody struct {
	Valid    bool                   `json:"valid"`
	Warnings []plausibility.Warning `json:"warnings"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *calculation.Store) {
	t.Helper()

	m := metrics.New()
	store := calculation.New(context.Background(), memory.New(),
		calculation.WithLogger(logger.Nop()),
		calculation.WithRecorder(m),
		calculation.WithClock(func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }),
	)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	checker, err := plausibility.NewChecker(plausibility.DefaultRules())
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Store:         store,
		Checker:       checker,
		Metrics:       m,
		Logger:        logger.Nop(),
		StorageDriver: "memory",
		Version:       "test",
	})
	return router, store
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const validAggregate = `{
	"landlord": {"name": "Erika Mustermann", "street": "Hauptstraße 1", "zip": "10115", "city": "Berlin", "email": ""},
	"billingPeriod": {"from": "2025-01-01", "to": "31.12.2025"},
	"usagePeriod": {"from": "2025-01-01T00:00:00Z", "to": "2025-12-31T00:00:00Z"},
	"property": {"street": "Gartenweg 5", "zip": "10115", "city": "Berlin", "totalArea": 420, "totalUnits": 6, "totalPersons": 11},
	"tenant": {"name": "Max Mieter", "currentArea": 72, "persons": 2, "prepayments": 1800},
	"items": [{"id": "0192c3f4-5e6f-7a8b-9c0d-1e2f3a4b5c6d", "name": "Heizung", "amount": 500, "distributionType": "AREA"}]
}`

func TestGetCalculation_Default(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/v1/calculation", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[dto.CalculationResponse](t, rec)
	assert.Empty(t, body.Data.Items)
	assert.Equal(t, 2025, body.Data.BillingPeriod.From.Year())
	assert.Equal(t, "0.00", body.Totals.Total)
}

func TestCostItemLifecycle(t *testing.T) {
	router, store := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/calculation/items", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[dto.IDResponse](t, rec)
	require.NotEmpty(t, created.ID)

	rec = do(t, router, http.MethodPatch, "/api/v1/calculation/items/"+created.ID,
		`{"name":"Heizung","amount":500.5,"distributionType":"AREA"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[dto.CalculationResponse](t, rec)
	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, "Heizung", body.Data.Items[0].Name)
	assert.Equal(t, "500.50", body.Totals.ByDistribution["AREA"])
	assert.Equal(t, "500.50", body.Totals.Total)

	rec = do(t, router, http.MethodPatch, "/api/v1/calculation/items/unknown", `{"amount":1}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/v1/calculation/items/unknown", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, store.Data().Items, 1)

	rec = do(t, router, http.MethodDelete, "/api/v1/calculation/items/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.Data().Items)
}

func TestEntityUpdates(t *testing.T) {
	router, store := newTestRouter(t)

	rec := do(t, router, http.MethodPatch, "/api/v1/calculation/tenant", `{"name":"Max","persons":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPatch, "/api/v1/calculation/property", `{"totalArea":420}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, router, http.MethodPatch, "/api/v1/calculation/landlord", `{"iban":"DE89370400440532013000"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	d := store.Data()
	assert.Equal(t, "Max", d.Tenant.Name)
	assert.Equal(t, 2, d.Tenant.Persons)
	assert.Equal(t, 420.0, d.Property.TotalArea)
	require.NotNil(t, d.Landlord.IBAN)
	assert.Equal(t, "DE89370400440532013000", *d.Landlord.IBAN)
}

func TestSetDataAndValidate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/calculation/validate", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decode[errorBody](t, rec)
	assert.Equal(t, apperror.CodeValidation, errBody.Code)
	assert.NotEmpty(t, errBody.Details.Violations)

	rec = do(t, router, http.MethodPatch, "/api/v1/calculation", validAggregate)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/calculation/validate", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ok := decode[validBody](t, rec)
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Warnings)

	rec = do(t, router, http.MethodPatch, "/api/v1/calculation/tenant", `{"currentArea":500}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/calculation/validate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	ok = decode[validBody](t, rec)
	assert.True(t, ok.Valid)
	require.Len(t, ok.Warnings, 1)
	assert.Equal(t, "tenant_area_within_property", ok.Warnings[0].Rule)
}

func TestSetData_InvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPatch, "/api/v1/calculation", `{"billingPeriod":{"from":"gestern"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeInvalidInput, decode[errorBody](t, rec).Code)

	rec = do(t, router, http.MethodPatch, "/api/v1/calculation", `{"billingPeriod":{"from":"2024-01-01","to":1e20}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeInvalidInput, decode[errorBody](t, rec).Code)
}

func TestReset(t *testing.T) {
	router, store := newTestRouter(t)
	store.AddCostItem()

	rec := do(t, router, http.MethodPost, "/api/v1/calculation/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.Data().Items)
}

func TestValidateEntity(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name     string
		entity   string
		body     string
		status   int
		wantPath []string
	}{
		{"period ok", "period", `{"from":"01.01.2025","to":"2025-12-31"}`, http.StatusOK, nil},
		{"period reversed", "period", `{"from":"2025-12-31","to":"2025-01-01"}`, http.StatusBadRequest, []string{"to"}},
		{"landlord bad email", "landlord", `{"name":"A","street":"B","zip":"12345","city":"C","email":"nope"}`, http.StatusBadRequest, []string{"email"}},
		{"property zero area", "property", `{"street":"A","zip":"12345","city":"B","totalArea":0,"totalUnits":1}`, http.StatusBadRequest, []string{"totalArea"}},
		{"tenant ok", "tenant", `{"name":"Max","currentArea":50,"persons":1,"prepayments":0}`, http.StatusOK, nil},
		{"item too small", "item", `{"id":"0192c3f4-5e6f-7a8b-9c0d-1e2f3a4b5c6d","name":"Müll","amount":0.001,"distributionType":"UNITS"}`, http.StatusBadRequest, []string{"amount"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/v1/validate/"+tt.entity, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.wantPath == nil {
				assert.True(t, decode[validBody](t, rec).Valid)
				return
			}
			body := decode[errorBody](t, rec)
			require.Len(t, body.Details.Violations, 1)
			assert.Equal(t, tt.wantPath, body.Details.Violations[0].Path)
			assert.NotEmpty(t, body.Details.Violations[0].Message)
		})
	}
}

func TestValidateEntity_Errors(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/v1/validate/unknown", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/validate/item", `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperror.CodeInvalidInput, decode[errorBody](t, rec).Code)
}

func TestHealthMetricsAndTrace(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	do(t, router, http.MethodPost, "/api/v1/calculation/items", "")

	rec = do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nebenkosten_store_mutations_total")
	assert.Contains(t, rec.Body.String(), "nebenkosten_http_requests_total")

	rec = do(t, router, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
