/*
handlers_test.go - HTTP tests for the forecasting API

Tests for:
- Forecast, reliability and material detail responses
- Observations and the notification log
- Stock value summary
- Error status mapping
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountrms/forecasting/api"
	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/forecast/store"
	"github.com/accountrms/forecasting/planner"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	router http.Handler
	svc    *planner.Service
	log    *store.Memory
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	dir := t.TempDir()
	paths := planner.TablePaths{
		Yearly:         filepath.Join(dir, "forecasted.csv"),
		LeadTime:       filepath.Join(dir, "leadtime.csv"),
		Reliability:    filepath.Join(dir, "reliability.csv"),
		MaterialMaster: filepath.Join(dir, "master.csv"),
		StockValue:     filepath.Join(dir, "stock_value.csv"),
	}

	clock := func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	cfg := forecast.DefaultConfig()
	cfg.Floor = forecast.InitialStockFloor{Mode: forecast.FloorFixed, Value: 120}
	engine := forecast.NewEngine(cfg)
	engine.Clock = clock

	log := store.NewMemory()
	notifier := forecast.NewNotifier(log)
	notifier.Clock = clock

	svc := planner.NewService(paths, engine, notifier, zerolog.Nop())
	sc, ok := planner.FindScenario("reorder-and-preorder")
	require.True(t, ok)
	require.NoError(t, sc.Write(paths, 2025))

	h := api.NewHandler(svc, zerolog.Nop())
	return testServer{router: api.NewRouter(h, []string{"*"}), svc: svc, log: log}
}

func (s testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// =============================================================================
// FORECAST
// =============================================================================

func TestGetForecast(t *testing.T) {
	// GIVEN: Material 100234 consuming 10/day with buffer 100 and lead time 30
	// WHEN: Requesting a 450-day forecast
	// THEN: Reorder on day 3 for 3960 units and a pre-order of 3920

	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/materials/100234/forecast?oem=atlas&start=2026-01-01&end=2027-03-27&samples=true", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[api.ForecastDTO](t, rec)
	assert.Equal(t, "100234", got.MaterialID)
	assert.Equal(t, 450, got.Days)
	assert.Len(t, got.Samples, 450)
	assert.Equal(t, 2026, got.ParameterYear)

	require.NotNil(t, got.Reorder)
	assert.Equal(t, "2026-01-04", got.Reorder.ReorderPointDate.String())
	assert.Equal(t, "2026-02-03", got.Reorder.DeliveryDate.String())
	assert.Equal(t, "3960", got.Reorder.Quantity.String())

	assert.True(t, got.PreOrder.Required)
	assert.Equal(t, "3920", got.PreOrder.UpdatedQuantity.String())
	require.NotNil(t, got.PreOrder.LookaheadDate)
	assert.Equal(t, "2027-02-03", got.PreOrder.LookaheadDate.String())

	assert.Len(t, got.Chart.PresentBeforeDelivery, 33)
}

func TestGetForecast_LaterStartKeepsCurrentYearFigures(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/materials/100234/forecast?start=2040-01-01&end=2040-03-01", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[api.ForecastDTO](t, rec)
	assert.Equal(t, 2026, got.ParameterYear)
	require.NotNil(t, got.Reorder)
	assert.Equal(t, "2040-01-04", got.Reorder.ReorderPointDate.String())
}

func TestGetForecast_SamplesOmittedByDefault(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/materials/100234/forecast", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "samples")
	assert.Equal(t, float64(forecast.DefaultHorizonDays), raw["days"])
}

func TestGetForecast_Errors(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		target string
		status int
		code   string
	}{
		{"unknown material", "/api/materials/999/forecast", http.StatusNotFound, "not_found"},
		{"unknown oem", "/api/materials/100234/forecast?oem=zenith", http.StatusNotFound, "not_found"},
		{"bad start", "/api/materials/100234/forecast?start=01/01/2026", http.StatusBadRequest, ""},
		{"horizon too long", "/api/materials/100234/forecast?start=2026-01-01&end=2200-01-01", http.StatusBadRequest, "invalid_range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tc.target, nil)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			resp := decode[api.ErrorResponse](t, rec)
			assert.Equal(t, tc.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestGetForecast_EmptyHorizon(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/materials/100234/forecast?start=2026-01-01&end=2025-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[api.ForecastDTO](t, rec)
	assert.Zero(t, got.Days)
	assert.Nil(t, got.Reorder)
}

func TestGetForecast_MalformedTable_422(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, os.WriteFile(s.svc.Paths.Yearly, []byte("Material No,oem\n100234,atlas\n"), 0o644))
	s.svc.InvalidateTables()

	rec := s.do(t, http.MethodGet, "/api/materials/100234/forecast", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// =============================================================================
// RELIABILITY & MATERIAL
// =============================================================================

func TestGetReliability(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/materials/100234/reliability?population=1000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[api.ReliabilityDTO](t, rec)
	assert.Equal(t, "50", got.ExpectedDemand.String())

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/materials/100234/reliability", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/materials/100234/reliability?population=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/materials/100234/reliability?population=-1", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/materials/999/reliability?population=1", nil).Code)
}

func TestGetMaterial(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/materials/100234", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[api.MaterialDTO](t, rec)
	assert.Equal(t, []string{"atlas"}, got.OEMs)
	require.NotNil(t, got.LeadTime)
	assert.Equal(t, 30.0, got.LeadTime.Total)
	assert.Len(t, got.Trend, 6)
	assert.NotEmpty(t, got.Attributes)
}

// =============================================================================
// OBSERVATIONS & NOTIFICATIONS
// =============================================================================

func TestPostObservation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/materials/100234/observations", map[string]any{"present_stock": 40})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[api.ObservationDTO](t, rec)
	assert.True(t, got.Notified)
	assert.Equal(t, 100.0, got.Notification.SafetyStock)

	rec = s.do(t, http.MethodPost, "/api/materials/100234/observations", map[string]any{"present_stock": 150})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[api.ObservationDTO](t, rec).Notified)

	rec = s.do(t, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.NotificationDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, 40.0, list[0].PresentStock)
}

func TestPostObservation_Validation(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/materials/100234/observations", map[string]any{}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/materials/100234/observations", map[string]any{"present_stock": -3}).Code)
	assert.Equal(t, 0, s.log.Len())
}

func TestPostObservation_LogUnavailable_503(t *testing.T) {
	s := newTestServer(t)
	s.log.FailWith = errors.New("disk full")

	rec := s.do(t, http.MethodPost, "/api/materials/100234/observations", map[string]any{"present_stock": 1})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "io_failure", decode[api.ErrorResponse](t, rec).Code)
}

func TestListNotifications_Empty(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListMaterialNotifications(t *testing.T) {
	// GIVEN: Low-stock readings for two materials
	// WHEN: Listing one material's notifications
	// THEN: Only that material's records come back, oldest first

	s := newTestServer(t)
	for _, obs := range []struct {
		material string
		reading  float64
	}{{"100234", 40}, {"100235", 1}, {"100234", 30}} {
		rec := s.do(t, http.MethodPost, "/api/materials/"+obs.material+"/observations", map[string]any{"present_stock": obs.reading})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/materials/100234/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.NotificationDTO](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, 40.0, list[0].PresentStock)
	assert.Equal(t, 30.0, list[1].PresentStock)

	rec = s.do(t, http.MethodGet, "/api/materials/200100/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListMaterialNotifications_LogUnavailable_503(t *testing.T) {
	s := newTestServer(t)
	s.log.FailWith = errors.New("disk full")

	rec := s.do(t, http.MethodGet, "/api/materials/100234/notifications", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// =============================================================================
// STOCK VALUE
// =============================================================================

func TestGetStockValue(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/stock-value", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[api.StockValueDTO](t, rec)
	assert.Equal(t, "1345000", got.Previous.String())
	assert.Equal(t, "1408000", got.Current.String())
	assert.Equal(t, "13.45 lakh", got.PreviousDisplay)
	assert.Equal(t, "14.08 lakh", got.CurrentDisplay)
	require.NotNil(t, got.ChangePercent)
	assert.Equal(t, "4.68", got.ChangePercent.String())
	assert.Equal(t, 2, got.Rows)
}

func TestGetStockValue_TableUnavailable(t *testing.T) {
	// GIVEN: The stock value table removed, then unconfigured
	// WHEN: Requesting the summary
	// THEN: An unreadable file is 503, no configured table is 404

	s := newTestServer(t)
	require.NoError(t, os.Remove(s.svc.Paths.StockValue))

	rec := s.do(t, http.MethodGet, "/api/stock-value", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.svc.Paths.StockValue = ""
	rec = s.do(t, http.MethodGet, "/api/stock-value", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// TABLES & SCENARIOS
// =============================================================================

func TestInvalidateTables(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/materials/100234/forecast", nil).Code)

	rec := s.do(t, http.MethodPost, "/api/tables/invalidate", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	loads := s.svc.Tables.Loads()
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/materials/100234/forecast", nil).Code)
	assert.Equal(t, loads+1, s.svc.Tables.Loads())
}

func TestScenarios(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.ScenarioDTO](t, rec)
	assert.Len(t, list, len(planner.Scenarios()))

	rec = s.do(t, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "slow-movers"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/materials/100234/forecast", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/materials/300001/forecast", nil).Code)

	rec = s.do(t, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{ScenarioID: "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
