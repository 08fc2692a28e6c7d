/*
handlers.go - HTTP API handlers for the forecasting service

PURPOSE:
  Exposes the planner via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the planner.

ENDPOINTS:
  Materials:
    GET    /api/materials/{id}                 Master data, lead time, yearly trend
    GET    /api/materials/{id}/forecast        Daywise forecast (oem, start, end, samples)
    GET    /api/materials/{id}/reliability     Expected demand (population)
    POST   /api/materials/{id}/observations    Record a stock reading
    GET    /api/materials/{id}/notifications   Low-stock history of the material

  Notifications:
    GET    /api/notifications                  Low-stock log in insertion order

  Tables:
    POST   /api/tables/invalidate              Drop cached reference tables
    GET    /api/stock-value                    Inventory valuation totals

  Scenarios:
    GET    /api/scenarios                      List demo scenarios
    POST   /api/scenarios/load                 Write a scenario's tables

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed query or body, value out of range
  - 404: No reference rows for the material
  - 422: Reference table is malformed
  - 503: Notification log unavailable (caller may retry once)
  - 500: Anything else

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/planner"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner *planner.Service
	Log     zerolog.Logger
}

// NewHandler creates a new handler around the planner.
func NewHandler(svc *planner.Service, log zerolog.Logger) *Handler {
	return &Handler{Planner: svc, Log: log}
}

// =============================================================================
// MATERIAL HANDLERS
// =============================================================================

// GetMaterial returns the material detail view.
func (h *Handler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	material := materialParam(r)

	detail, err := h.Planner.MaterialDetail(ctx, material, forecast.OEM(r.URL.Query().Get("oem")))
	if err != nil {
		h.fail(w, "Failed to load material", err)
		return
	}
	oems, err := h.Planner.OEMs(ctx, material)
	if err != nil {
		h.fail(w, "Failed to list OEMs", err)
		return
	}

	writeJSON(w, http.StatusOK, toMaterialDTO(detail, oems))
}

// GetForecast runs the daywise forecast.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var req forecast.Request
	var err error
	if s := q.Get("start"); s != "" {
		if req.Start, err = forecast.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date, expected YYYY-MM-DD", err)
			return
		}
	}
	if s := q.Get("end"); s != "" {
		if req.End, err = forecast.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end date, expected YYYY-MM-DD", err)
			return
		}
	}
	withSamples, _ := strconv.ParseBool(q.Get("samples"))

	result, err := h.Planner.Forecast(r.Context(), materialParam(r), forecast.OEM(q.Get("oem")), req)
	if err != nil {
		h.fail(w, "Failed to run forecast", err)
		return
	}

	writeJSON(w, http.StatusOK, toForecastDTO(result, withSamples))
}

// GetReliability computes expected demand for a population.
func (h *Handler) GetReliability(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("population")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "population is required", nil)
		return
	}
	population, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "population must be a number", err)
		return
	}

	res, err := h.Planner.Reliability(r.Context(), materialParam(r), population)
	if err != nil {
		h.fail(w, "Failed to compute reliability", err)
		return
	}

	writeJSON(w, http.StatusOK, ReliabilityDTO{
		MaterialID:     string(res.MaterialID),
		Factor:         res.Factor,
		Population:     res.Population,
		ExpectedDemand: res.ExpectedDemand,
	})
}

// PostObservation records a user-entered stock reading.
func (h *Handler) PostObservation(w http.ResponseWriter, r *http.Request) {
	var req ObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PresentStock == nil {
		writeError(w, http.StatusBadRequest, "present_stock is required", nil)
		return
	}

	n, err := h.Planner.Observe(r.Context(), materialParam(r), forecast.OEM(req.OEM), *req.PresentStock)
	if err != nil {
		h.fail(w, "Failed to record observation", err)
		return
	}

	status := http.StatusOK
	if n.Appended {
		status = http.StatusCreated
	}
	writeJSON(w, status, ObservationDTO{
		Notified:     n.Appended,
		Notification: toNotificationDTO(n.Record),
	})
}

// =============================================================================
// NOTIFICATION & TABLE HANDLERS
// =============================================================================

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Planner.Notifications(r.Context())
	if err != nil {
		h.fail(w, "Failed to read notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationDTOs(recs))
}

func (h *Handler) ListMaterialNotifications(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Planner.MaterialNotifications(r.Context(), materialParam(r))
	if err != nil {
		h.fail(w, "Failed to read notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationDTOs(recs))
}

// GetStockValue returns the valuation totals shown on the dashboard.
func (h *Handler) GetStockValue(w http.ResponseWriter, r *http.Request) {
	v, err := h.Planner.StockValue(r.Context())
	if err != nil {
		h.fail(w, "Failed to load stock value", err)
		return
	}
	writeJSON(w, http.StatusOK, toStockValueDTO(v))
}

func (h *Handler) InvalidateTables(w http.ResponseWriter, r *http.Request) {
	h.Planner.InvalidateTables()
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	all := planner.Scenarios()
	dtos := make([]ScenarioDTO, 0, len(all))
	for _, s := range all {
		dtos = append(dtos, toScenarioDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sc, err := h.Planner.LoadScenario(r.Context(), req.ScenarioID)
	if err != nil {
		h.fail(w, "Failed to load scenario", err)
		return
	}
	writeJSON(w, http.StatusOK, toScenarioDTO(sc))
}

// =============================================================================
// HELPERS
// =============================================================================

func materialParam(r *http.Request) forecast.MaterialID {
	return forecast.MaterialID(chi.URLParam(r, "id"))
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, forecast.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, forecast.ErrSchema):
		return http.StatusUnprocessableEntity, "schema_error"
	case errors.Is(err, forecast.ErrInvalidRange):
		return http.StatusBadRequest, "invalid_range"
	case errors.Is(err, forecast.ErrIOFailure):
		return http.StatusServiceUnavailable, "io_failure"
	case planner.IsCanceled(err):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error().Err(err).Int("status", status).Msg(message)
	}
	writeJSON(w, status, ErrorResponse{Error: message, Code: code, Details: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

