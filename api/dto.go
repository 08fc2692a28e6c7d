/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the forecast model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

QUANTITIES:
  Reported order quantities are decimal strings, rounded up. Stock levels in
  samples and charts are raw floats.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/planner"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

type ReorderDTO struct {
	ReorderPointDate forecast.Date   `json:"reorder_point_date"`
	DeliveryDate     forecast.Date   `json:"delivery_date"`
	LeadTimeDays     int             `json:"lead_time_days"`
	Quantity         decimal.Decimal `json:"quantity"`
}

type PreOrderDTO struct {
	Required        bool            `json:"required"`
	LookaheadDate   *forecast.Date  `json:"lookahead_date,omitempty"`
	UpdatedQuantity decimal.Decimal `json:"updated_quantity"`
}

type SampleDTO struct {
	Date                    forecast.Date `json:"date"`
	DailyConsumption        float64       `json:"daily_cons"`
	AnticipatedConsumption  float64       `json:"anticipated_consum"`
	BufferStock             float64       `json:"buffer_stock"`
	PresentStock            float64       `json:"present_stock"`
	StockAfterReplenishment float64       `json:"stock_after"`
	ArrivedQuantity         float64       `json:"arrived,omitempty"`
}

// ForecastDTO is the forecast response. Samples are included only when
// requested with samples=true.
type ForecastDTO struct {
	MaterialID    string         `json:"material_id"`
	OEM           string         `json:"oem"`
	Description   string         `json:"description,omitempty"`
	LeadTimeDays  int            `json:"lead_time_days"`
	ParameterYear int            `json:"parameter_year"`
	Start         forecast.Date  `json:"start"`
	End           forecast.Date  `json:"end"`
	Days          int            `json:"days"`
	Reorder       *ReorderDTO    `json:"reorder,omitempty"`
	PreOrder      PreOrderDTO    `json:"pre_order"`
	Chart         forecast.Chart `json:"chart"`
	Samples       []SampleDTO    `json:"samples,omitempty"`
}

type ReliabilityDTO struct {
	MaterialID     string          `json:"material_id"`
	Factor         float64         `json:"reliability_365days"`
	Population     float64         `json:"population"`
	ExpectedDemand decimal.Decimal `json:"expected_demand"`
}

// ObservationRequest is the body of POST /api/materials/{id}/observations.
type ObservationRequest struct {
	PresentStock *float64 `json:"present_stock"`
	OEM          string   `json:"oem,omitempty"`
}

// StockValueDTO is the dashboard valuation summary. Display fields are in
// crore/lakh; ChangePercent is omitted when there is no previous value.
type StockValueDTO struct {
	Previous        decimal.Decimal  `json:"previous"`
	Current         decimal.Decimal  `json:"current"`
	PreviousDisplay string           `json:"previous_display"`
	CurrentDisplay  string           `json:"current_display"`
	ChangePercent   *decimal.Decimal `json:"change_percent,omitempty"`
	Rows            int              `json:"rows"`
}

func toStockValueDTO(v forecast.StockValue) StockValueDTO {
	dto := StockValueDTO{
		Previous:        v.Previous,
		Current:         v.Current,
		PreviousDisplay: forecast.FormatIndianUnits(v.Previous),
		CurrentDisplay:  forecast.FormatIndianUnits(v.Current),
		Rows:            v.Rows,
	}
	if pct, ok := v.ChangePercent(); ok {
		dto.ChangePercent = &pct
	}
	return dto
}

type NotificationDTO struct {
	Timestamp    time.Time `json:"timestamp"`
	MaterialID   string    `json:"material_id"`
	PresentStock float64   `json:"present_stock"`
	SafetyStock  float64   `json:"safety_stock"`
}

type ObservationDTO struct {
	Notified     bool            `json:"notified"`
	Notification NotificationDTO `json:"notification"`
}

type LeadTimeDTO struct {
	PRToPO float64 `json:"prpo_forecasted"`
	POToGR float64 `json:"pogr_forecasted"`
	GRToGI float64 `json:"grgi_forecasted"`
	Total  float64 `json:"total"`
}

type YearTrendDTO struct {
	Year         int     `json:"year"`
	ConsWIP      float64 `json:"cons_wip"`
	BufferStock  float64 `json:"buffer_stock"`
	NetReq       float64 `json:"net_req"`
	PresentStock float64 `json:"present_stock"`
}

type AttributeDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type MaterialDTO struct {
	MaterialID string         `json:"material_id"`
	OEM        string         `json:"oem"`
	OEMs       []string       `json:"oems"`
	Attributes []AttributeDTO `json:"attributes,omitempty"`
	LeadTime   *LeadTimeDTO   `json:"lead_time,omitempty"`
	Trend      []YearTrendDTO `json:"trend"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Materials   int    `json:"materials"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toForecastDTO(f *forecast.Forecast, withSamples bool) ForecastDTO {
	dto := ForecastDTO{
		MaterialID:    string(f.MaterialID),
		OEM:           string(f.OEM),
		Description:   f.Description,
		LeadTimeDays:  f.LeadTimeDays,
		ParameterYear: f.ParameterYear,
		Start:         f.Horizon.Start,
		End:           f.Horizon.End,
		Days:          len(f.Samples),
		PreOrder: PreOrderDTO{
			Required:        f.PreOrder.Required,
			UpdatedQuantity: f.PreOrder.ReportedQuantity(),
		},
		Chart: f.Chart(),
	}
	if f.Reorder != nil {
		dto.Reorder = &ReorderDTO{
			ReorderPointDate: f.Reorder.ReorderPointDate,
			DeliveryDate:     f.Reorder.DeliveryDate,
			LeadTimeDays:     f.Reorder.LeadTimeDays,
			Quantity:         f.Reorder.ReportedQuantity(),
		}
		lookahead := f.PreOrder.LookaheadDate
		dto.PreOrder.LookaheadDate = &lookahead
	}
	if withSamples {
		dto.Samples = make([]SampleDTO, 0, len(f.Samples))
		for _, s := range f.Samples {
			dto.Samples = append(dto.Samples, SampleDTO{
				Date:                    s.Date,
				DailyConsumption:        s.DailyConsumption,
				AnticipatedConsumption:  s.AnticipatedConsumption,
				BufferStock:             s.BufferStock,
				PresentStock:            s.PresentStock,
				StockAfterReplenishment: s.StockAfterReplenishment,
				ArrivedQuantity:         s.ArrivedQuantity,
			})
		}
	}
	return dto
}

func toNotificationDTO(rec forecast.NotificationRecord) NotificationDTO {
	return NotificationDTO{
		Timestamp:    rec.Timestamp,
		MaterialID:   string(rec.MaterialID),
		PresentStock: rec.PresentStock,
		SafetyStock:  rec.SafetyStock,
	}
}

func toNotificationDTOs(recs []forecast.NotificationRecord) []NotificationDTO {
	dtos := make([]NotificationDTO, 0, len(recs))
	for _, r := range recs {
		dtos = append(dtos, toNotificationDTO(r))
	}
	return dtos
}

func toMaterialDTO(d *planner.MaterialDetail, oems []forecast.OEM) MaterialDTO {
	dto := MaterialDTO{
		MaterialID: string(d.MaterialID),
		OEM:        string(d.OEM),
		OEMs:       make([]string, 0, len(oems)),
		Trend:      make([]YearTrendDTO, 0, len(d.Trend)),
	}
	for _, o := range oems {
		dto.OEMs = append(dto.OEMs, string(o))
	}
	if d.Master != nil {
		for _, a := range d.Master.Attributes {
			dto.Attributes = append(dto.Attributes, AttributeDTO{Name: a.Name, Value: a.Value})
		}
	}
	if d.LeadTime != nil {
		dto.LeadTime = &LeadTimeDTO{
			PRToPO: d.LeadTime.PRToPO,
			POToGR: d.LeadTime.POToGR,
			GRToGI: d.LeadTime.GRToGI,
			Total:  d.LeadTime.Total(),
		}
	}
	for _, y := range d.Trend {
		dto.Trend = append(dto.Trend, YearTrendDTO{
			Year:         y.Year,
			ConsWIP:      y.ConsWIP,
			BufferStock:  y.BufferStock,
			NetReq:       y.NetReq,
			PresentStock: y.PresentStock,
		})
	}
	return dto
}

func toScenarioDTO(s planner.Scenario) ScenarioDTO {
	return ScenarioDTO{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Materials:   len(s.Materials),
	}
}
