/*
Package planner wires reference tables, the forecast engine and the notifier
into the operations the HTTP and CLI surfaces expose.

PURPOSE:
  The forecast package is pure: it takes tables as arguments. This package
  owns where the tables come from (a read-through cache over configured
  paths), which OEM is used when the caller names none, and logging.

OPERATIONS:
  Forecast        Resolve parameters and run the daywise simulation
  Reliability     Expected failures for a population
  Observe         Compare a stock reading with the safety stock and log breaches
  MaterialDetail  Lead-time breakdown and yearly trend
  Material        Material master attributes
  Notifications   The notification log in insertion order, whole or per material
  StockValue      Inventory valuation totals for the dashboard

SEE ALSO:
  - forecast/engine.go: Simulation
  - tables/cache.go: Table loading
*/
package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/tables"
)

// TablePaths locates the reference tables.
type TablePaths struct {
	Yearly         string
	LeadTime       string
	Reliability    string
	MaterialMaster string
	StockValue     string
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	Paths      TablePaths
	Tables     *tables.Cache
	Engine     *forecast.Engine
	Notifier   *forecast.Notifier
	DefaultOEM forecast.OEM
	Log        zerolog.Logger
}

func NewService(paths TablePaths, engine *forecast.Engine, notifier *forecast.Notifier, log zerolog.Logger) *Service {
	return &Service{
		Paths:    paths,
		Tables:   tables.NewCache(),
		Engine:   engine,
		Notifier: notifier,
		Log:      log,
	}
}

// =============================================================================
// FORECAST
// =============================================================================

// Forecast runs the simulation for (material, oem). An empty oem falls back
// to DefaultOEM, then to the first OEM listed for the material.
func (s *Service) Forecast(ctx context.Context, material forecast.MaterialID, oem forecast.OEM, req forecast.Request) (*forecast.Forecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params, err := s.parameters(material, oem)
	if err != nil {
		return nil, err
	}

	result, err := s.Engine.Simulate(params, req)
	if err != nil {
		s.Log.Debug().Err(err).Str("material", string(material)).Msg("forecast rejected")
		return nil, err
	}

	evt := s.Log.Debug().
		Str("material", string(result.MaterialID)).
		Str("oem", string(result.OEM)).
		Int("days", len(result.Samples)).
		Bool("pre_order", result.PreOrder.Required)
	if result.Reorder != nil {
		evt = evt.Str("reorder_date", result.Reorder.ReorderPointDate.String()).
			Str("quantity", result.Reorder.ReportedQuantity().String())
	}
	evt.Msg("forecast complete")

	return result, nil
}

// OEMs lists the OEMs that have yearly rows for a material, in table order.
func (s *Service) OEMs(ctx context.Context, material forecast.MaterialID) ([]forecast.OEM, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.Tables.Yearly(s.Paths.Yearly)
	if err != nil {
		return nil, err
	}
	return oemsFor(rows, material), nil
}

func oemsFor(rows []forecast.MaterialYearlyRecord, material forecast.MaterialID) []forecast.OEM {
	seen := make(map[forecast.OEM]bool)
	var out []forecast.OEM
	for _, r := range rows {
		if r.MaterialID == material && !seen[r.OEM] {
			seen[r.OEM] = true
			out = append(out, r.OEM)
		}
	}
	return out
}

func (s *Service) parameters(material forecast.MaterialID, oem forecast.OEM) (forecast.Parameters, error) {
	rows, err := s.Tables.Yearly(s.Paths.Yearly)
	if err != nil {
		return forecast.Parameters{}, err
	}
	if oem == "" {
		oem = s.DefaultOEM
	}
	if oem == "" {
		oems := oemsFor(rows, material)
		if len(oems) == 0 {
			return forecast.Parameters{}, &forecast.NotFoundError{Kind: "yearly parameters", MaterialID: material}
		}
		oem = oems[0]
	}
	return forecast.Resolve(rows, material, oem)
}

// =============================================================================
// RELIABILITY
// =============================================================================

type ReliabilityResult struct {
	MaterialID     forecast.MaterialID
	Factor         float64
	Population     float64
	ExpectedDemand decimal.Decimal
}

func (s *Service) Reliability(ctx context.Context, material forecast.MaterialID, population float64) (ReliabilityResult, error) {
	if err := ctx.Err(); err != nil {
		return ReliabilityResult{}, err
	}
	rows, err := s.Tables.Reliability(s.Paths.Reliability)
	if err != nil {
		return ReliabilityResult{}, err
	}
	rec, err := forecast.LookupReliability(rows, material)
	if err != nil {
		return ReliabilityResult{}, err
	}
	demand, err := forecast.ExpectedDemand(rec.Reliability365Days, population)
	if err != nil {
		return ReliabilityResult{}, err
	}
	return ReliabilityResult{
		MaterialID:     material,
		Factor:         rec.Reliability365Days,
		Population:     population,
		ExpectedDemand: demand,
	}, nil
}

// =============================================================================
// LOW-STOCK OBSERVATION
// =============================================================================

// Observe checks a present-stock reading against the material's safety
// stock: the buffer stock of the current year, or the nearest year on file.
func (s *Service) Observe(ctx context.Context, material forecast.MaterialID, oem forecast.OEM, reading float64) (forecast.Notification, error) {
	if err := ctx.Err(); err != nil {
		return forecast.Notification{}, err
	}

	params, err := s.parameters(material, oem)
	if err != nil {
		return forecast.Notification{}, err
	}
	figs, err := params.NearestYear(s.today().Year())
	if err != nil {
		return forecast.Notification{}, err
	}

	n, err := s.Notifier.Check(ctx, material, reading, figs.BufferStock)
	if err != nil {
		s.Log.Error().Err(err).Str("material", string(material)).Msg("notification not recorded")
		return n, err
	}
	if n.Appended {
		s.Log.Info().
			Str("material", string(material)).
			Float64("present_stock", reading).
			Float64("safety_stock", figs.BufferStock).
			Msg("low stock recorded")
	}
	return n, nil
}

func (s *Service) Notifications(ctx context.Context) ([]forecast.NotificationRecord, error) {
	return s.Notifier.Log.List(ctx)
}

// MaterialNotifications returns the low-stock history of one material.
func (s *Service) MaterialNotifications(ctx context.Context, material forecast.MaterialID) ([]forecast.NotificationRecord, error) {
	return forecast.History(ctx, s.Notifier.Log, material)
}

func (s *Service) today() forecast.Date {
	if s.Engine != nil && s.Engine.Clock != nil {
		return forecast.DateOf(s.Engine.Clock())
	}
	return forecast.Today()
}

// =============================================================================
// MATERIAL DETAIL
// =============================================================================

// MaterialDetail is the display view of one material. Master and LeadTime
// are nil when the material has no row in those tables.
type MaterialDetail struct {
	MaterialID forecast.MaterialID
	OEM        forecast.OEM
	Master     *forecast.MaterialMaster
	LeadTime   *forecast.LeadTimeBreakdown
	Trend      []forecast.YearFigures
}

func (s *Service) MaterialDetail(ctx context.Context, material forecast.MaterialID, oem forecast.OEM) (*MaterialDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params, err := s.parameters(material, oem)
	if err != nil {
		return nil, err
	}
	detail := &MaterialDetail{
		MaterialID: material,
		OEM:        params.OEM,
		Trend:      params.Years(),
	}

	if m, err := s.Material(ctx, material); err == nil {
		detail.Master = &m
	} else if !forecast.IsNotFound(err) {
		return nil, err
	}

	if s.Paths.LeadTime != "" {
		rows, err := s.Tables.LeadTimes(s.Paths.LeadTime)
		if err != nil {
			return nil, err
		}
		if b, err := tables.FindLeadTime(rows, material); err == nil {
			detail.LeadTime = &b
		}
	}
	return detail, nil
}

// Material returns the master-data attributes of one material.
func (s *Service) Material(ctx context.Context, material forecast.MaterialID) (forecast.MaterialMaster, error) {
	if err := ctx.Err(); err != nil {
		return forecast.MaterialMaster{}, err
	}
	if s.Paths.MaterialMaster == "" {
		return forecast.MaterialMaster{}, &forecast.NotFoundError{Kind: "material", MaterialID: material}
	}
	rows, err := s.Tables.MaterialMaster(s.Paths.MaterialMaster)
	if err != nil {
		return forecast.MaterialMaster{}, err
	}
	return tables.FindMaterial(rows, material)
}

// =============================================================================
// STOCK VALUE
// =============================================================================

// StockValue totals the valuation table.
func (s *Service) StockValue(ctx context.Context) (forecast.StockValue, error) {
	if err := ctx.Err(); err != nil {
		return forecast.StockValue{}, err
	}
	if s.Paths.StockValue == "" {
		return forecast.StockValue{}, fmt.Errorf("%w: no stock value table configured", forecast.ErrNotFound)
	}
	return s.Tables.StockValue(s.Paths.StockValue)
}

// =============================================================================
// CACHE CONTROL
// =============================================================================

// InvalidateTables forces every table to be re-read on next use.
func (s *Service) InvalidateTables() {
	s.Tables.InvalidateAll()
	s.Log.Info().Msg("reference tables invalidated")
}

// IsCanceled reports whether err came from the caller's context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
