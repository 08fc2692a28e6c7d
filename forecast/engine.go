/*
engine.go - Daywise forecast engine

PURPOSE:
  Simulates a material's stock day by day over a multi-year horizon. Two
  trajectories are maintained side by side:
  - present stock: unconstrained depletion, never replenished
  - stock after replenishment: depletion plus the scheduled order arrival

  The first day present stock drops strictly below the buffer stock is the
  reorder point. The reorder quantity is computed there, the order is
  scheduled to land `leadtime` days later, and no further breaches are acted
  on for the rest of the run.

ALGORITHM:
  day 0:  present = buffer * BufferMultiplier  if buffer >= floor
          present = floor                      otherwise
          stock_after = present
  day i:  daily       = cons_wip / 365
          anticipated = cons_woip * leadtime / 365
          present     = max(present[i-1] - daily[i-1], 0)
          stock_after = max(stock_after[i-1] - daily[i-1], 0) + arrived[i]
          first present < buffer:
              qty = cons_wip + anticipated + buffer - present
              arrived[i + leadtime] += qty

PARAMETER YEAR:
  With StaticCurrentYearParams (the default) every simulated day uses the
  figures of the current calendar year, taken from the engine clock whatever
  the requested start. Parameters do not vary with the simulated date.
  Turning the flag off looks figures up by each day's own year, and the
  opening stock uses the start year.

ZERO LEAD TIME:
  An order placed with lead time 0 lands on the reorder day itself. Legacy
  daywise reports booked arrival[i+0] after day i was already computed, so a
  zero-lead order never reached their stock-after series; this engine adds
  it to day i.

NUMERICS:
  All arithmetic is float64. Rounding (ceiling) happens only when a quantity
  is reported, never during the simulation.

SEE ALSO:
  - preorder.go: Runs after the loop
  - params.go: Parameters consumed here
*/
package forecast

import (
	"fmt"
	"math"
	"time"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// FloorMode selects how the initial stock floor is derived.
type FloorMode string

const (
	// FloorTwiceConsumption uses 2 x the parameter year's cons_wip.
	FloorTwiceConsumption FloorMode = "twice_consumption"
	// FloorFixed uses a caller-supplied constant.
	FloorFixed FloorMode = "fixed"
)

// InitialStockFloor is the minimum opening stock of a simulation.
type InitialStockFloor struct {
	Mode  FloorMode
	Value float64 // used by FloorFixed
}

func (f InitialStockFloor) resolve(figs YearFigures) float64 {
	if f.Mode == FloorFixed {
		return f.Value
	}
	return 2 * figs.ConsWIP
}

// Config holds engine policy. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	HorizonDays             int // used when Request.End is zero
	MaxHorizonDays          int // 0 disables the guard
	BufferMultiplier        float64
	Floor                   InitialStockFloor
	StaticCurrentYearParams bool
}

const (
	DefaultHorizonDays      = 5 * DaysPerYear
	DefaultMaxHorizonDays   = 100 * DaysPerYear
	DefaultBufferMultiplier = 1.2
)

func DefaultConfig() Config {
	return Config{
		HorizonDays:             DefaultHorizonDays,
		MaxHorizonDays:          DefaultMaxHorizonDays,
		BufferMultiplier:        DefaultBufferMultiplier,
		Floor:                   InitialStockFloor{Mode: FloorTwiceConsumption},
		StaticCurrentYearParams: true,
	}
}

// Validate rejects configurations that cannot produce a valid run.
func (c Config) Validate() error {
	if c.HorizonDays < 0 {
		return &InvalidRangeError{Field: "horizon_days", Value: float64(c.HorizonDays), Want: ">= 0"}
	}
	if c.MaxHorizonDays < 0 {
		return &InvalidRangeError{Field: "max_horizon_days", Value: float64(c.MaxHorizonDays), Want: ">= 0"}
	}
	if c.BufferMultiplier < 0 {
		return &InvalidRangeError{Field: "buffer_multiplier", Value: c.BufferMultiplier, Want: ">= 0"}
	}
	switch c.Floor.Mode {
	case FloorTwiceConsumption:
	case FloorFixed:
		if c.Floor.Value < 0 {
			return &InvalidRangeError{Field: "initial_stock_floor", Value: c.Floor.Value, Want: ">= 0"}
		}
	default:
		return fmt.Errorf("%w: unknown initial stock floor mode %q", ErrInvalidRange, c.Floor.Mode)
	}
	return nil
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine runs daywise simulations. It holds no per-run state, so one Engine
// may serve concurrent runs over the same read-only Parameters.
type Engine struct {
	cfg   Config
	Clock func() time.Time
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, Clock: time.Now}
}

func (e *Engine) Config() Config { return e.cfg }

// Request bounds a run. Zero Start means today; zero End means Start plus the
// configured horizon. End is exclusive.
type Request struct {
	Start Date
	End   Date
}

// Forecast is the full output of one run.
type Forecast struct {
	MaterialID    MaterialID
	OEM           OEM
	Description   string
	LeadTimeDays  int
	ParameterYear int
	Horizon       Horizon
	Samples       []DaySample
	Reorder       *ReorderEvent // nil when stock never breaches the buffer
	PreOrder      PreOrderAdjustment
}

// Simulate runs the daywise forecast for one material.
func (e *Engine) Simulate(params Parameters, req Request) (*Forecast, error) {
	if params.IsEmpty() {
		return nil, &NotFoundError{Kind: "yearly parameters", MaterialID: params.MaterialID, OEM: params.OEM}
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	if params.LeadTimeDays < 0 {
		return nil, &InvalidRangeError{Field: "leadtime", Value: float64(params.LeadTimeDays), Want: ">= 0"}
	}

	horizon := e.horizon(req)
	days := horizon.Days()
	if e.cfg.MaxHorizonDays > 0 && days > e.cfg.MaxHorizonDays {
		return nil, &InvalidRangeError{Field: "horizon_days", Value: float64(days), Want: "<= max_horizon_days"}
	}

	paramYear := horizon.Start.Year()
	if e.cfg.StaticCurrentYearParams {
		paramYear = DateOf(e.now()).Year()
	}

	result := &Forecast{
		MaterialID:    params.MaterialID,
		OEM:           params.OEM,
		Description:   params.Description,
		LeadTimeDays:  params.LeadTimeDays,
		ParameterYear: paramYear,
		Horizon:       horizon,
	}
	if days <= 0 {
		result.Samples = []DaySample{}
		return result, nil
	}

	base, err := e.figures(params, paramYear)
	if err != nil {
		return nil, err
	}

	lead := params.LeadTimeDays
	samples := make([]DaySample, 0, days)
	arrivals := make(map[int]float64)
	var event *ReorderEvent

	for i := 0; i < days; i++ {
		date := horizon.Start.AddDays(i)
		figs := base
		if !e.cfg.StaticCurrentYearParams {
			if figs, err = e.figures(params, date.Year()); err != nil {
				return nil, err
			}
		}

		s := DaySample{
			Date:                   date,
			DailyConsumption:       figs.ConsWIP / DaysPerYear,
			AnticipatedConsumption: figs.ConsWOIP * float64(lead) / DaysPerYear,
			BufferStock:            figs.BufferStock,
		}

		if i == 0 {
			s.PresentStock = e.openingStock(base)
			s.StockAfterReplenishment = s.PresentStock
			samples = append(samples, s)
			continue
		}

		prev := samples[i-1]
		s.ArrivedQuantity = arrivals[i]
		s.PresentStock = math.Max(prev.PresentStock-prev.DailyConsumption, 0)
		s.StockAfterReplenishment = math.Max(prev.StockAfterReplenishment-prev.DailyConsumption, 0) + s.ArrivedQuantity

		if event == nil && s.PresentStock < s.BufferStock {
			qty := figs.ConsWIP + s.AnticipatedConsumption + s.BufferStock - s.PresentStock
			event = &ReorderEvent{
				ReorderPointDate: date,
				Day:              i,
				Quantity:         qty,
				LeadTimeDays:     lead,
				DeliveryDate:     date.AddDays(lead),
			}
			if lead == 0 {
				s.ArrivedQuantity += qty
				s.StockAfterReplenishment += qty
			} else {
				arrivals[i+lead] += qty
			}
		}
		samples = append(samples, s)
	}

	result.Samples = samples
	result.Reorder = event
	result.PreOrder = EvaluatePreOrder(samples, event)
	return result, nil
}

func (e *Engine) horizon(req Request) Horizon {
	start := req.Start
	if start.IsZero() {
		start = DateOf(e.now())
	}
	end := req.End
	if end.IsZero() {
		end = start.AddDays(e.cfg.HorizonDays)
	}
	return Horizon{Start: start, End: end}
}

func (e *Engine) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock()
}

func (e *Engine) figures(params Parameters, year int) (YearFigures, error) {
	var (
		figs YearFigures
		err  error
	)
	if e.cfg.StaticCurrentYearParams {
		figs, err = params.Year(year)
	} else {
		figs, err = params.NearestYear(year)
	}
	if err != nil {
		return YearFigures{}, err
	}
	if figs.ConsWIP < 0 {
		return YearFigures{}, &InvalidRangeError{Field: "cons_wip", Value: figs.ConsWIP, Want: ">= 0"}
	}
	if figs.ConsWOIP < 0 {
		return YearFigures{}, &InvalidRangeError{Field: "cons_woip", Value: figs.ConsWOIP, Want: ">= 0"}
	}
	if figs.BufferStock < 0 {
		return YearFigures{}, &InvalidRangeError{Field: "buffer_stock", Value: figs.BufferStock, Want: ">= 0"}
	}
	return figs, nil
}

func (e *Engine) openingStock(figs YearFigures) float64 {
	floor := e.cfg.Floor.resolve(figs)
	if figs.BufferStock >= floor {
		return figs.BufferStock * e.cfg.BufferMultiplier
	}
	return floor
}

// =============================================================================
// CHART SERIES - Split for display
// =============================================================================

type SeriesPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// Chart splits the trajectories at the delivery date: present stock is shown
// before delivery, stock after replenishment from delivery on.
type Chart struct {
	BufferStock            []SeriesPoint `json:"buffer_stock"`
	PresentBeforeDelivery  []SeriesPoint `json:"present_stock"`
	StockAfterFromDelivery []SeriesPoint `json:"stock_after_replenishment"`
}

func (f *Forecast) Chart() Chart {
	c := Chart{
		BufferStock:            make([]SeriesPoint, 0, len(f.Samples)),
		PresentBeforeDelivery:  []SeriesPoint{},
		StockAfterFromDelivery: []SeriesPoint{},
	}
	for _, s := range f.Samples {
		c.BufferStock = append(c.BufferStock, SeriesPoint{Date: s.Date, Value: s.BufferStock})
		if f.Reorder == nil || s.Date.Before(f.Reorder.DeliveryDate) {
			c.PresentBeforeDelivery = append(c.PresentBeforeDelivery, SeriesPoint{Date: s.Date, Value: s.PresentStock})
		} else {
			c.StockAfterFromDelivery = append(c.StockAfterFromDelivery, SeriesPoint{Date: s.Date, Value: s.StockAfterReplenishment})
		}
	}
	return c
}
