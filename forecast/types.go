/*
Package forecast provides the core inventory simulation engine.

PURPOSE:
  This package contains the algorithms that turn a material's yearly
  consumption, buffer-stock policy and supplier lead time into a daily stock
  trajectory, a reorder event, and a pre-order decision. It also holds the two
  independent side calculations: reliability-driven demand and the low-stock
  notifier.

KEY CONCEPTS IN THIS FILE (types.go):
  - MaterialYearlyRecord: One row of the yearly reference table
  - DaySample: One simulated day (both stock trajectories)
  - ReorderEvent: The first breach of the buffer stock in a run
  - PreOrderAdjustment: Whether a second, earlier replenishment is needed
  - NotificationRecord: One low-stock event in the append-only log

DESIGN PRINCIPLES:
  1. Pure simulation: no I/O inside the engine, tables are passed in
  2. Float arithmetic during simulation, decimal at the reporting boundary
  3. Non-negative stock: every trajectory is clamped at zero
  4. One primary reorder per run: later breaches are not acted on

USAGE:
  params, err := forecast.Resolve(rows, "100234", "atlas")
  engine := forecast.NewEngine(forecast.DefaultConfig())
  result, err := engine.Simulate(params, forecast.Request{})

SEE ALSO:
  - params.go: Policy parameter resolution
  - engine.go: Daywise forecast engine
  - preorder.go: Pre-order evaluation
  - notify.go: Low-stock notifier and log interface
*/
package forecast

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type MaterialID string
type OEM string

// DaysPerYear is the divisor used for daily rates. Leap years are ignored.
const DaysPerYear = 365

// =============================================================================
// REFERENCE DATA
// =============================================================================

// MaterialYearlyRecord is one row of the yearly reference table.
type MaterialYearlyRecord struct {
	MaterialID   MaterialID
	OEM          OEM
	Year         int
	ConsWIP      float64 // consumption including in-progress orders
	ConsWOIP     float64 // consumption without in-progress orders
	BufferStock  float64
	NetReq       float64
	PresentStock float64
	LeadTime     float64 // days; cast to int on resolution
	Description  string
}

// ReliabilityRecord holds the fraction of a population that survives 365 days.
type ReliabilityRecord struct {
	MaterialID         MaterialID
	Reliability365Days float64
}

// LeadTimeBreakdown splits the total lead time into its forecast stages.
type LeadTimeBreakdown struct {
	MaterialID MaterialID
	PRToPO     float64 // file processing: purchase requisition to purchase order
	POToGR     float64 // manufacturer lead time: purchase order to goods receipt
	GRToGI     float64 // logistics delay: goods receipt to goods issue
}

func (b LeadTimeBreakdown) Total() float64 { return b.PRToPO + b.POToGR + b.GRToGI }

// MaterialMaster carries descriptive attributes for display. Column order is
// preserved from the source.
type MaterialMaster struct {
	MaterialID MaterialID
	Attributes []Attribute
}

type Attribute struct {
	Name  string
	Value string
}

// Get returns the value of the named attribute.
func (m MaterialMaster) Get(name string) (string, bool) {
	for _, a := range m.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// =============================================================================
// SIMULATION OUTPUT
// =============================================================================

// DaySample is one simulated day. Samples form a strictly date-ordered
// sequence where index 0 is the simulation start.
type DaySample struct {
	Date                    Date
	DailyConsumption        float64
	AnticipatedConsumption  float64
	BufferStock             float64
	PresentStock            float64 // unconstrained depletion, never replenished
	StockAfterReplenishment float64
	ArrivedQuantity         float64
}

// ReorderEvent is the first day present stock falls strictly below buffer
// stock. It is set at most once per run and never modified afterwards.
type ReorderEvent struct {
	ReorderPointDate Date
	Day              int // index into the sample sequence
	Quantity         float64
	LeadTimeDays     int
	DeliveryDate     Date
}

// ReportedQuantity is the reorder quantity rounded up to avoid under-ordering.
func (e ReorderEvent) ReportedQuantity() decimal.Decimal {
	return ceilQuantity(e.Quantity)
}

// PreOrderAdjustment reports whether a second replenishment is needed before
// the cycle after next. UpdatedQuantity is zero when not required.
type PreOrderAdjustment struct {
	Required        bool
	LookaheadDate   Date
	UpdatedQuantity float64
}

func (p PreOrderAdjustment) ReportedQuantity() decimal.Decimal {
	return ceilQuantity(p.UpdatedQuantity)
}

func ceilQuantity(q float64) decimal.Decimal {
	d := decimal.NewFromFloat(q).Ceil()
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// NOTIFICATION - Append-only low-stock event
// =============================================================================

type NotificationRecord struct {
	Timestamp    time.Time
	MaterialID   MaterialID
	PresentStock float64
	SafetyStock  float64
}
