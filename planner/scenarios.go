/*
scenarios.go - Demo reference tables

PURPOSE:
  Pre-built table sets that exercise specific engine behaviours. Loading a
  scenario writes the four reference tables as CSV to the configured paths
  and invalidates the cache, so the next forecast reads them.

AVAILABLE SCENARIOS:
  reorder-and-preorder:  10/day consumption, stock runs out before the next
                         cycle, a pre-order is required
  stock-remains:         1/day consumption with a deep buffer, no pre-order
  slow-movers:           Consumption too low to ever breach the buffer

HOW SCENARIOS WORK:
  1. Build rows for each material for six years starting last year
  2. Write yearly, reliability, lead-time, master and stock value tables
  3. Invalidate every cached table

NOTE:
  Loading overwrites the configured table files. Only use in development or
  demo environments.

SEE ALSO:
  - service.go: LoadScenario
  - api/handlers.go: ListScenarios, LoadScenario handlers
*/
package planner

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/tables"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type Scenario struct {
	ID          string
	Name        string
	Description string
	Materials   []DemoMaterial
}

// DemoMaterial is one material in a scenario. Growth scales consumption and
// buffer stock for every year after the first.
type DemoMaterial struct {
	ID          forecast.MaterialID
	OEM         forecast.OEM
	Description string
	MfrPartNo   string
	ConsWIP     float64
	ConsWOIP    float64
	BufferStock float64
	LeadTime    float64
	Growth      float64
	Reliability float64
	PRToPO      float64
	POToGR      float64
	GRToGI      float64
	UnitPrice   float64
}

const scenarioYears = 6

var scenarios = []Scenario{
	{
		ID:          "reorder-and-preorder",
		Name:        "Reorder and Pre-order",
		Description: "Fast mover that runs dry before the following cycle",
		Materials: []DemoMaterial{
			{ID: "100234", OEM: "atlas", Description: "Ball bearing 6204", MfrPartNo: "6204-2RS",
				ConsWIP: 3650, ConsWOIP: 3650, BufferStock: 100, LeadTime: 30, Growth: 1,
				Reliability: 0.95, PRToPO: 5, POToGR: 20, GRToGI: 5, UnitPrice: 850},
			{ID: "100235", OEM: "atlas", Description: "Hydraulic filter", MfrPartNo: "HF-6553",
				ConsWIP: 1460, ConsWOIP: 1200, BufferStock: 300, LeadTime: 60, Growth: 1.05,
				Reliability: 0.9, PRToPO: 10, POToGR: 40, GRToGI: 10, UnitPrice: 4200},
		},
	},
	{
		ID:          "stock-remains",
		Name:        "Stock Remains",
		Description: "Deep buffer keeps stock on hand past the lookahead date",
		Materials: []DemoMaterial{
			{ID: "200100", OEM: "zenith", Description: "Drive belt", MfrPartNo: "DB-1180",
				ConsWIP: 365, ConsWOIP: 365, BufferStock: 500, LeadTime: 10, Growth: 1,
				Reliability: 0.99, PRToPO: 2, POToGR: 6, GRToGI: 2, UnitPrice: 1300},
		},
	},
	{
		ID:          "slow-movers",
		Name:        "Slow Movers",
		Description: "Insurance spares that never breach the buffer",
		Materials: []DemoMaterial{
			{ID: "300001", OEM: "atlas", Description: "Gearbox assembly", MfrPartNo: "GB-900",
				ConsWIP: 0, ConsWOIP: 0, BufferStock: 2, LeadTime: 180, Growth: 1,
				Reliability: 0.999, PRToPO: 20, POToGR: 140, GRToGI: 20, UnitPrice: 2500000},
		},
	},
}

// Scenarios returns the available demo scenarios.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

func FindScenario(id string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// =============================================================================
// LOADING
// =============================================================================

// LoadScenario writes the scenario's tables to the configured paths and
// invalidates the cache.
func (s *Service) LoadScenario(ctx context.Context, id string) (Scenario, error) {
	if err := ctx.Err(); err != nil {
		return Scenario{}, err
	}
	sc, ok := FindScenario(id)
	if !ok {
		return Scenario{}, fmt.Errorf("%w: scenario %q", forecast.ErrNotFound, id)
	}

	if err := sc.Write(s.Paths, s.today().Year()-1); err != nil {
		return Scenario{}, err
	}
	s.Tables.InvalidateAll()

	s.Log.Info().Str("scenario", sc.ID).Int("materials", len(sc.Materials)).Msg("scenario loaded")
	return sc, nil
}

// Write renders the scenario as CSV tables. Empty paths are skipped.
func (sc Scenario) Write(paths TablePaths, firstYear int) error {
	files := []struct {
		path string
		rows [][]string
	}{
		{paths.Yearly, sc.yearlyRows(firstYear)},
		{paths.Reliability, sc.reliabilityRows()},
		{paths.LeadTime, sc.leadTimeRows()},
		{paths.MaterialMaster, sc.masterRows()},
		{paths.StockValue, sc.stockValueRows()},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if err := writeCSV(f.path, f.rows); err != nil {
			return err
		}
	}
	return nil
}

func (sc Scenario) yearlyRows(firstYear int) [][]string {
	rows := [][]string{{
		tables.ColMaterial, tables.ColOEM, tables.ColYear, tables.ColConsWIP, tables.ColConsWOIP,
		tables.ColBufferStock, tables.ColNetReq, tables.ColPresentStock, tables.ColLeadTime, tables.ColDescription,
	}}
	for _, m := range sc.Materials {
		scale := 1.0
		for y := 0; y < scenarioYears; y++ {
			cons, woip, buffer := m.ConsWIP*scale, m.ConsWOIP*scale, m.BufferStock*scale
			rows = append(rows, []string{
				string(m.ID), string(m.OEM), strconv.Itoa(firstYear + y),
				num(cons), num(woip), num(buffer),
				num(cons + buffer), num(buffer), num(m.LeadTime), m.Description,
			})
			if m.Growth > 0 {
				scale *= m.Growth
			}
		}
	}
	return rows
}

func (sc Scenario) reliabilityRows() [][]string {
	rows := [][]string{{tables.ColMaterial, tables.ColReliability}}
	for _, m := range sc.Materials {
		rows = append(rows, []string{string(m.ID), num(m.Reliability)})
	}
	return rows
}

func (sc Scenario) leadTimeRows() [][]string {
	rows := [][]string{{tables.ColMaterial, tables.ColPRToPO, tables.ColPOToGR, tables.ColGRToGI}}
	for _, m := range sc.Materials {
		rows = append(rows, []string{string(m.ID), num(m.PRToPO), num(m.POToGR), num(m.GRToGI)})
	}
	return rows
}

func (sc Scenario) masterRows() [][]string {
	rows := [][]string{{tables.ColMaterial, "Description", "Mfr Part No", "Manufacturer Name"}}
	for _, m := range sc.Materials {
		rows = append(rows, []string{string(m.ID), m.Description, m.MfrPartNo, string(m.OEM)})
	}
	return rows
}

// stockValueRows values the buffer stock at unit price: the previous
// valuation at the first year's buffer, the current one after one year of
// growth.
func (sc Scenario) stockValueRows() [][]string {
	rows := [][]string{{tables.ColMaterial, tables.ColStockValuePrevious, tables.ColStockValueCurrent}}
	for _, m := range sc.Materials {
		growth := m.Growth
		if growth <= 0 {
			growth = 1
		}
		prev := decimal.NewFromFloat(m.BufferStock).Mul(decimal.NewFromFloat(m.UnitPrice))
		cur := prev.Mul(decimal.NewFromFloat(growth))
		rows = append(rows, []string{string(m.ID), prev.String(), cur.String()})
	}
	return rows
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func writeCSV(path string, rows [][]string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &forecast.IOFailure{Op: "write", Path: path, Err: err}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return &forecast.IOFailure{Op: "write", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &forecast.IOFailure{Op: "write", Path: path, Err: cerr}
		}
	}()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return &forecast.IOFailure{Op: "write", Path: path, Err: err}
	}
	return nil
}
