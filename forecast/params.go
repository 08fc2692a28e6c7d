/*
params.go - Policy parameter resolution

PURPOSE:
  Extracts the per-material simulation parameters from the yearly reference
  table: lead time, description, and the consumption/buffer figures for each
  year. Resolution is side-effect free; the table is never modified.

LOOKUP RULES:
  - Rows are selected by (material, oem); no match is a NotFoundError
  - Lead time comes from the first matching row, truncated to whole days
  - Year figures are indexed by year; Year(y) fails with NotFoundError
  - NearestYear(y) carries the closest earlier year forward, falling back to
    the closest later year (used by the date-indexed policy)

SEE ALSO:
  - engine.go: Consumes Parameters
  - tables/loader.go: Produces the reference rows
*/
package forecast

import "sort"

// YearFigures are the consumption and stock figures for one year.
type YearFigures struct {
	Year         int
	ConsWIP      float64
	ConsWOIP     float64
	BufferStock  float64
	NetReq       float64
	PresentStock float64
}

// Parameters are the resolved simulation inputs for one material.
type Parameters struct {
	MaterialID   MaterialID
	OEM          OEM
	Description  string
	LeadTimeDays int
	years        map[int]YearFigures
	ordered      []int
}

// Resolve selects the rows for (material, oem) and indexes them by year.
func Resolve(table []MaterialYearlyRecord, material MaterialID, oem OEM) (Parameters, error) {
	params := Parameters{
		MaterialID: material,
		OEM:        oem,
		years:      make(map[int]YearFigures),
	}

	first := true
	for _, row := range table {
		if row.MaterialID != material || row.OEM != oem {
			continue
		}
		if first {
			if row.LeadTime < 0 {
				return Parameters{}, &InvalidRangeError{Field: "leadtime", Value: row.LeadTime, Want: ">= 0"}
			}
			params.LeadTimeDays = int(row.LeadTime)
			params.Description = row.Description
			first = false
		}
		if _, dup := params.years[row.Year]; dup {
			// first row for a year wins, matching positional selection
			continue
		}
		params.years[row.Year] = YearFigures{
			Year:         row.Year,
			ConsWIP:      row.ConsWIP,
			ConsWOIP:     row.ConsWOIP,
			BufferStock:  row.BufferStock,
			NetReq:       row.NetReq,
			PresentStock: row.PresentStock,
		}
		params.ordered = append(params.ordered, row.Year)
	}

	if first {
		return Parameters{}, &NotFoundError{Kind: "yearly parameters", MaterialID: material, OEM: oem}
	}
	sort.Ints(params.ordered)
	return params, nil
}

// IsEmpty reports whether no rows were resolved.
func (p Parameters) IsEmpty() bool { return len(p.years) == 0 }

// Year returns the figures for exactly year y.
func (p Parameters) Year(y int) (YearFigures, error) {
	f, ok := p.years[y]
	if !ok {
		return YearFigures{}, &NotFoundError{Kind: "yearly parameters", MaterialID: p.MaterialID, OEM: p.OEM, Year: y}
	}
	return f, nil
}

// NearestYear returns the figures for y, or the closest earlier year, or
// failing that the closest later year.
func (p Parameters) NearestYear(y int) (YearFigures, error) {
	if f, ok := p.years[y]; ok {
		return f, nil
	}
	if len(p.ordered) == 0 {
		return YearFigures{}, &NotFoundError{Kind: "yearly parameters", MaterialID: p.MaterialID, OEM: p.OEM, Year: y}
	}
	i := sort.SearchInts(p.ordered, y)
	if i > 0 {
		return p.years[p.ordered[i-1]], nil
	}
	return p.years[p.ordered[0]], nil
}

// Years returns the resolved figures sorted by year.
func (p Parameters) Years() []YearFigures {
	out := make([]YearFigures, 0, len(p.ordered))
	for _, y := range p.ordered {
		out = append(out, p.years[y])
	}
	return out
}
