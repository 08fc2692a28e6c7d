package tables

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/accountrms/forecasting/forecast"
)

// Column names as they appear in the reference files.
const (
	ColMaterial     = "Material No"
	ColOEM          = "oem"
	ColYear         = "year"
	ColConsWIP      = "cons_wip"
	ColConsWOIP     = "cons_woip"
	ColBufferStock  = "buffer_stock"
	ColNetReq       = "net_req"
	ColPresentStock = "present_stock"
	ColLeadTime     = "leadtime"
	ColDescription  = "Desc"
	ColReliability  = "Reliability_365days"
	ColPRToPO       = "prpo_forecasted"
	ColPOToGR       = "pogr_forecasted"
	ColGRToGI       = "grgi_forecasted"

	ColStockValuePrevious = "ValStckVal"
	ColStockValueCurrent  = "Val.Stock in May 2025"
)

// =============================================================================
// YEARLY TABLE
// =============================================================================

// LoadYearly reads the per-material, per-year consumption table.
func LoadYearly(path string) ([]forecast.MaterialYearlyRecord, error) {
	s, err := ReadSheet(path)
	if err != nil {
		return nil, err
	}
	return ParseYearly(s)
}

func ParseYearly(s *Sheet) ([]forecast.MaterialYearlyRecord, error) {
	cols, err := s.columns(ColMaterial, ColOEM, ColYear, ColConsWIP, ColConsWOIP, ColBufferStock, ColLeadTime)
	if err != nil {
		return nil, err
	}
	netReq := s.OptionalColumn(ColNetReq)
	present := s.OptionalColumn(ColPresentStock)
	desc := s.OptionalColumn(ColDescription)

	out := make([]forecast.MaterialYearlyRecord, 0, len(s.Rows))
	for i, row := range s.Rows {
		rec := forecast.MaterialYearlyRecord{
			MaterialID:  materialID(s.text(row, cols[ColMaterial])),
			OEM:         forecast.OEM(s.text(row, cols[ColOEM])),
			Description: s.text(row, desc),
		}
		if rec.Year, err = s.integer(i, cols[ColYear], ColYear); err != nil {
			return nil, err
		}
		if rec.ConsWIP, err = s.number(i, cols[ColConsWIP], ColConsWIP); err != nil {
			return nil, err
		}
		if rec.ConsWOIP, err = s.number(i, cols[ColConsWOIP], ColConsWOIP); err != nil {
			return nil, err
		}
		if rec.BufferStock, err = s.number(i, cols[ColBufferStock], ColBufferStock); err != nil {
			return nil, err
		}
		if rec.LeadTime, err = s.number(i, cols[ColLeadTime], ColLeadTime); err != nil {
			return nil, err
		}
		if rec.NetReq, err = s.optionalNumber(i, netReq, ColNetReq); err != nil {
			return nil, err
		}
		if rec.PresentStock, err = s.optionalNumber(i, present, ColPresentStock); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// =============================================================================
// RELIABILITY TABLE
// =============================================================================

func LoadReliability(path string) ([]forecast.ReliabilityRecord, error) {
	s, err := ReadSheet(path)
	if err != nil {
		return nil, err
	}
	return ParseReliability(s)
}

func ParseReliability(s *Sheet) ([]forecast.ReliabilityRecord, error) {
	cols, err := s.columns(ColMaterial, ColReliability)
	if err != nil {
		return nil, err
	}

	out := make([]forecast.ReliabilityRecord, 0, len(s.Rows))
	for i, row := range s.Rows {
		factor, err := s.number(i, cols[ColReliability], ColReliability)
		if err != nil {
			return nil, err
		}
		out = append(out, forecast.ReliabilityRecord{
			MaterialID:         materialID(s.text(row, cols[ColMaterial])),
			Reliability365Days: factor,
		})
	}
	return out, nil
}

// =============================================================================
// LEAD-TIME BREAKDOWN TABLE
// =============================================================================

func LoadLeadTimes(path string) ([]forecast.LeadTimeBreakdown, error) {
	s, err := ReadSheet(path)
	if err != nil {
		return nil, err
	}
	return ParseLeadTimes(s)
}

func ParseLeadTimes(s *Sheet) ([]forecast.LeadTimeBreakdown, error) {
	cols, err := s.columns(ColMaterial, ColPRToPO, ColPOToGR, ColGRToGI)
	if err != nil {
		return nil, err
	}

	out := make([]forecast.LeadTimeBreakdown, 0, len(s.Rows))
	for i, row := range s.Rows {
		b := forecast.LeadTimeBreakdown{MaterialID: materialID(s.text(row, cols[ColMaterial]))}
		if b.PRToPO, err = s.optionalNumber(i, cols[ColPRToPO], ColPRToPO); err != nil {
			return nil, err
		}
		if b.POToGR, err = s.optionalNumber(i, cols[ColPOToGR], ColPOToGR); err != nil {
			return nil, err
		}
		if b.GRToGI, err = s.optionalNumber(i, cols[ColGRToGI], ColGRToGI); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// =============================================================================
// MATERIAL MASTER
// =============================================================================

// LoadMaterialMaster keeps every column as a display attribute.
func LoadMaterialMaster(path string) ([]forecast.MaterialMaster, error) {
	s, err := ReadSheet(path)
	if err != nil {
		return nil, err
	}
	return ParseMaterialMaster(s)
}

func ParseMaterialMaster(s *Sheet) ([]forecast.MaterialMaster, error) {
	idCol, err := s.Column(ColMaterial)
	if err != nil {
		return nil, err
	}

	out := make([]forecast.MaterialMaster, 0, len(s.Rows))
	for _, row := range s.Rows {
		m := forecast.MaterialMaster{MaterialID: materialID(s.text(row, idCol))}
		for c, name := range s.Header {
			if c == idCol || name == "" {
				continue
			}
			m.Attributes = append(m.Attributes, forecast.Attribute{Name: name, Value: s.text(row, c)})
		}
		out = append(out, m)
	}
	return out, nil
}

// =============================================================================
// LOOKUPS
// =============================================================================

func FindLeadTime(table []forecast.LeadTimeBreakdown, material forecast.MaterialID) (forecast.LeadTimeBreakdown, error) {
	for _, b := range table {
		if b.MaterialID == material {
			return b, nil
		}
	}
	return forecast.LeadTimeBreakdown{}, &forecast.NotFoundError{Kind: "lead time", MaterialID: material}
}

func FindMaterial(table []forecast.MaterialMaster, material forecast.MaterialID) (forecast.MaterialMaster, error) {
	for _, m := range table {
		if m.MaterialID == material {
			return m, nil
		}
	}
	return forecast.MaterialMaster{}, &forecast.NotFoundError{Kind: "material", MaterialID: material}
}

// =============================================================================
// STOCK VALUE TABLE
// =============================================================================

func LoadStockValue(path string) (forecast.StockValue, error) {
	s, err := ReadSheet(path)
	if err != nil {
		return forecast.StockValue{}, err
	}
	return ParseStockValue(s)
}

// ParseStockValue sums both valuation columns. Currency symbols, separators
// and any other non-digit characters are stripped first; cells that still do
// not read as a number are skipped.
func ParseStockValue(s *Sheet) (forecast.StockValue, error) {
	cols, err := s.columns(ColStockValuePrevious, ColStockValueCurrent)
	if err != nil {
		return forecast.StockValue{}, err
	}

	total := forecast.StockValue{Previous: decimal.Zero, Current: decimal.Zero}
	for _, row := range s.Rows {
		if v, ok := cleanAmount(s.text(row, cols[ColStockValuePrevious])); ok {
			total.Previous = total.Previous.Add(v)
		}
		if v, ok := cleanAmount(s.text(row, cols[ColStockValueCurrent])); ok {
			total.Current = total.Current.Add(v)
		}
		total.Rows++
	}
	return total, nil
}

func cleanAmount(raw string) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || b.String() == "." {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}
