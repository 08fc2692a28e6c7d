package forecast

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STOCK VALUE - Inventory valuation summary
// =============================================================================

// StockValue totals the valuated stock of the whole inventory at two
// snapshots: the previous valuation and the current one.
type StockValue struct {
	Previous decimal.Decimal
	Current  decimal.Decimal
	Rows     int
}

// ChangePercent is the relative change from Previous to Current, rounded to
// 2 places. ok is false when there is no previous value to compare against.
func (v StockValue) ChangePercent() (pct decimal.Decimal, ok bool) {
	if v.Previous.IsZero() {
		return decimal.Zero, false
	}
	return v.Current.Sub(v.Previous).Div(v.Previous).Mul(decimal.NewFromInt(100)).Round(2), true
}

var (
	crore = decimal.NewFromInt(10_000_000)
	lakh  = decimal.NewFromInt(100_000)
)

// FormatIndianUnits renders an amount in crore or lakh, with 2 decimals
// unless the scaled value is whole. Amounts below one lakh are written in
// full with thousands separators.
//
//	110730000 -> "11.07 crore", 500000 -> "5 lakh", 45210.4 -> "45,210"
func FormatIndianUnits(v decimal.Decimal) string {
	for _, unit := range []struct {
		size decimal.Decimal
		name string
	}{{crore, "crore"}, {lakh, "lakh"}} {
		scaled := v.Div(unit.size)
		if scaled.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			if scaled.IsInteger() {
				return scaled.StringFixed(0) + " " + unit.name
			}
			return scaled.StringFixed(2) + " " + unit.name
		}
	}
	return groupThousands(v.Round(0).StringFixed(0))
}

func groupThousands(digits string) string {
	sign := ""
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}
