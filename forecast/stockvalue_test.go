package forecast_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/accountrms/forecasting/forecast"
)

func TestFormatIndianUnits(t *testing.T) {
	cases := []struct {
		amount   string
		expected string
	}{
		{"1107300000", "110.73 crore"},
		{"500000000", "50 crore"},
		{"10000000", "1 crore"},
		{"9999999", "100.00 lakh"},
		{"500000", "5 lakh"},
		{"1234567", "12.35 lakh"},
		{"99999.4", "99,999"},
		{"45210.6", "45,211"},
		{"999", "999"},
		{"0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			assert.Equal(t, tc.expected, forecast.FormatIndianUnits(decimal.RequireFromString(tc.amount)))
		})
	}
}

func TestStockValue_ChangePercent(t *testing.T) {
	v := forecast.StockValue{Previous: decimal.NewFromInt(500), Current: decimal.NewFromInt(600)}
	pct, ok := v.ChangePercent()
	assert.True(t, ok)
	assert.Equal(t, "20", pct.String())

	_, ok = forecast.StockValue{Current: decimal.NewFromInt(600)}.ChangePercent()
	assert.False(t, ok)
}
