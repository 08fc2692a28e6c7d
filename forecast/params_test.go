package forecast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountrms/forecasting/forecast"
)

func TestResolve_SelectsMaterialAndOEM(t *testing.T) {
	params, err := forecast.Resolve(tenPerDayTable(), "M-100", "atlas")
	require.NoError(t, err)

	assert.Equal(t, 30, params.LeadTimeDays)
	assert.Equal(t, "Bearing", params.Description)

	years := params.Years()
	require.Len(t, years, 2)
	assert.Equal(t, 2025, years[0].Year)
	assert.Equal(t, 2026, years[1].Year)

	other, err := forecast.Resolve(tenPerDayTable(), "M-100", "other")
	require.NoError(t, err)
	assert.Equal(t, 5, other.LeadTimeDays)
}

func TestResolve_NoRows_NotFound(t *testing.T) {
	// GIVEN: A table without the requested material
	// WHEN: Resolving
	// THEN: NotFoundError naming the material and OEM

	_, err := forecast.Resolve(tenPerDayTable(), "M-404", "atlas")

	var nf *forecast.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, forecast.MaterialID("M-404"), nf.MaterialID)
	assert.Equal(t, forecast.OEM("atlas"), nf.OEM)

	_, err = forecast.Resolve(tenPerDayTable(), "M-100", "unknown-oem")
	assert.True(t, forecast.IsNotFound(err))
}

func TestResolve_LeadTimeTruncatedFromFirstRow(t *testing.T) {
	table := []forecast.MaterialYearlyRecord{
		{MaterialID: "M", OEM: "o", Year: 2026, LeadTime: 14.9},
		{MaterialID: "M", OEM: "o", Year: 2025, LeadTime: 90},
	}
	params, err := forecast.Resolve(table, "M", "o")
	require.NoError(t, err)
	assert.Equal(t, 14, params.LeadTimeDays)
}

func TestResolve_NegativeLeadTime_InvalidRange(t *testing.T) {
	table := []forecast.MaterialYearlyRecord{{MaterialID: "M", OEM: "o", Year: 2025, LeadTime: -1}}
	_, err := forecast.Resolve(table, "M", "o")
	assert.ErrorIs(t, err, forecast.ErrInvalidRange)
}

func TestResolve_DuplicateYear_FirstRowWins(t *testing.T) {
	table := []forecast.MaterialYearlyRecord{
		{MaterialID: "M", OEM: "o", Year: 2025, ConsWIP: 100},
		{MaterialID: "M", OEM: "o", Year: 2025, ConsWIP: 999},
	}
	params, err := forecast.Resolve(table, "M", "o")
	require.NoError(t, err)

	figs, err := params.Year(2025)
	require.NoError(t, err)
	assert.Equal(t, 100.0, figs.ConsWIP)
	assert.Len(t, params.Years(), 1)
}

func TestParameters_NearestYear(t *testing.T) {
	table := []forecast.MaterialYearlyRecord{
		{MaterialID: "M", OEM: "o", Year: 2024, ConsWIP: 1},
		{MaterialID: "M", OEM: "o", Year: 2026, ConsWIP: 3},
	}
	params, err := forecast.Resolve(table, "M", "o")
	require.NoError(t, err)

	cases := map[int]float64{
		2020: 1, // before the first year: closest later
		2024: 1,
		2025: 1, // gap: carried forward
		2026: 3,
		2040: 3,
	}
	for year, want := range cases {
		figs, err := params.NearestYear(year)
		require.NoError(t, err)
		assert.Equal(t, want, figs.ConsWIP, "year %d", year)
	}

	_, err = params.Year(2025)
	assert.True(t, forecast.IsNotFound(err))
}
