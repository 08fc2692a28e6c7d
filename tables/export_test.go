package tables_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/tables"
)

func sampleForecast(t *testing.T) *forecast.Forecast {
	t.Helper()
	rows := []forecast.MaterialYearlyRecord{
		{MaterialID: "100234", OEM: "atlas", Year: 2025, ConsWIP: 3650, ConsWOIP: 3650, BufferStock: 100, LeadTime: 30, Description: "Bearing"},
	}
	params, err := forecast.Resolve(rows, "100234", "atlas")
	require.NoError(t, err)

	cfg := forecast.DefaultConfig()
	cfg.Floor = forecast.InitialStockFloor{Mode: forecast.FloorFixed, Value: 120}
	start := forecast.NewDate(2025, time.January, 1)
	engine := forecast.NewEngine(cfg)
	engine.Clock = func() time.Time { return time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC) }
	f, err := engine.Simulate(params, forecast.Request{Start: start, End: start.AddDays(40)})
	require.NoError(t, err)
	return f
}

func TestWriteDaywiseCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, tables.WriteDaywiseCSV(&buf, sampleForecast(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 41)
	assert.Equal(t, "Material No,Desc,leadtime,date,daily_cons,anticipated_consum,buffer_stock,present_stock,stock_after,arrived", lines[0])
	assert.Equal(t, "100234,Bearing,30,2025-01-01,10,300,100,120,120,0", lines[1])
	assert.Equal(t, "100234,Bearing,30,2025-02-03,10,300,100,0,3960,3960", lines[34])
}

func TestExportDaywise_XLSXReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "daywise.xlsx")
	require.NoError(t, tables.ExportDaywise(path, sampleForecast(t)))

	sheet, err := tables.ReadSheet(path)
	require.NoError(t, err)
	assert.Equal(t, tables.DaywiseHeader, sheet.Header)
	require.Len(t, sheet.Rows, 40)
	assert.Equal(t, "2025-01-01", sheet.Rows[0][3])
	assert.Equal(t, "3960", sheet.Rows[33][8])
}

func TestExportDaywise_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daywise.csv")
	require.NoError(t, tables.ExportDaywise(path, sampleForecast(t)))

	sheet, err := tables.ReadSheet(path)
	require.NoError(t, err)
	assert.Len(t, sheet.Rows, 40)
}

func TestExportDaywise_FailedFlushIsIOFailure(t *testing.T) {
	// GIVEN: A target device that accepts opens but rejects writes
	// WHEN: Exporting a forecast to it
	// THEN: The failure surfaces as an export IOFailure

	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}

	err := tables.ExportDaywise("/dev/full", sampleForecast(t))
	require.Error(t, err)
	var ioErr *forecast.IOFailure
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "export", ioErr.Op)
	assert.True(t, forecast.IsRetryable(err))
}
