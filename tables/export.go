package tables

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/accountrms/forecasting/forecast"
)

// DaywiseHeader is the column layout of an exported forecast.
var DaywiseHeader = []string{
	ColMaterial, ColDescription, ColLeadTime, "date", "daily_cons", "anticipated_consum",
	ColBufferStock, ColPresentStock, "stock_after", "arrived",
}

func daywiseRows(f *forecast.Forecast) [][]string {
	rows := make([][]string, 0, len(f.Samples))
	lead := strconv.Itoa(f.LeadTimeDays)
	for _, s := range f.Samples {
		rows = append(rows, []string{
			string(f.MaterialID), f.Description, lead, s.Date.String(),
			formatFloat(s.DailyConsumption), formatFloat(s.AnticipatedConsumption),
			formatFloat(s.BufferStock), formatFloat(s.PresentStock),
			formatFloat(s.StockAfterReplenishment), formatFloat(s.ArrivedQuantity),
		})
	}
	return rows
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// WriteDaywiseCSV streams the sample sequence as CSV.
func WriteDaywiseCSV(w io.Writer, f *forecast.Forecast) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DaywiseHeader); err != nil {
		return err
	}
	if err := cw.WriteAll(daywiseRows(f)); err != nil {
		return err
	}
	return cw.Error()
}

// ExportDaywise writes the sample sequence to path, as XLSX when the
// extension says so and CSV otherwise.
func ExportDaywise(path string, f *forecast.Forecast) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &forecast.IOFailure{Op: "export", Path: path, Err: err}
		}
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return exportXLSX(path, f)
	}

	out, err := os.Create(path)
	if err != nil {
		return &forecast.IOFailure{Op: "export", Path: path, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &forecast.IOFailure{Op: "export", Path: path, Err: cerr}
		}
	}()
	if err := WriteDaywiseCSV(out, f); err != nil {
		return &forecast.IOFailure{Op: "export", Path: path, Err: err}
	}
	return nil
}

func exportXLSX(path string, f *forecast.Forecast) (err error) {
	x := excelize.NewFile()
	defer func() {
		if cerr := x.Close(); cerr != nil && err == nil {
			err = &forecast.IOFailure{Op: "export", Path: path, Err: cerr}
		}
	}()

	sheet := x.GetSheetName(0)
	sw, err := x.NewStreamWriter(sheet)
	if err != nil {
		return &forecast.IOFailure{Op: "export", Path: path, Err: err}
	}

	header := make([]any, len(DaywiseHeader))
	for i, h := range DaywiseHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return &forecast.IOFailure{Op: "export", Path: path, Err: err}
	}

	for i, s := range f.Samples {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return &forecast.IOFailure{Op: "export", Path: path, Err: err}
		}
		row := []any{
			string(f.MaterialID), f.Description, f.LeadTimeDays, s.Date.String(),
			s.DailyConsumption, s.AnticipatedConsumption, s.BufferStock,
			s.PresentStock, s.StockAfterReplenishment, s.ArrivedQuantity,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return &forecast.IOFailure{Op: "export", Path: path, Err: err}
		}
	}
	if err := sw.Flush(); err != nil {
		return &forecast.IOFailure{Op: "export", Path: path, Err: err}
	}
	if err := x.SaveAs(path); err != nil {
		return &forecast.IOFailure{Op: "export", Path: path, Err: err}
	}
	return nil
}
