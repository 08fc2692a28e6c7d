package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/tables"
)

func materialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "material",
			Aliases:  []string{"m"},
			Usage:    "Material number",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "oem",
			Usage: "OEM (defaults to FORECAST_DEFAULT_OEM, then the first listed)",
		},
	}
}

// =============================================================================
// SIMULATE
// =============================================================================

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Run the daywise forecast for one material",
		Flags: append(materialFlags(),
			&cli.StringFlag{
				Name:  "start",
				Usage: "First simulated day (YYYY-MM-DD, default today)",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Exclusive end date (YYYY-MM-DD, default start + horizon)",
			},
			&cli.BoolFlag{
				Name:  "daywise",
				Usage: "Print every simulated day as CSV",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Export the daywise table to a .csv or .xlsx file",
			},
		),
		Action: runSimulate,
	}
}

func runSimulate(c *cli.Context) error {
	var req forecast.Request
	var err error
	if v := c.String("start"); v != "" {
		if req.Start, err = forecast.ParseDate(v); err != nil {
			return fmt.Errorf("--start: %w", err)
		}
	}
	if v := c.String("end"); v != "" {
		if req.End, err = forecast.ParseDate(v); err != nil {
			return fmt.Errorf("--end: %w", err)
		}
	}

	svc := fromContext(c).Planner
	f, err := svc.Forecast(c.Context, forecast.MaterialID(c.String("material")), forecast.OEM(c.String("oem")), req)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if c.Bool("daywise") {
		if err := tables.WriteDaywiseCSV(w, f); err != nil {
			return err
		}
	} else {
		printSummary(w, f)
	}

	if out := c.String("out"); out != "" {
		if err := tables.ExportDaywise(out, f); err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "wrote %d days to %s\n", len(f.Samples), out)
	}
	return nil
}

func printSummary(w io.Writer, f *forecast.Forecast) {
	fmt.Fprintf(w, "Material:     %s (oem %s)\n", f.MaterialID, f.OEM)
	if f.Description != "" {
		fmt.Fprintf(w, "Description:  %s\n", f.Description)
	}
	fmt.Fprintf(w, "Horizon:      %s (%d days)\n", f.Horizon, len(f.Samples))
	fmt.Fprintf(w, "Lead time:    %d days\n", f.LeadTimeDays)

	if f.Reorder == nil {
		fmt.Fprintln(w, "Reorder:      none, stock stays above the buffer")
		return
	}
	r := f.Reorder
	fmt.Fprintf(w, "Reorder on:   %s\n", r.ReorderPointDate)
	fmt.Fprintf(w, "Quantity:     %s\n", r.ReportedQuantity())
	fmt.Fprintf(w, "Delivery on:  %s\n", r.DeliveryDate)

	if f.PreOrder.Required {
		fmt.Fprintf(w, "Pre-order:    required, %s more by %s\n", f.PreOrder.ReportedQuantity(), f.PreOrder.LookaheadDate)
	} else {
		fmt.Fprintln(w, "Pre-order:    not required")
	}
}

// =============================================================================
// RELIABILITY
// =============================================================================

func reliabilityCommand() *cli.Command {
	return &cli.Command{
		Name:  "reliability",
		Usage: "Expected failures over 365 days for a population",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "material",
				Aliases:  []string{"m"},
				Usage:    "Material number",
				Required: true,
			},
			&cli.Float64Flag{
				Name:     "population",
				Usage:    "Installed quantity",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			res, err := fromContext(c).Planner.Reliability(c.Context, forecast.MaterialID(c.String("material")), c.Float64("population"))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Reliability:      %v\n", res.Factor)
			fmt.Fprintf(c.App.Writer, "Expected demand:  %s\n", res.ExpectedDemand)
			return nil
		},
	}
}

// =============================================================================
// NOTIFY
// =============================================================================

func notifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Record a present-stock reading and log it when below safety stock",
		Flags: append(materialFlags(),
			&cli.Float64Flag{
				Name:     "present-stock",
				Usage:    "Observed stock on hand",
				Required: true,
			},
		),
		Action: func(c *cli.Context) error {
			material := forecast.MaterialID(c.String("material"))
			n, err := fromContext(c).Planner.Observe(c.Context, material, forecast.OEM(c.String("oem")), c.Float64("present-stock"))
			if err != nil {
				return err
			}
			if n.Appended {
				fmt.Fprintf(c.App.Writer, "low stock: %v < %v, notification recorded\n", n.Record.PresentStock, n.Record.SafetyStock)
			} else {
				fmt.Fprintf(c.App.Writer, "stock ok: %v >= %v\n", n.Record.PresentStock, n.Record.SafetyStock)
			}
			return nil
		},
	}
}

func notificationsCommand() *cli.Command {
	return &cli.Command{
		Name:  "notifications",
		Usage: "Print the notification log",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "material",
				Aliases: []string{"m"},
				Usage:   "Only this material's notifications",
			},
		},
		Action: func(c *cli.Context) error {
			p := fromContext(c).Planner
			var (
				records []forecast.NotificationRecord
				err     error
			)
			if m := c.String("material"); m != "" {
				records, err = p.MaterialNotifications(c.Context, forecast.MaterialID(m))
			} else {
				records, err = p.Notifications(c.Context)
			}
			if err != nil {
				return err
			}
			w := c.App.Writer
			fmt.Fprintln(w, "timestamp,material_id,present_stock,safety_stock")
			for _, r := range records {
				fmt.Fprintf(w, "%s,%s,%v,%v\n", r.Timestamp.UTC().Format(time.RFC3339), r.MaterialID, r.PresentStock, r.SafetyStock)
			}
			return nil
		},
	}
}

// =============================================================================
// STOCK VALUE
// =============================================================================

func stockValueCommand() *cli.Command {
	return &cli.Command{
		Name:  "stock-value",
		Usage: "Summarise the inventory valuation table",
		Action: func(c *cli.Context) error {
			v, err := fromContext(c).Planner.StockValue(c.Context)
			if err != nil {
				return err
			}
			w := c.App.Writer
			fmt.Fprintf(w, "Previous:  %s\n", forecast.FormatIndianUnits(v.Previous))
			fmt.Fprintf(w, "Current:   %s\n", forecast.FormatIndianUnits(v.Current))
			if pct, ok := v.ChangePercent(); ok {
				fmt.Fprintf(w, "Change:    %s%%\n", pct.StringFixed(2))
			}
			fmt.Fprintf(w, "Materials: %d\n", v.Rows)
			return nil
		},
	}
}

// =============================================================================
// SEED
// =============================================================================

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Write a demo scenario over the configured reference tables",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "scenario",
				Usage:    "Scenario id",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			sc, err := fromContext(c).Planner.LoadScenario(c.Context, c.String("scenario"))
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(sc.Materials))
			for _, m := range sc.Materials {
				ids = append(ids, string(m.ID))
			}
			fmt.Fprintf(c.App.Writer, "loaded %s: %s\n", sc.ID, strings.Join(ids, ", "))
			return nil
		},
	}
}
