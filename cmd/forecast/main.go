// Command forecast runs the planner from the command line.
//
//	forecast simulate --material 100234 --oem atlas --start 2026-01-01
//	forecast reliability --material 100234 --population 1000
//	forecast notify --material 100234 --present-stock 40
//	forecast notifications --material 100234
//	forecast stock-value
//	forecast seed --scenario reorder-and-preorder
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/accountrms/forecasting/app"
	"github.com/accountrms/forecasting/config"
	"github.com/accountrms/forecasting/pkg/logger"
)

func main() {
	cliApp := newCLI()
	if err := cliApp.Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:  "forecast",
		Usage: "Inventory demand forecasting",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "yearly-table",
				Usage:   "Yearly reference table (.csv or .xlsx)",
				EnvVars: []string{"FORECAST_YEARLY_TABLE"},
			},
			&cli.StringFlag{
				Name:    "stock-value-table",
				Usage:   "Stock value table (.csv or .xlsx)",
				EnvVars: []string{"FORECAST_STOCK_VALUE_TABLE"},
			},
			&cli.StringFlag{
				Name:    "notification-log",
				Usage:   "Notification log path",
				EnvVars: []string{"NOTIFICATION_LOG_PATH"},
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			simulateCommand(),
			reliabilityCommand(),
			notifyCommand(),
			notificationsCommand(),
			stockValueCommand(),
			seedCommand(),
		},
	}
}

func setup(c *cli.Context) error {
	cfg := *config.Load()
	if v := c.String("yearly-table"); v != "" {
		cfg.Tables.Yearly = v
	}
	if v := c.String("stock-value-table"); v != "" {
		cfg.Tables.StockValue = v
	}
	if v := c.String("notification-log"); v != "" {
		cfg.Notify.Path = v
	}
	cfg.Tables.RefreshSeconds = 0

	logger.SetLevel(c.String("log-level"))

	a, err := app.New(&cfg, logger.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	c.App.Metadata = map[string]any{"app": a}
	return nil
}

func teardown(c *cli.Context) error {
	if a, ok := c.App.Metadata["app"].(*app.App); ok && a != nil {
		return a.Close()
	}
	return nil
}

func fromContext(c *cli.Context) *app.App {
	a, _ := c.App.Metadata["app"].(*app.App)
	return a
}
