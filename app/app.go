// Package app assembles the planner from configuration. Both binaries share
// it so the server and the CLI always see the same wiring.
package app

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/accountrms/forecasting/config"
	"github.com/accountrms/forecasting/forecast"
	"github.com/accountrms/forecasting/planner"
	"github.com/accountrms/forecasting/store/csvlog"
	"github.com/accountrms/forecasting/store/sqlite"
)

// App is a wired planner plus the resources that must be released.
type App struct {
	Planner   *planner.Service
	Refresher *planner.Refresher
	closers   []io.Closer
}

// New builds the notification log, engine and planner described by cfg.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	engineCfg := cfg.Forecast.Engine()
	if err := engineCfg.Validate(); err != nil {
		return nil, fmt.Errorf("forecast config: %w", err)
	}

	a := &App{}
	notifLog, err := a.openLog(cfg.Notify)
	if err != nil {
		return nil, err
	}

	paths := planner.TablePaths{
		Yearly:         cfg.Tables.Yearly,
		LeadTime:       cfg.Tables.LeadTime,
		Reliability:    cfg.Tables.Reliability,
		MaterialMaster: cfg.Tables.MaterialMaster,
		StockValue:     cfg.Tables.StockValue,
	}
	svc := planner.NewService(paths, forecast.NewEngine(engineCfg), forecast.NewNotifier(notifLog), log)
	svc.DefaultOEM = forecast.OEM(cfg.Forecast.DefaultOEM)

	a.Planner = svc
	a.Refresher = planner.NewRefresher(svc, time.Duration(cfg.Tables.RefreshSeconds)*time.Second)
	return a, nil
}

func (a *App) openLog(cfg config.NotifyConfig) (forecast.NotificationLog, error) {
	switch cfg.Backend {
	case config.BackendCSV, "":
		return csvlog.New(cfg.Path), nil
	case config.BackendSQLite:
		store, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown notification log backend %q", cfg.Backend)
	}
}

// Close stops the refresher and releases the notification log.
func (a *App) Close() error {
	if a.Refresher != nil {
		a.Refresher.Stop()
	}
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
