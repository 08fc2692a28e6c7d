/*
refresh.go - Reference table refresher

PURPOSE:
  Periodically checks the modification time of every configured table and
  drops changed tables from the cache, so edits to the files are picked up
  between runs without a restart. A run in progress keeps the table it
  already loaded.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The first check only records modification times
  - A vanished file is invalidated too; the next load reports the error

USAGE:
  r := planner.NewRefresher(svc, time.Minute)
  r.Start()
  // ... later
  r.Stop()
*/
package planner

import (
	"os"
	"sync"
	"time"
)

type Refresher struct {
	Service  *Service
	Interval time.Duration

	checkMu sync.Mutex
	mtimes  map[string]time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewRefresher(svc *Service, interval time.Duration) *Refresher {
	return &Refresher{
		Service:  svc,
		Interval: interval,
		mtimes:   make(map[string]time.Time),
	}
}

// Start begins polling. A non-positive interval disables the refresher.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.Interval <= 0 || r.ticker != nil {
		return
	}

	r.Check()
	r.ticker = time.NewTicker(r.Interval)
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go r.run()

	r.Service.Log.Info().Dur("interval", r.Interval).Msg("table refresher started")
}

// Stop stops polling and waits for the goroutine to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	close(r.stop)
	r.wg.Wait()
	r.ticker = nil
	r.Service.Log.Info().Msg("table refresher stopped")
}

func (r *Refresher) run() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ticker.C:
			r.Check()
		case <-r.stop:
			return
		}
	}
}

// Check compares modification times with the last check and returns the
// paths it invalidated.
func (r *Refresher) Check() []string {
	r.checkMu.Lock()
	defer r.checkMu.Unlock()

	p := r.Service.Paths
	var changed []string
	for _, path := range []string{p.Yearly, p.LeadTime, p.Reliability, p.MaterialMaster, p.StockValue} {
		if path == "" {
			continue
		}

		var mtime time.Time
		if info, err := os.Stat(path); err == nil {
			mtime = info.ModTime()
		}

		prev, seen := r.mtimes[path]
		r.mtimes[path] = mtime
		if seen && !prev.Equal(mtime) {
			r.Service.Tables.Invalidate(path)
			changed = append(changed, path)
			r.Service.Log.Info().Str("path", path).Msg("reference table changed, cache invalidated")
		}
	}
	return changed
}
