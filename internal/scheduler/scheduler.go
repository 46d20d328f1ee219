package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"QuoteDesk/internal/period"
	"QuoteDesk/internal/picker"
)

// WatchlistOwner tags queries issued by the watchlist job.
const WatchlistOwner = "watchlist"

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Facade    picker.Facade
	Symbols   []string
	Selection period.Selection
	Now       func() time.Time // clock for watchlist forms; nil uses time.Now
}

// NewScheduler creates a Scheduler that refreshes symbols with the given
// preset through facade.
func NewScheduler(facade picker.Facade, symbols []string, sel period.Selection) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Facade:    facade,
		Symbols:   symbols,
		Selection: sel,
	}
}

// RegisterAll registers the watchlist refresh task.
func (s *Scheduler) RegisterAll(watchlistCron string) error {
	if s.Selection == period.Custom {
		return fmt.Errorf("watchlist period must be a preset, got %q", s.Selection)
	}
	if _, err := s.Cron.AddFunc(watchlistCron, s.watchlistTask); err != nil {
		return fmt.Errorf("register watchlist task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	zap.S().Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	zap.S().Info("scheduler stopped")
}

// RunWatchlistNow executes the watchlist task immediately.
func (s *Scheduler) RunWatchlistNow() {
	s.watchlistTask()
}

// watchlistTask submits each symbol through its own picker form, the same
// path a chat user takes.
func (s *Scheduler) watchlistTask() {
	zap.S().Infof("running watchlist task: %d symbols, period %s", len(s.Symbols), s.Selection)
	for _, sym := range s.Symbols {
		form := picker.NewForm(s.Facade, s.Now)
		form.SetSymbol(sym)
		form.SelectPeriodOption(s.Selection)
		if !form.Submit() {
			zap.S().Warnf("watchlist: skipped %q", sym)
		}
	}
}
