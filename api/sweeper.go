/*
sweeper.go - Automated day-close sweep

PURPOSE:
  Periodically finds days that are still open past their cutoff and
  re-reads them through the tracker, which closes them by synthesizing
  the missing entries and flagging the day for review.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Queries open summary rows up to today; the read path does the
    actual closing, so the sweep holds no reconciliation logic itself
  - A day whose cutoff has not passed yet simply stays open; the
    sweep is idempotent

USAGE:
  sweeper := NewSweeper(tracker, store)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - attendance/reconcile.go: Auto-complete synthesis
  - attendance/tracker.go: DaySummary read-triggered reconciliation
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/store/sqlite"
)

// Sweeper closes stale open days in the background.
type Sweeper struct {
	Tracker       *attendance.Tracker
	Store         *sqlite.Store
	Clock         attendance.Clock
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSweeper creates a new sweeper with a 15 minute interval.
func NewSweeper(tracker *attendance.Tracker, store *sqlite.Store) *Sweeper {
	return &Sweeper{
		Tracker:       tracker,
		Store:         store,
		Clock:         attendance.SystemClock{},
		CheckInterval: 15 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweep loop.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	log.Printf("[Sweeper] Started with check interval: %v", s.CheckInterval)
}

// Stop stops the sweep loop.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	ctx := context.Background()
	today := attendance.DayOf(s.Clock.Now().UTC(), time.UTC)

	open, err := s.Store.OpenSummaries(ctx, today)
	if err != nil {
		log.Printf("[Sweeper] Error listing open days: %v", err)
		return
	}
	if len(open) == 0 {
		return
	}

	closedCount := 0
	for _, sum := range open {
		// DaySummary reconciles on read; a day past its cutoff comes
		// back closed with synthesized entries persisted.
		after, err := s.Tracker.DaySummary(ctx, sum.EmployeeID, sum.Date)
		if err != nil {
			log.Printf("[Sweeper] Error sweeping %s/%s: %v", sum.EmployeeID, sum.Date, err)
			continue
		}
		if after.Status != attendance.StatusOpen {
			closedCount++
		}
	}

	if closedCount > 0 {
		log.Printf("[Sweeper] Completed: %d of %d open days closed", closedCount, len(open))
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (s *Sweeper) RunNow() {
	s.sweep()
}
