package refresh

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emiliopalmerini/claude-activity/internal/domain"
)

// DefaultFreshnessWindow is how long a rebuild stays fresh.
const DefaultFreshnessWindow = 5 * time.Minute

// Status is the outcome of a rebuild request.
type Status string

const (
	StatusStarted Status = "started"
	StatusRebuilt Status = "rebuilt"
	StatusFresh   Status = "fresh"
	StatusSkipped Status = "skipped"
)

// Rebuilder runs one rebuild.
type Rebuilder interface {
	Rebuild(ctx context.Context) (*Result, error)
}

// IsStale reports whether a new rebuild should start. A rebuild in flight
// is never stale; a zero lastRebuilt always is.
func IsStale(now, lastRebuilt time.Time, inFlight bool, window time.Duration) bool {
	if inFlight {
		return false
	}
	if lastRebuilt.IsZero() {
		return true
	}
	return now.Sub(lastRebuilt) > window
}

// Guard allows at most one rebuild at a time and tracks when the last one
// finished.
type Guard struct {
	rebuilder Rebuilder
	window    time.Duration
	logger    domain.Logger
	now       func() time.Time

	mu          sync.Mutex
	inFlight    atomic.Bool
	lastRebuilt atomic.Int64
	wg          sync.WaitGroup
}

// NewGuard wraps rebuilder. window <= 0 selects DefaultFreshnessWindow.
func NewGuard(rebuilder Rebuilder, window time.Duration, logger domain.Logger) *Guard {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	return &Guard{
		rebuilder: rebuilder,
		window:    window,
		logger:    logger,
		now:       time.Now,
	}
}

// LastRebuilt returns when the last successful rebuild finished, or the
// zero time.
func (g *Guard) LastRebuilt() time.Time {
	ns := g.lastRebuilt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// InFlight reports whether a rebuild is running.
func (g *Guard) InFlight() bool {
	return g.inFlight.Load()
}

// TryRebuild runs a rebuild in the calling goroutine unless one is already
// in flight, in which case it returns StatusSkipped without waiting.
func (g *Guard) TryRebuild(ctx context.Context) (Status, *Result, error) {
	if !g.mu.TryLock() {
		return StatusSkipped, nil, nil
	}
	result, err := g.run(ctx)
	if err != nil {
		return StatusRebuilt, nil, err
	}
	return StatusRebuilt, result, nil
}

// TriggerIfStale starts a background rebuild when the last one is older
// than the freshness window. It never blocks.
func (g *Guard) TriggerIfStale(ctx context.Context) Status {
	if !IsStale(g.now(), g.LastRebuilt(), g.InFlight(), g.window) {
		if g.InFlight() {
			return StatusSkipped
		}
		return StatusFresh
	}
	return g.TriggerNow(ctx)
}

// TriggerNow starts a background rebuild regardless of freshness. It
// returns StatusSkipped when one is already running and never blocks.
func (g *Guard) TriggerNow(ctx context.Context) Status {
	if !g.mu.TryLock() {
		return StatusSkipped
	}

	g.inFlight.Store(true)
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if _, err := g.run(context.WithoutCancel(ctx)); err != nil {
			g.logger.Error(fmt.Sprintf("background rebuild failed: %v", err))
		}
	}()
	return StatusStarted
}

// Wait blocks until background rebuilds started so far have finished.
func (g *Guard) Wait() {
	g.wg.Wait()
}

// run must be called with mu held and releases it.
func (g *Guard) run(ctx context.Context) (*Result, error) {
	defer g.mu.Unlock()
	g.inFlight.Store(true)
	defer g.inFlight.Store(false)

	result, err := g.rebuilder.Rebuild(ctx)
	if err != nil {
		return nil, err
	}
	g.lastRebuilt.Store(g.now().UnixNano())
	g.logger.Debug(fmt.Sprintf("rebuild %s: %d parsed, %d removed in %s",
		result.RunID, result.FilesParsed, result.SessionsRemoved, result.Duration))
	return result, nil
}
