package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultStaleAfter is how long the order-event stream may stay silent
// before it is presumed dead.
const DefaultStaleAfter = 6000 * time.Millisecond

// unsetMs marks the Unset state: no heartbeat since the last (re)connect.
const unsetMs = int64(0)

// Heartbeat tracks the timestamp of the last heartbeat received on the
// order-event stream and fires onStale when the gap exceeds the threshold.
// After firing it returns to Unset so the check cannot re-fire until a new
// heartbeat arrives or a fresh staleness window elapses.
type Heartbeat struct {
	mu         sync.Mutex
	lastMs     int64
	staleAfter time.Duration
	checkEvery time.Duration
	now        func() time.Time

	onStale func(gap time.Duration)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartbeat creates a monitor. onStale runs on the check goroutine; it is
// expected to raise the user alert and ask the supervisor to reconnect.
func NewHeartbeat(staleAfter, checkEvery time.Duration, onStale func(gap time.Duration)) *Heartbeat {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if checkEvery <= 0 {
		checkEvery = time.Second
	}
	return &Heartbeat{
		staleAfter: staleAfter,
		checkEvery: checkEvery,
		now:        time.Now,
		onStale:    onStale,
	}
}

// Touch records a heartbeat timestamp from the stream.
func (h *Heartbeat) Touch(tsMs int64) {
	h.mu.Lock()
	h.lastMs = tsMs
	h.mu.Unlock()
}

// Reset returns the monitor to Unset. Called on every reconnect so a
// retired connection cannot leave stale liveness data behind.
func (h *Heartbeat) Reset() {
	h.mu.Lock()
	h.lastMs = unsetMs
	h.mu.Unlock()
}

// LastMs returns the last heartbeat timestamp, 0 when Unset.
func (h *Heartbeat) LastMs() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastMs
}

// Check runs one staleness evaluation. Unset means no action.
func (h *Heartbeat) Check() {
	h.mu.Lock()
	last := h.lastMs
	if last == unsetMs {
		h.mu.Unlock()
		return
	}
	gap := time.Duration(h.now().UnixMilli()-last) * time.Millisecond
	if gap <= h.staleAfter {
		h.mu.Unlock()
		return
	}
	h.lastMs = unsetMs
	h.mu.Unlock()

	slog.Warn("Heartbeat stale", slog.Duration("gap", gap))
	if h.onStale != nil {
		h.onStale(gap)
	}
}

// Start begins the periodic staleness check.
func (h *Heartbeat) Start(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(h.checkEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Check()
			}
		}
	}()
}

// Stop halts the periodic check.
func (h *Heartbeat) Stop() {
	if h.cancel != nil {
		h.cancel()
		h.wg.Wait()
	}
}
