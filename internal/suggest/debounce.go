// Package suggest debounces category-suggestion lookups. Keystroke-rate
// callers arm the debouncer on every change; only the last query inside
// the quiet window reaches the lookup function, and a result belonging to
// a superseded query is discarded even if its lookup was already running.
package suggest

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultDelay is the quiet window before a lookup fires.
	DefaultDelay = 500 * time.Millisecond
	// MinQueryLen is the shortest description worth suggesting for.
	MinQueryLen = 3
	// ApplyConfidence is the threshold above which callers may apply a
	// suggestion without asking.
	ApplyConfidence = 60
)

// Suggestion is a category guess with the upstream's confidence score.
type Suggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ShouldApply reports whether a suggestion is confident enough to apply
// automatically.
func (s Suggestion) ShouldApply() bool {
	return s.Confidence > ApplyConfidence
}

// Func performs the actual category lookup.
type Func func(ctx context.Context, query string) (Suggestion, error)

// Debouncer serializes suggestion lookups behind a trailing debounce.
// Each Trigger call supersedes the previous one; the generation counter
// decides which in-flight result still matters.
type Debouncer struct {
	mu     sync.Mutex
	fn     Func
	delay  time.Duration
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewDebouncer(fn Func, delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{fn: fn, delay: delay}
}

// Trigger arms the debouncer for query. Any pending or in-flight lookup
// is superseded. When the quiet window elapses and the query is still
// current, the lookup runs and deliver is called exactly once with its
// result. Queries shorter than MinQueryLen cancel pending work and return
// false without arming.
func (d *Debouncer) Trigger(ctx context.Context, query string, deliver func(Suggestion, error)) bool {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	myGen := d.gen
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	if len(query) < MinQueryLen {
		return false
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		d.run(runCtx, myGen, query, deliver)
	})
	return true
}

func (d *Debouncer) run(ctx context.Context, gen uint64, query string, deliver func(Suggestion, error)) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	result, err := d.fn(ctx, query)

	// Re-check after the lookup: a newer Trigger may have landed while
	// the request was in flight.
	d.mu.Lock()
	stale := gen != d.gen
	d.mu.Unlock()
	if stale || ctx.Err() != nil {
		return
	}
	deliver(result, err)
}

// Flush runs the lookup for query immediately, bypassing the quiet window
// but still claiming a generation so older in-flight work is discarded.
func (d *Debouncer) Flush(ctx context.Context, query string) (Suggestion, error) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	if len(query) < MinQueryLen {
		return Suggestion{}, nil
	}
	return d.fn(ctx, query)
}
