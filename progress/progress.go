// Package progress keeps aggregated checkpoint counters for a single
// mission run. The tracker travels in the run context so every layer can
// update counters without a global registry.
package progress

import (
	"context"
	"sync"
	"time"
)

// Delta is an incremental counter change. Fields are signed, so both
// increments and decrements are possible.
type Delta struct {
	Total     int
	Completed int
	Escalated int
	Waiting   int
	Running   int
}

// Progress keeps aggregated checkpoint counters for one mission run. It is
// safe for concurrent use.
type Progress struct {
	RunID     string
	Mission   string
	StartedAt time.Time

	TotalCheckpoints     int
	CompletedCheckpoints int
	EscalatedCheckpoints int
	WaitingCheckpoints   int
	RunningCheckpoints   int

	sync.Mutex
	onChange func(Progress)
}

// Update applies the delta. The registered callback receives a copy of the
// updated tracker outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.Lock()
	p.TotalCheckpoints += d.Total
	p.CompletedCheckpoints += d.Completed
	p.EscalatedCheckpoints += d.Escalated
	p.WaitingCheckpoints += d.Waiting
	p.RunningCheckpoints += d.Running
	snapshot := *p
	cb := p.onChange
	p.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.Lock()
	defer p.Unlock()
	return *p
}

// OnChange registers the callback invoked after every Update; nil disables
// it. Only one callback is active at a time.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.Lock()
	p.onChange = cb
	p.Unlock()
}

type ctxKeyT struct{}

var ctxKey = ctxKeyT{}

// WithProgress attaches a tracker to the context.
func WithProgress(ctx context.Context, p *Progress) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext returns the tracker carried by ctx, or nil.
func FromContext(ctx context.Context) *Progress {
	if ctx == nil {
		return nil
	}
	if p, ok := ctx.Value(ctxKey).(*Progress); ok {
		return p
	}
	return nil
}
