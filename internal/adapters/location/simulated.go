package location

import (
	"context"
	"time"
)

// DefaultTickInterval matches the walking simulation of the tour pages.
const DefaultTickInterval = 800 * time.Millisecond

// Simulated emits a tick at a fixed interval.
type Simulated struct {
	Interval time.Duration
}

// NewSimulated creates a ticker source; a non-positive interval selects DefaultTickInterval.
func NewSimulated(interval time.Duration) *Simulated {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Simulated{Interval: interval}
}

// Run implements Source.
func (s *Simulated) Run(ctx context.Context, emit func(Event)) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			emit(Event{Kind: KindTick})
		}
	}
}
