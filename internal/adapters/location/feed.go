package location

import "context"

type delivery struct {
	event Event
	done  chan struct{}
}

// Feed is a Source fed by callers, typically an HTTP handler relaying the
// browser's geolocation callbacks. Push returns only after the event was emitted,
// so callers observe its effect.
type Feed struct {
	ch chan delivery
}

// NewFeed creates an idle feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan delivery)}
}

// Push hands e to the running Run loop and waits until it has been emitted.
// POST: returns ctx.Err() if no Run loop accepted e before ctx ended
func (f *Feed) Push(ctx context.Context, e Event) error {
	d := delivery{event: e, done: make(chan struct{})}
	select {
	case f.ch <- d:
	case <-ctx.Done():
		return ctx.Err()
	}
	// Run closes done right after emit returns and never abandons an accepted delivery.
	<-d.done
	return nil
}

// Run implements Source.
func (f *Feed) Run(ctx context.Context, emit func(Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-f.ch:
			emit(d.event)
			close(d.done)
		}
	}
}
