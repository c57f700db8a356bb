// Package location delivers distance increments and position samples to a tracking session.
package location

import (
	"context"

	"toursights/internal/domain/tracking"
)

// Kind classifies an Event.
type Kind int

const (
	// KindTick is a fixed simulated increment.
	KindTick Kind = iota
	// KindSample carries a measured position.
	KindSample
	// KindError reports that a position could not be obtained.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindTick:
		return "tick"
	case KindSample:
		return "sample"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one delivery from a Source.
type Event struct {
	Kind     Kind
	Position tracking.Position
	Reason   string
}

// Source produces events until ctx is cancelled.
// Run blocks; emit is called from the Run goroutine, one event at a time.
type Source interface {
	Run(ctx context.Context, emit func(Event))
}
