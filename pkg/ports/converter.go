package ports

import (
	"context"
	"time"
)

// Converter rewrites one expression line. Implementations must be safe
// for concurrent use; lines never affect each other.
type Converter interface {
	ProcessContext(ctx context.Context, line string) (string, error)
}

// Observer is notified once per converted line.
// err is nil on success.
type Observer interface {
	ObserveLine(elapsed time.Duration, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(elapsed time.Duration, err error)

// ObserveLine calls f.
func (f ObserverFunc) ObserveLine(elapsed time.Duration, err error) {
	f(elapsed, err)
}
