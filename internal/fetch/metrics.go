package fetch

import (
	"context"
	"errors"
	"sync/atomic"

	"dataentry/internal/core"
)

// Instrumented counts the calls made through a Fetcher.
type Instrumented struct {
	next Fetcher

	requests  atomic.Int64
	failures  atomic.Int64
	cancelled atomic.Int64
}

var _ Fetcher = (*Instrumented)(nil)

// Instrument wraps next.
func Instrument(next Fetcher) *Instrumented {
	return &Instrumented{next: next}
}

func (f *Instrumented) Fetch(ctx context.Context, e core.FormEntry) ([]core.ResultRow, error) {
	f.requests.Add(1)
	rows, err := f.next.Fetch(ctx, e)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		f.cancelled.Add(1)
	default:
		f.failures.Add(1)
	}
	return rows, err
}

// Metrics is a point-in-time copy of the counters.
type Metrics struct {
	Requests  int64
	Failures  int64
	Cancelled int64
}

func (f *Instrumented) GetMetrics() Metrics {
	return Metrics{
		Requests:  f.requests.Load(),
		Failures:  f.failures.Load(),
		Cancelled: f.cancelled.Load(),
	}
}
