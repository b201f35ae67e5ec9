package remote

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"keepsake/internal/logging"
)

// Watcher is the live-subscription variant of list: it polls the
// backend and pushes each fresh snapshot to the consumer. Poll
// failures back off exponentially (capped) and never stop the watcher;
// only context cancellation does.
type Watcher[T any] struct {
	list     func(ctx context.Context) ([]T, error)
	interval time.Duration
	log      logging.Logger
}

func NewWatcher[T any](list func(ctx context.Context) ([]T, error), interval time.Duration, log logging.Logger) *Watcher[T] {
	return &Watcher[T]{list: list, interval: interval, log: log}
}

// Run polls until ctx is canceled, invoking push with every snapshot
// successfully fetched. The first poll happens immediately.
func (w *Watcher[T]) Run(ctx context.Context, push func([]T)) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = w.interval
	bo.MaxInterval = 10 * w.interval
	bo.MaxElapsedTime = 0 // retry forever

	for {
		wait := w.interval
		items, err := w.list(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait = bo.NextBackOff()
			w.log.Warn(ctx, "poll failed", "error", err, "retry_in", wait)
		} else {
			bo.Reset()
			push(items)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}
