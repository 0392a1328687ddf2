// Package consumer implements the C9 consumer loop: it drives one market
// stream, and on unexpected termination applies exponential backoff and
// re-initializes the whole subscription group from scratch. Grounded on
// the original implementation's builder.rs consume() function and the
// teacher's internal/exchange/ws.go Run(ctx) reconnect loop.
package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/marketpulse/streams/pkg/event"
	"github.com/marketpulse/streams/pkg/streamerr"

	"github.com/marketpulse/streams/internal/stream"
)

// InitFunc opens a socket, subscribes, validates and constructs the
// transformer for one subscription group, returning a live MarketStream.
// This is §4.4's five-step initialization sequence; InitFunc is supplied
// by the builder, which closes over the group's connector, subscriptions
// and routing map.
type InitFunc[T any] func(ctx context.Context) (*stream.MarketStream[T], error)

// Consume runs the §4.7 reconnection algorithm for one subscription group,
// forwarding every successfully decoded event to send. It returns only
// when ctx is cancelled, or when the very first call to init fails — that
// first failure is the sole fatal condition; every later failure (to
// initialize, or because the prior stream ended) is retried forever with
// doubling backoff, reset to initialBackoff (§6.4's configurable
// initial_backoff_ms) after each successful initialize.
func Consume[T any](ctx context.Context, init InitFunc[T], initialBackoff time.Duration, send func(event.MarketEvent[T]), logger *slog.Logger) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0 // retry forever; only the first init failure is fatal

	attempt := 0
	initialised := false

	for {
		attempt++

		st, err := init(ctx)
		if err != nil {
			if !initialised {
				return err
			}
			wait := b.NextBackOff()
			logger.Warn("stream initialise failed, retrying", "attempt", attempt, "backoff", wait, "error", err)
			if !sleep(ctx, wait) {
				return ctx.Err()
			}
			continue
		}

		b.Reset()
		attempt = 0
		initialised = true
		logger.Info("stream initialised")

		for res := range st.Events() {
			if res.Err != nil {
				if streamerr.IsRecoverableMidStream(res.Err) {
					logger.Warn("skipping non-fatal stream error", "error", res.Err)
					continue
				}
				logger.Warn("stream terminating, will reconnect", "error", res.Err)
				break
			}
			send(res.Event)
		}

		wait := b.NextBackOff()
		logger.Warn("stream ended unexpectedly, reconnecting", "backoff", wait)
		if !sleep(ctx, wait) {
			return ctx.Err()
		}
	}
}

// sleep waits for d or ctx cancellation, returning false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
