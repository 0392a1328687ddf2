package builder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marketpulse/streams/pkg/event"
	"github.com/marketpulse/streams/pkg/subscription"

	"github.com/marketpulse/streams/internal/consumer"
	"github.com/marketpulse/streams/internal/stream"
)

// Group is one already-wired subscription group: a consumer.InitFunc
// closed over its venue, subscriptions and transformer, plus the
// kind-specific coercion into the shared event.Data union. ToData is one
// of event.FromTrade, event.FromOrderBookL1, event.FromOrderBook,
// event.FromLiquidation or event.FromCandle, instantiated for T.
type Group[T any] struct {
	Venue          subscription.Venue
	Label          string
	Init           consumer.InitFunc[T]
	InitialBackoff time.Duration
	ToData         func(event.MarketEvent[T]) event.MarketEvent[event.Data]
}

func (g Group[T]) venue() subscription.Venue { return g.Venue }

// run adapts a Group[T] into the untyped runner MultiStreamBuilder fans
// out, coercing every forwarded event into the shared Data union before
// handing it to send.
func (g Group[T]) run(ctx context.Context, logger *slog.Logger, send func(event.MarketEvent[event.Data])) error {
	return consumer.Consume(ctx, g.Init, g.InitialBackoff, func(e event.MarketEvent[T]) {
		send(g.ToData(e))
	}, logger.With("group", g.Label))
}

// Runner is the type-erased shape every Group[T] reduces to via its venue
// and run methods, so MultiStreamBuilder can hold a heterogeneous slice of
// groups with different payload types.
type Runner interface {
	venue() subscription.Venue
	run(ctx context.Context, logger *slog.Logger, send func(event.MarketEvent[event.Data])) error
}

// VenueEvent tags one joined event with the venue its per-venue channel
// came from, per §6.3's `join_map() -> stream<(venue, MarketEvent)>`.
type VenueEvent struct {
	Venue subscription.Venue
	Event event.MarketEvent[event.Data]
}

// Streams is the C11 join point (§4.8/§4.9): one unbounded output channel
// per venue, multiple producers (one per subscription group for that
// venue) feeding a single consumer, exactly as §5 describes. Select, Join
// and JoinMap are the three ways §6.3 lets a caller drain it.
type Streams struct {
	channels map[subscription.Venue]*stream.Unbounded[event.MarketEvent[event.Data]]
}

// Select removes and hands over venue's channel, per §6.3
// `select(venue) -> receiver<MarketEvent>`. The second return is false if
// no group for venue was ever started.
func (s *Streams) Select(venue subscription.Venue) (<-chan event.MarketEvent[event.Data], bool) {
	ch, ok := s.channels[venue]
	if !ok {
		return nil, false
	}
	delete(s.channels, venue)
	return ch.Out(), true
}

// Join merges every remaining venue channel into one, preserving each
// venue's own FIFO order while interleaving across venues
// non-deterministically, per §4.9's ordering guarantee and §6.3
// `join() -> receiver<MarketEvent>`.
func (s *Streams) Join() <-chan event.MarketEvent[event.Data] {
	out := make(chan event.MarketEvent[event.Data])
	var wg sync.WaitGroup
	for _, ch := range s.channels {
		wg.Add(1)
		go func(ch *stream.Unbounded[event.MarketEvent[event.Data]]) {
			defer wg.Done()
			for e := range ch.Out() {
				out <- e
			}
		}(ch)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// JoinMap is Join, but tagging each event with the venue it came from, per
// §6.3 `join_map() -> stream<(venue, MarketEvent)>`.
func (s *Streams) JoinMap() <-chan VenueEvent {
	out := make(chan VenueEvent)
	var wg sync.WaitGroup
	for v, ch := range s.channels {
		wg.Add(1)
		go func(v subscription.Venue, ch *stream.Unbounded[event.MarketEvent[event.Data]]) {
			defer wg.Done()
			for e := range ch.Out() {
				out <- VenueEvent{Venue: v, Event: e}
			}
		}(v, ch)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// MultiStreamBuilder is the C11 join point: it runs every group
// concurrently via golang.org/x/sync/errgroup, routing each group's
// output onto its venue's unbounded channel. A group's consumer.Consume
// only ever returns on ctx cancellation or on its very first init
// failure; the latter cancels every other group too, since a multi-stream
// caller wants to know its configuration was broken from the start rather
// than silently run with a missing feed.
type MultiStreamBuilder struct {
	Logger *slog.Logger
}

// Run starts every group and returns the per-venue Streams plus an error
// channel that receives at most one value: the first group's fatal error,
// or nil once every group has exited because ctx was cancelled. Every
// channel in Streams is closed once every group has returned.
func (m *MultiStreamBuilder) Run(ctx context.Context, groups []Runner) (*Streams, <-chan error) {
	channels := make(map[subscription.Venue]*stream.Unbounded[event.MarketEvent[event.Data]])
	for _, r := range groups {
		if _, ok := channels[r.venue()]; !ok {
			channels[r.venue()] = stream.NewUnbounded[event.MarketEvent[event.Data]]()
		}
	}

	errs := make(chan error, 1)
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range groups {
		r := r
		ch := channels[r.venue()]
		g.Go(func() error {
			return r.run(gctx, m.Logger, func(e event.MarketEvent[event.Data]) {
				ch.Send(e)
			})
		})
	}

	go func() {
		err := g.Wait()
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			err = nil
		}
		for _, ch := range channels {
			ch.Close()
		}
		errs <- err
		close(errs)
	}()

	return &Streams{channels: channels}, errs
}
