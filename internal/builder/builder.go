// Package builder implements the C10 StreamBuilder and C11
// MultiStreamBuilder: it wires venue.Connector, mapper, validator and
// transformer into the consumer.InitFunc the reconnection loop drives,
// then fans several such groups out into one joined event.Data stream.
// Grounded on the original implementation's builder.rs (StreamBuilder,
// MultiStreamBuilder) and the teacher's cmd/bot/main.go wiring style.
package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marketpulse/streams/pkg/streamerr"
	"github.com/marketpulse/streams/pkg/subscription"

	"github.com/marketpulse/streams/internal/consumer"
	"github.com/marketpulse/streams/internal/mapper"
	"github.com/marketpulse/streams/internal/stream"
	"github.com/marketpulse/streams/internal/transformer"
	"github.com/marketpulse/streams/internal/validator"
	"github.com/marketpulse/streams/internal/venue"
	"github.com/marketpulse/streams/internal/wsconn"
)

// groupKind returns the single subscription.Kind every Subscription in subs
// must share, per §4.4's "one group, one kind, one socket" rule.
func groupKind(subs []subscription.Subscription) (subscription.Kind, error) {
	if len(subs) == 0 {
		return 0, fmt.Errorf("builder: empty subscription group")
	}
	kind := subs[0].Kind
	for _, s := range subs[1:] {
		if s.Kind != kind {
			return 0, fmt.Errorf("builder: mixed subscription kinds in one group: %s and %s", kind, s.Kind)
		}
	}
	return kind, nil
}

// openAndSubscribe runs §4.4 steps 1-4: dial, build the wire requests from
// subs, send them, and validate acks, returning the (possibly rekeyed)
// routing map and a live, subscribed Conn ready to hand to a transformer.
func openAndSubscribe(
	ctx context.Context,
	logger *slog.Logger,
	c venue.Connector,
	subs []subscription.Subscription,
	parser validator.AckParser,
) (*wsconn.Conn, mapper.Meta, error) {
	kind, err := groupKind(subs)
	if err != nil {
		return nil, mapper.Meta{}, &streamerr.ConfigError{Cause: err}
	}

	for _, sub := range subs {
		if err := sub.Validate(c); err != nil {
			return nil, mapper.Meta{}, &streamerr.ConfigError{Cause: err}
		}
	}

	url, err := c.URL(kind)
	if err != nil {
		return nil, mapper.Meta{}, &streamerr.ConfigError{Cause: err}
	}

	meta, err := mapper.Map(subscription.Dedup(subs), c)
	if err != nil {
		return nil, mapper.Meta{}, &streamerr.ConfigError{Cause: err}
	}

	conn, err := wsconn.Dial(ctx, url, logger)
	if err != nil {
		return nil, mapper.Meta{}, &streamerr.SocketError{Venue: c.ID(), Cause: err}
	}

	for _, req := range meta.Requests {
		if err := conn.WriteJSON(req); err != nil {
			conn.Close()
			return nil, mapper.Meta{}, &streamerr.SocketError{Venue: c.ID(), Cause: err}
		}
	}

	routing, err := validator.Validate(conn, meta.RoutingMap, meta.ExpectedResponses, parser, c.SubscriptionTimeout())
	if err != nil {
		conn.Close()
		return nil, mapper.Meta{}, err
	}
	meta.RoutingMap = routing

	if interval, payload, ok := c.PingInterval(); ok {
		conn.StartPing(ctx, interval, payload)
	}

	return conn, meta, nil
}

// BuildStateless returns a consumer.InitFunc for a stateless (C6) group:
// trades, L1 books, liquidations or candles. Each call re-runs the full
// §4.4 init sequence from scratch, which is what lets the consumer loop
// simply call init again on reconnect.
func BuildStateless[T any](
	logger *slog.Logger,
	c venue.Connector,
	subs []subscription.Subscription,
	decode transformer.DecodeFunc[T],
	parser validator.AckParser,
) consumer.InitFunc[T] {
	return func(ctx context.Context) (*stream.MarketStream[T], error) {
		conn, meta, err := openAndSubscribe(ctx, logger, c, subs, parser)
		if err != nil {
			return nil, err
		}

		t := &transformer.Stateless[T]{
			Venue:   c.ID(),
			Routing: meta.RoutingMap,
			Decode:  decode,
		}
		return stream.Run[T](ctx, conn, t), nil
	}
}
