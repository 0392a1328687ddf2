package builder

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marketpulse/streams/pkg/book"
	"github.com/marketpulse/streams/pkg/subscription"

	"github.com/marketpulse/streams/internal/consumer"
	"github.com/marketpulse/streams/internal/stream"
	bookxform "github.com/marketpulse/streams/internal/transformer/book"
	"github.com/marketpulse/streams/internal/validator"
	"github.com/marketpulse/streams/internal/venue"
)

// Bootstrap produces one instrument's initial L2 state, per §4.6.1: either
// by fetching an HTTP snapshot (Binance-style venues) or by returning an
// empty book that the venue's own first WebSocket message will replace
// (OKX-style venues). Each venue package supplies its own Bootstrap.
type Bootstrap func(ctx context.Context, sub subscription.Subscription) (*bookxform.InstrumentBook, error)

// BuildBook returns a consumer.InitFunc for an L2 (C7/C8) group. Like
// BuildStateless, every call redoes the full init sequence, including
// rebuilding every instrument's bootstrap state — §4.6.4's desync handling
// relies on exactly this: a reconnect after InvalidSequence re-fetches the
// snapshot rather than resuming stale state.
func BuildBook(
	logger *slog.Logger,
	c venue.Connector,
	subs []subscription.Subscription,
	bootstrap Bootstrap,
	decode bookxform.DecodeFunc,
	parser validator.AckParser,
) consumer.InitFunc[book.OrderBook] {
	return func(ctx context.Context) (*stream.MarketStream[book.OrderBook], error) {
		states := make(map[subscription.ID]*bookxform.InstrumentBook, len(subs))
		for _, sub := range subs {
			ib, err := bootstrap(ctx, sub)
			if err != nil {
				return nil, fmt.Errorf("builder: bootstrap %s: %w", sub, err)
			}
			states[c.SubscriptionID(sub)] = ib
		}

		conn, _, err := openAndSubscribe(ctx, logger, c, subs, parser)
		if err != nil {
			return nil, err
		}

		t := &bookxform.Transformer{
			Venue:  c.ID(),
			States: states,
			Decode: decode,
			Logger: logger,
		}
		return stream.Run[book.OrderBook](ctx, conn, t), nil
	}
}
