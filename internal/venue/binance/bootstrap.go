package binance

import (
	"context"
	"fmt"

	"github.com/marketpulse/streams/pkg/book"
	"github.com/marketpulse/streams/pkg/subscription"

	bookxform "github.com/marketpulse/streams/internal/transformer/book"
	"github.com/marketpulse/streams/internal/snapshot"
)

// wireSnapshot mirrors the Binance REST depth snapshot response, per
// original implementation's exchange/binance/book/l2.rs
// BinanceOrderBookL2Snapshot.
type wireSnapshot struct {
	LastUpdateID uint64      `json:"lastUpdateId"`
	Bids         []wireLevel `json:"bids"`
	Asks         []wireLevel `json:"asks"`
}

// DefaultSnapshotDepth is the depth-endpoint `limit` query parameter used
// to bootstrap an L2 book, per §6.4's configurable snapshot depth.
const DefaultSnapshotDepth = 1000

// Bootstrapper produces builder.Bootstrap closures for this connector's
// HTTP snapshot + futures-or-spot-style Updater, per §4.6.1.
type Bootstrapper struct {
	Connector *Connector
	Client    *snapshot.Client
	Depth     int
}

// NewBootstrapper builds a Bootstrapper with the given §6.4
// snapshot_depth_limit. Callers that don't care (tests, mainly) can pass
// DefaultSnapshotDepth.
func NewBootstrapper(c *Connector, client *snapshot.Client, depth int) *Bootstrapper {
	return &Bootstrapper{Connector: c, Client: client, Depth: depth}
}

// Bootstrap implements builder.Bootstrap: fetch the REST snapshot, build
// the normalized book, and seed the venue-appropriate Updater.
func (b *Bootstrapper) Bootstrap(ctx context.Context, sub subscription.Subscription) (*bookxform.InstrumentBook, error) {
	url := snapshot.BuildURL(b.Connector.HTTPBase, sub.Instrument.Base, sub.Instrument.Quote, b.Depth)

	snap, err := snapshot.Fetch[wireSnapshot](ctx, b.Client, url)
	if err != nil {
		return nil, fmt.Errorf("binance: fetch snapshot: %w", err)
	}

	bids, err := toLevels(snap.Bids)
	if err != nil {
		return nil, fmt.Errorf("binance: snapshot bids: %w", err)
	}
	asks, err := toLevels(snap.Asks)
	if err != nil {
		return nil, fmt.Errorf("binance: snapshot asks: %w", err)
	}

	ob := book.NewFromSnapshot(bids, asks)

	var updater bookxform.Updater
	if b.Connector.Futures {
		updater = bookxform.NewFuturesStyleUpdater(snap.LastUpdateID)
	} else {
		updater = bookxform.NewSpotStyleUpdater(snap.LastUpdateID)
	}

	return &bookxform.InstrumentBook{
		Instrument: sub.Instrument,
		Book:       ob,
		Updater:    updater,
	}, nil
}
