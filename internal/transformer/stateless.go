// Package transformer implements the C6 stateless transformer: decode one
// wire message, resolve its SubscriptionId to an Instrument via the
// routing map, and emit zero or more normalized MarketEvents. Used for
// trades, L1 books, liquidations and candles — anything that needs no
// local state across messages. Grounded on the original implementation's
// stateless per-kind transformer impls (e.g. exchange/binance/trade.rs).
package transformer

import (
	"time"

	"github.com/marketpulse/streams/pkg/event"
	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/streamerr"
	"github.com/marketpulse/streams/pkg/subscription"
)

// WireItem is one decoded payload from an inbound frame, tagged with the
// SubscriptionId the venue used to identify it. A single frame may decode
// to zero, one, or many WireItems (§4.5 / SPEC_FULL.md §4 MarketIter).
type WireItem[T any] struct {
	ID           subscription.ID
	Payload      T
	ExchangeTime time.Time
}

// DecodeFunc turns one raw frame into zero or more WireItems. Returning
// (nil, nil) skips a control/heartbeat/ping frame silently per §6.1.
type DecodeFunc[T any] func(raw []byte) ([]WireItem[T], error)

// Stateless is the C6 transformer: a Decode function plus the Venue and
// routing map needed to resolve each item to a full MarketEvent.
type Stateless[T any] struct {
	Venue   subscription.Venue
	Routing map[subscription.ID]instrument.Instrument
	Decode  DecodeFunc[T]
}

// Transform implements stream.Transformer[T].
func (s *Stateless[T]) Transform(raw []byte) event.MarketIter[T] {
	items, err := s.Decode(raw)
	if err != nil {
		return event.MarketIter[T]{event.Err[T](&streamerr.DeserialiseError{Cause: err, Payload: raw})}
	}
	if len(items) == 0 {
		return nil
	}

	now := time.Now()
	out := make(event.MarketIter[T], 0, len(items))
	for _, it := range items {
		inst, ok := s.Routing[it.ID]
		if !ok {
			out = append(out, event.Err[T](&streamerr.NotIdentifiableError{ID: it.ID}))
			continue
		}
		exchangeTime := it.ExchangeTime
		if exchangeTime.IsZero() {
			exchangeTime = now
		}
		out = append(out, event.Ok(event.MarketEvent[T]{
			ExchangeTime: exchangeTime,
			ReceivedTime: now,
			Venue:        s.Venue,
			Instrument:   inst,
			Payload:      it.Payload,
		}))
	}
	return out
}
