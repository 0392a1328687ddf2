// Package book implements the C7 L2 book transformer and the C8 book
// updater policies. This is the core of the core: per-instrument state
// that bootstraps from an HTTP snapshot, applies delta updates under
// venue-specific sequencing rules, emits normalized book snapshots, and
// signals desync so the consumer loop can restart the whole group.
//
// Grounded directly on the original implementation's
// exchange/binance/futures/l2.rs, exchange/binance/spot/l2.rs and
// exchange/okx/futures/l2.rs — field names and predicates are ported
// 1:1, per spec.md §4.6.3.
package book

import (
	"time"

	"github.com/marketpulse/streams/pkg/book"
	"github.com/marketpulse/streams/pkg/event"
	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/streamerr"
	"github.com/marketpulse/streams/pkg/subscription"

	"log/slog"
)

// Delta is the venue-agnostic shape of one inbound L2 update, per §4.6.
// Binance-style venues populate FirstUpdateID/LastUpdateID/PrevUpdateID;
// absolute-sequence venues (OKX) populate Action/Seq/PrevSeq via the same
// fields (LastUpdateID carries seq, PrevUpdateID carries prevSeq) so a
// single Updater interface can cover both families.
type Delta struct {
	// Action is only meaningful to the absolute-sequence policy: "" or
	// "update" for ordinary deltas, "snapshot" for the venue's own
	// book-replacing first message.
	Action string

	FirstUpdateID  uint64
	LastUpdateID   uint64
	PrevUpdateID   uint64
	Bids           []book.Level
	Asks           []book.Level
}

// Updater is a venue-parameterized sequencing policy (C8): given the
// current book and one delta, it validates the sequencing invariant,
// applies the upsert rule, advances its own state, and reports whether a
// snapshot should be emitted.
type Updater interface {
	Apply(b *book.OrderBook, d Delta, logger *slog.Logger) (emit bool, err error)
}

// InstrumentBook is the per-instrument L2 state: the normalized book plus
// the policy object driving it, per §3's "L2 updater state".
type InstrumentBook struct {
	Instrument instrument.Instrument
	Book       book.OrderBook
	Updater    Updater
}

// --- C8: Futures-style policy (Binance USD-M futures) ---------------------

// FuturesStyleUpdater implements the "futures-style" policy from §4.6.3:
// first-update predicate `U <= S AND u >= S`; next-update predicate
// `pu == S`.
type FuturesStyleUpdater struct {
	UpdatesProcessed uint64
	LastUpdateID     uint64
}

// NewFuturesStyleUpdater constructs a FuturesStyleUpdater seeded with the
// HTTP snapshot's last_update_id.
func NewFuturesStyleUpdater(lastUpdateID uint64) *FuturesStyleUpdater {
	return &FuturesStyleUpdater{LastUpdateID: lastUpdateID}
}

// Apply implements Updater.
func (u *FuturesStyleUpdater) Apply(b *book.OrderBook, d Delta, logger *slog.Logger) (bool, error) {
	// Step A: stale drop.
	if d.LastUpdateID < u.LastUpdateID {
		return false, nil
	}

	if u.UpdatesProcessed == 0 {
		// Step B: first-update acceptance — U <= S AND u >= S.
		if d.FirstUpdateID > u.LastUpdateID || d.LastUpdateID < u.LastUpdateID {
			return false, &streamerr.InvalidSequenceError{
				PrevLastUpdateID: u.LastUpdateID,
				FirstUpdateID:    d.FirstUpdateID,
			}
		}
	} else {
		// Step C: subsequent contiguity — pu == S.
		if d.PrevUpdateID != u.LastUpdateID {
			return false, &streamerr.InvalidSequenceError{
				PrevLastUpdateID: u.LastUpdateID,
				FirstUpdateID:    d.FirstUpdateID,
			}
		}
	}

	// Step D: apply.
	b.LastUpdateTime = time.Now()
	b.Bids.Upsert(d.Bids, logger)
	b.Asks.Upsert(d.Asks, logger)

	// Step E: advance.
	u.UpdatesProcessed++
	u.LastUpdateID = d.LastUpdateID

	return true, nil
}

// --- C8: Spot-style policy (Binance spot) ---------------------------------

// SpotStyleUpdater implements the "spot-style" policy from §4.6.3:
// first-update predicate `U <= S+1 AND u >= S+1`; next-update predicate
// `U == previous delta's u + 1` (LastUpdateID + 1 at evaluation time).
//
// PrevLastUpdateID is captured the moment LastUpdateID advances — i.e.
// before it is overwritten — per the Open Question resolution in
// SPEC_FULL.md §6: later deltas are never re-tested against the bootstrap
// snapshot id.
type SpotStyleUpdater struct {
	UpdatesProcessed uint64
	LastUpdateID     uint64
	PrevLastUpdateID uint64
}

// NewSpotStyleUpdater constructs a SpotStyleUpdater seeded with the HTTP
// snapshot's last_update_id.
func NewSpotStyleUpdater(lastUpdateID uint64) *SpotStyleUpdater {
	return &SpotStyleUpdater{LastUpdateID: lastUpdateID, PrevLastUpdateID: lastUpdateID}
}

// Apply implements Updater.
func (u *SpotStyleUpdater) Apply(b *book.OrderBook, d Delta, logger *slog.Logger) (bool, error) {
	if d.LastUpdateID < u.LastUpdateID {
		return false, nil
	}

	if u.UpdatesProcessed == 0 {
		if d.FirstUpdateID > u.LastUpdateID+1 || d.LastUpdateID < u.LastUpdateID+1 {
			return false, &streamerr.InvalidSequenceError{
				PrevLastUpdateID: u.LastUpdateID,
				FirstUpdateID:    d.FirstUpdateID,
			}
		}
	} else {
		if d.FirstUpdateID != u.LastUpdateID+1 {
			return false, &streamerr.InvalidSequenceError{
				PrevLastUpdateID: u.PrevLastUpdateID,
				FirstUpdateID:    d.FirstUpdateID,
			}
		}
	}

	b.LastUpdateTime = time.Now()
	b.Bids.Upsert(d.Bids, logger)
	b.Asks.Upsert(d.Asks, logger)

	u.UpdatesProcessed++
	u.PrevLastUpdateID = u.LastUpdateID
	u.LastUpdateID = d.LastUpdateID

	return true, nil
}

// --- C8: Absolute-sequence policy (OKX) -----------------------------------

// AbsoluteSequenceUpdater implements the "absolute sequence" policy from
// §4.6.3: a "snapshot" action replaces the book outright; "update" actions
// require prev_seq equality, and an update whose seq equals its own
// prev_seq is a keepalive — accepted but emitting nothing.
type AbsoluteSequenceUpdater struct {
	PrevSeq uint64
}

// NewAbsoluteSequenceUpdater constructs an AbsoluteSequenceUpdater with no
// prior sequence; the first message received must be a "snapshot".
func NewAbsoluteSequenceUpdater() *AbsoluteSequenceUpdater {
	return &AbsoluteSequenceUpdater{}
}

// Apply implements Updater.
func (u *AbsoluteSequenceUpdater) Apply(b *book.OrderBook, d Delta, logger *slog.Logger) (bool, error) {
	if d.Action == "snapshot" {
		*b = book.NewFromSnapshot(d.Bids, d.Asks)
		u.PrevSeq = d.LastUpdateID
		return true, nil
	}

	if u.PrevSeq != d.PrevUpdateID {
		return false, &streamerr.InvalidSequenceError{
			PrevLastUpdateID: u.PrevSeq,
			FirstUpdateID:    d.LastUpdateID,
		}
	}

	b.LastUpdateTime = time.Now()
	b.Bids.Upsert(d.Bids, logger)
	b.Asks.Upsert(d.Asks, logger)

	// Keepalive: seq == prev_seq means no book mutation was actually
	// intended, just a liveness signal (§4.6.3 / §8 invariant 6).
	keepalive := d.LastUpdateID == d.PrevUpdateID
	u.PrevSeq = d.LastUpdateID

	if keepalive {
		return false, nil
	}
	return true, nil
}

// --- C7: the per-group L2 transformer --------------------------------------

// DeltaItem is one decoded delta tagged with the SubscriptionId identifying
// which instrument it belongs to.
type DeltaItem struct {
	ID    subscription.ID
	Delta Delta
}

// DecodeFunc turns one raw frame into zero or more DeltaItems.
type DecodeFunc func(raw []byte) ([]DeltaItem, error)

// Transformer is the C7 per-group L2 engine: it owns one InstrumentBook
// per subscribed instrument and drives each one's Updater on every
// inbound delta.
type Transformer struct {
	Venue   subscription.Venue
	States  map[subscription.ID]*InstrumentBook
	Decode  DecodeFunc
	Logger  *slog.Logger
}

// Transform implements stream.Transformer[book.OrderBook].
func (t *Transformer) Transform(raw []byte) event.MarketIter[book.OrderBook] {
	items, err := t.Decode(raw)
	if err != nil {
		return event.MarketIter[book.OrderBook]{
			event.Err[book.OrderBook](&streamerr.DeserialiseError{Cause: err, Payload: raw}),
		}
	}
	if len(items) == 0 {
		return nil
	}

	now := time.Now()
	out := make(event.MarketIter[book.OrderBook], 0, len(items))
	for _, it := range items {
		st, ok := t.States[it.ID]
		if !ok {
			out = append(out, event.Err[book.OrderBook](&streamerr.NotIdentifiableError{ID: it.ID}))
			continue
		}

		emit, err := st.Updater.Apply(&st.Book, it.Delta, t.Logger)
		if err != nil {
			// §4.6.4: InvalidSequence is recoverable by the stream — the
			// consumer loop restarts the whole group, refetching the
			// snapshot.
			out = append(out, event.Err[book.OrderBook](err))
			continue
		}
		if !emit {
			continue
		}

		out = append(out, event.Ok(event.MarketEvent[book.OrderBook]{
			ExchangeTime: st.Book.LastUpdateTime,
			ReceivedTime: now,
			Venue:        t.Venue,
			Instrument:   st.Instrument,
			Payload:      st.Book.Snapshot(),
		}))
	}
	return out
}
