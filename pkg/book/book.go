// Package book holds the normalized order-book payload types shared by
// every venue's L1/L2 transformer: Level, OrderBookSide and OrderBook, plus
// the upsert rule that every book updater policy applies identically.
package book

import (
	"log/slog"
	"time"

	"github.com/marketpulse/streams/pkg/side"
)

// Level is a single normalized price/amount pair on one side of a book.
type Level struct {
	Price  float64
	Amount float64
}

// EqPrice reports whether price is the same level as l, within float64
// epsilon — matching exchange price-grid comparisons rather than exact
// bit-equality, since wire prices are decimal strings parsed to float64.
func (l Level) EqPrice(price float64) bool {
	diff := price - l.Price
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}

// epsilon mirrors the original implementation's use of the language's
// float epsilon constant for level-price comparison.
const epsilon = 2.220446049250313e-16

// OrderBookL1 is the normalized best-bid/best-ask payload for a §3
// OrderBooksL1 subscription.
type OrderBookL1 struct {
	LastUpdateTime time.Time
	LastUpdateID   uint64
	BestBid        Level
	BestAsk        Level
}

// OrderBookSide holds one side (bid or ask) of a book as an unsorted slice
// of Levels, mutated in place by Upsert. Sorting is deferred to Snapshot so
// that the hot path (applying a delta) never pays sort cost per update.
type OrderBookSide struct {
	side   side.Side
	levels []Level
}

// NewSide constructs an OrderBookSide from an initial snapshot.
func NewSide(s side.Side, levels []Level) OrderBookSide {
	cp := make([]Level, len(levels))
	copy(cp, levels)
	return OrderBookSide{side: s, levels: cp}
}

// Levels returns a read-only view of the current levels, in whatever order
// they happen to be stored; callers that need the externally-observable
// sort order should use Sorted instead.
func (s *OrderBookSide) Levels() []Level { return s.levels }

// Upsert applies a batch of incoming levels to this side, one at a time,
// following the §4.6.2 upsert rule.
func (s *OrderBookSide) Upsert(levels []Level, logger *slog.Logger) {
	for _, l := range levels {
		s.UpsertSingle(l, logger)
	}
}

// UpsertSingle applies the §4.6.2 upsert rule for one incoming level:
//
//	exists & amount == 0  -> remove
//	exists & amount >  0  -> replace
//	absent & amount >  0  -> insert
//	absent & amount == 0  -> warn, no-op
func (s *OrderBookSide) UpsertSingle(newLevel Level, logger *slog.Logger) {
	idx := -1
	for i, l := range s.levels {
		if l.EqPrice(newLevel.Price) {
			idx = i
			break
		}
	}

	switch {
	case idx >= 0 && newLevel.Amount == 0:
		s.levels = append(s.levels[:idx], s.levels[idx+1:]...)
	case idx >= 0:
		s.levels[idx] = newLevel
	case newLevel.Amount > 0:
		s.levels = append(s.levels, newLevel)
	default:
		if logger != nil {
			logger.Warn("level to remove not found", "price", newLevel.Price, "side", s.side)
		}
	}
}

// Sorted returns a copy of the levels in the externally-observable order
// required by §3: bids best-first descending by price, asks best-first
// ascending by price.
func (s *OrderBookSide) Sorted() []Level {
	out := make([]Level, len(s.levels))
	copy(out, s.levels)
	less := func(i, j int) bool { return out[i].Price < out[j].Price }
	if s.side == side.Buy {
		less = func(i, j int) bool { return out[i].Price > out[j].Price }
	}
	insertionSort(out, less)
	return out
}

func insertionSort(levels []Level, less func(i, j int) bool) {
	for i := 1; i < len(levels); i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			levels[j], levels[j-1] = levels[j-1], levels[j]
		}
	}
}

// OrderBook is the normalized §3 OrderBook (L2) payload.
type OrderBook struct {
	LastUpdateTime time.Time
	Bids           OrderBookSide
	Asks           OrderBookSide
}

// NewFromSnapshot constructs an OrderBook from an HTTP snapshot's raw
// bid/ask levels, per §4.6.1 step 3.
func NewFromSnapshot(bids, asks []Level) OrderBook {
	return OrderBook{
		LastUpdateTime: time.Now(),
		Bids:           NewSide(side.Buy, bids),
		Asks:           NewSide(side.Sell, asks),
	}
}

// Snapshot returns a sorted, independent copy of the book suitable for
// emitting as a MarketEvent payload (§4.6.2 step F).
func (b *OrderBook) Snapshot() OrderBook {
	return OrderBook{
		LastUpdateTime: b.LastUpdateTime,
		Bids:           OrderBookSide{side: side.Buy, levels: b.Bids.Sorted()},
		Asks:           OrderBookSide{side: side.Sell, levels: b.Asks.Sorted()},
	}
}
