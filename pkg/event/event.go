// Package event defines the canonical MarketEvent envelope (C12) and the
// Data tagged union used by the multi-stream builder (C11) to compose
// heterogeneous kind-specific streams into one output.
package event

import (
	"time"

	"github.com/marketpulse/streams/pkg/book"
	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/side"
	"github.com/marketpulse/streams/pkg/subscription"
)

// MarketEvent is the canonical envelope every normalized payload travels
// in: venue, instrument, both a decode-time and an exchange-reported
// timestamp, and the payload itself.
type MarketEvent[T any] struct {
	ExchangeTime time.Time
	ReceivedTime time.Time
	Venue        subscription.Venue
	Instrument   instrument.Instrument
	Payload      T
}

// Trade is the normalized §3 public-trade payload.
type Trade struct {
	ID     string
	Price  float64
	Amount float64
	Side   side.Side
}

// Liquidation is a normalized forced-liquidation event, the payload of the
// Liquidations subscription kind.
type Liquidation struct {
	Side     side.Side
	Price    float64
	Quantity float64
	Time     time.Time
}

// Candle is a normalized OHLCV payload, the payload of the Candles
// subscription kind.
type Candle struct {
	Interval  string
	OpenTime  time.Time
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	TradeCnt  uint64
}

// Result pairs a MarketEvent with a terminal decode/sequencing error for
// that single event, matching the stream's Result<MarketEvent<T>, Error>
// yield type from §4.4.
type Result[T any] struct {
	Event MarketEvent[T]
	Err   error
}

// Ok constructs a successful Result.
func Ok[T any](e MarketEvent[T]) Result[T] { return Result[T]{Event: e} }

// Err constructs a failed Result.
func Err[T any](err error) Result[T] { return Result[T]{Err: err} }

// MarketIter is zero or more Results produced by transforming a single
// inbound wire message (§4.5): some venues batch multiple trades or book
// deltas into one frame.
type MarketIter[T any] []Result[T]

// Kind tags which payload variant a Data union value carries.
type Kind int

const (
	KindTrade Kind = iota
	KindOrderBookL1
	KindOrderBook
	KindLiquidation
	KindCandle
)

// Data is the tagged union §4.9 describes as "a user-defined tagged union
// implementing From<Kind::Event> for each component kind". The
// MultiStreamBuilder (C11) coerces every kind-specific MarketEvent into
// MarketEvent[Data] so they can share one output channel.
type Data struct {
	Kind        Kind
	Trade       Trade
	OrderBookL1 book.OrderBookL1
	OrderBook   book.OrderBook
	Liquidation Liquidation
	Candle      Candle
}

// FromTrade coerces a trade MarketEvent into the Data union, the Go
// equivalent of the original's `From<MarketEvent<PublicTrade>>`.
func FromTrade(e MarketEvent[Trade]) MarketEvent[Data] {
	return MarketEvent[Data]{
		ExchangeTime: e.ExchangeTime,
		ReceivedTime: e.ReceivedTime,
		Venue:        e.Venue,
		Instrument:   e.Instrument,
		Payload:      Data{Kind: KindTrade, Trade: e.Payload},
	}
}

// FromOrderBookL1 coerces an OrderBookL1 MarketEvent into the Data union.
func FromOrderBookL1(e MarketEvent[book.OrderBookL1]) MarketEvent[Data] {
	return MarketEvent[Data]{
		ExchangeTime: e.ExchangeTime,
		ReceivedTime: e.ReceivedTime,
		Venue:        e.Venue,
		Instrument:   e.Instrument,
		Payload:      Data{Kind: KindOrderBookL1, OrderBookL1: e.Payload},
	}
}

// FromOrderBook coerces an OrderBook (L2/L3) MarketEvent into the Data
// union.
func FromOrderBook(e MarketEvent[book.OrderBook]) MarketEvent[Data] {
	return MarketEvent[Data]{
		ExchangeTime: e.ExchangeTime,
		ReceivedTime: e.ReceivedTime,
		Venue:        e.Venue,
		Instrument:   e.Instrument,
		Payload:      Data{Kind: KindOrderBook, OrderBook: e.Payload},
	}
}

// FromLiquidation coerces a Liquidation MarketEvent into the Data union.
func FromLiquidation(e MarketEvent[Liquidation]) MarketEvent[Data] {
	return MarketEvent[Data]{
		ExchangeTime: e.ExchangeTime,
		ReceivedTime: e.ReceivedTime,
		Venue:        e.Venue,
		Instrument:   e.Instrument,
		Payload:      Data{Kind: KindLiquidation, Liquidation: e.Payload},
	}
}

// FromCandle coerces a Candle MarketEvent into the Data union.
func FromCandle(e MarketEvent[Candle]) MarketEvent[Data] {
	return MarketEvent[Data]{
		ExchangeTime: e.ExchangeTime,
		ReceivedTime: e.ReceivedTime,
		Venue:        e.Venue,
		Instrument:   e.Instrument,
		Payload:      Data{Kind: KindCandle, Candle: e.Payload},
	}
}
