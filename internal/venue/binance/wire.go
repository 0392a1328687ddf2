package binance

import (
	"fmt"
	"strconv"
	"time"

	goccyjson "github.com/goccy/go-json"

	"github.com/marketpulse/streams/pkg/book"
	"github.com/marketpulse/streams/pkg/event"
	"github.com/marketpulse/streams/pkg/side"
	"github.com/marketpulse/streams/pkg/subscription"

	bookxform "github.com/marketpulse/streams/internal/transformer/book"
	"github.com/marketpulse/streams/internal/transformer"
)

// wireTrade mirrors the original's BinanceTrade wire shape (domain/trade.rs):
// aliased single-letter fields, price/quantity as JSON strings.
type wireTrade struct {
	Symbol       string `json:"s"`
	TimeMs       int64  `json:"T"`
	ID           uint64 `json:"a"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	BuyerIsMaker bool   `json:"m"`
}

// DecodeTrades implements transformer.DecodeFunc[event.Trade] for a group
// subscribed only to PublicTrades.
func DecodeTrades(raw []byte) ([]transformer.WireItem[event.Trade], error) {
	var w wireTrade
	if err := goccyjson.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("binance: decode trade: %w", err)
	}
	price, err := strconv.ParseFloat(w.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("binance: parse trade price %q: %w", w.Price, err)
	}
	qty, err := strconv.ParseFloat(w.Quantity, 64)
	if err != nil {
		return nil, fmt.Errorf("binance: parse trade quantity %q: %w", w.Quantity, err)
	}

	s := side.Buy
	if w.BuyerIsMaker {
		s = side.Sell
	}

	return []transformer.WireItem[event.Trade]{{
		ID:           subscription.NewID(chTrade, w.Symbol),
		ExchangeTime: msToTime(w.TimeMs),
		Payload: event.Trade{
			ID:     strconv.FormatUint(w.ID, 10),
			Price:  price,
			Amount: qty,
			Side:   s,
		},
	}}, nil
}

// wireBookTicker mirrors BinanceOrderBookL1 (book/l1.rs).
type wireBookTicker struct {
	Symbol        string `json:"s"`
	BestBidPrice  string `json:"b"`
	BestBidAmount string `json:"B"`
	BestAskPrice  string `json:"a"`
	BestAskAmount string `json:"A"`
}

// DecodeOrderBookL1 implements transformer.DecodeFunc[book.OrderBookL1].
func DecodeOrderBookL1(raw []byte) ([]transformer.WireItem[book.OrderBookL1], error) {
	var w wireBookTicker
	if err := goccyjson.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("binance: decode book ticker: %w", err)
	}

	bidPrice, err := strconv.ParseFloat(w.BestBidPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("binance: parse best bid price: %w", err)
	}
	bidAmount, err := strconv.ParseFloat(w.BestBidAmount, 64)
	if err != nil {
		return nil, fmt.Errorf("binance: parse best bid amount: %w", err)
	}
	askPrice, err := strconv.ParseFloat(w.BestAskPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("binance: parse best ask price: %w", err)
	}
	askAmount, err := strconv.ParseFloat(w.BestAskAmount, 64)
	if err != nil {
		return nil, fmt.Errorf("binance: parse best ask amount: %w", err)
	}

	return []transformer.WireItem[book.OrderBookL1]{{
		ID: subscription.NewID(chOrderBookL1, w.Symbol),
		Payload: book.OrderBookL1{
			BestBid: book.Level{Price: bidPrice, Amount: bidAmount},
			BestAsk: book.Level{Price: askPrice, Amount: askAmount},
		},
	}}, nil
}

// wireLevel mirrors a Binance depth-stream level: a 2-element
// [price, amount] JSON array of strings.
type wireLevel [2]string

func (l wireLevel) toLevel() (book.Level, error) {
	price, err := strconv.ParseFloat(l[0], 64)
	if err != nil {
		return book.Level{}, fmt.Errorf("binance: parse level price %q: %w", l[0], err)
	}
	amount, err := strconv.ParseFloat(l[1], 64)
	if err != nil {
		return book.Level{}, fmt.Errorf("binance: parse level amount %q: %w", l[1], err)
	}
	return book.Level{Price: price, Amount: amount}, nil
}

func toLevels(raw []wireLevel) ([]book.Level, error) {
	out := make([]book.Level, len(raw))
	for i, l := range raw {
		lvl, err := l.toLevel()
		if err != nil {
			return nil, err
		}
		out[i] = lvl
	}
	return out, nil
}

// wireDepthUpdate mirrors BinanceOrderBookL2Update (model.rs): the
// futures-style diff-depth frame. Binance Spot emits the identical shape
// except "pu" is absent and always decodes to zero, which SpotStyleUpdater
// never reads.
type wireDepthUpdate struct {
	Symbol        string      `json:"s"`
	TimeMs        int64       `json:"T"`
	FirstUpdateID uint64      `json:"U"`
	LastUpdateID  uint64      `json:"u"`
	PrevUpdateID  uint64      `json:"pu"`
	Bids          []wireLevel `json:"b"`
	Asks          []wireLevel `json:"a"`
}

func decodeDepthUpdate(raw []byte) (wireDepthUpdate, error) {
	var w wireDepthUpdate
	if err := goccyjson.Unmarshal(raw, &w); err != nil {
		return wireDepthUpdate{}, fmt.Errorf("binance: decode depth update: %w", err)
	}
	return w, nil
}

// DecodeOrderBookL2 implements bookxform.DecodeFunc for both Binance
// clusters; the per-venue sequencing difference lives entirely in the
// Updater each InstrumentBook was bootstrapped with, not in this decode.
func DecodeOrderBookL2(raw []byte) ([]bookxform.DeltaItem, error) {
	w, err := decodeDepthUpdate(raw)
	if err != nil {
		return nil, err
	}
	bids, err := toLevels(w.Bids)
	if err != nil {
		return nil, err
	}
	asks, err := toLevels(w.Asks)
	if err != nil {
		return nil, err
	}

	return []bookxform.DeltaItem{{
		ID: subscription.NewID(chOrderBookL2, w.Symbol),
		Delta: bookxform.Delta{
			FirstUpdateID: w.FirstUpdateID,
			LastUpdateID:  w.LastUpdateID,
			PrevUpdateID:  w.PrevUpdateID,
			Bids:          bids,
			Asks:          asks,
		},
	}}, nil
}

// wireLiquidation mirrors BinanceLiquidation (futures/liquidation.rs).
type wireLiquidation struct {
	Order struct {
		Symbol string `json:"s"`
		Side   string `json:"S"`
		Price  string `json:"p"`
		Qty    string `json:"q"`
		TimeMs int64  `json:"T"`
	} `json:"o"`
}

// DecodeLiquidations implements transformer.DecodeFunc[event.Liquidation],
// futures-only.
func DecodeLiquidations(raw []byte) ([]transformer.WireItem[event.Liquidation], error) {
	var w wireLiquidation
	if err := goccyjson.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("binance: decode liquidation: %w", err)
	}
	price, err := strconv.ParseFloat(w.Order.Price, 64)
	if err != nil {
		return nil, fmt.Errorf("binance: parse liquidation price: %w", err)
	}
	qty, err := strconv.ParseFloat(w.Order.Qty, 64)
	if err != nil {
		return nil, fmt.Errorf("binance: parse liquidation quantity: %w", err)
	}

	s := side.Buy
	if w.Order.Side == "SELL" {
		s = side.Sell
	}

	t := msToTime(w.Order.TimeMs)
	return []transformer.WireItem[event.Liquidation]{{
		ID:           subscription.NewID(chLiquidation, w.Order.Symbol),
		ExchangeTime: t,
		Payload: event.Liquidation{
			Side:     s,
			Price:    price,
			Quantity: qty,
			Time:     t,
		},
	}}, nil
}

func msToTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
