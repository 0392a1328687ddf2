package okx

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

type wireArg struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}

// wireTrade mirrors OkxTrade (domain/trade.rs): instId/price/amount/side
// carried as strings, wrapped in an OkxMessage{arg, data}.
type wireTrade struct {
	TradeID string `json:"tradeId"`
	Price   string `json:"px"`
	Amount  string `json:"sz"`
	Side    string `json:"side"`
	TsMs    string `json:"ts"`
}

type wireTradeMsg struct {
	Arg  wireArg     `json:"arg"`
	Data []wireTrade `json:"data"`
}

// DecodeTrades implements transformer.DecodeFunc[event.Trade]. A single
// OKX frame batches multiple trades in "data", per §4.5's MarketIter
// 0..N-per-message.
func DecodeTrades(raw []byte) ([]transformer.WireItem[event.Trade], error) {
	var w wireTradeMsg
	if err := goccyjson.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("okx: decode trade message: %w", err)
	}
	if w.Arg.Channel == "" || len(w.Data) == 0 {
		// Not a data frame (likely a subscribe ack or other event frame);
		// let the caller treat it as nothing to emit. A bare "pong" text
		// frame is not JSON and fails the decode above instead.
		return nil, nil
	}

	id := subscription.NewID(chTrades, w.Arg.InstID)
	out := make([]transformer.WireItem[event.Trade], 0, len(w.Data))
	for _, t := range w.Data {
		price, err := strconv.ParseFloat(t.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("okx: parse trade price %q: %w", t.Price, err)
		}
		amount, err := strconv.ParseFloat(t.Amount, 64)
		if err != nil {
			return nil, fmt.Errorf("okx: parse trade amount %q: %w", t.Amount, err)
		}
		s := side.Buy
		if t.Side == "sell" {
			s = side.Sell
		}
		exchangeTime := msStringToTime(t.TsMs)

		out = append(out, transformer.WireItem[event.Trade]{
			ID:           id,
			ExchangeTime: exchangeTime,
			Payload: event.Trade{
				ID:     t.TradeID,
				Price:  price,
				Amount: amount,
				Side:   s,
			},
		})
	}
	return out, nil
}

// wireLevel mirrors an OKX book level: OKX sends 4 elements
// [price, size, deprecated, orderCount]; only the first two matter here.
type wireLevel []string

func (l wireLevel) toLevel() (book.Level, error) {
	if len(l) < 2 {
		return book.Level{}, fmt.Errorf("okx: malformed level %v", l)
	}
	price, err := strconv.ParseFloat(l[0], 64)
	if err != nil {
		return book.Level{}, fmt.Errorf("okx: parse level price %q: %w", l[0], err)
	}
	amount, err := strconv.ParseFloat(l[1], 64)
	if err != nil {
		return book.Level{}, fmt.Errorf("okx: parse level amount %q: %w", l[1], err)
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

// wireBookData mirrors one entry of OkxFuturesOrderBookDelta.data: a
// snapshot or incremental update with OKX's absolute sequence numbers.
type wireBookData struct {
	Asks      []wireLevel `json:"asks"`
	Bids      []wireLevel `json:"bids"`
	SeqID     uint64      `json:"seqId"`
	PrevSeqID uint64      `json:"prevSeqId"`
}

type wireBookMsg struct {
	Arg    wireArg        `json:"arg"`
	Action string         `json:"action"`
	Data   []wireBookData `json:"data"`
}

// DecodeOrderBookL2 implements bookxform.DecodeFunc for OKX's "books"
// channel, per the original's OkxFuturesBookUpdater::update: the first
// message is a full "snapshot"; everything after is an "update" carrying
// seqId/prevSeqId for the absolute-sequence policy.
func DecodeOrderBookL2(raw []byte) ([]bookxform.DeltaItem, error) {
	var w wireBookMsg
	if err := goccyjson.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("okx: decode book message: %w", err)
	}
	if w.Arg.Channel == "" {
		return nil, nil
	}

	id := subscription.NewID(chOrderBook, w.Arg.InstID)
	out := make([]bookxform.DeltaItem, 0, len(w.Data))
	for _, d := range w.Data {
		bids, err := toLevels(d.Bids)
		if err != nil {
			return nil, err
		}
		asks, err := toLevels(d.Asks)
		if err != nil {
			return nil, err
		}
		out = append(out, bookxform.DeltaItem{
			ID: id,
			Delta: bookxform.Delta{
				Action:       w.Action,
				LastUpdateID: d.SeqID,
				PrevUpdateID: d.PrevSeqID,
				Bids:         bids,
				Asks:         asks,
			},
		})
	}
	return out, nil
}

// msStringToTime parses OKX's "ts" field, a millisecond epoch encoded as
// a JSON string, defaulting to the zero time (caller fills in now) on any
// parse failure rather than treating it as a decode error.
func msStringToTime(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
