package binance

import (
	"testing"

	"github.com/marketpulse/streams/pkg/side"
	"github.com/marketpulse/streams/pkg/subscription"

	"github.com/marketpulse/streams/internal/validator"
)

func TestDecodeTradesBuyerIsMakerMapsToSell(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"s":"BTCUSDT","T":1700000000000,"a":12345,"p":"50000.10","q":"0.5","m":true}`)

	items, err := DecodeTrades(raw)
	if err != nil {
		t.Fatalf("DecodeTrades: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	it := items[0]
	if it.ID != subscription.NewID(chTrade, "BTCUSDT") {
		t.Fatalf("ID = %q, want %q", it.ID, subscription.NewID(chTrade, "BTCUSDT"))
	}
	if it.Payload.Side != side.Sell {
		t.Fatalf("buyer_is_maker=true must map to Sell, got %v", it.Payload.Side)
	}
	if it.Payload.Price != 50000.10 {
		t.Fatalf("Price = %v, want 50000.10", it.Payload.Price)
	}
}

func TestDecodeTradesBuyerIsNotMakerMapsToBuy(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"s":"BTCUSDT","T":1700000000000,"a":1,"p":"1","q":"1","m":false}`)

	items, err := DecodeTrades(raw)
	if err != nil {
		t.Fatalf("DecodeTrades: %v", err)
	}
	if items[0].Payload.Side != side.Buy {
		t.Fatalf("buyer_is_maker=false must map to Buy, got %v", items[0].Payload.Side)
	}
}

func TestDecodeOrderBookL2(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"s":"BTCUSDT","T":1,"U":90,"u":105,"pu":89,"b":[["100.0","1.0"]],"a":[["101.0","2.0"]]}`)

	items, err := DecodeOrderBookL2(raw)
	if err != nil {
		t.Fatalf("DecodeOrderBookL2: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	d := items[0].Delta
	if d.FirstUpdateID != 90 || d.LastUpdateID != 105 || d.PrevUpdateID != 89 {
		t.Fatalf("delta sequencing fields = %+v, want U=90 u=105 pu=89", d)
	}
	if len(d.Bids) != 1 || d.Bids[0].Price != 100.0 || d.Bids[0].Amount != 1.0 {
		t.Fatalf("bids = %+v", d.Bids)
	}
}

func TestAckParserParsesSuccessAndFailure(t *testing.T) {
	t.Parallel()
	p := AckParser{}

	ack, ok := p.ParseAck([]byte(`{"result":null,"id":1}`))
	if !ok || ack.Kind != validator.AckSuccess {
		t.Fatalf("success ack = %+v, ok=%v", ack, ok)
	}

	ack, ok = p.ParseAck([]byte(`{"result":["error"],"id":1}`))
	if !ok || ack.Kind != validator.AckFailure {
		t.Fatalf("failure ack not recognised: %+v, ok=%v", ack, ok)
	}

	// A market-data frame with no "id" key must not be mistaken for an ack.
	_, ok = p.ParseAck([]byte(`{"s":"BTCUSDT","p":"1"}`))
	if ok {
		t.Fatal("a frame without an id field must not parse as an ack")
	}
}
