package okx

import (
	"testing"

	"github.com/marketpulse/streams/pkg/side"
	"github.com/marketpulse/streams/pkg/subscription"

	"github.com/marketpulse/streams/internal/validator"
)

func TestDecodeTradesBatchesMultipleEntries(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"arg":{"channel":"trades","instId":"BTC-USDT-SWAP"},"data":[
		{"tradeId":"1","px":"100.5","sz":"0.1","side":"buy","ts":"1700000000000"},
		{"tradeId":"2","px":"101.0","sz":"0.2","side":"sell","ts":"1700000000100"}
	]}`)

	items, err := DecodeTrades(raw)
	if err != nil {
		t.Fatalf("DecodeTrades: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].Payload.Side != side.Buy || items[1].Payload.Side != side.Sell {
		t.Fatalf("sides = %v, %v", items[0].Payload.Side, items[1].Payload.Side)
	}
	wantID := subscription.NewID(chTrades, "BTC-USDT-SWAP")
	if items[0].ID != wantID {
		t.Fatalf("ID = %q, want %q", items[0].ID, wantID)
	}
}

func TestDecodeTradesSkipsNonDataFrames(t *testing.T) {
	t.Parallel()
	items, err := DecodeTrades([]byte(`{"event":"subscribe","arg":{"channel":"trades","instId":"BTC-USDT"}}`))
	if err != nil {
		t.Fatalf("DecodeTrades: %v", err)
	}
	if items != nil {
		t.Fatalf("expected nil items for a non-data frame, got %+v", items)
	}
}

func TestDecodeOrderBookL2SnapshotAndUpdate(t *testing.T) {
	t.Parallel()

	snapshot := []byte(`{"arg":{"channel":"books","instId":"BTC-USDT-SWAP"},"action":"snapshot","data":[
		{"asks":[["101.0","1.0","0","1"]],"bids":[["100.0","2.0","0","1"]],"seqId":10,"prevSeqId":0}
	]}`)
	items, err := DecodeOrderBookL2(snapshot)
	if err != nil {
		t.Fatalf("DecodeOrderBookL2 snapshot: %v", err)
	}
	if len(items) != 1 || items[0].Delta.Action != "snapshot" || items[0].Delta.LastUpdateID != 10 {
		t.Fatalf("snapshot delta = %+v", items)
	}

	update := []byte(`{"arg":{"channel":"books","instId":"BTC-USDT-SWAP"},"action":"update","data":[
		{"asks":[],"bids":[["100.0","0","0","0"]],"seqId":11,"prevSeqId":10}
	]}`)
	items, err = DecodeOrderBookL2(update)
	if err != nil {
		t.Fatalf("DecodeOrderBookL2 update: %v", err)
	}
	if len(items) != 1 || items[0].Delta.Action != "update" || items[0].Delta.PrevUpdateID != 10 {
		t.Fatalf("update delta = %+v", items)
	}
}

func TestAckParserEventSubscribeAndError(t *testing.T) {
	t.Parallel()
	p := AckParser{}

	ack, ok := p.ParseAck([]byte(`{"event":"subscribe","arg":{"channel":"trades","instId":"BTC-USDT"}}`))
	if !ok || ack.Kind != validator.AckSuccess {
		t.Fatalf("success ack = %+v, ok=%v", ack, ok)
	}

	ack, ok = p.ParseAck([]byte(`{"event":"error","code":"60012","msg":"bad request"}`))
	if !ok || ack.Kind != validator.AckFailure {
		t.Fatalf("failure ack = %+v, ok=%v", ack, ok)
	}

	_, ok = p.ParseAck([]byte(`{"arg":{"channel":"trades","instId":"BTC-USDT"},"data":[]}`))
	if ok {
		t.Fatal("a data frame must not be mistaken for an ack")
	}
}
