package transformer

import (
	"errors"
	"testing"

	"github.com/marketpulse/streams/pkg/event"
	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/streamerr"
	"github.com/marketpulse/streams/pkg/subscription"
)

func TestStatelessTransformEmitsResolvedEvent(t *testing.T) {
	t.Parallel()
	id := subscription.NewID("@trade", "BTCUSDT")
	s := &Stateless[event.Trade]{
		Venue:   "binance_spot",
		Routing: map[subscription.ID]instrument.Instrument{id: instrument.New("BTC", "USDT")},
		Decode: func(raw []byte) ([]WireItem[event.Trade], error) {
			return []WireItem[event.Trade]{{ID: id, Payload: event.Trade{ID: "1"}}}, nil
		},
	}

	out := s.Transform(nil)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Err != nil {
		t.Fatalf("unexpected error: %v", out[0].Err)
	}
	if out[0].Event.Instrument.Base != "BTC" {
		t.Fatalf("Instrument = %+v, want resolved BTC/USDT", out[0].Event.Instrument)
	}
}

func TestStatelessTransformNotIdentifiable(t *testing.T) {
	t.Parallel()
	s := &Stateless[event.Trade]{
		Venue:   "binance_spot",
		Routing: map[subscription.ID]instrument.Instrument{},
		Decode: func(raw []byte) ([]WireItem[event.Trade], error) {
			return []WireItem[event.Trade]{{ID: subscription.NewID("@trade", "UNKNOWN")}}, nil
		},
	}

	out := s.Transform(nil)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	var notIdentifiable *streamerr.NotIdentifiableError
	if !errors.As(out[0].Err, &notIdentifiable) {
		t.Fatalf("err = %v, want *streamerr.NotIdentifiableError", out[0].Err)
	}
}

func TestStatelessTransformDeserialiseError(t *testing.T) {
	t.Parallel()
	s := &Stateless[event.Trade]{
		Decode: func(raw []byte) ([]WireItem[event.Trade], error) {
			return nil, errors.New("bad json")
		},
	}

	out := s.Transform(nil)
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	var deserialise *streamerr.DeserialiseError
	if !errors.As(out[0].Err, &deserialise) {
		t.Fatalf("err = %v, want *streamerr.DeserialiseError", out[0].Err)
	}
}

func TestStatelessTransformSkipsControlFrames(t *testing.T) {
	t.Parallel()
	s := &Stateless[event.Trade]{
		Decode: func(raw []byte) ([]WireItem[event.Trade], error) { return nil, nil },
	}

	if out := s.Transform(nil); out != nil {
		t.Fatalf("out = %+v, want nil for a skipped control frame", out)
	}
}
