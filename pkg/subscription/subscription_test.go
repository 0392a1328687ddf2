package subscription

import (
	"testing"

	"github.com/marketpulse/streams/pkg/instrument"
)

type fakeSupport struct {
	instrumentKinds map[instrument.Kind]bool
	kinds           map[Kind]bool
}

func (f fakeSupport) SupportsInstrumentKind(k instrument.Kind) bool { return f.instrumentKinds[k] }
func (f fakeSupport) SupportsKind(k Kind) bool                      { return f.kinds[k] }

func TestValidateRejectsUnsupportedInstrumentKind(t *testing.T) {
	t.Parallel()
	sub := Subscription{Venue: "binance", Instrument: instrument.Perp("BTC", "USDT"), Kind: PublicTrades}
	support := fakeSupport{instrumentKinds: map[instrument.Kind]bool{instrument.Spot: true}, kinds: map[Kind]bool{PublicTrades: true}}

	if err := sub.Validate(support); err == nil {
		t.Fatal("expected rejection for unsupported instrument kind")
	}
}

func TestValidateRejectsUnsupportedKind(t *testing.T) {
	t.Parallel()
	sub := Subscription{Venue: "binance", Instrument: instrument.New("BTC", "USDT"), Kind: Liquidations}
	support := fakeSupport{instrumentKinds: map[instrument.Kind]bool{instrument.Spot: true}, kinds: map[Kind]bool{PublicTrades: true}}

	if err := sub.Validate(support); err == nil {
		t.Fatal("expected rejection for unsupported subscription kind")
	}
}

func TestValidateAccepts(t *testing.T) {
	t.Parallel()
	sub := Subscription{Venue: "binance", Instrument: instrument.New("BTC", "USDT"), Kind: PublicTrades}
	support := fakeSupport{instrumentKinds: map[instrument.Kind]bool{instrument.Spot: true}, kinds: map[Kind]bool{PublicTrades: true}}

	if err := sub.Validate(support); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
}

// TestDedupCollapsesDuplicates covers §8 invariant 7: duplicate
// subscriptions passed to a single group must collapse to one entry,
// preserving first-occurrence order.
func TestDedupCollapsesDuplicates(t *testing.T) {
	t.Parallel()
	btc := Subscription{Venue: "binance", Instrument: instrument.New("BTC", "USDT"), Kind: PublicTrades}
	eth := Subscription{Venue: "binance", Instrument: instrument.New("ETH", "USDT"), Kind: PublicTrades}

	got := Dedup([]Subscription{btc, eth, btc, btc, eth})

	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0] != btc || got[1] != eth {
		t.Fatalf("got = %+v, want [btc, eth] in first-occurrence order", got)
	}
}

func TestNewIDIsChannelPipeMarket(t *testing.T) {
	t.Parallel()
	id := NewID("@trade", "BTCUSDT")
	if id != "@trade|BTCUSDT" {
		t.Fatalf("id = %q, want %q", id, "@trade|BTCUSDT")
	}
}
