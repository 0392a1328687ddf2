package mapper

import (
	"testing"

	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/subscription"

	"github.com/marketpulse/streams/internal/venue/binance"
)

func TestMapBuildsRoutingAndRequests(t *testing.T) {
	t.Parallel()
	c := binance.NewSpot("binance_spot")
	subs := []subscription.Subscription{
		{Venue: c.ID(), Instrument: instrument.New("BTC", "USDT"), Kind: subscription.PublicTrades},
		{Venue: c.ID(), Instrument: instrument.New("ETH", "USDT"), Kind: subscription.PublicTrades},
	}

	meta, err := Map(subs, c)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(meta.RoutingMap) != 2 {
		t.Fatalf("len(RoutingMap) = %d, want 2", len(meta.RoutingMap))
	}
	if len(meta.Requests) != 1 {
		t.Fatalf("len(Requests) = %d, want 1 (binance batches into one SUBSCRIBE frame)", len(meta.Requests))
	}
	if meta.ExpectedResponses != 1 {
		t.Fatalf("ExpectedResponses = %d, want 1", meta.ExpectedResponses)
	}
}

// TestMapPanicsOnConflictingDuplicateID covers §4.2's programmer-error
// guard: two distinct canonical Subscriptions that collide on the same
// venue wire identity (here, case-insensitive market symbols) must panic
// rather than silently drop one.
func TestMapPanicsOnConflictingDuplicateID(t *testing.T) {
	t.Parallel()
	c := binance.NewSpot("binance_spot")
	conflicting := []subscription.Subscription{
		{Venue: c.ID(), Instrument: instrument.New("BTC", "USDT"), Kind: subscription.PublicTrades},
		{Venue: c.ID(), Instrument: instrument.New("btc", "usdt"), Kind: subscription.PublicTrades},
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on conflicting duplicate subscription id")
		}
	}()
	_, _ = Map(conflicting, c)
}
