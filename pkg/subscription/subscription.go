// Package subscription defines the canonical description of "what to
// receive" from a venue, and the deterministic key used to route inbound
// venue messages back to the Subscription that requested them.
package subscription

import (
	"fmt"

	"github.com/marketpulse/streams/pkg/instrument"
)

// Kind enumerates the normalized market-data channels a Subscription may
// request. A Candles subscription carries its interval in
// Subscription.Interval; the Kind itself is a plain enumerant so it remains
// comparable and usable as a map key alongside the other Kinds.
type Kind int

const (
	PublicTrades Kind = iota
	OrderBooksL1
	OrderBooksL2
	OrderBooksL3
	Liquidations
	Candles
)

func (k Kind) String() string {
	switch k {
	case PublicTrades:
		return "public_trades"
	case OrderBooksL1:
		return "order_books_l1"
	case OrderBooksL2:
		return "order_books_l2"
	case OrderBooksL3:
		return "order_books_l3"
	case Liquidations:
		return "liquidations"
	case Candles:
		return "candles"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Venue identifies a distinct exchange endpoint, e.g. one spot cluster or
// one perpetual-futures cluster of a given exchange.
type Venue string

// Subscription is the canonical description of a single normalized market
// data feed: a venue, the instrument it concerns, and the kind of event
// stream requested. Two Subscriptions are equal iff all fields match
// (Interval included).
type Subscription struct {
	Venue      Venue
	Instrument instrument.Instrument
	Kind       Kind
	// Interval is only meaningful when Kind == Candles (e.g. "1m", "1h").
	Interval string
}

func (s Subscription) String() string {
	if s.Kind == Candles && s.Interval != "" {
		return fmt.Sprintf("%s|%s|%s(%s)", s.Venue, s.Instrument, s.Kind, s.Interval)
	}
	return fmt.Sprintf("%s|%s|%s", s.Venue, s.Instrument, s.Kind)
}

// ID is an opaque, deterministic key used to route an inbound venue message
// to the Subscription that requested it. It is constructed the same way by
// both the mapper (building the routing map) and the venue decoder
// (identifying inbound frames): "{channel}|{market}".
type ID string

// NewID builds a SubscriptionId from a venue-specific channel and market
// identifier pair, matching the "{channel}|{market}" convention used
// throughout every connector in this module.
func NewID(channel, market string) ID {
	return ID(channel + "|" + market)
}

// SupportChecker is implemented by exchange connectors (C2) to report which
// instrument kinds and subscription kinds they support. The builder checks
// every Subscription against it (via Validate) before opening a socket.
type SupportChecker interface {
	SupportsInstrumentKind(instrument.Kind) bool
	SupportsKind(Kind) bool
}

// Validate checks the Subscription against the venue's declared support,
// rejecting it before any socket is opened. This is the data-model
// invariant from §3: "venue must declare support for instrument.kind AND
// for kind, else the subscription is rejected before any socket open."
func (s Subscription) Validate(support SupportChecker) error {
	if !support.SupportsInstrumentKind(s.Instrument.Kind) {
		return fmt.Errorf("venue %s does not support instrument kind %s", s.Venue, s.Instrument.Kind)
	}
	if !support.SupportsKind(s.Kind) {
		return fmt.Errorf("venue %s does not support subscription kind %s", s.Venue, s.Kind)
	}
	return nil
}

// Dedup returns subs with duplicate Subscriptions collapsed, preserving the
// order of first occurrence. Per §8 invariant 7, duplicate subscriptions
// passed to a single group must collapse to a single socket subscription.
func Dedup(subs []Subscription) []Subscription {
	seen := make(map[Subscription]struct{}, len(subs))
	out := make([]Subscription, 0, len(subs))
	for _, s := range subs {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
