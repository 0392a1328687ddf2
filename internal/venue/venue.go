// Package venue defines the per-exchange connector contract (C2): static
// metadata and pure functions every venue package (binance, okx, ...)
// implements.
package venue

import (
	"time"

	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/subscription"
)

// Connector exposes a venue's static metadata and pure mapping functions,
// per §4.1. Implementations hold no connection state; one Connector value
// is shared read-only across every subscription group for that venue.
type Connector interface {
	// ID returns the venue identifier this connector serves.
	ID() subscription.Venue

	// URL returns the WebSocket endpoint for the given subscription kind,
	// or an error if the venue has no endpoint for that kind (the builder
	// wraps it in a *streamerr.ConfigError).
	URL(kind subscription.Kind) (string, error)

	// SubscriptionID computes the deterministic "{channel}|{market}" (or
	// venue-equivalent) key for sub. The mapper and the decoder must
	// agree on this value for every subscription.
	SubscriptionID(sub subscription.Subscription) subscription.ID

	// Requests produces the wire subscribe payloads for subs. A venue may
	// batch every subscription into one message or emit one per
	// subscription; that choice is encoded here.
	Requests(subs []subscription.Subscription) ([]any, error)

	// ExpectedResponses reports how many success acknowledgements the
	// validator should wait for before declaring the group ready, given
	// routingMapSize entries in the mapper's routing map.
	ExpectedResponses(routingMapSize int) int

	// PingInterval returns the application-level keepalive period and
	// frame payload, or ok=false if the venue needs none.
	PingInterval() (interval time.Duration, payload []byte, ok bool)

	// SubscriptionTimeout bounds how long the validator waits for all
	// expected acknowledgements; §4.1 default is 10s.
	SubscriptionTimeout() time.Duration

	// SupportsInstrumentKind and SupportsKind implement
	// subscription.SupportChecker so callers can validate a Subscription
	// before opening any socket (§3's invariant).
	SupportsInstrumentKind(instrument.Kind) bool
	SupportsKind(subscription.Kind) bool
}
