// Package binance implements the venue.Connector for Binance Spot and
// Binance USD-M Futures, grounded on the original implementation's
// exchange/binance/{mod,channel,model}.rs and the subscription conventions
// in exchange/binance/domain/subscription.rs.
package binance

import (
	"fmt"
	"strings"
	"time"

	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/subscription"
)

const (
	chTrade       = "@trade"
	chOrderBookL1 = "@bookTicker"
	chOrderBookL2 = "@depth@100ms"
	chLiquidation = "@forceOrder"
)

// defaultSubscriptionTimeout is used when a Connector is built without an
// explicit timeout (e.g. in tests that don't care about §6.4 tuning).
const defaultSubscriptionTimeout = 10 * time.Second

// Connector implements venue.Connector for one Binance cluster (Spot or
// USD-M Futures). The two clusters share every wire convention except the
// WebSocket/REST hosts, the supported instrument kind, and whether
// liquidations and the futures-style (vs spot-style) L2 policy apply.
type Connector struct {
	Venue       subscription.Venue
	WSBase      string // e.g. "wss://stream.binance.com:9443/ws"
	HTTPBase    string // snapshot REST endpoint, e.g. "https://api.binance.com/api/v3/depth"
	Futures     bool
	InstrumentK instrument.Kind
	SubTimeout  time.Duration // §6.4 subscription_timeout; defaultSubscriptionTimeout if zero
}

// NewSpot builds the Binance Spot connector with the §6.4 default
// subscription timeout; use WithSubscriptionTimeout to override it.
func NewSpot(v subscription.Venue) *Connector {
	return &Connector{
		Venue:       v,
		WSBase:      "wss://stream.binance.com:9443/ws",
		HTTPBase:    "https://api.binance.com/api/v3/depth",
		Futures:     false,
		InstrumentK: instrument.Spot,
	}
}

// NewFuturesUsd builds the Binance USD-M Futures connector with the §6.4
// default subscription timeout; use WithSubscriptionTimeout to override it.
func NewFuturesUsd(v subscription.Venue) *Connector {
	return &Connector{
		Venue:       v,
		WSBase:      "wss://fstream.binance.com/ws",
		HTTPBase:    "https://fapi.binance.com/fapi/v1/depth",
		Futures:     true,
		InstrumentK: instrument.Perpetual,
	}
}

// WithSubscriptionTimeout overrides the §6.4 subscription_timeout and
// returns c for chaining.
func (c *Connector) WithSubscriptionTimeout(d time.Duration) *Connector {
	c.SubTimeout = d
	return c
}

func (c *Connector) ID() subscription.Venue { return c.Venue }

// URL returns the same combined-stream endpoint for every kind: Binance
// subscribes to channels after connecting via a SUBSCRIBE method frame
// rather than encoding the channel into the URL.
func (c *Connector) URL(kind subscription.Kind) (string, error) {
	if !c.SupportsKind(kind) {
		return "", fmt.Errorf("binance: unsupported subscription kind %s", kind)
	}
	return c.WSBase, nil
}

func channelFor(kind subscription.Kind) (string, error) {
	switch kind {
	case subscription.PublicTrades:
		return chTrade, nil
	case subscription.OrderBooksL1:
		return chOrderBookL1, nil
	case subscription.OrderBooksL2:
		return chOrderBookL2, nil
	case subscription.Liquidations:
		return chLiquidation, nil
	default:
		return "", fmt.Errorf("binance: no channel for kind %s", kind)
	}
}

func market(i instrument.Instrument) string {
	return strings.ToUpper(i.Base + i.Quote)
}

// SubscriptionID builds "{channel}|{MARKET}", e.g. "@trade|BTCUSDT", per
// the original implementation's subscription_id helper.
func (c *Connector) SubscriptionID(sub subscription.Subscription) subscription.ID {
	channel, err := channelFor(sub.Kind)
	if err != nil {
		return subscription.ID("")
	}
	return subscription.NewID(channel, market(sub.Instrument))
}

// Requests builds one combined SUBSCRIBE frame covering every
// subscription, matching the original's BinanceSubMeta::requests.
func (c *Connector) Requests(subs []subscription.Subscription) ([]any, error) {
	streams := make([]string, 0, len(subs))
	for _, sub := range subs {
		channel, err := channelFor(sub.Kind)
		if err != nil {
			return nil, err
		}
		streams = append(streams, strings.ToLower(market(sub.Instrument))+channel)
	}
	return []any{
		map[string]any{
			"method": "SUBSCRIBE",
			"params": streams,
			"id":     1,
		},
	}, nil
}

// ExpectedResponses is always 1: Binance acknowledges the whole batched
// SUBSCRIBE request with a single response frame.
func (c *Connector) ExpectedResponses(routingMapSize int) int { return 1 }

// PingInterval reports that no application-level keepalive is needed:
// Binance's WebSocket server drives ping/pong frames itself, and
// gorilla/websocket answers them automatically.
func (c *Connector) PingInterval() (time.Duration, []byte, bool) { return 0, nil, false }

func (c *Connector) SubscriptionTimeout() time.Duration {
	if c.SubTimeout > 0 {
		return c.SubTimeout
	}
	return defaultSubscriptionTimeout
}

func (c *Connector) SupportsInstrumentKind(k instrument.Kind) bool { return k == c.InstrumentK }

func (c *Connector) SupportsKind(k subscription.Kind) bool {
	switch k {
	case subscription.PublicTrades, subscription.OrderBooksL1, subscription.OrderBooksL2:
		return true
	case subscription.Liquidations:
		return c.Futures
	default:
		return false
	}
}
