// Package okx implements the venue.Connector for OKX, grounded on the
// original implementation's exchange/okx/domain/subscription.rs and
// exchange/okx/futures/l2.rs.
package okx

import (
	"fmt"
	"strings"
	"time"

	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/subscription"
)

const (
	chTrades    = "trades"
	chOrderBook = "books"
)

// defaultSubscriptionTimeout is used when a Connector is built without an
// explicit timeout (e.g. in tests that don't care about §6.4 tuning).
const defaultSubscriptionTimeout = 10 * time.Second

// Connector implements venue.Connector for OKX public spot and perpetual
// swap channels.
type Connector struct {
	Venue      subscription.Venue
	WSURL      string
	SubTimeout time.Duration // §6.4 subscription_timeout; defaultSubscriptionTimeout if zero
}

// New builds the OKX connector with the §6.4 default subscription
// timeout; use WithSubscriptionTimeout to override it.
func New(v subscription.Venue) *Connector {
	return &Connector{Venue: v, WSURL: "wss://ws.okx.com:8443/ws/v5/public"}
}

// WithSubscriptionTimeout overrides the §6.4 subscription_timeout and
// returns c for chaining.
func (c *Connector) WithSubscriptionTimeout(d time.Duration) *Connector {
	c.SubTimeout = d
	return c
}

func (c *Connector) ID() subscription.Venue { return c.Venue }

func (c *Connector) URL(kind subscription.Kind) (string, error) {
	if !c.SupportsKind(kind) {
		return "", fmt.Errorf("okx: unsupported subscription kind %s", kind)
	}
	return c.WSURL, nil
}

func channelFor(kind subscription.Kind) (string, error) {
	switch kind {
	case subscription.PublicTrades:
		return chTrades, nil
	case subscription.OrderBooksL2:
		return chOrderBook, nil
	default:
		return "", fmt.Errorf("okx: no channel for kind %s", kind)
	}
}

// instID renders OKX's "{BASE}-{QUOTE}" spot or "{BASE}-{QUOTE}-SWAP"
// perpetual instrument identifier, per OkxSubMeta::new.
func instID(i instrument.Instrument) string {
	base, quote := strings.ToUpper(i.Base), strings.ToUpper(i.Quote)
	if i.Kind == instrument.Perpetual {
		return fmt.Sprintf("%s-%s-SWAP", base, quote)
	}
	return fmt.Sprintf("%s-%s", base, quote)
}

// SubscriptionID builds "{channel}|{instId}", e.g. "trades|BTC-USDT".
func (c *Connector) SubscriptionID(sub subscription.Subscription) subscription.ID {
	channel, err := channelFor(sub.Kind)
	if err != nil {
		return subscription.ID("")
	}
	return subscription.NewID(channel, instID(sub.Instrument))
}

// Requests builds one "subscribe" frame whose args list covers every
// subscription, per OkxSubMeta::requests.
func (c *Connector) Requests(subs []subscription.Subscription) ([]any, error) {
	args := make([]any, 0, len(subs))
	for _, sub := range subs {
		channel, err := channelFor(sub.Kind)
		if err != nil {
			return nil, err
		}
		args = append(args, map[string]any{
			"channel": channel,
			"instId":  instID(sub.Instrument),
		})
	}
	return []any{
		map[string]any{
			"op":   "subscribe",
			"args": args,
		},
	}, nil
}

// ExpectedResponses: OKX acknowledges each channel+instId argument with its
// own "event":"subscribe" frame, one per routing map entry.
func (c *Connector) ExpectedResponses(routingMapSize int) int { return routingMapSize }

// PingInterval sends OKX's documented "ping" text frame (not a control
// frame) every 20s to keep the connection alive.
func (c *Connector) PingInterval() (time.Duration, []byte, bool) {
	return 20 * time.Second, []byte("ping"), true
}

func (c *Connector) SubscriptionTimeout() time.Duration {
	if c.SubTimeout > 0 {
		return c.SubTimeout
	}
	return defaultSubscriptionTimeout
}

func (c *Connector) SupportsInstrumentKind(k instrument.Kind) bool {
	return k == instrument.Spot || k == instrument.Perpetual
}

func (c *Connector) SupportsKind(k subscription.Kind) bool {
	switch k {
	case subscription.PublicTrades, subscription.OrderBooksL2:
		return true
	default:
		return false
	}
}
