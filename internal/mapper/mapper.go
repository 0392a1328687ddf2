// Package mapper implements the C3 subscription mapper: it translates a
// batch of canonical Subscriptions into a venue's wire subscribe messages
// and a SubscriptionId -> Instrument routing map, grounded directly on the
// original implementation's subscriber/mapper.rs.
package mapper

import (
	"fmt"

	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/subscription"

	"github.com/marketpulse/streams/internal/venue"
)

// Meta is the mapper's output: the routing map used by the validator and
// every transformer in this group, the wire subscribe requests to send,
// and how many acknowledgements to expect.
type Meta struct {
	RoutingMap        map[subscription.ID]instrument.Instrument
	Requests          []any
	ExpectedResponses int
}

// Map builds Meta for subs against connector c. Per §4.2, duplicate
// SubscriptionIds are a programming error — two distinct canonical
// Subscriptions that collide on a venue's wire identity — and panic
// rather than silently dropping one; ordinary duplicate Subscriptions
// should already have been removed with subscription.Dedup before
// reaching the mapper.
func Map(subs []subscription.Subscription, c venue.Connector) (Meta, error) {
	routing := make(map[subscription.ID]instrument.Instrument, len(subs))

	for _, sub := range subs {
		id := c.SubscriptionID(sub)
		if existing, ok := routing[id]; ok && existing != sub.Instrument {
			panic(fmt.Sprintf(
				"mapper: duplicate subscription id %q maps to both %s and %s",
				id, existing, sub.Instrument,
			))
		}
		routing[id] = sub.Instrument
	}

	requests, err := c.Requests(subs)
	if err != nil {
		return Meta{}, fmt.Errorf("mapper: build requests: %w", err)
	}

	return Meta{
		RoutingMap:        routing,
		Requests:          requests,
		ExpectedResponses: c.ExpectedResponses(len(routing)),
	}, nil
}
