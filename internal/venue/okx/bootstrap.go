package okx

import (
	"context"

	"github.com/marketpulse/streams/pkg/book"
	"github.com/marketpulse/streams/pkg/subscription"

	bookxform "github.com/marketpulse/streams/internal/transformer/book"
)

// Bootstrap implements builder.Bootstrap for OKX: per the original
// implementation's OkxFuturesBookUpdater::init, OKX needs no HTTP
// snapshot call — the first WebSocket message for a freshly subscribed
// channel is itself a full snapshot, so the InstrumentBook starts empty
// with an AbsoluteSequenceUpdater awaiting that first "snapshot" action.
func Bootstrap(_ context.Context, sub subscription.Subscription) (*bookxform.InstrumentBook, error) {
	return &bookxform.InstrumentBook{
		Instrument: sub.Instrument,
		Book:       book.NewFromSnapshot(nil, nil),
		Updater:    bookxform.NewAbsoluteSequenceUpdater(),
	}, nil
}
