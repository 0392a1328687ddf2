// Package instrument describes the tradeable instruments that subscriptions
// reference: spot pairs, perpetual swaps, dated futures and options.
package instrument

import "fmt"

// Kind distinguishes the settlement/listing style of an Instrument.
type Kind int

const (
	// Spot is a cash-settled, non-expiring pair.
	Spot Kind = iota
	// Perpetual is a non-expiring derivative (a "perp"/"swap").
	Perpetual
	// Future is a dated, expiring derivative.
	Future
	// Option is a dated, expiring derivative with a strike.
	Option
)

func (k Kind) String() string {
	switch k {
	case Spot:
		return "spot"
	case Perpetual:
		return "perpetual"
	case Future:
		return "future"
	case Option:
		return "option"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Instrument identifies a base/quote pair and the product it trades as.
// Expiry is only meaningful for Future and Option; Strike only for Option.
type Instrument struct {
	Base   string
	Quote  string
	Kind   Kind
	Expiry string // e.g. "2024-12-27"; empty for Spot/Perpetual
	Strike float64
}

// New constructs a spot instrument, the common case in tests and examples.
func New(base, quote string) Instrument {
	return Instrument{Base: base, Quote: quote, Kind: Spot}
}

// Perp constructs a perpetual-swap instrument.
func Perp(base, quote string) Instrument {
	return Instrument{Base: base, Quote: quote, Kind: Perpetual}
}

// String renders a human-readable identity, e.g. "BTC/USDT" or "BTC/USDT-PERP".
func (i Instrument) String() string {
	switch i.Kind {
	case Perpetual:
		return fmt.Sprintf("%s/%s-PERP", i.Base, i.Quote)
	case Future:
		return fmt.Sprintf("%s/%s-%s", i.Base, i.Quote, i.Expiry)
	case Option:
		return fmt.Sprintf("%s/%s-%s-%.2f", i.Base, i.Quote, i.Expiry, i.Strike)
	default:
		return fmt.Sprintf("%s/%s", i.Base, i.Quote)
	}
}
