// Package side defines the Buy/Sell enum shared by trade and order-book
// payloads across every venue.
package side

// Side is which side of the book/trade an event concerns.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}
