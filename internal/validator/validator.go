// Package validator implements the C4 subscription validator: it reads
// subscribe responses off a freshly-opened socket and turns a candidate
// routing map into a ready one, or a terminal error. Grounded on the
// original implementation's subscriber/validator.rs
// (WebSocketSubValidator::validate) and subscriber/mod.rs.
package validator

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/gorilla/websocket"

	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/streamerr"
	"github.com/marketpulse/streams/pkg/subscription"

	"github.com/marketpulse/streams/internal/wsconn"
)

// AckKind classifies one parsed subscribe-response frame.
type AckKind int

const (
	// AckIgnore covers pings/pongs/control frames and anything else that
	// is not a subscribe ack — skipped silently per §4.3.
	AckIgnore AckKind = iota
	AckSuccess
	AckFailure
)

// Ack is the outcome of parsing one frame as a subscribe response.
// RekeyFrom/RekeyTo are both empty unless the venue assigns a new id on
// subscribe, in which case the validator rewrites the routing map entry
// (§4.3 step 1).
type Ack struct {
	Kind      AckKind
	RekeyFrom subscription.ID
	RekeyTo   subscription.ID
	Reason    string
}

// AckParser interprets one raw frame as a subscribe response. A parse
// failure is reported via the bool return, not an error: per §4.3 step 3,
// an unparseable frame while acks are still flowing is ordinary market
// traffic (the venue streamed a snapshot ahead of its final ack) and must
// be ignored rather than treated as a validator failure.
type AckParser interface {
	ParseAck(frame []byte) (Ack, bool)
}

// Validate drives the §4.3 algorithm: race a timeout against socket
// reads, counting successes, until expectedResponses acks are seen. It
// returns the (possibly rekeyed) routing map, or a terminal
// *streamerr.SubscribeError.
func Validate(
	conn *wsconn.Conn,
	routing map[subscription.ID]instrument.Instrument,
	expectedResponses int,
	parser AckParser,
	timeout time.Duration,
) (map[subscription.ID]instrument.Instrument, error) {
	if expectedResponses == 0 {
		return routing, nil
	}

	deadline := time.Now().Add(timeout)
	success := 0

	for success < expectedResponses {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &streamerr.SubscribeError{Reason: fmt.Sprintf("validation timeout reached: %s", timeout)}
		}

		if err := conn.SetReadDeadline(deadline); err != nil {
			return nil, &streamerr.SubscribeError{Reason: fmt.Sprintf("set read deadline: %v", err)}
		}

		frame, err := conn.ReadMessage()
		if err != nil {
			if isTimeout(err) {
				return nil, &streamerr.SubscribeError{Reason: fmt.Sprintf("validation timeout reached: %s", timeout)}
			}
			if isClose(err) {
				return nil, &streamerr.SubscribeError{Reason: fmt.Sprintf("websocket closed during validation: %v", err)}
			}
			return nil, &streamerr.SubscribeError{Reason: fmt.Sprintf("read failed during validation: %v", err)}
		}

		ack, ok := parser.ParseAck(frame)
		if !ok {
			// §4.3 step 3: parse failure is either genuine control
			// traffic or a venue streaming data ahead of its final ack.
			// Either way, ignore and keep waiting for the real acks.
			continue
		}

		switch ack.Kind {
		case AckSuccess:
			success++
			if ack.RekeyFrom != "" && ack.RekeyFrom != ack.RekeyTo {
				if inst, ok := routing[ack.RekeyFrom]; ok {
					delete(routing, ack.RekeyFrom)
					routing[ack.RekeyTo] = inst
				}
			}
		case AckFailure:
			return nil, &streamerr.SubscribeError{Reason: ack.Reason}
		default:
			continue
		}
	}

	// Clear the validation deadline so the market stream's later reads are
	// not cut off by it.
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, &streamerr.SubscribeError{Reason: fmt.Sprintf("clear read deadline: %v", err)}
	}
	return routing, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isClose(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr)
}
