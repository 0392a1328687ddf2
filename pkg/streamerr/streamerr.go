// Package streamerr defines the closed error taxonomy (§7) produced by the
// exchange stream transformer pipeline: Socket, Subscribe, Deserialise,
// NotIdentifiable, InvalidSequence and Config.
package streamerr

import (
	"fmt"

	"github.com/marketpulse/streams/pkg/subscription"
)

// SocketError reports a transport failure: connect failure, read/write
// failure, or an unexpected close frame. Propagated at init. A read
// failure mid-stream ends the stream, and the consumer loop reconnects.
type SocketError struct {
	Venue subscription.Venue
	Cause error
}

func (e *SocketError) Error() string {
	return fmt.Sprintf("socket error [%s]: %v", e.Venue, e.Cause)
}

func (e *SocketError) Unwrap() error { return e.Cause }

// SubscribeError reports that a venue rejected a subscribe request, or
// that the validator timed out. Terminal for the initial attempt;
// recoverable by reconnect thereafter.
type SubscribeError struct {
	Venue  subscription.Venue
	Reason string
}

func (e *SubscribeError) Error() string {
	return fmt.Sprintf("subscribe rejected [%s]: %s", e.Venue, e.Reason)
}

// DeserialiseError reports that a frame failed to parse. Non-fatal
// mid-stream; the consumer logs and skips it.
type DeserialiseError struct {
	Cause   error
	Payload []byte
}

func (e *DeserialiseError) Error() string {
	return fmt.Sprintf("deserialise error: %v (payload=%q)", e.Cause, truncate(e.Payload, 256))
}

func (e *DeserialiseError) Unwrap() error { return e.Cause }

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

// NotIdentifiableError reports that an otherwise-valid message has no
// matching entry in the routing map. Non-fatal; warned and skipped.
type NotIdentifiableError struct {
	ID subscription.ID
}

func (e *NotIdentifiableError) Error() string {
	return fmt.Sprintf("not identifiable: no routing entry for subscription id %q", e.ID)
}

// InvalidSequenceError reports a violated L2 sequencing invariant.
// Recoverable by restarting the subscription group, which re-fetches the
// snapshot (§4.6.4).
type InvalidSequenceError struct {
	PrevLastUpdateID uint64
	FirstUpdateID    uint64
}

func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf(
		"invalid sequence: prev_last_update_id=%d first_update_id=%d",
		e.PrevLastUpdateID, e.FirstUpdateID,
	)
}

// ConfigError reports a malformed URL or an invalid subscription
// (unsupported kind for venue). Always fatal.
type ConfigError struct {
	Cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %v", e.Cause)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// IsRecoverableMidStream reports whether err is one of the non-fatal
// mid-stream kinds (Deserialise, NotIdentifiable) that the consumer loop
// (§4.7/§7) logs and continues past rather than treating as stream
// termination.
func IsRecoverableMidStream(err error) bool {
	switch err.(type) {
	case *DeserialiseError, *NotIdentifiableError:
		return true
	default:
		return false
	}
}
