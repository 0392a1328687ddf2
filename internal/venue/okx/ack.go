package okx

import (
	"fmt"

	goccyjson "github.com/goccy/go-json"

	"github.com/marketpulse/streams/internal/validator"
)

// wireSubResponse mirrors OkxSubResponse: a tagged "event" of "subscribe"
// or "error". Data frames carry "arg"/"data", never "event", so they never
// match here.
type wireSubResponse struct {
	Event string `json:"event"`
	Code  string `json:"code"`
	Msg   string `json:"msg"`
	Arg   struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
}

// AckParser implements validator.AckParser for OKX's per-channel
// subscribe acknowledgements.
type AckParser struct{}

func (AckParser) ParseAck(frame []byte) (validator.Ack, bool) {
	var w wireSubResponse
	if err := goccyjson.Unmarshal(frame, &w); err != nil || w.Event == "" {
		return validator.Ack{}, false
	}
	switch w.Event {
	case "subscribe":
		return validator.Ack{Kind: validator.AckSuccess}, true
	case "error":
		return validator.Ack{Kind: validator.AckFailure, Reason: fmt.Sprintf("okx rejected subscription: code=%s msg=%s", w.Code, w.Msg)}, true
	default:
		return validator.Ack{}, false
	}
}
