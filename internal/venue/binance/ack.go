package binance

import (
	goccyjson "github.com/goccy/go-json"

	"github.com/marketpulse/streams/internal/validator"
)

// wireSubResponse mirrors BinanceSubResponse: {"result":null,"id":1} for
// success, {"result":[...],"id":1} for failure. ID is a pointer so a
// market-data frame lacking an "id" key never gets mistaken for an ack.
type wireSubResponse struct {
	Result *[]string `json:"result"`
	ID     *int      `json:"id"`
}

// AckParser implements validator.AckParser for Binance's single combined
// SUBSCRIBE acknowledgement.
type AckParser struct{}

func (AckParser) ParseAck(frame []byte) (validator.Ack, bool) {
	var w wireSubResponse
	if err := goccyjson.Unmarshal(frame, &w); err != nil || w.ID == nil {
		return validator.Ack{}, false
	}
	if w.Result == nil {
		return validator.Ack{Kind: validator.AckSuccess}, true
	}
	return validator.Ack{Kind: validator.AckFailure, Reason: "binance rejected subscription request"}, true
}
