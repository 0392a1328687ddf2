// Package snapshot implements the §6.2 HTTP snapshot fetch contract used
// to bootstrap L2 books: GET {base}?symbol={BASE}{QUOTE}&limit=N, decoded
// to a venue-specific JSON shape.
package snapshot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goccyjson "github.com/goccy/go-json"
	"github.com/go-resty/resty/v2"
)

// Client is a thin resty wrapper configured the way the teacher's
// internal/exchange/client.go configures its CLOB REST client: a bounded
// timeout, a handful of retries on 5xx/transport errors, and goccy/go-json
// as the wire codec so the HTTP snapshot path and the WebSocket delta path
// decode with the same JSON implementation.
type Client struct {
	http *resty.Client
}

// NewClient builds a snapshot-fetch client with timeout as its
// client-level timeout, per §5's "HTTP snapshot uses a short
// client-level timeout (~2s order of magnitude)" and §6.4's
// snapshot_depth_limit/timeout configuration surface.
func NewClient(timeout time.Duration) *Client {
	http := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() >= 500
		}).
		SetJSONMarshaler(goccyjson.Marshal).
		SetJSONUnmarshaler(goccyjson.Unmarshal)

	return &Client{http: http}
}

// BuildURL constructs the `{http_base}?symbol={BASE}{QUOTE}&limit={limit}`
// URL that §4.6.1 step 1 and §6.2 specify, with base/quote uppercased per
// the original implementation's fetch_initial_order_book.
func BuildURL(httpBase, base, quote string, limit int) string {
	symbol := strings.ToUpper(base) + strings.ToUpper(quote)
	return fmt.Sprintf("%s?symbol=%s&limit=%d", httpBase, symbol, limit)
}

// Fetch issues the GET and decodes the JSON response body into a fresh
// T. Any status other than 200 OK, or a request or decode failure, is
// returned as an error.
func Fetch[T any](ctx context.Context, c *Client, url string) (T, error) {
	var result T
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(url)
	if err != nil {
		return result, fmt.Errorf("snapshot fetch %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return result, fmt.Errorf("snapshot fetch %s: status %d: %s", url, resp.StatusCode(), resp.String())
	}
	return result, nil
}
