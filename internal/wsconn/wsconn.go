// Package wsconn implements a single reconnecting-capable WebSocket
// connection: dial, read, write and an optional application keepalive
// ping. One Conn is owned end-to-end by exactly one subscription group
// (validator, transformer and consumer loop all read/write the same Conn)
// per §5's "one socket, one consumer task" rule — it is never shared
// across groups.
package wsconn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultWriteTimeout = 10 * time.Second
)

// Conn wraps a gorilla/websocket connection with the mutex-guarded
// read/write helpers the teacher's ws.go uses, generalized from a fixed
// set of typed channels to a single raw-frame reader suitable for any
// venue's decoder.
type Conn struct {
	url    string
	mu     sync.Mutex
	conn   *websocket.Conn
	logger *slog.Logger
}

// Dial opens a new WebSocket connection to url.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Conn{url: url, conn: conn, logger: logger}, nil
}

// ReadMessage blocks until the next data frame arrives, the read deadline
// set by SetReadDeadline elapses, or the connection fails. Ping/pong
// control frames are absorbed by gorilla/websocket's default handlers and
// never surface here.
func (c *Conn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return data, nil
}

// SetReadDeadline sets the deadline for the next ReadMessage call.
func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// WriteJSON marshals v and writes it as a text frame, under the write
// deadline.
func (c *Conn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	return c.conn.WriteJSON(v)
}

// WriteMessage writes a raw frame of the given type, under the write
// deadline.
func (c *Conn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
	return c.conn.WriteMessage(messageType, data)
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// StartPing launches a goroutine that sends an application-level
// keepalive frame every interval until ctx is cancelled or a write fails.
// A failed ping is logged and the loop stops; the eventual read failure
// on the main loop will trigger reconnection, mirroring the teacher's
// pingLoop in internal/exchange/ws.go.
func (c *Conn) StartPing(ctx context.Context, interval time.Duration, payload []byte) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
					if c.logger != nil {
						c.logger.Warn("ping failed", "url", c.url, "error", err)
					}
					return
				}
			}
		}
	}()
}
