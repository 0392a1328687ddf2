// Package stream implements the C5 market stream: a typed asynchronous
// sequence of normalized market events for one venue+kind, backed by one
// socket and one transformer. There is no intra-stream resume — a stream
// that terminates is discarded; the consumer loop (internal/consumer)
// restarts the whole group from scratch.
package stream

import (
	"context"

	"github.com/marketpulse/streams/pkg/event"

	"github.com/marketpulse/streams/internal/wsconn"
)

// Transformer decodes one raw inbound frame into zero or more Results,
// per §4.5/§4.6. internal/transformer.Stateless and
// internal/transformer/book.Transformer both implement this.
type Transformer[T any] interface {
	Transform(raw []byte) event.MarketIter[T]
}

// MarketStream drives conn's read loop, handing each frame to transformer
// and forwarding every emitted Result onto an unbounded output channel,
// per §4.4 step 5. It owns conn exclusively: no other component reads
// from it once the stream starts.
type MarketStream[T any] struct {
	conn *wsconn.Conn
	out  *Unbounded[event.Result[T]]
}

// Run starts a MarketStream's read loop in the background and returns it
// immediately; the loop exits (closing Events()) the first time
// conn.ReadMessage fails, or before the next read once ctx is cancelled. A
// read already blocked is not interrupted by cancellation.
func Run[T any](ctx context.Context, conn *wsconn.Conn, transformer Transformer[T]) *MarketStream[T] {
	s := &MarketStream[T]{conn: conn, out: NewUnbounded[event.Result[T]]()}
	go s.readLoop(ctx, transformer)
	return s
}

func (s *MarketStream[T]) readLoop(ctx context.Context, transformer Transformer[T]) {
	defer s.out.Close()

	for {
		if ctx.Err() != nil {
			return
		}

		data, err := s.conn.ReadMessage()
		if err != nil {
			s.out.Send(event.Result[T]{Err: err})
			return
		}

		for _, res := range transformer.Transform(data) {
			s.out.Send(res)
		}
	}
}

// Events returns the stream's output channel. It closes when the stream
// terminates; the last Result sent before close (if any) carries the
// terminal error.
func (s *MarketStream[T]) Events() <-chan event.Result[T] {
	return s.out.Out()
}
