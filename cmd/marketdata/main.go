// Marketdata — a normalized multi-exchange real-time market data client.
//
// Architecture:
//
//	main.go                    — entry point: loads config, starts the multi-stream, waits for SIGINT/SIGTERM
//	internal/config            — §6.4 configuration: venues, snapshot/backoff/timeout tuning, logging
//	internal/venue             — per-exchange Connector contract
//	internal/venue/binance      — Binance Spot & USD-M Futures connectors, wire codecs, snapshot bootstrap
//	internal/venue/okx          — OKX connector, wire codecs, in-stream snapshot bootstrap
//	internal/mapper            — subscription -> wire request + routing map
//	internal/validator         — subscribe-response validation
//	internal/transformer       — stateless (trade/L1/liquidation/candle) decode
//	internal/transformer/book  — stateful L2 book engine + per-venue sequencing policies
//	internal/wsconn            — one reconnecting-capable WebSocket connection
//	internal/snapshot          — §6.2 HTTP snapshot fetch client
//	internal/stream            — one venue+kind market stream
//	internal/consumer          — §4.7 reconnection loop
//	internal/builder           — wires the above into a joined multi-venue event stream
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketpulse/streams/pkg/book"
	"github.com/marketpulse/streams/pkg/event"
	"github.com/marketpulse/streams/pkg/instrument"
	"github.com/marketpulse/streams/pkg/subscription"

	"github.com/marketpulse/streams/internal/builder"
	"github.com/marketpulse/streams/internal/config"
	"github.com/marketpulse/streams/internal/snapshot"
	"github.com/marketpulse/streams/internal/venue/binance"
	"github.com/marketpulse/streams/internal/venue/okx"
)

func main() {
	cfgPath := "configs/config.yaml"
	if p := os.Getenv("MARKETPULSE_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	snapClient := snapshot.NewClient(cfg.Snapshot.Timeout)
	btcUsdt := instrument.New("BTC", "USDT")
	btcUsdtPerp := instrument.Perp("BTC", "USDT")
	backoff := cfg.Stream.ReconnectInitialBackoff

	var groups []builder.Runner
	for _, name := range cfg.Venues {
		switch name {
		case "binance_spot":
			c := binance.NewSpot("binance_spot").WithSubscriptionTimeout(cfg.Stream.SubscriptionTimeout)
			groups = append(groups,
				builder.Group[event.Trade]{
					Venue: c.ID(),
					Label: "binance_spot:trades",
					Init: builder.BuildStateless[event.Trade](
						logger, c,
						[]subscription.Subscription{{Venue: c.ID(), Instrument: btcUsdt, Kind: subscription.PublicTrades}},
						binance.DecodeTrades, binance.AckParser{},
					),
					InitialBackoff: backoff,
					ToData:         event.FromTrade,
				},
				builder.Group[book.OrderBook]{
					Venue: c.ID(),
					Label: "binance_spot:books",
					Init: builder.BuildBook(
						logger, c,
						[]subscription.Subscription{{Venue: c.ID(), Instrument: btcUsdt, Kind: subscription.OrderBooksL2}},
						binance.NewBootstrapper(c, snapClient, cfg.Snapshot.Depth).Bootstrap,
						binance.DecodeOrderBookL2, binance.AckParser{},
					),
					InitialBackoff: backoff,
					ToData:         event.FromOrderBook,
				},
			)
		case "binance_futures_usd":
			c := binance.NewFuturesUsd("binance_futures_usd").WithSubscriptionTimeout(cfg.Stream.SubscriptionTimeout)
			groups = append(groups,
				builder.Group[event.Trade]{
					Venue: c.ID(),
					Label: "binance_futures_usd:trades",
					Init: builder.BuildStateless[event.Trade](
						logger, c,
						[]subscription.Subscription{{Venue: c.ID(), Instrument: btcUsdtPerp, Kind: subscription.PublicTrades}},
						binance.DecodeTrades, binance.AckParser{},
					),
					InitialBackoff: backoff,
					ToData:         event.FromTrade,
				},
				builder.Group[book.OrderBook]{
					Venue: c.ID(),
					Label: "binance_futures_usd:books",
					Init: builder.BuildBook(
						logger, c,
						[]subscription.Subscription{{Venue: c.ID(), Instrument: btcUsdtPerp, Kind: subscription.OrderBooksL2}},
						binance.NewBootstrapper(c, snapClient, cfg.Snapshot.Depth).Bootstrap,
						binance.DecodeOrderBookL2, binance.AckParser{},
					),
					InitialBackoff: backoff,
					ToData:         event.FromOrderBook,
				},
				builder.Group[event.Liquidation]{
					Venue: c.ID(),
					Label: "binance_futures_usd:liquidations",
					Init: builder.BuildStateless[event.Liquidation](
						logger, c,
						[]subscription.Subscription{{Venue: c.ID(), Instrument: btcUsdtPerp, Kind: subscription.Liquidations}},
						binance.DecodeLiquidations, binance.AckParser{},
					),
					InitialBackoff: backoff,
					ToData:         event.FromLiquidation,
				},
			)
		case "okx":
			c := okx.New("okx").WithSubscriptionTimeout(cfg.Stream.SubscriptionTimeout)
			groups = append(groups,
				builder.Group[event.Trade]{
					Venue: c.ID(),
					Label: "okx:trades",
					Init: builder.BuildStateless[event.Trade](
						logger, c,
						[]subscription.Subscription{{Venue: c.ID(), Instrument: btcUsdtPerp, Kind: subscription.PublicTrades}},
						okx.DecodeTrades, okx.AckParser{},
					),
					InitialBackoff: backoff,
					ToData:         event.FromTrade,
				},
				builder.Group[book.OrderBook]{
					Venue: c.ID(),
					Label: "okx:books",
					Init: builder.BuildBook(
						logger, c,
						[]subscription.Subscription{{Venue: c.ID(), Instrument: btcUsdtPerp, Kind: subscription.OrderBooksL2}},
						okx.Bootstrap,
						okx.DecodeOrderBookL2, okx.AckParser{},
					),
					InitialBackoff: backoff,
					ToData:         event.FromOrderBook,
				},
			)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mb := &builder.MultiStreamBuilder{Logger: logger}
	streams, errs := mb.Run(ctx, groups)

	go func() {
		for e := range streams.Join() {
			logger.Info("market event", "venue", e.Venue, "instrument", e.Instrument, "kind", e.Payload.Kind)
		}
	}()

	logger.Info("marketdata started", "venues", cfg.Venues)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	case err := <-errs:
		if err != nil {
			logger.Error("stream group failed fatally", "error", err)
			os.Exit(1)
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
