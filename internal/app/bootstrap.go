package app

import (
	"context"
	"log/slog"
	"time"

	"orderbook_go/internal/api"
	"orderbook_go/internal/book"
	"orderbook_go/internal/domain"
	"orderbook_go/internal/feed"
	"orderbook_go/internal/infra"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config *infra.Config
	Feed   *feed.Simulator
	Book   *book.OrderBook
	Server *api.Server
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, feed, book, api)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping order book...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Price feed
	stats := make(map[string]feed.InstrumentStats, len(cfg.Feed.Instruments))
	for name, inst := range cfg.Feed.Instruments {
		stats[name] = feed.InstrumentStats{Mean: inst.Mean, Sigma: inst.Sigma}
	}
	b.Feed = feed.NewSimulator(stats, time.Duration(cfg.Feed.RefreshIntervalMS)*time.Millisecond)

	// 4. Order book
	ledger, err := book.New(b.Feed, domain.Depth{AskCount: cfg.Book.AskCount, BidCount: cfg.Book.BidCount})
	if err != nil {
		return err
	}
	b.Book = ledger
	slog.Info("✅ Order book ready", slog.Int("asks", cfg.Book.AskCount), slog.Int("bids", cfg.Book.BidCount))

	// 5. API server (optional)
	if cfg.Server.Addr != "" {
		b.Server = api.NewServer(cfg.Server.Addr, ledger,
			time.Duration(cfg.Server.BroadcastIntervalMS)*time.Millisecond)
	}

	return nil
}

// Start launches the background components.
func (b *Bootstrap) Start(ctx context.Context) {
	b.Feed.Start(ctx)
	if b.Server != nil {
		b.Server.Start(ctx)
	}
}

// Shutdown tears the system down in reverse order.
func (b *Bootstrap) Shutdown(ctx context.Context) {
	if b.Server != nil {
		if err := b.Server.Shutdown(ctx); err != nil {
			slog.Warn("api shutdown", slog.Any("error", err))
		}
	}
	b.Book.Close()
	b.Feed.Stop()
	slog.Info("✨ Shutdown complete")
}
