package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"orderbook_go/internal/app"
	"orderbook_go/internal/domain"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.Start(ctx)

	// 4. Demo orders against the first configured instruments
	if err := placeDemoOrders(bootstrap); err != nil {
		slog.Error("Demo order placement failed", slog.Any("error", err))
	}

	// 5. Print snapshots until interrupted
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			bootstrap.Shutdown(shutdownCtx)
			return
		case <-ticker.C:
			md := bootstrap.Book.GetMarketData()
			slog.Info("market data",
				slog.Int("asks", len(md.Asks)),
				slog.Int("bids", len(md.Bids)),
				slog.Any("snapshot", md))
		}
	}
}

// placeDemoOrders mirrors a typical session: a market buy, a resting limit
// sell, a buy stop and a sell stop-limit waiting for their triggers.
func placeDemoOrders(bootstrap *app.Bootstrap) error {
	names := make([]string, 0, len(bootstrap.Config.Feed.Instruments))
	for name := range bootstrap.Config.Feed.Instruments {
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil
	}
	first := domain.NewInstrument(names[0], "exchange1", domain.AssetStock, domain.CurrencyEUR)
	second := first
	if len(names) > 1 {
		second = domain.NewInstrument(names[1], "exchange1", domain.AssetOption, domain.CurrencyUSD)
	}

	market, err := domain.NewMarketOrder(first, decimal.NewFromFloat(2.5), domain.SideBuy)
	if err != nil {
		return err
	}
	limit, err := domain.NewLimitOrder(second, decimal.NewFromInt(1500), decimal.NewFromInt(12), domain.SideSell)
	if err != nil {
		return err
	}
	stop, err := domain.NewStopOrder(first, decimal.NewFromInt(70), decimal.NewFromInt(20), domain.SideBuy)
	if err != nil {
		return err
	}
	stopLimit, err := domain.NewStopLimitOrder(second, decimal.NewFromInt(70), decimal.NewFromInt(80), decimal.NewFromFloat(2.5), domain.SideSell)
	if err != nil {
		return err
	}

	for _, order := range []*domain.Order{market, limit, stop, stopLimit} {
		if err := bootstrap.Book.Place(order); err != nil {
			return err
		}
	}
	return nil
}
