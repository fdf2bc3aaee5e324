package book

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"orderbook_go/internal/domain"
	"orderbook_go/internal/infra"
)

// watch waits for the order's trigger condition against the price feed. It
// re-checks on every feed refresh instead of busy-polling and never times
// out: an order whose condition never holds is watched until CancelOrder or
// Close. No book lock is held while waiting.
//
// A watcher error (e.g. the instrument is unknown to the feed) is fatal to
// this watcher only: it is logged and counted, never propagated to the Place
// caller, which has long returned.
func (o *OrderBook) watch(ctx context.Context, order *domain.Order) {
	defer o.wg.Done()
	defer o.removeWatcher(order.ID())

	infra.GlobalMetrics.IncrementWatchers()
	defer infra.GlobalMetrics.DecrementWatchers()

	updates, unsubscribe := o.quotes.Subscribe()
	defer unsubscribe()

	for {
		current, err := o.quotes.CurrentPrice(order.Instrument().Name)
		if err != nil {
			infra.GlobalMetrics.RecordWatcherError()
			slog.Error("trigger watcher failed",
				slog.String("id", order.ID().String()),
				slog.String("instrument", order.Instrument().Name),
				slog.Any("error", err))
			return
		}
		if triggered(order, current) {
			o.activate(order, current)
			return
		}
		select {
		case <-ctx.Done():
			slog.Info("trigger watcher cancelled", slog.String("id", order.ID().String()))
			return
		case <-updates:
		}
	}
}

// triggered evaluates the activation condition. Stop orders compare their
// price field against the market; stop-limit orders compare their dedicated
// stop price. A sell fires once the market falls to the threshold, a buy once
// it rises to it.
func triggered(order *domain.Order, current decimal.Decimal) bool {
	switch order.Kind() {
	case domain.KindStop:
		if order.Side() == domain.SideSell {
			return order.Price().GreaterThanOrEqual(current)
		}
		return order.Price().LessThanOrEqual(current)
	case domain.KindStopLimit:
		if order.Side() == domain.SideSell {
			return order.StopPrice().GreaterThanOrEqual(current)
		}
		return order.StopPrice().LessThanOrEqual(current)
	}
	return false
}

// activate reclassifies a triggered order and inserts it. A stop order
// becomes a market order at the triggering price; a stop-limit order becomes
// a limit order keeping its original limit price.
func (o *OrderBook) activate(order *domain.Order, current decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	var err error
	if order.Kind() == domain.KindStop {
		if err = order.SetPrice(current); err == nil {
			err = order.SetKind(domain.KindMarket)
		}
	} else {
		err = order.SetKind(domain.KindLimit)
	}
	if err != nil {
		// A simulated quote can in principle be non-positive; the order
		// validation wins and the watcher dies instead of inserting a
		// corrupt order.
		infra.GlobalMetrics.RecordWatcherError()
		slog.Error("trigger activation failed",
			slog.String("id", order.ID().String()),
			slog.Any("error", err))
		return
	}

	infra.GlobalMetrics.RecordTriggerFired()
	slog.Info("order triggered",
		slog.String("id", order.ID().String()),
		slog.String("kind", string(order.Kind())),
		slog.String("price", current.String()))
	o.insertLocked(order)
}

func (o *OrderBook) removeWatcher(id uuid.UUID) {
	o.mu.Lock()
	delete(o.watchers, id)
	o.mu.Unlock()
}
