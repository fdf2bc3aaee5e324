// Package book implements the order ledger: it owns every order, drives the
// lifecycle transitions, and projects depth-limited market data. The book is
// the only component that assigns order statuses.
package book

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"orderbook_go/internal/domain"
	"orderbook_go/internal/feed"
	"orderbook_go/internal/infra"
)

// ErrClosed is returned by Place after Close was called.
var ErrClosed = errors.New("order book closed")

// OrderBook holds all orders of a single instrument universe. One exclusive
// lock guards the collection; watchers for stop / stop-limit orders run
// outside the lock and only take it for the activation insert.
type OrderBook struct {
	mu       sync.RWMutex
	orders   []*domain.Order
	depth    domain.Depth
	watchers map[uuid.UUID]context.CancelFunc
	closed   bool

	quotes feed.Source
	wg     sync.WaitGroup
}

// New creates an order book reading quotes from the given source.
func New(quotes feed.Source, depth domain.Depth) (*OrderBook, error) {
	if err := depth.Validate(); err != nil {
		return nil, err
	}
	return &OrderBook{
		depth:    depth,
		watchers: make(map[uuid.UUID]context.CancelFunc),
		quotes:   quotes,
	}, nil
}

// Place admits an order into the book.
//
// Market and limit orders are placed synchronously: when Place returns they
// are pending and visible to every reader. Stop and stop-limit orders only
// get a trigger watcher; they stay unplaced (status unset) until the watcher
// sees the trigger condition hold against the price feed.
func (o *OrderBook) Place(order *domain.Order) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.findLocked(order.ID()) != nil || o.watchers[order.ID()] != nil {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrDuplicateOrder, order.ID())
	}
	if !order.Instrument().Enabled {
		o.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrInstrumentDisabled, order.Instrument().Name)
	}

	switch order.Kind() {
	case domain.KindMarket:
		// The feed read must not happen under the book lock.
		o.mu.Unlock()
		price, err := o.quotes.CurrentPrice(order.Instrument().Name)
		if err != nil {
			return fmt.Errorf("place market order: %w", err)
		}
		if err := order.SetPrice(price); err != nil {
			return fmt.Errorf("place market order: %w", err)
		}
		o.mu.Lock()
		o.insertLocked(order)
		o.mu.Unlock()

	case domain.KindLimit:
		o.insertLocked(order)
		o.mu.Unlock()

	case domain.KindStop, domain.KindStopLimit:
		ctx, cancel := context.WithCancel(context.Background())
		o.watchers[order.ID()] = cancel
		o.wg.Add(1)
		go o.watch(ctx, order)
		o.sortLocked()
		o.mu.Unlock()

	default:
		o.mu.Unlock()
		return fmt.Errorf("%w: %q", domain.ErrInvalidKind, order.Kind())
	}
	return nil
}

// insertLocked marks the order pending, appends it and re-sorts the index.
// Caller holds the write lock.
func (o *OrderBook) insertLocked(order *domain.Order) {
	order.SetStatus(domain.StatusPending)
	o.orders = append(o.orders, order)
	o.sortLocked()
	infra.GlobalMetrics.RecordOrderPlaced()
	slog.Info("order placed",
		slog.String("id", order.ID().String()),
		slog.String("side", string(order.Side())),
		slog.String("kind", string(order.Kind())),
		slog.String("price", order.Price().String()),
		slog.String("quantity", order.Quantity().String()))
}

// sortLocked keeps the index sorted by price descending. The sort is stable
// so equal prices keep their insertion order, which is the literal ordering
// consumers see in GetOrdersByAction and the market-data views.
func (o *OrderBook) sortLocked() {
	sort.SliceStable(o.orders, func(i, j int) bool {
		return o.orders[i].Price().GreaterThan(o.orders[j].Price())
	})
}

func (o *OrderBook) findLocked(id uuid.UUID) *domain.Order {
	for _, order := range o.orders {
		if order.ID() == id {
			return order
		}
	}
	return nil
}

// setStatus assigns a status to the order with the given id. Unknown ids are
// a deliberate no-op: status calls are only meaningful for placed orders.
// There is no prior-state guard either; the book is a passive status
// authority and protecting against, say, re-filling a cancelled order is the
// caller's contract.
func (o *OrderBook) setStatus(id uuid.UUID, status domain.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if order := o.findLocked(id); order != nil {
		order.SetStatus(status)
		slog.Info("order status changed",
			slog.String("id", id.String()),
			slog.String("status", string(status)))
	}
}

// FillOrder marks the order filled.
func (o *OrderBook) FillOrder(order *domain.Order) {
	o.setStatus(order.ID(), domain.StatusFilled)
}

// RejectOrder marks the order rejected.
func (o *OrderBook) RejectOrder(order *domain.Order) {
	o.setStatus(order.ID(), domain.StatusRejected)
}

// CancelOrder marks the order cancelled. For a stop / stop-limit order whose
// trigger has not fired yet it also stops the watcher, so the order can never
// activate afterwards; its status stays unset because it never entered the
// ledger.
func (o *OrderBook) CancelOrder(order *domain.Order) {
	o.mu.Lock()
	cancel := o.watchers[order.ID()]
	delete(o.watchers, order.ID())
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	o.setStatus(order.ID(), domain.StatusCancelled)
}

// GetOrderByID returns the order with the given id, or nil if the book does
// not hold it.
func (o *OrderBook) GetOrderByID(id uuid.UUID) *domain.Order {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.findLocked(id)
}

// GetOrdersByAction returns all orders with the given side in current sort
// order, regardless of status. An optional limit truncates the result; a
// negative limit yields an empty result.
func (o *OrderBook) GetOrdersByAction(side domain.Side, limit ...int) []*domain.Order {
	o.mu.RLock()
	matched := o.byActionLocked(side)
	o.mu.RUnlock()

	if len(limit) == 0 {
		return matched
	}
	if limit[0] < 0 {
		return []*domain.Order{}
	}
	return truncate(matched, limit[0])
}

// GetBestPrice returns the side's orders sorted by price ascending, so the
// first entry is the lowest ask or the lowest bid. The optional limit applies
// after the re-sort and keeps the cheapest entries.
func (o *OrderBook) GetBestPrice(side domain.Side, limit ...int) []*domain.Order {
	matched := o.GetOrdersByAction(side)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Price().LessThan(matched[j].Price())
	})
	if len(limit) == 0 {
		return matched
	}
	if limit[0] < 0 {
		return []*domain.Order{}
	}
	return truncate(matched, limit[0])
}

func (o *OrderBook) byActionLocked(side domain.Side) []*domain.Order {
	matched := make([]*domain.Order, 0, len(o.orders))
	for _, order := range o.orders {
		if order.Side() == side {
			matched = append(matched, order)
		}
	}
	return matched
}

func truncate(orders []*domain.Order, n int) []*domain.Order {
	if n < len(orders) {
		return orders[:n]
	}
	return orders
}

// SetDepth replaces the book's depth configuration atomically.
func (o *OrderBook) SetDepth(depth domain.Depth) error {
	if err := depth.Validate(); err != nil {
		return err
	}
	o.mu.Lock()
	o.depth = depth
	o.mu.Unlock()
	return nil
}

// Depth returns the current depth configuration.
func (o *OrderBook) Depth() domain.Depth {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.depth
}

// GetMarketData builds the depth-limited snapshot. Following the source
// convention, sell-side orders become asks and buy-side orders become bids,
// truncated to the configured ask and bid counts.
func (o *OrderBook) GetMarketData() domain.MarketData {
	o.mu.RLock()
	asks := truncate(o.byActionLocked(domain.SideSell), o.depth.AskCount)
	bids := truncate(o.byActionLocked(domain.SideBuy), o.depth.BidCount)
	md := domain.NewMarketData(asks, bids)
	o.mu.RUnlock()

	infra.GlobalMetrics.RecordSnapshot()
	return md
}

// Close cancels every pending trigger watcher and waits for them to exit.
// Idempotent.
func (o *OrderBook) Close() {
	o.mu.Lock()
	o.closed = true
	cancels := make([]context.CancelFunc, 0, len(o.watchers))
	for _, cancel := range o.watchers {
		cancels = append(cancels, cancel)
	}
	o.watchers = make(map[uuid.UUID]context.CancelFunc)
	o.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	o.wg.Wait()
}
