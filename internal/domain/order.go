package domain

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Kind is the order variant. Stop and stop-limit orders are reclassified to
// market / limit by the book when their trigger fires.
type Kind string

const (
	KindMarket    Kind = "MARKET"
	KindLimit     Kind = "LIMIT"
	KindStop      Kind = "STOP"
	KindStopLimit Kind = "STOP_LIMIT"
)

// Status is the lifecycle state of an order. The zero value means the order
// exists but was never placed; that is the only state in which id, instrument
// and kind may still change.
type Status string

const (
	StatusUnset     Status = ""
	StatusPending   Status = "PENDING"
	StatusFilled    Status = "FILLED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// marketPriceSentinel is the placeholder price of a market order before the
// book assigns the live quote at placement time.
var marketPriceSentinel = decimal.RequireFromString("0.0001")

// Order is a single trading order. Fields are unexported so every write goes
// through a validating setter; a construction either yields a fully valid
// order or an error, never something in between.
//
// Status is owned by the order book: only the book assigns it, both for the
// unset -> PENDING transition and for the terminal fill/reject/cancel ones.
type Order struct {
	// mu makes the order safe to read while a trigger watcher rewrites
	// price, kind and status during activation.
	mu         sync.RWMutex
	id         uuid.UUID
	instrument *Instrument
	side       Side
	kind       Kind
	price      decimal.Decimal
	stopPrice  decimal.Decimal
	quantity   decimal.Decimal
	status     Status
}

func newOrder(instrument *Instrument, price, quantity decimal.Decimal, kind Kind, side Side) (*Order, error) {
	o := &Order{id: uuid.New()}
	if err := o.SetInstrument(instrument); err != nil {
		return nil, err
	}
	if err := o.SetQuantity(quantity); err != nil {
		return nil, err
	}
	if err := o.SetKind(kind); err != nil {
		return nil, err
	}
	if err := o.SetPrice(price); err != nil {
		return nil, err
	}
	if side != SideBuy && side != SideSell {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	o.side = side
	return o, nil
}

// NewMarketOrder creates a market order. Its price starts at a token positive
// sentinel; the real price comes from the price feed when the book places it.
func NewMarketOrder(instrument *Instrument, quantity decimal.Decimal, side Side) (*Order, error) {
	return newOrder(instrument, marketPriceSentinel, quantity, KindMarket, side)
}

// NewLimitOrder creates a limit order at the given limit price.
func NewLimitOrder(instrument *Instrument, price, quantity decimal.Decimal, side Side) (*Order, error) {
	return newOrder(instrument, price, quantity, KindLimit, side)
}

// NewStopOrder creates a stop order. The price field holds the stop trigger;
// once triggered the book rewrites it with the market price.
func NewStopOrder(instrument *Instrument, stopPrice, quantity decimal.Decimal, side Side) (*Order, error) {
	return newOrder(instrument, stopPrice, quantity, KindStop, side)
}

// NewStopLimitOrder creates a stop-limit order: limitPrice is the eventual
// limit price, stopPrice is the separate activation trigger.
func NewStopLimitOrder(instrument *Instrument, limitPrice, stopPrice, quantity decimal.Decimal, side Side) (*Order, error) {
	o, err := newOrder(instrument, limitPrice, quantity, KindStopLimit, side)
	if err != nil {
		return nil, err
	}
	if !stopPrice.IsPositive() {
		return nil, &PriceError{Value: stopPrice}
	}
	o.stopPrice = stopPrice
	return o, nil
}

func (o *Order) ID() uuid.UUID {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.id
}

func (o *Order) Instrument() *Instrument {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.instrument
}

// Side never changes after construction.
func (o *Order) Side() Side {
	return o.side
}

func (o *Order) Kind() Kind {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.kind
}

func (o *Order) Price() decimal.Decimal {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.price
}

// StopPrice never changes after construction.
func (o *Order) StopPrice() decimal.Decimal {
	return o.stopPrice
}

func (o *Order) Quantity() decimal.Decimal {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.quantity
}

func (o *Order) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// IsPlaced reports whether the order has ever been assigned a status.
func (o *Order) IsPlaced() bool {
	return o.Status() != StatusUnset
}

// SetID replaces the order id. Fails once the order is placed.
func (o *Order) SetID(id uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusUnset {
		return &PlacedError{OrderID: o.id}
	}
	if id == uuid.Nil {
		return fmt.Errorf("id %s is not a valid identifier", id)
	}
	o.id = id
	return nil
}

// SetInstrument replaces the instrument reference. Fails once the order is placed.
func (o *Order) SetInstrument(instrument *Instrument) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusUnset {
		return &PlacedError{OrderID: o.id}
	}
	if instrument == nil {
		return ErrInvalidInstrument
	}
	o.instrument = instrument
	return nil
}

// SetKind replaces the order kind. Fails once the order is placed.
func (o *Order) SetKind(kind Kind) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status != StatusUnset {
		return &PlacedError{OrderID: o.id}
	}
	switch kind {
	case KindMarket, KindLimit, KindStop, KindStopLimit:
		o.kind = kind
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
}

// SetPrice replaces the order price. The price stays mutable for the whole
// life of the order (the book rewrites it on stop activation) but every write
// is re-validated to be strictly positive.
func (o *Order) SetPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return &PriceError{Value: price}
	}
	o.mu.Lock()
	o.price = price
	o.mu.Unlock()
	return nil
}

// SetQuantity replaces the order quantity, which must be strictly positive.
// Quantity is effectively write-once: nothing in the system changes it after
// construction.
func (o *Order) SetQuantity(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return &QuantityError{Value: quantity}
	}
	o.mu.Lock()
	o.quantity = quantity
	o.mu.Unlock()
	return nil
}

// SetStatus assigns the lifecycle status. Reserved for the order book, which
// is the only status authority; it deliberately performs no prior-state check
// (re-filling a cancelled order is a caller-contract concern, not a guard here).
func (o *Order) SetStatus(status Status) {
	o.mu.Lock()
	o.status = status
	o.mu.Unlock()
}

func (o *Order) String() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return fmt.Sprintf("order{id=%s %s %s %s price=%s qty=%s status=%s}",
		o.id, o.side, o.kind, o.instrument.Name, o.price, o.quantity, o.status)
}
