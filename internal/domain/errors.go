package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPrice is returned when a price is zero or negative. Prices must stay strictly positive.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidQuantity is returned when a quantity is zero or negative.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidInstrument is returned when an order references a nil instrument.
	ErrInvalidInstrument = errors.New("invalid instrument")

	// ErrInstrumentDisabled is returned when placing an order whose instrument is not enabled for trading.
	ErrInstrumentDisabled = errors.New("instrument disabled")

	// ErrOrderPlaced is returned on attempts to change id, instrument or kind after the order got a status.
	ErrOrderPlaced = errors.New("order already placed")

	// ErrDuplicateOrder is returned when the book already holds an order with the same id.
	ErrDuplicateOrder = errors.New("duplicate order")

	// ErrInvalidDepth is returned when a depth has a negative ask or bid count.
	ErrInvalidDepth = errors.New("invalid depth")

	// ErrInvalidKind is returned when an order kind is not one of the known kinds.
	ErrInvalidKind = errors.New("invalid order kind")

	// ErrInvalidSide is returned when an order side is neither buy nor sell.
	ErrInvalidSide = errors.New("invalid order side")
)

// PriceError wraps ErrInvalidPrice with the offending value.
type PriceError struct {
	Value decimal.Decimal
}

func (e *PriceError) Error() string {
	return fmt.Sprintf("price %s is less or equals 0", e.Value)
}

func (e *PriceError) Unwrap() error {
	return ErrInvalidPrice
}

// QuantityError wraps ErrInvalidQuantity with the offending value.
type QuantityError struct {
	Value decimal.Decimal
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("quantity %s is less or equals 0", e.Value)
}

func (e *QuantityError) Unwrap() error {
	return ErrInvalidQuantity
}

// PlacedError wraps ErrOrderPlaced with the order id that rejected the change.
type PlacedError struct {
	OrderID uuid.UUID
}

func (e *PlacedError) Error() string {
	return fmt.Sprintf("order %s cannot be changed after placing", e.OrderID)
}

func (e *PlacedError) Unwrap() error {
	return ErrOrderPlaced
}
