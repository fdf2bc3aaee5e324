package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceLevel is one anonymized row of a market-data snapshot.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// MarshalJSON emits price and quantity as bare JSON numbers. The default
// decimal marshalling quotes them as strings, which would break consumers
// validating against the numeric schema.
func (l PriceLevel) MarshalJSON() ([]byte, error) {
	return fmt.Appendf(nil, `{"price":%s,"quantity":%s}`, l.Price.String(), l.Quantity.String()), nil
}

// MarketData is the depth-limited projection of an order book: sell-side
// orders become asks, buy-side orders become bids. It is a pure value; the
// book builds a fresh one per snapshot.
type MarketData struct {
	Asks []PriceLevel `json:"asks"`
	Bids []PriceLevel `json:"bids"`
}

// visibleInMarketData filters what a snapshot may show: no filled or rejected
// orders, and only market / limit kinds. A stop order that has not triggered
// yet never reaches here in the first place (it is not in the book), but a
// triggered one passes because it was reclassified.
func visibleInMarketData(o *Order) bool {
	if o.Status() == StatusFilled || o.Status() == StatusRejected {
		return false
	}
	return o.Kind() == KindMarket || o.Kind() == KindLimit
}

// NewMarketData projects the given sell-side and buy-side orders into a
// snapshot, dropping everything visibleInMarketData excludes. Slices are
// always non-nil so the snapshot marshals with both required arrays present.
func NewMarketData(asks, bids []*Order) MarketData {
	md := MarketData{
		Asks: make([]PriceLevel, 0, len(asks)),
		Bids: make([]PriceLevel, 0, len(bids)),
	}
	for _, o := range asks {
		if visibleInMarketData(o) {
			md.Asks = append(md.Asks, PriceLevel{Price: o.Price(), Quantity: o.Quantity()})
		}
	}
	for _, o := range bids {
		if visibleInMarketData(o) {
			md.Bids = append(md.Bids, PriceLevel{Price: o.Price(), Quantity: o.Quantity()})
		}
	}
	return md
}

// Validate checks the snapshot against the wire contract consumers rely on:
// an object with asks and bids arrays whose elements carry numeric price and
// quantity. The check runs over the marshalled JSON so it verifies the actual
// produced shape, not just the Go struct.
func (m MarketData) Validate() error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("market data marshal: %w", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("market data is not an object: %w", err)
	}
	for _, side := range []string{"asks", "bids"} {
		body, ok := doc[side]
		if !ok {
			return fmt.Errorf("market data misses required field %q", side)
		}
		var rows []struct {
			Price    *json.Number `json:"price"`
			Quantity *json.Number `json:"quantity"`
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("market data %s is not an array of levels: %w", side, err)
		}
		for i, row := range rows {
			if row.Price == nil || row.Quantity == nil {
				return fmt.Errorf("market data %s[%d] misses price or quantity", side, i)
			}
		}
	}
	return nil
}
