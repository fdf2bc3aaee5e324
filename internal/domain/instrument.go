package domain

import "github.com/google/uuid"

// Currency is the settlement currency of an instrument.
type Currency string

const (
	CurrencyEUR    Currency = "eur"
	CurrencyUSD    Currency = "usd"
	CurrencyRUB    Currency = "rub"
	CurrencyCrypto Currency = "crypto"
)

// AssetClass describes what kind of instrument is traded.
type AssetClass string

const (
	AssetStock  AssetClass = "stock"
	AssetFuture AssetClass = "future"
	AssetForex  AssetClass = "forex"
	AssetOption AssetClass = "option"
)

// Instrument is a tradable entity. Identity fields are set once at
// construction; only the Enabled flag is meant to change afterwards.
type Instrument struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Exchange string     `json:"exchange"`
	Type     AssetClass `json:"type"`
	Currency Currency   `json:"currency"`
	Enabled  bool       `json:"enabled"`
}

// NewInstrument creates an enabled instrument with a fresh id.
func NewInstrument(name, exchange string, class AssetClass, currency Currency) *Instrument {
	return &Instrument{
		ID:       uuid.New(),
		Name:     name,
		Exchange: exchange,
		Type:     class,
		Currency: currency,
		Enabled:  true,
	}
}
