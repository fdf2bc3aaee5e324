package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func mustLimit(t *testing.T, price, qty int64, side Side, status Status) *Order {
	t.Helper()
	o, err := NewLimitOrder(testInstrument(), decimal.NewFromInt(price), decimal.NewFromInt(qty), side)
	if err != nil {
		t.Fatal(err)
	}
	o.SetStatus(status)
	return o
}

func TestNewMarketData(t *testing.T) {
	t.Run("Projects Price And Quantity", func(t *testing.T) {
		asks := []*Order{mustLimit(t, 110, 3, SideSell, StatusPending)}
		bids := []*Order{mustLimit(t, 90, 5, SideBuy, StatusPending)}

		md := NewMarketData(asks, bids)
		if len(md.Asks) != 1 || len(md.Bids) != 1 {
			t.Fatalf("asks=%d bids=%d, want 1/1", len(md.Asks), len(md.Bids))
		}
		if !md.Asks[0].Price.Equal(decimal.NewFromInt(110)) || !md.Asks[0].Quantity.Equal(decimal.NewFromInt(3)) {
			t.Errorf("ask = %+v, want 110/3", md.Asks[0])
		}
		if !md.Bids[0].Price.Equal(decimal.NewFromInt(90)) || !md.Bids[0].Quantity.Equal(decimal.NewFromInt(5)) {
			t.Errorf("bid = %+v, want 90/5", md.Bids[0])
		}
	})

	t.Run("Hides Filled And Rejected", func(t *testing.T) {
		asks := []*Order{
			mustLimit(t, 110, 3, SideSell, StatusFilled),
			mustLimit(t, 111, 3, SideSell, StatusRejected),
			mustLimit(t, 112, 3, SideSell, StatusPending),
			mustLimit(t, 113, 3, SideSell, StatusCancelled),
		}
		md := NewMarketData(asks, nil)
		if len(md.Asks) != 2 {
			t.Fatalf("asks = %d, want 2 (pending + cancelled stay visible)", len(md.Asks))
		}
	})

	t.Run("Hides Untriggered Stop Kinds", func(t *testing.T) {
		stop, err := NewStopOrder(testInstrument(), decimal.NewFromInt(70), decimal.NewFromInt(1), SideSell)
		if err != nil {
			t.Fatal(err)
		}
		md := NewMarketData([]*Order{stop}, nil)
		if len(md.Asks) != 0 {
			t.Errorf("stop order leaked into market data: %+v", md.Asks)
		}
	})

	t.Run("Empty Book Keeps Required Arrays", func(t *testing.T) {
		md := NewMarketData(nil, nil)
		raw, err := json.Marshal(md)
		if err != nil {
			t.Fatal(err)
		}
		got := string(raw)
		if !strings.Contains(got, `"asks":[]`) || !strings.Contains(got, `"bids":[]`) {
			t.Errorf("snapshot = %s, want empty arrays not null", got)
		}
	})
}

func TestMarketDataValidate(t *testing.T) {
	t.Run("Produced Snapshots Always Validate", func(t *testing.T) {
		md := NewMarketData(
			[]*Order{mustLimit(t, 110, 3, SideSell, StatusPending)},
			[]*Order{mustLimit(t, 90, 5, SideBuy, StatusPending)},
		)
		if err := md.Validate(); err != nil {
			t.Errorf("valid snapshot rejected: %v", err)
		}
		if err := NewMarketData(nil, nil).Validate(); err != nil {
			t.Errorf("empty snapshot rejected: %v", err)
		}
	})

	t.Run("Levels Marshal As Numbers", func(t *testing.T) {
		l := PriceLevel{Price: decimal.RequireFromString("90.5"), Quantity: decimal.NewFromInt(5)}
		raw, err := json.Marshal(l)
		if err != nil {
			t.Fatal(err)
		}
		if string(raw) != `{"price":90.5,"quantity":5}` {
			t.Errorf("level = %s, want bare numbers", raw)
		}
	})
}

func TestDepthValidation(t *testing.T) {
	cases := []struct {
		name    string
		asks    int
		bids    int
		wantErr bool
	}{
		{"zero zero", 0, 0, false},
		{"regular", 4, 4, false},
		{"very large", 1 << 40, 1 << 40, false},
		{"negative asks", -1, 3, true},
		{"negative bids", 2, -3, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewDepth(tc.asks, tc.bids)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidDepth) {
					t.Errorf("err = %v, want ErrInvalidDepth", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if d.AskCount != tc.asks || d.BidCount != tc.bids {
				t.Errorf("depth = %v, want %d/%d", d, tc.asks, tc.bids)
			}
		})
	}
}
