package domain

import "fmt"

// Depth limits how many asks and bids a market-data snapshot exposes.
type Depth struct {
	AskCount int `json:"ask_count" yaml:"ask_count"`
	BidCount int `json:"bid_count" yaml:"bid_count"`
}

// NewDepth builds a validated depth.
func NewDepth(askCount, bidCount int) (Depth, error) {
	d := Depth{AskCount: askCount, BidCount: bidCount}
	return d, d.Validate()
}

// Validate rejects negative counts. Zero is a legal depth (an empty snapshot).
func (d Depth) Validate() error {
	if d.AskCount < 0 || d.BidCount < 0 {
		return fmt.Errorf("%w: asks=%d bids=%d", ErrInvalidDepth, d.AskCount, d.BidCount)
	}
	return nil
}

func (d Depth) String() string {
	return fmt.Sprintf("depth{asks=%d bids=%d}", d.AskCount, d.BidCount)
}
