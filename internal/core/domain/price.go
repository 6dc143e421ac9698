package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisplayPrices is one simulator tick: a fluctuated price for every product
// in the catalog. A snapshot is built once and never modified afterwards.
type DisplayPrices struct {
	Tick       uint64                        `json:"tick"`
	ComputedAt time.Time                     `json:"computed_at"`
	Prices     map[ProductID]decimal.Decimal `json:"prices"`
}

// PriceOf returns the display price for p, falling back to its base price
// when the snapshot has no entry (for example before the first tick).
func (d DisplayPrices) PriceOf(p Product) decimal.Decimal {
	if price, ok := d.Prices[p.ID]; ok {
		return price
	}
	return p.Price
}

// Len reports how many products carry a fluctuated price.
func (d DisplayPrices) Len() int {
	return len(d.Prices)
}
