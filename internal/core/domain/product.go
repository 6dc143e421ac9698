package domain

import (
	"github.com/shopspring/decimal"
)

// ProductID identifies a product in the catalog.
type ProductID int64

type Spec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Product is an immutable catalog record. Specs keep their display order.
type Product struct {
	ID          ProductID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Glyph       string          `json:"glyph"`
	Category    string          `json:"category"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
	Stock       int             `json:"stock"`
	Colors      []string        `json:"colors"`
	Features    []string        `json:"features"`
	Specs       []Spec          `json:"specs"`
}

// Clone returns a deep copy so callers cannot reach the catalog's slices.
func (p Product) Clone() Product {
	c := p
	c.Colors = append([]string(nil), p.Colors...)
	c.Features = append([]string(nil), p.Features...)
	c.Specs = append([]Spec(nil), p.Specs...)
	return c
}

// HasColor reports whether color is one of the product's color options.
func (p Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}

// PricedProduct pairs a product with the price currently shown for it.
type PricedProduct struct {
	Product
	DisplayPrice decimal.Decimal `json:"display_price"`
}
