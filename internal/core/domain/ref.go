package domain

import (
	"strconv"
	"strings"
)

// ProductRef is the result of parsing an identifier that arrived from the
// outside (a route parameter, a request field). Only a valid ref can match
// a product.
type ProductRef struct {
	id    ProductID
	valid bool
}

// ParseProductRef parses raw as a base-10 integer id. Blank, malformed or
// out-of-range input yields an invalid ref; it never fails.
func ParseProductRef(raw string) ProductRef {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ProductRef{}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ProductRef{}
	}
	return ProductRef{id: ProductID(n), valid: true}
}

// RefOf wraps an already typed id.
func RefOf(id ProductID) ProductRef {
	return ProductRef{id: id, valid: true}
}

func (r ProductRef) ID() (ProductID, bool) {
	return r.id, r.valid
}

func (r ProductRef) Valid() bool {
	return r.valid
}
