package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/storefront/internal/core/domain"
)

var (
	ErrInvalidCatalog  = errors.New("invalid catalog")
	ErrProductNotFound = errors.New("product not found")
)

// Catalog is the read-only product list. It is never mutated after New, so
// any number of goroutines may read it without locking.
type Catalog struct {
	products   []domain.Product
	index      map[domain.ProductID]int
	categories []string
}

// New validates the seed and builds a catalog that owns a private copy of it.
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		index:    make(map[domain.ProductID]int, len(products)),
	}
	seen := make(map[string]bool)

	for _, p := range products {
		if err := validate(p); err != nil {
			return nil, err
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %d", ErrInvalidCatalog, p.ID)
		}
		c.index[p.ID] = len(c.products)
		c.products = append(c.products, p.Clone())

		if !seen[p.Category] {
			seen[p.Category] = true
			c.categories = append(c.categories, p.Category)
		}
	}

	return c, nil
}

func validate(p domain.Product) error {
	switch {
	case p.Price.IsNegative():
		return fmt.Errorf("%w: product %d has negative price", ErrInvalidCatalog, p.ID)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("%w: product %d rating %.1f out of range", ErrInvalidCatalog, p.ID, p.Rating)
	case p.Reviews < 0 || p.Stock < 0:
		return fmt.Errorf("%w: product %d has negative counters", ErrInvalidCatalog, p.ID)
	case len(p.Colors) == 0:
		return fmt.Errorf("%w: product %d has no colors", ErrInvalidCatalog, p.ID)
	}
	return nil
}

// All returns every product in seed order.
func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	for i, p := range c.products {
		out[i] = p.Clone()
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// FindByID returns the product with the given id, or false.
func (c *Catalog) FindByID(id domain.ProductID) (domain.Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i].Clone(), true
}

// Lookup resolves a parsed reference. Invalid refs and unknown ids both
// yield ErrProductNotFound.
func (c *Catalog) Lookup(ref domain.ProductRef) (domain.Product, error) {
	id, ok := ref.ID()
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	p, ok := c.FindByID(id)
	if !ok {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Categories returns the distinct categories in order of first appearance.
func (c *Catalog) Categories() []string {
	return append([]string(nil), c.categories...)
}

// Selectors returns the category selector choices: CategoryAll followed by
// the catalog's categories.
func (c *Catalog) Selectors() []string {
	return append([]string{domain.CategoryAll}, c.categories...)
}

// Filter applies f to the whole catalog.
func (c *Catalog) Filter(f domain.FilterState) []domain.Product {
	return Filter(c.products, f.Category, f.Query)
}

// Filter keeps the products matching both the category selector and the
// query, in their original order. Category comparison is exact; the query
// is a case-insensitive substring of the name or description.
func Filter(products []domain.Product, category, query string) []domain.Product {
	q := strings.ToLower(query)
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != domain.CategoryAll && p.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out
}
