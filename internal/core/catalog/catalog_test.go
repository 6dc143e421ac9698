package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/adapter/seed"
	"github.com/rl1809/storefront/internal/core/domain"
)

func newSeedCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(seed.Products())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func ids(products []domain.Product) []domain.ProductID {
	out := make([]domain.ProductID, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func sameIDs(a, b []domain.ProductID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	products := seed.Products()
	products[1].ID = products[0].ID

	_, err := New(products)
	if !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
}

func TestNew_RejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *domain.Product)
	}{
		{"negative price", func(p *domain.Product) { p.Price = decimal.NewFromInt(-1) }},
		{"rating above five", func(p *domain.Product) { p.Rating = 5.1 }},
		{"negative stock", func(p *domain.Product) { p.Stock = -1 }},
		{"no colors", func(p *domain.Product) { p.Colors = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := seed.Products()
			tt.mutate(&products[0])
			if _, err := New(products); !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestNew_Empty(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 0 || len(c.All()) != 0 {
		t.Error("expected empty catalog")
	}
	if got := c.Filter(domain.DefaultFilter()); len(got) != 0 {
		t.Errorf("expected no products, got %d", len(got))
	}
}

func TestFindByID_EveryProduct(t *testing.T) {
	c := newSeedCatalog(t)

	for _, want := range c.All() {
		got, ok := c.FindByID(want.ID)
		if !ok {
			t.Fatalf("product %d not found", want.ID)
		}
		if got.Name != want.Name || !got.Price.Equal(want.Price) {
			t.Errorf("product %d mismatch: got %+v", want.ID, got)
		}
	}

	if _, ok := c.FindByID(999); ok {
		t.Error("expected id 999 to be missing")
	}
}

func TestLookup_MalformedRefs(t *testing.T) {
	c := newSeedCatalog(t)

	for _, raw := range []string{"", "   ", "abc", "1.5", "0x1", "99999999999999999999", "1abc"} {
		_, err := c.Lookup(domain.ParseProductRef(raw))
		if !errors.Is(err, ErrProductNotFound) {
			t.Errorf("raw %q: expected ErrProductNotFound, got %v", raw, err)
		}
	}
}

func TestLookup_ValidRef(t *testing.T) {
	c := newSeedCatalog(t)

	p, err := c.Lookup(domain.ParseProductRef(" 1 "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Quantum Smartphone X1" {
		t.Errorf("expected Quantum Smartphone X1, got %s", p.Name)
	}

	if _, err := c.Lookup(domain.ParseProductRef("999")); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestAll_IsACopy(t *testing.T) {
	c := newSeedCatalog(t)

	all := c.All()
	all[0].Name = "changed"
	all[0].Colors[0] = "changed"

	p, _ := c.FindByID(all[0].ID)
	if p.Name == "changed" || p.Colors[0] == "changed" {
		t.Error("catalog was mutated through All()")
	}
}

func TestFilter_AllEmptyQueryReturnsCatalog(t *testing.T) {
	c := newSeedCatalog(t)

	got := c.Filter(domain.FilterState{Category: domain.CategoryAll})
	if !sameIDs(ids(got), ids(c.All())) {
		t.Errorf("expected full catalog in order, got %v", ids(got))
	}
}

func TestFilter_Scenario(t *testing.T) {
	c := newSeedCatalog(t)

	got := Filter(c.All(), "All", "quantum")
	if !sameIDs(ids(got), []domain.ProductID{1}) {
		t.Errorf("expected [1], got %v", ids(got))
	}

	if got := Filter(c.All(), "Gaming", "quantum"); len(got) != 0 {
		t.Errorf("expected no products, got %v", ids(got))
	}
}

func TestFilter_CategoryIsCaseSensitive(t *testing.T) {
	c := newSeedCatalog(t)

	if got := Filter(c.All(), "electronics", ""); len(got) != 0 {
		t.Errorf("expected no products for lowercase category, got %v", ids(got))
	}

	got := Filter(c.All(), "Electronics", "")
	if len(got) == 0 {
		t.Fatal("expected electronics products")
	}
	for _, p := range got {
		if p.Category != "Electronics" {
			t.Errorf("unexpected category %s", p.Category)
		}
	}
}

func TestFilter_QueryIsCaseInsensitive(t *testing.T) {
	c := newSeedCatalog(t)

	// "HOLOGRAPHIC" only appears in the description of product 1.
	got := Filter(c.All(), domain.CategoryAll, "HOLOGRAPHIC")
	if !sameIDs(ids(got), []domain.ProductID{1}) {
		t.Errorf("expected [1], got %v", ids(got))
	}
}

func TestFilter_UnknownCategory(t *testing.T) {
	c := newSeedCatalog(t)

	if got := Filter(c.All(), "Fashion", ""); len(got) != 0 {
		t.Errorf("expected empty result, got %v", ids(got))
	}
}

func TestFilter_SubsequenceProperty(t *testing.T) {
	c := newSeedCatalog(t)
	all := c.All()

	categories := append(c.Selectors(), "electronics", "Fashion", "")
	queries := []string{"", "smart", "AI", "x", "zzz", "Pro", " "}

	for _, category := range categories {
		for _, query := range queries {
			got := Filter(all, category, query)

			included := make(map[domain.ProductID]bool)
			last := -1
			for _, p := range got {
				included[p.ID] = true
				pos := indexOf(all, p.ID)
				if pos <= last {
					t.Fatalf("(%q,%q): order not preserved", category, query)
				}
				last = pos
			}

			for _, p := range all {
				want := matches(p, category, query)
				if included[p.ID] != want {
					t.Errorf("(%q,%q): product %d included=%v want %v", category, query, p.ID, included[p.ID], want)
				}
			}
		}
	}
}

func TestCategories(t *testing.T) {
	c := newSeedCatalog(t)

	want := []string{"All", "Electronics", "Gaming", "Smart Home", "Drones", "Wearables"}
	got := c.Selectors()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func indexOf(products []domain.Product, id domain.ProductID) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func matches(p domain.Product, category, query string) bool {
	if category != "All" && category != p.Category {
		return false
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q)
}
