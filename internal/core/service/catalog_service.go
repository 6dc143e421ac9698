package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/catalog"
	"github.com/rl1809/storefront/internal/core/domain"
)

var ErrInvalidCartIntent = errors.New("invalid cart intent")

// CatalogService answers stateless catalog queries: listing, detail and the
// detail view's add-to-cart intent.
type CatalogService struct {
	catalog *catalog.Catalog
	logger  zerolog.Logger
}

func NewCatalogService(cat *catalog.Catalog, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog: cat,
		logger:  logger.With().Str("component", "catalog").Logger(),
	}
}

func (s *CatalogService) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *CatalogService) Categories() []string {
	return s.catalog.Selectors()
}

func (s *CatalogService) List(filter domain.FilterState) []domain.Product {
	return s.catalog.Filter(filter.Normalize())
}

// Detail resolves a raw identifier into a detail view.
func (s *CatalogService) Detail(rawID string) (domain.DetailView, error) {
	p, err := s.catalog.Lookup(domain.ParseProductRef(rawID))
	if err != nil {
		return domain.DetailView{}, err
	}
	return domain.NewDetailView(p), nil
}

// AddToCart validates an add-to-cart request and logs it. There is no cart
// behind it; nothing is stored and stock is left untouched.
func (s *CatalogService) AddToCart(ctx context.Context, rawID, color string, quantity int) (domain.CartIntent, error) {
	p, err := s.catalog.Lookup(domain.ParseProductRef(rawID))
	if err != nil {
		return domain.CartIntent{}, err
	}
	if quantity < 1 {
		return domain.CartIntent{}, ErrInvalidCartIntent
	}
	if color == "" {
		color = p.Colors[0]
	} else if !p.HasColor(color) {
		return domain.CartIntent{}, ErrInvalidCartIntent
	}

	intent := domain.CartIntent{ProductID: p.ID, Color: color, Quantity: quantity}
	s.logger.Info().
		Int64("product_id", int64(p.ID)).
		Str("product", p.Name).
		Str("color", color).
		Int("quantity", quantity).
		Msg("add_to_cart")
	return intent, nil
}
