package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type CatalogSource interface {
	// LoadProducts returns the catalog seed in display order
	LoadProducts(ctx context.Context) ([]domain.Product, error)
}
