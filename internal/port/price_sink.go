package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type PriceSink interface {
	// PublishPrices forwards one complete tick of a session's display prices
	PublishPrices(ctx context.Context, sessionID string, prices domain.DisplayPrices) error

	// CloseSession tells the sink the session is gone and its prices can be dropped
	CloseSession(ctx context.Context, sessionID string) error
}
