// Package catalog serves the product catalog from a document store or an
// embedded SQL database, optionally behind a Redis cache.
package catalog

import (
	"context"

	"github.com/ajinkyamaster/storefront/internal/domain"
)

// Repository is the read side of the catalog.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	Ping(ctx context.Context) error
}
