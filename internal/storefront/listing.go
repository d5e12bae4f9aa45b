package storefront

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajinkyamaster/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	MsgLoadingProducts = "Loading products..."
	MsgLoadFailed      = "Failed to load products. Please try again later."
	MsgNoProducts      = "No products available"
)

type ListingState int

const (
	ListingLoading ListingState = iota
	ListingFailed
	ListingReady
)

// Listing is the outcome of one catalog fetch for the product page.
type Listing struct {
	State    ListingState
	Products []domain.Product
}

func (l Listing) Failed() bool {
	return l.State == ListingFailed
}

func (l Listing) Empty() bool {
	return len(l.Products) == 0
}

// ProductFetcher is the catalog side of the API client.
type ProductFetcher interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
}

// LoadListing fetches the catalog once. A failure yields a failed listing
// with no products rather than an error.
func LoadListing(ctx context.Context, fetcher ProductFetcher, imageBase string, logger *zap.Logger) Listing {
	products, err := fetcher.FetchProducts(ctx)
	if err != nil {
		logger.Error("error fetching products", zap.Error(err))
		return Listing{State: ListingFailed}
	}

	for i := range products {
		products[i].Image = ResolveImageURL(imageBase, products[i].Image)
	}
	return Listing{State: ListingReady, Products: products}
}

// ResolveImageURL prefixes relative image references with base. References
// that already start with "http" are returned unchanged.
func ResolveImageURL(base, image string) string {
	if strings.HasPrefix(image, "http") {
		return image
	}
	return base + image
}

func formatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func lineTotal(item domain.CartLineItem) float64 {
	return decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity))).InexactFloat64()
}
