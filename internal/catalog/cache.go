package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ajinkyamaster/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const productsCacheKey = "catalog:products"

var errCacheMiss = errors.New("cache miss")

// cachedProduct keeps the description, which domain.Product hides from JSON.
type cachedProduct struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description,omitempty"`
}

// CachedRepository is a read-through Redis cache in front of another
// Repository. Cache failures are logged and the underlying repository is used.
type CachedRepository struct {
	next    Repository
	client  *redis.Client
	baseTTL time.Duration
	sfg     singleflight.Group
	logger  *zap.Logger
}

func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedRepository{
		next:    next,
		client:  client,
		baseTTL: ttl,
		logger:  logger,
	}
}

func (c *CachedRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	// collapse concurrent misses into one data source read
	v, err, _ := c.sfg.Do(productsCacheKey, func() (interface{}, error) {
		products, err := c.get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, errCacheMiss) {
			c.logger.Warn("catalog cache get failed", zap.Error(err))
		}

		products, err = c.next.ListProducts(ctx)
		if err != nil {
			return nil, err
		}

		if err := c.set(ctx, products); err != nil {
			c.logger.Warn("catalog cache set failed", zap.Error(err))
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (c *CachedRepository) Ping(ctx context.Context) error {
	return c.next.Ping(ctx)
}

// Invalidate drops the cached catalog.
func (c *CachedRepository) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, productsCacheKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (c *CachedRepository) get(ctx context.Context) ([]domain.Product, error) {
	data, err := c.client.Get(ctx, productsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cached []cachedProduct
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshal products failed: %w", err)
	}

	products := make([]domain.Product, len(cached))
	for i, p := range cached {
		products[i] = domain.Product(p)
	}
	return products, nil
}

func (c *CachedRepository) set(ctx context.Context, products []domain.Product) error {
	cached := make([]cachedProduct, len(products))
	for i, p := range products {
		cached[i] = cachedProduct(p)
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal products failed: %w", err)
	}

	jitter := time.Duration(rand.Int63n(int64(c.baseTTL)/10 + 1))
	if err := c.client.Set(ctx, productsCacheKey, data, c.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
