package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) *redis.Client {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()

	redisC, err := testcontainers.Run(
		ctx, "redis:7",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		),
	)
	testcontainers.CleanupContainer(t, redisC)
	require.NoError(t, err)

	endpoint, err := redisC.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestCachedRepository_RealRedis(t *testing.T) {
	client := setupRedisContainer(t)
	next := &mockRepository{products: testProducts}
	repo := NewCachedRepository(next, client, time.Minute, nil)
	ctx := context.Background()

	first, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	second, err := repo.ListProducts(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Ergonomic", second[0].Description)
	assert.Equal(t, int32(1), next.calls.Load())

	ttl, err := client.TTL(ctx, productsCacheKey).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, repo.Invalidate(ctx))
	_, err = repo.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}
