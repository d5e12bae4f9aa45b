package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLiteRepository {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.RunMigrations())
	return repo
}

func TestSQLiteListProducts_SeededByMigrations(t *testing.T) {
	repo := setupSQLite(t)

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)

	demo := DemoProducts()
	require.Len(t, products, len(demo))
	for i, p := range products {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, demo[i].Name, p.Name)
		assert.Equal(t, demo[i].Price, p.Price)
		assert.Equal(t, demo[i].Image, p.Image)
		assert.Equal(t, demo[i].Description, p.Description)
	}
	assert.Equal(t, "1", products[0].ID)
}

func TestSQLiteRunMigrations_Idempotent(t *testing.T) {
	repo := setupSQLite(t)

	require.NoError(t, repo.RunMigrations())

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 6)
}

func TestSQLiteListProducts_EmptyTable(t *testing.T) {
	repo := setupSQLite(t)
	_, err := repo.db.Exec(`DELETE FROM products`)
	require.NoError(t, err)

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestSQLiteListProducts_CancelledContext(t *testing.T) {
	repo := setupSQLite(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(10 * time.Millisecond)

	_, err := repo.ListProducts(ctx)
	assert.Error(t, err)
}

func TestSQLitePing(t *testing.T) {
	repo := setupSQLite(t)
	assert.NoError(t, repo.Ping(context.Background()))

	require.NoError(t, repo.Close())
	assert.Error(t, repo.Ping(context.Background()))
}
