package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopbot/backend/internal/domain/catalog"
	"github.com/shopbot/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProductTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&catalog.Product{})
	require.NoError(t, err)

	return db
}

func mustProduct(t *testing.T, title string, priceMinorUnits int64) *catalog.Product {
	t.Helper()

	product, err := catalog.NewProduct(title, "test description", priceMinorUnits, "")
	require.NoError(t, err)
	return product
}

func TestGormProductRepository_CreateAndFindByID(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("create assigns id and round-trips", func(t *testing.T) {
		product := mustProduct(t, "Coffee Beans", 1250)

		err := repo.Create(ctx, product)
		require.NoError(t, err)
		assert.NotZero(t, product.ID)

		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Coffee Beans", found.Title)
		assert.Equal(t, "test description", found.Description)
		assert.Equal(t, int64(1250), found.Price.MinorUnits())
	})

	t.Run("ids grow monotonically", func(t *testing.T) {
		first := mustProduct(t, "First", 100)
		second := mustProduct(t, "Second", 200)

		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("find missing product returns not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, 999999)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_FindByIDs(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	first := mustProduct(t, "Keyboard", 4500)
	second := mustProduct(t, "Mouse", 2500)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("returns only existing products", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, []int64{first.ID, second.ID, 424242})
		require.NoError(t, err)

		require.Len(t, found, 2)
		assert.Equal(t, "Keyboard", found[first.ID].Title)
		assert.Equal(t, "Mouse", found[second.ID].Title)
		_, ok := found[424242]
		assert.False(t, ok)
	})

	t.Run("empty id list returns empty map", func(t *testing.T) {
		found, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestGormProductRepository_FindPage(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	products := make([]*catalog.Product, 0, 8)
	for i := 1; i <= 8; i++ {
		product := mustProduct(t, fmt.Sprintf("Product %d", i), int64(i*100))
		require.NoError(t, repo.Create(ctx, product))
		products = append(products, product)
	}

	t.Run("first page holds newest products", func(t *testing.T) {
		page, err := repo.FindPage(ctx, 0, 6)
		require.NoError(t, err)

		require.Len(t, page, 6)
		assert.Equal(t, products[7].ID, page[0].ID)
		assert.Equal(t, products[2].ID, page[5].ID)
	})

	t.Run("last page holds the remainder", func(t *testing.T) {
		page, err := repo.FindPage(ctx, 1, 6)
		require.NoError(t, err)

		require.Len(t, page, 2)
		assert.Equal(t, products[1].ID, page[0].ID)
		assert.Equal(t, products[0].ID, page[1].ID)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, err := repo.FindPage(ctx, 5, 6)
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func TestGormProductRepository_Count(t *testing.T) {
	db := setupProductTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, repo.Create(ctx, mustProduct(t, "Solo", 999)))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
