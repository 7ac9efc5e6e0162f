package persistence

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named in-memory database keeps every pooled connection on the same
	// schema while staying isolated per test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&inventory.StockMovement{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func newMovement(t *testing.T, tenantID, areaID, productID uuid.UUID, qty int64) *inventory.StockMovement {
	t.Helper()
	op := inventory.OperationEntry
	if qty < 0 {
		op = inventory.OperationMovement
	}
	m, err := inventory.NewStockMovement(
		tenantID, areaID, productID, nil, op,
		decimal.NewFromInt(qty),
		valueobject.MustMoney(decimal.NewFromInt(5), valueobject.USD),
		uuid.New(),
	)
	require.NoError(t, err)
	return m
}

func TestStockMovementRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save and find by id", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		m := newMovement(t, uuid.New(), uuid.New(), uuid.New(), 10)
		require.NoError(t, repo.Save(ctx, m))

		found, err := repo.FindByID(ctx, m.GetID())
		require.NoError(t, err)
		assert.Equal(t, m.GetID(), found.GetID())
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(10)))

		_, err = repo.FindByID(ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("sum nets entries against withdrawals", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		tenantID, areaID, productID := uuid.New(), uuid.New(), uuid.New()

		require.NoError(t, repo.SaveAll(ctx, []*inventory.StockMovement{
			newMovement(t, tenantID, areaID, productID, 10),
			newMovement(t, tenantID, areaID, productID, -4),
			newMovement(t, tenantID, areaID, productID, 3),
		}))
		// A row in another area must not leak into the sum.
		require.NoError(t, repo.Save(ctx, newMovement(t, tenantID, uuid.New(), productID, 100)))

		sum, err := repo.SumByProductAndArea(ctx, tenantID, areaID, productID, nil)
		require.NoError(t, err)
		assert.Equal(t, "9", sum.String())
	})

	t.Run("sum over an empty ledger is zero", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		sum, err := repo.SumByProductAndArea(ctx, uuid.New(), uuid.New(), uuid.New(), nil)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	t.Run("find by receipt returns only that receipt's rows", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		tenantID, areaID, productID := uuid.New(), uuid.New(), uuid.New()
		receiptID := uuid.New()

		linked := newMovement(t, tenantID, areaID, productID, 5)
		linked.LinkReceipt(receiptID)
		require.NoError(t, repo.Save(ctx, linked))
		require.NoError(t, repo.Save(ctx, newMovement(t, tenantID, areaID, productID, 7)))

		rows, err := repo.FindByReceipt(ctx, receiptID)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, linked.GetID(), rows[0].GetID())
	})

	t.Run("paginated history is newest first", func(t *testing.T) {
		repo := NewGormStockMovementRepository(newTestDB(t))
		tenantID, areaID, productID := uuid.New(), uuid.New(), uuid.New()

		for i := int64(1); i <= 3; i++ {
			require.NoError(t, repo.Save(ctx, newMovement(t, tenantID, areaID, productID, i)))
		}

		page, err := repo.FindByProduct(ctx, tenantID, productID, shared.Filter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Items, 2)
		assert.False(t, page.Items[0].RecordedAt.Before(page.Items[1].RecordedAt))
	})
}
