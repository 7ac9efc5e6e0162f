package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// scanningItemRepo stores rows and, like a real database read, hands every
// caller a fresh copy of the row.
type scanningItemRepo struct {
	rows  map[string]*StockItem
	saves int
}

func newScanningItemRepo() *scanningItemRepo {
	return &scanningItemRepo{rows: make(map[string]*StockItem)}
}

func (r *scanningItemRepo) put(item *StockItem) {
	r.rows[stockItemKey(item.TenantID, item.AreaID, item.ProductID, item.VariationID)] = item
}

func (r *scanningItemRepo) Save(_ context.Context, item *StockItem) error {
	cp := *item
	r.put(&cp)
	r.saves++
	return nil
}

func (r *scanningItemRepo) FindByID(_ context.Context, id uuid.UUID) (*StockItem, error) {
	for _, item := range r.rows {
		if item.GetID() == id {
			cp := *item
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *scanningItemRepo) FindByAreaAndProduct(_ context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*StockItem, error) {
	item, ok := r.rows[stockItemKey(tenantID, areaID, productID, variationID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *scanningItemRepo) FindForUpdate(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*StockItem, error) {
	return r.FindByAreaAndProduct(ctx, tenantID, areaID, productID, variationID)
}

func (r *scanningItemRepo) GetOrCreate(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*StockItem, error) {
	if item, err := r.FindByAreaAndProduct(ctx, tenantID, areaID, productID, variationID); err == nil {
		return item, nil
	}
	item, err := NewStockItem(tenantID, areaID, productID, variationID, valueobject.USD)
	if err != nil {
		return nil, err
	}
	r.put(item)
	cp := *item
	return &cp, nil
}

func (r *scanningItemRepo) FindByArea(_ context.Context, _, _ uuid.UUID, _ shared.Filter) (*shared.Paginated[*StockItem], error) {
	return nil, shared.ErrNotFound
}

func (r *scanningItemRepo) FindByProduct(_ context.Context, _, _ uuid.UUID) ([]*StockItem, error) {
	return nil, nil
}

func TestStockItemSet(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T, repo *scanningItemRepo, qty int64) *StockItem {
		t.Helper()
		item, err := NewStockItem(uuid.New(), uuid.New(), uuid.New(), nil, valueobject.USD)
		require.NoError(t, err)
		item.AvailableQuantity = decimal.NewFromInt(qty)
		item.AverageCost = decimal.NewFromInt(5)
		item.UpdatedAt = time.Now()
		repo.put(item)
		return item
	}

	t.Run("repeated locks share one instance", func(t *testing.T) {
		repo := newScanningItemRepo()
		row := seed(t, repo, 10)
		set := NewStockItemSet(repo)

		first, err := set.Lock(ctx, row.TenantID, row.AreaID, row.ProductID, nil)
		require.NoError(t, err)
		second, err := set.Lock(ctx, row.TenantID, row.AreaID, row.ProductID, nil)
		require.NoError(t, err)
		assert.Same(t, first, second)

		require.NoError(t, first.Withdraw(decimal.NewFromInt(3)))
		require.NoError(t, second.Withdraw(decimal.NewFromInt(4)))
		require.NoError(t, set.SaveAll(ctx))

		stored, err := repo.FindByAreaAndProduct(ctx, row.TenantID, row.AreaID, row.ProductID, nil)
		require.NoError(t, err)
		assert.Equal(t, "3", stored.AvailableQuantity.String())
		assert.Equal(t, 1, repo.saves)
	})

	t.Run("variations are distinct combinations", func(t *testing.T) {
		repo := newScanningItemRepo()
		set := NewStockItemSet(repo)
		tenantID, areaID, productID := uuid.New(), uuid.New(), uuid.New()
		variationID := uuid.New()

		plain, err := set.LockOrCreate(ctx, tenantID, areaID, productID, nil)
		require.NoError(t, err)
		varied, err := set.LockOrCreate(ctx, tenantID, areaID, productID, &variationID)
		require.NoError(t, err)

		assert.NotSame(t, plain, varied)
		assert.Len(t, set.Items(), 2)
	})

	t.Run("lock or create reuses a loaded row", func(t *testing.T) {
		repo := newScanningItemRepo()
		row := seed(t, repo, 8)
		set := NewStockItemSet(repo)

		locked, err := set.Lock(ctx, row.TenantID, row.AreaID, row.ProductID, nil)
		require.NoError(t, err)
		created, err := set.LockOrCreate(ctx, row.TenantID, row.AreaID, row.ProductID, nil)
		require.NoError(t, err)
		assert.Same(t, locked, created)
	})

	t.Run("missing row fails lock", func(t *testing.T) {
		set := NewStockItemSet(newScanningItemRepo())
		_, err := set.Lock(ctx, uuid.New(), uuid.New(), uuid.New(), nil)
		assert.True(t, shared.IsNotFound(err))
	})
}
