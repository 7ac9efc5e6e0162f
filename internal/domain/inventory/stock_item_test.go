package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

func newTestItem(t *testing.T) *StockItem {
	t.Helper()
	item, err := NewStockItem(uuid.New(), uuid.New(), uuid.New(), nil, valueobject.USD)
	require.NoError(t, err)
	return item
}

func TestNewStockItem(t *testing.T) {
	t.Run("requires area and product", func(t *testing.T) {
		_, err := NewStockItem(uuid.New(), uuid.Nil, uuid.New(), nil, valueobject.USD)
		assert.Error(t, err)

		_, err = NewStockItem(uuid.New(), uuid.New(), uuid.Nil, nil, valueobject.USD)
		assert.Error(t, err)
	})

	t.Run("defaults the cost currency", func(t *testing.T) {
		item, err := NewStockItem(uuid.New(), uuid.New(), uuid.New(), nil, "")
		require.NoError(t, err)
		assert.Equal(t, valueobject.DefaultCurrency, item.CostCurrency)
	})
}

func TestStockItemReceive(t *testing.T) {
	t.Run("bootstraps the average on first entry", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))
		assert.Equal(t, "10", item.AvailableQuantity.String())
		assert.Equal(t, "5", item.AverageCost.String())
	})

	t.Run("folds new cost into weighted average", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))
		require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(7)))
		// (10*5 + 10*7) / 20 = 6
		assert.Equal(t, "6", item.AverageCost.String())
		assert.Equal(t, "20", item.AvailableQuantity.String())
	})

	t.Run("rounds the average to money precision", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(3), decimal.NewFromInt(1)))
		require.NoError(t, item.Receive(decimal.NewFromInt(3), decimal.NewFromInt(2)))
		// (3*1 + 3*2) / 6 = 1.5
		assert.Equal(t, "1.5", item.AverageCost.String())

		require.NoError(t, item.Receive(decimal.NewFromInt(1), decimal.NewFromInt(3)))
		// (6*1.5 + 1*3) / 7 = 1.714285... -> 1.71
		assert.Equal(t, "1.71", item.AverageCost.String())
	})

	t.Run("re-bootstraps after stock hits zero", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(5), decimal.NewFromInt(4)))
		require.NoError(t, item.Withdraw(decimal.NewFromInt(5)))
		require.NoError(t, item.Receive(decimal.NewFromInt(2), decimal.NewFromInt(9)))
		assert.Equal(t, "9", item.AverageCost.String())
	})

	t.Run("rejects non-positive quantity and negative cost", func(t *testing.T) {
		item := newTestItem(t)
		assert.Error(t, item.Receive(decimal.Zero, decimal.NewFromInt(1)))
		assert.Error(t, item.Receive(decimal.NewFromInt(1), decimal.NewFromInt(-1)))
	})

	t.Run("emits event when the average changes", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))
		events := item.GetDomainEvents()
		require.NotEmpty(t, events)
		assert.Equal(t, "inventory.average_cost_changed", events[0].EventType())
	})
}

func TestStockItemWithdraw(t *testing.T) {
	t.Run("decrements availability without touching the average", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))
		require.NoError(t, item.Withdraw(decimal.NewFromInt(4)))
		assert.Equal(t, "6", item.AvailableQuantity.String())
		assert.Equal(t, "5", item.AverageCost.String())
	})

	t.Run("fails with insufficiency when stock is short", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(3), decimal.NewFromInt(5)))
		err := item.Withdraw(decimal.NewFromInt(4))
		require.Error(t, err)
		assert.Equal(t, shared.KindInsufficiency, shared.KindOf(err))
		assert.Equal(t, "3", item.AvailableQuantity.String())
	})
}

func TestStockItemRestore(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))
	require.NoError(t, item.Withdraw(decimal.NewFromInt(10)))
	require.NoError(t, item.Restore(decimal.NewFromInt(10)))

	assert.Equal(t, "10", item.AvailableQuantity.String())
	// Restore keeps the historical average: the value never left the area.
	assert.Equal(t, "5", item.AverageCost.String())
}

func TestStockItemTotalValue(t *testing.T) {
	item := newTestItem(t)
	require.NoError(t, item.Receive(decimal.NewFromInt(4), decimal.NewFromFloat(2.5)))
	assert.Equal(t, "10.00", item.TotalValue().Amount().StringFixed(2))
}
