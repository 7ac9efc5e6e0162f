package receipt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

func newTestReceipt(t *testing.T) *GoodsReceipt {
	t.Helper()
	r, err := NewGoodsReceipt(uuid.New(), uuid.New(), 42, uuid.New())
	require.NoError(t, err)
	return r
}

func newTestBatch(t *testing.T, qty int64, price string, currency valueobject.Currency) *inventory.StockBatch {
	t.Helper()
	b, err := inventory.NewStockBatch(
		uuid.New(), uuid.New(), uuid.New(), nil,
		"LOT-"+uuid.NewString()[:8],
		decimal.NewFromInt(qty),
		valueobject.MustMoney(decimal.RequireFromString(price), currency),
	)
	require.NoError(t, err)
	return b
}

func addFixedCost(t *testing.T, r *GoodsReceipt, amount string, currency valueobject.Currency) {
	t.Helper()
	fc, err := NewFixedCost(FixedCostFreight, valueobject.MustMoney(decimal.RequireFromString(amount), currency), "")
	require.NoError(t, err)
	require.NoError(t, r.AddFixedCost(fc))
}

func TestNewGoodsReceipt(t *testing.T) {
	t.Run("starts in CREATED state", func(t *testing.T) {
		r := newTestReceipt(t)
		assert.Equal(t, ReceiptStatusCreated, r.Status)
		assert.True(t, r.CanModify())
		assert.False(t, r.IsDebited())
	})

	t.Run("requires an area and a positive operation number", func(t *testing.T) {
		_, err := NewGoodsReceipt(uuid.New(), uuid.Nil, 1, uuid.New())
		assert.Error(t, err)

		_, err = NewGoodsReceipt(uuid.New(), uuid.New(), 0, uuid.New())
		assert.Error(t, err)
	})
}

func TestAllocateCosts(t *testing.T) {
	t.Run("spreads indirect costs evenly per unit", func(t *testing.T) {
		r := newTestReceipt(t)
		a := newTestBatch(t, 10, "2", valueobject.USD)
		b := newTestBatch(t, 5, "3", valueobject.USD)
		addFixedCost(t, r, "15", valueobject.USD)

		// 15 indirect / 15 units = 1.00 per unit
		require.NoError(t, r.AllocateCosts([]*inventory.StockBatch{a, b}, valueobject.USD, valueobject.RateTable{}))

		assert.Equal(t, "2.00", a.GrossCost().Amount().StringFixed(2))
		assert.Equal(t, "3.00", a.NetCost().Amount().StringFixed(2))
		assert.Equal(t, "3.00", b.GrossCost().Amount().StringFixed(2))
		assert.Equal(t, "4.00", b.NetCost().Amount().StringFixed(2))
		// 10*3 + 5*4
		assert.Equal(t, "50.00", r.TotalCost().Amount().StringFixed(2))
	})

	t.Run("rerunning on unchanged inputs writes identical costs", func(t *testing.T) {
		r := newTestReceipt(t)
		a := newTestBatch(t, 10, "2", valueobject.USD)
		b := newTestBatch(t, 5, "3", valueobject.USD)
		addFixedCost(t, r, "15", valueobject.USD)

		batches := []*inventory.StockBatch{a, b}
		require.NoError(t, r.AllocateCosts(batches, valueobject.USD, valueobject.RateTable{}))
		first := r.TotalCost()
		firstNet := a.NetCost()

		require.NoError(t, r.AllocateCosts(batches, valueobject.USD, valueobject.RateTable{}))
		assert.True(t, first.Equals(r.TotalCost()))
		assert.True(t, firstNet.Equals(a.NetCost()))
	})

	t.Run("exchanges foreign prices into the cost currency", func(t *testing.T) {
		r := newTestReceipt(t)
		a := newTestBatch(t, 4, "10", valueobject.EUR)
		rates := valueobject.NewRateTable(map[string]decimal.Decimal{
			"USD": decimal.RequireFromString("1.10"),
		})

		require.NoError(t, r.AllocateCosts([]*inventory.StockBatch{a}, valueobject.USD, rates))
		assert.Equal(t, valueobject.USD, a.NetCost().Currency())
		assert.Equal(t, "11.00", a.NetCost().Amount().StringFixed(2))
		assert.Equal(t, "44.00", r.TotalCost().Amount().StringFixed(2))
	})

	t.Run("fails with integrity error when a rate is missing", func(t *testing.T) {
		r := newTestReceipt(t)
		a := newTestBatch(t, 1, "10", valueobject.EUR)

		err := r.AllocateCosts([]*inventory.StockBatch{a}, valueobject.USD, valueobject.RateTable{})
		require.Error(t, err)
		assert.Equal(t, shared.KindIntegrity, shared.KindOf(err))
	})

	t.Run("no batches leaves the per-unit share at zero", func(t *testing.T) {
		r := newTestReceipt(t)
		addFixedCost(t, r, "15", valueobject.USD)

		require.NoError(t, r.AllocateCosts(nil, valueobject.USD, valueobject.RateTable{}))
		assert.True(t, r.TotalCost().Amount().IsZero())
	})
}

func TestReceiptFixedCosts(t *testing.T) {
	t.Run("add and remove", func(t *testing.T) {
		r := newTestReceipt(t)
		fc, err := NewFixedCost(FixedCostCustoms, valueobject.MustMoney(decimal.NewFromInt(5), valueobject.USD), "duty")
		require.NoError(t, err)
		require.NoError(t, r.AddFixedCost(fc))
		require.Len(t, r.FixedCosts, 1)
		assert.Equal(t, r.GetID(), r.FixedCosts[0].ReceiptID)

		require.NoError(t, r.RemoveFixedCost(fc.GetID()))
		assert.Empty(t, r.FixedCosts)
	})

	t.Run("removing an unknown cost is not found", func(t *testing.T) {
		r := newTestReceipt(t)
		err := r.RemoveFixedCost(uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestReceiptStatusFreeze(t *testing.T) {
	t.Run("dispatched receipts reject edits", func(t *testing.T) {
		r := newTestReceipt(t)
		require.NoError(t, r.MarkDispatched(uuid.New()))
		assert.False(t, r.CanModify())

		fc, err := NewFixedCost(FixedCostOther, valueobject.MustMoney(decimal.NewFromInt(1), valueobject.USD), "")
		require.NoError(t, err)
		err = r.AddFixedCost(fc)
		require.Error(t, err)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	})

	t.Run("cancelled receipts reject edits", func(t *testing.T) {
		r := newTestReceipt(t)
		require.NoError(t, r.Cancel())
		assert.False(t, r.CanModify())
	})
}

func TestReceiptDispatchLink(t *testing.T) {
	t.Run("a receipt generates a dispatch exactly once", func(t *testing.T) {
		r := newTestReceipt(t)
		dispatchID := uuid.New()
		require.NoError(t, r.MarkDispatched(dispatchID))
		assert.Equal(t, ReceiptStatusDispatched, r.Status)
		assert.Equal(t, &dispatchID, r.DispatchID)

		err := r.MarkDispatched(uuid.New())
		require.Error(t, err)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	})

	t.Run("only dispatched receipts can be confirmed", func(t *testing.T) {
		r := newTestReceipt(t)
		assert.Error(t, r.Confirm())

		require.NoError(t, r.MarkDispatched(uuid.New()))
		require.NoError(t, r.Confirm())
		assert.Equal(t, ReceiptStatusConfirmed, r.Status)
	})
}

func TestReceiptDebit(t *testing.T) {
	t.Run("records the funding account once", func(t *testing.T) {
		r := newTestReceipt(t)
		accountID := uuid.New()
		require.NoError(t, r.RecordDebit(accountID))
		assert.True(t, r.IsDebited())
		assert.Equal(t, &accountID, r.FundingAccountID)

		err := r.RecordDebit(uuid.New())
		require.Error(t, err)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	})

	t.Run("a debited receipt cannot be cancelled", func(t *testing.T) {
		r := newTestReceipt(t)
		require.NoError(t, r.RecordDebit(uuid.New()))
		err := r.Cancel()
		require.Error(t, err)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	})
}

func TestReceiptCancel(t *testing.T) {
	t.Run("cancel before dispatch succeeds", func(t *testing.T) {
		r := newTestReceipt(t)
		require.NoError(t, r.Cancel())
		assert.Equal(t, ReceiptStatusCancelled, r.Status)

		assert.Error(t, r.Cancel())
	})

	t.Run("cancel after dispatch fails", func(t *testing.T) {
		r := newTestReceipt(t)
		require.NoError(t, r.MarkDispatched(uuid.New()))
		err := r.Cancel()
		require.Error(t, err)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	})
}

func TestReceiptReference(t *testing.T) {
	r := newTestReceipt(t)
	r.Year = 2026
	assert.Equal(t, "42/2026", r.Reference())
}

func TestReceiptNotes(t *testing.T) {
	r := newTestReceipt(t)
	userID := uuid.New()
	require.NoError(t, r.AppendNote(userID, "counted and verified"))
	require.Len(t, r.Operations, 1)
	assert.Equal(t, userID, r.Operations[0].UserID)

	assert.Error(t, r.AppendNote(userID, ""))
}
