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

func usd(amount int64) valueobject.Money {
	return valueobject.MustMoney(decimal.NewFromInt(amount), valueobject.USD)
}

func TestLedgerApply(t *testing.T) {
	ledger := NewLedger()
	periodID := uuid.New()

	t.Run("positive quantity records an ENTRY", func(t *testing.T) {
		item := newTestItem(t)
		movement, err := ledger.Apply(periodID, LedgerLine{
			Item:     item,
			Quantity: decimal.NewFromInt(10),
			UnitCost: usd(5),
		})
		require.NoError(t, err)
		assert.Equal(t, OperationEntry, movement.Operation)
		assert.Equal(t, "10", movement.Quantity.String())
		assert.Equal(t, "10", item.AvailableQuantity.String())
		assert.Equal(t, periodID, movement.AccountingPeriodID)
	})

	t.Run("negative quantity records a MOVEMENT", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))

		movement, err := ledger.Apply(periodID, LedgerLine{
			Item:     item,
			Quantity: decimal.NewFromInt(-4),
			UnitCost: usd(5),
		})
		require.NoError(t, err)
		assert.Equal(t, OperationMovement, movement.Operation)
		assert.Equal(t, "-4", movement.Quantity.String())
		assert.Equal(t, "6", item.AvailableQuantity.String())
	})

	t.Run("carries the references onto the movement", func(t *testing.T) {
		item := newTestItem(t)
		dispatchID := uuid.New()
		batchID := uuid.New()
		movement, err := ledger.Apply(periodID, LedgerLine{
			Item:       item,
			Quantity:   decimal.NewFromInt(1),
			UnitCost:   usd(1),
			DispatchID: &dispatchID,
			BatchID:    &batchID,
		})
		require.NoError(t, err)
		assert.Equal(t, &dispatchID, movement.DispatchID)
		assert.Equal(t, &batchID, movement.BatchID)
	})
}

func TestLedgerApplyStrict(t *testing.T) {
	ledger := NewLedger()
	periodID := uuid.New()

	t.Run("applies all lines when every withdrawal is covered", func(t *testing.T) {
		a := newTestItem(t)
		b := newTestItem(t)
		require.NoError(t, a.Receive(decimal.NewFromInt(10), decimal.NewFromInt(2)))

		movements, err := ledger.ApplyStrict(periodID, []LedgerLine{
			{Item: a, Quantity: decimal.NewFromInt(-4), UnitCost: usd(2)},
			{Item: b, Quantity: decimal.NewFromInt(4), UnitCost: usd(2)},
		})
		require.NoError(t, err)
		require.Len(t, movements, 2)
		assert.Equal(t, "6", a.AvailableQuantity.String())
		assert.Equal(t, "4", b.AvailableQuantity.String())
	})

	t.Run("one short line leaves every item untouched", func(t *testing.T) {
		a := newTestItem(t)
		b := newTestItem(t)
		require.NoError(t, a.Receive(decimal.NewFromInt(10), decimal.NewFromInt(2)))
		require.NoError(t, b.Receive(decimal.NewFromInt(1), decimal.NewFromInt(2)))

		_, err := ledger.ApplyStrict(periodID, []LedgerLine{
			{Item: a, Quantity: decimal.NewFromInt(-4), UnitCost: usd(2)},
			{Item: b, Quantity: decimal.NewFromInt(-5), UnitCost: usd(2)},
		})
		require.Error(t, err)
		assert.Equal(t, shared.KindInsufficiency, shared.KindOf(err))
		assert.Equal(t, "10", a.AvailableQuantity.String())
		assert.Equal(t, "1", b.AvailableQuantity.String())
	})

	t.Run("sums several withdrawals against the same item", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(5), decimal.NewFromInt(2)))

		_, err := ledger.ApplyStrict(periodID, []LedgerLine{
			{Item: item, Quantity: decimal.NewFromInt(-3), UnitCost: usd(2)},
			{Item: item, Quantity: decimal.NewFromInt(-3), UnitCost: usd(2)},
		})
		require.Error(t, err)
		assert.Equal(t, "5", item.AvailableQuantity.String())
	})

	t.Run("rejects empty input and zero-quantity lines", func(t *testing.T) {
		_, err := ledger.ApplyStrict(periodID, nil)
		assert.Error(t, err)

		item := newTestItem(t)
		_, err = ledger.ApplyStrict(periodID, []LedgerLine{
			{Item: item, Quantity: decimal.Zero, UnitCost: usd(1)},
		})
		assert.Error(t, err)
	})
}

func TestLedgerReverse(t *testing.T) {
	ledger := NewLedger()
	periodID := uuid.New()

	t.Run("reversing an outbound movement restores the stock", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))
		original, err := ledger.Apply(periodID, LedgerLine{
			Item:     item,
			Quantity: decimal.NewFromInt(-4),
			UnitCost: usd(5),
		})
		require.NoError(t, err)

		reversal, err := ledger.Reverse(item, original, "dispatch rejected")
		require.NoError(t, err)
		assert.Equal(t, OperationRemoved, reversal.Operation)
		assert.Equal(t, "4", reversal.Quantity.String())
		assert.Equal(t, original.GetID(), *reversal.ReversalOfID)
		assert.Equal(t, "10", item.AvailableQuantity.String())
		// Restoration keeps the original average; no cost recompute happens.
		assert.Equal(t, "5", item.AverageCost.String())
	})

	t.Run("reversing an entry withdraws the stock again", func(t *testing.T) {
		item := newTestItem(t)
		original, err := ledger.Apply(periodID, LedgerLine{
			Item:     item,
			Quantity: decimal.NewFromInt(6),
			UnitCost: usd(3),
		})
		require.NoError(t, err)

		reversal, err := ledger.Reverse(item, original, "receipt cancelled")
		require.NoError(t, err)
		assert.Equal(t, "-6", reversal.Quantity.String())
		assert.True(t, item.AvailableQuantity.IsZero())
	})

	t.Run("a reversal cannot be reversed", func(t *testing.T) {
		item := newTestItem(t)
		require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))
		original, err := ledger.Apply(periodID, LedgerLine{
			Item:     item,
			Quantity: decimal.NewFromInt(-2),
			UnitCost: usd(5),
		})
		require.NoError(t, err)
		reversal, err := ledger.Reverse(item, original, "first")
		require.NoError(t, err)

		_, err = ledger.Reverse(item, reversal, "second")
		require.Error(t, err)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	})
}
