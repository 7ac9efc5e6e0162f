package dispatch

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

func newTestDispatch(t *testing.T) *Dispatch {
	t.Helper()
	source := uuid.New()
	d, err := NewDispatch(uuid.New(), DispatchModeMovement, &source, uuid.New(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	return d
}

func newTestLine(t *testing.T, qty int64) *DispatchLine {
	t.Helper()
	line, err := NewDispatchLine(
		uuid.New(), nil, "CODE-001", "Widget",
		decimal.NewFromInt(qty),
		valueobject.MustMoney(decimal.NewFromInt(10), valueobject.USD),
		valueobject.MustMoney(decimal.NewFromInt(6), valueobject.USD),
	)
	require.NoError(t, err)
	return line
}

func TestNewDispatch(t *testing.T) {
	t.Run("starts open in CREATED state", func(t *testing.T) {
		d := newTestDispatch(t)
		assert.Equal(t, DispatchStatusCreated, d.Status)
		assert.False(t, d.IsTerminal())
	})

	t.Run("rejects a dispatch targeting its own source area", func(t *testing.T) {
		area := uuid.New()
		_, err := NewDispatch(uuid.New(), DispatchModeMovement, &area, area, uuid.New(), uuid.New(), uuid.New())
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})

	t.Run("allows a nil source for inbound-only dispatches", func(t *testing.T) {
		d, err := NewDispatch(uuid.New(), DispatchModeMovement, nil, uuid.New(), uuid.New(), uuid.New(), uuid.New())
		require.NoError(t, err)
		assert.Nil(t, d.SourceAreaID)
	})

	t.Run("requires destination, tenant, period and a known mode", func(t *testing.T) {
		source := uuid.New()
		_, err := NewDispatch(uuid.New(), DispatchModeMovement, &source, uuid.Nil, uuid.New(), uuid.New(), uuid.New())
		assert.Error(t, err)

		_, err = NewDispatch(uuid.New(), DispatchModeMovement, &source, uuid.New(), uuid.Nil, uuid.New(), uuid.New())
		assert.Error(t, err)

		_, err = NewDispatch(uuid.New(), DispatchModeMovement, &source, uuid.New(), uuid.New(), uuid.Nil, uuid.New())
		assert.Error(t, err)

		_, err = NewDispatch(uuid.New(), "TELEPORT", &source, uuid.New(), uuid.New(), uuid.New(), uuid.New())
		assert.Error(t, err)
	})
}

func TestDispatchAccept(t *testing.T) {
	t.Run("records who accepted and when", func(t *testing.T) {
		d := newTestDispatch(t)
		userID := uuid.New()
		require.NoError(t, d.Accept(userID))

		assert.Equal(t, DispatchStatusAccepted, d.Status)
		assert.Equal(t, &userID, d.AcceptedBy)
		require.NotNil(t, d.AcceptedAt)
		assert.True(t, d.IsTerminal())
	})

	t.Run("accepting twice names the prior actor", func(t *testing.T) {
		d := newTestDispatch(t)
		first := uuid.New()
		require.NoError(t, d.Accept(first))

		err := d.Accept(uuid.New())
		require.Error(t, err)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
		assert.Contains(t, err.Error(), first.String())
	})
}

func TestDispatchReject(t *testing.T) {
	t.Run("records who rejected and when", func(t *testing.T) {
		d := newTestDispatch(t)
		userID := uuid.New()
		require.NoError(t, d.Reject(userID))

		assert.Equal(t, DispatchStatusRejected, d.Status)
		assert.Equal(t, &userID, d.RejectedBy)
		require.NotNil(t, d.RejectedAt)
	})

	t.Run("a rejected dispatch cannot be accepted", func(t *testing.T) {
		d := newTestDispatch(t)
		rejector := uuid.New()
		require.NoError(t, d.Reject(rejector))

		err := d.Accept(uuid.New())
		require.Error(t, err)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
		assert.Contains(t, err.Error(), rejector.String())
	})
}

func TestDispatchBill(t *testing.T) {
	d := newTestDispatch(t)
	require.NoError(t, d.Bill())
	assert.Equal(t, DispatchStatusBilled, d.Status)
	require.NotNil(t, d.BilledAt)

	err := d.Accept(uuid.New())
	require.Error(t, err)
	assert.Equal(t, shared.KindConflict, shared.KindOf(err))
}

func TestDispatchLines(t *testing.T) {
	t.Run("lines attach to the dispatch while open", func(t *testing.T) {
		d := newTestDispatch(t)
		line := newTestLine(t, 5)
		require.NoError(t, d.AddLine(line))
		require.Len(t, d.Lines, 1)
		assert.Equal(t, d.GetID(), d.Lines[0].DispatchID)
	})

	t.Run("terminal dispatches reject new lines", func(t *testing.T) {
		d := newTestDispatch(t)
		require.NoError(t, d.Accept(uuid.New()))
		err := d.AddLine(newTestLine(t, 1))
		assert.Error(t, err)
	})
}

func TestDispatchLineAllocations(t *testing.T) {
	line := newTestLine(t, 10)
	require.NoError(t, line.AllocateBatch(uuid.New(), decimal.NewFromInt(6)))
	require.NoError(t, line.AllocateBatch(uuid.New(), decimal.NewFromInt(4)))

	err := line.AllocateBatch(uuid.New(), decimal.NewFromInt(1))
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestDispatchParentLinks(t *testing.T) {
	d := newTestDispatch(t)
	assert.False(t, d.HasParent())

	orderID := uuid.New()
	d.OrderID = &orderID
	assert.True(t, d.HasParent())

	d.DetachParent()
	assert.False(t, d.HasParent())
	assert.Nil(t, d.OrderID)
}

func TestDispatchCrossTenant(t *testing.T) {
	source := uuid.New()
	tenantID := uuid.New()

	same, err := NewDispatch(tenantID, DispatchModeMovement, &source, uuid.New(), tenantID, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.False(t, same.IsCrossTenant())

	cross, err := NewDispatch(tenantID, DispatchModeSale, &source, uuid.New(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.True(t, cross.IsCrossTenant())
}

func TestDispatchLineCost(t *testing.T) {
	line := newTestLine(t, 3)
	assert.Equal(t, "18", line.TotalCost().Amount().String())
	assert.Equal(t, valueobject.USD, line.TotalCost().Currency())
}
