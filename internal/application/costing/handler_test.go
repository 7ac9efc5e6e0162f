package costing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/application/ports"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

type fakeReceiptRepo struct {
	receipts map[uuid.UUID]*receipt.GoodsReceipt
	saved    int
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: make(map[uuid.UUID]*receipt.GoodsReceipt)}
}

func (r *fakeReceiptRepo) Save(_ context.Context, rec *receipt.GoodsReceipt) error {
	r.receipts[rec.GetID()] = rec
	r.saved++
	return nil
}

func (r *fakeReceiptRepo) FindByID(_ context.Context, id uuid.UUID) (*receipt.GoodsReceipt, error) {
	rec, ok := r.receipts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rec, nil
}

func (r *fakeReceiptRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*receipt.GoodsReceipt, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeReceiptRepo) FindByTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) (*shared.Paginated[*receipt.GoodsReceipt], error) {
	return nil, shared.ErrNotFound
}

func (r *fakeReceiptRepo) NextOperationNumber(_ context.Context, _ uuid.UUID, _ int) (int, error) {
	return 1, nil
}

func (r *fakeReceiptRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.receipts, id)
	return nil
}

type fakeBatchRepo struct {
	batches map[uuid.UUID][]*inventory.StockBatch
	saved   int
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[uuid.UUID][]*inventory.StockBatch)}
}

func (r *fakeBatchRepo) Save(_ context.Context, _ *inventory.StockBatch) error { return nil }

func (r *fakeBatchRepo) SaveAll(_ context.Context, batches []*inventory.StockBatch) error {
	r.saved += len(batches)
	return nil
}

func (r *fakeBatchRepo) FindByID(_ context.Context, _ uuid.UUID) (*inventory.StockBatch, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeBatchRepo) FindByReceipt(_ context.Context, receiptID uuid.UUID) ([]*inventory.StockBatch, error) {
	return r.batches[receiptID], nil
}

func (r *fakeBatchRepo) FindAvailableByProduct(_ context.Context, _, _, _ uuid.UUID, _ *uuid.UUID) ([]*inventory.StockBatch, error) {
	return nil, nil
}

func (r *fakeBatchRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeCurrencies struct{}

func (fakeCurrencies) GetCurrencies(_ context.Context, _ uuid.UUID) ([]ports.CurrencyInfo, error) {
	return nil, nil
}

func (fakeCurrencies) CostCurrency(_ context.Context, _ uuid.UUID) (valueobject.Currency, error) {
	return valueobject.USD, nil
}

func (fakeCurrencies) RateTable(_ context.Context, _ uuid.UUID) (valueobject.RateTable, error) {
	return valueobject.RateTable{}, nil
}

func seedReceipt(t *testing.T, receipts *fakeReceiptRepo, batchRepo *fakeBatchRepo) *receipt.GoodsReceipt {
	t.Helper()
	rec, err := receipt.NewGoodsReceipt(uuid.New(), uuid.New(), 1, uuid.New())
	require.NoError(t, err)

	fc, err := receipt.NewFixedCost(receipt.FixedCostFreight,
		valueobject.MustMoney(decimal.NewFromInt(15), valueobject.USD), "")
	require.NoError(t, err)
	require.NoError(t, rec.AddFixedCost(fc))

	a, err := inventory.NewStockBatch(rec.TenantID, rec.AreaID, uuid.New(), nil, "LOT-A",
		decimal.NewFromInt(10), valueobject.MustMoney(decimal.NewFromInt(2), valueobject.USD))
	require.NoError(t, err)
	b, err := inventory.NewStockBatch(rec.TenantID, rec.AreaID, uuid.New(), nil, "LOT-B",
		decimal.NewFromInt(5), valueobject.MustMoney(decimal.NewFromInt(3), valueobject.USD))
	require.NoError(t, err)
	a.AttachToReceipt(rec.GetID())
	b.AttachToReceipt(rec.GetID())

	receipts.receipts[rec.GetID()] = rec
	batchRepo.batches[rec.GetID()] = []*inventory.StockBatch{a, b}
	return rec
}

func payloadFor(t *testing.T, rec *receipt.GoodsReceipt) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(UpdateCostParams{ReceiptID: rec.GetID(), TenantID: rec.TenantID})
	require.NoError(t, err)
	return raw
}

func TestRecalculationHandler(t *testing.T) {
	newHandler := func(receipts *fakeReceiptRepo, batches *fakeBatchRepo) *RecalculationHandler {
		scope := NewNoOpTransactionScope(receipts, batches)
		return NewRecalculationHandler(scope, fakeCurrencies{}, zap.NewNop())
	}

	t.Run("recalculates and persists the receipt costs", func(t *testing.T) {
		receipts := newFakeReceiptRepo()
		batches := newFakeBatchRepo()
		rec := seedReceipt(t, receipts, batches)
		h := newHandler(receipts, batches)

		require.NoError(t, h.Handle(context.Background(), CodeUpdateCost, payloadFor(t, rec)))

		// 15 indirect / 15 units = 1 per unit; 10*3 + 5*4 = 50
		assert.Equal(t, "50.00", rec.TotalCost().Amount().StringFixed(2))
		assert.Equal(t, 1, receipts.saved)
		assert.Equal(t, 2, batches.saved)
	})

	t.Run("redelivery produces the same result", func(t *testing.T) {
		receipts := newFakeReceiptRepo()
		batches := newFakeBatchRepo()
		rec := seedReceipt(t, receipts, batches)
		h := newHandler(receipts, batches)

		raw := payloadFor(t, rec)
		require.NoError(t, h.Handle(context.Background(), CodeUpdateCost, raw))
		require.NoError(t, h.Handle(context.Background(), CodeUpdateCost, raw))

		assert.Equal(t, "50.00", rec.TotalCost().Amount().StringFixed(2))
	})

	t.Run("a deleted receipt is acknowledged, not retried", func(t *testing.T) {
		receipts := newFakeReceiptRepo()
		batches := newFakeBatchRepo()
		h := newHandler(receipts, batches)

		raw, err := json.Marshal(UpdateCostParams{ReceiptID: uuid.New(), TenantID: uuid.New()})
		require.NoError(t, err)

		assert.NoError(t, h.Handle(context.Background(), CodeUpdateCost, raw))
		assert.Zero(t, receipts.saved)
	})

	t.Run("rejects unknown codes and bad payloads", func(t *testing.T) {
		h := newHandler(newFakeReceiptRepo(), newFakeBatchRepo())

		assert.Error(t, h.Handle(context.Background(), "SOMETHING_ELSE", nil))
		assert.Error(t, h.Handle(context.Background(), CodeUpdateCost, json.RawMessage(`{`)))
	})
}
