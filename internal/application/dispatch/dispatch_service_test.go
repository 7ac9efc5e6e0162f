package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/dispatch"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// fakeScope runs the workflow against in-memory repositories. The stock item
// fake hands out a fresh copy per read, like a row scan does, so tests catch
// lines that mutate separate copies of the same row.
type fakeScope struct {
	dispatches *fakeDispatchRepo
	stock      *fakeStockItemRepo
	movements  *fakeMovementRepo
	batches    *fakeBatchRepo
	products   *fakeProductRepo
	receipts   *fakeReceiptRepo
	outbox     *fakeOutboxRepo
}

func newFakeScope() *fakeScope {
	return &fakeScope{
		dispatches: &fakeDispatchRepo{dispatches: make(map[uuid.UUID]*dispatch.Dispatch)},
		stock:      &fakeStockItemRepo{items: make(map[string]*inventory.StockItem)},
		movements:  &fakeMovementRepo{},
		batches:    &fakeBatchRepo{batches: make(map[uuid.UUID]*inventory.StockBatch)},
		products:   &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product)},
		receipts:   &fakeReceiptRepo{},
		outbox:     &fakeOutboxRepo{},
	}
}

func (s *fakeScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *fakeScope) DispatchRepo() dispatch.DispatchRepository { return s.dispatches }

func (s *fakeScope) StockItemRepo() inventory.StockItemRepository { return s.stock }

func (s *fakeScope) MovementRepo() inventory.StockMovementRepository { return s.movements }

func (s *fakeScope) BatchRepo() inventory.StockBatchRepository { return s.batches }

func (s *fakeScope) ProductRepo() catalog.ProductRepository { return s.products }

func (s *fakeScope) ReceiptRepo() receipt.GoodsReceiptRepository { return s.receipts }

func (s *fakeScope) OutboxRepo() shared.OutboxRepository { return s.outbox }

type fakeDispatchRepo struct {
	dispatches map[uuid.UUID]*dispatch.Dispatch
}

func (r *fakeDispatchRepo) Save(_ context.Context, d *dispatch.Dispatch) error {
	r.dispatches[d.GetID()] = d
	return nil
}

func (r *fakeDispatchRepo) FindByID(_ context.Context, id uuid.UUID) (*dispatch.Dispatch, error) {
	d, ok := r.dispatches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return d, nil
}

func (r *fakeDispatchRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*dispatch.Dispatch, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeDispatchRepo) FindByReceipt(_ context.Context, _ uuid.UUID) (*dispatch.Dispatch, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeDispatchRepo) FindOutgoing(_ context.Context, _ uuid.UUID, _ shared.Filter) (*shared.Paginated[*dispatch.Dispatch], error) {
	return nil, shared.ErrNotFound
}

func (r *fakeDispatchRepo) FindIncoming(_ context.Context, _ uuid.UUID, _ shared.Filter) (*shared.Paginated[*dispatch.Dispatch], error) {
	return nil, shared.ErrNotFound
}

type fakeStockItemRepo struct {
	items map[string]*inventory.StockItem
	saved int
}

func stockRowKey(tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) string {
	key := tenantID.String() + "/" + areaID.String() + "/" + productID.String()
	if variationID != nil {
		key += "/" + variationID.String()
	}
	return key
}

func (r *fakeStockItemRepo) put(item *inventory.StockItem) {
	cp := *item
	r.items[stockRowKey(item.TenantID, item.AreaID, item.ProductID, item.VariationID)] = &cp
}

func (r *fakeStockItemRepo) get(tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*inventory.StockItem, bool) {
	item, ok := r.items[stockRowKey(tenantID, areaID, productID, variationID)]
	return item, ok
}

func (r *fakeStockItemRepo) Save(_ context.Context, item *inventory.StockItem) error {
	r.put(item)
	r.saved++
	return nil
}

func (r *fakeStockItemRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	for _, item := range r.items {
		if item.GetID() == id {
			cp := *item
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeStockItemRepo) FindByAreaAndProduct(_ context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*inventory.StockItem, error) {
	item, ok := r.get(tenantID, areaID, productID, variationID)
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *fakeStockItemRepo) FindForUpdate(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*inventory.StockItem, error) {
	return r.FindByAreaAndProduct(ctx, tenantID, areaID, productID, variationID)
}

func (r *fakeStockItemRepo) GetOrCreate(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*inventory.StockItem, error) {
	if item, err := r.FindByAreaAndProduct(ctx, tenantID, areaID, productID, variationID); err == nil {
		return item, nil
	}
	item, err := inventory.NewStockItem(tenantID, areaID, productID, variationID, valueobject.USD)
	if err != nil {
		return nil, err
	}
	r.put(item)
	return item, nil
}

func (r *fakeStockItemRepo) FindByArea(_ context.Context, _, _ uuid.UUID, _ shared.Filter) (*shared.Paginated[*inventory.StockItem], error) {
	return nil, shared.ErrNotFound
}

func (r *fakeStockItemRepo) FindByProduct(_ context.Context, _, _ uuid.UUID) ([]*inventory.StockItem, error) {
	return nil, nil
}

type fakeMovementRepo struct {
	movements []*inventory.StockMovement
}

func (r *fakeMovementRepo) Save(_ context.Context, m *inventory.StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) SaveAll(_ context.Context, movements []*inventory.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeMovementRepo) FindByID(_ context.Context, _ uuid.UUID) (*inventory.StockMovement, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeMovementRepo) FindByDispatch(_ context.Context, dispatchID uuid.UUID) ([]*inventory.StockMovement, error) {
	var out []*inventory.StockMovement
	for _, m := range r.movements {
		if m.DispatchID != nil && *m.DispatchID == dispatchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) FindByReceipt(_ context.Context, _ uuid.UUID) ([]*inventory.StockMovement, error) {
	return nil, nil
}

func (r *fakeMovementRepo) FindByProduct(_ context.Context, _, _ uuid.UUID, _ shared.Filter) (*shared.Paginated[*inventory.StockMovement], error) {
	return nil, shared.ErrNotFound
}

func (r *fakeMovementRepo) SumByProductAndArea(_ context.Context, _, _, _ uuid.UUID, _ *uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (r *fakeMovementRepo) FindByPeriod(_ context.Context, _, _ uuid.UUID, _ time.Time) ([]*inventory.StockMovement, error) {
	return nil, nil
}

func (r *fakeMovementRepo) byOperation(op inventory.MovementOperation) []*inventory.StockMovement {
	var out []*inventory.StockMovement
	for _, m := range r.movements {
		if m.Operation == op {
			out = append(out, m)
		}
	}
	return out
}

type fakeBatchRepo struct {
	batches map[uuid.UUID]*inventory.StockBatch
}

func (r *fakeBatchRepo) put(b *inventory.StockBatch) {
	cp := *b
	r.batches[b.GetID()] = &cp
}

func (r *fakeBatchRepo) Save(_ context.Context, b *inventory.StockBatch) error {
	r.put(b)
	return nil
}

func (r *fakeBatchRepo) SaveAll(ctx context.Context, batches []*inventory.StockBatch) error {
	for _, b := range batches {
		if err := r.Save(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBatchRepo) FindByReceipt(_ context.Context, _ uuid.UUID) ([]*inventory.StockBatch, error) {
	return nil, nil
}

func (r *fakeBatchRepo) FindAvailableByProduct(_ context.Context, _, _, _ uuid.UUID, _ *uuid.UUID) ([]*inventory.StockBatch, error) {
	return nil, nil
}

func (r *fakeBatchRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.batches, id)
	return nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*catalog.Product
}

func (r *fakeProductRepo) put(p *catalog.Product) {
	cp := *p
	r.products[p.GetID()] = &cp
}

func (r *fakeProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.put(p)
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeProductRepo) FindByUniversalCode(_ context.Context, tenantID uuid.UUID, code string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.TenantID == tenantID && p.UniversalCode == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) FindByTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) (*shared.Paginated[*catalog.Product], error) {
	return nil, shared.ErrNotFound
}

func (r *fakeProductRepo) countForTenant(tenantID uuid.UUID) int {
	n := 0
	for _, p := range r.products {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n
}

type fakeReceiptRepo struct{}

func (fakeReceiptRepo) Save(_ context.Context, _ *receipt.GoodsReceipt) error { return nil }

func (fakeReceiptRepo) FindByID(_ context.Context, _ uuid.UUID) (*receipt.GoodsReceipt, error) {
	return nil, shared.ErrNotFound
}

func (fakeReceiptRepo) FindByIDForUpdate(_ context.Context, _ uuid.UUID) (*receipt.GoodsReceipt, error) {
	return nil, shared.ErrNotFound
}

func (fakeReceiptRepo) FindByTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) (*shared.Paginated[*receipt.GoodsReceipt], error) {
	return nil, shared.ErrNotFound
}

func (fakeReceiptRepo) NextOperationNumber(_ context.Context, _ uuid.UUID, _ int) (int, error) {
	return 1, nil
}

func (fakeReceiptRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type fakeOutboxRepo struct {
	entries []*shared.OutboxEntry
}

func (r *fakeOutboxRepo) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *fakeOutboxRepo) FindPending(_ context.Context, _ int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) FindRetryable(_ context.Context, _ time.Time, _ int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkProcessing(_ context.Context, _ []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) Update(_ context.Context, _ *shared.OutboxEntry) error { return nil }

func (r *fakeOutboxRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakePeriods struct {
	current inventory.AccountingPeriod
}

func (p *fakePeriods) CurrentPeriod(_ context.Context, _ uuid.UUID) (inventory.AccountingPeriod, error) {
	return p.current, nil
}

func (p *fakePeriods) PeriodByID(_ context.Context, periodID uuid.UUID) (inventory.AccountingPeriod, error) {
	return inventory.AccountingPeriod{ID: periodID, StartsAt: p.current.StartsAt}, nil
}

type fakeOrders struct {
	closed map[uuid.UUID]bool
}

func (o *fakeOrders) IsOrderClosed(_ context.Context, orderID uuid.UUID) (bool, error) {
	return o.closed[orderID], nil
}

func (o *fakeOrders) IsProductionOrderClosed(_ context.Context, orderID uuid.UUID) (bool, error) {
	return o.closed[orderID], nil
}

// serviceFixture seeds one tenant with a product and ten units of stock at an
// average cost of 5 in the source area
type serviceFixture struct {
	scope   *fakeScope
	periods *fakePeriods
	orders  *fakeOrders
	service *DispatchService

	tenantID   uuid.UUID
	sourceArea uuid.UUID
	destArea   uuid.UUID
	product    *catalog.Product
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	scope := newFakeScope()
	periods := &fakePeriods{current: inventory.AccountingPeriod{ID: uuid.New(), StartsAt: time.Now()}}
	orders := &fakeOrders{closed: make(map[uuid.UUID]bool)}

	f := &serviceFixture{
		scope:      scope,
		periods:    periods,
		orders:     orders,
		service:    NewDispatchService(scope, periods, orders, zap.NewNop()),
		tenantID:   uuid.New(),
		sourceArea: uuid.New(),
		destArea:   uuid.New(),
	}

	product, err := catalog.NewProduct(f.tenantID, "Bearing 6204", "UC-6204", catalog.ProductTypeNormal,
		valueobject.MustMoney(decimal.NewFromInt(25), valueobject.USD))
	require.NoError(t, err)
	scope.products.put(product)
	f.product = product

	item, err := inventory.NewStockItem(f.tenantID, f.sourceArea, product.GetID(), nil, valueobject.USD)
	require.NoError(t, err)
	require.NoError(t, item.Receive(decimal.NewFromInt(10), decimal.NewFromInt(5)))
	scope.stock.put(item)

	return f
}

func (f *serviceFixture) command(lines ...DispatchLineInput) CreateDispatchCommand {
	return CreateDispatchCommand{
		TenantID:          f.tenantID,
		CreatedBy:         uuid.New(),
		SourceAreaID:      f.sourceArea,
		DestinationAreaID: f.destArea,
		Lines:             lines,
	}
}

func (f *serviceFixture) line(quantity int64) DispatchLineInput {
	return DispatchLineInput{ProductID: f.product.GetID(), Quantity: decimal.NewFromInt(quantity)}
}

func (f *serviceFixture) available(t *testing.T, tenantID, areaID uuid.UUID) string {
	t.Helper()
	item, ok := f.scope.stock.get(tenantID, areaID, f.product.GetID(), nil)
	require.True(t, ok, "no stock row for area %s", areaID)
	return item.AvailableQuantity.String()
}

func (f *serviceFixture) seedBatch(t *testing.T, quantity int64) *inventory.StockBatch {
	t.Helper()
	batch, err := inventory.NewStockBatch(f.tenantID, f.sourceArea, f.product.GetID(), nil, "LOT-1",
		decimal.NewFromInt(quantity), valueobject.MustMoney(decimal.NewFromInt(5), valueobject.USD))
	require.NoError(t, err)
	f.scope.batches.put(batch)
	return batch
}

func TestCreateDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("lines drawing from one stock row accumulate on a single save", func(t *testing.T) {
		f := newServiceFixture(t)

		d, err := f.service.CreateDispatch(ctx, f.command(f.line(3), f.line(4)))
		require.NoError(t, err)

		assert.Equal(t, "3", f.available(t, f.tenantID, f.sourceArea))
		assert.Equal(t, 1, f.scope.stock.saved)

		movements, err := f.scope.movements.FindByDispatch(ctx, d.GetID())
		require.NoError(t, err)
		require.Len(t, movements, 2)
		net := decimal.Zero
		for _, m := range movements {
			assert.Equal(t, inventory.OperationMovement, m.Operation)
			net = net.Add(m.Quantity)
		}
		assert.Equal(t, "-7", net.String())
		assert.NotEmpty(t, f.scope.outbox.entries)
	})

	t.Run("combined line demand over the available quantity fails atomically", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.CreateDispatch(ctx, f.command(f.line(6), f.line(5)))
		require.Error(t, err)
		assert.Equal(t, shared.KindInsufficiency, shared.KindOf(err))

		assert.Equal(t, "10", f.available(t, f.tenantID, f.sourceArea))
		assert.Empty(t, f.scope.movements.movements)
		assert.Empty(t, f.scope.dispatches.dispatches)
	})

	t.Run("batch allocations consume batch availability", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedBatch(t, 10)

		in := f.line(4)
		in.Batches = []BatchAllocationInput{{BatchID: batch.GetID(), Quantity: decimal.NewFromInt(4)}}
		_, err := f.service.CreateDispatch(ctx, f.command(in))
		require.NoError(t, err)

		stored, err := f.scope.batches.FindByID(ctx, batch.GetID())
		require.NoError(t, err)
		assert.Equal(t, "6", stored.AvailableQuantity.String())
	})
}

func TestAcceptDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate lines fold into one destination row", func(t *testing.T) {
		f := newServiceFixture(t)
		d, err := f.service.CreateDispatch(ctx, f.command(f.line(3), f.line(4)))
		require.NoError(t, err)

		require.NoError(t, f.service.AcceptDispatch(ctx, f.tenantID, d.GetID(), uuid.New()))

		assert.Equal(t, "7", f.available(t, f.tenantID, f.destArea))
		dest, ok := f.scope.stock.get(f.tenantID, f.destArea, f.product.GetID(), nil)
		require.True(t, ok)
		assert.Equal(t, "5", dest.AverageCost.String())

		stored, err := f.scope.dispatches.FindByID(ctx, d.GetID())
		require.NoError(t, err)
		assert.Equal(t, dispatch.DispatchStatusAccepted, stored.Status)
	})

	t.Run("cross-tenant acceptance materializes the product once", func(t *testing.T) {
		f := newServiceFixture(t)
		destTenant := uuid.New()

		cmd := f.command(f.line(2), f.line(3))
		cmd.DestinationTenantID = &destTenant
		d, err := f.service.CreateDispatch(ctx, cmd)
		require.NoError(t, err)

		require.NoError(t, f.service.AcceptDispatch(ctx, destTenant, d.GetID(), uuid.New()))

		assert.Equal(t, 1, f.scope.products.countForTenant(destTenant))
		clone, err := f.scope.products.FindByUniversalCode(ctx, destTenant, f.product.UniversalCode)
		require.NoError(t, err)

		dest, ok := f.scope.stock.get(destTenant, f.destArea, clone.GetID(), nil)
		require.True(t, ok)
		assert.Equal(t, "5", dest.AvailableQuantity.String())
	})

	t.Run("only the destination tenant may accept", func(t *testing.T) {
		f := newServiceFixture(t)
		d, err := f.service.CreateDispatch(ctx, f.command(f.line(2)))
		require.NoError(t, err)

		err = f.service.AcceptDispatch(ctx, uuid.New(), d.GetID(), uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})
}

func TestRejectDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("same-period rejection nets the ledger and restores batches", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedBatch(t, 10)

		in := f.line(4)
		in.Batches = []BatchAllocationInput{{BatchID: batch.GetID(), Quantity: decimal.NewFromInt(4)}}
		d, err := f.service.CreateDispatch(ctx, f.command(in))
		require.NoError(t, err)

		require.NoError(t, f.service.RejectDispatch(ctx, f.tenantID, d.GetID(), uuid.New()))

		assert.Equal(t, "10", f.available(t, f.tenantID, f.sourceArea))

		removed := f.scope.movements.byOperation(inventory.OperationRemoved)
		require.Len(t, removed, 1)
		originals := f.scope.movements.byOperation(inventory.OperationMovement)
		require.Len(t, originals, 1)
		require.NotNil(t, removed[0].ReversalOfID)
		assert.Equal(t, originals[0].GetID(), *removed[0].ReversalOfID)

		stored, err := f.scope.batches.FindByID(ctx, batch.GetID())
		require.NoError(t, err)
		assert.Equal(t, "10", stored.AvailableQuantity.String())
	})

	t.Run("rejection after a period rollover writes fresh entries", func(t *testing.T) {
		f := newServiceFixture(t)
		batch := f.seedBatch(t, 10)

		in := f.line(4)
		in.Batches = []BatchAllocationInput{{BatchID: batch.GetID(), Quantity: decimal.NewFromInt(4)}}
		d, err := f.service.CreateDispatch(ctx, f.command(in))
		require.NoError(t, err)

		rolledOver := inventory.AccountingPeriod{ID: uuid.New(), StartsAt: time.Now()}
		f.periods.current = rolledOver

		require.NoError(t, f.service.RejectDispatch(ctx, f.tenantID, d.GetID(), uuid.New()))

		assert.Equal(t, "10", f.available(t, f.tenantID, f.sourceArea))
		assert.Empty(t, f.scope.movements.byOperation(inventory.OperationRemoved))

		entries := f.scope.movements.byOperation(inventory.OperationEntry)
		require.Len(t, entries, 1)
		assert.Equal(t, "4", entries[0].Quantity.String())
		assert.Equal(t, rolledOver.ID, entries[0].AccountingPeriodID)

		stored, err := f.scope.batches.FindByID(ctx, batch.GetID())
		require.NoError(t, err)
		assert.Equal(t, "10", stored.AvailableQuantity.String())
	})

	t.Run("a closed parent order only detaches the link", func(t *testing.T) {
		f := newServiceFixture(t)
		d, err := f.service.CreateDispatch(ctx, f.command(f.line(4)))
		require.NoError(t, err)

		orderID := uuid.New()
		stored := f.scope.dispatches.dispatches[d.GetID()]
		stored.OrderID = &orderID
		f.orders.closed[orderID] = true

		require.NoError(t, f.service.RejectDispatch(ctx, f.tenantID, d.GetID(), uuid.New()))

		assert.Equal(t, dispatch.DispatchStatusRejected, stored.Status)
		assert.Nil(t, stored.OrderID)
		assert.Equal(t, "6", f.available(t, f.tenantID, f.sourceArea))
		assert.Len(t, f.scope.movements.movements, 1)
	})

	t.Run("a terminal dispatch cannot be rejected again", func(t *testing.T) {
		f := newServiceFixture(t)
		d, err := f.service.CreateDispatch(ctx, f.command(f.line(2)))
		require.NoError(t, err)

		require.NoError(t, f.service.RejectDispatch(ctx, f.tenantID, d.GetID(), uuid.New()))
		err = f.service.RejectDispatch(ctx, f.tenantID, d.GetID(), uuid.New())
		require.Error(t, err)
		assert.Equal(t, shared.KindConflict, shared.KindOf(err))
	})
}
