package persistence

import (
	"context"

	"github.com/wms/backend/internal/application/costing"
	appreceipt "github.com/wms/backend/internal/application/receipt"
	"github.com/wms/backend/internal/domain/catalog"
	dispatchdomain "github.com/wms/backend/internal/domain/dispatch"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/event"
	"github.com/wms/backend/internal/infrastructure/queue"
	"gorm.io/gorm"
)

// GormReceiptTransactionScope implements the receipt TransactionScope using
// GORM transactions. Jobs and outbox entries enqueued inside Execute commit
// with the business change.
type GormReceiptTransactionScope struct {
	db    *gorm.DB
	queue *queue.GormQueue
}

// NewGormReceiptTransactionScope creates a new GormReceiptTransactionScope
func NewGormReceiptTransactionScope(db *gorm.DB, q *queue.GormQueue) *GormReceiptTransactionScope {
	return &GormReceiptTransactionScope{db: db, queue: q}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormReceiptTransactionScope) Execute(ctx context.Context, fn func(repos appreceipt.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormReceiptRepositories{tx: tx, queue: s.queue.WithTx(tx)}
		return fn(repos)
	})
}

type gormReceiptRepositories struct {
	tx    *gorm.DB
	queue *queue.GormQueue
}

func (r *gormReceiptRepositories) ReceiptRepo() receipt.GoodsReceiptRepository {
	return NewGormGoodsReceiptRepository(r.tx)
}

func (r *gormReceiptRepositories) BatchRepo() inventory.StockBatchRepository {
	return NewGormStockBatchRepository(r.tx)
}

func (r *gormReceiptRepositories) StockItemRepo() inventory.StockItemRepository {
	return NewGormStockItemRepository(r.tx)
}

func (r *gormReceiptRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormReceiptRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormReceiptRepositories) DispatchRepo() dispatchdomain.DispatchRepository {
	return NewGormDispatchRepository(r.tx)
}

func (r *gormReceiptRepositories) Queue() costing.Queue {
	return r.queue
}

func (r *gormReceiptRepositories) OutboxRepo() shared.OutboxRepository {
	return event.NewGormOutboxRepository(r.tx)
}

// Ensure GormReceiptTransactionScope implements TransactionScope
var _ appreceipt.TransactionScope = (*GormReceiptTransactionScope)(nil)

// Ensure gormReceiptRepositories implements TransactionalRepositories
var _ appreceipt.TransactionalRepositories = (*gormReceiptRepositories)(nil)
