package persistence

import (
	"context"

	appdispatch "github.com/wms/backend/internal/application/dispatch"
	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/dispatch"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/event"
	"gorm.io/gorm"
)

// GormDispatchTransactionScope implements the dispatch TransactionScope using
// GORM transactions.
type GormDispatchTransactionScope struct {
	db *gorm.DB
}

// NewGormDispatchTransactionScope creates a new GormDispatchTransactionScope
func NewGormDispatchTransactionScope(db *gorm.DB) *GormDispatchTransactionScope {
	return &GormDispatchTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormDispatchTransactionScope) Execute(ctx context.Context, fn func(repos appdispatch.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormDispatchRepositories{tx: tx}
		return fn(repos)
	})
}

type gormDispatchRepositories struct {
	tx *gorm.DB
}

func (r *gormDispatchRepositories) DispatchRepo() dispatch.DispatchRepository {
	return NewGormDispatchRepository(r.tx)
}

func (r *gormDispatchRepositories) StockItemRepo() inventory.StockItemRepository {
	return NewGormStockItemRepository(r.tx)
}

func (r *gormDispatchRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormDispatchRepositories) BatchRepo() inventory.StockBatchRepository {
	return NewGormStockBatchRepository(r.tx)
}

func (r *gormDispatchRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormDispatchRepositories) ReceiptRepo() receipt.GoodsReceiptRepository {
	return NewGormGoodsReceiptRepository(r.tx)
}

func (r *gormDispatchRepositories) OutboxRepo() shared.OutboxRepository {
	return event.NewGormOutboxRepository(r.tx)
}

// Ensure GormDispatchTransactionScope implements TransactionScope
var _ appdispatch.TransactionScope = (*GormDispatchTransactionScope)(nil)

// Ensure gormDispatchRepositories implements TransactionalRepositories
var _ appdispatch.TransactionalRepositories = (*gormDispatchRepositories)(nil)
