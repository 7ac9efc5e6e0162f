package persistence

import (
	"context"

	"github.com/wms/backend/internal/application/costing"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
	"gorm.io/gorm"
)

// GormCostingTransactionScope implements the costing TransactionScope using
// GORM transactions.
type GormCostingTransactionScope struct {
	db *gorm.DB
}

// NewGormCostingTransactionScope creates a new GormCostingTransactionScope
func NewGormCostingTransactionScope(db *gorm.DB) *GormCostingTransactionScope {
	return &GormCostingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormCostingTransactionScope) Execute(ctx context.Context, fn func(repos costing.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormCostingRepositories{tx: tx}
		return fn(repos)
	})
}

type gormCostingRepositories struct {
	tx *gorm.DB
}

func (r *gormCostingRepositories) ReceiptRepo() receipt.GoodsReceiptRepository {
	return NewGormGoodsReceiptRepository(r.tx)
}

func (r *gormCostingRepositories) BatchRepo() inventory.StockBatchRepository {
	return NewGormStockBatchRepository(r.tx)
}

// Ensure GormCostingTransactionScope implements TransactionScope
var _ costing.TransactionScope = (*GormCostingTransactionScope)(nil)

// Ensure gormCostingRepositories implements TransactionalRepositories
var _ costing.TransactionalRepositories = (*gormCostingRepositories)(nil)
