package costing

import (
	"context"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
)

// TransactionScope provides transactional access to the repositories the
// recalculation handler needs. All repository operations inside Execute share
// one database transaction and commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories within a transaction
type TransactionalRepositories interface {
	// ReceiptRepo returns the goods receipt repository scoped to the current transaction
	ReceiptRepo() receipt.GoodsReceiptRepository
	// BatchRepo returns the stock batch repository scoped to the current transaction
	BatchRepo() inventory.StockBatchRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful for testing.
type NoOpTransactionScope struct {
	receiptRepo receipt.GoodsReceiptRepository
	batchRepo   inventory.StockBatchRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	receiptRepo receipt.GoodsReceiptRepository,
	batchRepo inventory.StockBatchRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{receiptRepo: receiptRepo, batchRepo: batchRepo}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ReceiptRepo returns the goods receipt repository
func (s *NoOpTransactionScope) ReceiptRepo() receipt.GoodsReceiptRepository {
	return s.receiptRepo
}

// BatchRepo returns the stock batch repository
func (s *NoOpTransactionScope) BatchRepo() inventory.StockBatchRepository {
	return s.batchRepo
}
