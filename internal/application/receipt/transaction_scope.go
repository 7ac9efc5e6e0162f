package receipt

import (
	"context"

	"github.com/wms/backend/internal/application/costing"
	"github.com/wms/backend/internal/domain/catalog"
	dispatchdomain "github.com/wms/backend/internal/domain/dispatch"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to the repositories the
// receipt workflow touches. All repository operations inside Execute share one
// database transaction and are committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories within a
// transaction. Queue and OutboxRepo write through the same transaction so
// jobs and notifications become visible only when the business change commits.
type TransactionalRepositories interface {
	// ReceiptRepo returns the goods receipt repository scoped to the current transaction
	ReceiptRepo() receipt.GoodsReceiptRepository
	// BatchRepo returns the stock batch repository scoped to the current transaction
	BatchRepo() inventory.StockBatchRepository
	// StockItemRepo returns the stock item repository scoped to the current transaction
	StockItemRepo() inventory.StockItemRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() inventory.StockMovementRepository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// DispatchRepo returns the dispatch repository scoped to the current transaction
	DispatchRepo() dispatchdomain.DispatchRepository
	// Queue returns the job queue scoped to the current transaction
	Queue() costing.Queue
	// OutboxRepo returns the notification outbox scoped to the current transaction
	OutboxRepo() shared.OutboxRepository
}
