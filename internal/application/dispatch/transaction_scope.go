package dispatch

import (
	"context"

	"github.com/wms/backend/internal/domain/catalog"
	"github.com/wms/backend/internal/domain/dispatch"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to the repositories the
// dispatch workflow touches. All repository operations inside Execute share
// one database transaction and are committed or rolled back atomically: a
// dispatch either fully moves stock and records costs, or nothing happens.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories within a transaction
type TransactionalRepositories interface {
	// DispatchRepo returns the dispatch repository scoped to the current transaction
	DispatchRepo() dispatch.DispatchRepository
	// StockItemRepo returns the stock item repository scoped to the current transaction
	StockItemRepo() inventory.StockItemRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() inventory.StockMovementRepository
	// BatchRepo returns the stock batch repository scoped to the current transaction
	BatchRepo() inventory.StockBatchRepository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// ReceiptRepo returns the goods receipt repository scoped to the current transaction
	ReceiptRepo() receipt.GoodsReceiptRepository
	// OutboxRepo returns the notification outbox scoped to the current transaction
	OutboxRepo() shared.OutboxRepository
}
