package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// StockItemRepository defines the interface for stock item persistence
type StockItemRepository interface {
	// Save persists a stock item (create or update)
	Save(ctx context.Context, item *StockItem) error
	// FindByID retrieves a stock item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)
	// FindByAreaAndProduct retrieves the row for an area-product combination
	FindByAreaAndProduct(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*StockItem, error)
	// FindForUpdate retrieves the row for an area-product combination with a
	// row-level write lock; concurrent callers serialize on it
	FindForUpdate(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*StockItem, error)
	// GetOrCreate returns the row for an area-product combination, creating a
	// zero-quantity row if none exists
	GetOrCreate(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*StockItem, error)
	// FindByArea retrieves all stock rows in an area
	FindByArea(ctx context.Context, tenantID, areaID uuid.UUID, filter shared.Filter) (*shared.Paginated[*StockItem], error)
	// FindByProduct retrieves stock rows for a product across areas
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*StockItem, error)
}

// StockBatchRepository defines the interface for stock batch persistence
type StockBatchRepository interface {
	// Save persists a stock batch (create or update)
	Save(ctx context.Context, batch *StockBatch) error
	// SaveAll persists multiple batches
	SaveAll(ctx context.Context, batches []*StockBatch) error
	// FindByID retrieves a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)
	// FindByReceipt retrieves all batches belonging to a goods receipt
	FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]*StockBatch, error)
	// FindAvailableByProduct retrieves batches with stock for a product in an
	// area, oldest first
	FindAvailableByProduct(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) ([]*StockBatch, error)
	// Delete soft-deletes a batch
	Delete(ctx context.Context, id uuid.UUID) error
}

// MovementSummary aggregates ledger rows for a product in an area
type MovementSummary struct {
	ProductID   uuid.UUID
	AreaID      uuid.UUID
	NetQuantity decimal.Decimal
}

// StockMovementRepository defines the interface for the append-only ledger.
// There is no update or delete: corrections are new compensating rows.
type StockMovementRepository interface {
	// Save appends a ledger row
	Save(ctx context.Context, movement *StockMovement) error
	// SaveAll appends multiple ledger rows
	SaveAll(ctx context.Context, movements []*StockMovement) error
	// FindByID retrieves a movement by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)
	// FindByDispatch retrieves all movements linked to a dispatch
	FindByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]*StockMovement, error)
	// FindByReceipt retrieves all movements linked to a goods receipt
	FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]*StockMovement, error)
	// FindByProduct retrieves movements for a product, newest first
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[*StockMovement], error)
	// SumByProductAndArea nets all ledger rows for a product in an area
	SumByProductAndArea(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (decimal.Decimal, error)
	// FindByPeriod retrieves movements stamped with an accounting period
	FindByPeriod(ctx context.Context, tenantID, periodID uuid.UUID, since time.Time) ([]*StockMovement, error)
}
