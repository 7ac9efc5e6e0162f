package receipt

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// GoodsReceiptRepository defines the interface for goods receipt persistence
type GoodsReceiptRepository interface {
	// Save persists a receipt with its fixed costs, operations and documents
	Save(ctx context.Context, r *GoodsReceipt) error
	// FindByID retrieves a receipt by ID with its associations loaded
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceipt, error)
	// FindByIDForUpdate retrieves a receipt with a row-level write lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*GoodsReceipt, error)
	// FindByTenant retrieves receipts for a tenant with pagination
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*GoodsReceipt], error)
	// NextOperationNumber atomically increments and returns the tenant-year
	// counter used to number receipts
	NextOperationNumber(ctx context.Context, tenantID uuid.UUID, year int) (int, error)
	// Delete removes a receipt and its owned rows
	Delete(ctx context.Context, id uuid.UUID) error
}
