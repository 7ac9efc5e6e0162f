package dispatch

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// DispatchRepository defines the interface for dispatch persistence
type DispatchRepository interface {
	// Save persists a dispatch with its lines and batch allocations
	Save(ctx context.Context, d *Dispatch) error
	// FindByID retrieves a dispatch by ID with its lines loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Dispatch, error)
	// FindByIDForUpdate retrieves a dispatch with a row-level write lock,
	// serializing concurrent accept/reject attempts
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Dispatch, error)
	// FindByReceipt retrieves the dispatch generated from a goods receipt
	FindByReceipt(ctx context.Context, receiptID uuid.UUID) (*Dispatch, error)
	// FindOutgoing retrieves dispatches created by a tenant
	FindOutgoing(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Dispatch], error)
	// FindIncoming retrieves dispatches targeting a tenant
	FindIncoming(ctx context.Context, destinationTenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Dispatch], error)
}
