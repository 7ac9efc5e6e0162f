package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// Save persists a product (create or update)
	Save(ctx context.Context, product *Product) error
	// FindByID retrieves a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDForUpdate retrieves a product with a row-level write lock;
	// concurrent flows mutating or cloning the product serialize on it
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByUniversalCode retrieves a tenant's product by universal code
	FindByUniversalCode(ctx context.Context, tenantID uuid.UUID, code string) (*Product, error)
	// FindByTenant retrieves products for a tenant with pagination
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Product], error)
}
