package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/dispatch"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDispatchRepository implements DispatchRepository using GORM
type GormDispatchRepository struct {
	db *gorm.DB
}

// NewGormDispatchRepository creates a new GormDispatchRepository
func NewGormDispatchRepository(db *gorm.DB) *GormDispatchRepository {
	return &GormDispatchRepository{db: db}
}

// Save persists a dispatch with its lines and batch allocations
func (r *GormDispatchRepository) Save(ctx context.Context, d *dispatch.Dispatch) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(d).Error
}

// FindByID finds a dispatch by ID with its lines loaded
func (r *GormDispatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*dispatch.Dispatch, error) {
	var d dispatch.Dispatch
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.BatchAllocations").
		First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindByIDForUpdate finds a dispatch with a row-level write lock, serializing
// concurrent accept/reject attempts
func (r *GormDispatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*dispatch.Dispatch, error) {
	var d dispatch.Dispatch
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	// Lines are loaded after the lock is taken.
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.BatchAllocations").
		First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByReceipt finds the dispatch generated from a goods receipt
func (r *GormDispatchRepository) FindByReceipt(ctx context.Context, receiptID uuid.UUID) (*dispatch.Dispatch, error) {
	var d dispatch.Dispatch
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&d, "receipt_id = ?", receiptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// FindOutgoing finds dispatches created by a tenant
func (r *GormDispatchRepository) FindOutgoing(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*dispatch.Dispatch], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&dispatch.Dispatch{}).
		Where("tenant_id = ?", tenantID), filter)
}

// FindIncoming finds dispatches targeting a tenant
func (r *GormDispatchRepository) FindIncoming(ctx context.Context, destinationTenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*dispatch.Dispatch], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&dispatch.Dispatch{}).
		Where("destination_tenant_id = ?", destinationTenantID), filter)
}

func (r *GormDispatchRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*dispatch.Dispatch], error) {
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var dispatches []*dispatch.Dispatch
	if err := query.
		Preload("Lines").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&dispatches).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(dispatches, total, filter.Page, filter.PageSize), nil
}
