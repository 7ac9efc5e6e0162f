package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// operationCounter backs the per-tenant-per-year receipt numbering. The row is
// locked while incrementing so concurrent creations never share a number.
type operationCounter struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Year     int       `gorm:"primaryKey"`
	Value    int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (operationCounter) TableName() string {
	return "receipt_operation_counters"
}

// GormGoodsReceiptRepository implements GoodsReceiptRepository using GORM
type GormGoodsReceiptRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceiptRepository creates a new GormGoodsReceiptRepository
func NewGormGoodsReceiptRepository(db *gorm.DB) *GormGoodsReceiptRepository {
	return &GormGoodsReceiptRepository{db: db}
}

// Save persists a receipt with its fixed costs, operations and documents
func (r *GormGoodsReceiptRepository) Save(ctx context.Context, rec *receipt.GoodsReceipt) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(rec).Error
}

// FindByID finds a receipt by ID with its associations loaded
func (r *GormGoodsReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*receipt.GoodsReceipt, error) {
	var rec receipt.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Preload("FixedCosts").
		Preload("Operations").
		Preload("Documents").
		First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FindByIDForUpdate finds a receipt with a row-level write lock
func (r *GormGoodsReceiptRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*receipt.GoodsReceipt, error) {
	var rec receipt.GoodsReceipt
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	// Associations are loaded after the lock is taken.
	if err := r.db.WithContext(ctx).
		Preload("FixedCosts").
		Preload("Operations").
		Preload("Documents").
		First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// FindByTenant finds receipts for a tenant with pagination
func (r *GormGoodsReceiptRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*receipt.GoodsReceipt], error) {
	query := r.db.WithContext(ctx).Model(&receipt.GoodsReceipt{}).
		Where("tenant_id = ?", tenantID)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var receipts []*receipt.GoodsReceipt
	if err := query.
		Preload("FixedCosts").
		Order("year DESC, operation_number DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(receipts, total, filter.Page, filter.PageSize), nil
}

// NextOperationNumber atomically increments and returns the tenant-year counter
func (r *GormGoodsReceiptRepository) NextOperationNumber(ctx context.Context, tenantID uuid.UUID, year int) (int, error) {
	var counter operationCounter
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND year = ?", tenantID, year).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = operationCounter{TenantID: tenantID, Year: year, Value: 1}
		if err := r.db.WithContext(ctx).Create(&counter).Error; err != nil {
			return 0, err
		}
		return counter.Value, nil
	}
	if err != nil {
		return 0, err
	}

	counter.Value++
	if err := r.db.WithContext(ctx).Save(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Value, nil
}

// Delete removes a receipt and its owned rows
func (r *GormGoodsReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Select(clause.Associations).Delete(&receipt.GoodsReceipt{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
