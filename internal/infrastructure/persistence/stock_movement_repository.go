package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM.
// The ledger is append-only: there is no update or delete path.
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Save appends a ledger row
func (r *GormStockMovementRepository) Save(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// SaveAll appends multiple ledger rows
func (r *GormStockMovementRepository) SaveAll(ctx context.Context, movements []*inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// FindByID finds a movement by its ID
func (r *GormStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	var movement inventory.StockMovement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindByDispatch finds all movements linked to a dispatch
func (r *GormStockMovementRepository) FindByDispatch(ctx context.Context, dispatchID uuid.UUID) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("dispatch_id = ?", dispatchID).
		Order("recorded_at").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByReceipt finds all movements linked to a goods receipt
func (r *GormStockMovementRepository) FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("recorded_at").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByProduct finds movements for a product, newest first, with pagination
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[*inventory.StockMovement], error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var movements []*inventory.StockMovement
	if err := query.
		Order("recorded_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(movements, total, filter.Page, filter.PageSize), nil
}

// SumByProductAndArea nets all ledger rows for a product in an area
func (r *GormStockMovementRepository) SumByProductAndArea(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
		Where("tenant_id = ? AND area_id = ? AND product_id = ?", tenantID, areaID, productID)
	if variationID != nil {
		query = query.Where("variation_id = ?", *variationID)
	} else {
		query = query.Where("variation_id IS NULL")
	}

	var sum decimal.NullDecimal
	if err := query.Select("COALESCE(SUM(quantity), 0)").Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// FindByPeriod finds movements stamped with an accounting period
func (r *GormStockMovementRepository) FindByPeriod(ctx context.Context, tenantID, periodID uuid.UUID, since time.Time) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND accounting_period_id = ? AND recorded_at >= ?", tenantID, periodID, since).
		Order("recorded_at").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
