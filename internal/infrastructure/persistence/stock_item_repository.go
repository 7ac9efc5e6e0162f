package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockItemRepository implements StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// Save persists a stock item (create or update)
func (r *GormStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindByID finds a stock item by its ID
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByAreaAndProduct finds the row for an area-product combination
func (r *GormStockItemRepository) FindByAreaAndProduct(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.areaProductQuery(ctx, tenantID, areaID, productID, variationID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindForUpdate finds the row for an area-product combination with a
// row-level write lock
func (r *GormStockItemRepository) FindForUpdate(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.areaProductQuery(ctx, tenantID, areaID, productID, variationID).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetOrCreate returns the row for an area-product combination, creating a
// zero-quantity row if none exists. The new row is locked so the caller can
// mutate it safely.
func (r *GormStockItemRepository) GetOrCreate(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*inventory.StockItem, error) {
	item, err := r.FindForUpdate(ctx, tenantID, areaID, productID, variationID)
	if err == nil {
		return item, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	created, err := inventory.NewStockItem(tenantID, areaID, productID, variationID, valueobject.DefaultCurrency)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		return nil, err
	}
	return created, nil
}

// FindByArea finds all stock rows in an area with pagination
func (r *GormStockItemRepository) FindByArea(ctx context.Context, tenantID, areaID uuid.UUID, filter shared.Filter) (*shared.Paginated[*inventory.StockItem], error) {
	query := r.db.WithContext(ctx).Model(&inventory.StockItem{}).
		Where("tenant_id = ? AND area_id = ?", tenantID, areaID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var items []*inventory.StockItem
	if err := query.
		Order("product_id").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// FindByProduct finds stock rows for a product across areas
func (r *GormStockItemRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]*inventory.StockItem, error) {
	var items []*inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormStockItemRepository) areaProductQuery(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND area_id = ? AND product_id = ?", tenantID, areaID, productID)
	if variationID != nil {
		return query.Where("variation_id = ?", *variationID)
	}
	return query.Where("variation_id IS NULL")
}
