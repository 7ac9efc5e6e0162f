package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockBatchRepository implements StockBatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// Save persists a stock batch (create or update)
func (r *GormStockBatchRepository) Save(ctx context.Context, batch *inventory.StockBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// SaveAll persists multiple batches
func (r *GormStockBatchRepository) SaveAll(ctx context.Context, batches []*inventory.StockBatch) error {
	if len(batches) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Save(batches).Error
}

// FindByID finds a batch by its ID
func (r *GormStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	var batch inventory.StockBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByReceipt finds all batches belonging to a goods receipt
func (r *GormStockBatchRepository) FindByReceipt(ctx context.Context, receiptID uuid.UUID) ([]*inventory.StockBatch, error) {
	var batches []*inventory.StockBatch
	if err := r.db.WithContext(ctx).
		Where("receipt_id = ?", receiptID).
		Order("created_at").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAvailableByProduct finds batches with stock for a product in an area,
// oldest first
func (r *GormStockBatchRepository) FindAvailableByProduct(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) ([]*inventory.StockBatch, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND area_id = ? AND product_id = ? AND available_quantity > 0", tenantID, areaID, productID)
	if variationID != nil {
		query = query.Where("variation_id = ?", *variationID)
	} else {
		query = query.Where("variation_id IS NULL")
	}

	var batches []*inventory.StockBatch
	if err := query.Order("created_at").Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Delete soft-deletes a batch
func (r *GormStockBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.StockBatch{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
