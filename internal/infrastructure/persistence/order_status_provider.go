package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderStatusProvider answers parent-order status questions from the order
// tables owned by the sales and production modules. Only the status column is
// read; an unknown order counts as closed so no automatic reversal happens
// against it.
type GormOrderStatusProvider struct {
	db *gorm.DB
}

// NewGormOrderStatusProvider creates a new GormOrderStatusProvider
func NewGormOrderStatusProvider(db *gorm.DB) *GormOrderStatusProvider {
	return &GormOrderStatusProvider{db: db}
}

// IsOrderClosed reports whether a sales order is closed
func (p *GormOrderStatusProvider) IsOrderClosed(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return p.isClosed(ctx, "sales_orders", orderID)
}

// IsProductionOrderClosed reports whether a production order is closed
func (p *GormOrderStatusProvider) IsProductionOrderClosed(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return p.isClosed(ctx, "production_orders", orderID)
}

func (p *GormOrderStatusProvider) isClosed(ctx context.Context, table string, orderID uuid.UUID) (bool, error) {
	var status string
	err := p.db.WithContext(ctx).
		Table(table).
		Select("status").
		Where("id = ?", orderID).
		Take(&status).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return status == "CLOSED" || status == "CANCELLED", nil
}
