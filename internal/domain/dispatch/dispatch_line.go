package dispatch

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// DispatchLine is one product line of a dispatch. Price is the sale value;
// cost is a snapshot of the sender's unit cost taken at dispatch time, so the
// receiver folds a stable figure into its weighted average even if the
// sender's costs are later recalculated.
type DispatchLine struct {
	shared.BaseEntity
	DispatchID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	VariationID   *uuid.UUID           `gorm:"type:uuid"`
	UniversalCode string               `gorm:"type:varchar(100);not null"` // Resolves the product in the receiving tenant
	ProductName   string               `gorm:"type:varchar(255);not null"`
	Quantity      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	PriceAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	PriceCurrency valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	CostAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	CostCurrency  valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`

	BatchAllocations []BatchAllocation `gorm:"foreignKey:LineID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (DispatchLine) TableName() string {
	return "dispatch_lines"
}

// BatchAllocation records how much of a line was drawn from a specific batch
type BatchAllocation struct {
	shared.BaseEntity
	LineID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (BatchAllocation) TableName() string {
	return "dispatch_batch_allocations"
}

// NewDispatchLine creates a product line with its price and cost snapshots
func NewDispatchLine(
	productID uuid.UUID,
	variationID *uuid.UUID,
	universalCode, productName string,
	quantity decimal.Decimal,
	price, cost valueobject.Money,
) (*DispatchLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if universalCode == "" {
		return nil, shared.NewValidationError("INVALID_CODE", "Universal code cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Line quantity must be positive")
	}
	if price.IsNegative() || cost.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Price and cost cannot be negative")
	}

	return &DispatchLine{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		VariationID:   variationID,
		UniversalCode: universalCode,
		ProductName:   productName,
		Quantity:      quantity,
		PriceAmount:   price.Amount(),
		PriceCurrency: price.Currency(),
		CostAmount:    cost.Amount(),
		CostCurrency:  cost.Currency(),
	}, nil
}

// AllocateBatch records quantity drawn from a specific batch
func (l *DispatchLine) AllocateBatch(batchID uuid.UUID, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "Allocation quantity must be positive")
	}

	allocated := decimal.Zero
	for _, a := range l.BatchAllocations {
		allocated = allocated.Add(a.Quantity)
	}
	if allocated.Add(quantity).GreaterThan(l.Quantity) {
		return shared.NewValidationError("OVER_ALLOCATED",
			"Batch allocations cannot exceed the line quantity")
	}

	l.BatchAllocations = append(l.BatchAllocations, BatchAllocation{
		BaseEntity: shared.NewBaseEntity(),
		LineID:     l.GetID(),
		BatchID:    batchID,
		Quantity:   quantity,
	})
	return nil
}

// Price returns the sale value as a Money value
func (l *DispatchLine) Price() valueobject.Money {
	return valueobject.MustMoney(l.PriceAmount, l.PriceCurrency)
}

// Cost returns the unit cost snapshot as a Money value
func (l *DispatchLine) Cost() valueobject.Money {
	return valueobject.MustMoney(l.CostAmount, l.CostCurrency)
}

// TotalCost returns quantity times unit cost
func (l *DispatchLine) TotalCost() valueobject.Money {
	return valueobject.MustMoney(l.Quantity.Mul(l.CostAmount), l.CostCurrency)
}
