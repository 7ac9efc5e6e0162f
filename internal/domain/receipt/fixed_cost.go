package receipt

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// FixedCostCategory classifies an indirect cost line
type FixedCostCategory string

const (
	FixedCostFreight  FixedCostCategory = "FREIGHT"
	FixedCostCustoms  FixedCostCategory = "CUSTOMS"
	FixedCostHandling FixedCostCategory = "HANDLING"
	FixedCostOther    FixedCostCategory = "OTHER"
)

// FixedCost is an indirect cost attributed to a goods receipt but not tied to
// any specific product, e.g. freight. Its amount is spread per unit across the
// receipt's batches by cost allocation.
type FixedCost struct {
	shared.BaseEntity
	ReceiptID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Category  FixedCostCategory `gorm:"type:varchar(20);not null;default:'OTHER'"`
	Amount    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Currency  valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	Note      string            `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (FixedCost) TableName() string {
	return "receipt_fixed_costs"
}

// NewFixedCost creates an indirect cost line
func NewFixedCost(category FixedCostCategory, price valueobject.Money, note string) (*FixedCost, error) {
	if price.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Fixed cost amount cannot be negative")
	}
	if category == "" {
		category = FixedCostOther
	}

	return &FixedCost{
		BaseEntity: shared.NewBaseEntity(),
		Category:   category,
		Amount:     price.Amount(),
		Currency:   price.Currency(),
		Note:       note,
	}, nil
}

// RegisteredPrice returns the cost amount as a Money value
func (f *FixedCost) RegisteredPrice() valueobject.Money {
	return valueobject.MustMoney(f.Amount, f.Currency)
}

// UpdatePrice replaces the cost amount
func (f *FixedCost) UpdatePrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Fixed cost amount cannot be negative")
	}
	f.Amount = price.Amount()
	f.Currency = price.Currency()
	f.Touch()
	return nil
}
