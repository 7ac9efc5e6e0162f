package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// StockItem tracks availability of one product (optionally one variation)
// inside one storage area. It carries the moving weighted-average unit cost
// for the product in that area and is the row the dispatch flow locks
// FOR UPDATE to serialize concurrent acceptances.
type StockItem struct {
	shared.TenantAggregateRoot
	AreaID            uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_area_product,priority:2"`
	ProductID         uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_area_product,priority:3"`
	VariationID       *uuid.UUID           `gorm:"type:uuid;uniqueIndex:idx_stock_item_area_product,priority:4"`
	AvailableQuantity decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AverageCost       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"` // Moving weighted average per unit
	CostCurrency      valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a stock row for an area-product combination
func NewStockItem(tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID, costCurrency valueobject.Currency) (*StockItem, error) {
	if areaID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_AREA", "Area ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if costCurrency == "" {
		costCurrency = valueobject.DefaultCurrency
	}

	return &StockItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AreaID:              areaID,
		ProductID:           productID,
		VariationID:         variationID,
		AvailableQuantity:   decimal.Zero,
		AverageCost:         decimal.Zero,
		CostCurrency:        costCurrency,
	}, nil
}

// Receive adds quantity and folds the incoming unit cost into the moving
// weighted average:
//
//	newAvg = (oldAvg*oldQty + unitCost*qty) / (oldQty + qty)
//
// rounded to MoneyPrecision. When the row holds no stock yet, or carries no
// cost yet, the average bootstraps directly to the incoming cost.
func (i *StockItem) Receive(quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewValidationError("INVALID_COST", "Unit cost cannot be negative")
	}

	oldAvg := i.AverageCost
	oldQty := i.AvailableQuantity

	if oldQty.LessThanOrEqual(decimal.Zero) || oldAvg.IsZero() {
		i.AverageCost = unitCost
	} else {
		totalValue := oldQty.Mul(oldAvg).Add(quantity.Mul(unitCost))
		i.AverageCost = totalValue.Div(oldQty.Add(quantity)).Round(valueobject.MoneyPrecision)
	}

	i.AvailableQuantity = i.AvailableQuantity.Add(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	if !oldAvg.Equal(i.AverageCost) {
		i.AddDomainEvent(NewAverageCostChangedEvent(i, oldAvg, i.AverageCost))
	}

	return nil
}

// Withdraw removes quantity; fails with an insufficiency error when the area
// does not hold enough
func (i *StockItem) Withdraw(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if i.AvailableQuantity.LessThan(quantity) {
		return shared.NewInsufficiencyError("INSUFFICIENT_STOCK",
			"Insufficient stock: requested "+quantity.String()+", available "+i.AvailableQuantity.String())
	}

	i.AvailableQuantity = i.AvailableQuantity.Sub(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// Restore adds quantity back without touching the average cost. Used when a
// rejected dispatch returns stock whose value already lives in this area's
// average.
func (i *StockItem) Restore(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}

	i.AvailableQuantity = i.AvailableQuantity.Add(quantity)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// CanFulfill returns true if the available quantity covers the request
func (i *StockItem) CanFulfill(quantity decimal.Decimal) bool {
	return i.AvailableQuantity.GreaterThanOrEqual(quantity)
}

// AverageCostMoney returns the average cost as a Money value
func (i *StockItem) AverageCostMoney() valueobject.Money {
	return valueobject.MustMoney(i.AverageCost, i.CostCurrency)
}

// TotalValue returns available quantity times average cost
func (i *StockItem) TotalValue() valueobject.Money {
	return valueobject.MustMoney(i.AvailableQuantity.Mul(i.AverageCost), i.CostCurrency)
}
