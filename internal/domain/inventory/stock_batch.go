package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
	"gorm.io/gorm"
)

// StockBatch is a discrete lot of a product received into stock, either
// through a goods receipt or a standalone stock entry. Each batch carries
// three cost facets:
//
//	RegisteredPrice - the purchase price as registered, in its own currency
//	GrossCost       - the registered price converted to the cost currency
//	NetCost         - the gross cost plus the allocated share of indirect costs
//
// Money fields are independently owned values; mutating one batch's cost never
// touches another's.
type StockBatch struct {
	shared.BaseEntity
	TenantID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	AreaID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariationID       *uuid.UUID      `gorm:"type:uuid;index"`
	ReceiptID         *uuid.UUID      `gorm:"type:uuid;index"` // Owning goods receipt, if any
	SupplierID        *uuid.UUID      `gorm:"type:uuid;index"`
	LotCode           string          `gorm:"type:varchar(100);not null"`
	EntryQuantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AvailableQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExpirationDate    *time.Time
	UnitsPerPackage   int `gorm:"not null;default:1"`

	RegisteredAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	RegisteredCurrency valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	GrossAmount        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	GrossCurrency      valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	NetAmount          decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	NetCurrency        valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`

	DeletedAt gorm.DeletedAt `gorm:"index"` // Soft delete when removed from an un-dispatched receipt
}

// TableName returns the table name for GORM
func (StockBatch) TableName() string {
	return "stock_batches"
}

// NewStockBatch creates a new batch. Entry and available quantity start equal.
func NewStockBatch(
	tenantID, areaID, productID uuid.UUID,
	variationID *uuid.UUID,
	lotCode string,
	entryQuantity decimal.Decimal,
	registeredPrice valueobject.Money,
) (*StockBatch, error) {
	if lotCode == "" {
		return nil, shared.NewValidationError("INVALID_LOT_CODE", "Lot code cannot be empty")
	}
	if areaID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_AREA", "Area ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if entryQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Entry quantity must be positive")
	}
	if registeredPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Registered price cannot be negative")
	}

	return &StockBatch{
		BaseEntity:         shared.NewBaseEntity(),
		TenantID:           tenantID,
		AreaID:             areaID,
		ProductID:          productID,
		VariationID:        variationID,
		LotCode:            lotCode,
		EntryQuantity:      entryQuantity,
		AvailableQuantity:  entryQuantity,
		UnitsPerPackage:    1,
		RegisteredAmount:   registeredPrice.Amount(),
		RegisteredCurrency: registeredPrice.Currency(),
		GrossAmount:        registeredPrice.Amount(),
		GrossCurrency:      registeredPrice.Currency(),
		NetAmount:          registeredPrice.Amount(),
		NetCurrency:        registeredPrice.Currency(),
	}, nil
}

// AttachToReceipt links the batch to its owning goods receipt
func (b *StockBatch) AttachToReceipt(receiptID uuid.UUID) {
	b.ReceiptID = &receiptID
	b.Touch()
}

// RegisteredPrice returns the purchase price as registered
func (b *StockBatch) RegisteredPrice() valueobject.Money {
	return valueobject.MustMoney(b.RegisteredAmount, b.RegisteredCurrency)
}

// GrossCost returns the registered price converted to the cost currency
func (b *StockBatch) GrossCost() valueobject.Money {
	return valueobject.MustMoney(b.GrossAmount, b.GrossCurrency)
}

// NetCost returns the per-unit cost after indirect cost allocation
func (b *StockBatch) NetCost() valueobject.Money {
	return valueobject.MustMoney(b.NetAmount, b.NetCurrency)
}

// SetRegisteredPrice replaces the registered purchase price
func (b *StockBatch) SetRegisteredPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Registered price cannot be negative")
	}
	b.RegisteredAmount = price.Amount()
	b.RegisteredCurrency = price.Currency()
	b.Touch()
	return nil
}

// SetCosts writes the gross and net cost computed by cost allocation
func (b *StockBatch) SetCosts(gross, net valueobject.Money) {
	b.GrossAmount = gross.Amount()
	b.GrossCurrency = gross.Currency()
	b.NetAmount = net.Amount()
	b.NetCurrency = net.Currency()
	b.Touch()
}

// UpdateEntryQuantity changes the entry quantity, shifting the available
// quantity by the same delta so consumption already recorded is preserved.
// The available <= entry invariant is enforced.
func (b *StockBatch) UpdateEntryQuantity(entryQuantity decimal.Decimal) error {
	if entryQuantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "Entry quantity must be positive")
	}

	delta := entryQuantity.Sub(b.EntryQuantity)
	newAvailable := b.AvailableQuantity.Add(delta)
	if newAvailable.IsNegative() {
		return shared.NewValidationError("INVALID_QUANTITY",
			"Cannot reduce entry quantity below already consumed quantity")
	}

	b.EntryQuantity = entryQuantity
	b.AvailableQuantity = newAvailable
	b.Touch()
	return nil
}

// Consume reduces the available quantity
func (b *StockBatch) Consume(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if b.AvailableQuantity.LessThan(quantity) {
		return shared.NewInsufficiencyError("INSUFFICIENT_STOCK",
			"Batch "+b.LotCode+" holds "+b.AvailableQuantity.String()+", requested "+quantity.String())
	}

	b.AvailableQuantity = b.AvailableQuantity.Sub(quantity)
	b.Touch()
	return nil
}

// Restore adds quantity back to the batch, capped by the entry quantity
func (b *StockBatch) Restore(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	newAvailable := b.AvailableQuantity.Add(quantity)
	if newAvailable.GreaterThan(b.EntryQuantity) {
		return shared.NewValidationError("INVALID_QUANTITY",
			"Available quantity cannot exceed entry quantity")
	}

	b.AvailableQuantity = newAvailable
	b.Touch()
	return nil
}

// SetExpirationDate sets the expiration date
func (b *StockBatch) SetExpirationDate(date *time.Time) {
	b.ExpirationDate = date
	b.Touch()
}

// SetUnitsPerPackage sets the unit count per package
func (b *StockBatch) SetUnitsPerPackage(units int) error {
	if units <= 0 {
		return shared.NewValidationError("INVALID_UNITS", "Units per package must be positive")
	}
	b.UnitsPerPackage = units
	b.Touch()
	return nil
}

// IsExpired returns true if the batch has expired
func (b *StockBatch) IsExpired() bool {
	if b.ExpirationDate == nil {
		return false
	}
	return b.ExpirationDate.Before(time.Now())
}

// HasStock returns true if the batch has available quantity
func (b *StockBatch) HasStock() bool {
	return b.AvailableQuantity.GreaterThan(decimal.Zero)
}

// TotalNetValue returns entry quantity times net cost
func (b *StockBatch) TotalNetValue() valueobject.Money {
	return valueobject.MustMoney(b.EntryQuantity.Mul(b.NetAmount), b.NetCurrency)
}
