package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// ProductType classifies a product
type ProductType string

const (
	// ProductTypeNormal is a simple product without variations
	ProductTypeNormal ProductType = "NORMAL"
	// ProductTypeVariable is a product sold through variations (size, color).
	// Variable products cannot be auto-materialized in a receiving tenant
	// because their variations carry tenant-specific attributes.
	ProductTypeVariable ProductType = "VARIABLE"
)

// Product is the catalog entry for goods held in stock. The UniversalCode
// identifies the same physical product across tenants; each tenant owns its
// own Product row with its own sale price.
type Product struct {
	shared.TenantAggregateRoot
	Name              string               `gorm:"type:varchar(255);not null"`
	UniversalCode     string               `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_tenant_code,priority:2"`
	Type              ProductType          `gorm:"type:varchar(20);not null;default:'NORMAL'"`
	SalePriceAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	SalePriceCurrency valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	Active            bool                 `gorm:"not null;default:true"`
	Variations        []Variation          `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Variation is a sellable variant of a VARIABLE product
type Variation struct {
	shared.BaseEntity
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`
	SKU       string    `gorm:"type:varchar(100);not null"`
	Active    bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Variation) TableName() string {
	return "product_variations"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, name, universalCode string, productType ProductType, salePrice valueobject.Money) (*Product, error) {
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	if universalCode == "" {
		return nil, shared.NewValidationError("INVALID_CODE", "Universal code cannot be empty")
	}
	if productType != ProductTypeNormal && productType != ProductTypeVariable {
		return nil, shared.NewValidationError("INVALID_TYPE", "Unknown product type: "+string(productType))
	}
	if salePrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Sale price cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		UniversalCode:       universalCode,
		Type:                productType,
		SalePriceAmount:     salePrice.Amount(),
		SalePriceCurrency:   salePrice.Currency(),
		Active:              true,
	}, nil
}

// MaterializeFor clones the product into another tenant's catalog under the
// same universal code. Only NORMAL products can be materialized.
func (p *Product) MaterializeFor(tenantID uuid.UUID) (*Product, error) {
	if p.Type == ProductTypeVariable {
		return nil, shared.NewValidationError("VARIABLE_PRODUCT",
			"Product "+p.UniversalCode+" has variations and must be created manually in the receiving tenant")
	}

	clone, err := NewProduct(tenantID, p.Name, p.UniversalCode, p.Type,
		valueobject.MustMoney(p.SalePriceAmount, p.SalePriceCurrency))
	if err != nil {
		return nil, err
	}
	return clone, nil
}

// IsVariable returns true if the product is sold through variations
func (p *Product) IsVariable() bool {
	return p.Type == ProductTypeVariable
}

// SalePrice returns the sale price as a Money value
func (p *Product) SalePrice() valueobject.Money {
	return valueobject.MustMoney(p.SalePriceAmount, p.SalePriceCurrency)
}

// UpdateSalePrice replaces the sale price
func (p *Product) UpdateSalePrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Sale price cannot be negative")
	}
	p.SalePriceAmount = price.Amount()
	p.SalePriceCurrency = price.Currency()
	p.IncrementVersion()
	return nil
}

// Deactivate marks the product inactive
func (p *Product) Deactivate() {
	p.Active = false
	p.IncrementVersion()
}
