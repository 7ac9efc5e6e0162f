package receipt

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// MoneyInput is the wire shape of a monetary amount
type MoneyInput struct {
	Amount   decimal.Decimal      `json:"amount" binding:"required"`
	Currency valueobject.Currency `json:"currency" binding:"required,currency"`
}

// ToMoney converts the input into a Money value
func (m MoneyInput) ToMoney() (valueobject.Money, error) {
	return valueobject.NewMoney(m.Amount, m.Currency)
}

// BatchInput is one batch line of a receipt creation request
type BatchInput struct {
	ProductID       uuid.UUID       `json:"product_id" binding:"required"`
	VariationID     *uuid.UUID      `json:"variation_id"`
	LotCode         string          `json:"lot_code" binding:"required,max=100"`
	Quantity        decimal.Decimal `json:"quantity" binding:"required"`
	RegisteredPrice MoneyInput      `json:"registered_price" binding:"required"`
	ExpirationDate  *time.Time      `json:"expiration_date"`
	UnitsPerPackage int             `json:"units_per_package"`
}

// FixedCostInput is one indirect cost line of a receipt creation request
type FixedCostInput struct {
	Category receipt.FixedCostCategory `json:"category"`
	Price    MoneyInput                `json:"price" binding:"required"`
	Note     string                    `json:"note" binding:"max=500"`
}

// CreateReceiptCommand creates a goods receipt with its initial batches and costs
type CreateReceiptCommand struct {
	TenantID         uuid.UUID        `json:"-"`
	CreatedBy        uuid.UUID        `json:"-"`
	AreaID           uuid.UUID        `json:"area_id" binding:"required"`
	SupplierID       *uuid.UUID       `json:"supplier_id"`
	FundingAccountID *uuid.UUID       `json:"funding_account_id"`
	Note             string           `json:"note" binding:"max=1000"`
	Batches          []BatchInput     `json:"batches" binding:"required,min=1,dive"`
	FixedCosts       []FixedCostInput `json:"fixed_costs" binding:"dive"`
}

// BatchUpdate is the allow-listed set of batch fields that may be edited.
// Nil pointers leave the field unchanged; unknown fields are rejected at the
// binding boundary.
type BatchUpdate struct {
	EntryQuantity   *decimal.Decimal `json:"entry_quantity"`
	RegisteredPrice *MoneyInput      `json:"registered_price"`
	ExpirationDate  *time.Time       `json:"expiration_date"`
	UnitsPerPackage *int             `json:"units_per_package"`
}

// IsEmpty returns true when no field is set
func (u BatchUpdate) IsEmpty() bool {
	return u.EntryQuantity == nil && u.RegisteredPrice == nil &&
		u.ExpirationDate == nil && u.UnitsPerPackage == nil
}

// FixedCostUpdate is the allow-listed set of fixed cost fields that may be edited
type FixedCostUpdate struct {
	Category *receipt.FixedCostCategory `json:"category"`
	Price    *MoneyInput                `json:"price"`
	Note     *string                    `json:"note"`
}

// IsEmpty returns true when no field is set
func (u FixedCostUpdate) IsEmpty() bool {
	return u.Category == nil && u.Price == nil && u.Note == nil
}

// GenerateDispatchCommand transforms a receipt into a dispatch
type GenerateDispatchCommand struct {
	TenantID            uuid.UUID  `json:"-"`
	UserID              uuid.UUID  `json:"-"`
	ReceiptID           uuid.UUID  `json:"-"`
	DestinationAreaID   uuid.UUID  `json:"destination_area_id" binding:"required"`
	DestinationTenantID *uuid.UUID `json:"destination_tenant_id"`
}

// AttachDocumentCommand attaches an uploaded file to a receipt
type AttachDocumentCommand struct {
	TenantID    uuid.UUID
	UserID      uuid.UUID
	ReceiptID   uuid.UUID
	FileName    string
	ContentType string
	Content     []byte
}
