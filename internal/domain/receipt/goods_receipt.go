package receipt

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// ReceiptStatus represents the lifecycle state of a goods receipt
type ReceiptStatus string

const (
	ReceiptStatusCreated    ReceiptStatus = "CREATED"
	ReceiptStatusDispatched ReceiptStatus = "DISPATCHED"
	ReceiptStatusConfirmed  ReceiptStatus = "CONFIRMED"
	ReceiptStatusCancelled  ReceiptStatus = "CANCELLED"
)

// GoodsReceipt is one purchase transaction: a group of stock batches plus the
// indirect costs attributed to them. It owns the cost-allocation algorithm and
// the per-tenant-per-year operation number used on printed documents.
//
// Once the receipt is DISPATCHED or CANCELLED its batches and fixed costs are
// frozen; edit operations fail with a conflict error.
type GoodsReceipt struct {
	shared.TenantAggregateRoot
	Status          ReceiptStatus `gorm:"type:varchar(20);not null;default:'CREATED'"`
	OperationNumber int           `gorm:"not null;uniqueIndex:idx_receipt_tenant_year_number,priority:3"`
	Year            int           `gorm:"not null;uniqueIndex:idx_receipt_tenant_year_number,priority:2"`
	AreaID          uuid.UUID     `gorm:"type:uuid;not null;index"` // Destination storage area
	SupplierID      *uuid.UUID    `gorm:"type:uuid;index"`
	FundingAccountID *uuid.UUID   `gorm:"type:uuid;index"`
	DebitedAt       *time.Time
	DispatchID      *uuid.UUID `gorm:"type:uuid;index"` // Set exactly once by dispatch generation
	TotalCostAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCostCurrency valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	Note            string `gorm:"type:varchar(1000)"`

	FixedCosts []FixedCost `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	Operations []Operation `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	Documents  []Document  `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (GoodsReceipt) TableName() string {
	return "goods_receipts"
}

// NewGoodsReceipt creates a receipt in CREATED state. The operation number is
// assigned by the repository from the tenant-year counter.
func NewGoodsReceipt(tenantID, areaID uuid.UUID, operationNumber int, createdBy uuid.UUID) (*GoodsReceipt, error) {
	if areaID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_AREA", "Destination area is required")
	}
	if operationNumber <= 0 {
		return nil, shared.NewValidationError("INVALID_OPERATION_NUMBER", "Operation number must be positive")
	}

	r := &GoodsReceipt{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Status:              ReceiptStatusCreated,
		OperationNumber:     operationNumber,
		Year:                time.Now().Year(),
		AreaID:              areaID,
		TotalCostAmount:     decimal.Zero,
		TotalCostCurrency:   valueobject.DefaultCurrency,
	}
	r.AddDomainEvent(NewReceiptCreatedEvent(r))
	return r, nil
}

// ensureMutable fails when the receipt has been dispatched or cancelled
func (r *GoodsReceipt) ensureMutable() error {
	if r.Status == ReceiptStatusDispatched || r.Status == ReceiptStatusCancelled {
		return shared.NewConflictError("RECEIPT_IMMUTABLE",
			fmt.Sprintf("Receipt %d/%d is %s and can no longer be modified", r.OperationNumber, r.Year, r.Status))
	}
	return nil
}

// CanModify reports whether batches and fixed costs may still be edited
func (r *GoodsReceipt) CanModify() bool {
	return r.ensureMutable() == nil
}

// AddFixedCost attaches an indirect cost line
func (r *GoodsReceipt) AddFixedCost(cost *FixedCost) error {
	if err := r.ensureMutable(); err != nil {
		return err
	}
	cost.ReceiptID = r.GetID()
	r.FixedCosts = append(r.FixedCosts, *cost)
	r.IncrementVersion()
	return nil
}

// RemoveFixedCost detaches an indirect cost line by ID
func (r *GoodsReceipt) RemoveFixedCost(costID uuid.UUID) error {
	if err := r.ensureMutable(); err != nil {
		return err
	}
	for i, c := range r.FixedCosts {
		if c.GetID() == costID {
			r.FixedCosts = append(r.FixedCosts[:i], r.FixedCosts[i+1:]...)
			r.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// AllocateCosts runs the cost-allocation algorithm over the receipt's batches:
//
//  1. Each batch's registered price, exchanged into the cost currency, becomes
//     its gross cost.
//  2. All fixed costs, exchanged likewise, are summed and spread evenly per
//     unit across all batches: perUnit = totalIndirect / totalUnits.
//  3. Each batch's net cost = gross + perUnit; the receipt total is the sum of
//     entryQuantity x netCost over all batches.
//
// When the receipt holds no units the per-unit share is zero. The algorithm is
// idempotent: re-running it on unchanged inputs writes identical costs.
func (r *GoodsReceipt) AllocateCosts(batches []*inventory.StockBatch, costCurrency valueobject.Currency, rates valueobject.RateTable) error {
	totalIndirect := valueobject.Zero(costCurrency)
	for _, fc := range r.FixedCosts {
		converted, err := valueobject.Exchange(fc.RegisteredPrice(), costCurrency, rates)
		if err != nil {
			return shared.NewIntegrityError("MISSING_RATE", err.Error())
		}
		totalIndirect = totalIndirect.MustAdd(converted)
	}

	totalUnits := decimal.Zero
	for _, b := range batches {
		totalUnits = totalUnits.Add(b.EntryQuantity)
	}

	perUnit := valueobject.Zero(costCurrency)
	if totalUnits.IsPositive() {
		divided, err := totalIndirect.Divide(totalUnits)
		if err != nil {
			return err
		}
		perUnit = divided.Rounded()
	}

	total := valueobject.Zero(costCurrency)
	for _, b := range batches {
		gross, err := valueobject.Exchange(b.RegisteredPrice(), costCurrency, rates)
		if err != nil {
			return shared.NewIntegrityError("MISSING_RATE", err.Error())
		}
		gross = gross.Rounded()
		net := gross.MustAdd(perUnit).Rounded()
		b.SetCosts(gross, net)
		total = total.MustAdd(net.Multiply(b.EntryQuantity))
	}

	total = total.Rounded()
	r.TotalCostAmount = total.Amount()
	r.TotalCostCurrency = total.Currency()
	r.IncrementVersion()
	return nil
}

// TotalCost returns the receipt total as a Money value
func (r *GoodsReceipt) TotalCost() valueobject.Money {
	return valueobject.MustMoney(r.TotalCostAmount, r.TotalCostCurrency)
}

// RecordDebit marks the receipt as debited against a funding account. A
// debited receipt can no longer be cancelled.
func (r *GoodsReceipt) RecordDebit(accountID uuid.UUID) error {
	if r.Status == ReceiptStatusCancelled {
		return shared.NewConflictError("RECEIPT_CANCELLED", "Cannot debit a cancelled receipt")
	}
	if r.DebitedAt != nil {
		return shared.NewConflictError("ALREADY_DEBITED",
			fmt.Sprintf("Receipt %d/%d was already debited", r.OperationNumber, r.Year))
	}
	now := time.Now()
	r.FundingAccountID = &accountID
	r.DebitedAt = &now
	r.IncrementVersion()
	r.AddDomainEvent(NewReceiptDebitedEvent(r, accountID))
	return nil
}

// IsDebited returns true once a funding account has been debited
func (r *GoodsReceipt) IsDebited() bool {
	return r.DebitedAt != nil
}

// MarkDispatched links the generated dispatch. A receipt is transformed into a
// dispatch exactly once.
func (r *GoodsReceipt) MarkDispatched(dispatchID uuid.UUID) error {
	if r.Status == ReceiptStatusCancelled {
		return shared.NewConflictError("RECEIPT_CANCELLED", "Cannot dispatch a cancelled receipt")
	}
	if r.DispatchID != nil {
		return shared.NewConflictError("ALREADY_DISPATCHED",
			fmt.Sprintf("Receipt %d/%d already generated a dispatch", r.OperationNumber, r.Year))
	}
	r.DispatchID = &dispatchID
	r.Status = ReceiptStatusDispatched
	r.IncrementVersion()
	r.AddDomainEvent(NewReceiptDispatchedEvent(r, dispatchID))
	return nil
}

// Confirm marks the receipt as confirmed after its dispatch was accepted
func (r *GoodsReceipt) Confirm() error {
	if r.Status != ReceiptStatusDispatched {
		return shared.NewConflictError("INVALID_STATE",
			fmt.Sprintf("Receipt %d/%d is %s, only dispatched receipts can be confirmed", r.OperationNumber, r.Year, r.Status))
	}
	r.Status = ReceiptStatusConfirmed
	r.IncrementVersion()
	return nil
}

// Cancel voids the receipt. Fails once a dispatch exists or a funding account
// was debited; reversing a debit requires a manual correction.
func (r *GoodsReceipt) Cancel() error {
	if r.Status == ReceiptStatusCancelled {
		return shared.NewConflictError("ALREADY_CANCELLED",
			fmt.Sprintf("Receipt %d/%d is already cancelled", r.OperationNumber, r.Year))
	}
	if r.DispatchID != nil {
		return shared.NewConflictError("RECEIPT_DISPATCHED",
			fmt.Sprintf("Receipt %d/%d already generated a dispatch and cannot be cancelled", r.OperationNumber, r.Year))
	}
	if r.DebitedAt != nil {
		return shared.NewConflictError("RECEIPT_DEBITED",
			fmt.Sprintf("Receipt %d/%d debited a funding account; correct the account manually before cancelling", r.OperationNumber, r.Year))
	}
	r.Status = ReceiptStatusCancelled
	r.IncrementVersion()
	r.AddDomainEvent(NewReceiptCancelledEvent(r))
	return nil
}

// AppendNote adds an audit log entry to the receipt
func (r *GoodsReceipt) AppendNote(userID uuid.UUID, text string) error {
	if text == "" {
		return shared.NewValidationError("EMPTY_NOTE", "Note text cannot be empty")
	}
	op := NewOperation(r.GetID(), userID, text)
	r.Operations = append(r.Operations, *op)
	return nil
}

// AttachDocument links an uploaded document to the receipt
func (r *GoodsReceipt) AttachDocument(doc *Document) {
	doc.ReceiptID = r.GetID()
	r.Documents = append(r.Documents, *doc)
}

// Reference returns the printable operation reference, e.g. "42/2026"
func (r *GoodsReceipt) Reference() string {
	return fmt.Sprintf("%d/%d", r.OperationNumber, r.Year)
}
