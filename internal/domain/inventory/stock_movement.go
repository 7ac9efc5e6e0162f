package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// MovementOperation classifies a stock movement
type MovementOperation string

const (
	// OperationEntry records stock arriving into an area (receipt confirmation,
	// standalone entry, rejection rollover into a new period)
	OperationEntry MovementOperation = "ENTRY"
	// OperationMovement records stock leaving an area towards a dispatch
	OperationMovement MovementOperation = "MOVEMENT"
	// OperationRemoved reverses an earlier movement within the same accounting period
	OperationRemoved MovementOperation = "REMOVED"
)

// StockMovement is one immutable line of the append-only stock ledger. Existing
// rows are never edited: corrections are expressed as new compensating rows
// linked through ReversalOfID. Each row snapshots the unit cost in force at the
// time it was written, so ledger history survives later cost recalculations.
type StockMovement struct {
	shared.BaseEntity
	TenantID           uuid.UUID            `gorm:"type:uuid;not null;index:idx_movement_tenant_period"`
	AreaID             uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	VariationID        *uuid.UUID           `gorm:"type:uuid;index"`
	Operation          MovementOperation    `gorm:"type:varchar(20);not null"`
	Quantity           decimal.Decimal      `gorm:"type:decimal(18,4);not null"` // Signed: positive ENTRY, negative MOVEMENT
	UnitCostAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCostCurrency   valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	AccountingPeriodID uuid.UUID            `gorm:"type:uuid;not null;index:idx_movement_tenant_period"`
	DispatchID         *uuid.UUID           `gorm:"type:uuid;index"`
	ReceiptID          *uuid.UUID           `gorm:"type:uuid;index"`
	BatchID            *uuid.UUID           `gorm:"type:uuid;index"`
	ReversalOfID       *uuid.UUID           `gorm:"type:uuid;index"` // Movement this row reverses, REMOVED only
	Description        string               `gorm:"type:varchar(500)"`
	RecordedAt         time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a ledger row. The quantity sign must match the
// operation: ENTRY adds stock, MOVEMENT removes it.
func NewStockMovement(
	tenantID, areaID, productID uuid.UUID,
	variationID *uuid.UUID,
	operation MovementOperation,
	quantity decimal.Decimal,
	unitCost valueobject.Money,
	periodID uuid.UUID,
) (*StockMovement, error) {
	if quantity.IsZero() {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Movement quantity cannot be zero")
	}
	if periodID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PERIOD", "Accounting period is required")
	}

	switch operation {
	case OperationEntry:
		if quantity.IsNegative() {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Entry quantity must be positive")
		}
	case OperationMovement:
		if quantity.IsPositive() {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Movement quantity must be negative")
		}
	case OperationRemoved:
		// Sign mirrors the movement it reverses; validated in LinkReversal.
	default:
		return nil, shared.NewValidationError("INVALID_OPERATION", "Unknown movement operation: "+string(operation))
	}

	return &StockMovement{
		BaseEntity:         shared.NewBaseEntity(),
		TenantID:           tenantID,
		AreaID:             areaID,
		ProductID:          productID,
		VariationID:        variationID,
		Operation:          operation,
		Quantity:           quantity,
		UnitCostAmount:     unitCost.Amount(),
		UnitCostCurrency:   unitCost.Currency(),
		AccountingPeriodID: periodID,
		RecordedAt:         time.Now(),
	}, nil
}

// NewReversalMovement builds a REMOVED row that compensates the given movement.
// The reversal negates the original quantity, reuses its cost snapshot, and is
// linked back through ReversalOfID.
func NewReversalMovement(original *StockMovement, description string) (*StockMovement, error) {
	if original.Operation == OperationRemoved {
		return nil, shared.NewConflictError("ALREADY_REVERSAL",
			"Cannot reverse a reversal movement")
	}

	originalID := original.GetID()
	reversal := &StockMovement{
		BaseEntity:         shared.NewBaseEntity(),
		TenantID:           original.TenantID,
		AreaID:             original.AreaID,
		ProductID:          original.ProductID,
		VariationID:        original.VariationID,
		Operation:          OperationRemoved,
		Quantity:           original.Quantity.Neg(),
		UnitCostAmount:     original.UnitCostAmount,
		UnitCostCurrency:   original.UnitCostCurrency,
		AccountingPeriodID: original.AccountingPeriodID,
		DispatchID:         original.DispatchID,
		ReceiptID:          original.ReceiptID,
		BatchID:            original.BatchID,
		ReversalOfID:       &originalID,
		Description:        description,
		RecordedAt:         time.Now(),
	}
	return reversal, nil
}

// LinkDispatch attaches the dispatch this movement belongs to
func (m *StockMovement) LinkDispatch(dispatchID uuid.UUID) {
	m.DispatchID = &dispatchID
}

// LinkReceipt attaches the goods receipt this movement belongs to
func (m *StockMovement) LinkReceipt(receiptID uuid.UUID) {
	m.ReceiptID = &receiptID
}

// LinkBatch attaches the stock batch this movement drew from or created
func (m *StockMovement) LinkBatch(batchID uuid.UUID) {
	m.BatchID = &batchID
}

// IsReversal returns true if this row reverses an earlier movement
func (m *StockMovement) IsReversal() bool {
	return m.Operation == OperationRemoved && m.ReversalOfID != nil
}

// UnitCost returns the cost snapshot taken when the row was written
func (m *StockMovement) UnitCost() valueobject.Money {
	return valueobject.MustMoney(m.UnitCostAmount, m.UnitCostCurrency)
}

// TotalValue returns the absolute quantity times the unit cost snapshot
func (m *StockMovement) TotalValue() valueobject.Money {
	return valueobject.MustMoney(m.Quantity.Abs().Mul(m.UnitCostAmount), m.UnitCostCurrency)
}
