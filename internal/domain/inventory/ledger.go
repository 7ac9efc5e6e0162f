package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// LedgerLine is one requested stock change: positive quantity enters stock,
// negative quantity leaves it.
type LedgerLine struct {
	Item        *StockItem
	Quantity    decimal.Decimal
	UnitCost    valueobject.Money
	DispatchID  *uuid.UUID
	ReceiptID   *uuid.UUID
	BatchID     *uuid.UUID
	Description string
}

// Ledger is the domain service that turns requested stock changes into
// immutable movement rows while mutating the affected stock items. It holds no
// state of its own; callers persist the items and movements it returns inside
// one transaction.
type Ledger struct{}

// NewLedger creates a new Ledger service
func NewLedger() *Ledger {
	return &Ledger{}
}

// Apply executes a single line: adjusts the stock item and returns the
// movement row recording the change.
func (l *Ledger) Apply(periodID uuid.UUID, line LedgerLine) (*StockMovement, error) {
	if line.Item == nil {
		return nil, shared.NewValidationError("INVALID_LINE", "Ledger line has no stock item")
	}

	var operation MovementOperation
	if line.Quantity.IsPositive() {
		operation = OperationEntry
		if err := line.Item.Receive(line.Quantity, line.UnitCost.Amount()); err != nil {
			return nil, err
		}
	} else {
		operation = OperationMovement
		if err := line.Item.Withdraw(line.Quantity.Abs()); err != nil {
			return nil, err
		}
	}

	movement, err := NewStockMovement(
		line.Item.TenantID,
		line.Item.AreaID,
		line.Item.ProductID,
		line.Item.VariationID,
		operation,
		line.Quantity,
		line.UnitCost,
		periodID,
	)
	if err != nil {
		return nil, err
	}

	movement.DispatchID = line.DispatchID
	movement.ReceiptID = line.ReceiptID
	movement.BatchID = line.BatchID
	movement.Description = line.Description

	if operation == OperationEntry {
		line.Item.AddDomainEvent(NewStockEnteredEvent(movement))
	} else {
		line.Item.AddDomainEvent(NewStockWithdrawnEvent(movement))
	}

	return movement, nil
}

// ApplyStrict executes all lines or none. Validation runs over every line
// before any item is mutated, so a failure on line three leaves lines one and
// two untouched. The error names the line that failed.
func (l *Ledger) ApplyStrict(periodID uuid.UUID, lines []LedgerLine) ([]*StockMovement, error) {
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_LINES", "No ledger lines to apply")
	}

	// Pre-flight: check every withdrawal against available stock. Quantities
	// per item are summed because several lines may draw from the same row.
	required := make(map[uuid.UUID]decimal.Decimal)
	for idx, line := range lines {
		if line.Item == nil {
			return nil, shared.NewValidationError("INVALID_LINE",
				fmt.Sprintf("Line %d has no stock item", idx+1))
		}
		if line.Quantity.IsZero() {
			return nil, shared.NewValidationError("INVALID_LINE",
				fmt.Sprintf("Line %d has zero quantity", idx+1))
		}
		if line.Quantity.IsNegative() {
			id := line.Item.GetID()
			required[id] = required[id].Add(line.Quantity.Abs())
		}
	}
	for idx, line := range lines {
		if line.Quantity.IsNegative() {
			need := required[line.Item.GetID()]
			if line.Item.AvailableQuantity.LessThan(need) {
				return nil, shared.NewInsufficiencyError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Line %d: product %s in area %s holds %s, requested %s",
						idx+1, line.Item.ProductID, line.Item.AreaID,
						line.Item.AvailableQuantity.String(), need.String()))
			}
		}
	}

	movements := make([]*StockMovement, 0, len(lines))
	for idx, line := range lines {
		movement, err := l.Apply(periodID, line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", idx+1, err)
		}
		movements = append(movements, movement)
	}
	return movements, nil
}

// Reverse produces a REMOVED row compensating the given movement and restores
// the affected stock item. Used when a correction lands in the same accounting
// period as the original movement.
func (l *Ledger) Reverse(item *StockItem, original *StockMovement, description string) (*StockMovement, error) {
	switch original.Operation {
	case OperationMovement:
		// Reversing an outbound movement puts the quantity back.
		if err := item.Restore(original.Quantity.Abs()); err != nil {
			return nil, err
		}
	case OperationEntry:
		if err := item.Withdraw(original.Quantity); err != nil {
			return nil, err
		}
	}

	reversal, err := NewReversalMovement(original, description)
	if err != nil {
		return nil, err
	}

	item.AddDomainEvent(NewMovementReversedEvent(reversal, original.GetID()))
	return reversal, nil
}
