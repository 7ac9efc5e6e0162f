package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// Event types for inventory
const (
	EventTypeAverageCostChanged = "inventory.average_cost_changed"
	EventTypeStockEntered       = "inventory.stock_entered"
	EventTypeStockWithdrawn     = "inventory.stock_withdrawn"
	EventTypeStockRestored      = "inventory.stock_restored"
	EventTypeMovementReversed   = "inventory.movement_reversed"
)

// AverageCostChangedEvent is emitted when receiving stock shifts the moving
// weighted average cost of an area-product row
type AverageCostChangedEvent struct {
	shared.BaseDomainEvent
	AreaID      uuid.UUID       `json:"area_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariationID *uuid.UUID      `json:"variation_id,omitempty"`
	OldAverage  decimal.Decimal `json:"old_average"`
	NewAverage  decimal.Decimal `json:"new_average"`
}

// NewAverageCostChangedEvent creates a new AverageCostChangedEvent
func NewAverageCostChangedEvent(item *StockItem, oldAvg, newAvg decimal.Decimal) *AverageCostChangedEvent {
	return &AverageCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAverageCostChanged, "StockItem", item.GetID(), item.TenantID),
		AreaID:          item.AreaID,
		ProductID:       item.ProductID,
		VariationID:     item.VariationID,
		OldAverage:      oldAvg,
		NewAverage:      newAvg,
	}
}

// StockEnteredEvent is emitted when a ledger ENTRY movement is recorded
type StockEnteredEvent struct {
	shared.BaseDomainEvent
	AreaID    uuid.UUID       `json:"area_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// NewStockEnteredEvent creates a new StockEnteredEvent
func NewStockEnteredEvent(m *StockMovement) *StockEnteredEvent {
	return &StockEnteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockEntered, "StockMovement", m.GetID(), m.TenantID),
		AreaID:          m.AreaID,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
	}
}

// StockWithdrawnEvent is emitted when a ledger MOVEMENT takes stock out of an area
type StockWithdrawnEvent struct {
	shared.BaseDomainEvent
	AreaID    uuid.UUID       `json:"area_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// NewStockWithdrawnEvent creates a new StockWithdrawnEvent
func NewStockWithdrawnEvent(m *StockMovement) *StockWithdrawnEvent {
	return &StockWithdrawnEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockWithdrawn, "StockMovement", m.GetID(), m.TenantID),
		AreaID:          m.AreaID,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
	}
}

// MovementReversedEvent is emitted when a REMOVED entry reverses an earlier movement
type MovementReversedEvent struct {
	shared.BaseDomainEvent
	ReversedMovementID uuid.UUID `json:"reversed_movement_id"`
}

// NewMovementReversedEvent creates a new MovementReversedEvent
func NewMovementReversedEvent(reversal *StockMovement, reversedID uuid.UUID) *MovementReversedEvent {
	return &MovementReversedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeMovementReversed, "StockMovement", reversal.GetID(), reversal.TenantID),
		ReversedMovementID: reversedID,
	}
}
