package receipt

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
)

// Event types for goods receipts
const (
	EventTypeReceiptCreated    = "receipt.created"
	EventTypeReceiptDebited    = "receipt.debited"
	EventTypeReceiptDispatched = "receipt.dispatched"
	EventTypeReceiptCancelled  = "receipt.cancelled"
	EventTypeCostsRecalculated = "receipt.costs_recalculated"
)

// ReceiptCreatedEvent is emitted when a goods receipt is created
type ReceiptCreatedEvent struct {
	shared.BaseDomainEvent
	OperationNumber int       `json:"operation_number"`
	Year            int       `json:"year"`
	AreaID          uuid.UUID `json:"area_id"`
}

// NewReceiptCreatedEvent creates a new ReceiptCreatedEvent
func NewReceiptCreatedEvent(r *GoodsReceipt) *ReceiptCreatedEvent {
	return &ReceiptCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptCreated, "GoodsReceipt", r.GetID(), r.TenantID),
		OperationNumber: r.OperationNumber,
		Year:            r.Year,
		AreaID:          r.AreaID,
	}
}

// ReceiptDebitedEvent is emitted when a receipt debits a funding account
type ReceiptDebitedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// NewReceiptDebitedEvent creates a new ReceiptDebitedEvent
func NewReceiptDebitedEvent(r *GoodsReceipt, accountID uuid.UUID) *ReceiptDebitedEvent {
	return &ReceiptDebitedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptDebited, "GoodsReceipt", r.GetID(), r.TenantID),
		AccountID:       accountID,
		Amount:          r.TotalCostAmount,
	}
}

// ReceiptDispatchedEvent is emitted when a receipt generates its dispatch
type ReceiptDispatchedEvent struct {
	shared.BaseDomainEvent
	DispatchID uuid.UUID `json:"dispatch_id"`
}

// NewReceiptDispatchedEvent creates a new ReceiptDispatchedEvent
func NewReceiptDispatchedEvent(r *GoodsReceipt, dispatchID uuid.UUID) *ReceiptDispatchedEvent {
	return &ReceiptDispatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptDispatched, "GoodsReceipt", r.GetID(), r.TenantID),
		DispatchID:      dispatchID,
	}
}

// ReceiptCancelledEvent is emitted when a receipt is voided
type ReceiptCancelledEvent struct {
	shared.BaseDomainEvent
	OperationNumber int `json:"operation_number"`
	Year            int `json:"year"`
}

// NewReceiptCancelledEvent creates a new ReceiptCancelledEvent
func NewReceiptCancelledEvent(r *GoodsReceipt) *ReceiptCancelledEvent {
	return &ReceiptCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptCancelled, "GoodsReceipt", r.GetID(), r.TenantID),
		OperationNumber: r.OperationNumber,
		Year:            r.Year,
	}
}

// CostsRecalculatedEvent is emitted after the recalculation worker rewrites
// batch costs and the receipt total
type CostsRecalculatedEvent struct {
	shared.BaseDomainEvent
	TotalCost decimal.Decimal `json:"total_cost"`
}

// NewCostsRecalculatedEvent creates a new CostsRecalculatedEvent
func NewCostsRecalculatedEvent(r *GoodsReceipt) *CostsRecalculatedEvent {
	return &CostsRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCostsRecalculated, "GoodsReceipt", r.GetID(), r.TenantID),
		TotalCost:       r.TotalCostAmount,
	}
}
