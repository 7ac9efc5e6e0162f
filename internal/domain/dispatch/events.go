package dispatch

import (
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// Event types for dispatches. These names are also the notification codes
// delivered to the socket dispatcher after commit.
const (
	EventTypeDispatchCreated  = "NEW_DISPATCH"
	EventTypeDispatchAccepted = "ACCEPT_DISPATCH"
	EventTypeDispatchRejected = "REJECT_DISPATCH"
	EventTypeNotifyUser       = "NOTIFY_USER"
)

// DispatchCreatedEvent notifies the destination tenant of an incoming dispatch
type DispatchCreatedEvent struct {
	shared.BaseDomainEvent
	DestinationTenantID uuid.UUID `json:"destination_tenant_id"`
	DestinationAreaID   uuid.UUID `json:"destination_area_id"`
	LineCount           int       `json:"line_count"`
}

// NewDispatchCreatedEvent creates a new DispatchCreatedEvent
func NewDispatchCreatedEvent(d *Dispatch) *DispatchCreatedEvent {
	return &DispatchCreatedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeDispatchCreated, "Dispatch", d.GetID(), d.TenantID),
		DestinationTenantID: d.DestinationTenantID,
		DestinationAreaID:   d.DestinationAreaID,
		LineCount:           len(d.Lines),
	}
}

// DispatchAcceptedEvent notifies the sender that the dispatch was accepted
type DispatchAcceptedEvent struct {
	shared.BaseDomainEvent
	AcceptedBy uuid.UUID `json:"accepted_by"`
}

// NewDispatchAcceptedEvent creates a new DispatchAcceptedEvent
func NewDispatchAcceptedEvent(d *Dispatch, userID uuid.UUID) *DispatchAcceptedEvent {
	return &DispatchAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDispatchAccepted, "Dispatch", d.GetID(), d.TenantID),
		AcceptedBy:      userID,
	}
}

// DispatchRejectedEvent notifies the sender that the dispatch was rejected
type DispatchRejectedEvent struct {
	shared.BaseDomainEvent
	RejectedBy uuid.UUID `json:"rejected_by"`
}

// NewDispatchRejectedEvent creates a new DispatchRejectedEvent
func NewDispatchRejectedEvent(d *Dispatch, userID uuid.UUID) *DispatchRejectedEvent {
	return &DispatchRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDispatchRejected, "Dispatch", d.GetID(), d.TenantID),
		RejectedBy:      userID,
	}
}
