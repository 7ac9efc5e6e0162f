package dispatch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// DispatchStatus represents the state of a dispatch
type DispatchStatus string

const (
	DispatchStatusCreated  DispatchStatus = "CREATED"
	DispatchStatusAccepted DispatchStatus = "ACCEPTED"
	DispatchStatusRejected DispatchStatus = "REJECTED"
	DispatchStatusBilled   DispatchStatus = "BILLED"
)

// DispatchMode distinguishes plain stock movements from sales transfers
type DispatchMode string

const (
	DispatchModeMovement DispatchMode = "MOVEMENT"
	DispatchModeSale     DispatchMode = "SALE"
)

// Dispatch is a directed stock transfer between two storage areas, possibly
// across tenant boundaries. The sender creates it; the receiver accepts or
// rejects it. ACCEPTED, REJECTED and BILLED are terminal: once reached, every
// further transition fails with a conflict naming who already acted.
type Dispatch struct {
	shared.TenantAggregateRoot
	Status              DispatchStatus `gorm:"type:varchar(20);not null;default:'CREATED'"`
	Mode                DispatchMode   `gorm:"type:varchar(20);not null;default:'MOVEMENT'"`
	SourceAreaID        *uuid.UUID     `gorm:"type:uuid;index"` // Nil for inbound-only dispatches
	DestinationAreaID   uuid.UUID      `gorm:"type:uuid;not null;index"`
	DestinationTenantID uuid.UUID      `gorm:"type:uuid;not null;index"`
	AccountingPeriodID  uuid.UUID      `gorm:"type:uuid;not null"` // Period in force at creation
	ReceiptID           *uuid.UUID     `gorm:"type:uuid;index"`    // Goods receipt this dispatch was generated from
	OrderID             *uuid.UUID     `gorm:"type:uuid;index"`
	ProductionOrderID   *uuid.UUID     `gorm:"type:uuid;index"`
	AcceptedBy          *uuid.UUID     `gorm:"type:uuid"`
	AcceptedAt          *time.Time
	RejectedBy          *uuid.UUID `gorm:"type:uuid"`
	RejectedAt          *time.Time
	BilledAt            *time.Time
	Note                string `gorm:"type:varchar(1000)"`

	Lines []DispatchLine `gorm:"foreignKey:DispatchID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Dispatch) TableName() string {
	return "dispatches"
}

// NewDispatch creates a dispatch in CREATED state. Source and destination must
// differ when a source area is given.
func NewDispatch(
	tenantID uuid.UUID,
	mode DispatchMode,
	sourceAreaID *uuid.UUID,
	destinationAreaID, destinationTenantID uuid.UUID,
	periodID uuid.UUID,
	createdBy uuid.UUID,
) (*Dispatch, error) {
	if destinationAreaID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_AREA", "Destination area is required")
	}
	if destinationTenantID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_TENANT", "Destination tenant is required")
	}
	if sourceAreaID != nil && *sourceAreaID == destinationAreaID {
		return nil, shared.NewValidationError("SAME_AREA",
			"A dispatch cannot target the area it originates from")
	}
	if periodID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PERIOD", "Accounting period is required")
	}
	if mode != DispatchModeMovement && mode != DispatchModeSale {
		return nil, shared.NewValidationError("INVALID_MODE", "Unknown dispatch mode: "+string(mode))
	}

	d := &Dispatch{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, createdBy),
		Status:              DispatchStatusCreated,
		Mode:                mode,
		SourceAreaID:        sourceAreaID,
		DestinationAreaID:   destinationAreaID,
		DestinationTenantID: destinationTenantID,
		AccountingPeriodID:  periodID,
	}
	d.AddDomainEvent(NewDispatchCreatedEvent(d))
	return d, nil
}

// AddLine attaches a product line. Only allowed while the dispatch is open.
func (d *Dispatch) AddLine(line *DispatchLine) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	line.DispatchID = d.GetID()
	d.Lines = append(d.Lines, *line)
	return nil
}

// ensureOpen fails with a conflict naming the prior actor when the dispatch
// has reached a terminal state
func (d *Dispatch) ensureOpen() error {
	switch d.Status {
	case DispatchStatusCreated:
		return nil
	case DispatchStatusAccepted:
		return shared.NewConflictError("DISPATCH_ACCEPTED",
			fmt.Sprintf("Dispatch was already accepted by user %s at %s",
				actorString(d.AcceptedBy), timeString(d.AcceptedAt)))
	case DispatchStatusRejected:
		return shared.NewConflictError("DISPATCH_REJECTED",
			fmt.Sprintf("Dispatch was already rejected by user %s at %s",
				actorString(d.RejectedBy), timeString(d.RejectedAt)))
	case DispatchStatusBilled:
		return shared.NewConflictError("DISPATCH_BILLED",
			fmt.Sprintf("Dispatch was already billed at %s", timeString(d.BilledAt)))
	default:
		return shared.NewConflictError("INVALID_STATE", "Dispatch is in unknown state "+string(d.Status))
	}
}

// IsTerminal returns true once the dispatch can no longer change state
func (d *Dispatch) IsTerminal() bool {
	return d.Status != DispatchStatusCreated
}

// Accept transitions the dispatch to ACCEPTED, recording who accepted and when
func (d *Dispatch) Accept(userID uuid.UUID) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	now := time.Now()
	d.Status = DispatchStatusAccepted
	d.AcceptedBy = &userID
	d.AcceptedAt = &now
	d.IncrementVersion()
	d.AddDomainEvent(NewDispatchAcceptedEvent(d, userID))
	return nil
}

// Reject transitions the dispatch to REJECTED, recording who rejected and when
func (d *Dispatch) Reject(userID uuid.UUID) error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	now := time.Now()
	d.Status = DispatchStatusRejected
	d.RejectedBy = &userID
	d.RejectedAt = &now
	d.IncrementVersion()
	d.AddDomainEvent(NewDispatchRejectedEvent(d, userID))
	return nil
}

// Bill transitions the dispatch to BILLED via the external billing transform
func (d *Dispatch) Bill() error {
	if err := d.ensureOpen(); err != nil {
		return err
	}
	now := time.Now()
	d.Status = DispatchStatusBilled
	d.BilledAt = &now
	d.IncrementVersion()
	return nil
}

// DetachParent clears the order links when a rejection cannot touch stock
// because the parent order is already closed
func (d *Dispatch) DetachParent() {
	d.OrderID = nil
	d.ProductionOrderID = nil
	d.IncrementVersion()
}

// HasParent returns true if the dispatch belongs to an order or
// production order whose closure blocks automatic stock reversal
func (d *Dispatch) HasParent() bool {
	return d.OrderID != nil || d.ProductionOrderID != nil
}

// IsCrossTenant returns true when source and destination tenants differ
func (d *Dispatch) IsCrossTenant() bool {
	return d.DestinationTenantID != d.TenantID
}

func actorString(id *uuid.UUID) string {
	if id == nil {
		return "unknown"
	}
	return id.String()
}

func timeString(t *time.Time) string {
	if t == nil {
		return "unknown time"
	}
	return t.Format(time.RFC3339)
}
