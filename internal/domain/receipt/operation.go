package receipt

import (
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// Operation is one audit log line on a goods receipt recording who did what.
// Rows are append-only.
type Operation struct {
	shared.BaseEntity
	ReceiptID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	Text      string    `gorm:"type:varchar(1000);not null"`
}

// TableName returns the table name for GORM
func (Operation) TableName() string {
	return "receipt_operations"
}

// NewOperation creates an audit log line
func NewOperation(receiptID, userID uuid.UUID, text string) *Operation {
	return &Operation{
		BaseEntity: shared.NewBaseEntity(),
		ReceiptID:  receiptID,
		UserID:     userID,
		Text:       text,
	}
}
