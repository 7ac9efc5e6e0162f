package receipt

import (
	"github.com/google/uuid"
	"github.com/wms/backend/internal/domain/shared"
)

// Document is a file attached to a goods receipt (supplier invoice, delivery
// note). The binary lives in object storage; this row holds its key.
type Document struct {
	shared.BaseEntity
	ReceiptID  uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName   string    `gorm:"type:varchar(255);not null"`
	ContentType string   `gorm:"type:varchar(100);not null"`
	StorageKey string    `gorm:"type:varchar(512);not null"`
	SizeBytes  int64     `gorm:"not null"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "receipt_documents"
}

// NewDocument creates a document record pointing at an object-storage key
func NewDocument(fileName, contentType, storageKey string, sizeBytes int64, uploadedBy uuid.UUID) (*Document, error) {
	if fileName == "" {
		return nil, shared.NewValidationError("INVALID_FILENAME", "File name cannot be empty")
	}
	if storageKey == "" {
		return nil, shared.NewValidationError("INVALID_KEY", "Storage key cannot be empty")
	}
	if sizeBytes <= 0 {
		return nil, shared.NewValidationError("INVALID_SIZE", "File size must be positive")
	}

	return &Document{
		BaseEntity:  shared.NewBaseEntity(),
		FileName:    fileName,
		ContentType: contentType,
		StorageKey:  storageKey,
		SizeBytes:   sizeBytes,
		UploadedBy:  uploadedBy,
	}, nil
}
