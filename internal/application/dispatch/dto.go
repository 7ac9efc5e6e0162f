package dispatch

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/dispatch"
)

// BatchAllocationInput pins a line quantity to a specific source batch
type BatchAllocationInput struct {
	BatchID  uuid.UUID       `json:"batch_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// DispatchLineInput is one product line of a dispatch creation request
type DispatchLineInput struct {
	ProductID   uuid.UUID              `json:"product_id" binding:"required"`
	VariationID *uuid.UUID             `json:"variation_id"`
	Quantity    decimal.Decimal        `json:"quantity" binding:"required"`
	Batches     []BatchAllocationInput `json:"batches" binding:"dive"`
}

// CreateDispatchCommand creates a dispatch and strictly decrements source stock
type CreateDispatchCommand struct {
	TenantID            uuid.UUID             `json:"-"`
	CreatedBy           uuid.UUID             `json:"-"`
	Mode                dispatch.DispatchMode `json:"mode"`
	SourceAreaID        uuid.UUID             `json:"source_area_id" binding:"required"`
	DestinationAreaID   uuid.UUID             `json:"destination_area_id" binding:"required"`
	DestinationTenantID *uuid.UUID            `json:"destination_tenant_id"`
	Note                string                `json:"note" binding:"max=1000"`
	Lines               []DispatchLineInput   `json:"lines" binding:"required,min=1,dive"`
}
