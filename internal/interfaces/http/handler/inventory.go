package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// InventoryHandler handles stock API endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// StockItemResponse represents the on-hand position of one product in an area
type StockItemResponse struct {
	ID                string  `json:"id"`
	AreaID            string  `json:"area_id"`
	ProductID         string  `json:"product_id"`
	VariationID       *string `json:"variation_id,omitempty"`
	AvailableQuantity string  `json:"available_quantity"`
	AverageCost       string  `json:"average_cost"`
	TotalValue        string  `json:"total_value"`
	Currency          string  `json:"currency"`
}

// MovementResponse represents one stock ledger row
type MovementResponse struct {
	ID          string  `json:"id"`
	AreaID      string  `json:"area_id"`
	ProductID   string  `json:"product_id"`
	VariationID *string `json:"variation_id,omitempty"`
	Operation   string  `json:"operation"`
	Quantity    string  `json:"quantity"`
	UnitCost    string  `json:"unit_cost"`
	Currency    string  `json:"currency"`
	DispatchID  *string `json:"dispatch_id,omitempty"`
	ReceiptID   *string `json:"receipt_id,omitempty"`
	ReversalOf  *string `json:"reversal_of,omitempty"`
	Description string  `json:"description,omitempty"`
	RecordedAt  string  `json:"recorded_at"`
}

// BatchEntryResponse represents a stock batch created through direct entry
type BatchEntryResponse struct {
	ID                string `json:"id"`
	AreaID            string `json:"area_id"`
	ProductID         string `json:"product_id"`
	LotCode           string `json:"lot_code"`
	EntryQuantity     string `json:"entry_quantity"`
	AvailableQuantity string `json:"available_quantity"`
	CreatedAt         string `json:"created_at"`
}

func toStockItemResponse(item *inventory.StockItem) StockItemResponse {
	resp := StockItemResponse{
		ID:                item.GetID().String(),
		AreaID:            item.AreaID.String(),
		ProductID:         item.ProductID.String(),
		AvailableQuantity: item.AvailableQuantity.String(),
		AverageCost:       item.AverageCost.StringFixed(2),
		TotalValue:        item.TotalValue().Amount().StringFixed(2),
		Currency:          string(item.CostCurrency),
	}
	if item.VariationID != nil {
		s := item.VariationID.String()
		resp.VariationID = &s
	}
	return resp
}

func toMovementResponse(m *inventory.StockMovement) MovementResponse {
	resp := MovementResponse{
		ID:          m.GetID().String(),
		AreaID:      m.AreaID.String(),
		ProductID:   m.ProductID.String(),
		Operation:   string(m.Operation),
		Quantity:    m.Quantity.String(),
		UnitCost:    m.UnitCostAmount.StringFixed(2),
		Currency:    string(m.UnitCostCurrency),
		Description: m.Description,
		RecordedAt:  m.RecordedAt.Format(timeFormat),
	}
	if m.VariationID != nil {
		s := m.VariationID.String()
		resp.VariationID = &s
	}
	if m.DispatchID != nil {
		s := m.DispatchID.String()
		resp.DispatchID = &s
	}
	if m.ReceiptID != nil {
		s := m.ReceiptID.String()
		resp.ReceiptID = &s
	}
	if m.ReversalOfID != nil {
		s := m.ReversalOfID.String()
		resp.ReversalOf = &s
	}
	return resp
}

// EnterStock handles POST /api/v1/inventory/entries
func (h *InventoryHandler) EnterStock(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var cmd inventoryapp.StockEntryCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	cmd.TenantID = tenantID

	batch, err := h.inventoryService.EnterStock(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, BatchEntryResponse{
		ID:                batch.GetID().String(),
		AreaID:            batch.AreaID.String(),
		ProductID:         batch.ProductID.String(),
		LotCode:           batch.LotCode,
		EntryQuantity:     batch.EntryQuantity.String(),
		AvailableQuantity: batch.AvailableQuantity.String(),
		CreatedAt:         batch.GetCreatedAt().Format(timeFormat),
	})
}

// GetAreaStock handles GET /api/v1/inventory/areas/:id/stock
func (h *InventoryHandler) GetAreaStock(c *gin.Context) {
	tenantID, areaID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	page, err := h.inventoryService.GetAreaStock(c.Request.Context(), tenantID, areaID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]StockItemResponse, len(page.Items))
	for i, item := range page.Items {
		items[i] = toStockItemResponse(item)
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// GetProductStock handles GET /api/v1/inventory/products/:id/stock
func (h *InventoryHandler) GetProductStock(c *gin.Context) {
	tenantID, productID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	stock, err := h.inventoryService.GetProductStock(c.Request.Context(), tenantID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]StockItemResponse, len(stock))
	for i, item := range stock {
		items[i] = toStockItemResponse(item)
	}
	h.Success(c, items)
}

// GetMovementHistory handles GET /api/v1/inventory/products/:id/movements
func (h *InventoryHandler) GetMovementHistory(c *gin.Context) {
	tenantID, productID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}

	page, err := h.inventoryService.GetMovementHistory(c.Request.Context(), tenantID, productID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]MovementResponse, len(page.Items))
	for i, m := range page.Items {
		items[i] = toMovementResponse(m)
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// VerifyConsistency handles GET /api/v1/inventory/areas/:id/consistency.
// It replays the movement ledger for a product in the area and compares
// the result with the stored on-hand quantity.
func (h *InventoryHandler) VerifyConsistency(c *gin.Context) {
	tenantID, areaID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var variationID *uuid.UUID
	if v := c.Query("variation_id"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid variation ID")
			return
		}
		variationID = &parsed
	}

	consistent, err := h.inventoryService.VerifyLedgerConsistency(c.Request.Context(), tenantID, areaID, productID, variationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"consistent": consistent})
}
