package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	receiptapp "github.com/wms/backend/internal/application/receipt"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// maxDocumentSize caps uploaded receipt documents at 10 MiB
const maxDocumentSize = 10 << 20

// ReceiptHandler handles goods receipt API endpoints
type ReceiptHandler struct {
	BaseHandler
	receiptService *receiptapp.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *receiptapp.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ReceiptResponse represents a goods receipt in API responses
type ReceiptResponse struct {
	ID              string              `json:"id"`
	Reference       string              `json:"reference"`
	Status          string              `json:"status"`
	OperationNumber int                 `json:"operation_number"`
	Year            int                 `json:"year"`
	AreaID          string              `json:"area_id"`
	SupplierID      *string             `json:"supplier_id,omitempty"`
	DispatchID      *string             `json:"dispatch_id,omitempty"`
	DebitedAt       *string             `json:"debited_at,omitempty"`
	TotalCost       string              `json:"total_cost"`
	Currency        string              `json:"currency"`
	Note            string              `json:"note,omitempty"`
	FixedCosts      []FixedCostResponse `json:"fixed_costs,omitempty"`
	Operations      []OperationResponse `json:"operations,omitempty"`
	Documents       []DocumentResponse  `json:"documents,omitempty"`
	CreatedAt       string              `json:"created_at"`
}

// FixedCostResponse represents an indirect cost line
type FixedCostResponse struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Note     string `json:"note,omitempty"`
}

// OperationResponse represents one audit log line
type OperationResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// DocumentResponse represents an attached document
type DocumentResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	CreatedAt   string `json:"created_at"`
}

// BatchResponse represents a stock batch in API responses
type BatchResponse struct {
	ID                string  `json:"id"`
	ProductID         string  `json:"product_id"`
	VariationID       *string `json:"variation_id,omitempty"`
	LotCode           string  `json:"lot_code"`
	EntryQuantity     string  `json:"entry_quantity"`
	AvailableQuantity string  `json:"available_quantity"`
	RegisteredPrice   string  `json:"registered_price"`
	GrossCost         string  `json:"gross_cost"`
	NetCost           string  `json:"net_cost"`
	Currency          string  `json:"currency"`
	ExpirationDate    *string `json:"expiration_date,omitempty"`
	UnitsPerPackage   int     `json:"units_per_package"`
}

func toReceiptResponse(rec *receipt.GoodsReceipt) ReceiptResponse {
	resp := ReceiptResponse{
		ID:              rec.GetID().String(),
		Reference:       rec.Reference(),
		Status:          string(rec.Status),
		OperationNumber: rec.OperationNumber,
		Year:            rec.Year,
		AreaID:          rec.AreaID.String(),
		TotalCost:       rec.TotalCostAmount.StringFixed(2),
		Currency:        string(rec.TotalCostCurrency),
		Note:            rec.Note,
		CreatedAt:       rec.GetCreatedAt().Format(timeFormat),
	}
	if rec.SupplierID != nil {
		s := rec.SupplierID.String()
		resp.SupplierID = &s
	}
	if rec.DispatchID != nil {
		s := rec.DispatchID.String()
		resp.DispatchID = &s
	}
	if rec.DebitedAt != nil {
		s := rec.DebitedAt.Format(timeFormat)
		resp.DebitedAt = &s
	}
	for _, fc := range rec.FixedCosts {
		resp.FixedCosts = append(resp.FixedCosts, FixedCostResponse{
			ID:       fc.GetID().String(),
			Category: string(fc.Category),
			Amount:   fc.Amount.StringFixed(2),
			Currency: string(fc.Currency),
			Note:     fc.Note,
		})
	}
	for _, op := range rec.Operations {
		resp.Operations = append(resp.Operations, OperationResponse{
			ID:        op.GetID().String(),
			UserID:    op.UserID.String(),
			Text:      op.Text,
			CreatedAt: op.GetCreatedAt().Format(timeFormat),
		})
	}
	for _, doc := range rec.Documents {
		resp.Documents = append(resp.Documents, DocumentResponse{
			ID:          doc.GetID().String(),
			FileName:    doc.FileName,
			ContentType: doc.ContentType,
			SizeBytes:   doc.SizeBytes,
			CreatedAt:   doc.GetCreatedAt().Format(timeFormat),
		})
	}
	return resp
}

func toBatchResponse(b *inventory.StockBatch) BatchResponse {
	resp := BatchResponse{
		ID:                b.GetID().String(),
		ProductID:         b.ProductID.String(),
		LotCode:           b.LotCode,
		EntryQuantity:     b.EntryQuantity.String(),
		AvailableQuantity: b.AvailableQuantity.String(),
		RegisteredPrice:   b.RegisteredAmount.StringFixed(2),
		GrossCost:         b.GrossAmount.StringFixed(2),
		NetCost:           b.NetAmount.StringFixed(2),
		Currency:          string(b.NetCurrency),
		UnitsPerPackage:   b.UnitsPerPackage,
	}
	if b.VariationID != nil {
		s := b.VariationID.String()
		resp.VariationID = &s
	}
	if b.ExpirationDate != nil {
		s := b.ExpirationDate.Format(timeFormat)
		resp.ExpirationDate = &s
	}
	return resp
}

// Create handles POST /api/v1/receipts
func (h *ReceiptHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	var cmd receiptapp.CreateReceiptCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	cmd.TenantID = tenantID
	cmd.CreatedBy = userID

	rec, err := h.receiptService.CreateReceipt(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toReceiptResponse(rec))
}

// Get handles GET /api/v1/receipts/:id
func (h *ReceiptHandler) Get(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	rec, err := h.receiptService.GetReceipt(c.Request.Context(), tenantID, receiptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReceiptResponse(rec))
}

// List handles GET /api/v1/receipts
func (h *ReceiptHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
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
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}

	page, err := h.receiptService.ListReceipts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ReceiptResponse, len(page.Items))
	for i, rec := range page.Items {
		items[i] = toReceiptResponse(rec)
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}

// AddBatch handles POST /api/v1/receipts/:id/batches
func (h *ReceiptHandler) AddBatch(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	var in receiptapp.BatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	batch, err := h.receiptService.AddBatch(c.Request.Context(), tenantID, receiptID, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toBatchResponse(batch))
}

// UpdateBatch handles PATCH /api/v1/receipts/:id/batches/:batchId
func (h *ReceiptHandler) UpdateBatch(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	var update receiptapp.BatchUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.receiptService.UpdateBatch(c.Request.Context(), tenantID, receiptID, batchID, update); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveBatch handles DELETE /api/v1/receipts/:id/batches/:batchId
func (h *ReceiptHandler) RemoveBatch(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	if err := h.receiptService.RemoveBatch(c.Request.Context(), tenantID, receiptID, batchID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddFixedCost handles POST /api/v1/receipts/:id/fixed-costs
func (h *ReceiptHandler) AddFixedCost(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	var in receiptapp.FixedCostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.receiptService.AddFixedCost(c.Request.Context(), tenantID, receiptID, in); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateFixedCost handles PATCH /api/v1/receipts/:id/fixed-costs/:costId
func (h *ReceiptHandler) UpdateFixedCost(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	costID, err := uuid.Parse(c.Param("costId"))
	if err != nil {
		h.BadRequest(c, "Invalid fixed cost ID")
		return
	}

	var update receiptapp.FixedCostUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.receiptService.UpdateFixedCost(c.Request.Context(), tenantID, receiptID, costID, update); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveFixedCost handles DELETE /api/v1/receipts/:id/fixed-costs/:costId
func (h *ReceiptHandler) RemoveFixedCost(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	costID, err := uuid.Parse(c.Param("costId"))
	if err != nil {
		h.BadRequest(c, "Invalid fixed cost ID")
		return
	}

	if err := h.receiptService.RemoveFixedCost(c.Request.Context(), tenantID, receiptID, costID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DebitRequest represents a request to debit a funding account
type DebitRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// Debit handles POST /api/v1/receipts/:id/debit
func (h *ReceiptHandler) Debit(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	var req DebitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	if err := h.receiptService.DebitAgainstAccount(c.Request.Context(), tenantID, receiptID, accountID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Cancel handles POST /api/v1/receipts/:id/cancel
func (h *ReceiptHandler) Cancel(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	if err := h.receiptService.CancelReceipt(c.Request.Context(), tenantID, receiptID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GenerateDispatch handles POST /api/v1/receipts/:id/dispatch
func (h *ReceiptHandler) GenerateDispatch(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	var cmd receiptapp.GenerateDispatchCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	cmd.TenantID = tenantID
	cmd.UserID = userID
	cmd.ReceiptID = receiptID

	d, err := h.receiptService.GenerateDispatch(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toDispatchResponse(d))
}

// AttachDocument handles POST /api/v1/receipts/:id/documents (multipart)
func (h *ReceiptHandler) AttachDocument(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "File is required")
		return
	}
	if fileHeader.Size > maxDocumentSize {
		h.BadRequest(c, "File exceeds the 10 MiB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return
	}

	doc, err := h.receiptService.AttachDocument(c.Request.Context(), receiptapp.AttachDocumentCommand{
		TenantID:    tenantID,
		UserID:      userID,
		ReceiptID:   receiptID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, DocumentResponse{
		ID:          doc.GetID().String(),
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		SizeBytes:   doc.SizeBytes,
		CreatedAt:   doc.GetCreatedAt().Format(timeFormat),
	})
}

// NoteRequest represents a request to append an audit note
type NoteRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// AppendNote handles POST /api/v1/receipts/:id/notes
func (h *ReceiptHandler) AppendNote(c *gin.Context) {
	tenantID, receiptID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.receiptService.AppendNote(c.Request.Context(), tenantID, receiptID, userID, req.Text); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

