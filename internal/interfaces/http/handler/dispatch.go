package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	dispatchapp "github.com/wms/backend/internal/application/dispatch"
	"github.com/wms/backend/internal/domain/dispatch"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// DispatchHandler handles dispatch API endpoints
type DispatchHandler struct {
	BaseHandler
	dispatchService *dispatchapp.DispatchService
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(dispatchService *dispatchapp.DispatchService) *DispatchHandler {
	return &DispatchHandler{dispatchService: dispatchService}
}

// DispatchResponse represents a dispatch in API responses
type DispatchResponse struct {
	ID                  string                 `json:"id"`
	Status              string                 `json:"status"`
	Mode                string                 `json:"mode"`
	SourceAreaID        *string                `json:"source_area_id,omitempty"`
	DestinationAreaID   string                 `json:"destination_area_id"`
	DestinationTenantID string                 `json:"destination_tenant_id"`
	ReceiptID           *string                `json:"receipt_id,omitempty"`
	AcceptedBy          *string                `json:"accepted_by,omitempty"`
	AcceptedAt          *string                `json:"accepted_at,omitempty"`
	RejectedBy          *string                `json:"rejected_by,omitempty"`
	RejectedAt          *string                `json:"rejected_at,omitempty"`
	Note                string                 `json:"note,omitempty"`
	Lines               []DispatchLineResponse `json:"lines,omitempty"`
	CreatedAt           string                 `json:"created_at"`
}

// DispatchLineResponse represents one product line of a dispatch
type DispatchLineResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	VariationID   *string `json:"variation_id,omitempty"`
	UniversalCode string  `json:"universal_code"`
	ProductName   string  `json:"product_name"`
	Quantity      string  `json:"quantity"`
	Price         string  `json:"price"`
	Cost          string  `json:"cost"`
	Currency      string  `json:"currency"`
}

func toDispatchResponse(d *dispatch.Dispatch) DispatchResponse {
	resp := DispatchResponse{
		ID:                  d.GetID().String(),
		Status:              string(d.Status),
		Mode:                string(d.Mode),
		DestinationAreaID:   d.DestinationAreaID.String(),
		DestinationTenantID: d.DestinationTenantID.String(),
		Note:                d.Note,
		CreatedAt:           d.GetCreatedAt().Format(timeFormat),
	}
	if d.SourceAreaID != nil {
		s := d.SourceAreaID.String()
		resp.SourceAreaID = &s
	}
	if d.ReceiptID != nil {
		s := d.ReceiptID.String()
		resp.ReceiptID = &s
	}
	if d.AcceptedBy != nil {
		s := d.AcceptedBy.String()
		resp.AcceptedBy = &s
	}
	if d.AcceptedAt != nil {
		s := d.AcceptedAt.Format(timeFormat)
		resp.AcceptedAt = &s
	}
	if d.RejectedBy != nil {
		s := d.RejectedBy.String()
		resp.RejectedBy = &s
	}
	if d.RejectedAt != nil {
		s := d.RejectedAt.Format(timeFormat)
		resp.RejectedAt = &s
	}
	for _, line := range d.Lines {
		lr := DispatchLineResponse{
			ID:            line.GetID().String(),
			ProductID:     line.ProductID.String(),
			UniversalCode: line.UniversalCode,
			ProductName:   line.ProductName,
			Quantity:      line.Quantity.String(),
			Price:         line.PriceAmount.StringFixed(2),
			Cost:          line.CostAmount.StringFixed(2),
			Currency:      string(line.CostCurrency),
		}
		if line.VariationID != nil {
			s := line.VariationID.String()
			lr.VariationID = &s
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}

// Create handles POST /api/v1/dispatches
func (h *DispatchHandler) Create(c *gin.Context) {
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

	var cmd dispatchapp.CreateDispatchCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	cmd.TenantID = tenantID
	cmd.CreatedBy = userID

	d, err := h.dispatchService.CreateDispatch(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toDispatchResponse(d))
}

// Get handles GET /api/v1/dispatches/:id
func (h *DispatchHandler) Get(c *gin.Context) {
	tenantID, dispatchID, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	d, err := h.dispatchService.GetDispatch(c.Request.Context(), tenantID, dispatchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toDispatchResponse(d))
}

// Accept handles POST /api/v1/dispatches/:id/accept
func (h *DispatchHandler) Accept(c *gin.Context) {
	tenantID, dispatchID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	if err := h.dispatchService.AcceptDispatch(c.Request.Context(), tenantID, dispatchID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reject handles POST /api/v1/dispatches/:id/reject
func (h *DispatchHandler) Reject(c *gin.Context) {
	tenantID, dispatchID, ok := h.tenantAndID(c)
	if !ok {
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identification required")
		return
	}

	if err := h.dispatchService.RejectDispatch(c.Request.Context(), tenantID, dispatchID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListOutgoing handles GET /api/v1/dispatches/outgoing
func (h *DispatchHandler) ListOutgoing(c *gin.Context) {
	h.list(c, h.dispatchService.ListOutgoing)
}

// ListIncoming handles GET /api/v1/dispatches/incoming
func (h *DispatchHandler) ListIncoming(c *gin.Context) {
	h.list(c, h.dispatchService.ListIncoming)
}

func (h *DispatchHandler) list(c *gin.Context, fetch func(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*dispatch.Dispatch], error)) {
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

	page, err := fetch(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]DispatchResponse, len(page.Items))
	for i, d := range page.Items {
		items[i] = toDispatchResponse(d)
	}
	h.SuccessWithMeta(c, items, page.Total, page.Page, page.PageSize)
}
