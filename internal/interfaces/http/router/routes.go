package router

import (
	"github.com/gin-gonic/gin"

	"github.com/wms/backend/internal/interfaces/http/handler"
)

// ReceiptRoutes registers goods receipt endpoints
type ReceiptRoutes struct {
	handler *handler.ReceiptHandler
}

func NewReceiptRoutes(h *handler.ReceiptHandler) *ReceiptRoutes {
	return &ReceiptRoutes{handler: h}
}

func (r *ReceiptRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	receipts := rg.Group("/receipts")
	{
		receipts.POST("", r.handler.Create)
		receipts.GET("", r.handler.List)
		receipts.GET("/:id", r.handler.Get)
		receipts.POST("/:id/batches", r.handler.AddBatch)
		receipts.PUT("/:id/batches/:batchId", r.handler.UpdateBatch)
		receipts.DELETE("/:id/batches/:batchId", r.handler.RemoveBatch)
		receipts.POST("/:id/fixed-costs", r.handler.AddFixedCost)
		receipts.PUT("/:id/fixed-costs/:costId", r.handler.UpdateFixedCost)
		receipts.DELETE("/:id/fixed-costs/:costId", r.handler.RemoveFixedCost)
		receipts.POST("/:id/debit", r.handler.Debit)
		receipts.POST("/:id/cancel", r.handler.Cancel)
		receipts.POST("/:id/dispatch", r.handler.GenerateDispatch)
		receipts.POST("/:id/documents", r.handler.AttachDocument)
		receipts.POST("/:id/notes", r.handler.AppendNote)
	}
}

// DispatchRoutes registers dispatch endpoints
type DispatchRoutes struct {
	handler *handler.DispatchHandler
}

func NewDispatchRoutes(h *handler.DispatchHandler) *DispatchRoutes {
	return &DispatchRoutes{handler: h}
}

func (r *DispatchRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	dispatches := rg.Group("/dispatches")
	{
		dispatches.POST("", r.handler.Create)
		dispatches.GET("/outgoing", r.handler.ListOutgoing)
		dispatches.GET("/incoming", r.handler.ListIncoming)
		dispatches.GET("/:id", r.handler.Get)
		dispatches.POST("/:id/accept", r.handler.Accept)
		dispatches.POST("/:id/reject", r.handler.Reject)
	}
}

// InventoryRoutes registers stock endpoints
type InventoryRoutes struct {
	handler *handler.InventoryHandler
}

func NewInventoryRoutes(h *handler.InventoryHandler) *InventoryRoutes {
	return &InventoryRoutes{handler: h}
}

func (r *InventoryRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	inventory := rg.Group("/inventory")
	{
		inventory.POST("/entries", r.handler.EnterStock)
		inventory.GET("/areas/:id/stock", r.handler.GetAreaStock)
		inventory.GET("/areas/:id/consistency", r.handler.VerifyConsistency)
		inventory.GET("/products/:id/stock", r.handler.GetProductStock)
		inventory.GET("/products/:id/movements", r.handler.GetMovementHistory)
	}
}
