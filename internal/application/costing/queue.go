package costing

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Job codes understood by the recalculation queue
const (
	CodeUpdateCost = "UPDATE_COST"
)

// UpdateCostParams is the payload of an UPDATE_COST job. Every edit to a
// receipt's batches or fixed costs enqueues one; the handler re-reads current
// state, so duplicate and out-of-order deliveries are harmless.
type UpdateCostParams struct {
	ReceiptID uuid.UUID `json:"receiptId"`
	TenantID  uuid.UUID `json:"businessId"`
}

// Queue is the producer side of the durable work queue. Enqueue must be safe
// to call inside the caller's transaction so the job becomes visible only
// when the business change commits.
type Queue interface {
	// Enqueue adds a job with the given code and JSON-serializable params
	Enqueue(ctx context.Context, code string, params any) error
}

// Handler consumes jobs of one or more codes. Handlers must be idempotent:
// delivery is at-least-once.
type Handler interface {
	// Codes returns the job codes this handler consumes
	Codes() []string
	// Handle processes one job payload. A nil return acknowledges the job;
	// an error triggers the queue's bounded retry policy.
	Handle(ctx context.Context, code string, params json.RawMessage) error
}

// EnqueueUpdateCost queues a cost recomputation for a receipt
func EnqueueUpdateCost(ctx context.Context, q Queue, tenantID, receiptID uuid.UUID) error {
	return q.Enqueue(ctx, CodeUpdateCost, UpdateCostParams{ReceiptID: receiptID, TenantID: tenantID})
}
