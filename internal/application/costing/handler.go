package costing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wms/backend/internal/application/ports"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RecalculationHandler consumes UPDATE_COST jobs. Each run opens a
// transaction, re-reads the receipt with its batches and fixed costs, re-runs
// cost allocation in full and writes the results back. Because it always reads
// current persisted state, re-delivery and out-of-order delivery are harmless.
type RecalculationHandler struct {
	scope      TransactionScope
	currencies ports.CurrencyProvider
	logger     *zap.Logger
}

// NewRecalculationHandler creates a new RecalculationHandler
func NewRecalculationHandler(scope TransactionScope, currencies ports.CurrencyProvider, logger *zap.Logger) *RecalculationHandler {
	return &RecalculationHandler{
		scope:      scope,
		currencies: currencies,
		logger:     logger,
	}
}

// Codes returns the job codes this handler consumes
func (h *RecalculationHandler) Codes() []string {
	return []string{CodeUpdateCost}
}

// Handle processes one UPDATE_COST job. A receipt that no longer exists is
// logged and acknowledged: it may have been legitimately deleted between
// enqueue and processing.
func (h *RecalculationHandler) Handle(ctx context.Context, code string, raw json.RawMessage) error {
	if code != CodeUpdateCost {
		return fmt.Errorf("unexpected job code %q", code)
	}

	var params UpdateCostParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("invalid UPDATE_COST payload: %w", err)
	}

	costCurrency, err := h.currencies.CostCurrency(ctx, params.TenantID)
	if err != nil {
		return fmt.Errorf("resolve cost currency: %w", err)
	}
	rates, err := h.currencies.RateTable(ctx, params.TenantID)
	if err != nil {
		return fmt.Errorf("resolve rate table: %w", err)
	}

	err = h.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := repos.ReceiptRepo().FindByIDForUpdate(ctx, params.ReceiptID)
		if err != nil {
			return err
		}

		batches, err := repos.BatchRepo().FindByReceipt(ctx, rec.GetID())
		if err != nil {
			return err
		}

		if err := rec.AllocateCosts(batches, costCurrency, rates); err != nil {
			return err
		}

		if err := repos.BatchRepo().SaveAll(ctx, batches); err != nil {
			return err
		}
		return repos.ReceiptRepo().Save(ctx, rec)
	})

	if shared.IsNotFound(err) {
		h.logger.Warn("cost recalculation skipped, receipt no longer exists",
			zap.String("receipt_id", params.ReceiptID.String()),
			zap.String("tenant_id", params.TenantID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("recalculate receipt %s: %w", params.ReceiptID, err)
	}

	h.logger.Debug("receipt costs recalculated",
		zap.String("receipt_id", params.ReceiptID.String()),
		zap.String("tenant_id", params.TenantID.String()))
	return nil
}
