package dispatch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appevent "github.com/wms/backend/internal/application/event"
	"github.com/wms/backend/internal/application/ports"
	"github.com/wms/backend/internal/domain/dispatch"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DispatchService drives the dispatch workflow: creation with a strict source
// decrement, acceptance with destination average cost recompute, and
// rejection with period-aware reversal.
type DispatchService struct {
	scope   TransactionScope
	periods inventory.AccountingPeriodProvider
	orders  ports.OrderStatusProvider
	ledger  *inventory.Ledger
	logger  *zap.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	scope TransactionScope,
	periods inventory.AccountingPeriodProvider,
	orders ports.OrderStatusProvider,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		scope:   scope,
		periods: periods,
		orders:  orders,
		ledger:  inventory.NewLedger(),
		logger:  logger,
	}
}

// CreateDispatch creates a dispatch in CREATED state and atomically decrements
// source availability for every line. If any line's available quantity is
// insufficient the whole operation fails and no movement row is written.
func (s *DispatchService) CreateDispatch(ctx context.Context, cmd CreateDispatchCommand) (*dispatch.Dispatch, error) {
	period, err := s.periods.CurrentPeriod(ctx, cmd.TenantID)
	if err != nil {
		return nil, shared.NewIntegrityError("MISSING_PERIOD", err.Error())
	}

	mode := cmd.Mode
	if mode == "" {
		mode = dispatch.DispatchModeMovement
	}
	destTenant := cmd.TenantID
	if cmd.DestinationTenantID != nil {
		destTenant = *cmd.DestinationTenantID
	}

	var created *dispatch.Dispatch
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		sourceArea := cmd.SourceAreaID
		d, err := dispatch.NewDispatch(cmd.TenantID, mode, &sourceArea, cmd.DestinationAreaID, destTenant, period.ID, cmd.CreatedBy)
		if err != nil {
			return err
		}
		d.Note = cmd.Note

		dispatchID := d.GetID()
		// One locked instance per stock row: duplicate lines drawing from the
		// same combination must accumulate on a single struct or the final
		// save would keep only the last line's decrement.
		items := inventory.NewStockItemSet(repos.StockItemRepo())
		ledgerLines := make([]inventory.LedgerLine, 0, len(cmd.Lines))
		for _, in := range cmd.Lines {
			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, in.ProductID)
			if err != nil {
				return err
			}

			item, err := items.Lock(ctx, cmd.TenantID, sourceArea, in.ProductID, in.VariationID)
			if err != nil {
				return err
			}

			line, err := dispatch.NewDispatchLine(product.GetID(), in.VariationID,
				product.UniversalCode, product.Name, in.Quantity, product.SalePrice(), item.AverageCostMoney())
			if err != nil {
				return err
			}

			for _, alloc := range in.Batches {
				batch, err := repos.BatchRepo().FindByID(ctx, alloc.BatchID)
				if err != nil {
					return err
				}
				if err := batch.Consume(alloc.Quantity); err != nil {
					return err
				}
				if err := line.AllocateBatch(alloc.BatchID, alloc.Quantity); err != nil {
					return err
				}
				if err := repos.BatchRepo().Save(ctx, batch); err != nil {
					return err
				}
			}

			if err := d.AddLine(line); err != nil {
				return err
			}
			ledgerLines = append(ledgerLines, inventory.LedgerLine{
				Item:        item,
				Quantity:    in.Quantity.Neg(),
				UnitCost:    item.AverageCostMoney(),
				DispatchID:  &dispatchID,
				Description: "Dispatch to area " + cmd.DestinationAreaID.String(),
			})
		}

		movements, err := s.ledger.ApplyStrict(period.ID, ledgerLines)
		if err != nil {
			return err
		}
		if err := items.SaveAll(ctx); err != nil {
			return err
		}
		if err := repos.MovementRepo().SaveAll(ctx, movements); err != nil {
			return err
		}
		if err := repos.DispatchRepo().Save(ctx, d); err != nil {
			return err
		}
		if err := appevent.Stage(ctx, repos.OutboxRepo(), d); err != nil {
			return err
		}

		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("dispatch created",
		zap.String("dispatch_id", created.GetID().String()),
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.Int("lines", len(created.Lines)))
	return created, nil
}

// AcceptDispatch transitions the dispatch to ACCEPTED and enters every line
// into the destination area, recomputing the destination's weighted average
// cost. Involved stock rows are locked to serialize concurrent acceptances.
// In the cross-tenant case a missing destination product is materialized on
// the fly from the line's universal code; variable products make the whole
// transaction fail.
func (s *DispatchService) AcceptDispatch(ctx context.Context, tenantID, dispatchID, userID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		d, err := repos.DispatchRepo().FindByIDForUpdate(ctx, dispatchID)
		if err != nil {
			return err
		}
		if d.DestinationTenantID != tenantID {
			return shared.ErrNotFound
		}

		if err := d.Accept(userID); err != nil {
			return err
		}

		items := inventory.NewStockItemSet(repos.StockItemRepo())
		for _, line := range d.Lines {
			productID, variationID, err := s.resolveDestinationProduct(ctx, repos, d, &line)
			if err != nil {
				return err
			}

			item, err := items.LockOrCreate(ctx, d.DestinationTenantID, d.DestinationAreaID, productID, variationID)
			if err != nil {
				return err
			}

			lineDispatchID := d.GetID()
			movement, err := s.ledger.Apply(d.AccountingPeriodID, inventory.LedgerLine{
				Item:        item,
				Quantity:    line.Quantity,
				UnitCost:    line.Cost(),
				DispatchID:  &lineDispatchID,
				Description: "Dispatch acceptance",
			})
			if err != nil {
				return err
			}
			if err := repos.MovementRepo().Save(ctx, movement); err != nil {
				return err
			}
		}

		if err := items.SaveAll(ctx); err != nil {
			return err
		}
		for _, item := range items.Items() {
			if err := appevent.Stage(ctx, repos.OutboxRepo(), item); err != nil {
				return err
			}
		}

		if err := repos.DispatchRepo().Save(ctx, d); err != nil {
			return err
		}

		if d.ReceiptID != nil {
			rec, err := repos.ReceiptRepo().FindByIDForUpdate(ctx, *d.ReceiptID)
			if err != nil {
				return err
			}
			if err := rec.Confirm(); err != nil {
				return err
			}
			if err := repos.ReceiptRepo().Save(ctx, rec); err != nil {
				return err
			}
		}

		return appevent.Stage(ctx, repos.OutboxRepo(), d)
	})
}

// resolveDestinationProduct finds the receiving tenant's product for a line.
// Within one tenant the line's product is used directly. Across tenants the
// product is looked up by universal code and created on the fly when missing;
// variable products and variation lines cannot cross tenant boundaries.
func (s *DispatchService) resolveDestinationProduct(ctx context.Context, repos TransactionalRepositories, d *dispatch.Dispatch, line *dispatch.DispatchLine) (uuid.UUID, *uuid.UUID, error) {
	if !d.IsCrossTenant() {
		return line.ProductID, line.VariationID, nil
	}

	if line.VariationID != nil {
		return uuid.Nil, nil, shared.NewValidationError("VARIABLE_PRODUCT",
			"Product "+line.UniversalCode+" has variations and cannot be dispatched across businesses")
	}

	// The sender's product row is locked before the lookup so that two
	// concurrent acceptances serialize here: the second one waits, then sees
	// the clone the first one materialized instead of creating its own.
	source, err := repos.ProductRepo().FindByIDForUpdate(ctx, line.ProductID)
	if err != nil {
		return uuid.Nil, nil, err
	}

	product, err := repos.ProductRepo().FindByUniversalCode(ctx, d.DestinationTenantID, line.UniversalCode)
	if err == nil {
		if product.IsVariable() {
			return uuid.Nil, nil, shared.NewValidationError("VARIABLE_PRODUCT",
				"Product "+line.UniversalCode+" is variable in the receiving business and cannot be auto-matched")
		}
		return product.GetID(), nil, nil
	}
	if !isNotFound(err) {
		return uuid.Nil, nil, err
	}

	clone, err := source.MaterializeFor(d.DestinationTenantID)
	if err != nil {
		return uuid.Nil, nil, err
	}
	if err := repos.ProductRepo().Save(ctx, clone); err != nil {
		return uuid.Nil, nil, err
	}

	s.logger.Info("product materialized for cross-tenant dispatch",
		zap.String("universal_code", clone.UniversalCode),
		zap.String("tenant_id", d.DestinationTenantID.String()))
	return clone.GetID(), nil, nil
}

// RejectDispatch transitions the dispatch to REJECTED and returns stock to the
// source. If the accounting period is unchanged since creation, the original
// negative movements are netted out with linked REMOVED rows; after a period
// rollover fresh ENTRY rows are written instead, because rows of a closed
// period must not be compensated in place. Either way the consumed batch
// quantities are handed back. A dispatch whose parent order is already closed
// only detaches the link without touching stock.
func (s *DispatchService) RejectDispatch(ctx context.Context, tenantID, dispatchID, userID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		d, err := repos.DispatchRepo().FindByIDForUpdate(ctx, dispatchID)
		if err != nil {
			return err
		}
		if d.DestinationTenantID != tenantID && d.TenantID != tenantID {
			return shared.ErrNotFound
		}

		if err := d.Reject(userID); err != nil {
			return err
		}

		parentClosed, err := s.parentClosed(ctx, d)
		if err != nil {
			return err
		}
		if parentClosed {
			d.DetachParent()
			s.logger.Warn("dispatch rejected without stock reversal, parent order is closed",
				zap.String("dispatch_id", d.GetID().String()))
			if err := repos.DispatchRepo().Save(ctx, d); err != nil {
				return err
			}
			return appevent.Stage(ctx, repos.OutboxRepo(), d)
		}

		period, err := s.periods.CurrentPeriod(ctx, d.TenantID)
		if err != nil {
			return shared.NewIntegrityError("MISSING_PERIOD", err.Error())
		}

		if period.ID == d.AccountingPeriodID {
			if err := s.reverseInPlace(ctx, repos, d); err != nil {
				return err
			}
		} else {
			if err := s.rolloverEntries(ctx, repos, d, period.ID); err != nil {
				return err
			}
		}
		if err := s.restoreBatches(ctx, repos, d); err != nil {
			return err
		}

		if err := repos.DispatchRepo().Save(ctx, d); err != nil {
			return err
		}
		return appevent.Stage(ctx, repos.OutboxRepo(), d)
	})
}

// reverseInPlace nets out the dispatch's original negative movements with
// linked REMOVED rows, restoring source availability without touching the
// average cost
func (s *DispatchService) reverseInPlace(ctx context.Context, repos TransactionalRepositories, d *dispatch.Dispatch) error {
	movements, err := repos.MovementRepo().FindByDispatch(ctx, d.GetID())
	if err != nil {
		return err
	}

	items := inventory.NewStockItemSet(repos.StockItemRepo())
	for _, m := range movements {
		if m.Operation != inventory.OperationMovement {
			continue
		}
		item, err := items.Lock(ctx, m.TenantID, m.AreaID, m.ProductID, m.VariationID)
		if err != nil {
			return err
		}

		reversal, err := s.ledger.Reverse(item, m, "Dispatch rejection")
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Save(ctx, reversal); err != nil {
			return err
		}
	}

	if err := items.SaveAll(ctx); err != nil {
		return err
	}
	for _, item := range items.Items() {
		if err := appevent.Stage(ctx, repos.OutboxRepo(), item); err != nil {
			return err
		}
	}
	return nil
}

// rolloverEntries restores rejected stock through fresh ENTRY rows stamped
// with the current period, leaving the closed period's rows untouched
func (s *DispatchService) rolloverEntries(ctx context.Context, repos TransactionalRepositories, d *dispatch.Dispatch, currentPeriodID uuid.UUID) error {
	movements, err := repos.MovementRepo().FindByDispatch(ctx, d.GetID())
	if err != nil {
		return err
	}

	dispatchID := d.GetID()
	items := inventory.NewStockItemSet(repos.StockItemRepo())
	for _, m := range movements {
		if m.Operation != inventory.OperationMovement {
			continue
		}
		item, err := items.Lock(ctx, m.TenantID, m.AreaID, m.ProductID, m.VariationID)
		if err != nil {
			return err
		}

		quantity := m.Quantity.Abs()
		if err := item.Restore(quantity); err != nil {
			return err
		}

		entry, err := inventory.NewStockMovement(m.TenantID, m.AreaID, m.ProductID, m.VariationID,
			inventory.OperationEntry, quantity, m.UnitCost(), currentPeriodID)
		if err != nil {
			return err
		}
		entry.DispatchID = &dispatchID
		entry.Description = "Dispatch rejection after period rollover"

		if err := repos.MovementRepo().Save(ctx, entry); err != nil {
			return err
		}
	}
	return items.SaveAll(ctx)
}

// restoreBatches returns the rejected quantities to the batches they were
// drawn from, so batch-level availability stays in step with the restored
// stock rows.
func (s *DispatchService) restoreBatches(ctx context.Context, repos TransactionalRepositories, d *dispatch.Dispatch) error {
	for _, line := range d.Lines {
		for _, alloc := range line.BatchAllocations {
			batch, err := repos.BatchRepo().FindByID(ctx, alloc.BatchID)
			if err != nil {
				return err
			}
			if err := batch.Restore(alloc.Quantity); err != nil {
				return err
			}
			if err := repos.BatchRepo().Save(ctx, batch); err != nil {
				return err
			}
		}
	}
	return nil
}

// parentClosed reports whether the dispatch's order or production order is closed
func (s *DispatchService) parentClosed(ctx context.Context, d *dispatch.Dispatch) (bool, error) {
	if s.orders == nil || !d.HasParent() {
		return false, nil
	}
	if d.OrderID != nil {
		closed, err := s.orders.IsOrderClosed(ctx, *d.OrderID)
		if err != nil {
			return false, fmt.Errorf("check order status: %w", err)
		}
		if closed {
			return true, nil
		}
	}
	if d.ProductionOrderID != nil {
		closed, err := s.orders.IsProductionOrderClosed(ctx, *d.ProductionOrderID)
		if err != nil {
			return false, fmt.Errorf("check production order status: %w", err)
		}
		if closed {
			return true, nil
		}
	}
	return false, nil
}

// GetDispatch retrieves a dispatch visible to the tenant (as sender or receiver)
func (s *DispatchService) GetDispatch(ctx context.Context, tenantID, dispatchID uuid.UUID) (*dispatch.Dispatch, error) {
	var found *dispatch.Dispatch
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		d, err := repos.DispatchRepo().FindByID(ctx, dispatchID)
		if err != nil {
			return err
		}
		if d.TenantID != tenantID && d.DestinationTenantID != tenantID {
			return shared.ErrNotFound
		}
		found = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListOutgoing retrieves dispatches created by the tenant
func (s *DispatchService) ListOutgoing(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*dispatch.Dispatch], error) {
	var page *shared.Paginated[*dispatch.Dispatch]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.DispatchRepo().FindOutgoing(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ListIncoming retrieves dispatches targeting the tenant
func (s *DispatchService) ListIncoming(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*dispatch.Dispatch], error) {
	var page *shared.Paginated[*dispatch.Dispatch]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.DispatchRepo().FindIncoming(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func isNotFound(err error) bool {
	return shared.IsNotFound(err)
}
