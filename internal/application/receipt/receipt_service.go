package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/application/costing"
	appevent "github.com/wms/backend/internal/application/event"
	"github.com/wms/backend/internal/application/ports"
	dispatchdomain "github.com/wms/backend/internal/domain/dispatch"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/receipt"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// ReceiptService handles the goods receipt workflow: creation with initial
// cost allocation, batch and fixed cost edits (each enqueues an asynchronous
// recomputation), funding debits, cancellation and dispatch generation.
type ReceiptService struct {
	scope      TransactionScope
	currencies ports.CurrencyProvider
	periods    inventory.AccountingPeriodProvider
	accounts   ports.AccountService
	storage    ports.ObjectStorage
	ledger     *inventory.Ledger
	logger     *zap.Logger
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	scope TransactionScope,
	currencies ports.CurrencyProvider,
	periods inventory.AccountingPeriodProvider,
	accounts ports.AccountService,
	storage ports.ObjectStorage,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		scope:      scope,
		currencies: currencies,
		periods:    periods,
		accounts:   accounts,
		storage:    storage,
		ledger:     inventory.NewLedger(),
		logger:     logger,
	}
}

// CreateReceipt creates a goods receipt with its batches and fixed costs,
// runs the initial cost allocation synchronously, enters the received stock
// into the destination area's ledger, and optionally debits the funding
// account. Everything happens in one transaction.
func (s *ReceiptService) CreateReceipt(ctx context.Context, cmd CreateReceiptCommand) (*receipt.GoodsReceipt, error) {
	costCurrency, err := s.currencies.CostCurrency(ctx, cmd.TenantID)
	if err != nil {
		return nil, shared.NewIntegrityError("MISSING_COST_CURRENCY", err.Error())
	}
	rates, err := s.currencies.RateTable(ctx, cmd.TenantID)
	if err != nil {
		return nil, shared.NewIntegrityError("MISSING_RATES", err.Error())
	}
	period, err := s.periods.CurrentPeriod(ctx, cmd.TenantID)
	if err != nil {
		return nil, shared.NewIntegrityError("MISSING_PERIOD", err.Error())
	}

	var created *receipt.GoodsReceipt
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.ReceiptRepo().NextOperationNumber(ctx, cmd.TenantID, time.Now().Year())
		if err != nil {
			return err
		}

		rec, err := receipt.NewGoodsReceipt(cmd.TenantID, cmd.AreaID, number, cmd.CreatedBy)
		if err != nil {
			return err
		}
		rec.SupplierID = cmd.SupplierID
		rec.Note = cmd.Note

		for _, fc := range cmd.FixedCosts {
			price, err := fc.Price.ToMoney()
			if err != nil {
				return shared.NewValidationError("INVALID_AMOUNT", err.Error())
			}
			cost, err := receipt.NewFixedCost(fc.Category, price, fc.Note)
			if err != nil {
				return err
			}
			if err := rec.AddFixedCost(cost); err != nil {
				return err
			}
		}

		batches := make([]*inventory.StockBatch, 0, len(cmd.Batches))
		for _, in := range cmd.Batches {
			price, err := in.RegisteredPrice.ToMoney()
			if err != nil {
				return shared.NewValidationError("INVALID_PRICE", err.Error())
			}
			batch, err := inventory.NewStockBatch(cmd.TenantID, cmd.AreaID, in.ProductID, in.VariationID, in.LotCode, in.Quantity, price)
			if err != nil {
				return err
			}
			batch.SupplierID = cmd.SupplierID
			batch.SetExpirationDate(in.ExpirationDate)
			if in.UnitsPerPackage > 0 {
				if err := batch.SetUnitsPerPackage(in.UnitsPerPackage); err != nil {
					return err
				}
			}
			batch.AttachToReceipt(rec.GetID())
			batches = append(batches, batch)
		}

		if err := rec.AllocateCosts(batches, costCurrency, rates); err != nil {
			return err
		}

		if err := repos.ReceiptRepo().Save(ctx, rec); err != nil {
			return err
		}
		if err := repos.BatchRepo().SaveAll(ctx, batches); err != nil {
			return err
		}

		if err := s.enterBatches(ctx, repos, rec, batches, period.ID); err != nil {
			return err
		}

		if cmd.FundingAccountID != nil {
			if err := s.accounts.Debit(ctx, cmd.TenantID, *cmd.FundingAccountID, rec.TotalCost(), rec.Reference()); err != nil {
				return err
			}
			if err := rec.RecordDebit(*cmd.FundingAccountID); err != nil {
				return err
			}
			if err := repos.ReceiptRepo().Save(ctx, rec); err != nil {
				return err
			}
		}

		if err := appevent.Stage(ctx, repos.OutboxRepo(), rec); err != nil {
			return err
		}

		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("goods receipt created",
		zap.String("receipt_id", created.GetID().String()),
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("reference", created.Reference()),
		zap.Int("batches", len(cmd.Batches)))
	return created, nil
}

// enterBatches records ENTRY ledger rows for newly received batches, folding
// each batch's net cost into the area's weighted average.
func (s *ReceiptService) enterBatches(ctx context.Context, repos TransactionalRepositories, rec *receipt.GoodsReceipt, batches []*inventory.StockBatch, periodID uuid.UUID) error {
	receiptID := rec.GetID()
	items := inventory.NewStockItemSet(repos.StockItemRepo())
	for _, batch := range batches {
		item, err := items.LockOrCreate(ctx, batch.TenantID, batch.AreaID, batch.ProductID, batch.VariationID)
		if err != nil {
			return err
		}

		batchID := batch.GetID()
		movement, err := s.ledger.Apply(periodID, inventory.LedgerLine{
			Item:        item,
			Quantity:    batch.EntryQuantity,
			UnitCost:    batch.NetCost(),
			ReceiptID:   &receiptID,
			BatchID:     &batchID,
			Description: "Receipt " + rec.Reference(),
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
	return nil
}

// AddBatch attaches a new batch to an open receipt and enqueues a cost
// recomputation. The stock enters the area immediately at the registered
// price; the worker refines the net cost afterwards.
func (s *ReceiptService) AddBatch(ctx context.Context, tenantID, receiptID uuid.UUID, in BatchInput) (*inventory.StockBatch, error) {
	period, err := s.periods.CurrentPeriod(ctx, tenantID)
	if err != nil {
		return nil, shared.NewIntegrityError("MISSING_PERIOD", err.Error())
	}

	var added *inventory.StockBatch
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, tenantID, receiptID)
		if err != nil {
			return err
		}
		if !rec.CanModify() {
			return shared.NewConflictError("RECEIPT_IMMUTABLE",
				fmt.Sprintf("Receipt %s is %s and can no longer be modified", rec.Reference(), rec.Status))
		}

		price, err := in.RegisteredPrice.ToMoney()
		if err != nil {
			return shared.NewValidationError("INVALID_PRICE", err.Error())
		}
		batch, err := inventory.NewStockBatch(tenantID, rec.AreaID, in.ProductID, in.VariationID, in.LotCode, in.Quantity, price)
		if err != nil {
			return err
		}
		batch.SetExpirationDate(in.ExpirationDate)
		if in.UnitsPerPackage > 0 {
			if err := batch.SetUnitsPerPackage(in.UnitsPerPackage); err != nil {
				return err
			}
		}
		batch.AttachToReceipt(rec.GetID())

		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}
		if err := s.enterBatches(ctx, repos, rec, []*inventory.StockBatch{batch}, period.ID); err != nil {
			return err
		}

		added = batch
		return s.enqueueRecalculation(ctx, repos, tenantID, receiptID)
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateBatch applies an allow-listed edit to a batch of an open receipt. A
// quantity change adjusts the area's stock by the delta through the ledger.
func (s *ReceiptService) UpdateBatch(ctx context.Context, tenantID, receiptID, batchID uuid.UUID, update BatchUpdate) error {
	if update.IsEmpty() {
		return shared.NewValidationError("EMPTY_UPDATE", "No fields to update")
	}
	period, err := s.periods.CurrentPeriod(ctx, tenantID)
	if err != nil {
		return shared.NewIntegrityError("MISSING_PERIOD", err.Error())
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, tenantID, receiptID)
		if err != nil {
			return err
		}
		if !rec.CanModify() {
			return shared.NewConflictError("RECEIPT_IMMUTABLE",
				fmt.Sprintf("Receipt %s is %s and can no longer be modified", rec.Reference(), rec.Status))
		}

		batch, err := repos.BatchRepo().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.ReceiptID == nil || *batch.ReceiptID != receiptID {
			return shared.ErrNotFound
		}

		if update.RegisteredPrice != nil {
			price, err := update.RegisteredPrice.ToMoney()
			if err != nil {
				return shared.NewValidationError("INVALID_PRICE", err.Error())
			}
			if err := batch.SetRegisteredPrice(price); err != nil {
				return err
			}
		}
		if update.ExpirationDate != nil {
			batch.SetExpirationDate(update.ExpirationDate)
		}
		if update.UnitsPerPackage != nil {
			if err := batch.SetUnitsPerPackage(*update.UnitsPerPackage); err != nil {
				return err
			}
		}
		if update.EntryQuantity != nil {
			delta := update.EntryQuantity.Sub(batch.EntryQuantity)
			if err := batch.UpdateEntryQuantity(*update.EntryQuantity); err != nil {
				return err
			}
			if !delta.IsZero() {
				items := inventory.NewStockItemSet(repos.StockItemRepo())
				if err := s.adjustStock(ctx, repos, items, rec, batch, delta, period.ID); err != nil {
					return err
				}
				if err := items.SaveAll(ctx); err != nil {
					return err
				}
			}
		}

		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}
		return s.enqueueRecalculation(ctx, repos, tenantID, receiptID)
	})
}

// RemoveBatch soft-deletes a batch from an open receipt, withdrawing its
// remaining stock from the area.
func (s *ReceiptService) RemoveBatch(ctx context.Context, tenantID, receiptID, batchID uuid.UUID) error {
	period, err := s.periods.CurrentPeriod(ctx, tenantID)
	if err != nil {
		return shared.NewIntegrityError("MISSING_PERIOD", err.Error())
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, tenantID, receiptID)
		if err != nil {
			return err
		}
		if !rec.CanModify() {
			return shared.NewConflictError("RECEIPT_IMMUTABLE",
				fmt.Sprintf("Receipt %s is %s and can no longer be modified", rec.Reference(), rec.Status))
		}

		batch, err := repos.BatchRepo().FindByID(ctx, batchID)
		if err != nil {
			return err
		}
		if batch.ReceiptID == nil || *batch.ReceiptID != receiptID {
			return shared.ErrNotFound
		}

		if batch.AvailableQuantity.IsPositive() {
			items := inventory.NewStockItemSet(repos.StockItemRepo())
			if err := s.adjustStock(ctx, repos, items, rec, batch, batch.AvailableQuantity.Neg(), period.ID); err != nil {
				return err
			}
			if err := items.SaveAll(ctx); err != nil {
				return err
			}
		}

		if err := repos.BatchRepo().Delete(ctx, batchID); err != nil {
			return err
		}
		return s.enqueueRecalculation(ctx, repos, tenantID, receiptID)
	})
}

// adjustStock writes a signed ledger delta for a batch's product in the
// receipt's area. The stock row comes from the caller's item set so several
// batches of the same product mutate one instance; the caller persists the
// set once after the last adjustment.
func (s *ReceiptService) adjustStock(ctx context.Context, repos TransactionalRepositories, items *inventory.StockItemSet, rec *receipt.GoodsReceipt, batch *inventory.StockBatch, delta decimal.Decimal, periodID uuid.UUID) error {
	item, err := items.Lock(ctx, batch.TenantID, batch.AreaID, batch.ProductID, batch.VariationID)
	if err != nil {
		return err
	}

	receiptID := rec.GetID()
	batchID := batch.GetID()
	movement, err := s.ledger.Apply(periodID, inventory.LedgerLine{
		Item:        item,
		Quantity:    delta,
		UnitCost:    batch.NetCost(),
		ReceiptID:   &receiptID,
		BatchID:     &batchID,
		Description: "Receipt " + rec.Reference() + " adjustment",
	})
	if err != nil {
		return err
	}

	return repos.MovementRepo().Save(ctx, movement)
}

// AddFixedCost attaches an indirect cost to an open receipt and enqueues a
// cost recomputation
func (s *ReceiptService) AddFixedCost(ctx context.Context, tenantID, receiptID uuid.UUID, in FixedCostInput) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, tenantID, receiptID)
		if err != nil {
			return err
		}

		price, err := in.Price.ToMoney()
		if err != nil {
			return shared.NewValidationError("INVALID_AMOUNT", err.Error())
		}
		cost, err := receipt.NewFixedCost(in.Category, price, in.Note)
		if err != nil {
			return err
		}
		if err := rec.AddFixedCost(cost); err != nil {
			return err
		}

		if err := repos.ReceiptRepo().Save(ctx, rec); err != nil {
			return err
		}
		return s.enqueueRecalculation(ctx, repos, tenantID, receiptID)
	})
}

// UpdateFixedCost applies an allow-listed edit to a fixed cost line
func (s *ReceiptService) UpdateFixedCost(ctx context.Context, tenantID, receiptID, costID uuid.UUID, update FixedCostUpdate) error {
	if update.IsEmpty() {
		return shared.NewValidationError("EMPTY_UPDATE", "No fields to update")
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, tenantID, receiptID)
		if err != nil {
			return err
		}
		if !rec.CanModify() {
			return shared.NewConflictError("RECEIPT_IMMUTABLE",
				fmt.Sprintf("Receipt %s is %s and can no longer be modified", rec.Reference(), rec.Status))
		}

		found := false
		for i := range rec.FixedCosts {
			if rec.FixedCosts[i].GetID() != costID {
				continue
			}
			found = true
			if update.Category != nil {
				rec.FixedCosts[i].Category = *update.Category
			}
			if update.Price != nil {
				price, err := update.Price.ToMoney()
				if err != nil {
					return shared.NewValidationError("INVALID_AMOUNT", err.Error())
				}
				if err := rec.FixedCosts[i].UpdatePrice(price); err != nil {
					return err
				}
			}
			if update.Note != nil {
				rec.FixedCosts[i].Note = *update.Note
			}
			break
		}
		if !found {
			return shared.ErrNotFound
		}

		if err := repos.ReceiptRepo().Save(ctx, rec); err != nil {
			return err
		}
		return s.enqueueRecalculation(ctx, repos, tenantID, receiptID)
	})
}

// RemoveFixedCost detaches an indirect cost line from an open receipt
func (s *ReceiptService) RemoveFixedCost(ctx context.Context, tenantID, receiptID, costID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, tenantID, receiptID)
		if err != nil {
			return err
		}
		if err := rec.RemoveFixedCost(costID); err != nil {
			return err
		}
		if err := repos.ReceiptRepo().Save(ctx, rec); err != nil {
			return err
		}
		return s.enqueueRecalculation(ctx, repos, tenantID, receiptID)
	})
}

// DebitAgainstAccount debits the receipt total from a funding account. The
// account balance row is locked by the account module; a receipt can be
// debited at most once.
func (s *ReceiptService) DebitAgainstAccount(ctx context.Context, tenantID, receiptID, accountID uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, tenantID, receiptID)
		if err != nil {
			return err
		}

		if err := s.accounts.Debit(ctx, tenantID, accountID, rec.TotalCost(), rec.Reference()); err != nil {
			return err
		}
		if err := rec.RecordDebit(accountID); err != nil {
			return err
		}
		if err := repos.ReceiptRepo().Save(ctx, rec); err != nil {
			return err
		}
		return appevent.Stage(ctx, repos.OutboxRepo(), rec)
	})
}

// CancelReceipt voids an open receipt and withdraws its batches from stock
func (s *ReceiptService) CancelReceipt(ctx context.Context, tenantID, receiptID uuid.UUID) error {
	period, err := s.periods.CurrentPeriod(ctx, tenantID)
	if err != nil {
		return shared.NewIntegrityError("MISSING_PERIOD", err.Error())
	}

	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, tenantID, receiptID)
		if err != nil {
			return err
		}
		if err := rec.Cancel(); err != nil {
			return err
		}

		batches, err := repos.BatchRepo().FindByReceipt(ctx, receiptID)
		if err != nil {
			return err
		}
		// One shared set across the loop: several batches of the same product
		// net their withdrawals on a single stock row instance.
		items := inventory.NewStockItemSet(repos.StockItemRepo())
		for _, batch := range batches {
			if batch.AvailableQuantity.IsPositive() {
				if err := s.adjustStock(ctx, repos, items, rec, batch, batch.AvailableQuantity.Neg(), period.ID); err != nil {
					return err
				}
			}
			if err := repos.BatchRepo().Delete(ctx, batch.GetID()); err != nil {
				return err
			}
		}
		if err := items.SaveAll(ctx); err != nil {
			return err
		}

		if err := repos.ReceiptRepo().Save(ctx, rec); err != nil {
			return err
		}
		return appevent.Stage(ctx, repos.OutboxRepo(), rec)
	})
}

// GenerateDispatch transforms a receipt into a dispatch exactly once. Batch
// quantities are aggregated per product; lines are priced at the current
// catalog price and costed at the weighted net cost of the product's batches.
// The source area's stock is decremented strictly in the same transaction.
func (s *ReceiptService) GenerateDispatch(ctx context.Context, cmd GenerateDispatchCommand) (*dispatchdomain.Dispatch, error) {
	if cmd.DestinationAreaID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_AREA", "No destination area is resolvable for this dispatch")
	}
	period, err := s.periods.CurrentPeriod(ctx, cmd.TenantID)
	if err != nil {
		return nil, shared.NewIntegrityError("MISSING_PERIOD", err.Error())
	}

	destTenant := cmd.TenantID
	if cmd.DestinationTenantID != nil {
		destTenant = *cmd.DestinationTenantID
	}

	var generated *dispatchdomain.Dispatch
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, cmd.TenantID, cmd.ReceiptID)
		if err != nil {
			return err
		}
		if rec.DispatchID != nil {
			return shared.NewConflictError("ALREADY_DISPATCHED",
				fmt.Sprintf("Receipt %s already generated a dispatch", rec.Reference()))
		}

		batches, err := repos.BatchRepo().FindByReceipt(ctx, cmd.ReceiptID)
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			return shared.NewValidationError("EMPTY_RECEIPT", "Receipt has no batches to dispatch")
		}

		lines := aggregateBatchesPerProduct(batches)

		sourceArea := rec.AreaID
		d, err := dispatchdomain.NewDispatch(cmd.TenantID, dispatchdomain.DispatchModeMovement,
			&sourceArea, cmd.DestinationAreaID, destTenant, period.ID, cmd.UserID)
		if err != nil {
			return err
		}
		d.ReceiptID = &cmd.ReceiptID

		items := inventory.NewStockItemSet(repos.StockItemRepo())
		ledgerLines := make([]inventory.LedgerLine, 0, len(lines))
		dispatchID := d.GetID()
		for _, agg := range lines {
			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, agg.productID)
			if err != nil {
				return err
			}

			line, err := dispatchdomain.NewDispatchLine(product.GetID(), agg.variationID,
				product.UniversalCode, product.Name, agg.quantity, product.SalePrice(), agg.unitCost)
			if err != nil {
				return err
			}
			if err := d.AddLine(line); err != nil {
				return err
			}

			item, err := items.Lock(ctx, cmd.TenantID, sourceArea, agg.productID, agg.variationID)
			if err != nil {
				return err
			}
			ledgerLines = append(ledgerLines, inventory.LedgerLine{
				Item:        item,
				Quantity:    agg.quantity.Neg(),
				UnitCost:    agg.unitCost,
				DispatchID:  &dispatchID,
				Description: "Dispatch from receipt " + rec.Reference(),
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
		if err := rec.MarkDispatched(d.GetID()); err != nil {
			return err
		}
		if err := repos.ReceiptRepo().Save(ctx, rec); err != nil {
			return err
		}
		if err := appevent.Stage(ctx, repos.OutboxRepo(), d); err != nil {
			return err
		}
		if err := appevent.Stage(ctx, repos.OutboxRepo(), rec); err != nil {
			return err
		}

		generated = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("dispatch generated from receipt",
		zap.String("receipt_id", cmd.ReceiptID.String()),
		zap.String("dispatch_id", generated.GetID().String()),
		zap.Int("lines", len(generated.Lines)))
	return generated, nil
}

// AttachDocument stores the uploaded file in object storage and links it to
// the receipt
func (s *ReceiptService) AttachDocument(ctx context.Context, cmd AttachDocumentCommand) (*receipt.Document, error) {
	key := fmt.Sprintf("receipts/%s/%s/%s", cmd.TenantID, cmd.ReceiptID, cmd.FileName)
	if err := s.storage.Put(ctx, key, cmd.ContentType, cmd.Content); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc, err := receipt.NewDocument(cmd.FileName, cmd.ContentType, key, int64(len(cmd.Content)), cmd.UserID)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, cmd.TenantID, cmd.ReceiptID)
		if err != nil {
			return err
		}
		rec.AttachDocument(doc)
		return repos.ReceiptRepo().Save(ctx, rec)
	})
	if err != nil {
		// Best effort cleanup; an orphaned object is harmless.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to delete orphaned document", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return doc, nil
}

// AppendNote adds an audit note to a receipt
func (s *ReceiptService) AppendNote(ctx context.Context, tenantID, receiptID, userID uuid.UUID, text string) error {
	return s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := s.loadOwnedReceipt(ctx, repos, tenantID, receiptID)
		if err != nil {
			return err
		}
		if err := rec.AppendNote(userID, text); err != nil {
			return err
		}
		return repos.ReceiptRepo().Save(ctx, rec)
	})
}

// GetReceipt retrieves a receipt owned by the tenant
func (s *ReceiptService) GetReceipt(ctx context.Context, tenantID, receiptID uuid.UUID) (*receipt.GoodsReceipt, error) {
	var found *receipt.GoodsReceipt
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		rec, err := repos.ReceiptRepo().FindByID(ctx, receiptID)
		if err != nil {
			return err
		}
		if rec.TenantID != tenantID {
			return shared.ErrNotFound
		}
		found = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// ListReceipts retrieves receipts for a tenant with pagination
func (s *ReceiptService) ListReceipts(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[*receipt.GoodsReceipt], error) {
	var page *shared.Paginated[*receipt.GoodsReceipt]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.ReceiptRepo().FindByTenant(ctx, tenantID, filter)
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

// loadOwnedReceipt locks the receipt row and verifies tenant ownership
func (s *ReceiptService) loadOwnedReceipt(ctx context.Context, repos TransactionalRepositories, tenantID, receiptID uuid.UUID) (*receipt.GoodsReceipt, error) {
	rec, err := repos.ReceiptRepo().FindByIDForUpdate(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if rec.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return rec, nil
}

// enqueueRecalculation queues an UPDATE_COST job inside the current transaction
func (s *ReceiptService) enqueueRecalculation(ctx context.Context, repos TransactionalRepositories, tenantID, receiptID uuid.UUID) error {
	if err := costing.EnqueueUpdateCost(ctx, repos.Queue(), tenantID, receiptID); err != nil {
		return fmt.Errorf("enqueue cost recalculation: %w", err)
	}
	return nil
}

// productAggregate accumulates batch quantities per product for dispatch
// generation. Per-batch provenance is deliberately not carried through this
// path; lines reference products only.
type productAggregate struct {
	productID   uuid.UUID
	variationID *uuid.UUID
	quantity    decimal.Decimal
	unitCost    valueobject.Money
}

// aggregateBatchesPerProduct sums available quantities per product and
// computes the quantity-weighted net cost for each
func aggregateBatchesPerProduct(batches []*inventory.StockBatch) []productAggregate {
	type acc struct {
		agg      productAggregate
		costSum  decimal.Decimal
		currency valueobject.Currency
	}

	index := make(map[string]*acc)
	order := make([]string, 0, len(batches))
	for _, b := range batches {
		if !b.AvailableQuantity.IsPositive() {
			continue
		}
		key := b.ProductID.String()
		if b.VariationID != nil {
			key += ":" + b.VariationID.String()
		}
		a, ok := index[key]
		if !ok {
			a = &acc{
				agg: productAggregate{
					productID:   b.ProductID,
					variationID: b.VariationID,
					quantity:    decimal.Zero,
				},
				costSum:  decimal.Zero,
				currency: b.NetCost().Currency(),
			}
			index[key] = a
			order = append(order, key)
		}
		a.agg.quantity = a.agg.quantity.Add(b.AvailableQuantity)
		a.costSum = a.costSum.Add(b.AvailableQuantity.Mul(b.NetCost().Amount()))
	}

	result := make([]productAggregate, 0, len(order))
	for _, key := range order {
		a := index[key]
		unitCost := decimal.Zero
		if a.agg.quantity.IsPositive() {
			unitCost = a.costSum.Div(a.agg.quantity).Round(valueobject.MoneyPrecision)
		}
		a.agg.unitCost = valueobject.MustMoney(unitCost, a.currency)
		result = append(result, a.agg)
	}
	return result
}
