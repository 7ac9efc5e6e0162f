package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appevent "github.com/wms/backend/internal/application/event"
	"github.com/wms/backend/internal/application/ports"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// StockEntryCommand enters stock into an area outside the receipt flow, e.g.
// an opening balance or a manual correction
type StockEntryCommand struct {
	TenantID    uuid.UUID       `json:"-"`
	AreaID      uuid.UUID       `json:"area_id" binding:"required"`
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	VariationID *uuid.UUID      `json:"variation_id"`
	LotCode     string          `json:"lot_code" binding:"required,max=100"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost    decimal.Decimal `json:"unit_cost" binding:"required"`
	ExpirationDate *time.Time   `json:"expiration_date"`
}

// InventoryService answers stock queries and handles standalone stock entries
type InventoryService struct {
	scope      TransactionScope
	currencies ports.CurrencyProvider
	periods    inventory.AccountingPeriodProvider
	ledger     *inventory.Ledger
	logger     *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	scope TransactionScope,
	currencies ports.CurrencyProvider,
	periods inventory.AccountingPeriodProvider,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		scope:      scope,
		currencies: currencies,
		periods:    periods,
		ledger:     inventory.NewLedger(),
		logger:     logger,
	}
}

// EnterStock creates a standalone batch and records its ENTRY in the ledger,
// folding the unit cost into the area's weighted average
func (s *InventoryService) EnterStock(ctx context.Context, cmd StockEntryCommand) (*inventory.StockBatch, error) {
	costCurrency, err := s.currencies.CostCurrency(ctx, cmd.TenantID)
	if err != nil {
		return nil, shared.NewIntegrityError("MISSING_COST_CURRENCY", err.Error())
	}
	period, err := s.periods.CurrentPeriod(ctx, cmd.TenantID)
	if err != nil {
		return nil, shared.NewIntegrityError("MISSING_PERIOD", err.Error())
	}

	unitCost, err := valueobject.NewMoney(cmd.UnitCost, costCurrency)
	if err != nil {
		return nil, shared.NewValidationError("INVALID_COST", err.Error())
	}

	var created *inventory.StockBatch
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := inventory.NewStockBatch(cmd.TenantID, cmd.AreaID, cmd.ProductID, cmd.VariationID, cmd.LotCode, cmd.Quantity, unitCost)
		if err != nil {
			return err
		}
		batch.SetExpirationDate(cmd.ExpirationDate)

		item, err := repos.StockItemRepo().GetOrCreate(ctx, cmd.TenantID, cmd.AreaID, cmd.ProductID, cmd.VariationID)
		if err != nil {
			return err
		}

		batchID := batch.GetID()
		movement, err := s.ledger.Apply(period.ID, inventory.LedgerLine{
			Item:        item,
			Quantity:    cmd.Quantity,
			UnitCost:    unitCost,
			BatchID:     &batchID,
			Description: "Standalone stock entry " + cmd.LotCode,
		})
		if err != nil {
			return err
		}

		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}
		if err := repos.StockItemRepo().Save(ctx, item); err != nil {
			return err
		}
		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return err
		}
		if err := appevent.Stage(ctx, repos.OutboxRepo(), item); err != nil {
			return err
		}

		created = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("standalone stock entry recorded",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("lot_code", cmd.LotCode),
		zap.String("quantity", cmd.Quantity.String()))
	return created, nil
}

// GetAreaStock retrieves the stock rows of an area
func (s *InventoryService) GetAreaStock(ctx context.Context, tenantID, areaID uuid.UUID, filter shared.Filter) (*shared.Paginated[*inventory.StockItem], error) {
	var page *shared.Paginated[*inventory.StockItem]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.StockItemRepo().FindByArea(ctx, tenantID, areaID, filter)
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

// GetProductStock retrieves a product's stock rows across all areas
func (s *InventoryService) GetProductStock(ctx context.Context, tenantID, productID uuid.UUID) ([]*inventory.StockItem, error) {
	var items []*inventory.StockItem
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.StockItemRepo().FindByProduct(ctx, tenantID, productID)
		if err != nil {
			return err
		}
		items = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetMovementHistory retrieves a product's ledger rows, newest first
func (s *InventoryService) GetMovementHistory(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) (*shared.Paginated[*inventory.StockMovement], error) {
	var page *shared.Paginated[*inventory.StockMovement]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		p, err := repos.MovementRepo().FindByProduct(ctx, tenantID, productID, filter)
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

// VerifyLedgerConsistency checks that the signed sum of ledger rows for an
// area-product pair equals the stock row's available quantity. Used by the
// reconciliation endpoint and in tests.
func (s *InventoryService) VerifyLedgerConsistency(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (bool, error) {
	consistent := false
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		item, err := repos.StockItemRepo().FindByAreaAndProduct(ctx, tenantID, areaID, productID, variationID)
		if err != nil {
			if shared.IsNotFound(err) {
				consistent = true
				return nil
			}
			return err
		}
		sum, err := repos.MovementRepo().SumByProductAndArea(ctx, tenantID, areaID, productID, variationID)
		if err != nil {
			return err
		}
		consistent = sum.Equal(item.AvailableQuantity)
		return nil
	})
	if err != nil {
		return false, err
	}
	return consistent, nil
}
