package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockItemSet keeps one StockItem instance per area-product combination for
// the duration of a transaction. Repository reads hydrate a fresh struct per
// scan, so two ledger lines touching the same combination would otherwise
// mutate separate copies and the later save would silently drop the earlier
// decrement. All reads go through the set; SaveAll persists each distinct
// instance exactly once.
type StockItemSet struct {
	repo  StockItemRepository
	items map[string]*StockItem
	order []*StockItem
}

// NewStockItemSet creates an empty set backed by the given repository
func NewStockItemSet(repo StockItemRepository) *StockItemSet {
	return &StockItemSet{
		repo:  repo,
		items: make(map[string]*StockItem),
	}
}

func stockItemKey(tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) string {
	key := tenantID.String() + "/" + areaID.String() + "/" + productID.String()
	if variationID != nil {
		key += "/" + variationID.String()
	}
	return key
}

// Lock returns the combination's row under a row-level write lock, reusing
// the instance already loaded in this transaction if there is one.
func (s *StockItemSet) Lock(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*StockItem, error) {
	key := stockItemKey(tenantID, areaID, productID, variationID)
	if item, ok := s.items[key]; ok {
		return item, nil
	}

	item, err := s.repo.FindForUpdate(ctx, tenantID, areaID, productID, variationID)
	if err != nil {
		return nil, err
	}
	s.items[key] = item
	s.order = append(s.order, item)
	return item, nil
}

// LockOrCreate behaves like Lock but materializes a zero-quantity row when
// the combination has none yet.
func (s *StockItemSet) LockOrCreate(ctx context.Context, tenantID, areaID, productID uuid.UUID, variationID *uuid.UUID) (*StockItem, error) {
	key := stockItemKey(tenantID, areaID, productID, variationID)
	if item, ok := s.items[key]; ok {
		return item, nil
	}

	item, err := s.repo.GetOrCreate(ctx, tenantID, areaID, productID, variationID)
	if err != nil {
		return nil, err
	}
	s.items[key] = item
	s.order = append(s.order, item)
	return item, nil
}

// Items returns every distinct instance loaded so far, in load order
func (s *StockItemSet) Items() []*StockItem {
	return s.order
}

// SaveAll persists each distinct instance exactly once
func (s *StockItemSet) SaveAll(ctx context.Context) error {
	for _, item := range s.order {
		if err := s.repo.Save(ctx, item); err != nil {
			return err
		}
	}
	return nil
}
