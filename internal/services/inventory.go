package services

import (
	"context"
	"errors"

	"github.com/techcabinet/apiserver/internal/store"
	"github.com/techcabinet/apiserver/types"
)

// ItemRepository defines persistence operations for inventory items.
type ItemRepository interface {
	List(ctx context.Context) ([]types.Item, error)
	GetByName(ctx context.Context, name string) (types.Item, error)
	Create(ctx context.Context, item types.Item) (types.Item, error)
	DeleteByName(ctx context.Context, name string) error
	AdjustQuantity(ctx context.Context, name string, delta int) (types.Item, error)
}

// InventoryService owns the item catalog: creation, deletion, and
// quantity adjustments outside the checkout lifecycle.
type InventoryService struct {
	repo ItemRepository
}

func NewInventoryService(repo ItemRepository) *InventoryService {
	return &InventoryService{repo: repo}
}

func (s *InventoryService) List(ctx context.Context) ([]types.Item, error) {
	return s.repo.List(ctx)
}

// Create adds an item to the catalog and returns the refreshed list.
func (s *InventoryService) Create(ctx context.Context, creatorID int, name string, quantity int) ([]types.Item, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	item := types.Item{Name: name, Quantity: quantity}
	if creatorID > 0 {
		item.CreatedBy = &creatorID
	}
	if _, err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateItem
		}
		return nil, err
	}
	return s.repo.List(ctx)
}

// Delete removes an item and, via the cascade, its transactions.
func (s *InventoryService) Delete(ctx context.Context, name string) ([]types.Item, error) {
	if err := s.repo.DeleteByName(ctx, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return s.repo.List(ctx)
}

// Adjust applies a signed quantity delta, e.g. restocking or writing
// off lost units.
func (s *InventoryService) Adjust(ctx context.Context, name string, delta int) (types.Item, error) {
	item, err := s.repo.AdjustQuantity(ctx, name, delta)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return types.Item{}, ErrItemNotFound
		case errors.Is(err, store.ErrInsufficient):
			return types.Item{}, ErrInsufficientInventory
		}
		return types.Item{}, err
	}
	return item, nil
}
