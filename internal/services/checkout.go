package services

import (
	"context"
	"errors"

	"github.com/techcabinet/apiserver/internal/store"
	"github.com/techcabinet/apiserver/types"
)

// TransactionRepository defines persistence operations for checkout
// transactions. Reserve, Accept, and Return are atomic: the item
// mutation and the transaction row change happen together or not at
// all.
type TransactionRepository interface {
	List(ctx context.Context) ([]types.Transaction, error)
	ListByUser(ctx context.Context, userID int) ([]types.Transaction, error)
	Reserve(ctx context.Context, userID, itemID, quantity int) (types.Transaction, error)
	Accept(ctx context.Context, id, adminID int) (types.Transaction, error)
	Return(ctx context.Context, id int) (types.Transaction, error)
}

// CheckoutService owns the reservation state machine:
// requested -> accepted -> returned, with no skipped states and no
// cancellation path.
type CheckoutService struct {
	transactions TransactionRepository
	items        ItemRepository
}

func NewCheckoutService(transactions TransactionRepository, items ItemRepository) *CheckoutService {
	return &CheckoutService{transactions: transactions, items: items}
}

// Reserve withholds quantity units of the named item for the user and
// records a requested transaction. A failed availability check leaves
// the item untouched. Returns the refreshed item list.
func (s *CheckoutService) Reserve(ctx context.Context, userID int, itemName string, quantity int) ([]types.Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.items.GetByName(ctx, itemName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if _, err := s.transactions.Reserve(ctx, userID, item.ID, quantity); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Item vanished between lookup and reserve.
			return nil, ErrItemNotFound
		case errors.Is(err, store.ErrInsufficient):
			return nil, ErrInsufficientInventory
		}
		return nil, err
	}

	return s.items.List(ctx)
}

// Accept approves a requested transaction on behalf of an admin.
// Accepting a transaction that is absent or already accepted fails with
// ErrTransactionNotFound. Returns all transactions.
func (s *CheckoutService) Accept(ctx context.Context, adminID, transactionID int) ([]types.Transaction, error) {
	if _, err := s.transactions.Accept(ctx, transactionID, adminID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return s.transactions.List(ctx)
}

// Return checks an accepted transaction's item back in, restoring its
// quantity. A transaction that is absent, not yet accepted, or already
// returned fails with ErrTransactionNotFound. Returns all transactions.
func (s *CheckoutService) Return(ctx context.Context, transactionID int) ([]types.Transaction, error) {
	if _, err := s.transactions.Return(ctx, transactionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return s.transactions.List(ctx)
}

// ListFor returns the transactions visible at the given auth level:
// admins see everything, regular users their own, anonymous callers an
// empty list rather than an error.
func (s *CheckoutService) ListFor(ctx context.Context, level types.AuthLevel, userID int) ([]types.Transaction, error) {
	switch level {
	case types.LevelAdmin:
		return s.transactions.List(ctx)
	case types.LevelRegular:
		return s.transactions.ListByUser(ctx, userID)
	default:
		return []types.Transaction{}, nil
	}
}
