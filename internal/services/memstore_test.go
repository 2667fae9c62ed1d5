package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/techcabinet/apiserver/internal/store"
	"github.com/techcabinet/apiserver/types"
)

// memDB is in-memory shared state standing in for the database. The
// repository fakes below are views over it; one mutex guards
// everything, giving the same atomicity contract the SQL store
// provides with its database transactions.
type memDB struct {
	mu           sync.Mutex
	itemSeq      int
	txSeq        int
	items        map[int]*types.Item
	transactions map[int]*types.Transaction
}

func newMemDB() *memDB {
	return &memDB{
		items:        make(map[int]*types.Item),
		transactions: make(map[int]*types.Transaction),
	}
}

func (db *memDB) findItem(name string) (*types.Item, bool) {
	for _, item := range db.items {
		if item.Name == name {
			return item, true
		}
	}
	return nil, false
}

// memItems implements ItemRepository.
type memItems struct {
	db *memDB
}

func (m *memItems) List(_ context.Context) ([]types.Item, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	items := make([]types.Item, 0, len(m.db.items))
	for _, item := range m.db.items {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *memItems) GetByName(_ context.Context, name string) (types.Item, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	item, ok := m.db.findItem(name)
	if !ok {
		return types.Item{}, store.ErrNotFound
	}
	return *item, nil
}

func (m *memItems) Create(_ context.Context, item types.Item) (types.Item, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.findItem(item.Name); ok {
		return types.Item{}, store.ErrDuplicate
	}
	m.db.itemSeq++
	item.ID = m.db.itemSeq
	now := time.Now()
	item.DateIn = now
	item.CreatedAt = now
	m.db.items[item.ID] = &item
	return item, nil
}

func (m *memItems) DeleteByName(_ context.Context, name string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	item, ok := m.db.findItem(name)
	if !ok {
		return store.ErrNotFound
	}
	delete(m.db.items, item.ID)
	for id, tx := range m.db.transactions {
		if tx.ItemID == item.ID {
			delete(m.db.transactions, id)
		}
	}
	return nil
}

func (m *memItems) AdjustQuantity(_ context.Context, name string, delta int) (types.Item, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	item, ok := m.db.findItem(name)
	if !ok {
		return types.Item{}, store.ErrNotFound
	}
	if item.Quantity+delta < 0 {
		return types.Item{}, store.ErrInsufficient
	}
	item.Quantity += delta
	return *item, nil
}

// memTransactions implements TransactionRepository.
type memTransactions struct {
	db *memDB
}

func (m *memTransactions) List(_ context.Context) ([]types.Transaction, error) {
	return m.listWhere(func(*types.Transaction) bool { return true })
}

func (m *memTransactions) ListByUser(_ context.Context, userID int) ([]types.Transaction, error) {
	return m.listWhere(func(tx *types.Transaction) bool { return tx.UserID == userID })
}

func (m *memTransactions) listWhere(keep func(*types.Transaction) bool) ([]types.Transaction, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	transactions := make([]types.Transaction, 0)
	for _, tx := range m.db.transactions {
		if keep(tx) {
			transactions = append(transactions, *tx)
		}
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID < transactions[j].ID })
	return transactions, nil
}

func (m *memTransactions) Reserve(_ context.Context, userID, itemID, quantity int) (types.Transaction, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	item, ok := m.db.items[itemID]
	if !ok {
		return types.Transaction{}, store.ErrNotFound
	}
	if item.Quantity < quantity {
		return types.Transaction{}, store.ErrInsufficient
	}
	item.Quantity -= quantity
	m.db.txSeq++
	tx := types.Transaction{
		ID:                m.db.txSeq,
		UserID:            userID,
		ItemID:            itemID,
		RequestedQuantity: quantity,
		DateRequested:     time.Now(),
	}
	m.db.transactions[tx.ID] = &tx
	return tx, nil
}

func (m *memTransactions) Accept(_ context.Context, id, adminID int) (types.Transaction, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	tx, ok := m.db.transactions[id]
	if !ok || tx.Accepted {
		return types.Transaction{}, store.ErrNotFound
	}
	now := time.Now()
	tx.Accepted = true
	tx.AcceptedBy = &adminID
	tx.DateAccepted = &now
	if item, ok := m.db.items[tx.ItemID]; ok {
		out := now
		item.DateOut = &out
	}
	return *tx, nil
}

func (m *memTransactions) Return(_ context.Context, id int) (types.Transaction, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	tx, ok := m.db.transactions[id]
	if !ok || !tx.Accepted || tx.Returned {
		return types.Transaction{}, store.ErrNotFound
	}
	now := time.Now()
	tx.Returned = true
	tx.DateReturned = &now
	if item, ok := m.db.items[tx.ItemID]; ok {
		item.Quantity += tx.RequestedQuantity
		item.DateIn = now
		item.DateOut = nil
	}
	return *tx, nil
}
