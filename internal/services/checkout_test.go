package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/techcabinet/apiserver/types"
)

func newCheckoutFixture(t *testing.T) (*CheckoutService, *InventoryService, *memDB) {
	t.Helper()
	db := newMemDB()
	items := &memItems{db: db}
	transactions := &memTransactions{db: db}
	return NewCheckoutService(transactions, items), NewInventoryService(items), db
}

func mustCreateItem(t *testing.T, inventory *InventoryService, name string, quantity int) {
	t.Helper()
	if _, err := inventory.Create(context.Background(), 0, name, quantity); err != nil {
		t.Fatalf("create item %q: %v", name, err)
	}
}

func itemQuantity(t *testing.T, inventory *InventoryService, name string) int {
	t.Helper()
	items, err := inventory.List(context.Background())
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	for _, item := range items {
		if item.Name == name {
			return item.Quantity
		}
	}
	t.Fatalf("item %q not found", name)
	return 0
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	checkout, inventory, _ := newCheckoutFixture(t)
	mustCreateItem(t, inventory, "multimeter", 3)

	for _, quantity := range []int{0, -1} {
		if _, err := checkout.Reserve(context.Background(), 1, "multimeter", quantity); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("reserve quantity %d: got %v, want ErrInvalidQuantity", quantity, err)
		}
	}
	if got := itemQuantity(t, inventory, "multimeter"); got != 3 {
		t.Fatalf("quantity changed on rejected reserve: got %d, want 3", got)
	}
}

func TestReserveUnknownItem(t *testing.T) {
	checkout, _, _ := newCheckoutFixture(t)

	if _, err := checkout.Reserve(context.Background(), 1, "hoverboard", 1); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("got %v, want ErrItemNotFound", err)
	}
}

func TestReserveInsufficientInventoryLeavesStateUnchanged(t *testing.T) {
	checkout, inventory, db := newCheckoutFixture(t)
	mustCreateItem(t, inventory, "oscilloscope", 3)

	if _, err := checkout.Reserve(context.Background(), 1, "oscilloscope", 5); !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("got %v, want ErrInsufficientInventory", err)
	}

	if got := itemQuantity(t, inventory, "oscilloscope"); got != 3 {
		t.Fatalf("quantity after failed reserve: got %d, want 3", got)
	}
	if len(db.transactions) != 0 {
		t.Fatalf("failed reserve left %d transactions behind", len(db.transactions))
	}
}

func TestReserveDecrementsAndRecordsTransaction(t *testing.T) {
	checkout, inventory, _ := newCheckoutFixture(t)
	mustCreateItem(t, inventory, "soldering iron", 4)

	items, err := checkout.Reserve(context.Background(), 7, "soldering iron", 3)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("unexpected item list after reserve: %+v", items)
	}

	transactions, err := checkout.ListFor(context.Background(), types.LevelAdmin, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("got %d transactions, want 1", len(transactions))
	}
	tx := transactions[0]
	if tx.UserID != 7 || tx.RequestedQuantity != 3 || tx.Accepted || tx.Returned {
		t.Fatalf("unexpected transaction state: %+v", tx)
	}
	if tx.DateRequested.IsZero() {
		t.Fatalf("date_requested not set")
	}
}

func TestAcceptThenReturnRestoresQuantity(t *testing.T) {
	checkout, inventory, _ := newCheckoutFixture(t)
	mustCreateItem(t, inventory, "raspberry pi", 5)

	if _, err := checkout.Reserve(context.Background(), 1, "raspberry pi", 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	transactions, err := checkout.Accept(context.Background(), 99, 1)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !transactions[0].Accepted || transactions[0].AcceptedBy == nil || *transactions[0].AcceptedBy != 99 {
		t.Fatalf("unexpected transaction after accept: %+v", transactions[0])
	}

	transactions, err = checkout.Return(context.Background(), 1)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if !transactions[0].Returned || transactions[0].DateReturned == nil {
		t.Fatalf("unexpected transaction after return: %+v", transactions[0])
	}

	if got := itemQuantity(t, inventory, "raspberry pi"); got != 5 {
		t.Fatalf("round trip did not restore quantity: got %d, want 5", got)
	}
}

func TestReturnBeforeAcceptFails(t *testing.T) {
	checkout, inventory, _ := newCheckoutFixture(t)
	mustCreateItem(t, inventory, "ethernet cable", 2)

	if _, err := checkout.Reserve(context.Background(), 1, "ethernet cable", 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if _, err := checkout.Return(context.Background(), 1); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("return before accept: got %v, want ErrTransactionNotFound", err)
	}
	if got := itemQuantity(t, inventory, "ethernet cable"); got != 1 {
		t.Fatalf("failed return mutated quantity: got %d, want 1", got)
	}
}

func TestDoubleAcceptFails(t *testing.T) {
	checkout, inventory, _ := newCheckoutFixture(t)
	mustCreateItem(t, inventory, "projector", 1)

	if _, err := checkout.Reserve(context.Background(), 1, "projector", 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := checkout.Accept(context.Background(), 99, 1); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := checkout.Accept(context.Background(), 99, 1); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("second accept: got %v, want ErrTransactionNotFound", err)
	}
}

func TestDoubleReturnFails(t *testing.T) {
	checkout, inventory, _ := newCheckoutFixture(t)
	mustCreateItem(t, inventory, "hdmi cable", 2)

	if _, err := checkout.Reserve(context.Background(), 1, "hdmi cable", 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := checkout.Accept(context.Background(), 99, 1); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := checkout.Return(context.Background(), 1); err != nil {
		t.Fatalf("first return: %v", err)
	}
	if _, err := checkout.Return(context.Background(), 1); !errors.Is(err, ErrTransactionNotFound) {
		t.Fatalf("second return: got %v, want ErrTransactionNotFound", err)
	}
	if got := itemQuantity(t, inventory, "hdmi cable"); got != 2 {
		t.Fatalf("double return inflated quantity: got %d, want 2", got)
	}
}

func TestConcurrentReservationsNeverOversell(t *testing.T) {
	checkout, inventory, _ := newCheckoutFixture(t)

	const stock = 5
	const callers = 8
	mustCreateItem(t, inventory, "laptop", stock)

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, err := checkout.Reserve(context.Background(), userID, "laptop", 1)
			results <- err
		}(i + 1)
	}
	wg.Wait()
	close(results)

	var succeeded, insufficient int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientInventory):
			insufficient++
		default:
			t.Fatalf("unexpected reserve error: %v", err)
		}
	}

	if succeeded != stock {
		t.Fatalf("got %d successful reservations, want %d", succeeded, stock)
	}
	if insufficient != callers-stock {
		t.Fatalf("got %d insufficient failures, want %d", insufficient, callers-stock)
	}
	if got := itemQuantity(t, inventory, "laptop"); got != 0 {
		t.Fatalf("final quantity: got %d, want 0", got)
	}
}

func TestListForFiltersByCaller(t *testing.T) {
	checkout, inventory, _ := newCheckoutFixture(t)
	mustCreateItem(t, inventory, "keyboard", 10)

	if _, err := checkout.Reserve(context.Background(), 1, "keyboard", 1); err != nil {
		t.Fatalf("reserve as user 1: %v", err)
	}
	if _, err := checkout.Reserve(context.Background(), 2, "keyboard", 1); err != nil {
		t.Fatalf("reserve as user 2: %v", err)
	}

	all, err := checkout.ListFor(context.Background(), types.LevelAdmin, 99)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin sees %d transactions, want 2", len(all))
	}

	own, err := checkout.ListFor(context.Background(), types.LevelRegular, 1)
	if err != nil {
		t.Fatalf("regular list: %v", err)
	}
	if len(own) != 1 || own[0].UserID != 1 {
		t.Fatalf("regular user sees %+v, want only their own", own)
	}

	anonymous, err := checkout.ListFor(context.Background(), types.LevelAnonymous, 0)
	if err != nil {
		t.Fatalf("anonymous list: %v", err)
	}
	if len(anonymous) != 0 {
		t.Fatalf("anonymous sees %d transactions, want 0", len(anonymous))
	}
}

// The full lifecycle: create, reserve, accept, return, with the
// quantity and date bookkeeping checked at each step.
func TestCheckoutLifecycle(t *testing.T) {
	checkout, inventory, _ := newCheckoutFixture(t)
	ctx := context.Background()

	mustCreateItem(t, inventory, "potato", 3)

	items, err := checkout.Reserve(ctx, 1, "potato", 1)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if items[0].Quantity != 2 {
		t.Fatalf("quantity after reserve: got %d, want 2", items[0].Quantity)
	}

	own, err := checkout.ListFor(ctx, types.LevelRegular, 1)
	if err != nil {
		t.Fatalf("list own transactions: %v", err)
	}
	if len(own) != 1 || own[0].Accepted || own[0].Returned {
		t.Fatalf("expected one requested transaction, got %+v", own)
	}

	if _, err := checkout.Accept(ctx, 2, own[0].ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	itemList, err := inventory.List(ctx)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if itemList[0].DateOut == nil {
		t.Fatalf("date_out not set after accept")
	}

	if _, err := checkout.Return(ctx, own[0].ID); err != nil {
		t.Fatalf("return: %v", err)
	}
	if got := itemQuantity(t, inventory, "potato"); got != 3 {
		t.Fatalf("quantity after return: got %d, want 3", got)
	}
}
