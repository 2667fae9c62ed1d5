package services

import (
	"context"
	"errors"
	"testing"
)

func newInventoryFixture(t *testing.T) (*InventoryService, *memDB) {
	t.Helper()
	db := newMemDB()
	return NewInventoryService(&memItems{db: db}), db
}

func TestCreateItemRejectsNegativeQuantity(t *testing.T) {
	inventory, _ := newInventoryFixture(t)

	if _, err := inventory.Create(context.Background(), 1, "webcam", -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("got %v, want ErrInvalidQuantity", err)
	}
}

func TestCreateItemDuplicateName(t *testing.T) {
	inventory, _ := newInventoryFixture(t)

	if _, err := inventory.Create(context.Background(), 1, "webcam", 2); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := inventory.Create(context.Background(), 1, "webcam", 5); !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("got %v, want ErrDuplicateItem", err)
	}
}

func TestCreateItemRecordsCreator(t *testing.T) {
	inventory, db := newInventoryFixture(t)

	if _, err := inventory.Create(context.Background(), 42, "monitor", 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	item := db.items[1]
	if item.CreatedBy == nil || *item.CreatedBy != 42 {
		t.Fatalf("creator not recorded: %+v", item)
	}
	if item.DateIn.IsZero() {
		t.Fatalf("date_in not set on creation")
	}
}

func TestDeleteItemMissing(t *testing.T) {
	inventory, _ := newInventoryFixture(t)

	if _, err := inventory.Delete(context.Background(), "ghost"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("got %v, want ErrItemNotFound", err)
	}
}

func TestDeleteItemCascadesTransactions(t *testing.T) {
	db := newMemDB()
	items := &memItems{db: db}
	inventory := NewInventoryService(items)
	checkout := NewCheckoutService(&memTransactions{db: db}, items)
	ctx := context.Background()

	if _, err := inventory.Create(ctx, 1, "drone", 2); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := checkout.Reserve(ctx, 1, "drone", 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if _, err := inventory.Delete(ctx, "drone"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(db.transactions) != 0 {
		t.Fatalf("delete left %d orphaned transactions", len(db.transactions))
	}
}

func TestAdjustQuantity(t *testing.T) {
	inventory, _ := newInventoryFixture(t)
	ctx := context.Background()

	if _, err := inventory.Create(ctx, 1, "battery pack", 2); err != nil {
		t.Fatalf("create: %v", err)
	}

	item, err := inventory.Adjust(ctx, "battery pack", 3)
	if err != nil {
		t.Fatalf("adjust up: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("quantity after restock: got %d, want 5", item.Quantity)
	}

	if _, err := inventory.Adjust(ctx, "battery pack", -6); !errors.Is(err, ErrInsufficientInventory) {
		t.Fatalf("underflow adjust: got %v, want ErrInsufficientInventory", err)
	}
	item, err = inventory.Adjust(ctx, "battery pack", -5)
	if err != nil {
		t.Fatalf("adjust to zero: %v", err)
	}
	if item.Quantity != 0 {
		t.Fatalf("quantity after write-off: got %d, want 0", item.Quantity)
	}

	if _, err := inventory.Adjust(ctx, "ghost", 1); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("adjust missing item: got %v, want ErrItemNotFound", err)
	}
}
