package services

import "errors"

// Failure reasons surfaced by the inventory and checkout services.
// Handlers map these to HTTP statuses; none of them leaves partial
// state behind.
var (
	// ErrInvalidQuantity rejects non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrDuplicateItem rejects creating an item whose name is taken.
	ErrDuplicateItem = errors.New("item already exists")

	// ErrItemNotFound reports a missing item.
	ErrItemNotFound = errors.New("item not found")

	// ErrInsufficientInventory rejects a reservation larger than the
	// item's available quantity.
	ErrInsufficientInventory = errors.New("item not available")

	// ErrAccountRequired rejects a first-time reservation that did not
	// carry enough detail to create the account.
	ErrAccountRequired = errors.New("account details required")

	// ErrAuthenticationRequired rejects a known identity presenting no
	// valid token.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrAdminRequired rejects a non-admin calling an admin operation.
	ErrAdminRequired = errors.New("admin access required")

	// ErrTransactionNotFound reports a transaction that is absent or
	// not in the state the transition expects.
	ErrTransactionNotFound = errors.New("transaction not found")
)
