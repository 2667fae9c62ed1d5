package types

import "time"

// Transaction represents a single checkout of an item by a user.
// It moves through three states: requested (created by a reservation),
// accepted (approved by an admin), and returned (checked back in).
type Transaction struct {
	// ID is the unique identifier of the transaction.
	ID int `json:"id" db:"id"`

	// UserID references the user who requested the checkout.
	UserID int `json:"user_id" db:"user_id"`

	// ItemID references the reserved item.
	ItemID int `json:"item_id" db:"item_id"`

	// AcceptedBy references the admin who approved the checkout.
	// It is nil until the transaction is accepted.
	AcceptedBy *int `json:"accepted_by,omitempty" db:"accepted_by"`

	// RequestedQuantity is the number of units withheld from the item's
	// quantity when the reservation was created. Always positive.
	RequestedQuantity int `json:"requested_quantity" db:"requested_quantity"`

	// Accepted reports whether an admin has approved the checkout.
	Accepted bool `json:"accepted" db:"accepted"`

	// Returned reports whether the item has been checked back in.
	// Only reachable from the accepted state.
	Returned bool `json:"returned" db:"returned"`

	// DateRequested is the timestamp when the reservation was created.
	DateRequested time.Time `json:"date_requested" db:"date_requested"`

	// DateAccepted is the timestamp of admin approval, if any.
	DateAccepted *time.Time `json:"date_accepted,omitempty" db:"date_accepted"`

	// DateReturned is the timestamp of check-in, if any.
	DateReturned *time.Time `json:"date_returned,omitempty" db:"date_returned"`
}
