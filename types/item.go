package types

import "time"

// Item represents a physical item tracked by the cabinet inventory.
type Item struct {
	// ID is the unique identifier of the item.
	ID int `json:"id" db:"id"`

	// Name is the unique, human-readable name of the item.
	Name string `json:"name" db:"name"`

	// Quantity is the number of units currently available for checkout.
	// It is never negative.
	Quantity int `json:"quantity" db:"quantity"`

	// DateIn is the timestamp of the most recent check-in.
	DateIn time.Time `json:"date_in" db:"date_in"`

	// DateOut is the timestamp of the most recent checkout, if any.
	DateOut *time.Time `json:"date_out,omitempty" db:"date_out"`

	// CreatedBy references the admin who created the item, if recorded.
	CreatedBy *int `json:"created_by,omitempty" db:"created_by"`

	// CreatedAt is the timestamp when the item was added to the catalog.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
