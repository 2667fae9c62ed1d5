package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("already exists")

// ErrInsufficient is returned when a conditional quantity update would
// drive an item's quantity negative.
var ErrInsufficient = errors.New("insufficient quantity")
