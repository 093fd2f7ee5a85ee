package ledger

import "errors"

var (
	// ErrInvalidInput is returned when a request fails validation before any fact is built
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when no live read row exists for the item
	ErrNotFound = errors.New("item not found")

	// ErrDuplicateItem is returned when creating an item whose read row is already live
	ErrDuplicateItem = errors.New("item already exists")

	// ErrInsufficientStock is returned when a sale exceeds the current quantity
	ErrInsufficientStock = errors.New("insufficient stock")
)
