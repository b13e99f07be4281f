package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when a lifecycle transition is attempted
	// from a status that does not permit it. Matched with errors.Is against
	// the typed InvalidStateError.
	ErrInvalidState = errors.New("invalid state transition")

	// ErrNoCopiesAvailable is returned when a reservation is activated for a
	// book with no available copies.
	ErrNoCopiesAvailable = errors.New("no copies available")

	// ErrNoActiveFeeStructure is returned when a fee is assessed for a type
	// with no active fee structure.
	ErrNoActiveFeeStructure = errors.New("no active fee structure")

	// ErrNotFound is returned when an entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrBookingConflict is returned when a facility booking overlaps an
	// existing confirmed booking.
	ErrBookingConflict = errors.New("booking conflict")
)

// InvalidStateError describes an illegal lifecycle transition. It wraps
// ErrInvalidState so callers can match the category without inspecting the
// concrete type.
type InvalidStateError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s cannot transition from %s to %s", e.Entity, e.From, e.To)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// NewInvalidStateError builds an InvalidStateError for the given entity kind.
func NewInvalidStateError(entity, from, to string) error {
	return &InvalidStateError{Entity: entity, From: from, To: to}
}
