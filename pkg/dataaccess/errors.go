package dataaccess

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicatePanel is returned when a guild already has a panel with the same name.
	ErrDuplicatePanel = errors.New("a panel with this name already exists")

	// ErrNoOptions is returned when a panel would be stored without options.
	ErrNoOptions = errors.New("a panel needs at least one ticket option")

	// ErrTicketExists is returned when a channel already has an open ticket.
	ErrTicketExists = errors.New("the channel already has an open ticket")

	// ErrTicketClosed is returned when closing a ticket that is already closed.
	ErrTicketClosed = errors.New("the ticket is already closed")

	// ErrStorage wraps every failure of the database itself. These are retryable.
	ErrStorage = errors.New("storage failure")
)

// storageError wraps a driver error so that it matches ErrStorage.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
