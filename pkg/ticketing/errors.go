package ticketing

import "errors"

var (
	// ErrNotTicketChannel is returned when a channel has no open ticket.
	ErrNotTicketChannel = errors.New("not an active ticket channel")

	// ErrRequestExpired is returned for a close request that is unknown, used or lapsed.
	ErrRequestExpired = errors.New("close request expired")

	// ErrInvalidHours is returned for a close request delay outside 0 to MaxCloseHours.
	ErrInvalidHours = errors.New("invalid close request hours")

	// ErrNotCreator is returned when someone other than the creator confirms a close request.
	ErrNotCreator = errors.New("only the ticket creator can confirm")
)
