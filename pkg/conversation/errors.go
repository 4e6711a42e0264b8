package conversation

import (
	"errors"
	"fmt"
)

var (
	// ErrTimedOut is the result of a conversation whose prompt was not answered in time.
	ErrTimedOut = errors.New("conversation timed out")

	// ErrCancelled is the result of a conversation the actor cancelled.
	ErrCancelled = errors.New("conversation cancelled")

	// ErrSuperseded is the result of a conversation replaced by a newer one in the same guild.
	ErrSuperseded = errors.New("conversation superseded")

	// ErrActorNotified marks a failure the actor has already been told about.
	ErrActorNotified = errors.New("actor notified")

	// ErrInvalidFlow is returned for a flow that cannot be run.
	ErrInvalidFlow = errors.New("invalid flow")

	// ErrUnknownStep is returned when a step hands over to a step the flow does not have.
	ErrUnknownStep = errors.New("unknown step")
)

// ValidationError rejects an input. The step is prompted again with Message
// unless it aborts on invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid creates a ValidationError.
func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AbortError ends the conversation as failed and shows Message to the actor.
type AbortError struct {
	Message string
}

func (e *AbortError) Error() string {
	return e.Message
}

// Abort creates an AbortError.
func Abort(format string, args ...any) error {
	return &AbortError{Message: fmt.Sprintf(format, args...)}
}
