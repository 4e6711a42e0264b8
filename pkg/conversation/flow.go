package conversation

import (
	"context"
	"fmt"
)

// Done is returned by a step handler to commit the draft.
const Done = "done"

// RetryPolicy decides what happens when a step rejects its input.
type RetryPolicy int

const (
	// RetryOnInvalid prompts the step again with the validation message.
	RetryOnInvalid RetryPolicy = iota

	// AbortOnInvalid fails the conversation.
	AbortOnInvalid
)

// Actor identifies who a conversation talks to and where.
type Actor struct {
	GuildID   string
	UserID    string
	ChannelID string
}

// Step is one question of a flow.
type Step[D any] struct {
	// ID names the step. Handlers return it to move here.
	ID string

	// Phase groups steps for reporting.
	Phase string

	// Prompt builds what the actor is shown.
	Prompt func(ctx context.Context, d *D) (Prompt, error)

	// Handle validates the input, writes it into the draft and returns the next
	// step id or Done.
	Handle func(ctx context.Context, d *D, in Input) (string, error)

	OnInvalid RetryPolicy
}

// Messages are the notices a flow sends when it ends without committing.
type Messages struct {
	TimedOut     string
	Cancelled    string
	Superseded   string
	CommitFailed string
	Failed       string
}

// Flow is a step graph that fills a draft D and commits it.
type Flow[D any] struct {
	Name  string
	Start string
	Steps []Step[D]

	// NewDraft creates the draft of a new conversation.
	NewDraft func(actor Actor) *D

	// Commit persists the draft. The returned text is sent to the actor.
	Commit func(ctx context.Context, actor Actor, d *D) (string, error)

	Messages Messages
}

func (f *Flow[D]) index() (map[string]*Step[D], error) {
	if f.NewDraft == nil || f.Commit == nil {
		return nil, fmt.Errorf("%w: %s needs NewDraft and Commit", ErrInvalidFlow, f.Name)
	}

	steps := make(map[string]*Step[D], len(f.Steps))
	for i := range f.Steps {
		s := &f.Steps[i]
		switch {
		case s.ID == "" || s.ID == Done:
			return nil, fmt.Errorf("%w: %s has a step with id %q", ErrInvalidFlow, f.Name, s.ID)
		case s.Prompt == nil || s.Handle == nil:
			return nil, fmt.Errorf("%w: step %s needs Prompt and Handle", ErrInvalidFlow, s.ID)
		}
		if _, ok := steps[s.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate step %s", ErrInvalidFlow, s.ID)
		}
		steps[s.ID] = s
	}

	if _, ok := steps[f.Start]; !ok {
		return nil, fmt.Errorf("%w: start step %q not found", ErrInvalidFlow, f.Start)
	}
	return steps, nil
}
