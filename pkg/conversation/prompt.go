package conversation

import (
	"context"
	"time"
)

// DefaultTextTimeout is how long a text prompt waits for a reply.
const DefaultTextTimeout = 300 * time.Second

// DefaultChoiceTimeout is how long a button or select prompt waits for a click.
const DefaultChoiceTimeout = 180 * time.Second

// Style is how the actor answers a prompt.
type Style int

const (
	// StyleText expects a free text message in the channel.
	StyleText Style = iota

	// StyleButtons expects a click on one of the choices.
	StyleButtons

	// StyleSelect expects one choice from a select menu.
	StyleSelect
)

func (s Style) String() string {
	switch s {
	case StyleText:
		return "text"
	case StyleButtons:
		return "buttons"
	case StyleSelect:
		return "select"
	default:
		return "unknown"
	}
}

// Choice is one button or select entry of a prompt.
type Choice struct {
	Label string
	Value string

	// Emphasis marks the choice as the primary action.
	Emphasis bool
}

// Prompt describes what to show the actor. It carries no platform types, the
// Messenger decides how it is rendered.
type Prompt struct {
	Title   string
	Text    string
	Style   Style
	Choices []Choice

	// Timeout overrides the default wait for this prompt.
	Timeout time.Duration
}

func (p Prompt) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	if p.Style == StyleText {
		return DefaultTextTimeout
	}
	return DefaultChoiceTimeout
}

// Ref identifies one displayed prompt of a conversation. Component events
// must carry the Ref of the prompt currently displayed.
type Ref struct {
	Conversation string
	Seq          int
}

// Messenger delivers prompts and notices to the actor.
type Messenger interface {
	// SendPrompt shows p in the channel. Components must be encoded with ComponentID.
	SendPrompt(ctx context.Context, channelID string, ref Ref, p Prompt) error

	// SendNotice posts plain text in the channel.
	SendNotice(ctx context.Context, channelID, text string) error
}

// Static returns a prompt func that always shows p.
func Static[D any](p Prompt) func(context.Context, *D) (Prompt, error) {
	return func(context.Context, *D) (Prompt, error) {
		return p, nil
	}
}
