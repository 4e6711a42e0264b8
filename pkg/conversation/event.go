package conversation

import (
	"fmt"
	"strconv"
	"strings"
)

// componentPrefix starts every custom id owned by a conversation prompt.
const componentPrefix = "conv"

// CancelWord cancels the conversation when sent at a text prompt.
const CancelWord = "cancel"

// EventKind is the kind of an incoming event.
type EventKind int

const (
	// EventMessage is a text message posted in a channel.
	EventMessage EventKind = iota

	// EventComponent is a click on a button or a select menu choice.
	EventComponent
)

// Event is an input from the platform for the conversation of a guild.
type Event struct {
	Kind      EventKind
	GuildID   string
	UserID    string
	ChannelID string

	// Text is the message content of an EventMessage.
	Text string

	// Roles are the role ids an EventMessage mentions, as resolved by the platform.
	Roles []string

	// Ref and Value are decoded from the custom id of an EventComponent.
	Ref   Ref
	Value string
}

// Input is what a step handler receives.
type Input struct {
	// Text is the trimmed message of a text prompt.
	Text string

	// Roles are the role ids the message mentions.
	Roles []string

	// Value is the chosen value of a button or select prompt.
	Value string
}

// ComponentID encodes the custom id of a prompt component: conv:<id>:<seq>[:<value>].
func ComponentID(ref Ref, value string) string {
	id := fmt.Sprintf("%s:%s:%d", componentPrefix, ref.Conversation, ref.Seq)
	if value != "" {
		id += ":" + value
	}
	return id
}

// ParseComponentID decodes a custom id created by ComponentID.
func ParseComponentID(customID string) (ref Ref, value string, ok bool) {
	parts := strings.SplitN(customID, ":", 4)
	if len(parts) < 3 || parts[0] != componentPrefix || parts[1] == "" {
		return Ref{}, "", false
	}

	seq, err := strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return Ref{}, "", false
	}

	if len(parts) == 4 {
		value = parts[3]
	}
	return Ref{Conversation: parts[1], Seq: seq}, value, true
}

// IsComponentID reports whether customID belongs to a conversation prompt.
func IsComponentID(customID string) bool {
	return strings.HasPrefix(customID, componentPrefix+":")
}
