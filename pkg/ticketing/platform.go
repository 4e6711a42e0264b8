package ticketing

import (
	"context"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/entities"
)

// Permission bits, equal to the Discord values.
const (
	PermissionViewChannel int64 = 1 << 10

	PermissionSendMessages int64 = 1 << 11
)

// OverwriteKind is what an overwrite applies to.
type OverwriteKind int

const (
	// OverwriteRole applies to a role. The @everyone role has the guild id.
	OverwriteRole OverwriteKind = iota

	// OverwriteMember applies to a single member.
	OverwriteMember
)

// Overwrite is a channel permission overwrite.
type Overwrite struct {
	ID    string
	Kind  OverwriteKind
	Allow int64
	Deny  int64
}

// User is the platform user taking part in a ticket.
type User struct {
	ID   string
	Name string
}

// Mention is how the user is mentioned in a message.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// ChannelSpec describes a ticket channel to provision.
type ChannelSpec struct {
	GuildID    string
	Name       string
	CategoryID string
	Topic      string
	Overwrites []Overwrite
}

// Field is one embed field.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich message block.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Timestamp   time.Time
}

// Button is a clickable component.
type Button struct {
	Label    string
	CustomID string
}

// File is an attachment.
type File struct {
	Name    string
	Content []byte
}

// Message is what the controller posts.
type Message struct {
	Content string
	Embeds  []Embed
	Buttons []Button
	Files   []File
}

// HistoryEntry is one message of a channel history.
type HistoryEntry struct {
	Timestamp   time.Time
	Author      string
	Content     string
	Attachments []string
}

// Platform is the chat platform the controller drives.
type Platform interface {
	// BotUserID is the user id of the bot itself.
	BotUserID() string

	// GuildName returns the display name of the guild.
	GuildName(ctx context.Context, guildID string) (string, error)

	// CreateChannel provisions a text channel and returns its id.
	CreateChannel(ctx context.Context, spec ChannelSpec) (string, error)

	// DeleteChannel removes a channel.
	DeleteChannel(ctx context.Context, channelID string) error

	// Send posts a message in a channel.
	Send(ctx context.Context, channelID string, msg Message) error

	// SendDM posts a message to the user's direct messages.
	SendDM(ctx context.Context, userID string, msg Message) error

	// History returns every message of the channel, oldest first.
	History(ctx context.Context, channelID string) ([]HistoryEntry, error)
}

// Store is the persistence the controller reads and writes.
type Store interface {
	FindPanelByName(ctx context.Context, guildID, name string) (*entities.Panel, error)
	GetPanel(ctx context.Context, id int64) (*entities.Panel, error)
	ListOptions(ctx context.Context, panelID int64) ([]*entities.TicketOption, error)
	GetOption(ctx context.Context, id int64) (*entities.TicketOption, error)

	CreateTicket(ctx context.Context, ticket *entities.Ticket) error
	FindOpenTicketByChannel(ctx context.Context, channelID string) (*entities.Ticket, error)
	GetTicket(ctx context.Context, id int64) (*entities.Ticket, error)
	CloseTicket(ctx context.Context, id int64, reason, transcript string, closedAt time.Time) error
}
