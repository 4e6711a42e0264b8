package entities

import (
	"github.com/Jacobbrewer1/warden/pkg/custom"
)

// Ticket is one support conversation held in its own channel.
type Ticket struct {
	// ID is the ID of the ticket.
	ID int64 `json:"id" bson:"id" gorm:"column:id;primaryKey;autoIncrement"`

	// Name is the name of the ticket channel when it was created.
	Name string `json:"ticket_name" bson:"ticket_name" gorm:"column:ticket_name"`

	// UserID is the ID of the user that created the ticket.
	UserID custom.Snowflake `json:"user_id" bson:"user_id" gorm:"column:user_id"`

	// ChannelID is the ID of the channel that the ticket is in.
	ChannelID custom.Snowflake `json:"channel_id" bson:"channel_id" gorm:"column:channel_id"`

	// GuildID is the ID of the guild that the ticket is in.
	GuildID custom.Snowflake `json:"guild_id" bson:"guild_id" gorm:"column:guild_id"`

	// LogChannelID is a copy of the panel's log channel taken when the ticket was created.
	LogChannelID custom.Snowflake `json:"log_channel_id" bson:"log_channel_id" gorm:"column:log_channel_id"`

	// Closed is whether the ticket has been closed.
	Closed bool `json:"closed" bson:"closed" gorm:"column:closed"`

	// Transcript is the rendered channel history, captured on close.
	Transcript string `json:"transcript" bson:"transcript" gorm:"column:transcript"`

	// Reason is the reason given for closing the ticket.
	Reason string `json:"reason" bson:"reason" gorm:"column:reason"`

	// CreatedAt is the time that the ticket was created.
	CreatedAt custom.Datetime `json:"created_at" bson:"created_at" gorm:"column:created_at;autoCreateTime:false"`

	// ClosedAt is the time that the ticket was closed.
	ClosedAt *custom.Datetime `json:"closed_at" bson:"closed_at" gorm:"column:closed_at"`
}

// TableName implements the gorm tabler interface.
func (*Ticket) TableName() string {
	return "tickets"
}
