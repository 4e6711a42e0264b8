package entities

import (
	"strings"

	"github.com/Jacobbrewer1/warden/pkg/custom"
)

// DefaultEmbedColor is the colour used for panel embeds (Discord blurple blue).
const DefaultEmbedColor = 0x3498db

// Panel is a named ticket menu in a guild.
type Panel struct {
	// ID is the ID of the panel.
	ID int64 `json:"id" bson:"id" gorm:"column:id;primaryKey;autoIncrement"`

	// Name is the name of the panel. It is unique within a guild.
	Name string `json:"panel_name" bson:"panel_name" gorm:"column:panel_name"`

	// CategoryID is the optional default category for tickets.
	CategoryID custom.Snowflake `json:"category_id" bson:"category_id" gorm:"column:category_id"`

	// LogChannelID is the optional channel that closed tickets are logged to.
	LogChannelID custom.Snowflake `json:"log_channel_id" bson:"log_channel_id" gorm:"column:log_channel_id"`

	// GuildID is the ID of the guild that owns the panel.
	GuildID custom.Snowflake `json:"guild_id" bson:"guild_id" gorm:"column:guild_id"`

	// EmbedTitle is the title of the panel embed.
	EmbedTitle string `json:"embed_title" bson:"embed_title" gorm:"column:embed_title"`

	// EmbedDescription is the description of the panel embed.
	EmbedDescription string `json:"embed_description" bson:"embed_description" gorm:"column:embed_description"`

	// EmbedColor is the decimal colour of the panel embed.
	EmbedColor string `json:"embed_color" bson:"embed_color" gorm:"column:embed_color"`
}

// TableName implements the gorm tabler interface.
func (*Panel) TableName() string {
	return "panels"
}

// Validate checks the fields that must be present before the panel is stored.
func (p *Panel) Validate() error {
	switch {
	case p.GuildID.IsZero():
		return newFieldError("guild_id")
	case strings.TrimSpace(p.Name) == "":
		return newFieldError("panel_name")
	case strings.TrimSpace(p.EmbedTitle) == "":
		return newFieldError("embed_title")
	case strings.TrimSpace(p.EmbedDescription) == "":
		return newFieldError("embed_description")
	}
	return nil
}
