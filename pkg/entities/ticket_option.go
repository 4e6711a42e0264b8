package entities

import (
	"strings"

	"github.com/Jacobbrewer1/warden/pkg/custom"
)

// TicketOption is one selectable ticket category of a panel.
type TicketOption struct {
	// ID is the ID of the option.
	ID int64 `json:"id" bson:"id" gorm:"column:id;primaryKey;autoIncrement"`

	// PanelID is the ID of the panel that owns the option.
	PanelID int64 `json:"panel_id" bson:"-" gorm:"column:panel_id"`

	// Name is the name shown in the panel menu.
	Name string `json:"option_name" bson:"option_name" gorm:"column:option_name"`

	// RoleIDs are the roles that can see tickets of this option.
	RoleIDs custom.CommaList `json:"roles" bson:"roles" gorm:"column:roles"`

	// CategoryID is the category that ticket channels are created in.
	CategoryID custom.Snowflake `json:"category_id" bson:"category_id" gorm:"column:category_id"`

	// EmbedTitle is the title of the embed posted in a new ticket.
	EmbedTitle string `json:"embed_title" bson:"embed_title" gorm:"column:embed_title"`

	// EmbedDescription is the description of the embed posted in a new ticket.
	EmbedDescription string `json:"embed_description" bson:"embed_description" gorm:"column:embed_description"`

	// Questions are asked, in order, when a ticket is opened.
	Questions custom.CommaList `json:"ticket_question" bson:"ticket_question" gorm:"column:ticket_question"`
}

// TableName implements the gorm tabler interface.
func (*TicketOption) TableName() string {
	return "ticket_options"
}

// Validate checks the fields that must be present before the option is stored.
func (o *TicketOption) Validate() error {
	switch {
	case strings.TrimSpace(o.Name) == "":
		return newFieldError("option_name")
	case o.CategoryID.IsZero():
		return newFieldError("category_id")
	case strings.TrimSpace(o.EmbedTitle) == "":
		return newFieldError("embed_title")
	case strings.TrimSpace(o.EmbedDescription) == "":
		return newFieldError("embed_description")
	}

	for _, q := range o.Questions {
		if strings.Contains(q, ",") {
			return newFieldError("ticket_question")
		}
	}
	return nil
}
