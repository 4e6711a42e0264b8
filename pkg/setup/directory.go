package setup

import (
	"context"

	"github.com/Jacobbrewer1/warden/pkg/entities"
)

// Channel is a guild channel offered as a choice.
type Channel struct {
	ID   string
	Name string
}

// Directory answers questions about the guild being configured.
type Directory interface {
	// Categories lists the channel categories of the guild in display order.
	Categories(ctx context.Context, guildID string) ([]Channel, error)

	// IsTextChannel reports whether channelID is a text channel of the guild.
	IsTextChannel(ctx context.Context, guildID, channelID string) (bool, error)
}

// Store is the persistence the wizard writes to.
type Store interface {
	FindPanelByName(ctx context.Context, guildID, name string) (*entities.Panel, error)
	CreatePanel(ctx context.Context, panel *entities.Panel, options []*entities.TicketOption) error
	UpdatePanel(ctx context.Context, panel *entities.Panel) error
}
