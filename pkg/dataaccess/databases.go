package dataaccess

import (
	"context"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/entities"
)

const (
	// BackendSQL is the label used for the gorm backed store.
	BackendSQL = "sql"

	// BackendMongo is the label used for the mongo backed store.
	BackendMongo = "mongo"
)

// PanelDal is the data access layer for panels and their ticket options.
type PanelDal interface {
	// CreatePanel saves a panel and all of its options as one unit.
	CreatePanel(ctx context.Context, panel *entities.Panel, options []*entities.TicketOption) error

	// AddOption appends an option to an existing panel.
	AddOption(ctx context.Context, panelID int64, option *entities.TicketOption) error

	// FindPanelByName gets a panel of a guild by name.
	FindPanelByName(ctx context.Context, guildID, name string) (*entities.Panel, error)

	// GetPanel gets a panel by ID.
	GetPanel(ctx context.Context, id int64) (*entities.Panel, error)

	// ListPanels gets every panel of a guild, ordered by name.
	ListPanels(ctx context.Context, guildID string) ([]*entities.Panel, error)

	// ListOptions gets the options of a panel in the order they were added.
	ListOptions(ctx context.Context, panelID int64) ([]*entities.TicketOption, error)

	// GetOption gets an option by ID.
	GetOption(ctx context.Context, id int64) (*entities.TicketOption, error)

	// UpdatePanel saves the editable fields of a panel.
	UpdatePanel(ctx context.Context, panel *entities.Panel) error

	// DeletePanel deletes a panel and its options.
	DeletePanel(ctx context.Context, id int64) error

	// DeleteAllPanels deletes every panel of a guild and their options.
	DeleteAllPanels(ctx context.Context, guildID string) (int64, error)
}

// TicketDal is the data access layer for tickets.
type TicketDal interface {
	// CreateTicket saves a new open ticket.
	CreateTicket(ctx context.Context, ticket *entities.Ticket) error

	// FindOpenTicketByChannel gets the open ticket of a channel.
	FindOpenTicketByChannel(ctx context.Context, channelID string) (*entities.Ticket, error)

	// GetTicket gets a ticket by ID.
	GetTicket(ctx context.Context, id int64) (*entities.Ticket, error)

	// CloseTicket marks an open ticket as closed.
	CloseTicket(ctx context.Context, id int64, reason, transcript string, closedAt time.Time) error
}

// Store is the persistence used by the bot.
type Store interface {
	PanelDal
	TicketDal

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases the database connection.
	Close() error

	// Backend returns BackendSQL or BackendMongo.
	Backend() string
}

// store composes the DALs of a backend into a Store.
type store struct {
	PanelDal
	TicketDal

	backend string
	ping    func(ctx context.Context) error
	close   func() error
}

func (s *store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *store) Close() error {
	return s.close()
}

func (s *store) Backend() string {
	return s.backend
}
