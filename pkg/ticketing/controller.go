// Package ticketing runs the life of a ticket: creation from a panel option,
// close requests and closure with a transcript.
package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jacobbrewer1/warden/pkg/clock"
	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/logging"
)

// MaxModalQuestions is how many text inputs fit in a modal.
const MaxModalQuestions = 5

const (
	colorBlue = 0x3498db
	colorRed  = 0xe74c3c
)

const (
	noAnswer        = "No response provided"
	answerInChannel = "Please answer in this channel"
)

// State is where a ticket is in its life.
type State int

const (
	// StateOpen accepts messages.
	StateOpen State = iota

	// StateCloseRequested waits for the creator to confirm a close request.
	StateCloseRequested

	// StateClosed is final.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCloseRequested:
		return "close_requested"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Controller creates and closes tickets.
type Controller struct {
	l        *slog.Logger
	store    Store
	platform Platform
	clock    clock.Clock
	requests *requestTable
}

// NewController creates a new ticket controller.
func NewController(l *slog.Logger, store Store, platform Platform, clk clock.Clock) *Controller {
	return &Controller{
		l:        l,
		store:    store,
		platform: platform,
		clock:    clk,
		requests: newRequestTable(),
	}
}

// Panel returns the named panel of the guild with its options. A panel
// without options returns dataaccess.ErrNoOptions.
func (c *Controller) Panel(ctx context.Context, guildID, name string) (*entities.Panel, []*entities.TicketOption, error) {
	panel, err := c.store.FindPanelByName(ctx, guildID, name)
	if err != nil {
		return nil, nil, err
	}

	options, err := c.store.ListOptions(ctx, panel.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(options) == 0 {
		return nil, nil, dataaccess.ErrNoOptions
	}
	return panel, options, nil
}

// Option returns an option of a panel of the guild.
func (c *Controller) Option(ctx context.Context, guildID string, optionID int64) (*entities.TicketOption, error) {
	option, _, err := c.option(ctx, guildID, optionID)
	return option, err
}

func (c *Controller) option(ctx context.Context, guildID string, optionID int64) (*entities.TicketOption, *entities.Panel, error) {
	option, err := c.store.GetOption(ctx, optionID)
	if err != nil {
		return nil, nil, err
	}

	panel, err := c.store.GetPanel(ctx, option.PanelID)
	if err != nil {
		return nil, nil, err
	}
	if panel.GuildID.String() != guildID {
		return nil, nil, dataaccess.ErrNotFound
	}
	return option, panel, nil
}

// ModalQuestions are the questions of the option asked in the modal.
func ModalQuestions(option *entities.TicketOption) []string {
	if len(option.Questions) > MaxModalQuestions {
		return option.Questions[:MaxModalQuestions]
	}
	return option.Questions
}

// CreateRequest asks for a ticket of an option.
type CreateRequest struct {
	GuildID  string
	User     User
	OptionID int64

	// Answers are the modal answers by question index.
	Answers []string
}

// Create provisions the ticket channel, stores the ticket and posts the
// option embed in it.
func (c *Controller) Create(ctx context.Context, req CreateRequest) (*entities.Ticket, error) {
	option, panel, err := c.option(ctx, req.GuildID, req.OptionID)
	if err != nil {
		return nil, err
	}

	name := channelName(option.Name, req.User.Name)
	channelID, err := c.platform.CreateChannel(ctx, ChannelSpec{
		GuildID:    req.GuildID,
		Name:       name,
		CategoryID: option.CategoryID.String(),
		Topic:      fmt.Sprintf("Ticket created by %s", req.User.Name),
		Overwrites: ticketOverwrites(req.GuildID, req.User.ID, c.platform.BotUserID(), option),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ticket channel: %w", err)
	}

	l := c.l.With(
		slog.String(logging.KeyGuild, req.GuildID),
		slog.String(logging.KeyChannel, channelID),
		slog.String(logging.KeyUser, req.User.ID),
	)

	ticket := &entities.Ticket{
		Name:         name,
		UserID:       custom.Snowflake(req.User.ID),
		ChannelID:    custom.Snowflake(channelID),
		GuildID:      custom.Snowflake(req.GuildID),
		LogChannelID: panel.LogChannelID,
		CreatedAt:    custom.NewDatetime(c.clock.Now()),
	}
	if err := c.store.CreateTicket(ctx, ticket); err != nil {
		if delErr := c.platform.DeleteChannel(ctx, channelID); delErr != nil {
			l.Error("Error deleting orphaned ticket channel", slog.String(logging.KeyError, delErr.Error()))
		}
		return nil, fmt.Errorf("error saving ticket: %w", err)
	}

	TicketsOpened.Inc()
	l = l.With(slog.Int64(logging.KeyTicket, ticket.ID))
	l.Info("Ticket created")

	if err := c.platform.Send(ctx, channelID, c.ticketMessage(option, req)); err != nil {
		l.Error("Error sending ticket embed", slog.String(logging.KeyError, err.Error()))
	}
	return ticket, nil
}

func (c *Controller) ticketMessage(option *entities.TicketOption, req CreateRequest) Message {
	fields := make([]Field, 0, len(option.Questions))
	for i, q := range option.Questions {
		value := answerInChannel
		if i < MaxModalQuestions {
			value = noAnswer
			if i < len(req.Answers) && strings.TrimSpace(req.Answers[i]) != "" {
				value = req.Answers[i]
			}
		}
		fields = append(fields, Field{Name: q, Value: value})
	}

	mentions := make([]string, 0, len(option.RoleIDs))
	for _, r := range option.RoleIDs {
		mentions = append(mentions, "<@&"+r+">")
	}

	return Message{
		Content: strings.Join(mentions, " "),
		Embeds: []Embed{{
			Title:       option.EmbedTitle,
			Description: fmt.Sprintf("%s\nCreated by: %s", option.EmbedDescription, req.User.Mention()),
			Color:       colorBlue,
			Fields:      fields,
			Timestamp:   c.clock.Now(),
		}},
	}
}

// State returns the state of a ticket.
func (c *Controller) State(ctx context.Context, ticketID int64) (State, error) {
	ticket, err := c.store.GetTicket(ctx, ticketID)
	if err != nil {
		return StateOpen, err
	}
	switch {
	case ticket.Closed:
		return StateClosed, nil
	case c.requests.hasTicket(ticketID):
		return StateCloseRequested, nil
	default:
		return StateOpen, nil
	}
}

// openTicket returns the open ticket of a channel.
func (c *Controller) openTicket(ctx context.Context, channelID string) (*entities.Ticket, error) {
	ticket, err := c.store.FindOpenTicketByChannel(ctx, channelID)
	if errors.Is(err, dataaccess.ErrNotFound) {
		return nil, ErrNotTicketChannel
	} else if err != nil {
		return nil, err
	}
	return ticket, nil
}
