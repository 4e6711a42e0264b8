package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/discord"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"github.com/Jacobbrewer1/warden/pkg/messages"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
)

const (
	optionPanelName = "panel_name"

	optionClearType = "clear_type"

	optionReason = "reason"

	optionHours = "hours"
)

const (
	clearSingle = "single"

	clearAll = "all"
)

// maxAutocompleteChoices is how many suggestions discord shows.
const maxAutocompleteChoices = 25

// minCloseHours is the lower bound of the hours option.
var minCloseHours float64

// adminPermission hides administrator commands from other members by default.
var adminPermission int64 = discordgo.PermissionAdministrator

var (
	sendPanelCmd = &discordgo.ApplicationCommand{
		Name:                     "send_panel",
		Type:                     discordgo.ChatApplicationCommand,
		Description:              "Send a ticket panel in the current channel",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         optionPanelName,
				Type:         discordgo.ApplicationCommandOptionString,
				Description:  "The panel to send",
				Required:     true,
				Autocomplete: true,
			},
		},
	}

	clearPanelsCmd = &discordgo.ApplicationCommand{
		Name:                     "clear_panels",
		Type:                     discordgo.ChatApplicationCommand,
		Description:              "Clear ticket panels",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        optionClearType,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "Clear a single panel or all panels",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Single Panel", Value: clearSingle},
					{Name: "All Panels", Value: clearAll},
				},
			},
			{
				Name:         optionPanelName,
				Type:         discordgo.ApplicationCommandOptionString,
				Description:  "The panel to clear",
				Autocomplete: true,
			},
		},
	}

	setupPanelCmd = &discordgo.ApplicationCommand{
		Name:                     "setup_ticket_panel",
		Type:                     discordgo.ChatApplicationCommand,
		Description:              "Setup a new ticket panel",
		DefaultMemberPermissions: &adminPermission,
	}

	editPanelCmd = &discordgo.ApplicationCommand{
		Name:                     "edit_panel",
		Type:                     discordgo.ChatApplicationCommand,
		Description:              "Edit an existing ticket panel",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         optionPanelName,
				Type:         discordgo.ApplicationCommandOptionString,
				Description:  "The panel to edit",
				Required:     true,
				Autocomplete: true,
			},
		},
	}

	closeRequestCmd = &discordgo.ApplicationCommand{
		Name:        "closerequest",
		Type:        discordgo.ChatApplicationCommand,
		Description: "Request to close a ticket with a reason and optional timer",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        optionReason,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "Reason for closing the ticket",
				Required:    true,
			},
			{
				Name:        optionHours,
				Type:        discordgo.ApplicationCommandOptionInteger,
				Description: "Hours until the request expires",
				MinValue:    &minCloseHours,
				MaxValue:    ticketing.MaxCloseHours,
			},
		},
	}

	closeTicketCmd = &discordgo.ApplicationCommand{
		Name:                     "closeticket",
		Type:                     discordgo.ChatApplicationCommand,
		Description:              "Immediately close a ticket",
		DefaultMemberPermissions: &adminPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        optionReason,
				Type:        discordgo.ApplicationCommandOptionString,
				Description: "Reason for closing the ticket",
				Required:    true,
			},
		},
	}

	// guildCommands are registered in every guild the bot is in.
	guildCommands = []*discordgo.ApplicationCommand{
		sendPanelCmd,
		clearPanelsCmd,
		setupPanelCmd,
		editPanelCmd,
		closeRequestCmd,
		closeTicketCmd,
	}
)

func actorOf(i *discordgo.InteractionCreate) conversation.Actor {
	return conversation.Actor{
		GuildID:   i.GuildID,
		UserID:    discord.InteractionUser(i).ID,
		ChannelID: i.ChannelID,
	}
}

func sendPanelHandler(a IApp, i *discordgo.InteractionCreate) error {
	name := stringOption(commandOptions(i), optionPanelName)
	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring interaction: %w", err)
	}

	panel, options, err := a.Tickets().Panel(context.Background(), i.GuildID, name)
	if err != nil {
		return err
	}

	if _, err := a.Session().ChannelMessageSendComplex(i.ChannelID, discord.PanelMessage(panel, options)); err != nil {
		return fmt.Errorf("error sending panel: %w", err)
	}
	return followUp(a, i, messages.PanelSent)
}

func clearPanelsHandler(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	opts := commandOptions(i)

	switch stringOption(opts, optionClearType) {
	case clearAll:
		n, err := a.Store().DeleteAllPanels(ctx, i.GuildID)
		if err != nil {
			return err
		}
		a.Log().Info("Cleared all panels",
			slog.String(logging.KeyGuild, i.GuildID),
			slog.Int64("panels", n),
		)
		return respondSlashEphemeral(a, i, messages.PanelsCleared)
	case clearSingle:
		name := stringOption(opts, optionPanelName)
		if name == "" {
			return newUserError(messages.PanelNameRequired)
		}

		panel, err := a.Store().FindPanelByName(ctx, i.GuildID, name)
		if err != nil {
			return err
		}
		if err := a.Store().DeletePanel(ctx, panel.ID); err != nil {
			return err
		}
		return respondSlashEphemeral(a, i, fmt.Sprintf(messages.PanelCleared, name))
	default:
		return newUserError(messages.ClearTypeUnknown)
	}
}

func setupPanelHandler(a IApp, i *discordgo.InteractionCreate) error {
	if err := respondSlashEphemeral(a, i, messages.SetupStarted); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}

	conv, err := a.Wizard().StartSetup(context.Background(), actorOf(i))
	if errors.Is(err, conversation.ErrActorNotified) {
		a.Log().Warn("Panel setup failed to start", slog.String(logging.KeyError, err.Error()))
		return nil
	} else if err != nil {
		return fmt.Errorf("error starting setup: %w", err)
	}

	a.Log().Info("Panel setup started",
		slog.String(logging.KeyGuild, i.GuildID),
		slog.String(logging.KeyConversation, conv.ID()),
	)
	return nil
}

func editPanelHandler(a IApp, i *discordgo.InteractionCreate) error {
	ctx := context.Background()
	name := stringOption(commandOptions(i), optionPanelName)

	if _, err := a.Store().FindPanelByName(ctx, i.GuildID, name); err != nil {
		return err
	}
	if err := respondSlashEphemeral(a, i, fmt.Sprintf(messages.EditStarted, name)); err != nil {
		return fmt.Errorf("error responding to interaction: %w", err)
	}

	conv, err := a.Wizard().StartEdit(ctx, actorOf(i), name)
	if errors.Is(err, conversation.ErrActorNotified) {
		a.Log().Warn("Panel edit failed to start", slog.String(logging.KeyError, err.Error()))
		return nil
	} else if err != nil {
		return fmt.Errorf("error starting panel edit: %w", err)
	}

	a.Log().Info("Panel edit started",
		slog.String(logging.KeyGuild, i.GuildID),
		slog.String(logging.KeyConversation, conv.ID()),
	)
	return nil
}

func closeRequestHandler(a IApp, i *discordgo.InteractionCreate) error {
	opts := commandOptions(i)
	reason := stringOption(opts, optionReason)
	hours := intOption(opts, optionHours)
	if hours < 0 || hours > ticketing.MaxCloseHours {
		return newUserError(messages.CloseRequestHoursInvalid)
	}

	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring interaction: %w", err)
	}

	if _, err := a.Tickets().RequestClose(context.Background(), i.ChannelID, discord.InteractionUser(i), reason, hours); err != nil {
		return err
	}
	return followUp(a, i, messages.CloseRequestSent)
}

func closeTicketHandler(a IApp, i *discordgo.InteractionCreate) error {
	reason := stringOption(commandOptions(i), optionReason)
	closer := discord.InteractionUser(i)

	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring interaction: %w", err)
	}

	ticket, err := a.Tickets().ForceClose(context.Background(), i.ChannelID, closer, reason)
	if errors.Is(err, ticketing.ErrNotTicketChannel) {
		return newUserError(messages.TicketNotActiveShort)
	} else if err != nil {
		return err
	}

	if err := followUp(a, i, messages.TicketClosing); err != nil {
		a.Log().Warn("Error acknowledging ticket closure", slog.String(logging.KeyError, err.Error()))
	}
	deleteTicketChannel(a, ticket)
	return nil
}

func panelNameAutocomplete(a IApp, i *discordgo.InteractionCreate) error {
	var current string
	for _, o := range i.ApplicationCommandData().Options {
		if o.Focused {
			current = o.StringValue()
		}
	}

	panels, err := a.Store().ListPanels(context.Background(), i.GuildID)
	if err != nil {
		return err
	}

	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: panelChoices(panels, current),
		},
	})
}

// panelChoices suggests the panels whose name contains current, ignoring case.
func panelChoices(panels []*entities.Panel, current string) []*discordgo.ApplicationCommandOptionChoice {
	current = strings.ToLower(strings.TrimSpace(current))

	names := make([]string, 0, len(panels))
	for _, p := range panels {
		if strings.Contains(strings.ToLower(p.Name), current) {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	if len(names) > maxAutocompleteChoices {
		names = names[:maxAutocompleteChoices]
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, n := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: n, Value: n})
	}
	return choices
}

// deleteTicketChannel removes the channel of a closed ticket.
func deleteTicketChannel(a IApp, ticket *entities.Ticket) {
	if _, err := a.Session().ChannelDelete(ticket.ChannelID.String()); err != nil {
		a.Log().Error("Error deleting ticket channel",
			slog.Int64(logging.KeyTicket, ticket.ID),
			slog.String(logging.KeyChannel, ticket.ChannelID.String()),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}
