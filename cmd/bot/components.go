package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess"
	"github.com/Jacobbrewer1/warden/pkg/discord"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"github.com/Jacobbrewer1/warden/pkg/messages"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
)

// ticketSelectHandler opens the question modal of the chosen option, or the
// ticket itself when the option asks nothing.
func ticketSelectHandler(a IApp, i *discordgo.InteractionCreate) error {
	data := i.MessageComponentData()
	panelID, ok := ticketing.ParseNumericID(data.CustomID, ticketing.PrefixSelect)
	if !ok || len(data.Values) == 0 {
		return fmt.Errorf("invalid panel select %q", data.CustomID)
	}

	optionID, err := strconv.ParseInt(data.Values[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid option value %q: %w", data.Values[0], err)
	}

	option, err := a.Tickets().Option(context.Background(), i.GuildID, optionID)
	if err != nil {
		return err
	}
	if option.PanelID != panelID {
		return dataaccess.ErrNotFound
	}

	defer resetPanelSelect(a, i)

	if questions := ticketing.ModalQuestions(option); len(questions) > 0 {
		return a.Session().InteractionRespond(i.Interaction, discord.QuestionModal(option, questions))
	}
	return createTicket(a, i, optionID, nil)
}

// resetPanelSelect clears the choice shown on the panel so the next user
// starts from the placeholder.
func resetPanelSelect(a IApp, i *discordgo.InteractionCreate) {
	if i.Message == nil {
		return
	}
	if _, err := a.Session().ChannelMessageEditComplex(discord.ResetSelect(i.Message)); err != nil {
		a.Log().Warn("Error resetting panel select",
			slog.String(logging.KeyChannel, i.ChannelID),
			slog.String(logging.KeyError, err.Error()),
		)
	}
}

// ticketModalHandler opens the ticket with the answers of the question modal.
func ticketModalHandler(a IApp, i *discordgo.InteractionCreate) error {
	data := i.ModalSubmitData()
	optionID, ok := ticketing.ParseNumericID(data.CustomID, ticketing.PrefixModal)
	if !ok {
		return fmt.Errorf("invalid ticket modal %q", data.CustomID)
	}
	return createTicket(a, i, optionID, discord.ModalAnswers(data))
}

func createTicket(a IApp, i *discordgo.InteractionCreate, optionID int64, answers []string) error {
	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring interaction: %w", err)
	}

	ticket, err := a.Tickets().Create(context.Background(), ticketing.CreateRequest{
		GuildID:  i.GuildID,
		User:     discord.InteractionUser(i),
		OptionID: optionID,
		Answers:  answers,
	})
	if errors.Is(err, dataaccess.ErrStorage) {
		a.Log().Error("Error storing ticket",
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyError, err.Error()),
		)
		return newUserError(messages.TicketStorageFailed)
	} else if err != nil {
		return err
	}

	return followUp(a, i, fmt.Sprintf(messages.TicketCreated, ticket.ChannelID))
}

// closeConfirmHandler closes the ticket when its creator confirms a close request.
func closeConfirmHandler(a IApp, i *discordgo.InteractionCreate) error {
	_, requestID := ticketing.SplitID(i.MessageComponentData().CustomID)

	if err := deferEphemeral(a, i); err != nil {
		return fmt.Errorf("error deferring interaction: %w", err)
	}

	ticket, err := a.Tickets().ConfirmClose(context.Background(), requestID, discord.InteractionUser(i))
	if err != nil {
		return err
	}

	if err := followUp(a, i, messages.TicketClosing); err != nil {
		a.Log().Warn("Error acknowledging ticket closure", slog.String(logging.KeyError, err.Error()))
	}
	deleteTicketChannel(a, ticket)
	return nil
}

// conversationComponentHandler hands a prompt click to the wizard
// conversation of the guild.
func conversationComponentHandler(a IApp, i *discordgo.InteractionCreate) error {
	ev, ok := discord.ComponentEvent(i)
	if !ok {
		return newUserError(messages.PromptInactive)
	}

	if err := a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		return fmt.Errorf("error acknowledging component: %w", err)
	}

	if !a.Registry().Dispatch(context.Background(), ev) {
		return newUserError(messages.PromptInactive)
	}
	return nil
}
