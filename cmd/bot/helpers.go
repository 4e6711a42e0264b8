package main

import (
	"errors"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess"
	"github.com/Jacobbrewer1/warden/pkg/discord"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"github.com/Jacobbrewer1/warden/pkg/messages"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
)

// userError is a refusal whose message is shown to the user as is.
type userError struct {
	msg string
}

func (e *userError) Error() string {
	return e.msg
}

func newUserError(msg string) error {
	return &userError{msg: msg}
}

// userMessage maps an error to the reply the user sees. expected is false
// for failures that are not the user's doing.
func userMessage(err error) (msg string, expected bool) {
	ue := new(userError)
	switch {
	case errors.As(err, &ue):
		return ue.msg, true
	case errors.Is(err, ticketing.ErrNotTicketChannel):
		return messages.TicketNotActive, true
	case errors.Is(err, ticketing.ErrNotCreator):
		return messages.TicketOnlyCreator, true
	case errors.Is(err, ticketing.ErrRequestExpired):
		return messages.TicketRequestLapsed, true
	case errors.Is(err, ticketing.ErrInvalidHours):
		return messages.CloseRequestHoursInvalid, true
	case errors.Is(err, dataaccess.ErrNoOptions):
		return messages.PanelNoOptions, true
	case errors.Is(err, dataaccess.ErrNotFound):
		return messages.PanelNotFound, true
	case errors.Is(err, dataaccess.ErrStorage):
		return messages.ErrStorageUnavailable, false
	default:
		return messages.ErrUserErrorProcessing, false
	}
}

// reply answers the interaction privately. An interaction that has already
// been acknowledged gets a follow up message instead.
func reply(a IApp, i *discordgo.InteractionCreate, content string) {
	if err := respondSlashEphemeral(a, i, content); err == nil {
		return
	}
	if err := followUp(a, i, content); err != nil {
		a.Log().Error("Error responding to interaction", slog.String(logging.KeyError, err.Error()))
	}
}

func respondSlashEphemeral(a IApp, i *discordgo.InteractionCreate, content string) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// deferEphemeral acknowledges the interaction, the answer follows with followUp.
func deferEphemeral(a IApp, i *discordgo.InteractionCreate) error {
	return a.Session().InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func followUp(a IApp, i *discordgo.InteractionCreate, content string) error {
	_, err := a.Session().FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	return err
}

// commandOptions indexes the options of a slash command by name.
func commandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if o, ok := opts[name]; ok {
		return o.StringValue()
	}
	return ""
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	if o, ok := opts[name]; ok {
		return int(o.IntValue())
	}
	return 0
}

// requireAdministrator wraps p so that only administrators run it.
func requireAdministrator(p commandProcessor) commandProcessor {
	return func(a IApp, i *discordgo.InteractionCreate) error {
		if !discord.IsAdministrator(i) {
			return newUserError(messages.ErrNotAdministrator)
		}
		return p(a, i)
	}
}
