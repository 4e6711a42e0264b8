// Package discord connects the ticket bot to Discord. It implements the
// collaborators of the conversation engine, the setup wizard and the ticket
// controller on a discordgo session.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"github.com/Jacobbrewer1/warden/pkg/setup"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
)

// historyPageSize is the most messages discord returns per history request.
const historyPageSize = 100

var (
	_ conversation.Messenger = (*Adapter)(nil)
	_ setup.Directory        = (*Adapter)(nil)
	_ ticketing.Platform     = (*Adapter)(nil)
)

// Adapter drives a discord session on behalf of the bot.
type Adapter struct {
	l *slog.Logger
	s *discordgo.Session
}

// NewAdapter creates a new adapter for the session.
func NewAdapter(l *slog.Logger, s *discordgo.Session) *Adapter {
	return &Adapter{
		l: l,
		s: s,
	}
}

// SendPrompt implements conversation.Messenger.
func (a *Adapter) SendPrompt(ctx context.Context, channelID string, ref conversation.Ref, p conversation.Prompt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := a.s.ChannelMessageSendComplex(channelID, RenderPrompt(ref, p)); err != nil {
		return fmt.Errorf("error sending prompt: %w", err)
	}
	return nil
}

// SendNotice implements conversation.Messenger.
func (a *Adapter) SendNotice(ctx context.Context, channelID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := a.s.ChannelMessageSend(channelID, text); err != nil {
		return fmt.Errorf("error sending notice: %w", err)
	}
	return nil
}

// Categories implements setup.Directory.
func (a *Adapter) Categories(ctx context.Context, guildID string) ([]setup.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	channels, err := a.s.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("error getting guild channels: %w", err)
	}

	categories := make([]*discordgo.Channel, 0, len(channels))
	for _, c := range channels {
		if c.Type == discordgo.ChannelTypeGuildCategory {
			categories = append(categories, c)
		}
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Position < categories[j].Position
	})

	out := make([]setup.Channel, 0, len(categories))
	for _, c := range categories {
		out = append(out, setup.Channel{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

// IsTextChannel implements setup.Directory.
func (a *Adapter) IsTextChannel(ctx context.Context, guildID, channelID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c, err := a.s.Channel(channelID)
	if err != nil {
		if isUnknownChannel(err) {
			return false, nil
		}
		return false, fmt.Errorf("error getting channel: %w", err)
	}
	return c.GuildID == guildID && c.Type == discordgo.ChannelTypeGuildText, nil
}

// BotUserID implements ticketing.Platform.
func (a *Adapter) BotUserID() string {
	if a.s.State == nil || a.s.State.User == nil {
		return ""
	}
	return a.s.State.User.ID
}

// GuildName implements ticketing.Platform.
func (a *Adapter) GuildName(ctx context.Context, guildID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if a.s.State != nil {
		if g, err := a.s.State.Guild(guildID); err == nil {
			return g.Name, nil
		}
	}

	g, err := a.s.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("error getting guild: %w", err)
	}
	return g.Name, nil
}

// CreateChannel implements ticketing.Platform.
func (a *Adapter) CreateChannel(ctx context.Context, spec ticketing.ChannelSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c, err := a.s.GuildChannelCreateComplex(spec.GuildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                spec.Topic,
		ParentID:             spec.CategoryID,
		PermissionOverwrites: permissionOverwrites(spec.Overwrites),
	})
	if err != nil {
		return "", fmt.Errorf("error creating channel: %w", err)
	}
	return c.ID, nil
}

// DeleteChannel implements ticketing.Platform.
func (a *Adapter) DeleteChannel(ctx context.Context, channelID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := a.s.ChannelDelete(channelID); err != nil {
		if isUnknownChannel(err) {
			return nil
		}
		return fmt.Errorf("error deleting channel: %w", err)
	}
	return nil
}

// Send implements ticketing.Platform.
func (a *Adapter) Send(ctx context.Context, channelID string, msg ticketing.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := a.s.ChannelMessageSendComplex(channelID, RenderMessage(msg)); err != nil {
		return fmt.Errorf("error sending message: %w", err)
	}
	return nil
}

// SendDM implements ticketing.Platform.
func (a *Adapter) SendDM(ctx context.Context, userID string, msg ticketing.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := a.s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("error opening direct message channel: %w", err)
	}
	if _, err := a.s.ChannelMessageSendComplex(c.ID, RenderMessage(msg)); err != nil {
		return fmt.Errorf("error sending direct message: %w", err)
	}
	return nil
}

// History implements ticketing.Platform.
func (a *Adapter) History(ctx context.Context, channelID string) ([]ticketing.HistoryEntry, error) {
	var (
		all    []*discordgo.Message
		before string
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := a.s.ChannelMessages(channelID, historyPageSize, before, "", "")
		if err != nil {
			return nil, fmt.Errorf("error getting channel messages: %w", err)
		}
		all = append(all, page...)
		if len(page) < historyPageSize {
			break
		}
		before = page[len(page)-1].ID
	}

	a.l.Debug("Read channel history",
		slog.String(logging.KeyChannel, channelID),
		slog.Int("messages", len(all)),
	)
	return historyEntries(all), nil
}

func isUnknownChannel(err error) bool {
	er := new(discordgo.RESTError)
	if !errors.As(err, &er) || er.Message == nil {
		return false
	}
	return er.Message.Code == discordgo.ErrCodeUnknownChannel
}
