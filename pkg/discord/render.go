package discord

import (
	"bytes"
	"strconv"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
)

const (
	// buttonsPerRow is how many buttons an action row holds.
	buttonsPerRow = 5

	// maxRows is how many action rows a message holds.
	maxRows = 5

	// maxSelectOptions is how many entries a select menu holds.
	maxSelectOptions = 25
)

const promptColor = 0x3498db

// RenderPrompt builds the message that shows a conversation prompt.
func RenderPrompt(ref conversation.Ref, p conversation.Prompt) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       p.Title,
			Description: p.Text,
			Color:       promptColor,
		}},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}

	switch p.Style {
	case conversation.StyleButtons:
		msg.Components = buttonRows(ref, p.Choices)
	case conversation.StyleSelect:
		msg.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						CustomID:    conversation.ComponentID(ref, ""),
						Placeholder: "Select an option",
						Options:     selectOptions(p.Choices),
					},
				},
			},
		}
	}
	return msg
}

func buttonRows(ref conversation.Ref, choices []conversation.Choice) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, (len(choices)+buttonsPerRow-1)/buttonsPerRow)
	for start := 0; start < len(choices) && len(rows) < maxRows; start += buttonsPerRow {
		end := min(start+buttonsPerRow, len(choices))

		buttons := make([]discordgo.MessageComponent, 0, end-start)
		for _, c := range choices[start:end] {
			style := discordgo.SecondaryButton
			if c.Emphasis {
				style = discordgo.PrimaryButton
			}
			buttons = append(buttons, discordgo.Button{
				Label:    c.Label,
				Style:    style,
				CustomID: conversation.ComponentID(ref, c.Value),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

func selectOptions(choices []conversation.Choice) []discordgo.SelectMenuOption {
	if len(choices) > maxSelectOptions {
		choices = choices[:maxSelectOptions]
	}

	opts := make([]discordgo.SelectMenuOption, 0, len(choices))
	for _, c := range choices {
		opts = append(opts, discordgo.SelectMenuOption{
			Label: c.Label,
			Value: c.Value,
		})
	}
	return opts
}

// RenderMessage converts a ticketing message into a discord message.
func RenderMessage(m ticketing.Message) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{
		Content: m.Content,
	}

	for _, e := range m.Embeds {
		msg.Embeds = append(msg.Embeds, renderEmbed(e))
	}

	if len(m.Buttons) > 0 {
		buttons := make([]discordgo.MessageComponent, 0, len(m.Buttons))
		for _, b := range m.Buttons {
			buttons = append(buttons, discordgo.Button{
				Label:    b.Label,
				Style:    discordgo.PrimaryButton,
				CustomID: b.CustomID,
			})
		}
		msg.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: buttons},
		}
	}

	for _, f := range m.Files {
		msg.Files = append(msg.Files, &discordgo.File{
			Name:        f.Name,
			ContentType: "text/plain",
			Reader:      bytes.NewReader(f.Content),
		})
	}
	return msg
}

func renderEmbed(e ticketing.Embed) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if !e.Timestamp.IsZero() {
		embed.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	for _, f := range e.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}

// PanelMessage builds the published panel: its embed and the select menu of
// its options.
func PanelMessage(panel *entities.Panel, options []*entities.TicketOption) *discordgo.MessageSend {
	color, err := strconv.Atoi(panel.EmbedColor)
	if err != nil {
		color = entities.DefaultEmbedColor
	}

	if len(options) > maxSelectOptions {
		options = options[:maxSelectOptions]
	}

	entries := make([]discordgo.SelectMenuOption, 0, len(options))
	for _, o := range options {
		entries = append(entries, discordgo.SelectMenuOption{
			Label:       o.Name,
			Value:       strconv.FormatInt(o.ID, 10),
			Description: truncate(o.EmbedTitle, 100),
		})
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       panel.EmbedTitle,
			Description: panel.EmbedDescription,
			Color:       color,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						CustomID:    ticketing.SelectID(panel.ID),
						Placeholder: "Select a ticket type",
						Options:     entries,
					},
				},
			},
		},
	}
}

// ResetSelect re-sends the components of a published message so that a
// select menu shows its placeholder again after a choice.
func ResetSelect(m *discordgo.Message) *discordgo.MessageEdit {
	return &discordgo.MessageEdit{
		Channel:    m.ChannelID,
		ID:         m.ID,
		Components: m.Components,
	}
}

// permissionOverwrites converts the ticket overwrites into discord overwrites.
func permissionOverwrites(ows []ticketing.Overwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(ows))
	for _, ow := range ows {
		t := discordgo.PermissionOverwriteTypeRole
		if ow.Kind == ticketing.OverwriteMember {
			t = discordgo.PermissionOverwriteTypeMember
		}
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    ow.ID,
			Type:  t,
			Allow: ow.Allow,
			Deny:  ow.Deny,
		})
	}
	return out
}

// historyEntries converts a page of messages, newest first as discord returns
// them, into chronological history entries.
func historyEntries(msgs []*discordgo.Message) []ticketing.HistoryEntry {
	entries := make([]ticketing.HistoryEntry, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]

		author := "unknown"
		if m.Author != nil {
			author = m.Author.Username
		}

		var attachments []string
		for _, a := range m.Attachments {
			attachments = append(attachments, a.URL)
		}

		entries = append(entries, ticketing.HistoryEntry{
			Timestamp:   m.Timestamp,
			Author:      author,
			Content:     m.Content,
			Attachments: attachments,
		})
	}
	return entries
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
