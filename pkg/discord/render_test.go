package discord

import (
	"io"
	"testing"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
	"github.com/stretchr/testify/require"
)

func TestRenderPrompt_Text(t *testing.T) {
	msg := RenderPrompt(conversation.Ref{Conversation: "c1", Seq: 1}, conversation.Prompt{
		Title: "Panel name",
		Text:  "What should the panel be called?",
	})

	require.Len(t, msg.Embeds, 1)
	require.Equal(t, "Panel name", msg.Embeds[0].Title)
	require.Equal(t, "What should the panel be called?", msg.Embeds[0].Description)
	require.Empty(t, msg.Components)
}

func TestRenderPrompt_Buttons(t *testing.T) {
	ref := conversation.Ref{Conversation: "c1", Seq: 3}
	choices := make([]conversation.Choice, 0, 7)
	for _, v := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		choices = append(choices, conversation.Choice{Label: v, Value: v, Emphasis: v == "a"})
	}

	msg := RenderPrompt(ref, conversation.Prompt{Style: conversation.StyleButtons, Choices: choices})
	require.Len(t, msg.Components, 2)

	first := msg.Components[0].(discordgo.ActionsRow)
	require.Len(t, first.Components, 5)
	require.Len(t, msg.Components[1].(discordgo.ActionsRow).Components, 2)

	b := first.Components[0].(discordgo.Button)
	require.Equal(t, discordgo.PrimaryButton, b.Style)
	require.Equal(t, "conv:c1:3:a", b.CustomID)
	require.Equal(t, discordgo.SecondaryButton, first.Components[1].(discordgo.Button).Style)

	gotRef, value, ok := conversation.ParseComponentID(b.CustomID)
	require.True(t, ok)
	require.Equal(t, ref, gotRef)
	require.Equal(t, "a", value)
}

func TestRenderPrompt_Select(t *testing.T) {
	choices := make([]conversation.Choice, 0, 30)
	for i := 0; i < 30; i++ {
		choices = append(choices, conversation.Choice{Label: "category", Value: "1"})
	}

	msg := RenderPrompt(conversation.Ref{Conversation: "c1", Seq: 2}, conversation.Prompt{
		Style:   conversation.StyleSelect,
		Choices: choices,
	})
	require.Len(t, msg.Components, 1)

	menu := msg.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	require.Equal(t, "conv:c1:2", menu.CustomID)
	require.Len(t, menu.Options, maxSelectOptions)
}

func TestRenderMessage(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := RenderMessage(ticketing.Message{
		Content: "<@&1>",
		Embeds: []ticketing.Embed{{
			Title:     "Billing",
			Color:     0xe74c3c,
			Fields:    []ticketing.Field{{Name: "What plan?", Value: "Pro"}},
			Timestamp: now,
		}},
		Buttons: []ticketing.Button{{Label: "Confirm Close", CustomID: "close_confirm:abc"}},
		Files:   []ticketing.File{{Name: "transcript-billing.txt", Content: []byte("hello")}},
	})

	require.Equal(t, "<@&1>", msg.Content)
	require.Len(t, msg.Embeds, 1)
	require.Equal(t, "2024-03-01T12:00:00Z", msg.Embeds[0].Timestamp)
	require.Equal(t, "Pro", msg.Embeds[0].Fields[0].Value)

	button := msg.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	require.Equal(t, "close_confirm:abc", button.CustomID)

	require.Len(t, msg.Files, 1)
	content, err := io.ReadAll(msg.Files[0].Reader)
	require.NoError(t, err)
	require.Equal(t, "hello", string(content))
}

func TestResetSelect(t *testing.T) {
	panel := PanelMessage(&entities.Panel{ID: 7}, []*entities.TicketOption{{ID: 11, Name: "billing"}})
	msg := &discordgo.Message{ID: "50", ChannelID: "60", Components: panel.Components}

	edit := ResetSelect(msg)
	require.Equal(t, "50", edit.ID)
	require.Equal(t, "60", edit.Channel)
	require.Equal(t, panel.Components, edit.Components)
	require.Nil(t, edit.Content)
}

func TestPanelMessage(t *testing.T) {
	panel := &entities.Panel{ID: 7, EmbedTitle: "Support", EmbedDescription: "Pick one", EmbedColor: "not a number"}
	options := []*entities.TicketOption{
		{ID: 11, Name: "billing", EmbedTitle: "Billing"},
		{ID: 12, Name: "bugs", EmbedTitle: "Bugs"},
	}

	msg := PanelMessage(panel, options)
	require.Equal(t, entities.DefaultEmbedColor, msg.Embeds[0].Color)

	menu := msg.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	require.Equal(t, "ticket_select:7", menu.CustomID)
	require.Len(t, menu.Options, 2)
	require.Equal(t, "11", menu.Options[0].Value)
	require.Equal(t, "bugs", menu.Options[1].Label)
}

func TestPermissionOverwrites(t *testing.T) {
	got := permissionOverwrites([]ticketing.Overwrite{
		{ID: "1", Kind: ticketing.OverwriteRole, Deny: ticketing.PermissionViewChannel},
		{ID: "2", Kind: ticketing.OverwriteMember, Allow: ticketing.PermissionViewChannel | ticketing.PermissionSendMessages},
	})

	require.Len(t, got, 2)
	require.Equal(t, discordgo.PermissionOverwriteTypeRole, got[0].Type)
	require.Equal(t, int64(discordgo.PermissionViewChannel), got[0].Deny)
	require.Equal(t, discordgo.PermissionOverwriteTypeMember, got[1].Type)
	require.Equal(t, int64(discordgo.PermissionViewChannel|discordgo.PermissionSendMessages), got[1].Allow)
}

func TestHistoryEntries(t *testing.T) {
	t1 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	// Newest first, the order discord returns pages in.
	msgs := []*discordgo.Message{
		{ID: "2", Timestamp: t2, Author: &discordgo.User{Username: "staff"}, Content: "fixed"},
		{
			ID:          "1",
			Timestamp:   t1,
			Author:      &discordgo.User{Username: "alice"},
			Content:     "broken",
			Attachments: []*discordgo.MessageAttachment{{URL: "https://cdn/x.png"}},
		},
	}

	got := historyEntries(msgs)
	require.Len(t, got, 2)
	require.Equal(t, "alice", got[0].Author)
	require.Equal(t, []string{"https://cdn/x.png"}, got[0].Attachments)
	require.Equal(t, "staff", got[1].Author)
	require.Equal(t,
		"[2024-03-01T12:00:00Z] alice: broken https://cdn/x.png\n[2024-03-01T12:01:00Z] staff: fixed",
		ticketing.RenderTranscript(got),
	)
}
