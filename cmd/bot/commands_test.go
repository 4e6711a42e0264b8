package main

import (
	"fmt"
	"testing"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess"
	"github.com/Jacobbrewer1/warden/pkg/entities"
	"github.com/Jacobbrewer1/warden/pkg/messages"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
	"github.com/stretchr/testify/require"
)

func TestPanelChoices(t *testing.T) {
	panels := []*entities.Panel{{Name: "Support"}, {Name: "billing"}, {Name: "Reports"}}

	tests := []struct {
		name    string
		current string
		want    []string
	}{
		{"all", "", []string{"Reports", "Support", "billing"}},
		{"ignores case", "SUP", []string{"Support"}},
		{"contains", "or", []string{"Reports"}},
		{"none", "xyz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := panelChoices(panels, tt.current)
			names := make([]string, 0, len(got))
			for _, c := range got {
				require.Equal(t, c.Name, c.Value)
				names = append(names, c.Name)
			}
			require.Equal(t, tt.want, names)
		})
	}
}

func TestPanelChoices_Capped(t *testing.T) {
	panels := make([]*entities.Panel, 0, 40)
	for i := 0; i < 40; i++ {
		panels = append(panels, &entities.Panel{Name: fmt.Sprintf("panel-%02d", i)})
	}
	got := panelChoices(panels, "panel")
	require.Len(t, got, maxAutocompleteChoices)
	require.Equal(t, "panel-00", got[0].Name)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		want     string
		expected bool
	}{
		{"user error", newUserError(messages.PanelNameRequired), messages.PanelNameRequired, true},
		{"wrapped user error", fmt.Errorf("ctx: %w", newUserError(messages.PromptInactive)), messages.PromptInactive, true},
		{"not a ticket", ticketing.ErrNotTicketChannel, messages.TicketNotActive, true},
		{"not the creator", ticketing.ErrNotCreator, messages.TicketOnlyCreator, true},
		{"request expired", ticketing.ErrRequestExpired, messages.TicketRequestLapsed, true},
		{"invalid hours", ticketing.ErrInvalidHours, messages.CloseRequestHoursInvalid, true},
		{"no options", dataaccess.ErrNoOptions, messages.PanelNoOptions, true},
		{"not found", fmt.Errorf("find: %w", dataaccess.ErrNotFound), messages.PanelNotFound, true},
		{"storage", dataaccess.ErrStorage, messages.ErrStorageUnavailable, false},
		{"unknown", fmt.Errorf("boom"), messages.ErrUserErrorProcessing, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, expected := userMessage(tt.err)
			require.Equal(t, tt.want, msg)
			require.Equal(t, tt.expected, expected)
		})
	}
}

func TestRequireAdministrator(t *testing.T) {
	var called bool
	p := requireAdministrator(func(IApp, *discordgo.InteractionCreate) error {
		called = true
		return nil
	})

	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{User: &discordgo.User{ID: "1"}},
	}}
	err := p(nil, i)
	msg, expected := userMessage(err)
	require.True(t, expected)
	require.Equal(t, messages.ErrNotAdministrator, msg)
	require.False(t, called)

	i.Member.Permissions = discordgo.PermissionAdministrator
	require.NoError(t, p(nil, i))
	require.True(t, called)
}

func TestGuildCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range guildCommands {
		require.False(t, names[c.Name], c.Name)
		names[c.Name] = true
	}
	require.Len(t, names, 6)

	require.Nil(t, closeRequestCmd.DefaultMemberPermissions)
	hours := closeRequestCmd.Options[1]
	require.Equal(t, optionHours, hours.Name)
	require.Zero(t, *hours.MinValue)
	require.Equal(t, float64(ticketing.MaxCloseHours), hours.MaxValue)
	require.NotNil(t, closeTicketCmd.DefaultMemberPermissions)
	require.Equal(t, int64(discordgo.PermissionAdministrator), *closeTicketCmd.DefaultMemberPermissions)
}
