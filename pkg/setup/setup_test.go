package setup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/clock"
	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/custom"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess/connection"
	"github.com/Jacobbrewer1/warden/pkg/messages"
	"github.com/stretchr/testify/require"
)

type recordingMessenger struct {
	mu      sync.Mutex
	refs    []conversation.Ref
	prompts []conversation.Prompt
	notices []string
}

func (m *recordingMessenger) SendPrompt(_ context.Context, _ string, ref conversation.Ref, p conversation.Prompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs = append(m.refs, ref)
	m.prompts = append(m.prompts, p)
	return nil
}

func (m *recordingMessenger) SendNotice(_ context.Context, _ string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, text)
	return nil
}

func (m *recordingMessenger) lastRef() conversation.Ref {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs[len(m.refs)-1]
}

func (m *recordingMessenger) lastPrompt() conversation.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts[len(m.prompts)-1]
}

func (m *recordingMessenger) lastNotice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.notices) == 0 {
		return ""
	}
	return m.notices[len(m.notices)-1]
}

type fakeDirectory struct {
	categories   []Channel
	textChannels map[string]bool
}

func (d *fakeDirectory) Categories(context.Context, string) ([]Channel, error) {
	return d.categories, nil
}

func (d *fakeDirectory) IsTextChannel(_ context.Context, _, channelID string) (bool, error) {
	return d.textChannels[channelID], nil
}

type wizardHarness struct {
	wizard    *Wizard
	registry  *conversation.Registry
	messenger *recordingMessenger
	dir       *fakeDirectory
	store     dataaccess.Store
	clock     *clock.FakeClock
}

var admin = conversation.Actor{GuildID: "1", UserID: "42", ChannelID: "300"}

func newWizardHarness(t *testing.T) *wizardHarness {
	t.Helper()

	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := (&connection.SQL{
		Driver:       connection.DriverSQLite,
		DSN:          "file::memory:?_foreign_keys=on",
		MaxOpenConns: 1,
	}).Connect(l)
	require.NoError(t, err)

	store, err := dataaccess.NewSQLStore(context.Background(), l, db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := &wizardHarness{
		registry:  conversation.NewRegistry(),
		messenger: new(recordingMessenger),
		dir: &fakeDirectory{
			categories:   []Channel{{ID: "700", Name: "Support"}, {ID: "701", Name: "Sales"}},
			textChannels: map[string]bool{"555": true},
		},
		store: store,
		clock: clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	h.wizard, err = NewWizard(l, store, h.dir, h.registry, h.messenger, h.clock)
	require.NoError(t, err)
	return h
}

func (h *wizardHarness) say(t *testing.T, text string) {
	t.Helper()
	ok := h.registry.Dispatch(context.Background(), conversation.Event{
		Kind:      conversation.EventMessage,
		GuildID:   admin.GuildID,
		UserID:    admin.UserID,
		ChannelID: admin.ChannelID,
		Text:      text,
	})
	require.True(t, ok, "message %q was not consumed", text)
}

// sayRoles posts text with the role mentions the platform resolved for it.
func (h *wizardHarness) sayRoles(t *testing.T, text string, roles ...string) {
	t.Helper()
	ok := h.registry.Dispatch(context.Background(), conversation.Event{
		Kind:      conversation.EventMessage,
		GuildID:   admin.GuildID,
		UserID:    admin.UserID,
		ChannelID: admin.ChannelID,
		Text:      text,
		Roles:     roles,
	})
	require.True(t, ok, "message %q was not consumed", text)
}

func (h *wizardHarness) click(t *testing.T, value string) {
	t.Helper()
	ok := h.registry.Dispatch(context.Background(), conversation.Event{
		Kind:      conversation.EventComponent,
		GuildID:   admin.GuildID,
		UserID:    admin.UserID,
		ChannelID: admin.ChannelID,
		Ref:       h.messenger.lastRef(),
		Value:     value,
	})
	require.True(t, ok, "click %q was not consumed", value)
}

// fillPanel answers the steps up to and including the log channel.
func (h *wizardHarness) fillPanel(t *testing.T, name string) {
	t.Helper()
	h.say(t, name)
	h.say(t, "Support")
	h.say(t, "Open a ticket below")
	h.say(t, "<#555>")
}

// fillOption answers the option steps up to the more options prompt.
func (h *wizardHarness) fillOption(t *testing.T, name string, questions ...string) {
	t.Helper()
	h.say(t, name)
	h.say(t, name+" help")
	h.say(t, "Tell us about "+name)
	if len(questions) == 0 {
		h.say(t, "none")
	}
	for i, q := range questions {
		h.say(t, q)
		if i < len(questions)-1 {
			h.click(t, choiceYes)
		} else {
			h.click(t, choiceNo)
		}
	}
	h.click(t, "700")
	h.say(t, "<@&100> <@&200> <@&100>")
}

func TestWizard_Setup(t *testing.T) {
	ctx := context.Background()
	h := newWizardHarness(t)

	c, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)
	require.Equal(t, PhasePanelMeta, c.Phase())

	h.fillPanel(t, "help")
	require.Equal(t, StepOptionName, c.Step())

	h.fillOption(t, "billing", "What plan?", "Order number?")
	require.Equal(t, PhaseMoreOptions, c.Phase())
	h.click(t, choiceYes)

	h.fillOption(t, "bugs")
	h.click(t, choiceNo)

	require.Equal(t, conversation.StateDone, c.State())
	require.Equal(t, fmt.Sprintf(messages.PanelCreated, "help", 2), h.messenger.lastNotice())
	require.Equal(t, 0, h.registry.Len())

	panel, err := h.store.FindPanelByName(ctx, "1", "help")
	require.NoError(t, err)
	require.Equal(t, "Support", panel.EmbedTitle)
	require.Equal(t, custom.Snowflake("555"), panel.LogChannelID)
	require.Equal(t, "3447003", panel.EmbedColor)

	options, err := h.store.ListOptions(ctx, panel.ID)
	require.NoError(t, err)
	require.Len(t, options, 2)
	require.Equal(t, custom.CommaList{"What plan?", "Order number?"}, options[0].Questions)
	require.Equal(t, custom.CommaList{"100", "200"}, options[0].RoleIDs)
	require.Equal(t, custom.Snowflake("700"), options[0].CategoryID)
	require.Empty(t, options[1].Questions)
}

func TestWizard_ResolvedRoleMentions(t *testing.T) {
	ctx := context.Background()
	h := newWizardHarness(t)

	c, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)

	h.fillPanel(t, "help")
	h.say(t, "billing")
	h.say(t, "billing help")
	h.say(t, "Tell us about billing")
	h.say(t, "none")
	h.click(t, "700")

	// Mentions rendered as @Staff carry no <@&id> markup in the text.
	h.sayRoles(t, "@Staff @Billing @Staff", "300", "400", "300")
	h.click(t, choiceNo)
	require.Equal(t, conversation.StateDone, c.State())

	panel, err := h.store.FindPanelByName(ctx, "1", "help")
	require.NoError(t, err)
	options, err := h.store.ListOptions(ctx, panel.ID)
	require.NoError(t, err)
	require.Equal(t, custom.CommaList{"300", "400"}, options[0].RoleIDs)
}

func TestWizard_Reprompts(t *testing.T) {
	ctx := context.Background()
	h := newWizardHarness(t)

	c, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)

	h.say(t, "   ")
	require.Equal(t, StepPanelName, c.Step())
	require.Equal(t, "The panel name cannot be empty. Please try again.", h.messenger.lastNotice())

	h.say(t, "help")
	h.say(t, "Support")
	h.say(t, "Open a ticket")

	h.say(t, "#logs")
	require.Equal(t, StepLogChannel, c.Step())
	require.Contains(t, h.messenger.lastNotice(), "No channel mentioned")

	h.say(t, "<#999>")
	require.Equal(t, StepLogChannel, c.Step())
	require.Contains(t, h.messenger.lastNotice(), "not a valid text channel")

	h.say(t, "<#555>")
	h.say(t, "billing")
	h.say(t, "Billing")
	h.say(t, "Money things")

	h.say(t, "Plan, tier?")
	require.Equal(t, StepQuestion, c.Step())
	require.Contains(t, h.messenger.lastNotice(), "commas")

	h.say(t, "This question is far too long to fit in a modal label")
	require.Equal(t, StepQuestion, c.Step())
	require.Contains(t, h.messenger.lastNotice(), "at most 45")

	h.say(t, "What plan?")
	h.click(t, choiceNo)

	h.click(t, "not-a-category")
	require.Equal(t, StepCategory, c.Step())

	h.click(t, "701")
	h.say(t, "everyone")
	require.Equal(t, StepRoles, c.Step())
	require.Contains(t, h.messenger.lastNotice(), "No roles mentioned")

	h.say(t, "none")
	require.Equal(t, StepMoreOptions, c.Step())

	// An option name may only be used once per panel.
	h.click(t, choiceYes)
	h.say(t, "billing")
	require.Equal(t, StepOptionName, c.Step())
}

func TestWizard_DuplicateName(t *testing.T) {
	ctx := context.Background()
	h := newWizardHarness(t)

	_, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)
	h.fillPanel(t, "help")
	h.fillOption(t, "billing")
	h.click(t, choiceNo)

	c, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)
	h.say(t, "help")
	require.Equal(t, StepPanelName, c.Step())
	require.Contains(t, h.messenger.lastNotice(), "already exists")
}

func TestWizard_NoCategories(t *testing.T) {
	ctx := context.Background()
	h := newWizardHarness(t)
	h.dir.categories = nil

	c, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)
	h.fillPanel(t, "help")
	h.say(t, "billing")
	h.say(t, "Billing")
	h.say(t, "Money things")
	h.say(t, "none")

	require.Equal(t, conversation.StateFailed, c.State())
	require.Equal(t, messages.SetupNoCategories, h.messenger.lastNotice())

	panels, err := h.store.ListPanels(ctx, "1")
	require.NoError(t, err)
	require.Empty(t, panels)
}

func TestWizard_CategoriesCapped(t *testing.T) {
	ctx := context.Background()
	h := newWizardHarness(t)

	h.dir.categories = nil
	for i := 0; i < 30; i++ {
		h.dir.categories = append(h.dir.categories, Channel{ID: fmt.Sprint(800 + i), Name: fmt.Sprintf("cat-%d", i)})
	}

	_, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)
	h.fillPanel(t, "help")
	h.say(t, "billing")
	h.say(t, "Billing")
	h.say(t, "Money things")
	h.say(t, "none")

	p := h.messenger.lastPrompt()
	require.Equal(t, conversation.StyleSelect, p.Style)
	require.Len(t, p.Choices, MaxChoices)
}

func TestWizard_TimeoutDiscardsDraft(t *testing.T) {
	ctx := context.Background()
	h := newWizardHarness(t)

	c, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)
	h.say(t, "help")
	h.say(t, "Support")
	h.say(t, "Open a ticket")

	h.clock.Advance(LogChannelTimeout)
	require.Equal(t, conversation.StateTimedOut, c.State())
	require.Equal(t, messages.SetupTimedOut, h.messenger.lastNotice())

	panels, err := h.store.ListPanels(ctx, "1")
	require.NoError(t, err)
	require.Empty(t, panels)

	next, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)
	require.Equal(t, StepPanelName, next.Step())
}

func TestWizard_Edit(t *testing.T) {
	ctx := context.Background()
	h := newWizardHarness(t)

	_, err := h.wizard.StartSetup(ctx, admin)
	require.NoError(t, err)
	h.fillPanel(t, "help")
	h.fillOption(t, "billing")
	h.click(t, choiceNo)

	_, err = h.wizard.StartEdit(ctx, admin, "missing")
	require.ErrorIs(t, err, dataaccess.ErrNotFound)

	tests := []struct {
		field string
		input func(h *wizardHarness)
	}{
		{
			field: FieldTitle,
			input: func(h *wizardHarness) { h.say(t, "New title") },
		},
		{
			field: FieldLogChannel,
			input: func(h *wizardHarness) { h.say(t, "<#555>") },
		},
		{
			field: FieldCategory,
			input: func(h *wizardHarness) { h.click(t, "701") },
		},
	}

	for _, tt := range tests {
		c, err := h.wizard.StartEdit(ctx, admin, "help")
		require.NoError(t, err)
		h.click(t, tt.field)
		tt.input(h)
		require.Equal(t, conversation.StateDone, c.State(), tt.field)
		require.Equal(t, fmt.Sprintf(messages.PanelUpdated, "help"), h.messenger.lastNotice())
	}

	panel, err := h.store.FindPanelByName(ctx, "1", "help")
	require.NoError(t, err)
	require.Equal(t, "New title", panel.EmbedTitle)
	require.Equal(t, "Open a ticket below", panel.EmbedDescription)
	require.Equal(t, custom.Snowflake("701"), panel.CategoryID)
}

func TestParseMentions(t *testing.T) {
	id, ok := ParseChannelMention("logs go to <#123> please")
	require.True(t, ok)
	require.Equal(t, "123", id)

	_, ok = ParseChannelMention("#logs")
	require.False(t, ok)

	require.Equal(t, []string{"1", "2"}, ParseRoleMentions("<@&1> <@2> <@&2> <@&1>"))
	require.Empty(t, ParseRoleMentions("none"))
}
