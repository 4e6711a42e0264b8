package conversation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/clock"
	"github.com/stretchr/testify/require"
)

type sentPrompt struct {
	channel string
	ref     Ref
	prompt  Prompt
}

type fakeMessenger struct {
	mu      sync.Mutex
	prompts []sentPrompt
	notices []string
	failOn  int
}

func (m *fakeMessenger) SendPrompt(_ context.Context, channelID string, ref Ref, p Prompt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failOn > 0 && len(m.prompts)+1 == m.failOn {
		return errors.New("discord unavailable")
	}
	m.prompts = append(m.prompts, sentPrompt{channel: channelID, ref: ref, prompt: p})
	return nil
}

func (m *fakeMessenger) SendNotice(_ context.Context, _ string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notices = append(m.notices, text)
	return nil
}

func (m *fakeMessenger) last() sentPrompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts[len(m.prompts)-1]
}

func (m *fakeMessenger) lastNotice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.notices) == 0 {
		return ""
	}
	return m.notices[len(m.notices)-1]
}

type testDraft struct {
	Name  string
	Color string
}

type harness struct {
	engine    *Engine[testDraft]
	registry  *Registry
	messenger *fakeMessenger
	clock     *clock.FakeClock
	committed []testDraft
	commitErr error
	finished  []State
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		registry:  NewRegistry(),
		messenger: new(fakeMessenger),
		clock:     clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	flow := Flow[testDraft]{
		Name:  "test",
		Start: "name",
		Steps: []Step[testDraft]{
			{
				ID:     "name",
				Phase:  "naming",
				Prompt: Static[testDraft](Prompt{Text: "Name?"}),
				Handle: func(_ context.Context, d *testDraft, in Input) (string, error) {
					if in.Text == "" {
						return "", Invalid("A name is required.")
					}
					d.Name = in.Text
					return "color", nil
				},
			},
			{
				ID:    "color",
				Phase: "colouring",
				Prompt: Static[testDraft](Prompt{
					Text:    "Colour?",
					Style:   StyleButtons,
					Choices: []Choice{{Label: "Red", Value: "red"}, {Label: "Blue", Value: "blue"}},
				}),
				Handle: func(_ context.Context, d *testDraft, in Input) (string, error) {
					d.Color = in.Value
					return Done, nil
				},
			},
		},
		NewDraft: func(Actor) *testDraft { return new(testDraft) },
		Commit: func(_ context.Context, _ Actor, d *testDraft) (string, error) {
			if h.commitErr != nil {
				return "", h.commitErr
			}
			h.committed = append(h.committed, *d)
			return "saved " + d.Name, nil
		},
		Messages: Messages{
			TimedOut:     "timed out",
			Cancelled:    "cancelled",
			Superseded:   "superseded",
			CommitFailed: "commit failed",
			Failed:       "failed",
		},
	}

	engine, err := NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)), flow, h.registry, h.messenger, h.clock)
	require.NoError(t, err)
	engine.OnFinish(func(_ string, s State) {
		h.finished = append(h.finished, s)
	})
	h.engine = engine
	return h
}

var actor = Actor{GuildID: "g1", UserID: "u1", ChannelID: "c1"}

func message(text string) Event {
	return Event{Kind: EventMessage, GuildID: actor.GuildID, UserID: actor.UserID, ChannelID: actor.ChannelID, Text: text}
}

func click(ref Ref, value string) Event {
	return Event{Kind: EventComponent, GuildID: actor.GuildID, UserID: actor.UserID, ChannelID: actor.ChannelID, Ref: ref, Value: value}
}

func TestEngine_Completes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	c, err := h.engine.Start(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, "name", c.Step())
	require.Equal(t, "naming", c.Phase())
	require.Equal(t, 1, h.registry.Len())

	require.True(t, h.registry.Dispatch(ctx, message("  Support  ")))
	require.Equal(t, "color", c.Step())

	ref := h.messenger.last().ref
	require.Equal(t, Ref{Conversation: c.ID(), Seq: 2}, ref)

	require.True(t, h.registry.Dispatch(ctx, click(ref, "blue")))
	require.Equal(t, StateDone, c.State())
	require.NoError(t, c.Err())
	require.Equal(t, []testDraft{{Name: "Support", Color: "blue"}}, h.committed)
	require.Equal(t, "saved Support", h.messenger.lastNotice())
	require.Equal(t, 0, h.registry.Len())
	require.Equal(t, []State{StateDone}, h.finished)
	require.Zero(t, h.clock.Pending())
}

func TestEngine_ValidationRetries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	c, err := h.engine.Start(ctx, actor)
	require.NoError(t, err)

	require.True(t, h.registry.Dispatch(ctx, message("   ")))
	require.Equal(t, "name", c.Step())
	require.Equal(t, StateActive, c.State())
	require.Equal(t, "A name is required.", h.messenger.lastNotice())
	require.Len(t, h.messenger.prompts, 2)
	require.Equal(t, 1, h.clock.Pending())
}

func TestEngine_IgnoresForeignEvents(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	c, err := h.engine.Start(ctx, actor)
	require.NoError(t, err)
	first := h.messenger.last().ref

	other := message("hi")
	other.UserID = "u2"
	require.False(t, h.registry.Dispatch(ctx, other))

	elsewhere := message("hi")
	elsewhere.ChannelID = "c2"
	require.False(t, h.registry.Dispatch(ctx, elsewhere))

	// A text step does not take clicks.
	require.False(t, h.registry.Dispatch(ctx, click(first, "red")))

	require.True(t, h.registry.Dispatch(ctx, message("Support")))

	// A click on an old prompt is stale.
	require.False(t, h.registry.Dispatch(ctx, click(first, "red")))

	// Text is not accepted while buttons are shown.
	require.False(t, h.registry.Dispatch(ctx, message("red")))
	require.Equal(t, "color", c.Step())
}

func TestEngine_TimesOut(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	c, err := h.engine.Start(ctx, actor)
	require.NoError(t, err)

	h.clock.Advance(DefaultTextTimeout - time.Second)
	require.Equal(t, StateActive, c.State())

	// Answering re-arms the timer with the button timeout.
	require.True(t, h.registry.Dispatch(ctx, message("Support")))
	h.clock.Advance(DefaultChoiceTimeout)

	require.Equal(t, StateTimedOut, c.State())
	require.ErrorIs(t, c.Err(), ErrTimedOut)
	require.Equal(t, "timed out", h.messenger.lastNotice())
	require.Equal(t, 0, h.registry.Len())
	require.Empty(t, h.committed)

	// The next conversation starts from the first step.
	next, err := h.engine.Start(ctx, actor)
	require.NoError(t, err)
	require.Equal(t, "name", next.Step())
}

func TestEngine_Cancel(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	c, err := h.engine.Start(ctx, actor)
	require.NoError(t, err)

	require.True(t, h.registry.Dispatch(ctx, message("CANCEL")))
	require.Equal(t, StateCancelled, c.State())
	require.ErrorIs(t, c.Err(), ErrCancelled)
	require.Equal(t, "cancelled", h.messenger.lastNotice())
	require.Zero(t, h.clock.Pending())
	require.Empty(t, h.committed)
}

func TestEngine_Supersede(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	first, err := h.engine.Start(ctx, actor)
	require.NoError(t, err)

	second, err := h.engine.Start(ctx, Actor{GuildID: "g1", UserID: "u2", ChannelID: "c1"})
	require.NoError(t, err)

	require.Equal(t, StateCancelled, first.State())
	require.ErrorIs(t, first.Err(), ErrSuperseded)
	require.Equal(t, 1, h.registry.Len())

	got, ok := h.registry.Get("g1")
	require.True(t, ok)
	require.Equal(t, second.ID(), got.ID())

	// The old actor is no longer heard.
	require.False(t, h.registry.Dispatch(ctx, message("Support")))
	require.Equal(t, 1, h.clock.Pending())
}

func TestEngine_CommitFailure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "storage", err: errors.New("disk full"), message: "commit failed"},
		{name: "abort", err: Abort("name %s taken", "Support"), message: "name Support taken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.commitErr = tt.err

			c, err := h.engine.Start(ctx, actor)
			require.NoError(t, err)
			require.True(t, h.registry.Dispatch(ctx, message("Support")))
			require.True(t, h.registry.Dispatch(ctx, click(h.messenger.last().ref, "red")))

			require.Equal(t, StateFailed, c.State())
			require.Equal(t, tt.message, h.messenger.lastNotice())
			require.Equal(t, 0, h.registry.Len())
		})
	}
}

func TestEngine_PromptFailure(t *testing.T) {
	h := newHarness(t)
	h.messenger.failOn = 1

	_, err := h.engine.Start(context.Background(), actor)
	require.ErrorIs(t, err, ErrActorNotified)
	require.Equal(t, 0, h.registry.Len())
	require.Zero(t, h.clock.Pending())

	// The actor hears about the failure once.
	require.Equal(t, []string{"failed"}, h.messenger.notices)
	require.Equal(t, []State{StateFailed}, h.finished)
}

func TestNewEngine_InvalidFlow(t *testing.T) {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	flow := Flow[testDraft]{
		Name:     "broken",
		Start:    "missing",
		NewDraft: func(Actor) *testDraft { return new(testDraft) },
		Commit:   func(context.Context, Actor, *testDraft) (string, error) { return "", nil },
	}

	_, err := NewEngine(l, flow, NewRegistry(), new(fakeMessenger), clock.Real())
	require.ErrorIs(t, err, ErrInvalidFlow)
}
