package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Jacobbrewer1/warden/pkg/clock"
	"github.com/Jacobbrewer1/warden/pkg/logging"
)

// State is where a conversation is in its life.
type State int

const (
	// StateActive waits for input.
	StateActive State = iota

	// StateCommitting is persisting the draft.
	StateCommitting

	// StateDone committed the draft.
	StateDone

	// StateTimedOut was not answered in time.
	StateTimedOut

	// StateCancelled was cancelled by the actor or superseded.
	StateCancelled

	// StateFailed ended on an error.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateCommitting:
		return "committing"
	case StateDone:
		return "done"
	case StateTimedOut:
		return "timed_out"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s >= StateDone
}

// Conversation is one run of a flow with one actor. It handles one event at
// a time.
type Conversation[D any] struct {
	mu sync.Mutex
	l  *slog.Logger

	id     string
	actor  Actor
	engine *Engine[D]

	draft   *D
	step    *Step[D]
	seq     int
	expects Style
	timer   clock.Timer

	state State
	err   error
}

func (c *Conversation[D]) ID() string {
	return c.id
}

func (c *Conversation[D]) Actor() Actor {
	return c.actor
}

func (c *Conversation[D]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err is why the conversation ended. It is nil while active and after a commit.
func (c *Conversation[D]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Step is the id of the step waiting for input.
func (c *Conversation[D]) Step() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == nil {
		return ""
	}
	return c.step.ID
}

// Phase is the phase of the step waiting for input.
func (c *Conversation[D]) Phase() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == nil {
		return ""
	}
	return c.step.Phase
}

func (c *Conversation[D]) Deliver(ctx context.Context, ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive || !c.matches(ev) {
		return false
	}
	c.stopTimer()

	var in Input
	switch ev.Kind {
	case EventMessage:
		text := strings.TrimSpace(ev.Text)
		if strings.EqualFold(text, CancelWord) {
			c.finish(ctx, StateCancelled, ErrCancelled, c.engine.flow.Messages.Cancelled)
			return true
		}
		in = Input{Text: text, Roles: ev.Roles}
	case EventComponent:
		in = Input{Value: ev.Value}
	}

	next, err := c.step.Handle(ctx, c.draft, in)
	if err != nil {
		c.rejected(ctx, err)
		return true
	}

	if next == Done {
		c.commit(ctx)
		return true
	}

	step, ok := c.engine.steps[next]
	if !ok {
		c.fail(ctx, fmt.Errorf("%w: %s", ErrUnknownStep, next))
		return true
	}
	c.step = step

	if err := c.prompt(ctx); err != nil {
		c.l.Error("Error sending prompt", slog.String(logging.KeyError, err.Error()))
	}
	return true
}

func (c *Conversation[D]) Supersede(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return
	}
	c.finish(ctx, StateCancelled, ErrSuperseded, c.engine.flow.Messages.Superseded)
}

func (c *Conversation[D]) matches(ev Event) bool {
	if ev.GuildID != c.actor.GuildID || ev.UserID != c.actor.UserID {
		return false
	}

	switch ev.Kind {
	case EventMessage:
		return c.expects == StyleText && ev.ChannelID == c.actor.ChannelID
	case EventComponent:
		return c.expects != StyleText && ev.Ref.Conversation == c.id && ev.Ref.Seq == c.seq
	default:
		return false
	}
}

// rejected handles an error returned by a step handler.
func (c *Conversation[D]) rejected(ctx context.Context, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) && c.step.OnInvalid == RetryOnInvalid {
		c.l.Debug("Input rejected",
			slog.String("step", c.step.ID),
			slog.String("reason", verr.Message),
		)
		c.notice(ctx, verr.Message)
		if err := c.prompt(ctx); err != nil {
			c.l.Error("Error sending prompt", slog.String(logging.KeyError, err.Error()))
		}
		return
	}
	c.fail(ctx, err)
}

// prompt shows the current step and arms its timer. A failure ends the
// conversation.
func (c *Conversation[D]) prompt(ctx context.Context) error {
	p, err := c.step.Prompt(ctx, c.draft)
	if err != nil {
		c.fail(ctx, err)
		return err
	}

	c.seq++
	c.expects = p.Style
	ref := Ref{Conversation: c.id, Seq: c.seq}

	if err := c.engine.messenger.SendPrompt(ctx, c.actor.ChannelID, ref, p); err != nil {
		c.fail(ctx, fmt.Errorf("error sending prompt %s: %w", c.step.ID, err))
		return err
	}

	seq := c.seq
	c.timer = c.engine.clock.AfterFunc(p.timeout(), func() {
		c.expire(seq)
	})
	return nil
}

func (c *Conversation[D]) expire(seq int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive || c.seq != seq {
		return
	}
	c.finish(context.Background(), StateTimedOut, ErrTimedOut, c.engine.flow.Messages.TimedOut)
}

func (c *Conversation[D]) commit(ctx context.Context) {
	c.state = StateCommitting

	text, err := c.engine.flow.Commit(ctx, c.actor, c.draft)
	if err != nil {
		c.l.Error("Error committing conversation", slog.String(logging.KeyError, err.Error()))

		msg := c.engine.flow.Messages.CommitFailed
		var abort *AbortError
		if errors.As(err, &abort) {
			msg = abort.Message
		}
		c.finish(ctx, StateFailed, err, msg)
		return
	}

	c.finish(ctx, StateDone, nil, text)
}

func (c *Conversation[D]) fail(ctx context.Context, err error) {
	msg := c.engine.flow.Messages.Failed

	var abort *AbortError
	var verr *ValidationError
	switch {
	case errors.As(err, &abort):
		msg = abort.Message
	case errors.As(err, &verr):
		msg = verr.Message
	default:
		c.l.Error("Conversation failed", slog.String(logging.KeyError, err.Error()))
	}
	c.finish(ctx, StateFailed, err, msg)
}

// finish moves to a terminal state, drops the draft and tells the actor.
func (c *Conversation[D]) finish(ctx context.Context, state State, err error, text string) {
	if c.state.Terminal() {
		return
	}

	c.stopTimer()
	c.state = state
	c.err = err
	c.draft = nil
	c.engine.registry.Remove(c.actor.GuildID, c)

	c.l.Debug("Conversation finished", slog.String("state", state.String()))
	if c.engine.onFinish != nil {
		c.engine.onFinish(c.engine.flow.Name, state)
	}

	c.notice(ctx, text)
}

func (c *Conversation[D]) notice(ctx context.Context, text string) {
	if text == "" {
		return
	}
	if err := c.engine.messenger.SendNotice(ctx, c.actor.ChannelID, text); err != nil {
		c.l.Warn("Error sending notice", slog.String(logging.KeyError, err.Error()))
	}
}

func (c *Conversation[D]) stopTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
