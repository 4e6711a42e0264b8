package conversation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/warden/pkg/clock"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"github.com/google/uuid"
)

// Engine runs conversations of one flow.
type Engine[D any] struct {
	l         *slog.Logger
	flow      Flow[D]
	steps     map[string]*Step[D]
	registry  *Registry
	messenger Messenger
	clock     clock.Clock

	onFinish func(flow string, state State)
}

// NewEngine checks the flow and creates an engine for it.
func NewEngine[D any](l *slog.Logger, flow Flow[D], registry *Registry, messenger Messenger, clk clock.Clock) (*Engine[D], error) {
	steps, err := flow.index()
	if err != nil {
		return nil, err
	}

	return &Engine[D]{
		l:         l.With(slog.String("flow", flow.Name)),
		flow:      flow,
		steps:     steps,
		registry:  registry,
		messenger: messenger,
		clock:     clk,
	}, nil
}

// OnFinish registers f to be called with the final state of every conversation.
func (e *Engine[D]) OnFinish(f func(flow string, state State)) {
	e.onFinish = f
}

// Start opens a conversation with the actor on a fresh draft. Any
// conversation already running in the guild is superseded.
func (e *Engine[D]) Start(ctx context.Context, actor Actor) (*Conversation[D], error) {
	return e.StartWith(ctx, actor, e.flow.NewDraft(actor))
}

// StartWith is Start with a prepared draft.
func (e *Engine[D]) StartWith(ctx context.Context, actor Actor, draft *D) (*Conversation[D], error) {
	c := &Conversation[D]{
		id:     uuid.NewString(),
		actor:  actor,
		engine: e,
		draft:  draft,
		step:   e.steps[e.flow.Start],
		state:  StateActive,
	}
	c.l = e.l.With(
		slog.String(logging.KeyConversation, c.id),
		slog.String(logging.KeyGuild, actor.GuildID),
		slog.String(logging.KeyUser, actor.UserID),
	)

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev := e.registry.Put(actor.GuildID, c); prev != nil {
		c.l.Debug("Superseding conversation", slog.String("previous", prev.ID()))
		prev.Supersede(ctx)
	}

	c.l.Debug("Conversation started")
	if err := c.prompt(ctx); err != nil {
		// prompt has failed the conversation and posted its notice.
		return nil, fmt.Errorf("error sending first prompt: %w: %w", ErrActorNotified, err)
	}
	return c, nil
}
