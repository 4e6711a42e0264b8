// Package setup holds the conversations that create and edit ticket panels.
package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/warden/pkg/clock"
	"github.com/Jacobbrewer1/warden/pkg/conversation"
)

// Wizard starts setup and edit conversations. Both share one registry, so a
// guild runs at most one of them at a time.
type Wizard struct {
	store Store
	setup *conversation.Engine[Draft]
	edit  *conversation.Engine[EditDraft]
}

// NewWizard creates the engines of both flows.
func NewWizard(l *slog.Logger, store Store, dir Directory, registry *conversation.Registry, messenger conversation.Messenger, clk clock.Clock) (*Wizard, error) {
	setupEngine, err := conversation.NewEngine(l, NewSetupFlow(store, dir), registry, messenger, clk)
	if err != nil {
		return nil, fmt.Errorf("error creating setup engine: %w", err)
	}

	editEngine, err := conversation.NewEngine(l, NewEditFlow(store, dir), registry, messenger, clk)
	if err != nil {
		return nil, fmt.Errorf("error creating edit engine: %w", err)
	}

	return &Wizard{
		store: store,
		setup: setupEngine,
		edit:  editEngine,
	}, nil
}

// OnFinish reports the final state of every wizard conversation to f.
func (w *Wizard) OnFinish(f func(flow string, state conversation.State)) {
	w.setup.OnFinish(f)
	w.edit.OnFinish(f)
}

// StartSetup begins a new panel setup for the actor.
func (w *Wizard) StartSetup(ctx context.Context, actor conversation.Actor) (*conversation.Conversation[Draft], error) {
	return w.setup.Start(ctx, actor)
}

// StartEdit begins editing the named panel. It returns dataaccess.ErrNotFound
// when the guild has no such panel.
func (w *Wizard) StartEdit(ctx context.Context, actor conversation.Actor, panelName string) (*conversation.Conversation[EditDraft], error) {
	panel, err := w.store.FindPanelByName(ctx, actor.GuildID, panelName)
	if err != nil {
		return nil, err
	}
	return w.edit.StartWith(ctx, actor, NewEditDraft(panel))
}
