package conversation

import (
	"context"
	"sync"
)

// Handle is the type-erased view of a running conversation that the
// registry keeps.
type Handle interface {
	// ID is the unique id of the conversation.
	ID() string

	// Actor is who the conversation talks to.
	Actor() Actor

	// State is the current state.
	State() State

	// Deliver hands an event to the conversation. It reports whether the
	// conversation consumed it.
	Deliver(ctx context.Context, ev Event) bool

	// Supersede ends the conversation because a newer one replaced it.
	Supersede(ctx context.Context)
}

// Registry holds the active conversation of every guild. There is at most one
// per guild, a newer conversation replaces the older one.
type Registry struct {
	mu     sync.Mutex
	active map[string]Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[string]Handle),
	}
}

// Put makes h the active conversation of guildID and returns the one it
// replaced, if any.
func (r *Registry) Put(guildID string, h Handle) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.active[guildID]
	r.active[guildID] = h
	if prev == h {
		return nil
	}
	return prev
}

// Remove drops the entry of guildID if it is still h.
func (r *Registry) Remove(guildID string, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active[guildID] != h {
		return false
	}
	delete(r.active, guildID)
	return true
}

// Get returns the active conversation of guildID.
func (r *Registry) Get(guildID string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.active[guildID]
	return h, ok
}

// Len is the number of active conversations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.active)
}

// Dispatch routes ev to the active conversation of its guild. It reports
// whether a conversation consumed the event.
func (r *Registry) Dispatch(ctx context.Context, ev Event) bool {
	h, ok := r.Get(ev.GuildID)
	if !ok {
		return false
	}
	return h.Deliver(ctx, ev)
}
