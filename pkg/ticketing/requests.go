package ticketing

import (
	"sync"
	"time"

	"github.com/Jacobbrewer1/warden/pkg/clock"
)

// CloseRequest asks the creator of a ticket to confirm its closure.
type CloseRequest struct {
	ID        string
	TicketID  int64
	ChannelID string
	CreatorID string
	Requester User
	Reason    string

	// ExpiresAt is zero for a request that never lapses.
	ExpiresAt time.Time
}

type pendingRequest struct {
	req   CloseRequest
	timer clock.Timer

	// claimed is set while a confirmation is closing the ticket.
	claimed bool

	// lapsed records a timer that fired while the request was claimed.
	lapsed bool
}

// requestTable holds the close requests waiting for confirmation.
type requestTable struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest
}

func newRequestTable() *requestTable {
	return &requestTable{
		pending: make(map[string]*pendingRequest),
	}
}

func (t *requestTable) add(req CloseRequest, timer clock.Timer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[req.ID] = &pendingRequest{req: req, timer: timer}
}

func (t *requestTable) get(id string) (CloseRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[id]
	if !ok {
		return CloseRequest{}, false
	}
	return p.req, true
}

// take removes the request and reports whether it was still pending.
func (t *requestTable) take(id string) (CloseRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[id]
	if !ok {
		return CloseRequest{}, false
	}
	delete(t.pending, id)
	if p.timer != nil {
		p.timer.Stop()
	}
	return p.req, true
}

// claim reserves the request for a confirmation. It fails when the request
// is gone or another confirmation holds it.
func (t *requestTable) claim(id string) (CloseRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[id]
	if !ok || p.claimed {
		return CloseRequest{}, false
	}
	p.claimed = true
	return p.req, true
}

// release hands a claimed request back after a failed confirmation. It
// reports whether the request lapsed in the meantime.
func (t *requestTable) release(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[id]
	if !ok {
		return false
	}
	p.claimed = false
	return p.lapsed
}

// lapse removes a request whose timer fired. A claimed request is only
// marked, the confirmation holding it decides.
func (t *requestTable) lapse(id string) (CloseRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.pending[id]
	if !ok {
		return CloseRequest{}, false
	}
	if p.claimed {
		p.lapsed = true
		return CloseRequest{}, false
	}
	delete(t.pending, id)
	return p.req, true
}

// dropTicket removes every request of the ticket.
func (t *requestTable) dropTicket(ticketID int64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for id, p := range t.pending {
		if p.req.TicketID != ticketID {
			continue
		}
		if p.timer != nil {
			p.timer.Stop()
		}
		delete(t.pending, id)
		n++
	}
	return n
}

func (t *requestTable) hasTicket(ticketID int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.pending {
		if p.req.TicketID == ticketID {
			return true
		}
	}
	return false
}
