package ticketing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	methodConfirmed = "confirmed"
	methodForced    = "forced"
)

const (
	outcomeRequested = "requested"
	outcomeConfirmed = "confirmed"
	outcomeRefused   = "refused"
	outcomeExpired   = "expired"
)

var (
	// TicketsOpened is the number of tickets created.
	TicketsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_tickets_opened_total",
			Help: "Number of tickets created",
		},
	)

	// TicketsClosed is the number of tickets closed by method.
	TicketsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_tickets_closed_total",
			Help: "Number of tickets closed",
		},
		[]string{"method"},
	)

	// CloseRequests counts close requests by outcome.
	CloseRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_close_requests_total",
			Help: "Number of close requests by outcome",
		},
		[]string{"outcome"},
	)
)
