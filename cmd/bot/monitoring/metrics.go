package monitoring

import (
	"fmt"

	"github.com/Jacobbrewer1/warden/cmd/bot/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalDiscordEvents is the total number of events.
	TotalDiscordEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_total_discord_events", config.AppName),
			Help: "Total number of events",
		},
		[]string{"event"},
	)

	// HttpTotalRequests is the total number of http requests.
	HttpTotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_http_total_requests", config.AppName),
			Help: "Total number of http requests",
		},
		[]string{"path", "method", "status_code"},
	)

	// HttpRequestDuration is the duration of the http request.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: fmt.Sprintf("%s_http_request_duration", config.AppName),
			Help: "Duration of the http request",
		},
		[]string{"path", "method", "status_code"},
	)

	TotalDiscordGuilds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_total_discord_guilds", config.AppName),
			Help: "Total number of discord guilds",
		},
	)

	// DiscordCommandDuration is the duration of an interaction by command or component.
	DiscordCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: fmt.Sprintf("%s_discord_command_duration", config.AppName),
			Help: "Duration of the discord command",
		},
		[]string{"command"},
	)

	// DiscordCommandErrors counts interactions that failed by command or component.
	DiscordCommandErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_discord_command_errors", config.AppName),
			Help: "Total number of failed discord commands",
		},
		[]string{"command"},
	)

	// RateLimitedCommands counts commands refused by the per user limiter.
	RateLimitedCommands = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_rate_limited_commands", config.AppName),
			Help: "Total number of commands refused by the rate limiter",
		},
	)

	// ConversationOutcomes counts finished wizard conversations by flow and final state.
	ConversationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_conversation_outcomes", config.AppName),
			Help: "Total number of finished conversations",
		},
		[]string{"flow", "state"},
	)
)

// NewActiveConversations registers a gauge that reports count on every scrape.
func NewActiveConversations(count func() int) prometheus.GaugeFunc {
	return promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_active_conversations", config.AppName),
			Help: "Number of wizard conversations in flight",
		},
		func() float64 {
			return float64(count())
		},
	)
}
