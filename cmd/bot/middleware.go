package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/discord"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"github.com/Jacobbrewer1/warden/pkg/messages"
	"github.com/Jacobbrewer1/warden/pkg/request"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

const (
	// commandRate is the sustained number of commands a user may run.
	commandRate = rate.Limit(0.5)

	// commandBurst is how many commands a user may run back to back.
	commandBurst = 5

	// limiterIdle is how long an unused limiter is kept.
	limiterIdle = 10 * time.Minute
)

// commandProcessor is the processor for an interaction.
type commandProcessor func(a IApp, i *discordgo.InteractionCreate) error

// authOption is an option for the auth middleware. It indicates the type of authentication required.
type authOption int

const (
	// authOptionNone indicates that no authentication is required.
	authOptionNone authOption = iota
)

type Controller func(w http.ResponseWriter, r *http.Request)

func middlewareHttp(handler Controller, _ authOption, a IApp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC()
		cw := request.NewClientWriter(w)

		// Recover from any panics that occur in the handler.
		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
				cw.WriteHeader(http.StatusInternalServerError)
				if err := json.NewEncoder(cw).Encode(request.NewMessage(request.ErrInternalServer.Error())); err != nil {
					a.Log().Error("Error encoding response", slog.String(logging.KeyError, err.Error()))
				}
			}
		}()

		var path string
		route := mux.CurrentRoute(r)
		if route != nil { // The route may be nil if the request is not routed.
			var err error
			path, err = route.GetPathTemplate()
			if err != nil {
				// An error here is only returned if the route does not define a path.
				a.Log().Error("Error getting path template", slog.String(logging.KeyError, err.Error()))
				path = r.URL.Path
			}
		} else {
			path = r.URL.Path
		}

		defer func() {
			// The status code is only known once the handler returned.
			monitoring.HttpTotalRequests.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Inc()
			monitoring.HttpRequestDuration.WithLabelValues(path, r.Method, fmt.Sprintf("%d", cw.StatusCode())).Observe(time.Since(now).Seconds())
		}()

		handler(cw, r)
	}
}

// interactionHandler routes interactions to their processors. Commands and
// autocompletes are keyed by command name, components and modals by the
// prefix of their custom id.
func interactionHandler(a *App, commands, autocompletes, components map[string]commandProcessor) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		name, processor, limited := route(i, commands, autocompletes, components)
		l := a.Log().With(
			slog.String(logging.KeyCommand, name),
			slog.String(logging.KeyGuild, i.GuildID),
			slog.String(logging.KeyUser, discord.InteractionUser(i).ID),
		)

		defer func() {
			if rec := recover(); rec != nil {
				l.Error("Panic in interaction handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String("stack", string(debug.Stack())),
				)
				reply(a, i, messages.ErrUserErrorProcessing)
			}
		}()

		if processor == nil {
			l.Warn("No processor found for interaction")
			if i.Type != discordgo.InteractionApplicationCommandAutocomplete {
				reply(a, i, messages.ErrUserErrorProcessing)
			}
			return
		}

		if i.GuildID == "" {
			reply(a, i, messages.ErrGuildOnly)
			return
		}

		if limited && !a.limiter.allow(discord.InteractionUser(i).ID) {
			monitoring.RateLimitedCommands.Inc()
			reply(a, i, messages.ErrRateLimited)
			return
		}

		t := time.Now()
		err := processor(a, i)
		monitoring.DiscordCommandDuration.WithLabelValues(name).Observe(time.Since(t).Seconds())
		if err == nil {
			return
		}

		monitoring.DiscordCommandErrors.WithLabelValues(name).Inc()
		msg, expected := userMessage(err)
		if expected {
			l.Debug("Interaction refused", slog.String(logging.KeyError, err.Error()))
		} else {
			l.Error("Error processing interaction", slog.String(logging.KeyError, err.Error()))
		}

		if i.Type != discordgo.InteractionApplicationCommandAutocomplete {
			reply(a, i, msg)
		}
	}
}

// route finds the processor of an interaction and whether it is rate limited.
func route(i *discordgo.InteractionCreate, commands, autocompletes, components map[string]commandProcessor) (string, commandProcessor, bool) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		return name, commands[name], true
	case discordgo.InteractionApplicationCommandAutocomplete:
		name := i.ApplicationCommandData().Name
		return name, autocompletes[name], false
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if conversation.IsComponentID(customID) {
			return "conversation", conversationComponentHandler, false
		}
		prefix, _ := ticketing.SplitID(customID)
		return prefix, components[prefix], true
	case discordgo.InteractionModalSubmit:
		prefix, _ := ticketing.SplitID(i.ModalSubmitData().CustomID)
		return prefix, components[prefix], true
	default:
		return "unknown", nil, false
	}
}

// messageHandler hands guild messages to the wizard conversation of the guild.
func messageHandler(a IApp) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		ev, ok := discord.MessageEvent(m)
		if !ok {
			return
		}

		defer func() {
			if rec := recover(); rec != nil {
				a.Log().Error("Panic in message handler",
					slog.String(logging.KeyError, fmt.Sprint(rec)),
					slog.String(logging.KeyGuild, ev.GuildID),
					slog.String("stack", string(debug.Stack())),
				)
			}
		}()

		a.Registry().Dispatch(context.Background(), ev)
	}
}

// userLimiter keeps a token bucket per user.
type userLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*limiterEntry
	lastScan time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newUserLimiter(limit rate.Limit, burst int) *userLimiter {
	return &userLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*limiterEntry),
	}
}

// allow reports whether the user may run another command now.
func (u *userLimiter) allow(userID string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := time.Now()
	if now.Sub(u.lastScan) > limiterIdle {
		for id, e := range u.limiters {
			if now.Sub(e.lastSeen) > limiterIdle {
				delete(u.limiters, id)
			}
		}
		u.lastScan = now
	}

	e, ok := u.limiters[userID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(u.limit, u.burst)}
		u.limiters[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
