package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/cmd/bot/config"
	"github.com/Jacobbrewer1/warden/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/warden/pkg/clock"
	"github.com/Jacobbrewer1/warden/pkg/conversation"
	"github.com/Jacobbrewer1/warden/pkg/dataaccess"
	"github.com/Jacobbrewer1/warden/pkg/discord"
	"github.com/Jacobbrewer1/warden/pkg/logging"
	"github.com/Jacobbrewer1/warden/pkg/request"
	"github.com/Jacobbrewer1/warden/pkg/setup"
	"github.com/Jacobbrewer1/warden/pkg/ticketing"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// PathMetrics is the path for metrics.
	PathMetrics = "/metrics"

	// PathHealth is the path for health check.
	PathHealth = "/health"
)

// IApp is the interface for the application.
type IApp interface {
	// Log returns the logger.
	Log() *slog.Logger

	// Session returns the discord session.
	Session() *discordgo.Session

	// Store returns the panel and ticket store.
	Store() dataaccess.Store

	// Registry returns the registry of running wizard conversations.
	Registry() *conversation.Registry

	// Wizard returns the setup and edit wizard.
	Wizard() *setup.Wizard

	// Tickets returns the ticket controller.
	Tickets() *ticketing.Controller
}

type App struct {
	// l is the logger.
	l *slog.Logger

	// cfg is the process configuration.
	cfg *config.Config

	// r is the router for the application.
	r *mux.Router

	// svr is the server for the application.
	svr *http.Server

	// s is the discord session.
	s *discordgo.Session

	// eventNotifier is the channel for notifying of events.
	eventNotifier chan any

	store    dataaccess.Store
	registry *conversation.Registry
	wizard   *setup.Wizard
	tickets  *ticketing.Controller
	limiter  *userLimiter

	// registered holds the commands created in each guild.
	cmdMu      sync.Mutex
	registered map[string][]*discordgo.ApplicationCommand
}

// NewApp creates a new instance of App.
func NewApp(l *slog.Logger, cfg *config.Config, r *mux.Router) *App {
	return &App{
		l:        l,
		cfg:      cfg,
		r:        r,
		registry: conversation.NewRegistry(),
		limiter:  newUserLimiter(commandRate, commandBurst),

		registered: make(map[string][]*discordgo.ApplicationCommand),
	}
}

func (a *App) Run() error {
	ctx := context.Background()

	store, err := connectStore(ctx, a.l, a.cfg)
	if err != nil {
		return fmt.Errorf("error connecting store: %w", err)
	}
	a.store = store

	// Register bot.
	if err := a.RegisterBot(); err != nil {
		return fmt.Errorf("error registering bot: %w", err)
	}

	if err := a.registerServices(); err != nil {
		return fmt.Errorf("error creating services: %w", err)
	}

	a.s.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		a.l.Info(fmt.Sprintf("Logged in as %s", r.User.Username))
	})

	if err := a.RegisterDiscordHandlers(); err != nil {
		return fmt.Errorf("error registering discord handlers: %w", err)
	}

	// Start event listener.
	go a.eventListener()

	// Open websocket.
	if err := a.s.Open(); err != nil {
		return fmt.Errorf("error opening connection to Discord: %w", err)
	}

	// Register slash commands.
	if err := a.registerSlashCommands(); err != nil {
		return fmt.Errorf("error registering slash commands: %w", err)
	}

	a.l.Info("Bot is now running.")

	a.generateServer()
	a.setupRoutes()
	a.runServer()

	// Register listener for shutdown signal.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	sig := <-c
	a.l.Info("Received shutdown signal", slog.String("signal", sig.String()))
	return a.ShutdownHook()
}

// registerServices builds the wizard and the ticket controller on top of the
// session and the store.
func (a *App) registerServices() error {
	adapter := discord.NewAdapter(a.l, a.s)
	clk := clock.Real()

	wizard, err := setup.NewWizard(a.l, a.store, adapter, a.registry, adapter, clk)
	if err != nil {
		return err
	}
	wizard.OnFinish(func(flow string, state conversation.State) {
		monitoring.ConversationOutcomes.WithLabelValues(flow, state.String()).Inc()
	})
	monitoring.NewActiveConversations(a.registry.Len)

	a.wizard = wizard
	a.tickets = ticketing.NewController(a.l, a.store, adapter, clk)
	return nil
}

func (a *App) ShutdownHook() error {
	// Reset the total number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if a.svr != nil {
		if err := a.svr.Shutdown(ctx); err != nil {
			a.l.Error("Error shutting down monitoring server", slog.String(logging.KeyError, err.Error()))
		}
	}

	// Unregister slash commands.
	if err := a.unregisterSlashCommands(); err != nil {
		a.l.Error("Error unregistering slash commands", slog.String(logging.KeyError, err.Error()))
	}

	// Close the connection to Discord.
	if err := a.s.Close(); err != nil {
		return fmt.Errorf("error closing connection to Discord: %w", err)
	}

	if err := a.store.Close(); err != nil {
		return fmt.Errorf("error closing store: %w", err)
	}
	return nil
}

func (a *App) RegisterBot() error {
	// Default the number of guilds to 0.
	monitoring.TotalDiscordGuilds.Set(0)

	dg, err := discordgo.New("Bot " + a.cfg.BotToken)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.MakeIntent(discordgo.IntentsAll)

	if a.eventNotifier == nil {
		// Buffered so that the gateway never blocks on the listener.
		a.eventNotifier = make(chan any, 100)
	}

	dg.SetEventNotifier(a.eventNotifier)

	a.s = dg
	return nil
}

func (a *App) runServer() {
	go func() {
		a.l.Info("Starting monitoring server", slog.String("addr", a.svr.Addr))
		if err := a.svr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.l.Error("Error starting monitoring server", slog.String(logging.KeyError, err.Error()))
			a.l.Warn("Monitoring server will not be available")
		}
	}()
}

func (a *App) setupRoutes() {
	a.r.HandleFunc(PathMetrics, promhttp.Handler().ServeHTTP).Methods(http.MethodGet)
	a.r.HandleFunc(PathHealth, middlewareHttp(a.healthCheck(), authOptionNone, a)).Methods(http.MethodGet)

	a.r.NotFoundHandler = request.NotFoundHandler(a.l)
	a.r.MethodNotAllowedHandler = request.MethodNotAllowedHandler(a.l)
}

func (a *App) generateServer() {
	a.svr = &http.Server{
		Addr:              ":" + a.cfg.MonitoringPort,
		Handler:           a.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (a *App) GetJoinedGuilds() ([]*discordgo.UserGuild, error) {
	guilds, err := a.s.UserGuilds(0, "", "")
	if err != nil {
		return nil, fmt.Errorf("error getting guilds: %w", err)
	}
	return guilds, nil
}

func (a *App) RegisterDiscordHandlers() error {
	// Bot joined guild.
	a.s.AddHandler(guildJoinedHandler(a))

	// Bot left guild.
	a.s.AddHandler(guildLeaveHandler(a))

	// Wizard answers typed in the channel.
	a.s.AddHandler(messageHandler(a))

	// Interaction create handler.
	a.s.AddHandler(interactionHandler(a,
		// Slash Controllers
		map[string]commandProcessor{
			sendPanelCmd.Name:    requireAdministrator(sendPanelHandler),
			clearPanelsCmd.Name:  requireAdministrator(clearPanelsHandler),
			setupPanelCmd.Name:   requireAdministrator(setupPanelHandler),
			editPanelCmd.Name:    requireAdministrator(editPanelHandler),
			closeRequestCmd.Name: closeRequestHandler,
			closeTicketCmd.Name:  requireAdministrator(closeTicketHandler),
		},
		// Autocomplete Controllers
		map[string]commandProcessor{
			sendPanelCmd.Name:   panelNameAutocomplete,
			editPanelCmd.Name:   panelNameAutocomplete,
			clearPanelsCmd.Name: panelNameAutocomplete,
		},
		// Component Controllers, keyed by custom id prefix.
		map[string]commandProcessor{
			ticketing.PrefixSelect:  ticketSelectHandler,
			ticketing.PrefixModal:   ticketModalHandler,
			ticketing.PrefixConfirm: closeConfirmHandler,
		}))
	return nil
}

func (a *App) eventListener() {
	for e := range a.eventNotifier {
		switch t := e.(type) {
		case *discordgo.Event:
			if t.Type != "" {
				monitoring.TotalDiscordEvents.WithLabelValues(t.Type).Inc()
			} else {
				// If there is no type, then use the operation name.
				monitoring.TotalDiscordEvents.WithLabelValues(strings.ToUpper(t.Operation.String())).Inc()
			}
		default:
			a.l.Error("Unknown event type", slog.String("type", fmt.Sprintf("%T", e)))
			monitoring.TotalDiscordEvents.WithLabelValues("UNKNOWN").Inc()
		}
	}
}

func (a *App) Log() *slog.Logger {
	return a.l
}

func (a *App) Session() *discordgo.Session {
	return a.s
}

func (a *App) Store() dataaccess.Store {
	return a.store
}

func (a *App) Registry() *conversation.Registry {
	return a.registry
}

func (a *App) Wizard() *setup.Wizard {
	return a.wizard
}

func (a *App) Tickets() *ticketing.Controller {
	return a.tickets
}
