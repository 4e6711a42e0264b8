package main

import (
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/warden/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/warden/pkg/logging"
)

func guildJoinedHandler(a *App) func(s *discordgo.Session, g *discordgo.GuildCreate) {
	return func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		a.Log().Info(fmt.Sprintf("Joined guild %s", g.Name), slog.String(logging.KeyGuild, g.ID))

		// Increment the total number of guilds.
		monitoring.TotalDiscordGuilds.Inc()

		if err := a.registerGuildCommands(g.ID); err != nil {
			a.Log().Error("Error registering guild commands",
				slog.String(logging.KeyGuild, g.ID),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}

func guildLeaveHandler(a *App) func(s *discordgo.Session, g *discordgo.GuildDelete) {
	return func(_ *discordgo.Session, g *discordgo.GuildDelete) {
		a.Log().Info("Left guild", slog.String(logging.KeyGuild, g.ID))

		// Decrement the total number of guilds.
		monitoring.TotalDiscordGuilds.Dec()

		a.cmdMu.Lock()
		delete(a.registered, g.ID)
		a.cmdMu.Unlock()
	}
}

func (a *App) registerSlashCommands() error {
	// Get all guilds the bot is in.
	guilds, err := a.GetJoinedGuilds()
	if err != nil {
		return fmt.Errorf("error getting guilds: %w", err)
	}

	// Register slash commands for each guild.
	for _, g := range guilds {
		if err := a.registerGuildCommands(g.ID); err != nil {
			return err
		}
	}
	return nil
}

// registerGuildCommands installs the commands in a guild once.
func (a *App) registerGuildCommands(guildID string) error {
	a.cmdMu.Lock()
	_, done := a.registered[guildID]
	a.cmdMu.Unlock()
	if done {
		return nil
	}

	cmds, err := a.s.ApplicationCommandBulkOverwrite(a.cfg.ApplicationId, guildID, guildCommands)
	if err != nil {
		return fmt.Errorf("error creating commands for guild %s: %w", guildID, err)
	}

	a.cmdMu.Lock()
	a.registered[guildID] = cmds
	a.cmdMu.Unlock()
	return nil
}

func (a *App) unregisterSlashCommands() error {
	a.cmdMu.Lock()
	registered := a.registered
	a.registered = make(map[string][]*discordgo.ApplicationCommand)
	a.cmdMu.Unlock()

	// Delete slash commands for each guild.
	for guildID, cmds := range registered {
		for _, cmd := range cmds {
			if err := a.s.ApplicationCommandDelete(a.cfg.ApplicationId, guildID, cmd.ID); err != nil {
				return fmt.Errorf("error deleting command %s for guild %s: %w", cmd.Name, guildID, err)
			}
		}
	}
	return nil
}
