package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/discord"
)

const (
	commandStart  = "tsuyaku-start"
	commandStop   = "tsuyaku-stop"
	commandExport = "tsuyaku-export"
	commandStatus = "tsuyaku-status"

	slashReplyTimeout = 2500 * time.Millisecond
)

var slashCommandLines = map[string]string{
	commandStart:  cmdStart,
	commandStop:   cmdStop,
	commandExport: cmdExport,
	commandStatus: cmdStatus,
}

func slashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: commandStart, Description: "Start listening and translating."},
		{Name: commandStop, Description: "Stop listening."},
		{Name: commandExport, Description: "Export the dialogue and post it here."},
		{Name: commandStatus, Description: "Show the interpreter status."},
	}
}

// ConnectDiscord opens the relay and routes slash commands into the consumer.
// It does nothing when Discord is not configured.
func (m *Manager) ConnectDiscord(ctx context.Context) error {
	if m.deps.Discord == nil || !m.deps.Discord.Enabled() {
		return nil
	}
	if err := m.deps.Discord.Connect(ctx); err != nil {
		return err
	}
	m.deps.Discord.RegisterSlashCommandHandler(m.HandleSlashCommand)
	if m.relayChannelID != "" {
		slog.Info("relaying dialogue to discord", "channel_id", m.relayChannelID, "channel", m.deps.Discord.ResolveChannelName(m.relayChannelID))
	}
	if m.guildID == "" {
		slog.Info("discord guild not configured; slash commands not registered")
		return nil
	}
	if err := m.deps.Discord.UpsertGuildSlashCommands(m.guildID, slashCommandDefinitions()); err != nil {
		slog.Error("failed to register slash commands", "error", err, "guild_id", m.guildID)
	}
	return nil
}

func (m *Manager) HandleSlashCommand(event discord.SlashCommandEvent) {
	slog.Info("slash command received", "guild_id", event.GuildID, "channel_id", event.ChannelID, "user_id", event.UserID, "command", event.CommandName)
	if event.GuildID != m.guildID {
		respond(event, msgWrongGuild)
		return
	}
	line, ok := slashCommandLines[event.CommandName]
	if !ok {
		respond(event, "Unknown command")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), slashReplyTimeout)
	defer cancel()
	out, err := m.Execute(ctx, line)
	if err != nil {
		slog.Warn("slash command timed out", "command", event.CommandName, "error", err)
		return
	}
	respond(event, out)
}

func respond(event discord.SlashCommandEvent, content string) {
	if event.RespondEphemeral == nil || content == "" {
		return
	}
	if err := event.RespondEphemeral(content); err != nil {
		slog.Error("failed to respond to slash command", "error", err, "command", event.CommandName)
	}
}
