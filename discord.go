package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/TobiTenno/hekbot/internal/command"
	"github.com/TobiTenno/hekbot/internal/playback"
	"github.com/TobiTenno/hekbot/pkg/logger"

	"github.com/bwmarrin/discordgo"
)

// Discord caps messages at 2000 characters; leave headroom for the code
// fence around help chunks.
const maxHelpChunk = 1900

// deleteDelay is how long a triggering command message stays visible before
// it is removed.
const deleteDelay = time.Second

// onReady advertises the help command in the bot's status.
func (app *Application) onReady(s *discordgo.Session, r *discordgo.Ready) {
	app.logger.Info("bot ready", logger.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	})
	if err := s.UpdateGameStatus(0, app.config.Prefix+"help for help"); err != nil {
		app.logger.Warn("failed to set status", logger.Fields{"error": err.Error()})
	}
}

// onGuildCreate greets a newly joined guild in its first usable text channel.
// Best effort: a guild where we cannot send is simply skipped.
func (app *Application) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Unavailable {
		return
	}

	greeting := fmt.Sprintf("**HEKBOT READY. TYPE `%sHELP` FOR HELP**",
		strings.ToUpper(app.config.Prefix))
	for _, ch := range g.Channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if _, err := s.ChannelMessageSend(ch.ID, greeting); err == nil {
			return
		}
	}
}

// onMessageCreate routes inbound messages. Messages that do not match a
// known command stay silent so ordinary chat never triggers a reply.
func (app *Application) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	intent := app.router.Parse(m.Content)
	if intent.Kind == command.None {
		return
	}
	if !app.limiters.allow(m.Author.ID) {
		return
	}

	switch intent.Kind {
	case command.Help:
		app.metrics.IncCounter("commands_help")
		app.sendHelp(s, m.ChannelID)
	case command.Play:
		app.metrics.IncCounter("commands_play")
		app.handlePlay(s, m, intent)
	}
}

func (app *Application) handlePlay(s *discordgo.Session, m *discordgo.MessageCreate, intent command.Intent) {
	app.deleteAfterDelay(s, m)

	channelID := findUserVoiceChannel(s, m.GuildID, m.Author.ID)
	if channelID == "" {
		app.reply(s, m, "You need to be in a voice channel")
		return
	}

	sound, err := app.router.Select(intent.Collection, intent.Sound)
	if err != nil {
		// Parse already filtered unknown collections, so any miss
		// here is a bad sound name within a known collection.
		app.reply(s, m, "Sound not found")
		return
	}

	accepted := app.queue.Enqueue(playback.Request{
		Sound:     sound,
		GuildID:   m.GuildID,
		ChannelID: channelID,
	})
	if !accepted {
		// Overflow is silent backpressure toward the channel; only
		// the log records the drop.
		app.logger.Debug("request dropped, queue full", logger.Fields{
			"guild_id": m.GuildID,
			"sound":    sound.Name,
		})
	}
}

// sendHelp lists every collection and its sounds as invocable commands,
// chunked to respect the message length limit.
func (app *Application) sendHelp(s *discordgo.Session, channelID string) {
	var blocks []string
	for _, name := range app.catalog.Names() {
		coll, _ := app.catalog.Collection(name)
		var b strings.Builder
		b.WriteString(app.config.Prefix + name + "\n")
		for _, snd := range coll.Sounds() {
			fmt.Fprintf(&b, "  %s%s %s\n", app.config.Prefix, name, snd.Name)
		}
		blocks = append(blocks, b.String())
	}

	for _, msg := range helpMessages(blocks, maxHelpChunk) {
		if _, err := s.ChannelMessageSend(channelID, msg); err != nil {
			app.logger.Warn("failed to send help", logger.Fields{"error": err.Error()})
		}
	}
}

// helpMessages wraps the per-collection blocks in code fences and splits
// them into messages no longer than limit. The first message carries the
// header. Blocks are never split mid-collection.
func helpMessages(blocks []string, limit int) []string {
	var messages []string
	header := "Available sounds:\n"
	var chunk strings.Builder
	flush := func() {
		if chunk.Len() == 0 {
			return
		}
		messages = append(messages, header+"```\n"+chunk.String()+"```")
		header = ""
		chunk.Reset()
	}

	for _, block := range blocks {
		if chunk.Len() > 0 && chunk.Len()+len(block) > limit {
			flush()
		}
		chunk.WriteString(block)
		chunk.WriteString("\n")
	}
	flush()
	return messages
}

// reply mentions the author, mirroring the platform's reply affordance.
func (app *Application) reply(s *discordgo.Session, m *discordgo.MessageCreate, text string) {
	msg := fmt.Sprintf("%s, %s", m.Author.Mention(), text)
	if _, err := s.ChannelMessageSend(m.ChannelID, msg); err != nil {
		app.logger.Warn("failed to reply", logger.Fields{"error": err.Error()})
	}
}

// deleteAfterDelay removes the triggering message to keep channels tidy.
// Failure (missing permission) is ignored.
func (app *Application) deleteAfterDelay(s *discordgo.Session, m *discordgo.MessageCreate) {
	go func() {
		time.Sleep(deleteDelay)
		_ = s.ChannelMessageDelete(m.ChannelID, m.ID)
	}()
}

// findUserVoiceChannel returns the voice channel the user currently occupies
// in the guild, or "" when they are not in one.
func findUserVoiceChannel(s *discordgo.Session, guildID, userID string) string {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return ""
	}
	for _, vs := range guild.VoiceStates {
		if vs != nil && vs.UserID == userID {
			return vs.ChannelID
		}
	}
	return ""
}
