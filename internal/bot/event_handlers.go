package bot

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"

	"honeypot-bot/internal/decision"
	"honeypot-bot/internal/logging"
)

// InteractionHandler receives slash commands and button presses.
type InteractionHandler interface {
	HandleInteraction(ctx context.Context, i *discordgo.Interaction)
}

// SetupEventHandlers wires gateway events into the engine. onReady, when not
// nil, runs after every Ready event.
func (s *Session) SetupEventHandlers(engine *decision.Engine, interactions InteractionHandler, onReady func()) {
	logging.Info("Setting up Discord event handlers...")

	var announce sync.Once

	s.discord.AddHandler(func(sess *discordgo.Session, r *discordgo.Ready) {
		s.setIdentity(r)
		logging.Info("Bot ready! Connected as %s (%d guilds)", r.User.Username, len(r.Guilds))

		// reconnects replay Ready; the welcome message goes out once per process
		announce.Do(func() {
			engine.HandleReady(context.Background())
		})
		if onReady != nil {
			onReady()
		}
	})

	s.discord.AddHandler(func(sess *discordgo.Session, g *discordgo.GuildCreate) {
		if _, ok := engine.Profiles().Get(g.ID); ok {
			logging.Info("Loaded guild %s (ID: %s)", g.Name, g.ID)
			return
		}
		logging.Debug("Loaded unconfigured guild %s (ID: %s)", g.Name, g.ID)
	})

	s.discord.AddHandler(func(sess *discordgo.Session, m *discordgo.MessageCreate) {
		if s.UserID() == "" {
			// identity unknown until Ready
			return
		}
		engine.HandleMessage(context.Background(), m.Message)
	})

	if interactions != nil {
		s.discord.AddHandler(func(sess *discordgo.Session, i *discordgo.InteractionCreate) {
			interactions.HandleInteraction(context.Background(), i.Interaction)
		})
	}

	logging.Info("Event handlers configured")
}
