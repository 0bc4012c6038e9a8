package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"honeypot-bot/internal/config"
	"honeypot-bot/internal/database"
	"honeypot-bot/internal/decision"
	"honeypot-bot/internal/logging"
	"honeypot-bot/internal/platform"
)

const commandTimeout = 10 * time.Second

// History reads the incident journal.
type History interface {
	RecentIncidents(ctx context.Context, guildID string, limit int) ([]*database.IncidentRecord, error)
}

// Gateway reports the health of the websocket connection.
type Gateway interface {
	HeartbeatLatency() time.Duration
}

// Handler manages all command interactions
type Handler struct {
	client   platform.Client
	engine   *decision.Engine
	history  History
	gateway  Gateway
	profiles *config.ProfileStore
	started  time.Time
}

// NewHandler creates the command handler. history may be nil when the
// journal is disabled.
func NewHandler(client platform.Client, engine *decision.Engine, history History, gateway Gateway) *Handler {
	return &Handler{
		client:   client,
		engine:   engine,
		history:  history,
		gateway:  gateway,
		profiles: engine.Profiles(),
		started:  time.Now(),
	}
}

// HandleInteraction routes all interactions (commands, buttons)
func (h *Handler) HandleInteraction(ctx context.Context, i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(ctx, i)
	}
}

// handleCommand routes slash commands to their handlers
func (h *Handler) handleCommand(ctx context.Context, i *discordgo.Interaction) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	data := i.ApplicationCommandData()

	var err error
	switch data.Name {
	case "honeypot":
		if len(data.Options) == 0 {
			err = fmt.Errorf("missing subcommand")
			break
		}
		sub := data.Options[0]
		switch sub.Name {
		case "status":
			err = h.handleStatus(ctx, i)
		case "history":
			err = h.handleHistory(ctx, i, historyLimit(sub.Options))
		default:
			err = fmt.Errorf("unknown subcommand: %s", sub.Name)
		}
	case "ping":
		err = h.handlePing(ctx, i)
	case "stats":
		err = h.handleStats(ctx, i)
	default:
		err = fmt.Errorf("unknown command: %s", data.Name)
	}

	if err != nil {
		logging.Error("Command error [%s]: %v", data.Name, err)
		h.respondError(ctx, i, err.Error())
	}
}

// handleComponent hands honeypot report buttons to the engine.
func (h *Handler) handleComponent(ctx context.Context, i *discordgo.Interaction) {
	data := i.MessageComponentData()
	if strings.HasPrefix(data.CustomID, decision.ControlPrefix) {
		h.engine.HandleComponent(ctx, i)
		return
	}
	logging.Warn("Ignoring unknown component: %s", data.CustomID)
}

// guildProfile resolves the profile of the invoking guild and checks that
// the member may look at it.
func (h *Handler) guildProfile(ctx context.Context, i *discordgo.Interaction) (*config.ServerProfile, bool) {
	profile, ok := h.profiles.Get(i.GuildID)
	if !ok {
		h.respondEphemeral(ctx, i, "The honeypot is not configured for this server.")
		return nil, false
	}
	if !isModerator(profile, i) {
		h.respondEphemeral(ctx, i, fmt.Sprintf("Only members with the <@&%s> role can use this command.", profile.ModRole))
		return nil, false
	}
	return profile, true
}

func (h *Handler) respondEphemeral(ctx context.Context, i *discordgo.Interaction, content string) {
	err := h.client.RespondInteraction(ctx, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
	if err != nil {
		logging.Warn("Failed to respond to interaction: %v", err)
	}
}

func (h *Handler) respondEmbeds(ctx context.Context, i *discordgo.Interaction, ephemeral bool, embeds ...*discordgo.MessageEmbed) error {
	data := &discordgo.InteractionResponseData{Embeds: embeds}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return h.client.RespondInteraction(ctx, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// respondError sends an ephemeral error message
func (h *Handler) respondError(ctx context.Context, i *discordgo.Interaction, message string) {
	h.respondEphemeral(ctx, i, fmt.Sprintf("❌ Error: %s", message))
}

func historyLimit(opts []*discordgo.ApplicationCommandInteractionDataOption) int {
	for _, opt := range opts {
		if opt.Name != "limit" {
			continue
		}
		n := int(opt.IntValue())
		switch {
		case n < 1:
			return defaultHistoryLimit
		case n > maxHistoryLimit:
			return maxHistoryLimit
		default:
			return n
		}
	}
	return defaultHistoryLimit
}
