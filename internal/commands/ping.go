package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// handlePing shows gateway and REST latency
func (h *Handler) handlePing(ctx context.Context, i *discordgo.Interaction) error {
	wsLatency := h.gateway.HeartbeatLatency()

	apiValue := "`n/a`"
	apiLatency := time.Duration(0)
	if i.GuildID != "" {
		apiStart := time.Now()
		if _, err := h.client.GuildRoles(ctx, i.GuildID); err == nil {
			apiLatency = time.Since(apiStart)
			apiValue = fmt.Sprintf("`%dms`", apiLatency.Milliseconds())
		}
	}

	avgLatency := (wsLatency.Milliseconds() + apiLatency.Milliseconds()) / 2
	var statusColor int
	switch {
	case avgLatency < 60:
		statusColor = 0x00FF00
	case avgLatency < 120:
		statusColor = 0xFFA500
	default:
		statusColor = 0xFF0000
	}

	embed := &discordgo.MessageEmbed{
		Title: "🏓 Pong!",
		Color: statusColor,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "⚡ WebSocket",
				Value:  fmt.Sprintf("`%dms`", wsLatency.Milliseconds()),
				Inline: true,
			},
			{
				Name:   "📡 API",
				Value:  apiValue,
				Inline: true,
			},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	return h.respondEmbeds(ctx, i, false, embed)
}
