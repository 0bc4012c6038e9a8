package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"honeypot-bot/internal/database"
)

func statusIcon(status string) string {
	switch status {
	case database.StatusActioned, database.StatusApproved:
		return "🔨"
	case database.StatusProposed:
		return "⏳"
	case database.StatusDismissed:
		return "🚫"
	default:
		return "•"
	}
}

func (h *Handler) handleHistory(ctx context.Context, i *discordgo.Interaction, limit int) error {
	if _, ok := h.guildProfile(ctx, i); !ok {
		return nil
	}
	if h.history == nil {
		h.respondEphemeral(ctx, i, "The incident journal is disabled. Set `database.path` in the configuration to keep a history.")
		return nil
	}

	records, err := h.history.RecentIncidents(ctx, i.GuildID, limit)
	if err != nil {
		return fmt.Errorf("failed to read incident history: %w", err)
	}
	if len(records) == 0 {
		h.respondEphemeral(ctx, i, "No incidents recorded yet.")
		return nil
	}

	return h.respondEmbeds(ctx, i, true, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🍯 Last %d incidents", len(records)),
		Color:       0xFEE75C,
		Description: renderHistory(records),
	})
}

func renderHistory(records []*database.IncidentRecord) string {
	var b strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&b, "%s <t:%d:R> <@%s> in <#%s>: **%s**",
			statusIcon(rec.Status), rec.CreatedAt.Unix(), rec.UserID, rec.ChannelID, rec.Status)
		if rec.Outcome != "" {
			fmt.Fprintf(&b, " (%s)", rec.Outcome)
		}
		if rec.ResolvedBy != "" {
			fmt.Fprintf(&b, " by <@%s>", rec.ResolvedBy)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
