package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

func enabled(b bool) string {
	if b {
		return "Enabled"
	}
	return "Disabled"
}

func (h *Handler) handleStatus(ctx context.Context, i *discordgo.Interaction) error {
	profile, ok := h.guildProfile(ctx, i)
	if !ok {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title: "🍯 Honeypot Status",
		Color: 0xFEE75C,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Honeypot channel", Value: fmt.Sprintf("<#%s>", profile.HoneypotChannel), Inline: true},
			{Name: "Log channel", Value: fmt.Sprintf("<#%s>", profile.LogChannel), Inline: true},
			{Name: "Moderator role", Value: fmt.Sprintf("<@&%s>", profile.ModRole), Inline: true},
			{Name: "Action", Value: fmt.Sprintf("`%s`", profile.Action), Inline: true},
			{Name: "Delete messages", Value: enabled(profile.EraseMessages), Inline: true},
			{Name: "Ping moderators", Value: enabled(profile.WarnMods), Inline: true},
			{Name: "Tolerant mode", Value: enabled(profile.Tolerant), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	return h.respondEmbeds(ctx, i, true, embed)
}
