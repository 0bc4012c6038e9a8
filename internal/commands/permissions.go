package commands

import (
	"github.com/bwmarrin/discordgo"

	"honeypot-bot/internal/config"
)

// isModerator reports whether the invoking member may inspect the honeypot:
// members holding the moderator role, or any Administrator.
func isModerator(profile *config.ServerProfile, i *discordgo.Interaction) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return profile.IsModerator(i.Member.Roles)
}
