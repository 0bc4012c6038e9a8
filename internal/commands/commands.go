package commands

import "github.com/bwmarrin/discordgo"

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 25
)

// GetAllCommands returns all application commands
func GetAllCommands() []*discordgo.ApplicationCommand {
	minLimit := 1.0
	noDM := false

	return []*discordgo.ApplicationCommand{
		{
			Name:         "honeypot",
			Description:  "Inspect the honeypot of this server",
			DMPermission: &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "status",
					Description: "Show the honeypot configuration of this server",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "history",
					Description: "Show the most recent honeypot incidents",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "limit",
							Description: "Number of incidents to show",
							Type:        discordgo.ApplicationCommandOptionInteger,
							MinValue:    &minLimit,
							MaxValue:    maxHistoryLimit,
							Required:    false,
						},
					},
				},
			},
		},
		{
			Name:        "ping",
			Description: "Show gateway and API latency",
		},
		{
			Name:        "stats",
			Description: "Show host and runtime statistics",
		},
	}
}
