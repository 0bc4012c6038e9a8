// Package platform declares the chat-platform operations the honeypot engine
// consumes. bot.Session implements Client over discordgo; platformtest.Fake
// implements it in memory.
package platform

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// MessageLimit is the largest content Discord accepts in a single message.
const MessageLimit = 2000

type Client interface {
	GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
	GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error)
	GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error)

	// ChannelMessages returns at most limit of the most recent messages.
	ChannelMessages(ctx context.Context, channelID string, limit int) ([]*discordgo.Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	SendMessage(ctx context.Context, channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
	EditMessage(ctx context.Context, data *discordgo.MessageEdit) (*discordgo.Message, error)
	PinMessage(ctx context.Context, channelID, messageID string) error

	TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error
	KickMember(ctx context.Context, guildID, userID, reason string) error
	BanMember(ctx context.Context, guildID, userID, reason string, deleteMessageDays int) error

	RespondInteraction(ctx context.Context, interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error

	// ApplicationID identifies interactions that belong to this bot.
	ApplicationID() string
	// UserID is the bot's own user ID.
	UserID() string
}

// CanHoldMessages reports whether a guild channel type has a message history
// that ChannelMessages can read.
func CanHoldMessages(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildVoice,
		discordgo.ChannelTypeGuildStageVoice,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeGuildNewsThread:
		return true
	default:
		return false
	}
}
