package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"honeypot-bot/internal/decision"
	"honeypot-bot/internal/logging"
	"honeypot-bot/internal/platform"
)

var _ platform.Client = (*Session)(nil)

// Session wraps the discordgo session and exposes it as a platform.Client.
type Session struct {
	discord *discordgo.Session

	mu    sync.RWMutex
	appID string
	botID string
}

// New creates the Discord session without connecting.
func New(token string) (*Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Message content is needed to compare spam across channels.
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	dg.SyncEvents = false

	return &Session{discord: dg}, nil
}

func (s *Session) setIdentity(r *discordgo.Ready) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.User != nil {
		s.botID = r.User.ID
	}
	if r.Application != nil {
		s.appID = r.Application.ID
	}
	if s.appID == "" {
		// bot applications share their user ID
		s.appID = s.botID
	}
}

// GetDiscord returns the underlying discordgo session
func (s *Session) GetDiscord() *discordgo.Session {
	return s.discord
}

// Connect opens the Discord websocket connection
func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	// Open has consumed the Ready payload into the state cache, while the
	// Ready handlers may still be queued.
	s.discord.State.RLock()
	ready := s.discord.State.Ready
	s.discord.State.RUnlock()
	s.setIdentity(&ready)

	logging.Info("Discord bot connected successfully")
	return nil
}

// Close closes the Discord connection
func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// RegisterCommands registers all slash commands with Discord
func (s *Session) RegisterCommands(commands []*discordgo.ApplicationCommand) error {
	logging.Info("Registering %d slash commands...", len(commands))

	registered, err := s.discord.ApplicationCommandBulkOverwrite(s.ApplicationID(), "", commands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	for _, cmd := range registered {
		logging.Info("Registered command: /%s", cmd.Name)
	}
	return nil
}

// AddHandler adds an event handler to the Discord session
func (s *Session) AddHandler(handler interface{}) {
	s.discord.AddHandler(handler)
}

func (s *Session) ApplicationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appID
}

func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.botID
}

// HeartbeatLatency is the last measured gateway round trip.
func (s *Session) HeartbeatLatency() time.Duration {
	return s.discord.HeartbeatLatency()
}

// LastHeartbeatAck is when the gateway last acknowledged a heartbeat.
func (s *Session) LastHeartbeatAck() time.Time {
	s.discord.RLock()
	defer s.discord.RUnlock()
	return s.discord.LastHeartbeatAck
}

func (s *Session) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	return s.discord.GuildChannels(guildID, discordgo.WithContext(ctx))
}

func (s *Session) GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	return s.discord.GuildRoles(guildID, discordgo.WithContext(ctx))
}

func (s *Session) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	return s.discord.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

func (s *Session) ChannelMessages(ctx context.Context, channelID string, limit int) ([]*discordgo.Message, error) {
	return s.discord.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
}

func (s *Session) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return s.discord.ChannelMessageDelete(channelID, messageID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(decision.AuditReason))
}

func (s *Session) SendMessage(ctx context.Context, channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return s.discord.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
}

func (s *Session) EditMessage(ctx context.Context, data *discordgo.MessageEdit) (*discordgo.Message, error) {
	return s.discord.ChannelMessageEditComplex(data, discordgo.WithContext(ctx))
}

func (s *Session) PinMessage(ctx context.Context, channelID, messageID string) error {
	return s.discord.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx))
}

func (s *Session) TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	return s.discord.GuildMemberTimeout(guildID, userID, &until,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (s *Session) KickMember(ctx context.Context, guildID, userID, reason string) error {
	return s.discord.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (s *Session) BanMember(ctx context.Context, guildID, userID, reason string, deleteMessageDays int) error {
	return s.discord.GuildBanCreateWithReason(guildID, userID, reason, deleteMessageDays, discordgo.WithContext(ctx))
}

func (s *Session) RespondInteraction(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return s.discord.InteractionRespond(i, resp, discordgo.WithContext(ctx))
}
