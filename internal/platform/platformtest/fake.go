// Package platformtest provides an in-memory platform.Client for tests.
package platformtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"honeypot-bot/internal/platform"
)

var _ platform.Client = (*Fake)(nil)

// ErrInjected is returned by operations configured to fail.
var ErrInjected = errors.New("platformtest: injected failure")

type SentMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
	// Attachments holds the decoded contents of Message.Files by name.
	Attachments map[string]string
	ID          string
}

type Timeout struct {
	GuildID, UserID string
	Until           time.Time
}

type MemberAction struct {
	GuildID, UserID, Reason string
	Days                    int
}

type Response struct {
	Interaction *discordgo.Interaction
	Response    *discordgo.InteractionResponse
}

// Fake records every call. Populate the exported maps before use; the
// mutex guards everything once the fake is shared with the code under test.
type Fake struct {
	mu sync.Mutex

	AppID string
	BotID string

	Channels map[string][]*discordgo.Channel
	Roles    map[string][]*discordgo.Role
	Members  map[string]*discordgo.Member // key guildID/userID
	Messages map[string][]*discordgo.Message

	FailChannels     bool
	FailRoles        bool
	FailFetch        map[string]bool // channel IDs
	FailDelete       map[string]bool // message IDs
	FailSendTo       map[string]bool // channel IDs
	FailEdit         bool
	FailTimeout      bool
	FailKick         bool
	FailBan          bool
	FailPin          bool
	FailRespond      bool
	FetchLimits      []int
	Sent             []SentMessage
	Edits            []*discordgo.MessageEdit
	EditAttachments  []map[string]string
	Deleted          []string
	Pinned           []string
	Timeouts         []Timeout
	Kicks            []MemberAction
	Bans             []MemberAction
	Responses        []Response
	ChannelListCalls int

	nextID int
}

func New() *Fake {
	return &Fake{
		AppID:      "900",
		BotID:      "901",
		Channels:   map[string][]*discordgo.Channel{},
		Roles:      map[string][]*discordgo.Role{},
		Members:    map[string]*discordgo.Member{},
		Messages:   map[string][]*discordgo.Message{},
		FailFetch:  map[string]bool{},
		FailDelete: map[string]bool{},
		FailSendTo: map[string]bool{},
	}
}

// AddTextChannel registers a text channel in a guild.
func (f *Fake) AddTextChannel(guildID, channelID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Channels[guildID] = append(f.Channels[guildID], &discordgo.Channel{
		ID:      channelID,
		GuildID: guildID,
		Type:    discordgo.ChannelTypeGuildText,
	})
}

func (f *Fake) AddChannel(guildID string, ch *discordgo.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Channels[guildID] = append(f.Channels[guildID], ch)
}

func (f *Fake) AddRole(guildID, roleID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Roles[guildID] = append(f.Roles[guildID], &discordgo.Role{ID: roleID})
}

// AddMessage appends a message authored by userID; the newest message is last.
func (f *Fake) AddMessage(guildID, channelID, messageID, userID, content string) *discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := &discordgo.Message{
		ID:        messageID,
		ChannelID: channelID,
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: userID, Username: "user" + userID},
		Timestamp: time.Now(),
	}
	f.Messages[channelID] = append(f.Messages[channelID], m)
	return m
}

func (f *Fake) SetMember(guildID, userID string, roles ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Members[guildID+"/"+userID] = &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: userID},
		Roles:   roles,
	}
}

func (f *Fake) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ChannelListCalls++
	if f.FailChannels {
		return nil, ErrInjected
	}
	return append([]*discordgo.Channel(nil), f.Channels[guildID]...), nil
}

func (f *Fake) GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailRoles {
		return nil, ErrInjected
	}
	return append([]*discordgo.Role(nil), f.Roles[guildID]...), nil
}

func (f *Fake) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.Members[guildID+"/"+userID]
	if !ok {
		return nil, fmt.Errorf("member %s not found: %w", userID, ErrInjected)
	}
	return m, nil
}

func (f *Fake) ChannelMessages(ctx context.Context, channelID string, limit int) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FetchLimits = append(f.FetchLimits, limit)
	if f.FailFetch[channelID] {
		return nil, ErrInjected
	}
	msgs := f.Messages[channelID]
	// newest first, like the REST API
	out := make([]*discordgo.Message, 0, limit)
	for i := len(msgs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, msgs[i])
	}
	return out, nil
}

func (f *Fake) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDelete[messageID] {
		return ErrInjected
	}
	msgs := f.Messages[channelID]
	for i, m := range msgs {
		if m.ID == messageID {
			f.Messages[channelID] = append(msgs[:i:i], msgs[i+1:]...)
			break
		}
	}
	f.Deleted = append(f.Deleted, messageID)
	return nil
}

func (f *Fake) SendMessage(ctx context.Context, channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	attachments, err := readFiles(data.Files)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailSendTo[channelID] {
		return nil, ErrInjected
	}
	f.nextID++
	id := "m" + strconv.Itoa(f.nextID)
	f.Sent = append(f.Sent, SentMessage{ChannelID: channelID, Message: data, Attachments: attachments, ID: id})
	return &discordgo.Message{ID: id, ChannelID: channelID, Content: data.Content}, nil
}

func (f *Fake) EditMessage(ctx context.Context, data *discordgo.MessageEdit) (*discordgo.Message, error) {
	attachments, err := readFiles(data.Files)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailEdit {
		return nil, ErrInjected
	}
	f.Edits = append(f.Edits, data)
	f.EditAttachments = append(f.EditAttachments, attachments)
	msg := &discordgo.Message{ID: data.ID, ChannelID: data.Channel}
	if data.Content != nil {
		msg.Content = *data.Content
	}
	return msg, nil
}

func (f *Fake) PinMessage(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPin {
		return ErrInjected
	}
	f.Pinned = append(f.Pinned, messageID)
	return nil
}

func (f *Fake) TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailTimeout {
		return ErrInjected
	}
	f.Timeouts = append(f.Timeouts, Timeout{GuildID: guildID, UserID: userID, Until: until})
	return nil
}

func (f *Fake) KickMember(ctx context.Context, guildID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailKick {
		return ErrInjected
	}
	f.Kicks = append(f.Kicks, MemberAction{GuildID: guildID, UserID: userID, Reason: reason})
	return nil
}

func (f *Fake) BanMember(ctx context.Context, guildID, userID, reason string, deleteMessageDays int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailBan {
		return ErrInjected
	}
	f.Bans = append(f.Bans, MemberAction{GuildID: guildID, UserID: userID, Reason: reason, Days: deleteMessageDays})
	return nil
}

func (f *Fake) RespondInteraction(ctx context.Context, interaction *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailRespond {
		return ErrInjected
	}
	f.Responses = append(f.Responses, Response{Interaction: interaction, Response: resp})
	return nil
}

func (f *Fake) ApplicationID() string { return f.AppID }

func (f *Fake) UserID() string { return f.BotID }

// SentTo returns the messages delivered to one channel, in order.
func (f *Fake) SentTo(channelID string) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SentMessage
	for _, s := range f.Sent {
		if s.ChannelID == channelID {
			out = append(out, s)
		}
	}
	return out
}

func readFiles(files []*discordgo.File) (map[string]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(files))
	for _, file := range files {
		data, err := io.ReadAll(file.Reader)
		if err != nil {
			return nil, err
		}
		out[file.Name] = string(data)
	}
	return out, nil
}
