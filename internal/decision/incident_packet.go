package decision

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"honeypot-bot/internal/config"
)

// Incident is one trap-channel message. It lives for the duration of a
// single event and is never shared between goroutines.
type Incident struct {
	ID        string
	GuildID   string
	ChannelID string
	MessageID string

	AuthorID     string
	AuthorName   string
	AuthorAvatar string

	// Text is the message content with mentions replaced by names.
	Text      string
	Timestamp time.Time

	Profile *config.ServerProfile
}

func newIncident(profile *config.ServerProfile, m *discordgo.Message) *Incident {
	inc := &Incident{
		ID:        uuid.NewString(),
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		AuthorID:  m.Author.ID,
		Text:      m.ContentWithMentionsReplaced(),
		Timestamp: m.Timestamp,
		Profile:   profile,
	}

	inc.AuthorName = authorName(m)
	inc.AuthorAvatar = m.Author.AvatarURL("")

	return inc
}

// authorName prefers the server nickname, then the global display name, then
// the username.
func authorName(m *discordgo.Message) string {
	switch {
	case m.Member != nil && m.Member.Nick != "":
		return m.Member.Nick
	case m.Author.GlobalName != "":
		return m.Author.GlobalName
	default:
		return m.Author.Username
	}
}
