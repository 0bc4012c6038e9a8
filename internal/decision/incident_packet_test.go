package decision

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestAuthorName(t *testing.T) {
	fixtures := []struct {
		name   string
		author *discordgo.User
		member *discordgo.Member
		want   string
	}{
		{"username only", &discordgo.User{Username: "spam_bot"}, nil, "spam_bot"},
		{"global name", &discordgo.User{Username: "spam_bot", GlobalName: "Spam Bot"}, nil, "Spam Bot"},
		{"nickname wins", &discordgo.User{Username: "spam_bot", GlobalName: "Spam Bot"}, &discordgo.Member{Nick: "Totally Legit"}, "Totally Legit"},
		{"empty nickname", &discordgo.User{Username: "spam_bot", GlobalName: "Spam Bot"}, &discordgo.Member{}, "Spam Bot"},
	}
	for _, fix := range fixtures {
		t.Run(fix.name, func(t *testing.T) {
			m := &discordgo.Message{Author: fix.author, Member: fix.member}
			assert.Equal(t, fix.want, authorName(m))
		})
	}
}

func TestNewIncidentCopiesMessage(t *testing.T) {
	m := &discordgo.Message{
		ID:        "m1",
		GuildID:   guildID,
		ChannelID: trapID,
		Content:   "free nitro",
		Author:    &discordgo.User{ID: spammer, Username: "spam_bot"},
	}
	inc := newIncident(testProfile(nil), m)

	assert.NotEmpty(t, inc.ID)
	assert.Equal(t, spammer, inc.AuthorID)
	assert.Equal(t, "spam_bot", inc.AuthorName)
	assert.Equal(t, "free nitro", inc.Text)
	assert.Equal(t, "m1", inc.MessageID)
}
