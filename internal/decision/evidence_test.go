package decision

import (
	"context"
	"math"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-bot/internal/notifier"
)

func TestCollectFindsNearDuplicatesOutsideTrap(t *testing.T) {
	fake := newFake()
	fake.AddMessage(guildID, trapID, "t1", spammer, "buy crypto now http://x")
	fake.AddMessage(guildID, otherID, "d1", spammer, "buy crypto now http://x!!")
	fake.AddMessage(guildID, otherID, "d2", spammer, "ok")
	fake.AddMessage(guildID, otherID, "d3", "99", "buy crypto now http://x")

	c := NewCollector(fake, notifier.New(fake), testEvidenceConfig())
	set := c.Collect(context.Background(), testProfile(nil), spammer, "buy crypto now http://x")

	require.Len(t, set.Matches, 1)
	assert.Equal(t, "d1", set.Matches[0].MessageID)
	assert.Equal(t, otherID, set.Matches[0].ChannelID)
	assert.False(t, set.Empty())
	assert.Empty(t, set.FailedChannels)
	for _, ref := range set.Matches {
		assert.NotEqual(t, trapID, ref.ChannelID)
	}
	assert.Equal(t, []int{10, 10}, fake.FetchLimits, "trap channel is never fetched")
}

func TestCollectIgnoresUnrelatedNonLatinText(t *testing.T) {
	fake := newFake()
	fake.AddMessage(guildID, otherID, "d1", spammer, "ой")
	fake.AddMessage(guildID, otherID, "d2", spammer, "ОК")

	set := NewCollector(fake, notifier.New(fake), testEvidenceConfig()).
		Collect(context.Background(), testProfile(nil), spammer, "ок")

	require.Len(t, set.Matches, 1)
	assert.Equal(t, "d2", set.Matches[0].MessageID)
}

func TestCollectThresholdIsInclusive(t *testing.T) {
	const reference = "free nitro at http://scam"
	const candidate = "free nitro here http://scam.example"
	score := Similarity(Sanitize(reference), Sanitize(candidate))
	require.Less(t, score, 1.0)

	fixtures := []struct {
		name      string
		threshold float64
		included  bool
	}{
		{"at threshold", score, true},
		{"just above score", math.Nextafter(score, 1), false},
	}

	for _, fix := range fixtures {
		t.Run(fix.name, func(t *testing.T) {
			fake := newFake()
			fake.AddMessage(guildID, otherID, "d1", spammer, candidate)

			cfg := testEvidenceConfig()
			cfg.SimilarityThreshold = fix.threshold
			set := NewCollector(fake, notifier.New(fake), cfg).Collect(context.Background(), testProfile(nil), spammer, reference)

			if fix.included {
				require.Len(t, set.Matches, 1)
				assert.Equal(t, score, set.Matches[0].Score)
			} else {
				assert.Empty(t, set.Matches)
			}
		})
	}
}

func TestCollectContinuesPastFetchFailure(t *testing.T) {
	fake := newFake()
	fake.AddTextChannel(guildID, "666")
	fake.FailFetch[otherID] = true
	fake.AddMessage(guildID, "666", "d1", spammer, "spam spam")

	set := NewCollector(fake, notifier.New(fake), testEvidenceConfig()).
		Collect(context.Background(), testProfile(nil), spammer, "spam spam")

	require.Len(t, set.Matches, 1)
	assert.Equal(t, "d1", set.Matches[0].MessageID)
	assert.Equal(t, []string{otherID}, set.FailedChannels)

	warnings := fake.SentTo(logID)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message.Content, "<#"+otherID+">")
	assert.Contains(t, warnings[0].Message.Content, "<@"+spammer+">")
}

func TestCollectEnumerationFailure(t *testing.T) {
	fake := newFake()
	fake.FailChannels = true

	set := NewCollector(fake, notifier.New(fake), testEvidenceConfig()).
		Collect(context.Background(), testProfile(nil), spammer, "spam")

	assert.True(t, set.Empty())
	assert.True(t, set.EnumerationFailed)
	assert.Len(t, fake.SentTo(logID), 1, "exactly one warning")
	assert.Empty(t, fake.FetchLimits)
}

func TestCollectSkipsChannelsWithoutMessages(t *testing.T) {
	fake := newFake()
	fake.AddChannel(guildID, &discordgo.Channel{ID: "800", Type: discordgo.ChannelTypeGuildCategory})
	fake.AddChannel(guildID, &discordgo.Channel{ID: "801", Type: discordgo.ChannelTypeGuildForum})

	NewCollector(fake, notifier.New(fake), testEvidenceConfig()).
		Collect(context.Background(), testProfile(nil), spammer, "spam")

	assert.Len(t, fake.FetchLimits, 2, "only the log and other text channel are fetched")
}

func TestCollectKeepsChannelOrder(t *testing.T) {
	fake := newFake()
	for _, ch := range []string{"601", "602", "603", "604", "605", "606"} {
		fake.AddTextChannel(guildID, ch)
		fake.AddMessage(guildID, ch, "m"+ch, spammer, "same spam")
	}

	cfg := testEvidenceConfig()
	cfg.MaxParallelFetches = 3
	set := NewCollector(fake, notifier.New(fake), cfg).
		Collect(context.Background(), testProfile(nil), spammer, "same spam")

	var ids []string
	for _, ref := range set.Matches {
		ids = append(ids, ref.MessageID)
	}
	assert.Equal(t, []string{"m601", "m602", "m603", "m604", "m605", "m606"}, ids)
}
