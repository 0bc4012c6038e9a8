package decision

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"honeypot-bot/internal/config"
	"honeypot-bot/internal/database"
	"honeypot-bot/internal/logging"
	"honeypot-bot/internal/platform/platformtest"
)

const (
	guildID = "111"
	trapID  = "222"
	logID   = "333"
	modRole = "444"
	otherID = "555"
	spammer = "42"
	modID   = "7"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testProfile(mutate func(p *config.ServerProfile)) *config.ServerProfile {
	p := &config.ServerProfile{
		GuildID:         guildID,
		HoneypotChannel: trapID,
		LogChannel:      logID,
		ModRole:         modRole,
		Action:          config.PunishKick,
		EraseMessages:   true,
		WarnMods:        true,
	}
	if mutate != nil {
		mutate(p)
	}
	return p
}

func testEvidenceConfig() config.EvidenceConfig {
	return config.EvidenceConfig{
		Window:              config.DefaultEvidenceWindow,
		SimilarityThreshold: config.DefaultSimilarityThreshold,
		MaxParallelFetches:  config.DefaultParallelFetches,
	}
}

func newFake() *platformtest.Fake {
	fake := platformtest.New()
	fake.AddTextChannel(guildID, trapID)
	fake.AddTextChannel(guildID, logID)
	fake.AddTextChannel(guildID, otherID)
	fake.AddRole(guildID, modRole)
	return fake
}

type memJournal struct {
	mu       sync.Mutex
	records  []*database.IncidentRecord
	resolved map[string]string
}

func (j *memJournal) RecordIncident(ctx context.Context, rec *database.IncidentRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return nil
}

func (j *memJournal) ResolveIncident(ctx context.Context, id, status, resolvedBy, outcome string, erased int, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.resolved == nil {
		j.resolved = map[string]string{}
	}
	j.resolved[id] = status
	return nil
}

func newTestEngine(t *testing.T, fake *platformtest.Fake, journal Journal, profiles ...*config.ServerProfile) *Engine {
	t.Helper()
	store, err := config.NewProfileStore(profiles)
	require.NoError(t, err)

	e, err := NewEngine(Options{
		Client:       fake,
		Profiles:     store,
		Evidence:     testEvidenceConfig(),
		RegistrySize: 16,
		Journal:      journal,
		Now:          func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return e
}

// trapMessage posts content in the trap channel as the spammer.
func trapMessage(fake *platformtest.Fake, id, content string, roles ...string) *discordgo.Message {
	m := fake.AddMessage(guildID, trapID, id, spammer, content)
	m.Type = discordgo.MessageTypeDefault
	m.Member = &discordgo.Member{Roles: roles}
	return m
}

// captureLogs routes the global logger into a buffer until the returned
// function is called.
func captureLogs(t *testing.T) func() string {
	t.Helper()
	var buf bytes.Buffer
	prev := logging.GlobalLogger
	l := logging.NewWriterLogger(logging.LevelWarn, &buf)
	logging.GlobalLogger = l

	return func() string {
		logging.GlobalLogger = prev
		require.NoError(t, l.Close())
		return buf.String()
	}
}

// clickFrom builds a button activation on a delivered record.
func clickFrom(fake *platformtest.Fake, sent platformtest.SentMessage, customID, userID string, roles ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		AppID:     fake.AppID,
		GuildID:   guildID,
		ChannelID: sent.ChannelID,
		Member: &discordgo.Member{
			User:  &discordgo.User{ID: userID},
			Roles: roles,
		},
		Message: &discordgo.Message{
			ID:         sent.ID,
			ChannelID:  sent.ChannelID,
			Content:    sent.Message.Content,
			Embeds:     sent.Message.Embeds,
			Components: sent.Message.Components,
		},
		Data: discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

// buttonIDs returns the custom IDs of every button on a record.
func buttonIDs(components []discordgo.MessageComponent) (ids []string, disabled []bool) {
	for _, comp := range components {
		row, ok := asActionsRow(comp)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if btn, ok := asButton(inner); ok {
				ids = append(ids, btn.CustomID)
				disabled = append(disabled, btn.Disabled)
			}
		}
	}
	return ids, disabled
}
