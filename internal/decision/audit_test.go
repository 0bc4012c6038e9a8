package decision

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"honeypot-bot/internal/config"
)

func TestRenderAuditFailures(t *testing.T) {
	profile := testProfile(func(p *config.ServerProfile) {
		p.Action = config.PunishMute
		p.WarnMods = false
	})
	report := &Report{
		Punitive: &ActionOutcome{Action: config.PunishMute, Err: errors.New("missing permissions")},
		Erasure: &ErasureOutcome{
			Deleted: 2,
			Attempts: []DeletionOutcome{
				{Ref: MessageRef{ChannelID: "601", MessageID: "a"}},
				{Ref: MessageRef{ChannelID: "602", MessageID: "b"}, Err: errors.New("gone")},
				{Ref: MessageRef{ChannelID: "603", MessageID: "c"}},
			},
			Evidence: &EvidenceSet{FailedChannels: []string{"604"}},
		},
	}

	out := renderAudit(profile, spammer, &EvidenceSet{FailedChannels: []string{"604"}}, report)

	assert.NotContains(t, out, "<@&")
	assert.Contains(t, out, "Could not time out the user: missing permissions")
	assert.Contains(t, out, "2 messages deleted, 1 could not be deleted.")
	assert.Contains(t, out, "<#602> message b: gone")
	assert.Equal(t, 1, strings.Count(out, "<#604> could not be searched"))
}

func TestRenderWelcomeVariants(t *testing.T) {
	fixtures := []struct {
		name    string
		mutate  func(p *config.ServerProfile)
		want    string
		notWant string
	}{
		{
			name:    "erase only",
			mutate:  func(p *config.ServerProfile) { p.Action = config.PunishNone; p.WarnMods = false },
			want:    "Offending users' spam messages will be deleted.",
			notWant: "will be pinged",
		},
		{
			name:   "report only",
			mutate: func(p *config.ServerProfile) { p.Action = config.PunishNone; p.EraseMessages = false },
			want:   "No automatic action is configured",
		},
		{
			name:    "mute without erasure",
			mutate:  func(p *config.ServerProfile) { p.Action = config.PunishMute; p.EraseMessages = false },
			want:    "Offending users will be **muted**.",
			notWant: "deleted",
		},
		{
			name:   "tolerant off",
			mutate: nil,
			want:   "Tolerant mode is **disabled**.",
		},
	}

	for _, fix := range fixtures {
		t.Run(fix.name, func(t *testing.T) {
			out := renderWelcome(testProfile(fix.mutate))
			assert.Contains(t, out, fix.want)
			if fix.notWant != "" {
				assert.NotContains(t, out, fix.notWant)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "no action", summary(&Report{}))
	assert.Equal(t, "kick ok, 1 message deleted", summary(&Report{
		Punitive: &ActionOutcome{Action: config.PunishKick, Succeeded: true},
		Erasure:  &ErasureOutcome{Deleted: 1},
	}))
	assert.Equal(t, "ban failed", summary(&Report{
		Punitive: &ActionOutcome{Action: config.PunishBan},
	}))
}
