package decision

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-bot/internal/config"
	"honeypot-bot/internal/notifier"
	"honeypot-bot/internal/platform/platformtest"
)

func newTestExecutor(fake *platformtest.Fake, now func() time.Time) *Executor {
	n := notifier.New(fake)
	return NewExecutor(fake, NewCollector(fake, n, testEvidenceConfig()), n, 4, now)
}

func TestExecuteMuteLastsOneDay(t *testing.T) {
	fake := newFake()
	x := newTestExecutor(fake, func() time.Time { return fixedNow })

	report := x.Execute(context.Background(), testProfile(func(p *config.ServerProfile) {
		p.Action = config.PunishMute
		p.EraseMessages = false
	}), spammer, "spam")

	require.NotNil(t, report.Punitive)
	assert.True(t, report.Punitive.Succeeded)
	assert.Nil(t, report.Erasure)
	require.Len(t, fake.Timeouts, 1)
	assert.Equal(t, fixedNow.Add(24*time.Hour), fake.Timeouts[0].Until)
}

func TestExecuteMuteOverflowIsReported(t *testing.T) {
	fake := newFake()
	latest := time.Unix(1<<63-1-62135596800, 0)
	x := newTestExecutor(fake, func() time.Time { return latest })

	report := x.Execute(context.Background(), testProfile(func(p *config.ServerProfile) {
		p.Action = config.PunishMute
		p.EraseMessages = false
	}), spammer, "spam")

	require.NotNil(t, report.Punitive)
	assert.False(t, report.Punitive.Succeeded)
	assert.ErrorIs(t, report.Punitive.Err, ErrTimeoutOverflow)
	assert.Empty(t, fake.Timeouts)
	assert.Len(t, fake.SentTo(logID), 1, "failure warning")
}

func TestExecuteBanSkipsErasure(t *testing.T) {
	fake := newFake()
	fake.AddMessage(guildID, otherID, "d1", spammer, "spam")
	x := newTestExecutor(fake, nil)

	report := x.Execute(context.Background(), testProfile(func(p *config.ServerProfile) {
		p.Action = config.PunishBan
		p.EraseMessages = true
	}), spammer, "spam")

	require.NotNil(t, report.Punitive)
	assert.True(t, report.Punitive.Succeeded)
	assert.Nil(t, report.Erasure, "ban purges history itself")
	assert.Empty(t, fake.Deleted)
	assert.Empty(t, fake.FetchLimits)

	require.Len(t, fake.Bans, 1)
	assert.Equal(t, 1, fake.Bans[0].Days)
	assert.Equal(t, AuditReason, fake.Bans[0].Reason)
}

func TestExecuteKickFailureStillErases(t *testing.T) {
	fake := newFake()
	fake.FailKick = true
	fake.AddMessage(guildID, otherID, "d1", spammer, "spam")
	x := newTestExecutor(fake, nil)

	report := x.Execute(context.Background(), testProfile(nil), spammer, "spam")

	require.NotNil(t, report.Punitive)
	assert.False(t, report.Punitive.Succeeded)
	require.NotNil(t, report.Erasure)
	assert.Equal(t, 1, report.Erasure.Deleted)
	assert.Equal(t, []string{"d1"}, fake.Deleted)
}

func TestExecuteDeletionFailureDoesNotAbort(t *testing.T) {
	fake := newFake()
	fake.AddTextChannel(guildID, "666")
	fake.AddMessage(guildID, otherID, "d1", spammer, "spam")
	fake.AddMessage(guildID, otherID, "d2", spammer, "spam")
	fake.AddMessage(guildID, "666", "d3", spammer, "spam")
	fake.FailDelete["d2"] = true
	x := newTestExecutor(fake, nil)

	report := x.Execute(context.Background(), testProfile(nil), spammer, "spam")

	require.NotNil(t, report.Erasure)
	assert.Len(t, report.Erasure.Attempts, 3)
	assert.Equal(t, 2, report.Erasure.Deleted)
	failed := report.Erasure.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "d2", failed[0].Ref.MessageID)
	assert.ElementsMatch(t, []string{"d1", "d3"}, fake.Deleted)
}

func TestExecuteNoneOnlyErases(t *testing.T) {
	fake := newFake()
	fake.AddMessage(guildID, otherID, "d1", spammer, "spam")
	x := newTestExecutor(fake, nil)

	report := x.Execute(context.Background(), testProfile(func(p *config.ServerProfile) {
		p.Action = config.PunishNone
	}), spammer, "spam")

	assert.Nil(t, report.Punitive)
	require.NotNil(t, report.Erasure)
	assert.Equal(t, 1, report.Erasure.Deleted)
	assert.Empty(t, fake.Kicks)
	assert.Empty(t, fake.Bans)
	assert.Empty(t, fake.Timeouts)
}
