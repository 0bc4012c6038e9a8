package decision

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"honeypot-bot/internal/config"
	"honeypot-bot/internal/logging"
	"honeypot-bot/internal/metrics"
	"honeypot-bot/internal/platform"
)

// AuditReason is attached to every moderation call in the guild audit log.
const AuditReason = "Caught spamming by the honeypot; account may be compromised"

const (
	muteDuration  = 24 * time.Hour
	banDeleteDays = 1
)

var ErrTimeoutOverflow = errors.New("timeout end cannot be represented")

// ActionOutcome is the result of the punitive action.
type ActionOutcome struct {
	Action    config.Punishment
	Succeeded bool
	Err       error
}

// DeletionOutcome is the result of deleting one matched message.
type DeletionOutcome struct {
	Ref MessageRef
	Err error
}

// ErasureOutcome tracks every deletion of an erasure pass.
type ErasureOutcome struct {
	Attempts []DeletionOutcome
	Deleted  int
	Evidence *EvidenceSet
}

func (e *ErasureOutcome) Failed() []DeletionOutcome {
	var out []DeletionOutcome
	for _, a := range e.Attempts {
		if a.Err != nil {
			out = append(out, a)
		}
	}
	return out
}

// Report is what the executor did for one target. Punitive is nil for
// PunishNone; Erasure is nil when no erasure pass ran.
type Report struct {
	Punitive *ActionOutcome
	Erasure  *ErasureOutcome
}

// Executor applies a profile's moderation actions to one user.
type Executor struct {
	client    platform.Client
	collector *Collector
	warn      Warner
	now       func() time.Time
	parallel  int
}

func NewExecutor(client platform.Client, collector *Collector, warn Warner, parallel int, now func() time.Time) *Executor {
	if now == nil {
		now = time.Now
	}
	if parallel <= 0 {
		parallel = config.DefaultParallelFetches
	}
	return &Executor{
		client:    client,
		collector: collector,
		warn:      warn,
		now:       now,
		parallel:  parallel,
	}
}

// Execute runs the punitive action and then, independently, the erasure
// pass. Nothing here returns an error; failures end up in the report.
func (x *Executor) Execute(ctx context.Context, profile *config.ServerProfile, userID, text string) *Report {
	report := &Report{}

	if profile.Action != config.PunishNone {
		report.Punitive = x.punish(ctx, profile, userID)
	}

	if profile.ShouldErase() {
		report.Erasure = x.erase(ctx, profile, userID, text)
	}

	return report
}

func (x *Executor) punish(ctx context.Context, profile *config.ServerProfile, userID string) *ActionOutcome {
	out := &ActionOutcome{Action: profile.Action}

	var err error
	switch profile.Action {
	case config.PunishMute:
		now := x.now()
		until := now.Add(muteDuration)
		if !until.After(now) {
			err = ErrTimeoutOverflow
			break
		}
		err = x.client.TimeoutMember(ctx, profile.GuildID, userID, until, AuditReason)
	case config.PunishKick:
		err = x.client.KickMember(ctx, profile.GuildID, userID, AuditReason)
	case config.PunishBan:
		err = x.client.BanMember(ctx, profile.GuildID, userID, AuditReason, banDeleteDays)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownAction, profile.Action)
	}

	if err != nil {
		out.Err = err
		metrics.ActionsTotal.WithLabelValues(profile.Action.String(), metrics.ResultFailure).Inc()
		logging.Error("Executor: %s failed for user %s in guild %s: %v", profile.Action, userID, profile.GuildID, err)
		x.warn.Warn(ctx, profile.LogChannel, fmt.Sprintf(
			"⚠️ I was unable to %s the user <@%s>; please make sure the compromised account is dealt with.",
			actionVerb(profile.Action), userID))
		return out
	}

	out.Succeeded = true
	metrics.ActionsTotal.WithLabelValues(profile.Action.String(), metrics.ResultSuccess).Inc()
	logging.Info("Executor: %s applied to user %s in guild %s", profile.Action, userID, profile.GuildID)
	return out
}

func (x *Executor) erase(ctx context.Context, profile *config.ServerProfile, userID, text string) *ErasureOutcome {
	evidence := x.collector.Collect(ctx, profile, userID, text)
	out := &ErasureOutcome{
		Attempts: make([]DeletionOutcome, len(evidence.Matches)),
		Evidence: evidence,
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.parallel)
	for i, ref := range evidence.Matches {
		i, ref := i, ref
		g.Go(func() error {
			err := x.client.DeleteMessage(gctx, ref.ChannelID, ref.MessageID)
			out.Attempts[i] = DeletionOutcome{Ref: ref, Err: err}
			if err != nil {
				logging.Error("Executor: unable to delete message %s in channel %s (guild %s, user %s): %v",
					ref.MessageID, ref.ChannelID, profile.GuildID, userID, err)
				x.warn.Warn(gctx, profile.LogChannel, fmt.Sprintf(
					"⚠️ I was unable to delete a message in <#%s>; please make sure any spam messages are deleted.", ref.ChannelID))
				return nil
			}
			mu.Lock()
			out.Deleted++
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	metrics.MessagesErased.Add(float64(out.Deleted))
	return out
}

// actionVerb is the infinitive used in failure warnings.
func actionVerb(p config.Punishment) string {
	switch p {
	case config.PunishMute:
		return "time out"
	default:
		return p.String()
	}
}
