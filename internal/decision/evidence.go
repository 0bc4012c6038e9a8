package decision

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"honeypot-bot/internal/config"
	"honeypot-bot/internal/logging"
	"honeypot-bot/internal/metrics"
	"honeypot-bot/internal/platform"
)

// Warner delivers best-effort warnings to a log channel.
type Warner interface {
	Warn(ctx context.Context, channelID, text string)
}

// MessageRef points at one near-duplicate message.
type MessageRef struct {
	ChannelID string
	MessageID string
	AuthorID  string
	Text      string
	Score     float64
}

// EvidenceSet is the result of one collection, in channel order.
type EvidenceSet struct {
	Matches []MessageRef
	// FailedChannels lists channels whose messages could not be fetched.
	FailedChannels    []string
	EnumerationFailed bool
}

func (e *EvidenceSet) Empty() bool {
	return e == nil || len(e.Matches) == 0
}

// Collector finds messages by the same author elsewhere in a guild that are
// near-duplicates of a reference text.
type Collector struct {
	client platform.Client
	warn   Warner
	cfg    config.EvidenceConfig
}

// NewCollector treats zero fields of cfg as unset and fills in the defaults.
func NewCollector(client platform.Client, warn Warner, cfg config.EvidenceConfig) *Collector {
	if cfg.Window <= 0 {
		cfg.Window = config.DefaultEvidenceWindow
	}
	if cfg.SimilarityThreshold <= 0 {
		cfg.SimilarityThreshold = config.DefaultSimilarityThreshold
	}
	if cfg.MaxParallelFetches <= 0 {
		cfg.MaxParallelFetches = config.DefaultParallelFetches
	}
	return &Collector{client: client, warn: warn, cfg: cfg}
}

type channelScan struct {
	matches []MessageRef
	failed  bool
}

// Collect never fails as a whole. Fetch problems are recorded in the result
// and reported to the log channel, and the scan moves on.
func (c *Collector) Collect(ctx context.Context, profile *config.ServerProfile, authorID, text string) *EvidenceSet {
	set := &EvidenceSet{}

	channels, err := c.client.GuildChannels(ctx, profile.GuildID)
	if err != nil {
		logging.Error("Evidence: failed to list channels in guild %s while searching for spam from user %s: %v",
			profile.GuildID, authorID, err)
		metrics.EvidenceFetchFailures.Inc()
		set.EnumerationFailed = true
		c.warn.Warn(ctx, profile.LogChannel, fmt.Sprintf(
			"⚠️ I was unable to retrieve the list of channels.\nPlease check the server for any left-over spam from <@%s>.", authorID))
		return set
	}

	targets := make([]*discordgo.Channel, 0, len(channels))
	for _, ch := range channels {
		if ch == nil || ch.ID == profile.HoneypotChannel || !platform.CanHoldMessages(ch.Type) {
			continue
		}
		targets = append(targets, ch)
	}

	reference := Sanitize(text)
	results := make([]channelScan, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxParallelFetches)
	for i, ch := range targets {
		i, ch := i, ch
		g.Go(func() error {
			results[i] = c.scanChannel(gctx, profile, ch.ID, authorID, reference)
			return nil
		})
	}
	g.Wait()

	for i, res := range results {
		if res.failed {
			set.FailedChannels = append(set.FailedChannels, targets[i].ID)
			continue
		}
		set.Matches = append(set.Matches, res.matches...)
	}

	metrics.ObserveEvidence(len(set.Matches))
	logging.Debug("Evidence: guild=%s user=%s channels=%d matches=%d failed=%d",
		profile.GuildID, authorID, len(targets), len(set.Matches), len(set.FailedChannels))
	return set
}

func (c *Collector) scanChannel(ctx context.Context, profile *config.ServerProfile, channelID, authorID, reference string) channelScan {
	msgs, err := c.client.ChannelMessages(ctx, channelID, c.cfg.Window)
	if err != nil {
		logging.Error("Evidence: failed to fetch messages from user %s in channel %s (guild %s): %v",
			authorID, channelID, profile.GuildID, err)
		metrics.EvidenceFetchFailures.Inc()
		c.warn.Warn(ctx, profile.LogChannel, fmt.Sprintf(
			"⚠️ I was unable to retrieve the messages from <@%s> in <#%s>; please check that channel for any left-over spam.",
			authorID, channelID))
		return channelScan{failed: true}
	}

	var out channelScan
	for _, m := range msgs {
		if m == nil || m.Author == nil || m.Author.ID != authorID {
			continue
		}
		score := Similarity(reference, SanitizeMessage(m))
		if score < c.cfg.SimilarityThreshold {
			continue
		}
		out.matches = append(out.matches, MessageRef{
			ChannelID: channelID,
			MessageID: m.ID,
			AuthorID:  authorID,
			Text:      m.Content,
			Score:     score,
		})
	}
	return out
}
