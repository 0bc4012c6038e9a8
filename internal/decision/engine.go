package decision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"honeypot-bot/internal/config"
	"honeypot-bot/internal/database"
	"honeypot-bot/internal/logging"
	"honeypot-bot/internal/metrics"
	"honeypot-bot/internal/notifier"
	"honeypot-bot/internal/platform"
)

const dmHelp = "🍯 Hi! I am a honeypot bot designed to catch compromised accounts spamming phishing links in servers.\n" +
	"I have no functionality to offer you outside of this.\n" +
	"- If you think you were unfairly punished by this bot and would like to appeal, please contact the moderators of the server in question."

const (
	msgNotModerator   = "Only members with the moderator role can resolve honeypot reports."
	msgMalformed      = "This report cannot be resolved: its controls are malformed. Please handle the user manually."
	msgAlreadyHandled = "This report has already been resolved."
	msgUnknownReport  = "This report is no longer tracked and cannot be resolved from here. Please handle the user manually."
)

// Journal stores incident history. It is optional and write-only from the
// engine's point of view.
type Journal interface {
	RecordIncident(ctx context.Context, rec *database.IncidentRecord) error
	ResolveIncident(ctx context.Context, id, status, resolvedBy, outcome string, erased int, at time.Time) error
}

type Options struct {
	Client          platform.Client
	Profiles        *config.ProfileStore
	Evidence        config.EvidenceConfig
	RegistrySize    int
	IncidentTimeout time.Duration
	// Journal may be nil.
	Journal Journal
	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine turns trap-channel messages into moderation decisions.
type Engine struct {
	client    platform.Client
	profiles  *config.ProfileStore
	notify    *notifier.Notifier
	collector *Collector
	executor  *Executor
	registry  *Registry
	journal   Journal
	timeout   time.Duration
	now       func() time.Time
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.Client == nil || opts.Profiles == nil {
		return nil, errors.New("engine requires a platform client and server profiles")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IncidentTimeout <= 0 {
		opts.IncidentTimeout = config.DefaultIncidentTimeout
	}
	if opts.RegistrySize <= 0 {
		opts.RegistrySize = config.DefaultRegistrySize
	}

	registry, err := NewRegistry(opts.RegistrySize)
	if err != nil {
		return nil, err
	}

	notify := notifier.New(opts.Client)
	collector := NewCollector(opts.Client, notify, opts.Evidence)

	return &Engine{
		client:    opts.Client,
		profiles:  opts.Profiles,
		notify:    notify,
		collector: collector,
		executor:  NewExecutor(opts.Client, collector, notify, collector.cfg.MaxParallelFetches, opts.Now),
		registry:  registry,
		journal:   opts.Journal,
		timeout:   opts.IncidentTimeout,
		now:       opts.Now,
	}, nil
}

func (e *Engine) Profiles() *config.ProfileStore {
	return e.profiles
}

// HandleMessage processes one created message.
func (e *Engine) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil {
		return
	}
	if m.Author.ID == e.client.UserID() || m.WebhookID != "" {
		return
	}
	if m.Type != discordgo.MessageTypeDefault && m.Type != discordgo.MessageTypeReply {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if m.GuildID == "" {
		e.replyHelp(ctx, m)
		return
	}

	profile, ok := e.profiles.Get(m.GuildID)
	if !ok {
		logging.Warn("Message received from guild %s, which is not configured; add a server entry for it or remove the bot from that server", m.GuildID)
		metrics.IncidentsTotal.WithLabelValues(metrics.OutcomeUnconfigured).Inc()
		return
	}

	if m.ChannelID != profile.HoneypotChannel {
		return
	}

	if e.isModerator(ctx, profile, m) {
		logging.Info("Honeypot triggered by moderator %s in guild %s; ignoring", m.Author.ID, m.GuildID)
		metrics.IncidentsTotal.WithLabelValues(metrics.OutcomeModerator).Inc()
		return
	}

	start := time.Now()
	inc := newIncident(profile, m)
	logging.Info("Honeypot triggered: incident=%s guild=%s channel=%s user=%s message=%s",
		inc.ID, inc.GuildID, inc.ChannelID, inc.AuthorID, inc.MessageID)

	evidence := e.collector.Collect(ctx, profile, inc.AuthorID, inc.Text)

	if profile.Tolerant && evidence.Empty() {
		e.propose(ctx, inc)
		metrics.IncidentsTotal.WithLabelValues(metrics.OutcomeProposed).Inc()
		metrics.ObserveIncident(metrics.OutcomeProposed, start)
		return
	}

	e.act(ctx, inc, evidence)
	metrics.IncidentsTotal.WithLabelValues(metrics.OutcomeActioned).Inc()
	metrics.ObserveIncident(metrics.OutcomeActioned, start)
}

func (e *Engine) isModerator(ctx context.Context, profile *config.ServerProfile, m *discordgo.Message) bool {
	if m.Member != nil {
		return profile.IsModerator(m.Member.Roles)
	}

	member, err := e.client.GuildMember(ctx, m.GuildID, m.Author.ID)
	if err != nil {
		logging.Warn("Could not fetch member %s in guild %s to check the moderator role: %v", m.Author.ID, m.GuildID, err)
		return false
	}
	return profile.IsModerator(member.Roles)
}

func (e *Engine) replyHelp(ctx context.Context, m *discordgo.Message) {
	if m.Author.Bot {
		return
	}
	logging.Warn("Received a message outside of a server from user %s; sending help message", m.Author.ID)

	_, err := e.client.SendMessage(ctx, m.ChannelID, &discordgo.MessageSend{
		Content:   dmHelp,
		Reference: m.Reference(),
	})
	if err != nil {
		logging.Error("Failed to send help message to user %s: %v", m.Author.ID, err)
	}
}

func logMentions(profile *config.ServerProfile) *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Roles: []string{profile.ModRole}}
}

// act runs the executor and publishes the final record.
func (e *Engine) act(ctx context.Context, inc *Incident, evidence *EvidenceSet) {
	profile := inc.Profile
	report := e.executor.Execute(ctx, profile, inc.AuthorID, inc.Text)

	content := renderAudit(profile, inc.AuthorID, evidence, report)
	_, err := e.notify.Publish(ctx, profile.LogChannel, &discordgo.MessageSend{
		Content:         content,
		Embeds:          []*discordgo.MessageEmbed{originalEmbed(inc)},
		AllowedMentions: logMentions(profile),
	})
	if err != nil {
		logging.Error("Failed to send the log record of incident %s to channel %s (guild %s, user %s): %v",
			inc.ID, profile.LogChannel, inc.GuildID, inc.AuthorID, err)
	}

	rec := e.incidentRecord(inc, database.StatusActioned, len(evidence.Matches))
	rec.Outcome = summary(report)
	if report.Erasure != nil {
		rec.Erased = report.Erasure.Deleted
	}
	rec.ResolvedAt = rec.CreatedAt
	e.record(ctx, rec)
}

// propose publishes a tolerant-mode report with Approve and Dismiss buttons.
func (e *Engine) propose(ctx context.Context, inc *Incident) {
	profile := inc.Profile

	content := renderProposal(profile, inc.AuthorID)
	embed := originalEmbed(inc)
	embed.Color = colorProposed
	embeds := []*discordgo.MessageEmbed{embed}

	msg, err := e.notify.Publish(ctx, profile.LogChannel, &discordgo.MessageSend{
		Content:         content,
		Embeds:          embeds,
		Components:      approvalControls(inc.ID, inc.AuthorID, false),
		AllowedMentions: logMentions(profile),
	})
	if err != nil {
		logging.Error("Failed to send the tolerant-mode report of incident %s to channel %s (guild %s, user %s): %v",
			inc.ID, profile.LogChannel, inc.GuildID, inc.AuthorID, err)
		return
	}

	e.registry.Add(&PendingApproval{
		IncidentID:   inc.ID,
		GuildID:      inc.GuildID,
		LogChannelID: profile.LogChannel,
		LogMessageID: msg.ID,
		UserID:       inc.AuthorID,
		Text:         inc.Text,
		Content:      msg.Content,
		Embeds:       embeds,
		State:        StateProposed,
	})
	logging.Info("Incident %s awaiting moderator decision (guild %s, user %s)", inc.ID, inc.GuildID, inc.AuthorID)

	e.record(ctx, e.incidentRecord(inc, database.StatusProposed, 0))
}

// HandleComponent resolves a button press on a tolerant-mode report.
func (e *Engine) HandleComponent(ctx context.Context, i *discordgo.Interaction) {
	if i == nil || i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID

	if i.AppID != e.client.ApplicationID() {
		logging.Warn("Ignoring control %q from application %s", customID, i.AppID)
		return
	}

	profile, ok := e.profiles.Get(i.GuildID)
	if !ok || i.ChannelID != profile.LogChannel {
		logging.Warn("Ignoring control %q from guild %s channel %s: not a configured log channel", customID, i.GuildID, i.ChannelID)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if i.Member == nil || i.Member.User == nil || !profile.IsModerator(i.Member.Roles) {
		e.ephemeral(ctx, i, msgNotModerator)
		return
	}
	modID := i.Member.User.ID

	c, err := parseControl(customID)
	if err != nil {
		logging.Warn("Rejecting control %q in guild %s from %s: %v", customID, i.GuildID, modID, err)
		e.ephemeral(ctx, i, msgMalformed)
		return
	}

	if controlDisabled(i.Message, customID) {
		e.ephemeral(ctx, i, msgAlreadyHandled)
		return
	}

	rec, err := e.registry.Begin(c.incidentID, func() *PendingApproval {
		return rebuildApproval(i, c, profile)
	})
	if errors.Is(err, ErrUnknownReport) {
		logging.Warn("Rejecting control on untracked incident %s in guild %s from %s", c.incidentID, i.GuildID, modID)
		e.ephemeral(ctx, i, msgUnknownReport)
		return
	}
	if err != nil {
		e.ephemeral(ctx, i, msgAlreadyHandled)
		return
	}

	if err := e.client.RespondInteraction(ctx, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		logging.Warn("Failed to acknowledge control on incident %s: %v", c.incidentID, err)
	}

	switch c.kind {
	case controlDismiss:
		e.dismiss(ctx, rec, modID)
	case controlApprove:
		e.approve(ctx, profile, rec, c.userID, modID)
	}
}

func (e *Engine) dismiss(ctx context.Context, rec PendingApproval, modID string) {
	content := renderDismissed(rec.Content, modID)
	if _, err := e.notify.Edit(ctx, rec.LogChannelID, rec.LogMessageID, content, rec.Embeds,
		approvalControls(rec.IncidentID, rec.UserID, true)); err != nil {
		logging.Error("Failed to update dismissed report %s: %v", rec.IncidentID, err)
	}

	e.registry.Finish(rec.IncidentID, StateDismissed, modID)
	metrics.ApprovalsTotal.WithLabelValues(StateDismissed.String()).Inc()
	logging.Info("Incident %s dismissed by %s (guild %s, user %s)", rec.IncidentID, modID, rec.GuildID, rec.UserID)

	e.resolve(ctx, rec.IncidentID, database.StatusDismissed, modID, "no action taken", 0)
}

func (e *Engine) approve(ctx context.Context, profile *config.ServerProfile, rec PendingApproval, userID, modID string) {
	report := e.executor.Execute(ctx, profile, userID, rec.Text)

	content := renderApproved(profile, userID, modID, report)
	if _, err := e.notify.Edit(ctx, rec.LogChannelID, rec.LogMessageID, content, rec.Embeds,
		approvalControls(rec.IncidentID, userID, true)); err != nil {
		logging.Error("Failed to update approved report %s: %v", rec.IncidentID, err)
	}

	e.registry.Finish(rec.IncidentID, StateApproved, modID)
	metrics.ApprovalsTotal.WithLabelValues(StateApproved.String()).Inc()
	logging.Info("Incident %s approved by %s (guild %s, user %s)", rec.IncidentID, modID, rec.GuildID, userID)

	erased := 0
	if report.Erasure != nil {
		erased = report.Erasure.Deleted
	}
	e.resolve(ctx, rec.IncidentID, database.StatusApproved, modID, summary(report), erased)
}

// rebuildApproval recovers a report from the delivered message when the
// registry no longer knows it, e.g. after a restart.
func rebuildApproval(i *discordgo.Interaction, c control, profile *config.ServerProfile) *PendingApproval {
	m := i.Message
	if m == nil {
		return nil
	}

	p := &PendingApproval{
		IncidentID:   c.incidentID,
		GuildID:      profile.GuildID,
		LogChannelID: profile.LogChannel,
		LogMessageID: m.ID,
		UserID:       c.userID,
		Content:      m.Content,
		Embeds:       m.Embeds,
		State:        StateProposed,
	}
	if len(m.Embeds) > 0 {
		p.Text = m.Embeds[0].Description
	}
	if p.UserID == "" {
		p.UserID = approveTarget(m)
	}
	return p
}

// approveTarget extracts the target user from the Approve button of a report.
func approveTarget(m *discordgo.Message) string {
	for _, comp := range m.Components {
		row, ok := asActionsRow(comp)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			btn, ok := asButton(inner)
			if !ok {
				continue
			}
			if c, err := parseControl(btn.CustomID); err == nil && c.kind == controlApprove {
				return c.userID
			}
		}
	}
	return ""
}

func (e *Engine) ephemeral(ctx context.Context, i *discordgo.Interaction, text string) {
	err := e.client.RespondInteraction(ctx, i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logging.Warn("Failed to answer interaction in guild %s: %v", i.GuildID, err)
	}
}

// HandleReady checks every configured guild and posts the welcome message.
// A broken guild is skipped; the others still get their announcement.
func (e *Engine) HandleReady(ctx context.Context) {
	for _, profile := range e.profiles.All() {
		e.announce(ctx, profile)
	}
}

func (e *Engine) announce(ctx context.Context, profile *config.ServerProfile) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.verify(ctx, profile); err != nil {
		logging.Warn("Skipping guild %s: %v", profile.GuildID, err)
		return
	}

	msg, err := e.notify.Publish(ctx, profile.LogChannel, &discordgo.MessageSend{
		Content: renderWelcome(profile),
	})
	if err != nil {
		logging.Error("Failed to send the welcome message to channel %s (guild %s): %v", profile.LogChannel, profile.GuildID, err)
		return
	}

	if err := e.client.PinMessage(ctx, profile.LogChannel, msg.ID); err != nil {
		logging.Warn("Failed to pin the welcome message in channel %s (guild %s): %v", profile.LogChannel, profile.GuildID, err)
	}
	logging.Info("Honeypot active in guild %s (trap %s, log %s, action %s)",
		profile.GuildID, profile.HoneypotChannel, profile.LogChannel, profile.Action)
}

// verify checks that the configured channels and role still exist.
func (e *Engine) verify(ctx context.Context, profile *config.ServerProfile) error {
	channels, err := e.client.GuildChannels(ctx, profile.GuildID)
	if err != nil {
		return fmt.Errorf("unable to retrieve channels: %w", err)
	}

	var trap, log bool
	for _, ch := range channels {
		switch ch.ID {
		case profile.HoneypotChannel:
			trap = true
		case profile.LogChannel:
			log = true
		}
	}
	if !trap || !log {
		return fmt.Errorf("channels %s and %s are not both present", profile.HoneypotChannel, profile.LogChannel)
	}

	roles, err := e.client.GuildRoles(ctx, profile.GuildID)
	if err != nil {
		return fmt.Errorf("unable to retrieve roles: %w", err)
	}
	for _, r := range roles {
		if r.ID == profile.ModRole {
			return nil
		}
	}
	return fmt.Errorf("role %s does not exist", profile.ModRole)
}

func (e *Engine) incidentRecord(inc *Incident, status string, evidence int) *database.IncidentRecord {
	return &database.IncidentRecord{
		ID:        inc.ID,
		GuildID:   inc.GuildID,
		UserID:    inc.AuthorID,
		ChannelID: inc.ChannelID,
		MessageID: inc.MessageID,
		Action:    inc.Profile.Action.String(),
		Status:    status,
		Evidence:  evidence,
		CreatedAt: e.now(),
	}
}

func (e *Engine) record(ctx context.Context, rec *database.IncidentRecord) {
	if e.journal == nil {
		return
	}
	if err := e.journal.RecordIncident(ctx, rec); err != nil {
		logging.Error("Journal: %v", err)
	}
}

func (e *Engine) resolve(ctx context.Context, id, status, modID, outcome string, erased int) {
	if e.journal == nil {
		return
	}
	err := e.journal.ResolveIncident(ctx, id, status, modID, outcome, erased, e.now())
	if errors.Is(err, database.ErrNotFound) {
		logging.Debug("Journal has no entry for incident %s", id)
		return
	}
	if err != nil {
		logging.Error("Journal: %v", err)
	}
}
