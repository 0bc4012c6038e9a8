package decision

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"honeypot-bot/internal/config"
)

const (
	colorCaught   = 0xED4245
	colorProposed = 0xFEE75C
)

func caughtLine(userID string) string {
	return fmt.Sprintf("🐻🍯 User <@%s> was caught by the honeypot!", userID)
}

func modMention(profile *config.ServerProfile) string {
	return fmt.Sprintf("<@&%s>", profile.ModRole)
}

// originalEmbed shows the trapped message as the author posted it.
func originalEmbed(inc *Incident) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Original message",
		Description: inc.Text,
		Color:       colorCaught,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    inc.AuthorName,
			IconURL: inc.AuthorAvatar,
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Incident " + inc.ID,
		},
	}
	if !inc.Timestamp.IsZero() {
		embed.Timestamp = inc.Timestamp.Format("2006-01-02T15:04:05Z07:00")
	}
	return embed
}

// renderAudit builds the final log record text for an actioned incident.
func renderAudit(profile *config.ServerProfile, userID string, evidence *EvidenceSet, report *Report) string {
	var b strings.Builder

	if profile.WarnMods {
		b.WriteString(modMention(profile))
		b.WriteString("\n")
	}
	b.WriteString(caughtLine(userID))
	b.WriteString("\n")
	writeOutcome(&b, userID, evidence, report)

	return strings.TrimRight(b.String(), "\n")
}

// writeOutcome appends one line per action plus any evidence or deletion
// problems a moderator has to clean up by hand.
func writeOutcome(b *strings.Builder, userID string, evidence *EvidenceSet, report *Report) {
	if evidence != nil {
		fmt.Fprintf(b, "Corroborating messages found: %d\n", len(evidence.Matches))
	}

	if p := report.Punitive; p != nil {
		if p.Succeeded {
			fmt.Fprintf(b, "✅ %s\n", punitiveSuccess(p.Action))
		} else {
			fmt.Fprintf(b, "❌ Could not %s the user: %v\n", actionVerb(p.Action), p.Err)
		}
	}

	if e := report.Erasure; e != nil {
		fmt.Fprintf(b, "🧹 %s deleted", pluralMessages(e.Deleted))
		if failed := len(e.Failed()); failed > 0 {
			fmt.Fprintf(b, ", %d could not be deleted", failed)
		}
		b.WriteString(".\n")
		for _, f := range e.Failed() {
			fmt.Fprintf(b, "  - <#%s> message %s: %v\n", f.Ref.ChannelID, f.Ref.MessageID, f.Err)
		}
	}

	// the erasure pass rescans, so its failures supersede the first scan's
	switch {
	case report.Erasure != nil:
		writeEvidenceFailures(b, userID, report.Erasure.Evidence)
	case evidence != nil:
		writeEvidenceFailures(b, userID, evidence)
	}
}

func writeEvidenceFailures(b *strings.Builder, userID string, evidence *EvidenceSet) {
	if evidence == nil {
		return
	}
	if evidence.EnumerationFailed {
		fmt.Fprintf(b, "⚠️ The channel list could not be read; check the server for left-over spam from <@%s>.\n", userID)
	}
	for _, ch := range evidence.FailedChannels {
		fmt.Fprintf(b, "⚠️ <#%s> could not be searched.\n", ch)
	}
}

func punitiveSuccess(p config.Punishment) string {
	switch p {
	case config.PunishMute:
		return "The user was timed out for 1 day."
	case config.PunishKick:
		return "The user was kicked."
	case config.PunishBan:
		return "The user was banned."
	default:
		return "No punitive action was configured."
	}
}

func pluralMessages(n int) string {
	if n == 1 {
		return "1 message"
	}
	return fmt.Sprintf("%d messages", n)
}

// renderProposal builds the tolerant-mode report waiting for a moderator.
func renderProposal(profile *config.ServerProfile, userID string) string {
	var b strings.Builder
	if profile.WarnMods {
		b.WriteString(modMention(profile))
		b.WriteString("\n")
	}
	b.WriteString(caughtLine(userID))
	b.WriteString("\n**Tolerant mode:** no matching messages were found elsewhere, so the honeypot may have been triggered by mistake. ")
	b.WriteString("Please verify it and approve or dismiss the report.")
	return b.String()
}

func renderDismissed(original, moderatorID string) string {
	return fmt.Sprintf("%s\n\n🚫 Dismissed by <@%s>, no action taken.", strings.TrimRight(original, "\n"), moderatorID)
}

func renderApproved(profile *config.ServerProfile, userID, moderatorID string, report *Report) string {
	var b strings.Builder
	b.WriteString(caughtLine(userID))
	fmt.Fprintf(&b, "\n✔️ Approved by <@%s>.\n", moderatorID)
	writeOutcome(&b, userID, nil, report)
	return strings.TrimRight(b.String(), "\n")
}

// summary is the one-line outcome stored in the journal.
func summary(report *Report) string {
	var parts []string
	if p := report.Punitive; p != nil {
		if p.Succeeded {
			parts = append(parts, p.Action.String()+" ok")
		} else {
			parts = append(parts, p.Action.String()+" failed")
		}
	}
	if e := report.Erasure; e != nil {
		parts = append(parts, pluralMessages(e.Deleted)+" deleted")
	}
	if len(parts) == 0 {
		return "no action"
	}
	return strings.Join(parts, ", ")
}

// renderWelcome describes the active configuration of a guild.
func renderWelcome(profile *config.ServerProfile) string {
	var b strings.Builder
	b.WriteString("Hello! I'm the beekeeper! 🧑‍🌾\n\n")
	fmt.Fprintf(&b, "The honeypot has been installed in <#%s>.\n", profile.HoneypotChannel)
	fmt.Fprintf(&b, "Logs will be written to this channel (<#%s>).\n\n", profile.LogChannel)

	state := "disabled"
	if profile.Tolerant {
		state = "enabled"
	}
	fmt.Fprintf(&b, "Tolerant mode is **%s**.\n", state)

	if profile.WarnMods {
		fmt.Fprintf(&b, "%s will be pinged when the honeypot is triggered.\n", modMention(profile))
	}

	switch {
	case profile.Action != config.PunishNone:
		fmt.Fprintf(&b, "Offending users will be **%s**", pastTense(profile.Action))
		if profile.EraseMessages {
			b.WriteString(" and their spam messages will be deleted")
		}
		b.WriteString(".\n")
	case profile.EraseMessages:
		b.WriteString("Offending users' spam messages will be deleted.\n")
	default:
		b.WriteString("No automatic action is configured; incidents are only reported here.\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func pastTense(p config.Punishment) string {
	switch p {
	case config.PunishMute:
		return "muted"
	case config.PunishKick:
		return "kicked"
	case config.PunishBan:
		return "banned"
	default:
		return p.String()
	}
}
