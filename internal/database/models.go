package database

import "time"

// Incident statuses.
const (
	StatusActioned  = "actioned"
	StatusProposed  = "proposed"
	StatusApproved  = "approved"
	StatusDismissed = "dismissed"
)

// IncidentRecord is one journal row. Outcome is the rendered one-line
// summary of the punitive action and erasure.
type IncidentRecord struct {
	ID         string
	GuildID    string
	UserID     string
	ChannelID  string
	MessageID  string
	Action     string
	Status     string
	Outcome    string
	Evidence   int
	Erased     int
	CreatedAt  time.Time
	ResolvedBy string
	ResolvedAt time.Time
}
