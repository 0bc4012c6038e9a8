package decision

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"honeypot-bot/pkg/util"
)

// Control ID prefixes on tolerant-mode reports.
const (
	ControlPrefix  = "hp_"
	approvePrefix  = "hp_approve"
	dismissPrefix  = "hp_dismiss"
	controlIDSplit = ":"
)

var (
	ErrNotProposed      = errors.New("report is not awaiting a decision")
	ErrUnknownReport    = errors.New("report is not tracked and cannot be rebuilt")
	ErrMalformedControl = errors.New("malformed control identifier")
	ErrUnknownAction    = errors.New("unknown action")
)

type ApprovalState uint8

const (
	StateProposed ApprovalState = iota
	StateResolving
	StateApproved
	StateDismissed
)

func (s ApprovalState) String() string {
	switch s {
	case StateProposed:
		return "proposed"
	case StateResolving:
		return "resolving"
	case StateApproved:
		return "approved"
	case StateDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

func (s ApprovalState) Terminal() bool {
	return s == StateApproved || s == StateDismissed
}

// PendingApproval is a tolerant-mode report waiting for a moderator.
type PendingApproval struct {
	IncidentID   string
	GuildID      string
	LogChannelID string
	LogMessageID string
	UserID       string
	Text         string
	Content      string
	Embeds       []*discordgo.MessageEmbed
	State        ApprovalState
	ResolvedBy   string
}

type controlKind uint8

const (
	controlApprove controlKind = iota + 1
	controlDismiss
)

type control struct {
	kind       controlKind
	incidentID string
	userID     string
}

func approveID(incidentID, userID string) string {
	return strings.Join([]string{approvePrefix, incidentID, userID}, controlIDSplit)
}

func dismissID(incidentID string) string {
	return dismissPrefix + controlIDSplit + incidentID
}

// parseControl decodes hp_approve:<incident>:<user> and hp_dismiss:<incident>.
func parseControl(customID string) (control, error) {
	parts := strings.Split(customID, controlIDSplit)

	var c control
	switch parts[0] {
	case approvePrefix:
		if len(parts) != 3 {
			return c, fmt.Errorf("%w: %q", ErrMalformedControl, customID)
		}
		userID, err := util.ParseSnowflake(parts[2])
		if err != nil {
			return c, fmt.Errorf("%w: target user: %v", ErrMalformedControl, err)
		}
		c.kind, c.userID = controlApprove, userID
	case dismissPrefix:
		if len(parts) != 2 {
			return c, fmt.Errorf("%w: %q", ErrMalformedControl, customID)
		}
		c.kind = controlDismiss
	default:
		return c, fmt.Errorf("%w: %q", ErrUnknownAction, parts[0])
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return control{}, fmt.Errorf("%w: incident id: %v", ErrMalformedControl, err)
	}
	c.incidentID = id.String()
	return c, nil
}

// approvalControls renders the Approve and Dismiss buttons.
func approvalControls(incidentID, userID string, disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Approve",
					Style:    discordgo.DangerButton,
					CustomID: approveID(incidentID, userID),
					Disabled: disabled,
				},
				discordgo.Button{
					Label:    "Dismiss",
					Style:    discordgo.SecondaryButton,
					CustomID: dismissID(incidentID),
					Disabled: disabled,
				},
			},
		},
	}
}

// controlDisabled reports whether the button with customID is rendered
// disabled on a delivered message.
func controlDisabled(m *discordgo.Message, customID string) bool {
	if m == nil {
		return false
	}
	for _, comp := range m.Components {
		row, ok := asActionsRow(comp)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if btn, ok := asButton(inner); ok && btn.CustomID == customID {
				return btn.Disabled
			}
		}
	}
	return false
}

func asActionsRow(c discordgo.MessageComponent) (*discordgo.ActionsRow, bool) {
	switch v := c.(type) {
	case *discordgo.ActionsRow:
		return v, true
	case discordgo.ActionsRow:
		return &v, true
	}
	return nil, false
}

func asButton(c discordgo.MessageComponent) (*discordgo.Button, bool) {
	switch v := c.(type) {
	case *discordgo.Button:
		return v, true
	case discordgo.Button:
		return &v, true
	}
	return nil, false
}

// Registry holds live reports and tombstones of resolved ones, bounded by an
// LRU. Evicted reports can still be resolved from the delivered message.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *PendingApproval]
}

func NewRegistry(size int) (*Registry, error) {
	cache, err := lru.New[string, *PendingApproval](size)
	if err != nil {
		return nil, fmt.Errorf("approval registry: %w", err)
	}
	return &Registry{cache: cache}, nil
}

func (r *Registry) Add(p *PendingApproval) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Add(p.IncidentID, p)
}

// Get returns a copy of a report.
func (r *Registry) Get(incidentID string) (PendingApproval, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.cache.Get(incidentID)
	if !ok {
		return PendingApproval{}, false
	}
	return *p, true
}

// Begin claims a Proposed report for resolution and moves it to Resolving.
// When the registry has no entry, rebuild is asked for one; a nil rebuild
// yields ErrUnknownReport. Only one caller can win; the rest get
// ErrNotProposed.
func (r *Registry) Begin(incidentID string, rebuild func() *PendingApproval) (PendingApproval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.cache.Get(incidentID)
	if !ok {
		p = rebuild()
		if p == nil {
			return PendingApproval{}, ErrUnknownReport
		}
		r.cache.Add(incidentID, p)
	}
	if p.State != StateProposed {
		return PendingApproval{}, ErrNotProposed
	}

	p.State = StateResolving
	return *p, nil
}

// Finish records the terminal state of a report.
func (r *Registry) Finish(incidentID string, state ApprovalState, resolvedBy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.cache.Get(incidentID); ok {
		p.State = state
		p.ResolvedBy = resolvedBy
	}
}
