package config

import (
	"fmt"
	"sort"

	"honeypot-bot/pkg/util"
)

// ServerProfile is the resolved, read-only configuration of one community.
type ServerProfile struct {
	GuildID         string
	HoneypotChannel string
	LogChannel      string
	ModRole         string
	Action          Punishment
	EraseMessages   bool
	WarnMods        bool
	Tolerant        bool
}

// IsModerator reports whether a member role list contains the moderator role.
func (p *ServerProfile) IsModerator(roles []string) bool {
	for _, r := range roles {
		if r == p.ModRole {
			return true
		}
	}
	return false
}

// ShouldErase reports whether a separate erasure pass runs after the
// punitive action.
func (p *ServerProfile) ShouldErase() bool {
	return p.EraseMessages && !p.Action.PurgesHistory()
}

// ProfileStore maps guild IDs to profiles. It is built once at startup and
// never mutated, so it is safe to share between concurrent incidents.
type ProfileStore struct {
	profiles map[string]*ServerProfile
}

func NewProfileStore(profiles []*ServerProfile) (*ProfileStore, error) {
	ps := &ProfileStore{
		profiles: make(map[string]*ServerProfile, len(profiles)),
	}

	for _, p := range profiles {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, exists := ps.profiles[p.GuildID]; exists {
			return nil, fmt.Errorf("server %s is configured more than once", p.GuildID)
		}
		ps.profiles[p.GuildID] = p
	}

	return ps, nil
}

// Get returns the profile of a guild. Callers must not modify it.
func (ps *ProfileStore) Get(guildID string) (*ServerProfile, bool) {
	profile, ok := ps.profiles[guildID]
	return profile, ok
}

// All returns every profile ordered by guild ID.
func (ps *ProfileStore) All() []*ServerProfile {
	out := make([]*ServerProfile, 0, len(ps.profiles))
	for _, p := range ps.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out
}

func (ps *ProfileStore) Len() int {
	return len(ps.profiles)
}

func (p *ServerProfile) validate() error {
	ids := []struct {
		name  string
		value *string
	}{
		{"id", &p.GuildID},
		{"honeypot_channel", &p.HoneypotChannel},
		{"log_channel", &p.LogChannel},
		{"mod_role", &p.ModRole},
	}

	for _, id := range ids {
		canonical, err := util.ParseSnowflake(*id.value)
		if err != nil {
			return fmt.Errorf("server %q: %s: %w", p.GuildID, id.name, err)
		}
		*id.value = canonical
	}

	if p.HoneypotChannel == p.LogChannel {
		return fmt.Errorf("server %s: honeypot_channel and log_channel must differ", p.GuildID)
	}
	return nil
}
