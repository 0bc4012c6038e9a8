package config

import (
	"fmt"
	"strings"
)

// Punishment is the single punitive action a community applies to a caught
// account. The values are mutually exclusive; message erasure and moderator
// pings are separate flags on ServerProfile.
type Punishment uint8

const (
	PunishNone Punishment = iota
	PunishMute
	PunishKick
	PunishBan
)

func (p Punishment) String() string {
	switch p {
	case PunishNone:
		return "none"
	case PunishMute:
		return "mute"
	case PunishKick:
		return "kick"
	case PunishBan:
		return "ban"
	default:
		return "unknown"
	}
}

// ParsePunishment accepts the config spelling of an action. "timeout" is an
// alias for mute, matching the wording Discord uses in its client.
func ParsePunishment(s string) (Punishment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return PunishNone, nil
	case "mute", "timeout":
		return PunishMute, nil
	case "kick":
		return PunishKick, nil
	case "ban":
		return PunishBan, nil
	default:
		return PunishNone, fmt.Errorf("unknown punitive action %q (want none, mute, kick or ban)", s)
	}
}

// PurgesHistory reports whether the action already removes the member's recent
// messages, making a separate erasure pass redundant.
func (p Punishment) PurgesHistory() bool {
	return p == PunishBan
}
