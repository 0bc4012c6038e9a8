package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
bot:
  token: file-token
evidence:
  window: 500
  similarity_threshold: 0.8
defaults:
  action: kick
  erase_messages: true
  warn_mods: true
servers:
  - id: "111"
    honeypot_channel: "222"
    log_channel: "333"
    mod_role: "444"
  - id: "555"
    honeypot_channel: "666"
    log_channel: "777"
    mod_role: "888"
    action: ban
    warn_mods: false
    tolerant: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Bot.Token)
	assert.Equal(t, 100, cfg.Evidence.Window, "window is capped at the API maximum")
	assert.Equal(t, 0.8, cfg.Evidence.SimilarityThreshold)
	assert.Equal(t, DefaultParallelFetches, cfg.Evidence.MaxParallelFetches)
	assert.Equal(t, "info", cfg.Logging.Level)

	store, err := cfg.Profiles()
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	first, ok := store.Get("111")
	require.True(t, ok)
	assert.Equal(t, PunishKick, first.Action)
	assert.True(t, first.EraseMessages)
	assert.True(t, first.WarnMods)
	assert.False(t, first.Tolerant)
	assert.True(t, first.ShouldErase())

	second, ok := store.Get("555")
	require.True(t, ok)
	assert.Equal(t, PunishBan, second.Action)
	assert.False(t, second.WarnMods)
	assert.True(t, second.Tolerant)
	assert.True(t, second.EraseMessages)
	assert.False(t, second.ShouldErase(), "ban already purges history")

	_, ok = store.Get("999")
	assert.False(t, ok)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadServers(t *testing.T) {
	fixtures := []struct {
		name string
		body string
	}{
		{
			name: "unknown action",
			body: `
servers:
  - {id: "1", honeypot_channel: "2", log_channel: "3", mod_role: "4", action: explode}
`,
		},
		{
			name: "non numeric id",
			body: `
servers:
  - {id: "abc", honeypot_channel: "2", log_channel: "3", mod_role: "4"}
`,
		},
		{
			name: "same trap and log channel",
			body: `
servers:
  - {id: "1", honeypot_channel: "2", log_channel: "2", mod_role: "4"}
`,
		},
		{
			name: "duplicate guild",
			body: `
servers:
  - {id: "1", honeypot_channel: "2", log_channel: "3", mod_role: "4"}
  - {id: "1", honeypot_channel: "5", log_channel: "6", mod_role: "7"}
`,
		},
		{
			name: "no servers",
			body: "bot: {token: x}\n",
		},
	}

	for _, fix := range fixtures {
		t.Run(fix.name, func(t *testing.T) {
			t.Setenv("DISCORD_TOKEN", "token")
			cfg, err := Load(writeConfig(t, fix.body))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateSimilarityThreshold(t *testing.T) {
	const servers = `
servers:
  - {id: "1", honeypot_channel: "2", log_channel: "3", mod_role: "4"}
`
	fixtures := []struct {
		name  string
		line  string
		want  float64
		valid bool
	}{
		{"omitted keeps default", "", DefaultSimilarityThreshold, true},
		{"one is allowed", "evidence: {similarity_threshold: 1}\n", 1, true},
		{"zero", "evidence: {similarity_threshold: 0}\n", 0, false},
		{"negative", "evidence: {similarity_threshold: -0.5}\n", -0.5, false},
		{"above one", "evidence: {similarity_threshold: 1.5}\n", 1.5, false},
	}

	for _, fix := range fixtures {
		t.Run(fix.name, func(t *testing.T) {
			t.Setenv("DISCORD_TOKEN", "token")
			cfg, err := Load(writeConfig(t, fix.line+servers))
			require.NoError(t, err)
			assert.Equal(t, fix.want, cfg.Evidence.SimilarityThreshold, "value is never rewritten")
			if fix.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.ErrorIs(t, cfg.Validate(), ErrBadThreshold)
			}
		})
	}
}

func TestValidateRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	cfg, err := Load(writeConfig(t, `
servers:
  - {id: "1", honeypot_channel: "2", log_channel: "3", mod_role: "4"}
`))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrNoToken)
}

func TestParsePunishment(t *testing.T) {
	fixtures := []struct {
		in  string
		out Punishment
	}{
		{"", PunishNone},
		{"none", PunishNone},
		{"Mute", PunishMute},
		{"timeout", PunishMute},
		{"kick", PunishKick},
		{" BAN ", PunishBan},
	}
	for _, fix := range fixtures {
		got, err := ParsePunishment(fix.in)
		require.NoError(t, err, fix.in)
		assert.Equal(t, fix.out, got, fix.in)
	}

	_, err := ParsePunishment("softban")
	assert.Error(t, err)
}

func TestIsModerator(t *testing.T) {
	p := &ServerProfile{ModRole: "42"}
	assert.True(t, p.IsModerator([]string{"1", "42"}))
	assert.False(t, p.IsModerator([]string{"1", "2"}))
	assert.False(t, p.IsModerator(nil))
}
