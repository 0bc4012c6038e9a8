package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Logging  LoggingConfig  `yaml:"logging"`
	Engine   EngineConfig   `yaml:"engine"`
	Evidence EvidenceConfig `yaml:"evidence"`
	Approval ApprovalConfig `yaml:"approval"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Defaults ActionDefaults `yaml:"defaults"`
	Servers  []ServerConfig `yaml:"servers"`
}

type BotConfig struct {
	Token string `yaml:"token"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	// The file is rotated at startup when it exceeds either limit; 0 disables.
	MaxSizeMB  int `yaml:"max_size_mb"`
	MaxAgeDays int `yaml:"max_age_days"`
}

type DatabaseConfig struct {
	// Path of the SQLite incident journal. Empty disables the journal.
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	// Listen address of the metrics endpoint, e.g. ":9464". Empty disables it.
	Listen string `yaml:"listen"`
}

// ActionDefaults apply to every server that leaves the field unset.
type ActionDefaults struct {
	Action        string `yaml:"action"`
	EraseMessages bool   `yaml:"erase_messages"`
	WarnMods      bool   `yaml:"warn_mods"`
	Tolerant      bool   `yaml:"tolerant"`
}

type ServerConfig struct {
	ID              string `yaml:"id"`
	HoneypotChannel string `yaml:"honeypot_channel"`
	LogChannel      string `yaml:"log_channel"`
	ModRole         string `yaml:"mod_role"`
	Action          string `yaml:"action"`
	EraseMessages   *bool  `yaml:"erase_messages"`
	WarnMods        *bool  `yaml:"warn_mods"`
	Tolerant        *bool  `yaml:"tolerant"`
}

var ErrNoToken = errors.New("discord bot token not set; set DISCORD_TOKEN or bot.token")

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.Evidence = cfg.Evidence.normalized()
	if cfg.Approval.RegistrySize <= 0 {
		cfg.Approval.RegistrySize = DefaultRegistrySize
	}

	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			File:       "honeypot.log",
			MaxSizeMB:  50,
			MaxAgeDays: 7,
		},
		Engine: EngineConfig{
			IncidentTimeoutSeconds: int(DefaultIncidentTimeout.Seconds()),
		},
		Evidence: EvidenceConfig{
			Window:              DefaultEvidenceWindow,
			SimilarityThreshold: DefaultSimilarityThreshold,
			MaxParallelFetches:  DefaultParallelFetches,
		},
		Approval: ApprovalConfig{
			RegistrySize: DefaultRegistrySize,
		},
		Defaults: ActionDefaults{
			Action: "none",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if level := os.Getenv("HONEYPOT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("HONEYPOT_DATABASE_PATH"); path != "" {
		cfg.Database.Path = path
	}
}

// Profiles resolves every server entry against the defaults and returns the
// immutable store used by the engine.
func (c *Config) Profiles() (*ProfileStore, error) {
	if len(c.Servers) == 0 {
		return nil, errors.New("no servers configured")
	}

	profiles := make([]*ServerProfile, 0, len(c.Servers))
	for _, s := range c.Servers {
		actionName := s.Action
		if actionName == "" {
			actionName = c.Defaults.Action
		}
		action, err := ParsePunishment(actionName)
		if err != nil {
			return nil, fmt.Errorf("server %q: %w", s.ID, err)
		}

		profiles = append(profiles, &ServerProfile{
			GuildID:         s.ID,
			HoneypotChannel: s.HoneypotChannel,
			LogChannel:      s.LogChannel,
			ModRole:         s.ModRole,
			Action:          action,
			EraseMessages:   boolOr(s.EraseMessages, c.Defaults.EraseMessages),
			WarnMods:        boolOr(s.WarnMods, c.Defaults.WarnMods),
			Tolerant:        boolOr(s.Tolerant, c.Defaults.Tolerant),
		})
	}

	return NewProfileStore(profiles)
}

// Validate checks everything startup needs before connecting.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return ErrNoToken
	}
	if err := c.Evidence.validate(); err != nil {
		return err
	}
	_, err := c.Profiles()
	return err
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
