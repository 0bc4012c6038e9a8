package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"honeypot-bot/internal/config"
	"honeypot-bot/internal/logging"
)

// Options come from the command line and override the configuration file.
type Options struct {
	ConfigPath string
	LogLevel   string
}

type Bootstrap struct {
	Options     Options
	Config      *config.Config
	Components  *Components
	initialized bool
}

func New(opts Options) *Bootstrap {
	return &Bootstrap{
		Options:     opts,
		initialized: false,
	}
}

func (b *Bootstrap) Initialize() error {
	if err := b.loadConfig(); err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	if err := b.initializeLogging(); err != nil {
		return fmt.Errorf("logging init failed: %w", err)
	}

	if err := b.wireComponents(); err != nil {
		return fmt.Errorf("component wiring failed: %w", err)
	}

	b.initialized = true
	logging.Info("Bootstrap complete")
	return nil
}

// loadConfig fails hard: running without a valid server list would leave
// every trap channel unguarded.
func (b *Bootstrap) loadConfig() error {
	cfg, err := config.Load(b.Options.ConfigPath)
	if err != nil {
		return err
	}
	if b.Options.LogLevel != "" {
		cfg.Logging.Level = b.Options.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.Config = cfg
	return nil
}

func (b *Bootstrap) initializeLogging() error {
	path := b.Config.Logging.File
	if err := ensureLogsDirectory(path); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	rotation := logging.NewLogRotation(
		int64(b.Config.Logging.MaxSizeMB)<<20,
		time.Duration(b.Config.Logging.MaxAgeDays)*24*time.Hour,
	)
	rotated, err := rotation.RotateIfNeeded(path)
	if err != nil {
		return err
	}

	if err := logging.InitGlobalLogger(logging.ParseLevel(b.Config.Logging.Level), path); err != nil {
		return err
	}
	if rotated != "" {
		logging.Info("Previous log moved to %s", rotated)
	}
	return nil
}

func ensureLogsDirectory(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func (b *Bootstrap) wireComponents() error {
	return Wire(b)
}

func (b *Bootstrap) Start() error {
	if !b.initialized {
		return fmt.Errorf("bootstrap not initialized")
	}

	return StartAll(b.Components)
}

func (b *Bootstrap) Shutdown() error {
	return Shutdown(b.Components)
}
