package bootstrap

import (
	"honeypot-bot/internal/logging"
)

// Shutdown stops intake first, then flushes the journal and the log.
func Shutdown(c *Components) error {
	logging.Info("Starting graceful shutdown...")
	if c == nil {
		return logging.CloseGlobalLogger()
	}

	if c.Watchdog != nil {
		c.Watchdog.Stop()
	}
	if c.Exporter != nil {
		c.Exporter.SetReady(false)
	}

	if c.Session != nil {
		logging.Info("Closing Discord session...")
		if err := c.Session.Close(); err != nil {
			logging.Warn("Discord session close: %v", err)
		}
	}

	if c.Exporter != nil {
		logging.Info("Stopping metrics exporter...")
		if err := c.Exporter.Stop(); err != nil {
			logging.Warn("Metrics exporter stop: %v", err)
		}
	}

	if c.Journal != nil {
		logging.Info("Closing incident journal...")
		if err := c.Journal.Close(); err != nil {
			logging.Warn("Journal close: %v", err)
		}
	}

	logging.Info("Graceful shutdown complete")
	return logging.CloseGlobalLogger()
}
