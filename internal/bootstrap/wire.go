package bootstrap

import (
	"fmt"
	"time"

	"honeypot-bot/internal/bot"
	"honeypot-bot/internal/commands"
	"honeypot-bot/internal/database"
	"honeypot-bot/internal/decision"
	"honeypot-bot/internal/logging"
	"honeypot-bot/internal/metrics"
	"honeypot-bot/internal/watchdog"
)

const (
	watchdogInterval = 15 * time.Second
	// the gateway heartbeats roughly every 41s
	gatewayStaleAfter = 2 * time.Minute
)

type Components struct {
	Session  *bot.Session
	Engine   *decision.Engine
	Commands *commands.Handler
	Watchdog *watchdog.Watchdog

	// Optional
	Journal  *database.Database
	Exporter *metrics.Exporter
}

func Wire(b *Bootstrap) error {
	logging.Info("Wiring components...")
	cfg := b.Config

	profiles, err := cfg.Profiles()
	if err != nil {
		return err
	}
	for _, p := range profiles.All() {
		logging.Info("Server %s: honeypot %s, log %s, action %s, erase %t, tolerant %t",
			p.GuildID, p.HoneypotChannel, p.LogChannel, p.Action, p.EraseMessages, p.Tolerant)
	}

	c := &Components{}

	// Interfaces must stay nil, not typed-nil, when the journal is off.
	var journal decision.Journal
	var history commands.History
	if cfg.Database.Path != "" {
		db, err := database.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		c.Journal = db
		journal = db
		history = db
		logging.Info("Incident journal at %s", cfg.Database.Path)
	}

	session, err := bot.New(cfg.Bot.Token)
	if err != nil {
		closeJournal(c)
		return err
	}
	c.Session = session

	engine, err := decision.NewEngine(decision.Options{
		Client:          session,
		Profiles:        profiles,
		Evidence:        cfg.Evidence,
		RegistrySize:    cfg.Approval.RegistrySize,
		IncidentTimeout: cfg.Engine.IncidentTimeout(),
		Journal:         journal,
	})
	if err != nil {
		closeJournal(c)
		return fmt.Errorf("engine: %w", err)
	}
	c.Engine = engine
	c.Commands = commands.NewHandler(session, engine, history, session)

	if cfg.Metrics.Listen != "" {
		c.Exporter = metrics.NewExporter(cfg.Metrics.Listen)
	}
	setHealthy := func(healthy bool) {
		if healthy {
			metrics.GatewayHealthy.Set(1)
		} else {
			metrics.GatewayHealthy.Set(0)
		}
		if c.Exporter != nil {
			c.Exporter.SetReady(healthy)
		}
	}
	onReady := func() { setHealthy(true) }

	c.Watchdog = watchdog.NewWatchdog(watchdogInterval, setHealthy)
	c.Watchdog.RegisterComponent("gateway", gatewayStaleAfter, session.LastHeartbeatAck)

	session.SetupEventHandlers(engine, c.Commands, onReady)

	b.Components = c
	logging.Info("Component wiring complete")
	return nil
}

func closeJournal(c *Components) {
	if c.Journal != nil {
		c.Journal.Close()
	}
}

func StartAll(c *Components) error {
	logging.Info("Starting components...")

	if c.Exporter != nil {
		if err := c.Exporter.Start(); err != nil {
			return fmt.Errorf("metrics exporter: %w", err)
		}
	}

	if err := c.Session.Connect(); err != nil {
		return err
	}

	if c.Session.ApplicationID() == "" {
		return fmt.Errorf("gateway handshake did not report an application ID")
	}
	if err := c.Session.RegisterCommands(commands.GetAllCommands()); err != nil {
		// the honeypot itself works without slash commands
		logging.Warn("%v", err)
	}

	c.Watchdog.Start()
	logging.Info("Watchdog started")

	logging.Info("All components started")
	return nil
}
