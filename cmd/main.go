package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v2"

	"honeypot-bot/internal/bootstrap"
	"honeypot-bot/internal/logging"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "honeypot: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	app := cli.App{
		Name:  "honeypot",
		Usage: "Discord bot that bans spammers who post in a trap channel",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path of the YAML configuration",
				Value:   "config.yaml",
				EnvVars: []string{"HONEYPOT_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "dotenv file loaded before the configuration (DISCORD_TOKEN, ...)",
				Value:   ".env",
				EnvVars: []string{"HONEYPOT_ENV_FILE"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override logging.level (debug, info, warn, error)",
			},
		},
		Before: loadEnvFile,
		Action: runBot,
	}

	return app.Run(args)
}

// loadEnvFile tolerates a missing file; the environment may already be set.
func loadEnvFile(cctx *cli.Context) error {
	path := cctx.String("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func runBot(cctx *cli.Context) error {
	b := bootstrap.New(bootstrap.Options{
		ConfigPath: cctx.String("config"),
		LogLevel:   cctx.String("log-level"),
	})

	if err := b.Initialize(); err != nil {
		return err
	}

	if err := b.Start(); err != nil {
		logging.Critical("Startup failed: %v", err)
		b.Shutdown()
		return err
	}

	logging.Info("Honeypot running. Press Ctrl+C to stop.")
	waitForShutdown()

	return b.Shutdown()
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logging.Info("Shutdown signal received: %s", sig)
}
