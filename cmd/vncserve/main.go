package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/vncserve/internal/config"
	"git.home.luguber.info/inful/vncserve/internal/daemon"
	"git.home.luguber.info/inful/vncserve/internal/errors"
	"git.home.luguber.info/inful/vncserve/internal/version"
	"git.home.luguber.info/inful/vncserve/pkg/x11vnc"
	"git.home.luguber.info/inful/vncserve/pkg/x11vnc/enginetest"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"vncserve.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Daemon struct {
		DryRun bool `help:"Run against a synthetic engine instead of a live display"`
	} `cmd:"" help:"Run the supervised screen-sharing server"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Args struct{} `cmd:"" help:"Print the engine argument vector for the configured server"`

	Version struct{} `cmd:"" help:"Print version information"`
}

func main() {
	// Local overrides for NATS credentials and similar; absence is fine.
	_ = godotenv.Load(".env.local", ".env")

	ctx := kong.Parse(&CLI)
	errAdapter := errors.NewCLIErrorAdapter(CLI.Verbose, nil)

	switch ctx.Command() {
	case "daemon":
		errAdapter.HandleError(runDaemon())
	case "init":
		errAdapter.HandleError(runInit(CLI.Config, CLI.Init.Force))
	case "args":
		errAdapter.HandleError(runArgs(CLI.Config))
	case "version":
		fmt.Printf("vncserve %s (commit %s, built %s)\n",
			version.Version, version.GitCommit, version.BuildTime)
	}
}

func runDaemon() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging)

	var opts []daemon.Option
	if CLI.Daemon.DryRun {
		slog.Warn("Dry run: using synthetic engine, no display will be shared")
		opts = append(opts, daemon.WithServerOptions(x11vnc.WithEngine(enginetest.New())))
	}

	d, err := daemon.New(cfg, CLI.Config, opts...)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.Run(runCtx)
}

func runInit(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	slog.Info("Configuration file created", "path", path)
	return nil
}

// runArgs prints the argument vector that would be handed to the engine,
// useful for comparing against a hand-maintained x11vnc invocation.
func runArgs(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(cfg.Server.Args(), " "))
	return nil
}

func setupLogging(cfg config.LoggingConfig) {
	level := slog.LevelInfo
	switch cfg.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if CLI.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

const starterConfig = `# vncserve daemon configuration
server:
  display: ":0"
  port: 5900
  localhost_only: true
  view_only: false
  shared: false
  # password_file: /etc/vncserve/passwd

admin:
  enabled: true
  listen: "127.0.0.1:8040"

monitoring:
  enabled: true
  interval_seconds: 30
  cpu_warn_threshold: 0.8

events:
  log_path: "vncserve-events.db"
  # nats_url: "nats://localhost:4222"
  nats_subject: "vncserve.events"

logging:
  level: info
  format: text
`
