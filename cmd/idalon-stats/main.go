// Command idalon-stats reports statistics about the Idalon leaderboards.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/idalon-client/internal/config"
	"github.com/Sternrassler/idalon-client/pkg/client"
	"github.com/Sternrassler/idalon-client/pkg/logging"
	"github.com/Sternrassler/idalon-client/pkg/pagination"
	"github.com/alecthomas/kong"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CLI is the command line of idalon-stats.
type CLI struct {
	Globals

	Leaderboard LeaderboardCmd `cmd:"" help:"Print median and average times per leaderboard page."`
	Night       NightCmd       `cmd:"" help:"Print a single night."`
	Run         RunCmd         `cmd:"" help:"Print a single run."`
	Watch       WatchCmd       `cmd:"" help:"Export leaderboard statistics as Prometheus metrics."`
}

// Globals are the flags shared by all commands.
type Globals struct {
	Config   string `help:"Path to a YAML config file." short:"c" type:"path" env:"IDALON_CONFIG"`
	LogLevel string `help:"Override the configured log level (debug, info, warn, error, disabled)." name:"log-level"`
}

// app carries what every command needs.
type app struct {
	config    *config.Config
	transport pagination.Transport
	out       io.Writer
	logger    zerolog.Logger
	closers   []func() error
}

// newApp loads the configuration and builds the API transport.
func newApp(ctx context.Context, globals Globals, out io.Writer) (*app, error) {
	cfg, err := config.Load(globals.Config)
	if err != nil {
		return nil, err
	}
	switch globals.LogLevel {
	case "":
	case "debug", "info", "warn", "error", "disabled":
		cfg.Logging.Level = globals.LogLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", globals.LogLevel)
	}
	logging.Setup(cfg.Logging.Logger())

	a := &app{
		config: cfg,
		out:    out,
		logger: logging.NewLogger(logging.ComponentCLI),
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(cfg.Redis.Options())
		a.closers = append(a.closers, redisClient.Close)

		if err := redisClient.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
	}

	apiClient, err := client.New(cfg.Client.Transport(redisClient))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	a.closers = append(a.closers, apiClient.Close)
	a.transport = apiClient

	return a, nil
}

// Close releases the client and the Redis connection.
func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &CLI{}
	kctx := kong.Parse(cli,
		kong.Name("idalon-stats"),
		kong.Description("Statistics for the Idalon eidolon hunting leaderboards."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	a, err := newApp(ctx, cli.Globals, os.Stdout)
	kctx.FatalIfErrorf(err)

	err = kctx.Run(a)
	a.Close()
	kctx.FatalIfErrorf(err)
}
