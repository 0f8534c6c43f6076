// Package config loads the idalon-stats configuration from an optional YAML file and
// IDALON_* environment variables.
package config

import (
	"time"

	"github.com/Sternrassler/idalon-client/pkg/client"
	"github.com/Sternrassler/idalon-client/pkg/logging"
	"github.com/redis/go-redis/v9"
)

// Config is the complete configuration of the CLI.
type Config struct {
	Client  ClientConfig  `mapstructure:"client"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Logging LoggingConfig `mapstructure:"logging"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// ClientConfig configures the API transport.
type ClientConfig struct {
	UserAgent       string        `mapstructure:"user_agent" validate:"required"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RateLimit       float64       `mapstructure:"rate_limit" validate:"gte=0"`
	Burst           int           `mapstructure:"burst" validate:"gte=0"`
	ThrottleDelay   time.Duration `mapstructure:"throttle_delay" validate:"gte=0"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout" validate:"gte=0"`
}

// RedisConfig configures the optional shared rate limit store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0,lte=15"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error disabled"`
	Pretty bool   `mapstructure:"pretty"`
}

// WatchConfig configures the metrics-exporting watch mode.
type WatchConfig struct {
	Addr      string        `mapstructure:"addr" validate:"required,hostname_port"`
	Interval  time.Duration `mapstructure:"interval" validate:"gte=1s"`
	Resources []string      `mapstructure:"resources" validate:"min=1,dive,oneof=nights runs"`
}

// Transport returns the client configuration, using redisClient for shared rate limit state.
func (c ClientConfig) Transport(redisClient *redis.Client) client.Config {
	return client.Config{
		UserAgent:       c.UserAgent,
		Timeout:         c.Timeout,
		RateLimit:       c.RateLimit,
		Burst:           c.Burst,
		Redis:           redisClient,
		ThrottleDelay:   c.ThrottleDelay,
		BreakerFailures: c.BreakerFailures,
		BreakerTimeout:  c.BreakerTimeout,
	}
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Options returns the go-redis options.
func (r RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:     r.Addr,
		Password: r.Password,
		DB:       r.DB,
	}
}

// Logger returns the logging configuration.
func (l LoggingConfig) Logger() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(l.Level)
	cfg.Pretty = l.Pretty
	return cfg
}
