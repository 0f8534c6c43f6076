package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. IDALON_CLIENT_RATE_LIMIT.
const EnvPrefix = "IDALON"

var validate = validator.New()

// Load reads the configuration. path may be empty, in which case only defaults and
// environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client.user_agent", "idalon-stats/1.0 (+https://github.com/Sternrassler/idalon-client)")
	v.SetDefault("client.timeout", "30s")
	v.SetDefault("client.rate_limit", 5.0)
	v.SetDefault("client.burst", 5)
	v.SetDefault("client.throttle_delay", "1s")
	v.SetDefault("client.breaker_failures", 5)
	v.SetDefault("client.breaker_timeout", "30s")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)

	v.SetDefault("watch.addr", ":9090")
	v.SetDefault("watch.interval", "5m")
	v.SetDefault("watch.resources", []string{"nights", "runs"})
}
