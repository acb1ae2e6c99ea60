package ircd

import (
	"strconv"
	"time"

	"github.com/horgh/config"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds a server's configuration: the listen address, idle-reap
// timing, and the bot authentication secret.
//
// It is built in two layers: LoadFile parses a flat key=value file into
// typed fields with defaults for anything missing, then OverlayEnv applies
// environment variables on top so a deployment can override the file
// without editing it.
type Config struct {
	Host string `envconfig:"HOST"`
	Port int    `envconfig:"PORT"`

	// IdleLimit is how long a session may go without activity before the
	// reaper disconnects it.
	IdleLimit time.Duration `envconfig:"IDLE_LIMIT_SECONDS"`

	// CheckInterval is how often the reaper scans for idle sessions.
	CheckInterval time.Duration `envconfig:"CHECK_INTERVAL_SECONDS"`

	// BotSecret is the shared secret BOT_AUTH must match. If blank, BOT_AUTH
	// always fails.
	BotSecret string `envconfig:"BOT_SECRET"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() Config {
	return Config{
		Host:          "::1",
		Port:          6667,
		IdleLimit:     60 * time.Second,
		CheckInterval: 10 * time.Second,
	}
}

// LoadFile reads a flat key=value configuration file and overlays its
// values on top of the defaults. Every key is optional; a missing key
// keeps the default.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if len(path) == 0 {
		return cfg, nil
	}

	raw, err := config.ReadStringMap(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to read config file %s", path)
	}

	if v, ok := raw["host"]; ok && len(v) > 0 {
		cfg.Host = v
	}

	if v, ok := raw["port"]; ok && len(v) > 0 {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "port is not a valid integer")
		}
		cfg.Port = port
	}

	if v, ok := raw["idle_limit_seconds"]; ok && len(v) > 0 {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "idle_limit_seconds is not a valid integer")
		}
		cfg.IdleLimit = time.Duration(secs) * time.Second
	}

	if v, ok := raw["check_interval_seconds"]; ok && len(v) > 0 {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "check_interval_seconds is not a valid integer")
		}
		cfg.CheckInterval = time.Duration(secs) * time.Second
	}

	if v, ok := raw["bot_secret"]; ok {
		cfg.BotSecret = v
	}

	return cfg, nil
}

// OverlayEnv overlays environment variables (prefixed CHATD_) on top of cfg,
// letting a deployment override the config file without editing it. The
// environment is read into a zero-valued shadow and only non-zero values are
// merged, so a variable left unset keeps cfg's existing value. The two
// timing variables are whole seconds, as in the config file.
func OverlayEnv(cfg Config) (Config, error) {
	var overrides struct {
		Host          string `envconfig:"HOST"`
		Port          int    `envconfig:"PORT"`
		IdleLimit     int    `envconfig:"IDLE_LIMIT_SECONDS"`
		CheckInterval int    `envconfig:"CHECK_INTERVAL_SECONDS"`
		BotSecret     string `envconfig:"BOT_SECRET"`
	}
	if err := envconfig.Process("chatd", &overrides); err != nil {
		return Config{}, errors.Wrap(err, "unable to process environment configuration")
	}

	if len(overrides.Host) > 0 {
		cfg.Host = overrides.Host
	}
	if overrides.Port != 0 {
		cfg.Port = overrides.Port
	}
	if overrides.IdleLimit != 0 {
		cfg.IdleLimit = time.Duration(overrides.IdleLimit) * time.Second
	}
	if overrides.CheckInterval != 0 {
		cfg.CheckInterval = time.Duration(overrides.CheckInterval) * time.Second
	}
	if len(overrides.BotSecret) > 0 {
		cfg.BotSecret = overrides.BotSecret
	}

	return cfg, nil
}
