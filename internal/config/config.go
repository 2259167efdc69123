// Package config loads settings from flag defaults, an optional YAML file,
// PAIRS_ environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/peterkuimelis/pairs/internal/game"
	"github.com/peterkuimelis/pairs/internal/remote"
)

const (
	EnvPrefix   = "PAIRS_"
	DefaultFile = "pairs.yaml"
)

// Config holds all application configuration.
type Config struct {
	Pairs          int           `koanf:"pairs" validate:"gt=0"`
	AvailablePairs []int         `koanf:"available_pairs" validate:"min=1,dive,gt=0"`
	SymbolsFile    string        `koanf:"symbols_file"`
	SymbolSet      string        `koanf:"symbol_set"`
	MatchDelay     time.Duration `koanf:"match_delay" validate:"gt=0"`
	MismatchDelay  time.Duration `koanf:"mismatch_delay" validate:"gtfield=MatchDelay"`
	Seed           int64         `koanf:"seed"`
	LogLevel       string        `koanf:"log_level" validate:"oneof=debug info warn error"`
	Port           int           `koanf:"port" validate:"gt=0,lt=65536"`
	Remote         RemoteConfig  `koanf:"remote"`
}

// RemoteConfig configures the Parse landmark source.
type RemoteConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url" validate:"omitempty,url"`
	AppID   string        `koanf:"app_id" validate:"required_if=Enabled true"`
	APIKey  string        `koanf:"api_key" validate:"required_if=Enabled true"`
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
}

var validate = validator.New()

// RegisterFlags adds every setting to flags with its default. defaultPort
// lets each binary pick its own listening port.
func RegisterFlags(flags *pflag.FlagSet, defaultPort int) {
	flags.String("config", DefaultFile, "path to YAML config file")
	flags.Int("pairs", game.DefaultPairs, "number of pairs to deal")
	flags.IntSlice("available_pairs", game.AvailablePairs, "pair counts offered to the player")
	flags.String("symbols_file", "", "path to symbol sets YAML file (empty for built-in)")
	flags.String("symbol_set", "", "symbol set name (empty for first set)")
	flags.Duration("match_delay", game.DefaultMatchDelay, "delay before a matching pair resolves")
	flags.Duration("mismatch_delay", game.DefaultMismatchDelay, "delay before a mismatched pair turns back")
	flags.Int64("seed", 0, "RNG seed (0 for random)")
	flags.String("log_level", "info", "log level: debug, info, warn, error")
	flags.Int("port", defaultPort, "TCP port to listen on")
	flags.Bool("remote.enabled", false, "fetch landmark images from the Parse backend")
	flags.String("remote.url", remote.DefaultBaseURL, "Parse server base URL")
	flags.String("remote.app_id", "", "Parse application ID")
	flags.String("remote.api_key", "", "Parse REST API key")
	flags.Duration("remote.timeout", remote.DefaultTimeout, "remote fetch timeout")
}

// Load builds a Config from a parsed flag set. The YAML file named by
// --config is optional unless the flag was set explicitly.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	path, _ := flags.GetString("config")
	explicit := flags.Changed("config")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	// Flags last: changed flags override everything, unchanged flags only
	// fill keys that are still missing.
	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envKey maps PAIRS_REMOTE__APP_ID to remote.app_id.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Symbols resolves the configured fallback symbol set.
func (c *Config) Symbols() ([]string, error) {
	return game.SymbolSetByName(c.SymbolsFile, c.SymbolSet)
}

// FetchRemote fetches landmark content once when the remote source is
// enabled. It returns nil when disabled or on any failure.
func (c *Config) FetchRemote(ctx context.Context, logger *slog.Logger) []game.RemoteItem {
	if !c.Remote.Enabled {
		return nil
	}
	client := remote.NewClient(c.Remote.AppID, c.Remote.APIKey, logger)
	if c.Remote.URL != "" {
		client.BaseURL = c.Remote.URL
	}
	if c.Remote.Timeout > 0 {
		client.HTTPClient.Timeout = c.Remote.Timeout
	}
	return client.FetchLandmarks(ctx)
}

// LoadRemote fetches landmark content in the background and hands it to
// feed, which re-deals the engines already playing. It returns at once and
// does nothing when the remote source is disabled.
func (c *Config) LoadRemote(ctx context.Context, logger *slog.Logger, feed *game.RemoteFeed) {
	if !c.Remote.Enabled {
		return
	}
	go func() {
		feed.Set(c.FetchRemote(ctx, logger))
	}()
}

// EngineConfig returns the engine settings for one game session.
func (c *Config) EngineConfig(symbols []string, items []game.RemoteItem) game.EngineConfig {
	return game.EngineConfig{
		Pairs:         c.Pairs,
		Remote:        items,
		Symbols:       symbols,
		MatchDelay:    c.MatchDelay,
		MismatchDelay: c.MismatchDelay,
		Seed:          c.Seed,
	}
}

// NewLogger creates the process logger at the configured level and installs
// it as the slog default.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
