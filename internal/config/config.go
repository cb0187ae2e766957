// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default endpoints and identity for the PAID public roster.
const (
	DefaultBaseURL   = "https://apps.mcso.us/PAID/"
	DefaultSearchURL = "https://apps.mcso.us/PAID/Home/SearchResults"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Watch      WatchConfig      `mapstructure:"watch"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Poll       PollConfig       `mapstructure:"poll"`
	Source     SourceConfig     `mapstructure:"source"`
	State      StateConfig      `mapstructure:"state"`
	Escalation EscalationConfig `mapstructure:"escalation"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// WatchConfig holds the watchlist.
type WatchConfig struct {
	// Names is a comma-separated list of "Surname" or "Surname Given" entries.
	Names string `mapstructure:"names"`
}

// NotifyConfig selects the notification sink.
type NotifyConfig struct {
	// WebhookURL is a Slack-compatible webhook; empty means log-only.
	WebhookURL string `mapstructure:"webhook_url"`
}

// PollConfig controls the cycle cadence.
type PollConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// SourceConfig describes the upstream roster endpoint.
type SourceConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	SearchURL      string `mapstructure:"search_url"`
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// InsecureTLS accepts the upstream's broken chain and legacy ciphers.
	InsecureTLS bool `mapstructure:"insecure_tls"`
}

// StateConfig selects and configures the seen-state provider.
type StateConfig struct {
	// Provider is "file" or "postgres".
	Provider string         `mapstructure:"provider"`
	File     string         `mapstructure:"file"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig controls the optional Postgres seen store.
type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// EscalationConfig controls error-report rate limiting.
type EscalationConfig struct {
	CooldownHours int `mapstructure:"cooldown_hours"`
}

// ServerConfig controls the ops HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAIDWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("watch.names", "")
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("poll.interval_minutes", 15)
	v.SetDefault("source.base_url", DefaultBaseURL)
	v.SetDefault("source.search_url", DefaultSearchURL)
	v.SetDefault("source.user_agent", DefaultUserAgent)
	v.SetDefault("source.timeout_seconds", 60)
	v.SetDefault("source.insecure_tls", true)
	v.SetDefault("state.provider", "file")
	v.SetDefault("state.file", "data/seen_bookings.json")
	v.SetDefault("state.postgres.table", "seen_fingerprints")
	v.SetDefault("escalation.cooldown_hours", 4)
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits. An empty
// watchlist is the one fatal misconfiguration: a watcher with nothing to
// watch is a bug, not a degraded mode.
func (c Config) Validate() error {
	if len(c.WatchNames()) == 0 {
		return fmt.Errorf("watch.names must list at least one name to watch")
	}
	if c.Poll.IntervalMinutes <= 0 {
		return fmt.Errorf("poll.interval_minutes must be > 0")
	}
	if c.Source.SearchURL == "" {
		return fmt.Errorf("source.search_url must be set")
	}
	if c.Source.TimeoutSeconds <= 0 {
		return fmt.Errorf("source.timeout_seconds must be > 0")
	}
	switch c.State.Provider {
	case "file":
		if c.State.File == "" {
			return fmt.Errorf("state.file must be set when state.provider is 'file'")
		}
	case "postgres":
		if c.State.Postgres.DSN == "" {
			return fmt.Errorf("state.postgres.dsn must be set when state.provider is 'postgres'")
		}
	default:
		return fmt.Errorf("unknown state provider: %s", c.State.Provider)
	}
	if c.Escalation.CooldownHours <= 0 {
		return fmt.Errorf("escalation.cooldown_hours must be > 0")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the ops server is enabled")
	}
	return nil
}

// WatchNames splits the configured comma-separated watchlist, dropping
// blanks.
func (c Config) WatchNames() []string {
	var names []string
	for _, part := range strings.Split(c.Watch.Names, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// PollInterval converts the poll cadence into a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalMinutes) * time.Minute
}

// SourceTimeout converts the fetch timeout into a duration.
func (c Config) SourceTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// EscalationCooldown converts the cooldown into a duration.
func (c Config) EscalationCooldown() time.Duration {
	return time.Duration(c.Escalation.CooldownHours) * time.Hour
}
