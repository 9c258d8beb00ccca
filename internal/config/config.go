// Package config holds the typed configuration for the auctionwatch CLI.
// Values come from viper (config file, AUCTIONWATCH_* environment and
// bound flags) and are checked with struct tags before use.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/auctionwatch/pkg/fetcher"
)

// Config is the full set of settings.
type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Poll   PollConfig   `mapstructure:"poll"`
	Output OutputConfig `mapstructure:"output"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=csv sqlite"`
	Path   string `mapstructure:"path" validate:"required"`
	Table  string `mapstructure:"table" validate:"required_if=Driver sqlite"`
}

// FetchConfig controls how pages are fetched.
type FetchConfig struct {
	Mode        string        `mapstructure:"mode" validate:"oneof=static dynamic auto"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Settle      time.Duration `mapstructure:"settle" validate:"gte=0"`
	UserAgent   string        `mapstructure:"user_agent"`
	Headless    bool          `mapstructure:"headless"`
	Rate        float64       `mapstructure:"rate" validate:"gte=0"`
	Burst       int           `mapstructure:"burst" validate:"gte=1"`
	MaxPageSize string        `mapstructure:"max_page_size"`
}

// PollConfig controls the wait between crawl cycles.
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

// OutputConfig controls the final report.
type OutputConfig struct {
	Format string `mapstructure:"format" validate:"oneof=text json jsonl yaml"`
	Path   string `mapstructure:"path"`
}

// Defaults for every key.
var defaults = map[string]any{
	"store.driver":        "csv",
	"store.path":          "auctions.csv",
	"store.table":         "auctions",
	"fetch.mode":          string(fetcher.ModeDynamic),
	"fetch.timeout":       60 * time.Second,
	"fetch.settle":        4 * time.Second,
	"fetch.user_agent":    fetcher.DefaultUserAgent,
	"fetch.headless":      true,
	"fetch.rate":          1.0,
	"fetch.burst":         1,
	"fetch.max_page_size": "5MB",
	"poll.interval":       10 * time.Minute,
	"output.format":       "text",
	"output.path":         "",
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags and the values tags cannot express.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fieldPath(fe), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Fetch.MaxPageBytes(); err != nil {
		return fmt.Errorf("invalid config: fetch.max_page_size: %w", err)
	}
	return nil
}

// MaxPageBytes parses MaxPageSize (e.g. "5MB"). Empty or "0" means no limit.
func (f FetchConfig) MaxPageBytes() (uint64, error) {
	s := strings.TrimSpace(f.MaxPageSize)
	if s == "" || s == "0" {
		return 0, nil
	}
	return humanize.ParseBytes(s)
}

// FetchMode returns the fetch mode. Validation has already restricted Mode
// to a known value.
func (f FetchConfig) FetchMode() fetcher.Mode {
	return fetcher.Mode(f.Mode)
}

func (c *Config) normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Fetch.Mode = strings.ToLower(strings.TrimSpace(c.Fetch.Mode))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
}

// fieldPath turns "Config.Fetch.Mode" into "fetch.mode".
func fieldPath(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.Namespace(), "Config.")
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
