package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Driver != "csv" || cfg.Store.Path != "auctions.csv" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Fetch.Mode != "dynamic" {
		t.Errorf("Fetch.Mode = %q, want dynamic", cfg.Fetch.Mode)
	}
	if cfg.Fetch.Timeout != 60*time.Second {
		t.Errorf("Fetch.Timeout = %v, want 60s", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.Settle != 4*time.Second {
		t.Errorf("Fetch.Settle = %v, want 4s", cfg.Fetch.Settle)
	}
	if !cfg.Fetch.Headless {
		t.Error("expected headless by default")
	}
	if cfg.Poll.Interval != 10*time.Minute {
		t.Errorf("Poll.Interval = %v, want 10m", cfg.Poll.Interval)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %q, want text", cfg.Output.Format)
	}

	n, err := cfg.Fetch.MaxPageBytes()
	if err != nil || n != 5_000_000 {
		t.Errorf("MaxPageBytes() = %d, %v, want 5000000", n, err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".auctionwatch.yaml")
	content := `
store:
  driver: SQLite
  path: watch.db
fetch:
  mode: static
  timeout: 15s
  max_page_size: 512KiB
poll:
  interval: 30s
output:
  format: yaml
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Driver != "sqlite" || cfg.Store.Table != "auctions" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Fetch.FetchMode() != "static" {
		t.Errorf("Fetch.Mode = %q", cfg.Fetch.Mode)
	}
	if cfg.Fetch.Timeout != 15*time.Second || cfg.Poll.Interval != 30*time.Second {
		t.Errorf("durations = %v / %v", cfg.Fetch.Timeout, cfg.Poll.Interval)
	}
	if n, _ := cfg.Fetch.MaxPageBytes(); n != 512*1024 {
		t.Errorf("MaxPageBytes() = %d, want %d", n, 512*1024)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
		want  string
	}{
		{"fetch.mode", "stealth", "fetch.mode"},
		{"store.driver", "xlsx", "store.driver"},
		{"output.format", "xml", "output.format"},
		{"poll.interval", "0s", "poll.interval"},
		{"fetch.burst", 0, "fetch.burst"},
		{"fetch.max_page_size", "lots", "max_page_size"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			if err == nil {
				t.Fatalf("expected error for %s=%v", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestMaxPageBytes_Unlimited(t *testing.T) {
	for _, s := range []string{"", "0", "  "} {
		n, err := FetchConfig{MaxPageSize: s}.MaxPageBytes()
		if err != nil || n != 0 {
			t.Errorf("MaxPageBytes(%q) = %d, %v, want 0", s, n, err)
		}
	}
}
