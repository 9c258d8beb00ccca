// Package commands implements the CLI commands for auctionwatch.
package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	clifetcher "github.com/jmylchreest/auctionwatch/cmd/auctionwatch/fetcher"
	"github.com/jmylchreest/auctionwatch/internal/config"
	"github.com/jmylchreest/auctionwatch/internal/logger"
	"github.com/jmylchreest/auctionwatch/pkg/fetcher"
)

var rootCmd = &cobra.Command{
	Use:   "auctionwatch",
	Short: "Watch county auction pages for newly announced sale dates",
	Long: `Auctionwatch polls a sheet of county auction pages, pulls anything that
looks like an auction date out of each page, and records the dates that are
new and still in the future back into the sheet.

Examples:
  # Watch the sources in auctions.csv, polling every 10 minutes
  auctionwatch watch --store auctions.csv

  # Use a SQLite table and a static fetcher
  auctionwatch watch --store-driver sqlite --store auctions.db --fetch-mode static

  # See what would be extracted from one page
  auctionwatch extract -u "https://example.com/sheriff-sales"`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			Level: viper.GetString("log_level"),
			JSON:  viper.GetBool("log_json"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.String("config", "", "config file (default $HOME/.auctionwatch.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "log as JSON")

	// Store and fetch settings shared by every command
	flags.String("store", "auctions.csv", "record store path")
	flags.String("store-driver", "csv", "record store driver: csv, sqlite")
	flags.String("store-table", "auctions", "table name for SQL stores")
	flags.String("fetch-mode", "dynamic", "fetch mode: static, dynamic, auto")
	flags.Duration("timeout", 60*time.Second, "per-page fetch timeout")
	flags.Duration("settle", 4*time.Second, "extra wait after a page loads (dynamic mode)")
	flags.Bool("headless", true, "run the browser headless (dynamic mode)")
	flags.String("user-agent", "", "override the fetch user agent")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("store.path", flags.Lookup("store"))
	_ = viper.BindPFlag("store.driver", flags.Lookup("store-driver"))
	_ = viper.BindPFlag("store.table", flags.Lookup("store-table"))
	_ = viper.BindPFlag("fetch.mode", flags.Lookup("fetch-mode"))
	_ = viper.BindPFlag("fetch.timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("fetch.settle", flags.Lookup("settle"))
	_ = viper.BindPFlag("fetch.headless", flags.Lookup("headless"))
	_ = viper.BindPFlag("fetch.user_agent", flags.Lookup("user-agent"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".auctionwatch")
		viper.SetConfigType("yaml")
	}

	// AUCTIONWATCH_FETCH_MODE and friends
	viper.SetEnvPrefix("AUCTIONWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the typed configuration from the global viper instance.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = fetcher.DefaultUserAgent
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config file loaded", "path", used)
	}
	return cfg, nil
}

// newFetcher builds the configured fetcher with per-host pacing.
func newFetcher(cfg config.Config) (fetcher.Fetcher, error) {
	f, err := clifetcher.New(cfg.Fetch.FetchMode(), clifetcher.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.Fetch.Timeout,
		Headless:  cfg.Fetch.Headless,
		Settle:    cfg.Fetch.Settle,
	}, fetcher.NewHostLimiter(cfg.Fetch.Rate, cfg.Fetch.Burst))
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}
	return f, nil
}

// fetchOptions are the per-request options derived from cfg.
func fetchOptions(cfg config.Config) fetcher.Options {
	return fetcher.Options{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout,
		WaitDuration: cfg.Fetch.Settle,
	}
}
