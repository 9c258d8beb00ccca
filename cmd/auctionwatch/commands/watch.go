package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/auctionwatch/internal/auction"
	"github.com/jmylchreest/auctionwatch/internal/dedup"
	"github.com/jmylchreest/auctionwatch/internal/logger"
	"github.com/jmylchreest/auctionwatch/internal/output"
	"github.com/jmylchreest/auctionwatch/internal/store"
	"github.com/jmylchreest/auctionwatch/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll every source and record new upcoming auctions",
	Long: `Watch crawls every source in the record store, records auction dates that
are new and in the future, waits for the poll interval and repeats.

Type "stop" and press Enter (or press Ctrl-C) to finish. The page being
fetched is completed first, then every new auction found during the run
is printed.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	flags := watchCmd.Flags()
	flags.Duration("interval", 10*time.Minute, "wait between crawl cycles")
	flags.Float64("rate", 1, "max requests per second to one host (0=unlimited)")
	flags.Int("burst", 1, "requests allowed in a burst to one host")
	flags.String("max-page-size", "5MB", "max page text scanned per source (e.g., 500KB, 0=unlimited)")
	flags.String("format", "text", "final report format: text, json, jsonl, yaml")
	flags.StringP("output", "o", "", "final report file (default: stdout)")

	_ = viper.BindPFlag("poll.interval", flags.Lookup("interval"))
	_ = viper.BindPFlag("fetch.rate", flags.Lookup("rate"))
	_ = viper.BindPFlag("fetch.burst", flags.Lookup("burst"))
	_ = viper.BindPFlag("fetch.max_page_size", flags.Lookup("max-page-size"))
	_ = viper.BindPFlag("output.format", flags.Lookup("format"))
	_ = viper.BindPFlag("output.path", flags.Lookup("output"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	maxText, err := cfg.Fetch.MaxPageBytes()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path, cfg.Store.Table)
	if err != nil {
		logger.Error("failed to open record store", "error", err)
		return err
	}
	defer st.Close()

	snap, err := st.Load(ctx)
	if err != nil {
		logger.Error("failed to load record store", "path", cfg.Store.Path, "error", err)
		return err
	}

	f, err := newFetcher(cfg)
	if err != nil {
		logger.Error("failed to create fetcher", "error", err)
		return err
	}
	defer f.Close()

	tracker := dedup.NewTracker(snap.Known...)
	loop := watcher.New(snap.Sources, f, tracker, st,
		watcher.WithInterval(cfg.Poll.Interval),
		watcher.WithFetchOptions(fetchOptions(cfg)),
		watcher.WithMaxTextSize(maxText),
	)

	logger.Info("watching auction sources",
		"sources", len(snap.Sources),
		"known_dates", tracker.Len(),
		"store", cfg.Store.Path,
		"fetch_mode", f.Type(),
		"interval", cfg.Poll.Interval,
		"max_page_size", humanizeLimit(maxText))
	logger.Info(`type "stop" and press Enter to finish`)

	tok := watcher.NewToken()

	// The console reader blocks on stdin and cannot be interrupted, so it
	// is not part of the group.
	go func() {
		if err := watcher.ListenForStop(cmd.InOrStdin(), tok); err != nil {
			logger.Debug("console listener ended", "error", err)
		}
	}()

	var g errgroup.Group
	g.Go(func() error {
		select {
		case <-ctx.Done():
			logger.Info("interrupt received, finishing current source")
			tok.Stop()
			// A second interrupt kills the process.
			cancel()
		case <-tok.Done():
		}
		return nil
	})
	g.Go(func() error {
		defer tok.Stop()
		// The loop stops through the token so a fetch in flight completes.
		records := loop.Run(context.Background(), tok)
		return writeReport(cmd.OutOrStdout(), cfg.Output.Path, format, records)
	})
	return g.Wait()
}

// writeReport prints the final listing to path, or to stdout when empty.
func writeReport(stdout io.Writer, path string, format output.Format, records []auction.Record) error {
	w := stdout
	if path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer file.Close()
		w = file
	}

	if err := output.WriteReport(w, format, records); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if path != "" {
		logger.Info("report written", "path", path, "records", len(records))
	}
	return nil
}

func humanizeLimit(n uint64) string {
	if n == 0 {
		return "unlimited"
	}
	return humanize.Bytes(n)
}
