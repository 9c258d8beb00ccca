package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/auctionwatch/internal/extract"
	"github.com/jmylchreest/auctionwatch/internal/logger"
	"github.com/jmylchreest/auctionwatch/internal/output"
	"github.com/jmylchreest/auctionwatch/internal/watcher"
	"github.com/jmylchreest/auctionwatch/pkg/fetcher"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Show the auction dates found on one page",
	Long: `Extract fetches a single page (or reads a local file) and lists every
date-like candidate with the decision the watcher would take for it.
Nothing is written to the record store.

Examples:
  auctionwatch extract -u "https://example.com/sheriff-sales"
  auctionwatch extract -f saved-page.html --now 2025-01-01
  auctionwatch extract -f notes.txt --format json`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.StringP("url", "u", "", "page URL to fetch")
	flags.StringP("file", "f", "", "local HTML or text file to read")
	flags.String("now", "", "evaluate futurity as of this day (YYYY-MM-DD)")
	flags.String("format", "text", "output format: text, json, jsonl, yaml")
	extractCmd.MarkFlagsOneRequired("url", "file")
	extractCmd.MarkFlagsMutuallyExclusive("url", "file")
}

func runExtract(cmd *cobra.Command, args []string) error {
	targetURL, _ := cmd.Flags().GetString("url")
	path, _ := cmd.Flags().GetString("file")
	nowStr, _ := cmd.Flags().GetString("now")
	formatStr, _ := cmd.Flags().GetString("format")

	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	now := time.Now()
	if nowStr != "" {
		now, err = time.ParseInLocation("2006-01-02", nowStr, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	var text string
	if path != "" {
		text, err = readTextFile(path)
	} else {
		text, err = fetchText(cmd.Context(), targetURL)
	}
	if err != nil {
		logger.Error("failed to read page", "error", err)
		return err
	}

	verdicts := watcher.Inspect(extract.New(), text, now, nil)
	logger.Debug("extraction complete", "candidates", len(verdicts))

	out, err := output.NewWriter(cmd.OutOrStdout(), format,
		output.WithHeader(fmt.Sprintf("%-32s %-10s %-12s %s", "CANDIDATE", "KIND", "DATE", "STATUS")),
		output.WithEmptyMessage("No date candidates found."))
	if err != nil {
		return err
	}
	items := make([]any, len(verdicts))
	for i, v := range verdicts {
		items[i] = v
	}
	if err := out.WriteAll(items); err != nil {
		return err
	}
	return out.Close()
}

// readTextFile reads a local file, rendering it to text when it is HTML.
func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	content := string(data)
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" || strings.HasPrefix(strings.TrimSpace(content), "<") {
		return fetcher.TextFromHTML(content)
	}
	return content, nil
}

// fetchText fetches one page with the configured fetcher.
func fetchText(ctx context.Context, targetURL string) (string, error) {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}

	f, err := newFetcher(cfg)
	if err != nil {
		return "", err
	}
	defer f.Close()

	logger.Info("fetching", "url", targetURL, "fetch_mode", f.Type())
	content, err := f.Fetch(ctx, targetURL, fetchOptions(cfg))
	if err != nil {
		return "", err
	}
	return content.Text, nil
}
