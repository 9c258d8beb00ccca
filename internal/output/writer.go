// Package output writes end-of-run reports and diagnostic listings in the
// formats the CLI supports.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/auctionwatch/internal/auction"
)

// Format represents output format types.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat converts a config string into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single item.
	Write(data any) error

	// WriteAll outputs multiple items.
	WriteAll(data []any) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// Liner is implemented by items with a one-line text rendering.
type Liner interface {
	Line() string
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
	header string
	empty  string
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// WithHeader sets the line printed before items in text output.
func WithHeader(header string) WriterOption {
	return func(c *writerConfig) {
		c.header = header
	}
}

// WithEmptyMessage sets the line printed by text output when there are no items.
func WithEmptyMessage(msg string) WriterOption {
	return func(c *writerConfig) {
		c.empty = msg
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatText:
		return NewTextWriter(w, cfg.header, cfg.empty), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Report header lines for the final listing.
const (
	ReportHeader = "New upcoming auctions found:"
	ReportEmpty  = "No new upcoming auctions found."
)

// WriteReport writes the records found during a watch.
func WriteReport(w io.Writer, format Format, records []auction.Record) error {
	out, err := NewWriter(w, format, WithHeader(ReportHeader), WithEmptyMessage(ReportEmpty))
	if err != nil {
		return err
	}

	items := make([]any, len(records))
	for i, r := range records {
		items[i] = r
	}
	if err := out.WriteAll(items); err != nil {
		return err
	}
	return out.Close()
}
