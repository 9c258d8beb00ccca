package output

import (
	"bufio"
	"fmt"
	"io"
)

// TextWriter writes one line per item under an optional header. Items that
// implement Liner use their own rendering.
type TextWriter struct {
	w      *bufio.Writer
	header string
	empty  string
	items  []any
}

// NewTextWriter creates a text writer.
func NewTextWriter(w io.Writer, header, empty string) *TextWriter {
	return &TextWriter{
		w:      bufio.NewWriter(w),
		header: header,
		empty:  empty,
	}
}

// Write buffers a single item.
func (w *TextWriter) Write(data any) error {
	w.items = append(w.items, data)
	return nil
}

// WriteAll buffers multiple items.
func (w *TextWriter) WriteAll(data []any) error {
	w.items = append(w.items, data...)
	return nil
}

// Flush writes the buffered items.
func (w *TextWriter) Flush() error {
	if len(w.items) == 0 {
		if w.empty != "" {
			if _, err := fmt.Fprintln(w.w, w.empty); err != nil {
				return err
			}
		}
		return w.w.Flush()
	}

	if w.header != "" {
		if _, err := fmt.Fprintln(w.w, w.header); err != nil {
			return err
		}
	}
	for _, item := range w.items {
		line := fmt.Sprint(item)
		if l, ok := item.(Liner); ok {
			line = l.Line()
		}
		if _, err := fmt.Fprintln(w.w, line); err != nil {
			return err
		}
	}
	w.items = w.items[:0]
	return w.w.Flush()
}

// Close flushes the writer.
func (w *TextWriter) Close() error {
	return w.Flush()
}
