package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/auctionwatch/internal/auction"
)

// Test data structure
type testItem struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type linedItem struct{ s string }

func (l linedItem) Line() string { return "line: " + l.s }

var kent = auction.Source{Row: 0, County: "Kent", State: "DE", URL: "https://kent.example.com"}

// --- NewWriter Factory Tests ---

func TestNewWriter_Types(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "*output.TextWriter"},
		{FormatJSON, "*output.JSONWriter"},
		{FormatJSONL, "*output.JSONLWriter"},
		{FormatYAML, "*output.YAMLWriter"},
	}

	for _, tt := range tests {
		w, err := NewWriter(&bytes.Buffer{}, tt.format)
		if err != nil {
			t.Fatalf("NewWriter(%s) error = %v", tt.format, err)
		}
		if got := fmt.Sprintf("%T", w); got != tt.want {
			t.Errorf("NewWriter(%s) = %s, want %s", tt.format, got, tt.want)
		}
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("xml"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error containing 'unsupported', got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"TEXT": FormatText, " json ": FormatJSON, "": FormatText, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("expected error for csv")
	}
}

// --- TextWriter Tests ---

func TestTextWriter_HeaderAndLiner(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf, "Found:", "nothing")

	_ = w.Write(linedItem{"a"})
	_ = w.Write("plain")
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := "Found:\nline: a\nplain\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestTextWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf, "Found:", "nothing")
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if buf.String() != "nothing\n" {
		t.Errorf("output = %q, want empty message", buf.String())
	}
}

func TestTextWriter_FlushTwiceDoesNotRepeat(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf, "", "")
	_ = w.Write("once")
	_ = w.Flush()
	_ = w.Flush()
	if buf.String() != "once\n" {
		t.Errorf("output = %q", buf.String())
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_SingleItemIsStillArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")

	if err := w.Write(testItem{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result []testItem
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse output as array: %v", err)
	}
	if len(result) != 1 || result[0].Value != 42 {
		t.Errorf("result = %+v", result)
	}
}

func TestJSONWriter_Compact(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")
	_ = w.WriteAll([]any{testItem{"a", 1}, testItem{"b", 2}})
	_ = w.Flush()

	want := `[{"name":"a","value":1},{"name":"b","value":2}]` + "\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestJSONWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")
	_ = w.Close()
	if buf.String() != "[]\n" {
		t.Errorf("output = %q, want empty array", buf.String())
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_SeparateLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)
	_ = w.WriteAll([]any{testItem{"a", 1}, testItem{"b", 2}})
	_ = w.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var item testItem
	if err := json.Unmarshal([]byte(lines[1]), &item); err != nil || item.Name != "b" {
		t.Errorf("line 2 = %q, %v", lines[1], err)
	}
}

func TestJSONLWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)
	_ = w.Close()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_Sequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)
	_ = w.Write(testItem{"a", 1})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []testItem
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse YAML: %v", err)
	}
	if len(result) != 1 || result[0].Name != "a" {
		t.Errorf("result = %+v", result)
	}
}

// --- WriteReport Tests ---

func TestWriteReport_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	records := []auction.Record{
		{Source: kent, Date: "June 6, 2099"},
		{Source: kent, Date: "13h 37m"},
	}
	if err := WriteReport(buf, FormatText, records); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	want := ReportHeader + "\n" + records[0].Line() + "\n" + records[1].Line() + "\n"
	if buf.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteReport_TextEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteReport(buf, FormatText, nil); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if buf.String() != ReportEmpty+"\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestWriteReport_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	records := []auction.Record{{Source: kent, Date: "June 6, 2099"}}
	if err := WriteReport(buf, FormatJSON, records); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	var got []auction.Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse report: %v", err)
	}
	if len(got) != 1 || got[0] != records[0] {
		t.Errorf("report = %+v, want %+v", got, records)
	}
}

func TestWriteReport_UnsupportedFormat(t *testing.T) {
	if err := WriteReport(&bytes.Buffer{}, Format("xml"), nil); err == nil {
		t.Fatal("expected error")
	}
}
