package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// resetLogger resets the logger to default state for test isolation
func resetLogger() {
	Init(Options{})
}

// --- Init Tests ---

func TestInit_DefaultLevel_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	Info("visiting source")
	if !strings.Contains(buf.String(), "visiting source") {
		t.Error("Info message should be logged at default level")
	}

	buf.Reset()

	Debug("candidate dropped")
	if strings.Contains(buf.String(), "candidate dropped") {
		t.Error("Debug message should not be logged at default level")
	}
}

func TestInit_DebugLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Output: buf})
	defer resetLogger()

	Debug("candidate dropped")
	if !strings.Contains(buf.String(), "candidate dropped") {
		t.Error("Debug message should be logged when Debug=true")
	}
}

func TestInit_QuietOverridesDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Quiet: true, Output: buf})
	defer resetLogger()

	Debug("debug message")
	Warn("warn message")
	Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "warn message") {
		t.Errorf("only errors should be logged when Quiet=true, got %q", output)
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error should be logged when Quiet=true")
	}
}

func TestInit_ExplicitLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Level: "warn", Debug: true, Output: buf})
	defer resetLogger()

	Info("info message")
	Warn("warn message")

	output := buf.String()
	if strings.Contains(output, "info message") {
		t.Error("Info should not be logged at warn level")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("Warn should be logged at warn level")
	}
}

func TestInit_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Output: buf})
	defer resetLogger()

	Info("new upcoming auction", "county", "Kent")

	output := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("JSON format should produce JSON output, got %q", output)
	}
	if !strings.Contains(output, `"county":"Kent"`) {
		t.Errorf("expected county attribute in JSON output, got %q", output)
	}
}

func TestInit_CustomLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	custom := slog.New(slog.NewTextHandler(buf, nil))
	Init(Options{Logger: custom})
	defer resetLogger()

	if Logger() != custom {
		t.Error("Logger() should return the custom logger")
	}
}

// --- ParseLevel Tests ---

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// --- With / Context Tests ---

func TestWith_ReturnsLoggerWithAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	With("cycle", "abc").Info("cycle complete")

	output := buf.String()
	if !strings.Contains(output, "cycle complete") || !strings.Contains(output, "cycle=abc") {
		t.Errorf("expected message and attribute in output, got %q", output)
	}
}

func TestWarnContext(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	WarnContext(context.Background(), "store locked")

	if !strings.Contains(buf.String(), "store locked") {
		t.Error("WarnContext should log message")
	}
}
