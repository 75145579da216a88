package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func jsonLogger(t *testing.T) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return l, path
}

func readEntry(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(b, &entry); err != nil {
		t.Fatalf("decode log line %q: %v", b, err)
	}
	return entry
}

func TestFieldConstructors(t *testing.T) {
	l, path := jsonLogger(t)
	l.Info("started",
		Any("panic", "boom"),
		Uint64("seed", 42),
		Bool("queue", true),
		Strings("symbols", []string{"AAPL", "MSFT"}),
	)

	entry := readEntry(t, path)
	if entry["message"] != "started" {
		t.Fatalf("expected message, got %v", entry)
	}
	if entry["panic"] != "boom" {
		t.Fatalf("expected any field, got %v", entry["panic"])
	}
	if entry["seed"] != float64(42) {
		t.Fatalf("expected seed 42, got %v", entry["seed"])
	}
	if entry["queue"] != true {
		t.Fatalf("expected bool field, got %v", entry["queue"])
	}
	if entry["symbols"] != "AAPL, MSFT" {
		t.Fatalf("expected joined symbols, got %v", entry["symbols"])
	}
}

func TestWithCarriesFields(t *testing.T) {
	l, path := jsonLogger(t)
	l.With(String("component", "scheduler")).Warn("late")

	entry := readEntry(t, path)
	if entry["component"] != "scheduler" || entry["level"] != "warn" {
		t.Fatalf("expected component on warn entry, got %v", entry)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}
