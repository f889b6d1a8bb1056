package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDailyFileRotatesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "app-2025-01-01.log")
	if err := os.WriteFile(stale, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("seed stale log: %v", err)
	}
	unrelated := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(unrelated, []byte("keep"), 0o644); err != nil {
		t.Fatalf("seed unrelated file: %v", err)
	}

	now := time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC)
	f, err := openDailyFile(dir, 3, func() time.Time { return now })
	if err != nil {
		t.Fatalf("open daily file: %v", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := f.Write([]byte("second\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	day1, err := os.ReadFile(filepath.Join(dir, "app-2025-03-10.log"))
	if err != nil || strings.TrimSpace(string(day1)) != "first" {
		t.Fatalf("unexpected first day log %q %v", day1, err)
	}
	day2, err := os.ReadFile(filepath.Join(dir, "app-2025-03-11.log"))
	if err != nil || strings.TrimSpace(string(day2)) != "second" {
		t.Fatalf("unexpected second day log %q %v", day2, err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected stale log removed, got %v", err)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatalf("unrelated file should be kept: %v", err)
	}
}

func TestCleanupKeepsRetentionWindow(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app-2025-03-08.log", "app-2025-03-09.log", "app-2025-03-10.log"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	cleanupOldLogs(dir, 2, time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC))
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("expected 2 logs kept, got %d", len(entries))
	}
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	log, closeFn, err := New(Options{Env: "production", Level: "debug", Dir: dir, RetentionDays: 7})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Info("hello")
	closeFn()

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected one log file, got %d", len(entries))
	}
	body, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if !strings.Contains(string(body), `"msg":"hello"`) {
		t.Fatalf("expected json entry, got %q", body)
	}
}
