package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"yt-bulk-scheduler/internal/model"
	"yt-bulk-scheduler/internal/runstore"
)

func TestAppendAndReadAll_PreservesInsertionOrder(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "logs", "upload_history.jsonl"))

	for i, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		entry := model.LedgerEntry{
			Kind:      model.RecordAttempt,
			Timestamp: time.Date(2025, 12, 1, 10+i, 0, 0, 0, time.UTC).Format(time.RFC3339),
			Filename:  name,
			Platform:  model.PlatformYouTube,
			Outcome:   model.OutcomeSuccess,
		}
		if err := l.Append(entry); err != nil {
			t.Fatalf("append %s: %v", name, err)
		}
	}

	entries, err := l.ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		if entries[i].Filename != want {
			t.Fatalf("entry %d: got %q want %q", i, entries[i].Filename, want)
		}
	}
}

func TestReadAll_MissingFileIsEmptyHistory(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "missing.jsonl"))

	entries, err := l.ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(entries))
	}
}

func TestReadAll_SkipsTornFinalLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	l := Open(path)

	if err := l.Append(model.LedgerEntry{
		Kind:      model.RecordAttempt,
		Timestamp: "2025-12-01T10:00:00Z",
		Filename:  "ok.mp4",
	}); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(`{"kind":"attempt","timestamp":"2025-12-0`); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	entries, err := l.ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 1 || entries[0].Filename != "ok.mp4" {
		t.Fatalf("expected only the complete entry, got %+v", entries)
	}
}

func TestAttemptTimes_ExcludesRunSummaries(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "history.jsonl"))

	if err := l.Append(model.LedgerEntry{
		Kind:      model.RecordAttempt,
		Timestamp: "2025-12-01T10:00:00Z",
		Filename:  "a.mp4",
		Outcome:   model.OutcomeFailure,
	}); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(model.LedgerEntry{
		Kind:       model.RecordRunSummary,
		Timestamp:  "2025-12-01T11:00:00Z",
		TotalItems: 1,
	}); err != nil {
		t.Fatal(err)
	}

	times, err := l.AttemptTimes()
	if err != nil {
		t.Fatalf("attempt times: %v", err)
	}
	if len(times) != 1 {
		t.Fatalf("expected 1 attempt time, got %d", len(times))
	}
}

func TestSuccessIdentities(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "history.jsonl"))

	entries := []model.LedgerEntry{
		{Kind: model.RecordAttempt, Timestamp: "2025-12-01T10:00:00Z", Filename: "won.mp4", Outcome: model.OutcomeSuccess},
		{Kind: model.RecordAttempt, Timestamp: "2025-12-01T10:05:00Z", Filename: "lost.mp4", Outcome: model.OutcomeFailure},
		{Kind: model.RecordAttempt, Timestamp: "2025-12-01T10:10:00Z", Filename: "lost.mp4", Outcome: model.OutcomeSuccess},
	}
	for _, e := range entries {
		if err := l.Append(e); err != nil {
			t.Fatal(err)
		}
	}

	uploaded, err := l.SuccessIdentities()
	if err != nil {
		t.Fatalf("success identities: %v", err)
	}
	if !uploaded["won.mp4"] || !uploaded["lost.mp4"] {
		t.Fatalf("unexpected set: %v", uploaded)
	}
	if len(uploaded) != 2 {
		t.Fatalf("expected 2 identities, got %d", len(uploaded))
	}
}

func TestBackup_AppendsNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	configPath := filepath.Join(dir, "config.json")
	if err := runstore.WriteJSON(configPath, map[string]string{"timezone": "UTC"}); err != nil {
		t.Fatal(err)
	}

	l := Open(filepath.Join(dir, "history.jsonl"))
	if err := l.Append(model.LedgerEntry{
		Kind:      model.RecordAttempt,
		Timestamp: "2025-12-01T10:00:00Z",
		Filename:  "a.mp4",
	}); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	if err := Backup(backupDir, l, configPath, now); err != nil {
		t.Fatalf("first backup: %v", err)
	}
	if err := Backup(backupDir, l, configPath, now.Add(time.Hour)); err != nil {
		t.Fatalf("second backup: %v", err)
	}

	for _, name := range []string{historyBackupFile, configBackupFile} {
		data, err := os.ReadFile(filepath.Join(backupDir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("%s: expected 2 backup records, got %d", name, len(lines))
		}
		for _, line := range lines {
			if strings.Contains(line, "\n") {
				t.Fatalf("%s: record spans multiple lines", name)
			}
		}
	}
}
