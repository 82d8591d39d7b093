// Package ledger is the append-only durable history of upload attempts.
// Records are line-delimited JSON; append is the only mutation, and a
// correction is always a new record.
package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"yt-bulk-scheduler/internal/model"
	"yt-bulk-scheduler/internal/runstore"
)

type Ledger struct {
	path string
}

func Open(path string) *Ledger {
	return &Ledger{path: path}
}

func (l *Ledger) Path() string { return l.path }

// Append durably writes one record before returning. The single-write plus
// fsync discipline in runstore means a concurrent or later reader sees the
// record fully or not at all.
func (l *Ledger) Append(entry model.LedgerEntry) error {
	if entry.Kind == "" {
		return fmt.Errorf("ledger entry kind is required")
	}
	if entry.Timestamp == "" {
		return fmt.Errorf("ledger entry timestamp is required")
	}
	return runstore.AppendJSONLine(l.path, entry)
}

// ReadAll returns every record in insertion order. A missing file is an
// empty history. A torn final line (crash mid-append on a filesystem without
// atomic small appends) is skipped rather than failing the whole read.
func (l *Ledger) ReadAll() ([]model.LedgerEntry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.LedgerEntry{}, nil
		}
		return nil, fmt.Errorf("open ledger %s: %w", l.path, err)
	}
	defer f.Close()

	entries := make([]model.LedgerEntry, 0, 64)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry model.LedgerEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", l.path, err)
	}
	return entries, nil
}

// AttemptTimes returns the timestamps of every attempt record, in insertion
// order. Run summaries are excluded; they never count against quota.
func (l *Ledger) AttemptTimes() ([]time.Time, error) {
	entries, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		if e.Kind != model.RecordAttempt {
			continue
		}
		times = append(times, e.AttemptTime())
	}
	return times, nil
}

// SuccessIdentities returns the set of item identities with at least one
// successful attempt. Discovery uses this to avoid re-submitting files that
// were uploaded but not relocated before a crash.
func (l *Ledger) SuccessIdentities() (map[string]bool, error) {
	entries, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	uploaded := make(map[string]bool)
	for _, e := range entries {
		if e.Kind == model.RecordAttempt && e.Outcome == model.OutcomeSuccess {
			uploaded[e.Filename] = true
		}
	}
	return uploaded, nil
}
