package ledger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"yt-bulk-scheduler/internal/model"
	"yt-bulk-scheduler/internal/runstore"
)

const (
	historyBackupFile = "history_backup.jsonl"
	configBackupFile  = "config_backup.jsonl"
)

type historyBackupRecord struct {
	Timestamp string              `json:"timestamp"`
	Entries   []model.LedgerEntry `json:"entries"`
}

type configBackupRecord struct {
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Backup appends timestamped snapshots of the ledger and the config file to
// the backup directory. Backup files are only ever appended to, so history
// survives corruption of the live files by a later run. A missing config
// file is skipped, not an error.
func Backup(backupDir string, l *Ledger, configPath string, now time.Time) error {
	if err := runstore.Mkdir(backupDir); err != nil {
		return err
	}
	stamp := now.UTC().Format(time.RFC3339)

	entries, err := l.ReadAll()
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		rec := historyBackupRecord{Timestamp: stamp, Entries: entries}
		if err := runstore.AppendJSONLine(filepath.Join(backupDir, historyBackupFile), rec); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if json.Valid(data) {
		// The live config is indented; compact it so the record stays one line.
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err == nil {
			data = buf.Bytes()
		}
	} else {
		// A broken live config is still worth snapshotting for forensics,
		// but it cannot be embedded raw without breaking the JSONL format.
		data, _ = json.Marshal(string(data))
	}
	rec := configBackupRecord{Timestamp: stamp, Data: json.RawMessage(data)}
	return runstore.AppendJSONLine(filepath.Join(backupDir, configBackupFile), rec)
}
