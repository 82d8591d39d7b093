package model

import "time"

// PlatformYouTube is the only remote platform this tool publishes to. Ledger
// entries carry the platform name so history stays unambiguous if another
// platform is ever added.
const PlatformYouTube = "youtube"

// BatchItem is one media file discovered for publishing. It is immutable for
// the duration of a run; its Identity (the file name) is the idempotency key
// used by the ledger and the reconciliation pass.
type BatchItem struct {
	Identity  string
	Path      string
	SizeBytes int64

	// Sidecar assets resolved by naming convention. Empty means absent,
	// which is never an error.
	CaptionPath     string
	CaptionLanguage string
	CoverPath       string
}

// Ledger record kinds. Attempt records count against the daily quota window;
// run summaries do not.
const (
	RecordAttempt    = "attempt"
	RecordRunSummary = "run_summary"
)

// Attempt outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// LedgerEntry is one append-only fact in the upload history. Entries are
// never mutated after being written; corrections are new entries.
type LedgerEntry struct {
	Kind      string `json:"kind"`
	Timestamp string `json:"timestamp"`

	// Attempt fields.
	Filename        string   `json:"filename,omitempty"`
	Platform        string   `json:"platform,omitempty"`
	RemoteID        string   `json:"remote_id,omitempty"`
	ScheduledTime   string   `json:"scheduled_time,omitempty"`
	Outcome         string   `json:"outcome,omitempty"`
	ErrorKind       string   `json:"error_kind,omitempty"`
	ErrorMessage    string   `json:"error_message,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	SizeBytes       int64    `json:"size_bytes,omitempty"`
	DurationSeconds float64  `json:"duration_seconds,omitempty"`
	RateBytesPerSec float64  `json:"rate_bytes_per_sec,omitempty"`

	// Run summary fields.
	TotalItems    int   `json:"total_items,omitempty"`
	Succeeded     int   `json:"succeeded,omitempty"`
	Failed        int   `json:"failed,omitempty"`
	Skipped       int   `json:"skipped,omitempty"`
	UploadedBytes int64 `json:"uploaded_bytes,omitempty"`
}

// AttemptTime parses the entry timestamp. The zero time is returned for
// entries whose timestamp does not parse; callers treat those as outside any
// quota window rather than failing the whole read.
func (e LedgerEntry) AttemptTime() time.Time {
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ScheduledAt parses the scheduled publish timestamp, if present.
func (e LedgerEntry) ScheduledAt() (time.Time, bool) {
	if e.ScheduledTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, e.ScheduledTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
