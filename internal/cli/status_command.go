package cli

import (
	"flag"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"yt-bulk-scheduler/internal/config"
	"yt-bulk-scheduler/internal/ledger"
	"yt-bulk-scheduler/internal/model"
	"yt-bulk-scheduler/internal/runstore"
)

type statusReport struct {
	Root            string     `json:"root"`
	PendingCount    int        `json:"pending_count"`
	PendingBytes    int64      `json:"pending_bytes"`
	UnrelocatedOld  int        `json:"unrelocated_uploaded"`
	TotalUploads    int        `json:"total_uploads"`
	TotalFailures   int        `json:"total_failures"`
	QuotaUsed       int        `json:"quota_used"`
	QuotaLimit      int        `json:"quota_limit"`
	QuotaNextReset  time.Time  `json:"quota_next_reset"`
	LockHeld        bool       `json:"lock_held"`
	LockStale       bool       `json:"lock_stale"`
	LockDetail      string     `json:"lock_detail,omitempty"`
	LastRunAt       string     `json:"last_run_at,omitempty"`
	LastRunUploaded int        `json:"last_run_uploaded,omitempty"`
	LastRunFailed   int        `json:"last_run_failed,omitempty"`
	LastRunSkipped  int        `json:"last_run_skipped,omitempty"`
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	dir := fs.String("dir", ".", "workspace directory")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths := newWorkspacePaths(*dir)
	fc, err := config.Load(paths.ConfigPath)
	if err != nil {
		return err
	}
	settings, err := config.Resolve(fc, config.Overrides{}, time.Now())
	if err != nil {
		return err
	}

	l := ledger.Open(paths.LedgerPath)
	batch, err := scanWorkspace(paths, settings, l)
	if err != nil {
		return err
	}
	entries, err := l.ReadAll()
	if err != nil {
		return err
	}

	report := statusReport{
		Root:           paths.Root,
		PendingCount:   len(batch.Pending),
		PendingBytes:   batch.TotalPendingBytes(),
		UnrelocatedOld: len(batch.AlreadyUploaded),
	}
	for _, e := range entries {
		switch {
		case e.Kind == model.RecordRunSummary:
			report.LastRunAt = e.Timestamp
			report.LastRunUploaded = e.Succeeded
			report.LastRunFailed = e.Failed
			report.LastRunSkipped = e.Skipped
		case e.Outcome == model.OutcomeSuccess:
			report.TotalUploads++
		case e.Outcome == model.OutcomeFailure:
			report.TotalFailures++
		}
	}

	attempts, err := l.AttemptTimes()
	if err != nil {
		return err
	}
	dec := quotaGuard(settings).Check(attempts, time.Now())
	report.QuotaUsed = dec.Used
	report.QuotaLimit = dec.Limit
	report.QuotaNextReset = dec.NextReset

	report.LockHeld, report.LockStale, report.LockDetail = runstore.LockState(paths.Root)

	if *jsonOut {
		return printJSON(report)
	}

	fmt.Printf("workspace: %s\n", report.Root)
	fmt.Printf("pending: %d clip(s), %s\n", report.PendingCount, humanize.IBytes(uint64(report.PendingBytes)))
	if report.UnrelocatedOld > 0 {
		fmt.Printf("unrelocated: %d uploaded clip(s) still in clips/ (next run will move them)\n", report.UnrelocatedOld)
	}
	fmt.Printf("history: %d uploaded, %d failed\n", report.TotalUploads, report.TotalFailures)
	fmt.Printf("quota: %d/%d used, resets %s\n", report.QuotaUsed, report.QuotaLimit, report.QuotaNextReset.Format(time.RFC1123))
	switch {
	case report.LockStale:
		fmt.Printf("lock: STALE (%s)\n", report.LockDetail)
	case report.LockHeld:
		fmt.Printf("lock: held (%s)\n", report.LockDetail)
	default:
		fmt.Println("lock: free")
	}
	if report.LastRunAt != "" {
		fmt.Printf("last run: %s (%d uploaded, %d failed, %d skipped)\n",
			report.LastRunAt, report.LastRunUploaded, report.LastRunFailed, report.LastRunSkipped)
	}
	return nil
}
