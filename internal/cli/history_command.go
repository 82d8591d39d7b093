package cli

import (
	"flag"
	"fmt"

	"github.com/dustin/go-humanize"

	"yt-bulk-scheduler/internal/ledger"
	"yt-bulk-scheduler/internal/model"
)

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	dir := fs.String("dir", ".", "workspace directory")
	limit := fs.Int("limit", 20, "show at most this many recent entries (0 = all)")
	failures := fs.Bool("failures", false, "show only failed attempts")
	runs := fs.Bool("runs", false, "show run summaries instead of attempts")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	paths := newWorkspacePaths(*dir)
	entries, err := ledger.Open(paths.LedgerPath).ReadAll()
	if err != nil {
		return err
	}

	wantKind := model.RecordAttempt
	if *runs {
		wantKind = model.RecordRunSummary
	}
	filtered := make([]model.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.Kind != wantKind {
			continue
		}
		if *failures && e.Outcome != model.OutcomeFailure {
			continue
		}
		filtered = append(filtered, e)
	}
	if *limit > 0 && len(filtered) > *limit {
		filtered = filtered[len(filtered)-*limit:]
	}

	if *jsonOut {
		return printJSON(filtered)
	}

	if len(filtered) == 0 {
		fmt.Println("no history")
		return nil
	}
	if *runs {
		for _, e := range filtered {
			fmt.Printf("%s  %d item(s): %d uploaded, %d failed, %d skipped, %s\n",
				e.Timestamp, e.TotalItems, e.Succeeded, e.Failed, e.Skipped,
				humanize.IBytes(uint64(e.UploadedBytes)))
		}
		return nil
	}
	for _, e := range filtered {
		line := fmt.Sprintf("%s  %-7s  %s", e.Timestamp, e.Outcome, e.Filename)
		if e.Outcome == model.OutcomeSuccess {
			line += "  -> " + e.RemoteID
			if e.ScheduledTime != "" {
				line += "  publish " + e.ScheduledTime
			}
			if e.SizeBytes > 0 {
				line += "  " + humanize.IBytes(uint64(e.SizeBytes))
			}
		} else if e.ErrorMessage != "" {
			msg := e.ErrorMessage
			if len(msg) > 80 {
				msg = msg[:80] + "..."
			}
			line += fmt.Sprintf("  (%s) %s", e.ErrorKind, msg)
		}
		fmt.Println(line)
	}
	return nil
}
