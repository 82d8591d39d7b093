package cli

import (
	"flag"
	"fmt"
	"time"

	"yt-bulk-scheduler/internal/config"
	"yt-bulk-scheduler/internal/ledger"
)

func runQuota(args []string) error {
	fs := flag.NewFlagSet("quota", flag.ContinueOnError)
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

	attempts, err := ledger.Open(paths.LedgerPath).AttemptTimes()
	if err != nil {
		return err
	}
	dec := quotaGuard(settings).Check(attempts, time.Now())

	if *jsonOut {
		return printJSON(dec)
	}

	fmt.Printf("window: %s to %s (%s)\n",
		dec.WindowStart.Format("2006-01-02 15:04"),
		dec.NextReset.Format("2006-01-02 15:04"),
		settings.ZoneName)
	fmt.Printf("used: %d of %d\n", dec.Used, dec.Limit)
	if dec.Allowed {
		fmt.Printf("remaining: %d upload(s) before the window is full\n", dec.Limit-dec.Used)
	} else {
		fmt.Printf("exhausted: next reset %s\n", dec.NextReset.Format(time.RFC1123))
	}
	return nil
}
