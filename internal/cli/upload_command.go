package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"yt-bulk-scheduler/internal/config"
	"yt-bulk-scheduler/internal/discovery"
	"yt-bulk-scheduler/internal/ledger"
	"yt-bulk-scheduler/internal/logging"
	"yt-bulk-scheduler/internal/model"
	"yt-bulk-scheduler/internal/quota"
	"yt-bulk-scheduler/internal/runstore"
	"yt-bulk-scheduler/internal/schedule"
	"yt-bulk-scheduler/internal/uploader"
	"yt-bulk-scheduler/internal/youtube"
)

func runUpload(args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	dir := fs.String("dir", ".", "workspace directory")
	startDate := fs.String("start-date", "", "first publish date (YYYY-MM-DD; default today)")
	timezone := fs.String("timezone", "", "IANA timezone override")
	mode := fs.String("mode", "", "schedule mode: daily|weekly")
	scheduleDay := fs.String("schedule-day", "", "weekly mode: publish weekday")
	scheduleHour := fs.Int("schedule-hour", -1, "weekly mode: publish hour (0-23)")
	hourSlots := fs.String("hour-slots", "", "daily mode: comma-separated hours (e.g. 8,18)")
	category := fs.String("category", "", "category id override")
	privacy := fs.String("privacy", "", "privacy status override: private|unlisted|public")
	description := fs.String("description", "", "video description override")
	tags := fs.String("tags", "", "comma-separated tags override")
	dryRun := fs.Bool("dry-run", false, "plan the batch without uploading or writing anything")
	verbose := fs.Bool("verbose", false, "debug logging")
	noProgress := fs.Bool("no-progress", false, "disable the live progress line")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	ov := config.Overrides{
		StartDate:    strings.TrimSpace(*startDate),
		Timezone:     strings.TrimSpace(*timezone),
		ScheduleMode: strings.TrimSpace(*mode),
		ScheduleDay:  strings.TrimSpace(*scheduleDay),
		CategoryID:   strings.TrimSpace(*category),
		Privacy:      strings.TrimSpace(*privacy),
		Description:  *description,
	}
	if *scheduleHour >= 0 {
		ov.ScheduleHour = scheduleHour
	}
	if strings.TrimSpace(*tags) != "" {
		ov.Tags = config.ParseTagList(*tags)
	}
	slots, err := config.ParseHourSlots(*hourSlots)
	if err != nil {
		return err
	}
	ov.HourSlots = slots

	paths := newWorkspacePaths(*dir)
	fc, err := config.Load(paths.ConfigPath)
	if err != nil {
		return err
	}
	settings, err := config.Resolve(fc, ov, time.Now())
	if err != nil {
		return err
	}

	if *dryRun {
		return uploadDryRun(paths, settings, *jsonOut)
	}
	return uploadBatch(paths, settings, *verbose, *noProgress, *jsonOut)
}

func uploadBatch(paths workspacePaths, settings config.Settings, verbose, noProgress, jsonOut bool) error {
	lock, err := runstore.AcquireRunLock(paths.Root)
	if err != nil {
		var stale *runstore.StaleLockError
		if errors.As(err, &stale) {
			return fmt.Errorf("%w\nremove %s after confirming no upload process is running", stale, stale.LockDir)
		}
		return err
	}
	defer lock.Release()

	log, closeLog, err := logging.New(paths.ErrorLogPath, verbose)
	if err != nil {
		return err
	}
	defer closeLog()

	l := ledger.Open(paths.LedgerPath)
	batch, err := scanWorkspace(paths, settings, l)
	if err != nil {
		return err
	}
	reconcile(batch, paths, log)
	if len(batch.Pending) == 0 {
		fmt.Println("nothing to upload: clips folder has no pending videos")
		return nil
	}

	// History and config snapshots before anything mutates.
	if err := ledger.Backup(paths.BackupsDir, l, paths.ConfigPath, time.Now()); err != nil {
		return fmt.Errorf("backup before run: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oauthCfg, err := youtube.LoadOAuthConfig(paths.ClientSecret)
	if err != nil {
		return err
	}
	ts, err := youtube.TokenSource(ctx, oauthCfg, paths.TokenPath)
	if err != nil {
		return err
	}
	client, err := youtube.NewClient(ctx, ts)
	if err != nil {
		return err
	}

	log.Info().
		Int("pending", len(batch.Pending)).
		Str("total_size", humanize.IBytes(uint64(batch.TotalPendingBytes()))).
		Str("mode", settings.Mode).
		Str("timezone", settings.ZoneName).
		Msg("starting batch")

	result, runErr := uploader.Run(ctx, uploader.RunOptions{
		Items:         batch.Pending,
		Slots:         publishSlots(settings, len(batch.Pending), time.Now()),
		Transfer:      client,
		Ledger:        l,
		Guard:         quotaGuard(settings),
		MarkProcessed: func(item model.BatchItem) error { return discovery.MoveToSent(item, paths.SentDir) },
		CategoryID:    settings.CategoryID,
		Privacy:       settings.PrivacyStatus,
		Description:   settings.Description,
		Tags:          settings.Tags,
		Progress:      !noProgress && stdinIsTTY(),
		Log:           log,
	})

	updatePlaylist(ctx, client, settings, result, time.Now(), log)

	if jsonOut {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		printRunSummary(result)
	}
	return runErr
}

func uploadDryRun(paths workspacePaths, settings config.Settings, jsonOut bool) error {
	l := ledger.Open(paths.LedgerPath)
	batch, err := scanWorkspace(paths, settings, l)
	if err != nil {
		return err
	}

	result, err := uploader.Run(context.Background(), uploader.RunOptions{
		Items:  batch.Pending,
		Slots:  publishSlots(settings, len(batch.Pending), time.Now()),
		Ledger: l,
		Guard:  quotaGuard(settings),
		DryRun: true,
		Log:    logging.Nop(),
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(result)
	}

	if len(batch.AlreadyUploaded) > 0 {
		fmt.Printf("note: %d already-uploaded clip(s) still in %s; a real run will move them to %s\n",
			len(batch.AlreadyUploaded), paths.ClipsDir, paths.SentDir)
	}
	if len(result.Outcomes) == 0 {
		fmt.Println("nothing to upload: clips folder has no pending videos")
		return nil
	}
	fmt.Printf("plan: %d video(s), %s total, %s %s\n",
		len(batch.Pending),
		humanize.IBytes(uint64(batch.TotalPendingBytes())),
		settings.Mode,
		settings.ZoneName)
	for _, o := range result.Outcomes {
		marker := ""
		if o.Status == model.StatusSkipped {
			marker = "  [would skip: quota]"
		}
		extras := sidecarMarkers(o)
		fmt.Printf("  %s  %-50q%s%s\n", o.ScheduledAt.Format("2006-01-02 15:04 MST"), o.Title, extras, marker)
		for _, w := range o.Warnings {
			fmt.Printf("      warning: %s\n", w)
		}
	}
	if result.QuotaDenied {
		fmt.Printf("quota: window is full; next reset %s\n", result.NextReset.Format(time.RFC1123))
	}
	return nil
}

func scanWorkspace(paths workspacePaths, settings config.Settings, l *ledger.Ledger) (discovery.Batch, error) {
	uploaded, err := l.SuccessIdentities()
	if err != nil {
		return discovery.Batch{}, err
	}
	return discovery.Scan(paths.ClipsDir, settings.Extensions, uploaded)
}

// reconcile moves clips that the ledger already records as uploaded but that
// a previous interrupted run failed to relocate. They are never re-submitted.
func reconcile(batch discovery.Batch, paths workspacePaths, log zerolog.Logger) {
	for _, item := range batch.AlreadyUploaded {
		if err := discovery.MoveToSent(item, paths.SentDir); err != nil {
			log.Warn().Str("item", item.Identity).Err(err).Msg("could not relocate already-uploaded clip")
			continue
		}
		log.Info().Str("item", item.Identity).Msg("relocated already-uploaded clip left behind by an earlier run")
	}
}

func publishSlots(settings config.Settings, n int, now time.Time) []time.Time {
	var plan schedule.Plan
	if settings.Mode == config.ModeWeekly {
		// Without an explicit start date the weekly anchor is the current
		// instant, so a run later in the day than the target hour schedules
		// next week instead of a publish time already in the past.
		anchor := settings.StartDate
		if !settings.StartSpecified {
			anchor = now.In(settings.Zone)
		}
		plan = schedule.Weekly(anchor, settings.Zone, settings.WeeklyDay, settings.WeeklyHour)
	} else {
		plan = schedule.Daily(settings.StartDate, settings.Zone, settings.HourSlots)
	}
	return plan.Slots(n)
}

func quotaGuard(settings config.Settings) quota.Guard {
	return quota.Guard{
		DailyLimit: settings.DailyLimit,
		ResetHour:  settings.ResetHour,
		Zone:       settings.Zone,
	}
}

func sidecarMarkers(o uploader.ItemOutcome) string {
	var marks []string
	if o.HasCaption {
		marks = append(marks, "captions")
	}
	if o.HasCover {
		marks = append(marks, "cover")
	}
	if len(marks) == 0 {
		return ""
	}
	return "  [+" + strings.Join(marks, ",") + "]"
}

func printRunSummary(result uploader.RunResult) {
	for _, o := range result.Outcomes {
		switch o.Status {
		case model.StatusSucceeded:
			fmt.Printf("ok    %s -> %s (publish %s)\n", o.Identity, o.RemoteID, o.ScheduledAt.Format("2006-01-02 15:04 MST"))
		case model.StatusFailed:
			fmt.Printf("fail  %s (%s): %s\n", o.Identity, o.ErrorKind, o.Error)
		case model.StatusSkipped:
			fmt.Printf("skip  %s (quota)\n", o.Identity)
		}
		for _, w := range o.Warnings {
			fmt.Printf("      warning: %s\n", w)
		}
	}
	fmt.Printf("done: %d uploaded, %d failed, %d skipped", result.Succeeded, result.Failed, result.Skipped)
	if result.UploadedBytes > 0 {
		fmt.Printf(", %s", humanize.IBytes(uint64(result.UploadedBytes)))
		if result.UploadTime > 0 {
			rate := float64(result.UploadedBytes) / result.UploadTime.Seconds()
			fmt.Printf(" at %s/s", humanize.IBytes(uint64(rate)))
		}
	}
	fmt.Println()
	if result.QuotaDenied {
		fmt.Printf("quota reached; next reset %s\n", result.NextReset.Format(time.RFC1123))
	}
}
