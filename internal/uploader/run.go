// Package uploader drives a discovered batch through quota checks, remote
// submission, sidecar attachment, ledger recording, and relocation, one item
// at a time. Processing is strictly sequential: the quota window and the
// ledger are shared mutable state with no useful partial order under
// concurrency, and ledger order must equal discovery order.
package uploader

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"yt-bulk-scheduler/internal/ledger"
	"yt-bulk-scheduler/internal/model"
	"yt-bulk-scheduler/internal/quota"
	"yt-bulk-scheduler/internal/title"
)

type RunOptions struct {
	Items []model.BatchItem
	Slots []time.Time

	Transfer      Transfer
	Ledger        *ledger.Ledger
	Guard         quota.Guard
	MarkProcessed func(model.BatchItem) error

	CategoryID  string
	Privacy     string
	Description string
	Tags        []string

	DryRun   bool
	Progress bool
	Log      zerolog.Logger

	// Now is injectable for tests; nil means time.Now.
	Now func() time.Time
}

// ItemOutcome is the per-item result surfaced to the operator.
type ItemOutcome struct {
	Identity    string    `json:"identity"`
	Status      string    `json:"status"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	RemoteID    string    `json:"remote_id,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	HasCaption  bool      `json:"has_caption"`
	HasCover    bool      `json:"has_cover"`
	Warnings    []string  `json:"warnings,omitempty"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
}

type RunResult struct {
	Total         int           `json:"total"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	Skipped       int           `json:"skipped"`
	UploadedBytes int64         `json:"uploaded_bytes"`
	UploadTime    time.Duration `json:"-"`
	QuotaDenied   bool          `json:"quota_denied"`
	NextReset     time.Time     `json:"next_reset,omitempty"`
	Outcomes      []ItemOutcome `json:"outcomes"`
}

// Run processes the batch. Items and Slots pair 1:1 in discovery order. A
// single item's failure never aborts the batch; quota exhaustion skips the
// rest cleanly; an authentication failure returns an error wrapping
// ErrBatchAborted because no later attempt can succeed.
func Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	if len(opts.Items) != len(opts.Slots) {
		return RunResult{}, fmt.Errorf("schedule mismatch: %d items vs %d slots", len(opts.Items), len(opts.Slots))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	result := RunResult{Total: len(opts.Items)}
	runStart := now()

	for i, item := range opts.Items {
		slot := opts.Slots[i]
		state := model.ItemState{Identity: item.Identity}
		if err := model.TransitionItemStatus(&state, model.StatusPending, ""); err != nil {
			return result, err
		}

		outcome := ItemOutcome{
			Identity:    item.Identity,
			ScheduledAt: slot,
			SizeBytes:   item.SizeBytes,
			HasCaption:  item.CaptionPath != "",
			HasCover:    item.CoverPath != "",
		}

		attemptAt := now()
		dec, err := checkQuota(opts, attemptAt)
		if err != nil {
			return result, err
		}
		if !dec.Allowed {
			opts.Log.Warn().
				Int("used", dec.Used).
				Int("limit", dec.Limit).
				Time("next_reset", dec.NextReset).
				Msg("daily upload quota reached; skipping remaining items")
			result.QuotaDenied = true
			result.NextReset = dec.NextReset
			skipRemaining(&result, opts.Items[i:], opts.Slots[i:])
			break
		}

		itemTitle, warnings := title.FromFilename(item.Identity)
		outcome.Title = itemTitle
		outcome.Warnings = append(outcome.Warnings, warnings...)
		for _, w := range warnings {
			opts.Log.Warn().Str("item", item.Identity).Msg("title corrected: " + w)
		}

		if opts.DryRun {
			outcome.Status = model.StatusPending
			result.Outcomes = append(result.Outcomes, outcome)
			continue
		}

		if err := model.TransitionItemStatus(&state, model.StatusAttempting, ""); err != nil {
			return result, err
		}
		opts.Log.Info().
			Str("item", item.Identity).
			Time("publish_at", slot).
			Int("position", i+1).
			Int("of", len(opts.Items)).
			Msg("uploading")

		meter := newMeter(opts.Progress, i+1, len(opts.Items), itemTitle, item.SizeBytes)
		meter.Start()

		start := now()
		remoteID, submitErr := opts.Transfer.Submit(ctx, SubmitRequest{
			Path:        item.Path,
			SizeBytes:   item.SizeBytes,
			Title:       itemTitle,
			Description: opts.Description,
			Tags:        opts.Tags,
			CategoryID:  opts.CategoryID,
			Privacy:     opts.Privacy,
			PublishAt:   slot,
			Progress:    meter.Update,
		})
		duration := now().Sub(start)

		if submitErr != nil {
			meter.Stop(fmt.Sprintf("[%d/%d] fail  %s", i+1, len(opts.Items), item.Identity))
			if err := model.TransitionItemStatus(&state, model.StatusFailed, "transfer_error"); err != nil {
				return result, err
			}
			kind := KindOf(submitErr)
			outcome.Status = model.StatusFailed
			outcome.ErrorKind = string(kind)
			outcome.Error = truncate(submitErr.Error(), 1200)
			result.Outcomes = append(result.Outcomes, outcome)
			result.Failed++

			entry := model.LedgerEntry{
				Kind:          model.RecordAttempt,
				Timestamp:     attemptAt.Format(time.RFC3339),
				Filename:      item.Identity,
				Platform:      model.PlatformYouTube,
				ScheduledTime: slot.Format(time.RFC3339),
				Outcome:       model.OutcomeFailure,
				ErrorKind:     string(kind),
				ErrorMessage:  truncate(submitErr.Error(), 1200),
				SizeBytes:     item.SizeBytes,
			}
			if err := opts.Ledger.Append(entry); err != nil {
				return result, fmt.Errorf("record failed attempt for %s: %w", item.Identity, err)
			}
			opts.Log.Error().
				Str("item", item.Identity).
				Str("kind", string(kind)).
				Err(submitErr).
				Msg("upload failed")

			switch kind {
			case KindAuth:
				// The item failure has been recorded; remaining items stay
				// eligible for the next run rather than becoming skipped.
				return result, fmt.Errorf("%w: %v", ErrBatchAborted, submitErr)
			case KindQuotaExceeded:
				result.QuotaDenied = true
				_, result.NextReset = opts.Guard.Window(attemptAt)
				if i+1 < len(opts.Items) {
					skipRemaining(&result, opts.Items[i+1:], opts.Slots[i+1:])
				}
				opts.Log.Warn().
					Time("next_reset", result.NextReset).
					Msg("remote reports upload limit exceeded; stopping batch")
			}
			if result.QuotaDenied {
				break
			}
			continue
		}

		meter.Stop(fmt.Sprintf("[%d/%d] done  %s -> %s", i+1, len(opts.Items), item.Identity, remoteID))

		attachWarnings := attachSidecars(ctx, opts, item, remoteID)
		outcome.Warnings = append(outcome.Warnings, attachWarnings...)

		if err := model.TransitionItemStatus(&state, model.StatusSucceeded, ""); err != nil {
			return result, err
		}
		outcome.Status = model.StatusSucceeded
		outcome.RemoteID = remoteID
		result.Succeeded++
		result.UploadedBytes += item.SizeBytes
		result.UploadTime += duration

		rate := float64(0)
		if duration > 0 {
			rate = float64(item.SizeBytes) / duration.Seconds()
		}
		entry := model.LedgerEntry{
			Kind:            model.RecordAttempt,
			Timestamp:       attemptAt.Format(time.RFC3339),
			Filename:        item.Identity,
			Platform:        model.PlatformYouTube,
			RemoteID:        remoteID,
			ScheduledTime:   slot.Format(time.RFC3339),
			Outcome:         model.OutcomeSuccess,
			Warnings:        attachWarnings,
			SizeBytes:       item.SizeBytes,
			DurationSeconds: duration.Seconds(),
			RateBytesPerSec: rate,
		}
		if err := opts.Ledger.Append(entry); err != nil {
			// Without the durable record the relocation must not happen;
			// the next run would otherwise lose track of this success.
			return result, fmt.Errorf("record successful attempt for %s: %w", item.Identity, err)
		}

		// Relocation strictly after the ledger write: a crash between the
		// two is repaired from the ledger on the next run.
		if err := opts.MarkProcessed(item); err != nil {
			opts.Log.Error().Str("item", item.Identity).Err(err).Msg("relocation failed; next run will repair from ledger")
			outcome.Warnings = append(outcome.Warnings, "relocation failed: "+err.Error())
		}

		opts.Log.Info().
			Str("item", item.Identity).
			Str("remote_id", remoteID).
			Time("publish_at", slot).
			Dur("took", duration).
			Msg("uploaded")
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if !opts.DryRun {
		if err := appendRunSummary(opts, result, now()); err != nil {
			return result, err
		}
		opts.Log.Info().
			Int("succeeded", result.Succeeded).
			Int("failed", result.Failed).
			Int("skipped", result.Skipped).
			Dur("elapsed", now().Sub(runStart)).
			Msg("batch finished")
	}
	return result, nil
}

func checkQuota(opts RunOptions, now time.Time) (quota.Decision, error) {
	attempts, err := opts.Ledger.AttemptTimes()
	if err != nil {
		return quota.Decision{}, fmt.Errorf("count quota attempts: %w", err)
	}
	return opts.Guard.Check(attempts, now), nil
}

func skipRemaining(result *RunResult, items []model.BatchItem, slots []time.Time) {
	for i, item := range items {
		result.Outcomes = append(result.Outcomes, ItemOutcome{
			Identity:    item.Identity,
			Status:      model.StatusSkipped,
			ScheduledAt: slots[i],
			SizeBytes:   item.SizeBytes,
		})
		result.Skipped++
	}
}

// attachSidecars uploads the caption and cover after a successful submit.
// Failures are warnings: they never revert the primary success, but they are
// recorded on the entry and logged.
func attachSidecars(ctx context.Context, opts RunOptions, item model.BatchItem, remoteID string) []string {
	var warnings []string
	if item.CaptionPath != "" {
		if err := opts.Transfer.AttachCaption(ctx, remoteID, item.CaptionPath, item.CaptionLanguage); err != nil {
			warnings = append(warnings, "caption attach failed: "+err.Error())
			opts.Log.Warn().Str("item", item.Identity).Err(err).Msg("caption attach failed (non-fatal)")
		} else {
			opts.Log.Info().Str("item", item.Identity).Str("language", item.CaptionLanguage).Msg("caption attached")
		}
	}
	if item.CoverPath != "" {
		if err := opts.Transfer.AttachCover(ctx, remoteID, item.CoverPath); err != nil {
			warnings = append(warnings, "cover attach failed: "+err.Error())
			opts.Log.Warn().Str("item", item.Identity).Err(err).Msg("cover attach failed (non-fatal)")
		} else {
			opts.Log.Info().Str("item", item.Identity).Msg("cover attached")
		}
	}
	return warnings
}

func appendRunSummary(opts RunOptions, result RunResult, finished time.Time) error {
	entry := model.LedgerEntry{
		Kind:            model.RecordRunSummary,
		Timestamp:       finished.Format(time.RFC3339),
		TotalItems:      result.Total,
		Succeeded:       result.Succeeded,
		Failed:          result.Failed,
		Skipped:         result.Skipped,
		UploadedBytes:   result.UploadedBytes,
		DurationSeconds: result.UploadTime.Seconds(),
	}
	if result.UploadTime > 0 {
		entry.RateBytesPerSec = float64(result.UploadedBytes) / result.UploadTime.Seconds()
	}
	if err := opts.Ledger.Append(entry); err != nil {
		return fmt.Errorf("record run summary: %w", err)
	}
	return nil
}

// truncate caps s at max bytes without splitting a multi-byte rune, so the
// stored message stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
