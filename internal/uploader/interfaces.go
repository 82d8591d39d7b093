package uploader

import (
	"context"
	"time"
)

// SubmitRequest carries everything the remote platform needs for one upload.
type SubmitRequest struct {
	Path        string
	SizeBytes   int64
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
	PublishAt   time.Time

	// Progress, when non-nil, receives byte-level transfer updates.
	Progress func(uploaded, total int64)
}

// Transfer is the remote publish capability. Submit returns the remote id
// on success; failures should be *TransferError so the orchestrator can
// branch on the kind. The attach calls are best-effort follow-ups whose
// failure never reverts a successful submit.
type Transfer interface {
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	AttachCaption(ctx context.Context, remoteID, captionPath, language string) error
	AttachCover(ctx context.Context, remoteID, coverPath string) error
}
