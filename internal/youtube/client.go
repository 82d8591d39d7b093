package youtube

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"yt-bulk-scheduler/internal/uploader"
)

const uploadChunkSize = 8 * 1024 * 1024

// Client publishes videos through the YouTube Data API. It satisfies
// uploader.Transfer.
type Client struct {
	svc *yt.Service
}

var _ uploader.Transfer = (*Client)(nil)

func NewClient(ctx context.Context, ts oauth2.TokenSource) (*Client, error) {
	svc, err := yt.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Submit performs a resumable video upload with the publish time scheduled
// in the future. The video stays private until the platform flips it at
// PublishAt.
func (c *Client) Submit(ctx context.Context, req uploader.SubmitRequest) (string, error) {
	f, err := os.Open(req.Path)
	if err != nil {
		return "", &uploader.TransferError{Kind: uploader.KindFatal, Message: err.Error()}
	}
	defer f.Close()

	video := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryId:  req.CategoryID,
		},
		Status: &yt.VideoStatus{
			PrivacyStatus:           req.Privacy,
			PublishAt:               req.PublishAt.Format(time.RFC3339),
			SelfDeclaredMadeForKids: false,
			ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
		},
	}

	call := c.svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f, googleapi.ChunkSize(uploadChunkSize)).
		Context(ctx)
	if req.Progress != nil {
		size := req.SizeBytes
		call = call.ProgressUpdater(func(current, total int64) {
			if total <= 0 {
				total = size
			}
			req.Progress(current, total)
		})
	}

	resp, err := call.Do()
	if err != nil {
		return "", classify(err)
	}
	return resp.Id, nil
}

// AttachCaption uploads one caption track for the video.
func (c *Client) AttachCaption(ctx context.Context, remoteID, captionPath, language string) error {
	f, err := os.Open(captionPath)
	if err != nil {
		return err
	}
	defer f.Close()

	caption := &yt.Caption{
		Snippet: &yt.CaptionSnippet{
			VideoId:  remoteID,
			Language: language,
			Name:     "",
		},
	}
	_, err = c.svc.Captions.Insert([]string{"snippet"}, caption).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}
	return nil
}

// AttachCover sets the custom thumbnail. The channel must be verified for
// custom thumbnails; the API rejects the call otherwise, which surfaces as a
// warning upstream.
func (c *Client) AttachCover(ctx context.Context, remoteID, coverPath string) error {
	f, err := os.Open(coverPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = c.svc.Thumbnails.Set(remoteID).
		Media(f).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}
	return nil
}

// classify maps a Google API failure onto the orchestrator's error kinds.
// The reason strings come from the Data API error reference; anything
// unrecognized falls through to message-hint matching.
func classify(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		for _, item := range gErr.Errors {
			switch item.Reason {
			case "uploadLimitExceeded", "quotaExceeded", "dailyLimitExceeded":
				return &uploader.TransferError{Kind: uploader.KindQuotaExceeded, Message: gErr.Error()}
			case "authError", "expired", "required":
				return &uploader.TransferError{Kind: uploader.KindAuth, Message: gErr.Error()}
			case "rateLimitExceeded", "userRateLimitExceeded", "backendError":
				return &uploader.TransferError{Kind: uploader.KindTransient, Message: gErr.Error()}
			}
		}
		switch {
		case gErr.Code == 401:
			return &uploader.TransferError{Kind: uploader.KindAuth, Message: gErr.Error()}
		case gErr.Code == 429 || gErr.Code >= 500:
			return &uploader.TransferError{Kind: uploader.KindTransient, Message: gErr.Error()}
		}
		return &uploader.TransferError{Kind: uploader.KindFatal, Message: gErr.Error()}
	}
	return &uploader.TransferError{Kind: uploader.KindOf(err), Message: err.Error()}
}
