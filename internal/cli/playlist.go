package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"yt-bulk-scheduler/internal/config"
	"yt-bulk-scheduler/internal/model"
	"yt-bulk-scheduler/internal/uploader"
)

// playlistService is the slice of the remote client the post-batch playlist
// step needs; narrowed for testability.
type playlistService interface {
	CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error)
	AddPlaylistItem(ctx context.Context, playlistID, videoID string) error
}

// updatePlaylist runs after the batch: collect successfully uploaded video
// ids, create the configured playlist if asked, and append each video. The
// whole step is best-effort; a playlist failure never affects the recorded
// uploads.
func updatePlaylist(ctx context.Context, svc playlistService, settings config.Settings, result uploader.RunResult, now time.Time, log zerolog.Logger) {
	if settings.PlaylistID == "" && !settings.CreatePlaylist {
		return
	}

	var ids []string
	for _, o := range result.Outcomes {
		if o.Status == model.StatusSucceeded && o.RemoteID != "" {
			ids = append(ids, o.RemoteID)
		}
	}
	if len(ids) == 0 {
		return
	}

	playlistID := settings.PlaylistID
	if settings.CreatePlaylist {
		description := "Videos uploaded on " + now.In(settings.Zone).Format("2006-01-02")
		id, err := svc.CreatePlaylist(ctx, settings.PlaylistTitle, description, settings.PrivacyStatus)
		if err != nil {
			log.Error().Str("title", settings.PlaylistTitle).Err(err).Msg("playlist creation failed; uploads are unaffected")
			return
		}
		playlistID = id
		log.Info().Str("playlist_id", id).Str("title", settings.PlaylistTitle).Msg("playlist created")
	}

	added := 0
	for _, id := range ids {
		if err := svc.AddPlaylistItem(ctx, playlistID, id); err != nil {
			log.Warn().Str("video_id", id).Err(err).Msg("could not add video to playlist")
			continue
		}
		added++
	}
	log.Info().Int("added", added).Str("playlist_id", playlistID).Msg("playlist updated")
}
