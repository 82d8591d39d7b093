package youtube

import (
	"context"
	"fmt"

	yt "google.golang.org/api/youtube/v3"
)

// CreatePlaylist creates a new playlist on the channel and returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, title, description, privacy string) (string, error) {
	playlist := &yt.Playlist{
		Snippet: &yt.PlaylistSnippet{
			Title:       title,
			Description: description,
		},
		Status: &yt.PlaylistStatus{
			PrivacyStatus: privacy,
		},
	}
	resp, err := c.svc.Playlists.Insert([]string{"snippet", "status"}, playlist).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create playlist %q: %w", title, classify(err))
	}
	return resp.Id, nil
}

// AddPlaylistItem appends one uploaded video to the playlist.
func (c *Client) AddPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	item := &yt.PlaylistItem{
		Snippet: &yt.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &yt.ResourceId{
				Kind:    "youtube#video",
				VideoId: videoID,
			},
		},
	}
	_, err := c.svc.PlaylistItems.Insert([]string{"snippet"}, item).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}
	return nil
}
