// Package youtube implements the remote transfer boundary against the
// YouTube Data API v3: OAuth2 credential handling plus video, caption, and
// thumbnail submission.
package youtube

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	yt "google.golang.org/api/youtube/v3"

	"yt-bulk-scheduler/internal/runstore"
)

// LoadOAuthConfig parses the installed-app client secret downloaded from the
// Google Cloud console.
func LoadOAuthConfig(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client secret %s: %w", path, err)
	}
	cfg, err := google.ConfigFromJSON(data, yt.YoutubeUploadScope, yt.YoutubeForceSslScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret %s: %w", path, err)
	}
	return cfg, nil
}

// LoadToken reads a previously stored refresh token.
func LoadToken(path string) (*oauth2.Token, error) {
	var tok oauth2.Token
	if err := runstore.ReadJSON(path, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// SaveToken persists the token atomically so an interrupted write never
// corrupts stored credentials.
func SaveToken(path string, tok *oauth2.Token) error {
	return runstore.WriteJSON(path, tok)
}

// Authorize runs the interactive installed-app flow: print the consent URL,
// read the verification code, exchange it for a token.
func Authorize(ctx context.Context, cfg *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Open this URL in a browser and authorize the app:\n\n  %s\n\nPaste the verification code: ", url)

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("read verification code: %w", err)
	}
	code := strings.TrimSpace(line)
	if code == "" {
		return nil, fmt.Errorf("empty verification code")
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange verification code: %w", err)
	}
	return tok, nil
}

// TokenSource returns a refreshing token source backed by the stored token.
// Refreshed tokens are written back so the next run skips the refresh.
func TokenSource(ctx context.Context, cfg *oauth2.Config, tokenPath string) (oauth2.TokenSource, error) {
	tok, err := LoadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("no stored credentials (run auth first): %w", err)
	}
	return &persistingSource{
		inner: cfg.TokenSource(ctx, tok),
		path:  tokenPath,
		last:  tok,
	}, nil
}

type persistingSource struct {
	inner oauth2.TokenSource
	path  string
	last  *oauth2.Token
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.inner.Token()
	if err != nil {
		return nil, err
	}
	if s.last == nil || tok.AccessToken != s.last.AccessToken {
		s.last = tok
		if saveErr := SaveToken(s.path, tok); saveErr != nil {
			return nil, fmt.Errorf("persist refreshed token: %w", saveErr)
		}
	}
	return tok, nil
}
