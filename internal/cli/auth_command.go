package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"yt-bulk-scheduler/internal/youtube"
)

func runAuth(args []string) error {
	fs := flag.NewFlagSet("auth", flag.ContinueOnError)
	dir := fs.String("dir", ".", "workspace directory")
	clientSecret := fs.String("client-secret", "", "client secret path override")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !stdinIsTTY() {
		return errors.New("auth requires an interactive terminal (TTY)")
	}

	paths := newWorkspacePaths(*dir)
	secretPath := paths.ClientSecret
	if strings.TrimSpace(*clientSecret) != "" {
		secretPath = strings.TrimSpace(*clientSecret)
	}

	cfg, err := youtube.LoadOAuthConfig(secretPath)
	if err != nil {
		return err
	}

	tok, err := youtube.Authorize(context.Background(), cfg, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	if err := youtube.SaveToken(paths.TokenPath, tok); err != nil {
		return err
	}
	fmt.Printf("\ncredentials stored in %s\n", paths.TokenPath)
	return nil
}
