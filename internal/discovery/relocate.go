package discovery

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"yt-bulk-scheduler/internal/model"
	"yt-bulk-scheduler/internal/runstore"
)

// MoveToSent relocates a processed item into sentDir. It is idempotent: if
// the source is already gone and the destination exists, a repeated call
// (crash recovery, reconciliation repair) succeeds without touching anything.
func MoveToSent(item model.BatchItem, sentDir string) error {
	if err := runstore.Mkdir(sentDir); err != nil {
		return err
	}
	dest := filepath.Join(sentDir, item.Identity)

	if _, err := os.Stat(item.Path); os.IsNotExist(err) {
		if _, destErr := os.Stat(dest); destErr == nil {
			return nil
		}
		return fmt.Errorf("relocate %s: source missing and destination absent", item.Identity)
	}

	if err := os.Rename(item.Path, dest); err != nil {
		// Rename fails across filesystems; fall back to copy+remove.
		if copyErr := copyFile(item.Path, dest); copyErr != nil {
			return fmt.Errorf("relocate %s: %w", item.Identity, copyErr)
		}
		if rmErr := os.Remove(item.Path); rmErr != nil {
			return fmt.Errorf("relocate %s: remove source: %w", item.Identity, rmErr)
		}
	}

	moveSidecar(item.CaptionPath, sentDir)
	moveSidecar(item.CoverPath, sentDir)
	return nil
}

// moveSidecar is best-effort: a sidecar left behind is untidy, not a failed
// relocation.
func moveSidecar(path, sentDir string) {
	if path == "" {
		return
	}
	dest := filepath.Join(sentDir, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		if copyErr := copyFile(path, dest); copyErr == nil {
			_ = os.Remove(path)
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	return out.Close()
}
