package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

var testExtensions = map[string]bool{".mp4": true, ".mov": true}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_FiltersAndSortsByName(t *testing.T) {
	clips := t.TempDir()
	writeFile(t, filepath.Join(clips, "b-second.mp4"), 20)
	writeFile(t, filepath.Join(clips, "a-first.MOV"), 10)
	writeFile(t, filepath.Join(clips, "notes.txt"), 5)
	if err := os.Mkdir(filepath.Join(clips, "sub.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	batch, err := Scan(clips, testExtensions, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(batch.Pending) != 2 {
		t.Fatalf("expected 2 items, got %d", len(batch.Pending))
	}
	if batch.Pending[0].Identity != "a-first.MOV" || batch.Pending[1].Identity != "b-second.mp4" {
		t.Fatalf("unexpected order: %s, %s", batch.Pending[0].Identity, batch.Pending[1].Identity)
	}
	if batch.Pending[0].SizeBytes != 10 || batch.Pending[1].SizeBytes != 20 {
		t.Fatalf("unexpected sizes")
	}
	if batch.TotalPendingBytes() != 30 {
		t.Fatalf("unexpected total bytes %d", batch.TotalPendingBytes())
	}
}

func TestScan_SplitsAlreadyUploaded(t *testing.T) {
	clips := t.TempDir()
	writeFile(t, filepath.Join(clips, "done.mp4"), 1)
	writeFile(t, filepath.Join(clips, "todo.mp4"), 1)

	batch, err := Scan(clips, testExtensions, map[string]bool{"done.mp4": true})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(batch.Pending) != 1 || batch.Pending[0].Identity != "todo.mp4" {
		t.Fatalf("unexpected pending: %+v", batch.Pending)
	}
	if len(batch.AlreadyUploaded) != 1 || batch.AlreadyUploaded[0].Identity != "done.mp4" {
		t.Fatalf("unexpected already-uploaded: %+v", batch.AlreadyUploaded)
	}
}

func TestScan_MissingClipsFolderIsError(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope"), testExtensions, nil); err == nil {
		t.Fatalf("expected error for missing clips folder")
	}
}

func TestScan_ResolvesSidecars(t *testing.T) {
	clips := t.TempDir()
	writeFile(t, filepath.Join(clips, "clip.mp4"), 1)
	writeFile(t, filepath.Join(clips, "clip.pt-BR.srt"), 1)
	writeFile(t, filepath.Join(clips, "clip.png"), 1)
	writeFile(t, filepath.Join(clips, "plain.mp4"), 1)
	writeFile(t, filepath.Join(clips, "subbed.mp4"), 1)
	writeFile(t, filepath.Join(clips, "subbed.vtt"), 1)

	batch, err := Scan(clips, testExtensions, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	byName := make(map[string]int, len(batch.Pending))
	for i, item := range batch.Pending {
		byName[item.Identity] = i
	}

	clip := batch.Pending[byName["clip.mp4"]]
	if filepath.Base(clip.CaptionPath) != "clip.pt-BR.srt" || clip.CaptionLanguage != "pt-BR" {
		t.Fatalf("caption not resolved: %+v", clip)
	}
	if filepath.Base(clip.CoverPath) != "clip.png" {
		t.Fatalf("cover not resolved: %+v", clip)
	}

	plain := batch.Pending[byName["plain.mp4"]]
	if plain.CaptionPath != "" || plain.CoverPath != "" {
		t.Fatalf("unexpected sidecars on plain item: %+v", plain)
	}

	subbed := batch.Pending[byName["subbed.mp4"]]
	if filepath.Base(subbed.CaptionPath) != "subbed.vtt" || subbed.CaptionLanguage != "en" {
		t.Fatalf("default-language caption not resolved: %+v", subbed)
	}
}

func TestMoveToSent_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	clips := filepath.Join(root, "clips")
	sent := filepath.Join(root, "sent")
	if err := os.MkdirAll(clips, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(clips, "clip.mp4"), 8)

	batch, err := Scan(clips, testExtensions, nil)
	if err != nil {
		t.Fatal(err)
	}
	item := batch.Pending[0]

	if err := MoveToSent(item, sent); err != nil {
		t.Fatalf("first move: %v", err)
	}
	if _, err := os.Stat(filepath.Join(sent, "clip.mp4")); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if _, err := os.Stat(item.Path); !os.IsNotExist(err) {
		t.Fatalf("source should be gone")
	}

	// Second call simulates crash recovery re-running the relocation.
	if err := MoveToSent(item, sent); err != nil {
		t.Fatalf("repeated move should succeed: %v", err)
	}
}

func TestMoveToSent_CarriesSidecars(t *testing.T) {
	root := t.TempDir()
	clips := filepath.Join(root, "clips")
	sent := filepath.Join(root, "sent")
	if err := os.MkdirAll(clips, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(clips, "clip.mp4"), 8)
	writeFile(t, filepath.Join(clips, "clip.srt"), 2)
	writeFile(t, filepath.Join(clips, "clip.png"), 2)

	batch, err := Scan(clips, testExtensions, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := MoveToSent(batch.Pending[0], sent); err != nil {
		t.Fatalf("move: %v", err)
	}
	for _, name := range []string{"clip.mp4", "clip.srt", "clip.png"} {
		if _, err := os.Stat(filepath.Join(sent, name)); err != nil {
			t.Fatalf("%s not relocated: %v", name, err)
		}
	}
}
