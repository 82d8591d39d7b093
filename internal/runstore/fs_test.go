package runstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteJSONThenReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	in := map[string]int{"a": 1, "b": 2}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out map[string]int
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Fatalf("round trip mismatch: %v", out)
	}
}

func TestAppendLine_AddsNewlinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")

	if err := AppendLine(path, []byte(`{"n":1}`)); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	if err := AppendLine(path, []byte(`{"n":2}`+"\n")); err != nil {
		t.Fatalf("append 2: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(data))
	}
	if lines[0] != `{"n":1}` || lines[1] != `{"n":2}` {
		t.Fatalf("unexpected lines: %v", lines)
	}
}
