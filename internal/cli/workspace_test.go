package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"yt-bulk-scheduler/internal/config"
	"yt-bulk-scheduler/internal/ledger"
	"yt-bulk-scheduler/internal/model"
)

func TestInitWorkspace_CreatesLayoutAndConfig(t *testing.T) {
	root := t.TempDir()
	paths := newWorkspacePaths(root)

	res, err := initWorkspace(paths)
	if err != nil {
		t.Fatalf("initWorkspace: %v", err)
	}
	if !res.CreatedConfig {
		t.Fatal("expected starter config to be created")
	}
	for _, dir := range []string{paths.ClipsDir, paths.SentDir, paths.LogsDir, paths.BackupsDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s to exist", dir)
		}
	}

	// Starter config must resolve without errors.
	fc, err := config.Load(paths.ConfigPath)
	if err != nil {
		t.Fatalf("load starter config: %v", err)
	}
	if _, err := config.Resolve(fc, config.Overrides{}, time.Now()); err != nil {
		t.Fatalf("starter config does not resolve: %v", err)
	}
}

func TestInitWorkspace_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	paths := newWorkspacePaths(root)

	if _, err := initWorkspace(paths); err != nil {
		t.Fatalf("first init: %v", err)
	}
	// Scribble on the config; a second init must not overwrite it.
	custom := []byte(`{"timezone":"UTC","hour_slots":[6]}` + "\n")
	if err := os.WriteFile(paths.ConfigPath, custom, 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := initWorkspace(paths)
	if err != nil {
		t.Fatalf("second init: %v", err)
	}
	if res.CreatedConfig {
		t.Fatal("second init must not recreate config")
	}
	got, err := os.ReadFile(paths.ConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(custom) {
		t.Fatal("second init overwrote an existing config")
	}
}

func TestDoctor_FailsOnMissingLayout(t *testing.T) {
	paths := newWorkspacePaths(t.TempDir())

	res := runDoctorChecks(paths)
	if res.OK {
		t.Fatal("doctor must fail before init has run")
	}

	found := map[string]bool{}
	for _, c := range res.Checks {
		found[c.Name] = true
		if c.Name == "clips_dir" && c.OK {
			t.Fatal("clips_dir check must fail when the directory is missing")
		}
	}
	for _, name := range []string{"config", "settings", "clips_dir", "ledger", "run_lock"} {
		if !found[name] {
			t.Fatalf("doctor did not run the %s check", name)
		}
	}
}

func TestDoctor_PassesAfterInit_MissingCredentialsAdvisory(t *testing.T) {
	paths := newWorkspacePaths(t.TempDir())
	if _, err := initWorkspace(paths); err != nil {
		t.Fatal(err)
	}

	res := runDoctorChecks(paths)
	if !res.OK {
		t.Fatalf("doctor failed on a freshly initialized workspace: %+v", res.Checks)
	}
	for _, c := range res.Checks {
		if (c.Name == "client_secret" || c.Name == "token") && c.OK {
			t.Fatalf("%s check should report missing credentials", c.Name)
		}
	}
}

func TestDoctor_ReportsCorruptLedger(t *testing.T) {
	paths := newWorkspacePaths(t.TempDir())
	if _, err := initWorkspace(paths); err != nil {
		t.Fatal(err)
	}
	l := ledger.Open(paths.LedgerPath)
	if err := l.Append(model.LedgerEntry{
		Kind:      model.RecordAttempt,
		Timestamp: time.Now().Format(time.RFC3339),
		Filename:  "a.mp4",
		Outcome:   model.OutcomeSuccess,
	}); err != nil {
		t.Fatal(err)
	}

	res := runDoctorChecks(paths)
	for _, c := range res.Checks {
		if c.Name == "ledger" {
			if !c.OK {
				t.Fatalf("ledger check failed: %s", c.Message)
			}
			return
		}
	}
	t.Fatal("ledger check missing")
}

func TestRun_UnknownCommand(t *testing.T) {
	if err := Run([]string{"frobnicate"}); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}

func TestWorkspacePaths_Layout(t *testing.T) {
	paths := newWorkspacePaths("/work")
	if paths.LedgerPath != filepath.Join("/work", "logs", "upload_history.jsonl") {
		t.Fatalf("unexpected ledger path %s", paths.LedgerPath)
	}
	if paths.ConfigPath != filepath.Join("/work", "config.json") {
		t.Fatalf("unexpected config path %s", paths.ConfigPath)
	}
}
