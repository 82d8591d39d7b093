package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"yt-bulk-scheduler/internal/config"
	"yt-bulk-scheduler/internal/ledger"
	"yt-bulk-scheduler/internal/runstore"
)

// workspacePaths resolves every well-known file and directory under one
// workspace root. All commands go through this so the layout is defined in
// exactly one place.
type workspacePaths struct {
	Root         string
	ConfigPath   string
	ClipsDir     string
	SentDir      string
	LogsDir      string
	LedgerPath   string
	ErrorLogPath string
	BackupsDir   string
	ClientSecret string
	TokenPath    string
}

func newWorkspacePaths(root string) workspacePaths {
	return workspacePaths{
		Root:         root,
		ConfigPath:   filepath.Join(root, "config.json"),
		ClipsDir:     filepath.Join(root, "clips"),
		SentDir:      filepath.Join(root, "sent"),
		LogsDir:      filepath.Join(root, "logs"),
		LedgerPath:   filepath.Join(root, "logs", "upload_history.jsonl"),
		ErrorLogPath: filepath.Join(root, "logs", "error.log"),
		BackupsDir:   filepath.Join(root, "backups"),
		ClientSecret: filepath.Join(root, "client_secret.json"),
		TokenPath:    filepath.Join(root, "token.json"),
	}
}

type doctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type doctorResult struct {
	OK     bool          `json:"ok"`
	Checks []doctorCheck `json:"checks"`
}

type initResult struct {
	Root          string       `json:"root"`
	CreatedConfig bool         `json:"created_config"`
	CreatedDirs   []string     `json:"created_dirs"`
	Doctor        doctorResult `json:"doctor"`
}

// initWorkspace creates the directory layout and a starter config, then runs
// the doctor checks. Existing files are never overwritten.
func initWorkspace(paths workspacePaths) (initResult, error) {
	res := initResult{Root: paths.Root}

	for _, dir := range []string{paths.ClipsDir, paths.SentDir, paths.LogsDir, paths.BackupsDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := runstore.Mkdir(dir); err != nil {
				return res, err
			}
			res.CreatedDirs = append(res.CreatedDirs, dir)
		}
	}

	if _, err := os.Stat(paths.ConfigPath); os.IsNotExist(err) {
		if err := runstore.WriteJSON(paths.ConfigPath, config.Default()); err != nil {
			return res, fmt.Errorf("write starter config: %w", err)
		}
		res.CreatedConfig = true
	}

	res.Doctor = runDoctorChecks(paths)
	return res, nil
}

// runDoctorChecks verifies the workspace without changing it. Each check is
// independent so a single failure still reports the rest.
func runDoctorChecks(paths workspacePaths) doctorResult {
	var checks []doctorCheck
	add := func(name string, ok bool, msg string) {
		checks = append(checks, doctorCheck{Name: name, OK: ok, Message: msg})
	}

	fc, err := config.Load(paths.ConfigPath)
	if err != nil {
		add("config", false, err.Error())
	} else if _, statErr := os.Stat(paths.ConfigPath); os.IsNotExist(statErr) {
		add("config", true, "not present; defaults apply (run init to create one)")
	} else {
		add("config", true, paths.ConfigPath)
	}

	if _, err := config.Resolve(fc, config.Overrides{}, time.Now()); err != nil {
		add("settings", false, err.Error())
	} else {
		add("settings", true, "config resolves and validates")
	}

	for _, dir := range []struct{ name, path string }{
		{"clips_dir", paths.ClipsDir},
		{"sent_dir", paths.SentDir},
		{"logs_dir", paths.LogsDir},
		{"backups_dir", paths.BackupsDir},
	} {
		info, err := os.Stat(dir.path)
		switch {
		case err != nil:
			add(dir.name, false, dir.path+" missing (run init)")
		case !info.IsDir():
			add(dir.name, false, dir.path+" exists but is not a directory")
		default:
			add(dir.name, true, dir.path)
		}
	}

	l := ledger.Open(paths.LedgerPath)
	if entries, err := l.ReadAll(); err != nil {
		add("ledger", false, err.Error())
	} else {
		add("ledger", true, fmt.Sprintf("%d entries", len(entries)))
	}

	if _, err := os.Stat(paths.ClientSecret); err != nil {
		add("client_secret", false, paths.ClientSecret+" missing (download from the API console)")
	} else {
		add("client_secret", true, paths.ClientSecret)
	}
	if _, err := os.Stat(paths.TokenPath); err != nil {
		add("token", false, paths.TokenPath+" missing (run auth)")
	} else {
		add("token", true, paths.TokenPath)
	}

	held, stale, detail := runstore.LockState(paths.Root)
	switch {
	case stale:
		add("run_lock", false, "stale lock present: "+detail)
	case held:
		add("run_lock", false, "a run is in progress: "+detail)
	default:
		add("run_lock", true, "free")
	}

	ok := true
	for _, c := range checks {
		// Missing credentials are advisory; everything else gates.
		if !c.OK && c.Name != "client_secret" && c.Name != "token" {
			ok = false
		}
	}
	return doctorResult{OK: ok, Checks: checks}
}
