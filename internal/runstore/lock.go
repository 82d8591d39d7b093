package runstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

const (
	runLockDirName   = ".run.lock"
	runLockOwnerFile = "owner.json"
)

// ErrLockHeld reports that another live process holds the run lock. The run
// aborts immediately instead of queuing; a second concurrent run would race
// on the ledger and the clips folder.
var ErrLockHeld = errors.New("another run is already in progress")

// StaleLockError reports a lock whose recorded owner is no longer alive, or
// whose owner record cannot be read. The engine never removes another run's
// lock on its own; the operator must inspect and delete the lock directory.
type StaleLockError struct {
	LockDir string
	PID     int
}

func (e *StaleLockError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("stale run lock at %s (owner pid %d is not running); remove the directory manually after confirming no run is active", e.LockDir, e.PID)
	}
	return fmt.Sprintf("unreadable run lock at %s; remove the directory manually after confirming no run is active", e.LockDir)
}

type RunLock struct {
	lockDir string
}

type runLockOwner struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

// AcquireRunLock takes the host-local execution lock for workDir. Acquisition
// fails fast: a live holder yields ErrLockHeld, a dead or unreadable holder
// yields *StaleLockError.
func AcquireRunLock(workDir string) (RunLock, error) {
	target := strings.TrimSpace(workDir)
	if target == "" {
		return RunLock{}, fmt.Errorf("work directory is required")
	}

	lockDir := filepath.Join(target, runLockDirName)
	if err := os.Mkdir(lockDir, 0o755); err != nil {
		if os.IsExist(err) {
			return RunLock{}, classifyHeldLock(lockDir)
		}
		return RunLock{}, fmt.Errorf("acquire run lock for %s: %w", target, err)
	}

	owner := runLockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostnameOrUnknown(),
	}
	ownerPath := filepath.Join(lockDir, runLockOwnerFile)
	if err := WriteJSON(ownerPath, owner); err != nil {
		_ = os.Remove(lockDir)
		return RunLock{}, fmt.Errorf("write run lock owner for %s: %w", target, err)
	}

	return RunLock{lockDir: lockDir}, nil
}

func classifyHeldLock(lockDir string) error {
	ownerPath := filepath.Join(lockDir, runLockOwnerFile)
	var owner runLockOwner
	if err := ReadJSON(ownerPath, &owner); err != nil || owner.PID <= 0 {
		return &StaleLockError{LockDir: lockDir}
	}
	if processAlive(owner.PID) {
		return fmt.Errorf(
			"%w: locked since %s (pid=%d host=%s)",
			ErrLockHeld, owner.CreatedAt, owner.PID, owner.Hostname,
		)
	}
	return &StaleLockError{LockDir: lockDir, PID: owner.PID}
}

// processAlive probes pid with signal 0. EPERM still means the process
// exists, just owned by someone else.
func processAlive(pid int) bool {
	err := syscall.Kill(pid, syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}

func (l RunLock) Release() error {
	if strings.TrimSpace(l.lockDir) == "" {
		return nil
	}
	_ = os.Remove(filepath.Join(l.lockDir, runLockOwnerFile))
	if err := os.Remove(l.lockDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("release run lock %s: %w", l.lockDir, err)
	}
	return nil
}

// LockState describes the lock for preflight reporting without acquiring it.
func LockState(workDir string) (held bool, stale bool, detail string) {
	lockDir := filepath.Join(workDir, runLockDirName)
	if _, err := os.Stat(lockDir); err != nil {
		return false, false, ""
	}
	err := classifyHeldLock(lockDir)
	var staleErr *StaleLockError
	if errors.As(err, &staleErr) {
		return true, true, staleErr.Error()
	}
	return true, false, err.Error()
}

func hostnameOrUnknown() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return "unknown"
	}
	return host
}
