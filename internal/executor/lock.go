package executor

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
)

// lockSuffix is appended to the target root path to form the advisory lock
// file. The lock lives beside the root, not inside it, so rollback can
// remove a freshly created root without tripping over its own lock.
const lockSuffix = ".genesis.lock"

// defaultStaleAfter bounds how long a lock from a dead or wedged attempt
// can block new generations into the same root.
const defaultStaleAfter = 2 * time.Hour

// lockInfo is the metadata stored in a lock file for debugging and
// staleness detection.
type lockInfo struct {
	PID       int       `json:"pid"`
	AttemptID string    `json:"attempt_id"`
	CreatedAt time.Time `json:"created_at"`
}

// targetLock grants one in-flight execution exclusive ownership of a target
// root. Acquisition is atomic via O_EXCL file creation.
type targetLock struct {
	StaleAfter time.Duration
	Now        func() time.Time
	IsPIDAlive func(pid int) bool
}

func newTargetLock() targetLock {
	return targetLock{
		StaleAfter: defaultStaleAfter,
		Now:        time.Now,
		IsPIDAlive: isPIDAlive,
	}
}

// Acquire takes the lock for rootAbs and returns a release function.
// A live, non-stale lock held by another attempt yields E_TARGET_LOCKED.
func (l targetLock) Acquire(rootAbs, attemptID string) (release func() error, err error) {
	lockPath := rootAbs + lockSuffix
	const maxRetries = 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			info := lockInfo{PID: os.Getpid(), AttemptID: attemptID, CreatedAt: l.Now()}
			data, _ := json.Marshal(info)
			if _, writeErr := f.Write(data); writeErr != nil {
				f.Close()
				os.Remove(lockPath)
				return nil, errors.Wrap(errors.EIO, "writing lock file "+lockPath, writeErr)
			}
			if closeErr := f.Close(); closeErr != nil {
				os.Remove(lockPath)
				return nil, errors.Wrap(errors.EIO, "closing lock file "+lockPath, closeErr)
			}
			return func() error {
				if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
					return err
				}
				return nil
			}, nil
		}

		if !os.IsExist(err) {
			return nil, errors.Wrap(errors.EIO, "creating lock file "+lockPath, err)
		}

		// Lock file exists: decide whether it is stale.
		info, readErr := readLockInfo(lockPath)
		if readErr != nil {
			// Unreadable lock; fall back to file age.
			stat, statErr := os.Stat(lockPath)
			if statErr != nil || l.Now().Sub(stat.ModTime()) <= l.StaleAfter {
				return nil, lockedErr(rootAbs, lockPath, nil)
			}
			if removeErr := os.Remove(lockPath); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, lockedErr(rootAbs, lockPath, nil)
			}
			continue
		}

		if l.isStale(info) {
			if removeErr := os.Remove(lockPath); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, lockedErr(rootAbs, lockPath, info)
			}
			continue
		}

		return nil, lockedErr(rootAbs, lockPath, info)
	}

	return nil, lockedErr(rootAbs, rootAbs+lockSuffix, nil)
}

func lockedErr(rootAbs, lockPath string, info *lockInfo) error {
	details := map[string]string{"lock_file": lockPath}
	msg := fmt.Sprintf("target %s is locked by another generation", rootAbs)
	if info != nil {
		msg = fmt.Sprintf("target %s is locked by pid %d since %s",
			rootAbs, info.PID, info.CreatedAt.Format(time.RFC3339))
		details["attempt_id"] = info.AttemptID
	}
	return errors.NewWithDetails(errors.ETargetLocked, msg, details)
}

func readLockInfo(path string) (*lockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (l targetLock) isStale(info *lockInfo) bool {
	if !l.IsPIDAlive(info.PID) {
		return true
	}
	return l.Now().Sub(info.CreatedAt) > l.StaleAfter
}

// isPIDAlive checks process liveness with the Unix signal-0 trick.
func isPIDAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM means the process exists but is owned by someone else.
	if stderrors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}
