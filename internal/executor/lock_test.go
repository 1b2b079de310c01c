package executor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
)

func plantLock(t *testing.T, root string, info lockInfo) {
	t.Helper()
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(root+lockSuffix, data, 0600); err != nil {
		t.Fatal(err)
	}
}

func TestLock_AcquireAndRelease(t *testing.T) {
	root := filepath.Join(t.TempDir(), "demo")
	lock := newTargetLock()

	release, err := lock.Acquire(root, "attempt-1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := os.Stat(root + lockSuffix); err != nil {
		t.Fatalf("lock file missing: %v", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(root + lockSuffix); !os.IsNotExist(err) {
		t.Error("lock file should be gone after release")
	}
}

func TestLock_HeldByLiveProcess(t *testing.T) {
	root := filepath.Join(t.TempDir(), "demo")
	plantLock(t, root, lockInfo{PID: 1234, AttemptID: "other", CreatedAt: time.Now()})

	lock := newTargetLock()
	lock.IsPIDAlive = func(pid int) bool { return true }

	_, err := lock.Acquire(root, "attempt-2")
	if errors.GetCode(err) != errors.ETargetLocked {
		t.Fatalf("error = %v, want E_TARGET_LOCKED", err)
	}
}

func TestLock_DeadHolderIsStale(t *testing.T) {
	root := filepath.Join(t.TempDir(), "demo")
	plantLock(t, root, lockInfo{PID: 1234, AttemptID: "other", CreatedAt: time.Now()})

	lock := newTargetLock()
	lock.IsPIDAlive = func(pid int) bool { return false }

	release, err := lock.Acquire(root, "attempt-2")
	if err != nil {
		t.Fatalf("Acquire over dead holder: %v", err)
	}
	defer release()

	info, err := readLockInfo(root + lockSuffix)
	if err != nil {
		t.Fatalf("readLockInfo: %v", err)
	}
	if info.AttemptID != "attempt-2" {
		t.Errorf("AttemptID = %q, want attempt-2", info.AttemptID)
	}
}

func TestLock_AgedOutLockIsStale(t *testing.T) {
	root := filepath.Join(t.TempDir(), "demo")
	plantLock(t, root, lockInfo{PID: 1234, AttemptID: "other", CreatedAt: time.Now().Add(-3 * time.Hour)})

	lock := newTargetLock()
	lock.IsPIDAlive = func(pid int) bool { return true }

	release, err := lock.Acquire(root, "attempt-2")
	if err != nil {
		t.Fatalf("Acquire over aged lock: %v", err)
	}
	release()
}

func TestLock_UnreadableFreshLockBlocks(t *testing.T) {
	root := filepath.Join(t.TempDir(), "demo")
	if err := os.WriteFile(root+lockSuffix, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}

	lock := newTargetLock()
	_, err := lock.Acquire(root, "attempt-2")
	if errors.GetCode(err) != errors.ETargetLocked {
		t.Fatalf("error = %v, want E_TARGET_LOCKED", err)
	}
}
