package executor

import (
	"os"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/platform"
)

type entryKind string

const (
	entryCreateDir entryKind = "create-dir"
	entryWriteFile entryKind = "write-file"
)

// journalEntry records one applied operation with enough state to undo it.
// For operations that touched a pre-existing path, the prior content and
// mode are captured so rollback restores rather than deletes.
type journalEntry struct {
	Kind        entryKind
	Abs         string
	Rel         string
	Existed     bool
	PrevContent []byte
	PrevMode    os.FileMode
}

// journal is the in-memory undo log for a single execution attempt. Entries
// are appended in apply order and reversed during rollback.
type journal struct {
	entries []journalEntry
}

func (j *journal) record(e journalEntry) {
	j.entries = append(j.entries, e)
}

func (j *journal) len() int {
	return len(j.entries)
}

// revert undoes a single entry. Directories created by this attempt are
// removed only when empty, so user files that appeared mid-run survive.
func (e journalEntry) revert() error {
	switch e.Kind {
	case entryCreateDir:
		if e.Existed {
			return nil
		}
		err := os.Remove(e.Abs)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		// A non-empty directory means something outside this attempt put
		// files there; leave it in place.
		if isDirNotEmpty(e.Abs) {
			return nil
		}
		return err
	case entryWriteFile:
		if !e.Existed {
			if err := os.Remove(e.Abs); err != nil && !os.IsNotExist(err) {
				return err
			}
			return nil
		}
		if err := os.WriteFile(e.Abs, e.PrevContent, e.PrevMode); err != nil {
			return err
		}
		return platform.Chmod(e.Abs, e.PrevMode)
	}
	return nil
}

func isDirNotEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	return err == nil && len(entries) > 0
}
