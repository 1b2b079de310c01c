package executor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/plan"
)

// Status is the terminal outcome of an execution attempt.
type Status string

const (
	// StatusCommitted means every operation applied and the result is durable.
	StatusCommitted Status = "committed"
	// StatusRolledBack means an operation failed and every prior operation
	// was undone; the target is as it was before the attempt.
	StatusRolledBack Status = "rolled-back"
)

// Result describes what an execution attempt did to the target.
type Result struct {
	Status    Status
	AttemptID string
	// Created lists the paths this attempt brought into existence, relative
	// to the target root, in apply order. Empty unless committed.
	Created []string
	// Reason carries the code of the failure that triggered rollback.
	Reason errors.Code
}

const (
	dirMode  os.FileMode = 0755
	fileMode os.FileMode = 0644
)

// Executor applies operation plans transactionally. Each Execute call is a
// single attempt: it either commits every operation or rolls all of them
// back by replaying an in-memory journal in reverse.
type Executor struct {
	logger zerolog.Logger
	lock   targetLock
	newID  func() string
}

// New returns an Executor that logs per-operation progress to logger.
func New(logger zerolog.Logger) *Executor {
	return &Executor{
		logger: logger,
		lock:   newTargetLock(),
		newID:  uuid.NewString,
	}
}

// Execute applies every operation in p under targetRoot. The root directory
// itself is created if missing (its parent must already exist) and is part
// of the transaction. The returned error is nil only when the result is
// committed; a rolled-back attempt returns the error that forced the
// rollback, and a rollback that itself fails returns E_ROLLBACK_INCOMPLETE.
func (e *Executor) Execute(ctx context.Context, p plan.OperationPlan, targetRoot string) (*Result, error) {
	rootAbs, err := filepath.Abs(targetRoot)
	if err != nil {
		return nil, errors.Wrap(errors.EIO, "resolving target root "+targetRoot, err)
	}

	attemptID := e.newID()
	log := e.logger.With().Str("attempt_id", attemptID).Str("target", rootAbs).Logger()

	release, err := e.lock.Acquire(rootAbs, attemptID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if relErr := release(); relErr != nil {
			log.Warn().Err(relErr).Msg("failed to release target lock")
		}
	}()

	log.Info().Int("operations", len(p)).Msg("starting execution")

	j := &journal{}
	if err := e.run(ctx, log, j, p, rootAbs); err != nil {
		return e.rollback(log, j, attemptID, err)
	}

	created := make([]string, 0, j.len())
	for _, entry := range j.entries {
		if !entry.Existed {
			created = append(created, entry.Rel)
		}
	}
	log.Info().Int("created", len(created)).Msg("execution committed")
	return &Result{Status: StatusCommitted, AttemptID: attemptID, Created: created}, nil
}

// run applies the target root plus every plan operation, journaling each
// mutation. The first failure aborts with the journal intact.
func (e *Executor) run(ctx context.Context, log zerolog.Logger, j *journal, p plan.OperationPlan, rootAbs string) error {
	if err := e.ensureRoot(j, rootAbs); err != nil {
		return err
	}

	for _, op := range p {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ECancelled, "execution cancelled", err)
		}

		abs := filepath.Join(rootAbs, filepath.FromSlash(op.Path))
		switch op.Kind {
		case plan.OpCreateDir:
			if err := e.createDir(j, abs, op.Path); err != nil {
				return err
			}
			log.Debug().Str("op", "create-dir").Str("path", op.Path).Msg("applied")
		case plan.OpWriteFile:
			if err := e.writeFile(j, abs, op); err != nil {
				return err
			}
			log.Debug().Str("op", "write-file").Str("path", op.Path).Int("bytes", len(op.Content)).Msg("applied")
		default:
			return errors.Newf(errors.EInternal, "unknown operation kind %q", op.Kind)
		}
	}
	return nil
}

// ensureRoot creates the target root when missing and journals the outcome
// so rollback of a fresh root removes it. The root's parent must exist.
func (e *Executor) ensureRoot(j *journal, rootAbs string) error {
	info, err := os.Stat(rootAbs)
	switch {
	case err == nil && info.IsDir():
		j.record(journalEntry{Kind: entryCreateDir, Abs: rootAbs, Rel: ".", Existed: true})
		return nil
	case err == nil:
		return errors.NewWithDetails(errors.EPathConflict,
			"target root exists and is not a directory",
			map[string]string{"path": rootAbs})
	case !os.IsNotExist(err):
		return errors.Wrap(errors.EIO, "inspecting target root "+rootAbs, err)
	}

	if err := os.Mkdir(rootAbs, dirMode); err != nil {
		return errors.Wrap(errors.EIO, "creating target root "+rootAbs, err)
	}
	j.record(journalEntry{Kind: entryCreateDir, Abs: rootAbs, Rel: ".", Existed: false})
	return nil
}

func (e *Executor) createDir(j *journal, abs, rel string) error {
	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		j.record(journalEntry{Kind: entryCreateDir, Abs: abs, Rel: rel, Existed: true})
		return nil
	case err == nil:
		return errors.NewWithDetails(errors.EPathConflict,
			"a file occupies a planned directory path",
			map[string]string{"path": rel})
	case !os.IsNotExist(err):
		return errors.Wrap(errors.EIO, "inspecting "+rel, err)
	}

	if err := os.Mkdir(abs, dirMode); err != nil {
		return errors.Wrap(errors.EIO, "creating directory "+rel, err)
	}
	j.record(journalEntry{Kind: entryCreateDir, Abs: abs, Rel: rel, Existed: false})
	return nil
}

func (e *Executor) writeFile(j *journal, abs string, op plan.Operation) error {
	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return errors.NewWithDetails(errors.EPathConflict,
			"a directory occupies a planned file path",
			map[string]string{"path": op.Path})
	case err == nil && !op.Overwrite:
		return errors.NewWithDetails(errors.EPathConflict,
			"file already exists and the template does not permit overwriting it",
			map[string]string{"path": op.Path})
	case err == nil:
		prev, readErr := os.ReadFile(abs)
		if readErr != nil {
			return errors.Wrap(errors.EIO, "reading existing file "+op.Path, readErr)
		}
		if writeErr := os.WriteFile(abs, op.Content, info.Mode().Perm()); writeErr != nil {
			return errors.Wrap(errors.EIO, "writing file "+op.Path, writeErr)
		}
		j.record(journalEntry{
			Kind: entryWriteFile, Abs: abs, Rel: op.Path,
			Existed: true, PrevContent: prev, PrevMode: info.Mode().Perm(),
		})
		return nil
	case !os.IsNotExist(err):
		return errors.Wrap(errors.EIO, "inspecting "+op.Path, err)
	}

	if err := os.WriteFile(abs, op.Content, fileMode); err != nil {
		return errors.Wrap(errors.EIO, "writing file "+op.Path, err)
	}
	j.record(journalEntry{Kind: entryWriteFile, Abs: abs, Rel: op.Path, Existed: false})
	return nil
}

// rollback replays the journal in reverse. A clean rollback surfaces the
// original failure; a rollback that cannot fully undo surfaces
// E_ROLLBACK_INCOMPLETE naming the paths left in an unknown state.
func (e *Executor) rollback(log zerolog.Logger, j *journal, attemptID string, cause error) (*Result, error) {
	log.Warn().Err(cause).Int("journal_entries", j.len()).Msg("execution failed, rolling back")

	var unreversed []string
	for i := j.len() - 1; i >= 0; i-- {
		entry := j.entries[i]
		if err := entry.revert(); err != nil {
			log.Error().Err(err).Str("path", entry.Rel).Msg("rollback step failed")
			unreversed = append(unreversed, entry.Rel)
		}
	}

	reason := errors.GetCode(cause)
	if reason == "" {
		reason = errors.EInternal
	}

	if len(unreversed) > 0 {
		return &Result{Status: StatusRolledBack, AttemptID: attemptID, Reason: reason},
			errors.NewWithDetails(errors.ERollbackIncomplete,
				"rollback could not restore every path; manual inspection required",
				map[string]string{
					"cause":      cause.Error(),
					"unreversed": strings.Join(unreversed, ", "),
				})
	}

	log.Info().Msg("rollback complete, target restored")
	return &Result{Status: StatusRolledBack, AttemptID: attemptID, Reason: reason}, cause
}
