// Package errors defines the stable error code system for genesis.
package errors

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// Code is a stable error code string.
type Code string

// Error codes. Stable public contract: automation keys off these strings
// and the exit codes derived from them.
const (
	EUsage Code = "E_USAGE"

	// Archetype registry
	EUnknownArchetype   Code = "E_UNKNOWN_ARCHETYPE"
	EDuplicateArchetype Code = "E_DUPLICATE_ARCHETYPE"
	EInvalidManifest    Code = "E_INVALID_MANIFEST"

	// Profile building
	EValidationFailed Code = "E_VALIDATION_FAILED"
	EProfileState     Code = "E_PROFILE_STATE"

	// Template resolution
	EMissingPlaceholder Code = "E_MISSING_PLACEHOLDER"
	EPathEscape         Code = "E_PATH_ESCAPE"
	EDuplicatePath      Code = "E_DUPLICATE_PATH"

	// Prerequisite checks
	EPrereqFailed Code = "E_PREREQ_FAILED"

	// Execution
	EPathConflict       Code = "E_PATH_CONFLICT"
	ETargetLocked       Code = "E_TARGET_LOCKED"
	EIO                 Code = "E_IO"
	ECancelled          Code = "E_CANCELLED"
	ERollbackIncomplete Code = "E_ROLLBACK_INCOMPLETE"

	EInternal Code = "E_INTERNAL"
)

// GenesisError is the standard error type for genesis errors.
type GenesisError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context (question key, path, ...)
}

// Error returns the stable error format: "CODE: message".
func (e *GenesisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *GenesisError) Unwrap() error {
	return e.Cause
}

// New creates a new GenesisError with the given code and message.
func New(code Code, msg string) error {
	return &GenesisError{Code: code, Msg: msg}
}

// Newf creates a new GenesisError with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &GenesisError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// NewWithDetails creates a new GenesisError with code, message, and details.
// The details map is defensively copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &GenesisError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new GenesisError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &GenesisError{Code: code, Msg: msg, Cause: err}
}

// GetCode extracts the error code from an error, or empty string if not a GenesisError.
func GetCode(err error) Code {
	var ge *GenesisError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// AsGenesisError returns (*GenesisError, true) if err is or wraps a GenesisError.
func AsGenesisError(err error) (*GenesisError, bool) {
	var ge *GenesisError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the process exit code for an error.
//
//	0 nil
//	2 usage
//	3 hard prerequisite failure
//	4 validation or resolution failure (no file-system mutation occurred)
//	5 execution failed and was fully rolled back
//	6 rollback incomplete (on-disk state needs manual inspection)
//	1 everything else
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case EUsage:
		return 2
	case EPrereqFailed:
		return 3
	case EUnknownArchetype, EDuplicateArchetype, EInvalidManifest,
		EValidationFailed, EProfileState,
		EMissingPlaceholder, EPathEscape, EDuplicatePath:
		return 4
	case EPathConflict, ETargetLocked, EIO, ECancelled:
		return 5
	case ERollbackIncomplete:
		return 6
	default:
		return 1
	}
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var ge *GenesisError
	if errors.As(err, &ge) {
		fmt.Fprintf(w, "error_code: %s\n", ge.Code)
		fmt.Fprintln(w, ge.Msg)
		keys := make([]string, 0, len(ge.Details))
		for k := range ge.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, ge.Details[k])
		}
		return
	}
	fmt.Fprintln(w, err.Error())
}
