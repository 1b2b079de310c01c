package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"usage", New(EUsage, "bad flag"), 2},
		{"prereq", New(EPrereqFailed, "no write permission"), 3},
		{"unknown archetype", New(EUnknownArchetype, "nope"), 4},
		{"validation", New(EValidationFailed, "empty answer"), 4},
		{"profile state", New(EProfileState, "wrong state"), 4},
		{"missing placeholder", New(EMissingPlaceholder, "no value"), 4},
		{"path escape", New(EPathEscape, "escape"), 4},
		{"duplicate path", New(EDuplicatePath, "dup"), 4},
		{"path conflict", New(EPathConflict, "exists"), 5},
		{"target locked", New(ETargetLocked, "locked"), 5},
		{"io", New(EIO, "disk full"), 5},
		{"cancelled", New(ECancelled, "ctrl-c"), 5},
		{"rollback incomplete", New(ERollbackIncomplete, "stuck"), 6},
		{"internal", New(EInternal, "bug"), 1},
		{"plain error", fmt.Errorf("not coded"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetCode_Wrapped(t *testing.T) {
	inner := New(EPathConflict, "file exists")
	outer := fmt.Errorf("executing plan: %w", inner)

	if got := GetCode(outer); got != EPathConflict {
		t.Errorf("GetCode() = %q, want %q", got, EPathConflict)
	}
}

func TestGetCode_PlainError(t *testing.T) {
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode() = %q, want empty", got)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(EIO, "writing file", cause)

	ge, ok := AsGenesisError(err)
	if !ok {
		t.Fatal("expected GenesisError")
	}
	if ge.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", ge.Unwrap(), cause)
	}
	if got := err.Error(); got != "E_IO: writing file" {
		t.Errorf("Error() = %q", got)
	}
}

func TestPrint_Format(t *testing.T) {
	err := NewWithDetails(EValidationFailed, "answer must not be empty",
		map[string]string{"question": "project_name", "archetype": "oracle"})

	var sb strings.Builder
	Print(&sb, err)
	got := sb.String()

	want := "error_code: E_VALIDATION_FAILED\n" +
		"answer must not be empty\n" +
		"  archetype: oracle\n" +
		"  question: project_name\n"
	if got != want {
		t.Errorf("Print() =\n%s\nwant\n%s", got, want)
	}
}

func TestPrint_PlainError(t *testing.T) {
	var sb strings.Builder
	Print(&sb, fmt.Errorf("plain failure"))
	if got := sb.String(); got != "plain failure\n" {
		t.Errorf("Print() = %q", got)
	}
}

func TestNewWithDetails_CopiesMap(t *testing.T) {
	details := map[string]string{"path": "src"}
	err := NewWithDetails(EDuplicatePath, "dup", details)
	details["path"] = "mutated"

	ge, _ := AsGenesisError(err)
	if ge.Details["path"] != "src" {
		t.Errorf("Details[path] = %q, want %q", ge.Details["path"], "src")
	}
}
