package plan

import (
	"fmt"
	"io"
)

// OpKind discriminates the two file-system operations a plan may contain.
type OpKind string

const (
	OpCreateDir OpKind = "create-dir"
	OpWriteFile OpKind = "write-file"
)

// Operation is one concrete file-system action. Paths are slash-separated
// and relative to the target root; the executor joins them at apply time.
type Operation struct {
	Kind      OpKind
	Path      string
	Content   []byte // file content, nil for directories
	Overwrite bool   // file may replace an existing file
}

// OperationPlan is an ordered sequence of operations. It is pure data:
// computing a plan performs no I/O, and every directory precedes any
// operation targeting a path nested beneath it.
type OperationPlan []Operation

// Dirs returns the directory operations in plan order.
func (p OperationPlan) Dirs() []Operation {
	var out []Operation
	for _, op := range p {
		if op.Kind == OpCreateDir {
			out = append(out, op)
		}
	}
	return out
}

// Files returns the file operations in plan order.
func (p OperationPlan) Files() []Operation {
	var out []Operation
	for _, op := range p {
		if op.Kind == OpWriteFile {
			out = append(out, op)
		}
	}
	return out
}

// Print writes a human-readable preview of the plan, used by dry runs.
func (p OperationPlan) Print(w io.Writer, targetRoot string) {
	fmt.Fprintf(w, "Plan: %d operations into %s\n\n", len(p), targetRoot)
	for _, op := range p {
		switch op.Kind {
		case OpCreateDir:
			fmt.Fprintf(w, "  mkdir  %s/\n", op.Path)
		case OpWriteFile:
			note := ""
			if op.Overwrite {
				note = "  (overwrite permitted)"
			}
			fmt.Fprintf(w, "  write  %s  [%d bytes]%s\n", op.Path, len(op.Content), note)
		}
	}
}
