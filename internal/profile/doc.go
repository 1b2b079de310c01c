// Package profile assembles validated project profiles through a guided
// question/answer state machine. A builder walks one conversation from
// archetype selection through per-question validation and review to the
// immutable Profile value the resolver consumes. The builder performs no
// file-system or network I/O.
package profile
