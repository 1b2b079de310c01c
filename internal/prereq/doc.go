// Package prereq validates the host environment before generation begins.
// It evaluates a set of requirement specs (binary on PATH, minimum tool
// version, directory writability, network reachability) independently and
// reports pass/fail with remediation hints. The checker is a read-only gate:
// it never mutates state and carries no retry logic.
package prereq
