// Package plan turns an archetype template plus a completed profile into an
// ordered, pure-data list of file-system operations. Resolution is
// deterministic and performs no I/O, so plans are safe to preview, diff,
// and re-derive in tests.
package plan
