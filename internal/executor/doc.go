// Package executor applies operation plans to the file system
// transactionally. An attempt holds an advisory lock on the target root,
// journals every mutation it makes, and on any failure replays the journal
// in reverse so the target ends up exactly as it started.
package executor
