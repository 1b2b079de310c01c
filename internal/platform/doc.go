// Package platform isolates the OS-specific behavior the executor depends
// on, currently permission-bit handling that differs on Windows.
package platform
