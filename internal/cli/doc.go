// Package cli defines the genesis command tree.
package cli
