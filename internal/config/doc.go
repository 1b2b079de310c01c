// Package config manages persistent CLI settings stored in
// ~/.genesis/config.yaml, with environment-variable overrides under the
// GENESIS_ prefix.
package config
