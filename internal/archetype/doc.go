// Package archetype holds the registry of project archetypes: the built-in
// set embedded at compile time plus any custom manifests registered at
// runtime. Archetypes differ only in data (question sets, templates, stack
// metadata), so the registry is a plain lookup table, read-mostly and safe
// to share across concurrent generation requests.
package archetype
