// Package manifest handles parsing and validation of Genesis archetype
// manifests. A manifest declares an archetype's identity, recommended stack,
// guided question set, placeholder tokens, and the directory/file template it
// generates. Manifests are YAML documents validated against the embedded JSON
// Schema in schema/archetype.schema.json.
package manifest
