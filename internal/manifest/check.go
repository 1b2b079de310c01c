package manifest

import (
	"fmt"
	"path"
	"strings"
)

// Check performs structural validation beyond the JSON schema: template
// paths must be relative, slash-separated, free of `..` segments, and each
// node must be exactly one of dir/file. Placeholder and question keys must
// be unique. Post-substitution path collisions are the resolver's job; this
// catches manifests that are malformed before any profile exists.
func (m *ArchetypeManifest) Check() error {
	if m.Type != TypeArchetype {
		return fmt.Errorf("manifest %s: type is %q, expected %q", m.Name, m.Type, TypeArchetype)
	}

	seenQ := make(map[string]bool)
	for _, q := range m.Questions {
		if seenQ[q.Key] {
			return fmt.Errorf("manifest %s: duplicate question key %q", m.Name, q.Key)
		}
		seenQ[q.Key] = true
		if q.Type == QuestionEnum && len(q.Options) == 0 {
			return fmt.Errorf("manifest %s: enum question %q declares no options", m.Name, q.Key)
		}
		if q.Type == QuestionEnum && q.Default != "" && !contains(q.Options, q.Default) {
			return fmt.Errorf("manifest %s: question %q default %q is not an option", m.Name, q.Key, q.Default)
		}
	}

	seenP := make(map[string]bool)
	for _, p := range m.Placeholders {
		if seenP[p.Name] {
			return fmt.Errorf("manifest %s: duplicate placeholder %q", m.Name, p.Name)
		}
		seenP[p.Name] = true
	}

	for i, n := range m.Template {
		if n.Dir != "" && n.File != "" {
			return fmt.Errorf("manifest %s: template node %d declares both dir and file", m.Name, i)
		}
		if n.Dir == "" && n.File == "" {
			return fmt.Errorf("manifest %s: template node %d declares neither dir nor file", m.Name, i)
		}
		if err := checkRelativePath(n.Path()); err != nil {
			return fmt.Errorf("manifest %s: template node %d: %w", m.Name, i, err)
		}
	}
	return nil
}

// checkRelativePath rejects absolute paths, backslashes, and `..` segments.
// Placeholder tokens may appear in segments; traversal introduced through a
// substituted value is caught again by the resolver after substitution.
func checkRelativePath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if strings.Contains(p, "\\") {
		return fmt.Errorf("path %q must use forward slashes", p)
	}
	if path.IsAbs(p) {
		return fmt.Errorf("path %q must be relative", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return fmt.Errorf("path %q must not contain '..'", p)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
