package plan

import (
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/manifest"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/profile"
)

// tokenPattern matches {{name}} placeholder tokens, with optional inner
// whitespace.
var tokenPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Resolve expands an archetype's template against a completed profile into
// an ordered OperationPlan rooted at targetRoot. Resolution is computed
// entirely in memory: on any failure no partial work exists, and identical
// (manifest, profile, targetRoot) inputs always yield an identical plan.
//
// Steps, in order: placeholder validation (fail fast on the first token with
// neither an answer nor a declared default), path substitution and escape
// checking, content substitution, parent-before-child ordering with implicit
// parent directories synthesized, and duplicate-path detection.
func Resolve(m *manifest.ArchetypeManifest, p *profile.Profile, targetRoot string) (OperationPlan, error) {
	values := substitutionValues(m, p)

	if err := checkPlaceholders(m, values); err != nil {
		return nil, err
	}

	rootAbs, err := filepath.Abs(targetRoot)
	if err != nil {
		return nil, errors.Wrap(errors.EPathEscape, "resolving target root "+targetRoot, err)
	}

	type fileNode struct {
		rel       string
		content   []byte
		overwrite bool
	}

	dirSet := make(map[string]bool)     // declared + implied directories
	declared := make(map[string]string) // final rel path -> kind, for collision checks
	var files []fileNode

	for _, node := range m.Template {
		rel, err := resolvePath(node.Path(), values, rootAbs)
		if err != nil {
			return nil, err
		}

		kind := "file"
		if node.IsDir() {
			kind = "dir"
		}
		if _, ok := declared[rel]; ok {
			// Two declared dirs, two files, or a dir/file mix on one path
			// are all manifest bugs.
			return nil, errors.NewWithDetails(errors.EDuplicatePath,
				"two template nodes resolve to the same path",
				map[string]string{"path": rel})
		}
		declared[rel] = kind

		if node.IsDir() {
			dirSet[rel] = true
			continue
		}

		content := substitute(node.Content, values)
		files = append(files, fileNode{rel: rel, content: []byte(content), overwrite: node.Overwrite})
	}

	// Synthesize implicit parent directories for every node.
	for rel := range declared {
		for parent := path.Dir(rel); parent != "." && parent != "/"; parent = path.Dir(parent) {
			if declared[parent] == "file" {
				return nil, errors.NewWithDetails(errors.EDuplicatePath,
					"a directory and a file resolve to the same path",
					map[string]string{"path": parent})
			}
			dirSet[parent] = true
		}
	}

	// Lexicographic order puts every parent before its children, and is
	// stable across runs.
	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	out := make(OperationPlan, 0, len(dirs)+len(files))
	for _, d := range dirs {
		out = append(out, Operation{Kind: OpCreateDir, Path: d})
	}
	for _, f := range files {
		out = append(out, Operation{Kind: OpWriteFile, Path: f.rel, Content: f.content, Overwrite: f.overwrite})
	}
	return out, nil
}

// substitutionValues merges profile answers with manifest placeholder
// defaults. Answers win; defaults only fill declared placeholders the
// profile never answered.
func substitutionValues(m *manifest.ArchetypeManifest, p *profile.Profile) map[string]string {
	values := p.Answers()
	for _, decl := range m.Placeholders {
		if _, ok := values[decl.Name]; !ok && decl.HasDefault() {
			values[decl.Name] = *decl.Default
		}
	}
	return values
}

// checkPlaceholders scans every template node in manifest order (path
// before content) and fails on the first token without a value.
func checkPlaceholders(m *manifest.ArchetypeManifest, values map[string]string) error {
	for _, node := range m.Template {
		if name, ok := firstUnresolved(node.Path(), values); ok {
			return missingPlaceholder(name, node.Path())
		}
		if !node.IsDir() {
			if name, ok := firstUnresolved(node.Content, values); ok {
				return missingPlaceholder(name, node.File)
			}
		}
	}
	return nil
}

func firstUnresolved(s string, values map[string]string) (string, bool) {
	for _, match := range tokenPattern.FindAllStringSubmatch(s, -1) {
		if _, ok := values[match[1]]; !ok {
			return match[1], true
		}
	}
	return "", false
}

func missingPlaceholder(name, where string) error {
	return errors.NewWithDetails(errors.EMissingPlaceholder,
		"placeholder {{"+name+"}} has no answer and no declared default",
		map[string]string{"placeholder": name, "node": where})
}

// substitute replaces every known token in s. Unknown tokens are left
// intact; checkPlaceholders has already rejected them.
func substitute(s string, values map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		name := tokenPattern.FindStringSubmatch(tok)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return tok
	})
}

// resolvePath substitutes tokens into a node path and verifies the result
// stays inside the target root after normalization.
func resolvePath(nodePath string, values map[string]string, rootAbs string) (string, error) {
	substituted := substitute(nodePath, values)
	cleaned := path.Clean(substituted)

	if cleaned == "." || cleaned == "" {
		return "", errors.NewWithDetails(errors.EPathEscape,
			"template path resolves to the target root itself",
			map[string]string{"path": nodePath})
	}

	abs := filepath.Join(rootAbs, filepath.FromSlash(cleaned))
	if abs != rootAbs && !strings.HasPrefix(abs, rootAbs+string(filepath.Separator)) {
		return "", errors.NewWithDetails(errors.EPathEscape,
			"template path escapes the target root after substitution",
			map[string]string{"path": substituted})
	}
	// A substituted absolute path or a leading parent segment also escapes.
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.NewWithDetails(errors.EPathEscape,
			"template path escapes the target root after substitution",
			map[string]string{"path": substituted})
	}

	return cleaned, nil
}
