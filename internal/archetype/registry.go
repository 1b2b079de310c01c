package archetype

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/manifest"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Summary is the presentation view of one registered archetype.
type Summary struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"display_name"`
	Focus       string                 `json:"focus"`
	Version     string                 `json:"version"`
	Stack       manifest.StackMetadata `json:"stack,omitempty"`
}

// Registry maps archetype identifiers to template manifests. It is populated
// with the built-in set at construction and may be extended at runtime with
// custom archetypes. Reads vastly outnumber writes; an RWMutex makes it safe
// to share across concurrent generation requests.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*manifest.ArchetypeManifest
	order []string // registration order, built-ins first
}

// NewRegistry loads the built-in archetype manifests from the embedded FS.
// Every built-in is schema-validated and structure-checked; a broken
// built-in is a packaging bug and fails construction.
func NewRegistry() (*Registry, error) {
	r := &Registry{byID: make(map[string]*manifest.ArchetypeManifest)}

	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("reading built-in archetypes: %w", err)
	}

	// ReadDir returns names sorted, which fixes the built-in listing order.
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		data, err := fs.ReadFile(builtinFS, "builtin/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading built-in archetype %s: %w", entry.Name(), err)
		}
		m, err := loadManifest(data)
		if err != nil {
			return nil, fmt.Errorf("built-in archetype %s: %w", entry.Name(), err)
		}
		if err := r.register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// loadManifest validates raw manifest YAML against the schema, then parses
// and structure-checks it.
func loadManifest(data []byte) (*manifest.ArchetypeManifest, error) {
	result, err := manifest.Validate(data)
	if err != nil {
		return nil, errors.Wrap(errors.EInvalidManifest, "validating manifest", err)
	}
	if !result.Valid {
		var msgs []string
		for _, issue := range result.Issues {
			msg := issue.Message
			if issue.Path != "" {
				msg = issue.Path + ": " + msg
			}
			msgs = append(msgs, msg)
		}
		return nil, errors.Newf(errors.EInvalidManifest,
			"manifest failed schema validation:\n  %s", strings.Join(msgs, "\n  "))
	}

	m, err := manifest.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.EInvalidManifest, "parsing manifest", err)
	}
	if err := m.Check(); err != nil {
		return nil, errors.Wrap(errors.EInvalidManifest, "checking manifest", err)
	}
	return m, nil
}

// Resolve returns the manifest registered under id.
func (r *Registry) Resolve(id string) (*manifest.ArchetypeManifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return nil, errors.Newf(errors.EUnknownArchetype,
			"unknown archetype %q: known archetypes are %s", id, strings.Join(r.idsLocked(), ", "))
	}
	return m, nil
}

// Register adds a custom archetype manifest at runtime. Registration fails
// if the identifier is already taken.
func (r *Registry) Register(m *manifest.ArchetypeManifest) error {
	if err := m.Check(); err != nil {
		return errors.Wrap(errors.EInvalidManifest, "checking manifest", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(m)
}

// RegisterYAML validates, parses, and registers raw manifest YAML. Used for
// custom archetypes supplied via --manifest.
func (r *Registry) RegisterYAML(data []byte) (*manifest.ArchetypeManifest, error) {
	m, err := loadManifest(data)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// register assumes the write lock (or exclusive access during construction).
func (r *Registry) register(m *manifest.ArchetypeManifest) error {
	if _, exists := r.byID[m.Name]; exists {
		return errors.Newf(errors.EDuplicateArchetype, "archetype %q is already registered", m.Name)
	}
	r.byID[m.Name] = m
	r.order = append(r.order, m.Name)
	return nil
}

// List returns summaries of all registered archetypes in registration order.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		m := r.byID[id]
		out = append(out, Summary{
			ID:          m.Name,
			DisplayName: m.DisplayName,
			Focus:       m.Focus,
			Version:     m.Version,
			Stack:       m.Stack,
		})
	}
	return out
}

// IDs returns the sorted identifiers of all registered archetypes.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.idsLocked()
}

func (r *Registry) idsLocked() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
