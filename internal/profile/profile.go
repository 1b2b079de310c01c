package profile

import (
	"time"

	"go.yaml.in/yaml/v3"
)

// Profile is the immutable record of one completed project configuration:
// the chosen archetype plus the validated answer set. A Profile is only
// produced by Builder.Accept; corrections go through a new builder pass,
// never through mutation.
type Profile struct {
	archetypeID        string
	projectName        string
	projectDescription string
	answers            map[string]string
	createdAt          time.Time
}

// ArchetypeID returns the chosen archetype identifier.
func (p *Profile) ArchetypeID() string { return p.archetypeID }

// ProjectName returns the project name answer.
func (p *Profile) ProjectName() string { return p.projectName }

// ProjectDescription returns the project description answer.
func (p *Profile) ProjectDescription() string { return p.projectDescription }

// CreatedAt returns the completion timestamp.
func (p *Profile) CreatedAt() time.Time { return p.createdAt }

// Answer returns the answer for a question key, with ok reporting presence.
func (p *Profile) Answer(key string) (string, bool) {
	v, ok := p.answers[key]
	return v, ok
}

// Answers returns a copy of the full answer map, including the universal
// project_name and project_description keys.
func (p *Profile) Answers() map[string]string {
	cp := make(map[string]string, len(p.answers))
	for k, v := range p.answers {
		cp[k] = v
	}
	return cp
}

// snapshot is the serialized form written into the generated tree.
type snapshot struct {
	Archetype          string            `yaml:"archetype"`
	ProjectName        string            `yaml:"project_name"`
	ProjectDescription string            `yaml:"project_description"`
	Answers            map[string]string `yaml:"answers,omitempty"`
	CreatedAt          string            `yaml:"created_at"`
}

// MarshalYAML serializes the profile for persistence in the generated
// project (docs/project_profile.yaml). Output is deterministic: yaml/v3
// sorts map keys.
func (p *Profile) MarshalYAML() ([]byte, error) {
	extra := make(map[string]string)
	for k, v := range p.answers {
		if k == KeyProjectName || k == KeyProjectDescription {
			continue
		}
		extra[k] = v
	}
	if len(extra) == 0 {
		extra = nil
	}
	return yaml.Marshal(snapshot{
		Archetype:          p.archetypeID,
		ProjectName:        p.projectName,
		ProjectDescription: p.projectDescription,
		Answers:            extra,
		CreatedAt:          p.createdAt.UTC().Format(time.RFC3339),
	})
}
