package profile

import (
	"strings"
	"testing"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/manifest"
)

// stubSource resolves a fixed set of manifests.
type stubSource map[string]*manifest.ArchetypeManifest

func (s stubSource) Resolve(id string) (*manifest.ArchetypeManifest, error) {
	if m, ok := s[id]; ok {
		return m, nil
	}
	return nil, errors.Newf(errors.EUnknownArchetype, "unknown archetype %q", id)
}

func testManifest() *manifest.ArchetypeManifest {
	return &manifest.ArchetypeManifest{
		Name:        "oracle",
		Type:        manifest.TypeArchetype,
		Version:     "1.0.0",
		DisplayName: "The Oracle",
		Description: "Data projects",
		Questions: []manifest.Question{
			{Key: "organization_type", Prompt: "Org?", Type: manifest.QuestionEnum,
				Required: true, Options: []string{"personal", "startup", "enterprise"}},
			{Key: "include_notebooks", Prompt: "Notebooks?", Type: manifest.QuestionBool,
				Default: "true"},
		},
		Template: []manifest.TemplateNode{{Dir: "src"}},
	}
}

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return NewBuilder(stubSource{"oracle": testManifest()})
}

// completeBuilder walks a builder to Reviewing with a full answer set.
func completeBuilder(t *testing.T) *Builder {
	t.Helper()
	b := newTestBuilder(t)
	if err := b.SelectArchetype("oracle"); err != nil {
		t.Fatalf("SelectArchetype: %v", err)
	}
	answers := map[string]string{
		KeyProjectName:        "Insight Engine",
		KeyProjectDescription: "Forecasting service",
		"organization_type":   "startup",
	}
	for k, v := range answers {
		if err := b.Answer(k, v); err != nil {
			t.Fatalf("Answer(%s): %v", k, err)
		}
	}
	if err := b.Review(); err != nil {
		t.Fatalf("Review: %v", err)
	}
	return b
}

func TestBuilder_HappyPath(t *testing.T) {
	b := completeBuilder(t)
	if b.State() != Reviewing {
		t.Fatalf("State = %q, want %q", b.State(), Reviewing)
	}

	p, err := b.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if b.State() != Complete {
		t.Errorf("State = %q, want %q", b.State(), Complete)
	}
	if p.ArchetypeID() != "oracle" {
		t.Errorf("ArchetypeID = %q", p.ArchetypeID())
	}
	if p.ProjectName() != "Insight Engine" {
		t.Errorf("ProjectName = %q", p.ProjectName())
	}
	// Optional question with a default gets filled at review time.
	if v, ok := p.Answer("include_notebooks"); !ok || v != "true" {
		t.Errorf("Answer(include_notebooks) = %q, %v; want %q, true", v, ok, "true")
	}
}

func TestBuilder_UnknownArchetypeKeepsState(t *testing.T) {
	b := newTestBuilder(t)
	err := b.SelectArchetype("nonexistent")
	if errors.GetCode(err) != errors.EUnknownArchetype {
		t.Fatalf("error = %v, want E_UNKNOWN_ARCHETYPE", err)
	}
	if b.State() != SelectingArchetype {
		t.Errorf("State = %q, want %q", b.State(), SelectingArchetype)
	}
	// A valid selection still works afterwards.
	if err := b.SelectArchetype("oracle"); err != nil {
		t.Errorf("SelectArchetype after failure: %v", err)
	}
}

func TestBuilder_InvalidAnswersDoNotAdvance(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"empty required string", KeyProjectName, "   "},
		{"enum outside options", "organization_type", "collective"},
		{"bool garbage", "include_notebooks", "maybe"},
		{"unknown question", "color", "blue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder(t)
			if err := b.SelectArchetype("oracle"); err != nil {
				t.Fatalf("SelectArchetype: %v", err)
			}
			err := b.Answer(tt.key, tt.value)
			if errors.GetCode(err) != errors.EValidationFailed {
				t.Fatalf("error = %v, want E_VALIDATION_FAILED", err)
			}
			if b.State() != AnsweringQuestions {
				t.Errorf("State = %q, want %q", b.State(), AnsweringQuestions)
			}
			if _, ok := b.Answers()[tt.key]; ok && tt.key != "include_notebooks" {
				t.Errorf("invalid answer was recorded")
			}
		})
	}
}

func TestBuilder_BoolNormalization(t *testing.T) {
	tests := []struct{ in, want string }{
		{"yes", "true"}, {"Y", "true"}, {"1", "true"}, {"TRUE", "true"},
		{"no", "false"}, {"n", "false"}, {"0", "false"}, {"False", "false"},
	}
	for _, tt := range tests {
		b := newTestBuilder(t)
		if err := b.SelectArchetype("oracle"); err != nil {
			t.Fatalf("SelectArchetype: %v", err)
		}
		if err := b.Answer("include_notebooks", tt.in); err != nil {
			t.Fatalf("Answer(%q): %v", tt.in, err)
		}
		if got := b.Answers()["include_notebooks"]; got != tt.want {
			t.Errorf("Answer(%q) recorded %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuilder_ReviewRequiresAllRequired(t *testing.T) {
	b := newTestBuilder(t)
	if err := b.SelectArchetype("oracle"); err != nil {
		t.Fatalf("SelectArchetype: %v", err)
	}
	if err := b.Answer(KeyProjectName, "x"); err != nil {
		t.Fatalf("Answer: %v", err)
	}

	err := b.Review()
	if errors.GetCode(err) != errors.EValidationFailed {
		t.Fatalf("Review error = %v, want E_VALIDATION_FAILED", err)
	}
	if b.State() != AnsweringQuestions {
		t.Errorf("State = %q, want %q", b.State(), AnsweringQuestions)
	}
}

func TestBuilder_ReviseSingleAnswer(t *testing.T) {
	b := completeBuilder(t)

	if err := b.Revise("organization_type"); err != nil {
		t.Fatalf("Revise: %v", err)
	}
	if b.State() != AnsweringQuestions {
		t.Fatalf("State = %q, want %q", b.State(), AnsweringQuestions)
	}
	if _, ok := b.Answers()["organization_type"]; ok {
		t.Error("revised answer should be cleared")
	}
	if got := b.Answers()[KeyProjectName]; got != "Insight Engine" {
		t.Errorf("other answers must survive revision, got %q", got)
	}

	if err := b.Answer("organization_type", "enterprise"); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := b.Review(); err != nil {
		t.Fatalf("Review: %v", err)
	}
	p, err := b.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if v, _ := p.Answer("organization_type"); v != "enterprise" {
		t.Errorf("Answer(organization_type) = %q, want %q", v, "enterprise")
	}
}

func TestBuilder_StateGuards(t *testing.T) {
	b := newTestBuilder(t)

	if err := b.Answer(KeyProjectName, "x"); errors.GetCode(err) != errors.EProfileState {
		t.Errorf("Answer before selection = %v, want E_PROFILE_STATE", err)
	}
	if err := b.Review(); errors.GetCode(err) != errors.EProfileState {
		t.Errorf("Review before selection = %v, want E_PROFILE_STATE", err)
	}
	if _, err := b.Accept(); errors.GetCode(err) != errors.EProfileState {
		t.Errorf("Accept before review = %v, want E_PROFILE_STATE", err)
	}
	if err := b.Revise("x"); errors.GetCode(err) != errors.EProfileState {
		t.Errorf("Revise before review = %v, want E_PROFILE_STATE", err)
	}
}

func TestBuilder_Cancel(t *testing.T) {
	b := newTestBuilder(t)
	if err := b.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if b.State() != Cancelled {
		t.Fatalf("State = %q, want %q", b.State(), Cancelled)
	}
	if err := b.Cancel(); errors.GetCode(err) != errors.EProfileState {
		t.Errorf("Cancel in terminal state = %v, want E_PROFILE_STATE", err)
	}

	done := completeBuilder(t)
	if _, err := done.Accept(); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if err := done.Cancel(); errors.GetCode(err) != errors.EProfileState {
		t.Errorf("Cancel after Complete = %v, want E_PROFILE_STATE", err)
	}
}

func TestProfile_Immutability(t *testing.T) {
	b := completeBuilder(t)
	p, err := b.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	answers := p.Answers()
	answers["organization_type"] = "mutated"
	if v, _ := p.Answer("organization_type"); v != "startup" {
		t.Errorf("profile mutated through Answers() copy: %q", v)
	}
}

func TestProfile_MarshalYAML(t *testing.T) {
	b := completeBuilder(t)
	p, err := b.Accept()
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	first, err := p.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	second, err := p.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	if string(first) != string(second) {
		t.Error("snapshot serialization must be deterministic")
	}
	for _, want := range []string{"archetype: oracle", "project_name: Insight Engine", "organization_type: startup", "created_at:"} {
		if !strings.Contains(string(first), want) {
			t.Errorf("snapshot missing %q:\n%s", want, first)
		}
	}
}
