package profile

import (
	"strings"
	"time"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/manifest"
)

// State names a position in the builder's conversation state machine.
type State string

const (
	SelectingArchetype State = "selecting_archetype"
	AnsweringQuestions State = "answering_questions"
	Reviewing          State = "reviewing"
	Complete           State = "complete"
	Cancelled          State = "cancelled"
)

// Universal question keys asked for every archetype.
const (
	KeyProjectName        = "project_name"
	KeyProjectDescription = "project_description"
)

// ArchetypeSource resolves archetype identifiers to manifests. The archetype
// registry satisfies this; the indirection keeps the builder free of registry
// internals and easy to test.
type ArchetypeSource interface {
	Resolve(id string) (*manifest.ArchetypeManifest, error)
}

// Builder assembles a Profile through a finite-state conversation:
// SelectingArchetype → AnsweringQuestions → Reviewing → Complete, with
// Cancelled reachable from any non-terminal state. Invalid input never
// advances the state. The builder has no file-system or network side
// effects; it only builds the Profile value.
type Builder struct {
	source    ArchetypeSource
	state     State
	archetype *manifest.ArchetypeManifest
	answers   map[string]string
	now       func() time.Time
}

// NewBuilder returns a Builder in SelectingArchetype.
func NewBuilder(source ArchetypeSource) *Builder {
	return &Builder{
		source:  source,
		state:   SelectingArchetype,
		answers: make(map[string]string),
		now:     time.Now,
	}
}

// State returns the current conversation state.
func (b *Builder) State() State { return b.state }

// Archetype returns the selected archetype manifest, nil before selection.
func (b *Builder) Archetype() *manifest.ArchetypeManifest { return b.archetype }

// SelectArchetype validates id against the source's known set and advances
// to AnsweringQuestions. An unknown identifier leaves the state unchanged.
func (b *Builder) SelectArchetype(id string) error {
	if b.state != SelectingArchetype {
		return errors.Newf(errors.EProfileState, "cannot select archetype in state %q", b.state)
	}
	m, err := b.source.Resolve(id)
	if err != nil {
		return err
	}
	b.archetype = m
	b.state = AnsweringQuestions
	return nil
}

// Questions returns the full question list for the selected archetype: the
// universal project name/description questions followed by the archetype's
// declared set, in manifest order.
func (b *Builder) Questions() []manifest.Question {
	if b.archetype == nil {
		return nil
	}
	qs := []manifest.Question{
		{Key: KeyProjectName, Prompt: "What is your project's name?", Type: manifest.QuestionString, Required: true},
		{Key: KeyProjectDescription, Prompt: "Describe your project in one line.", Type: manifest.QuestionString, Required: true},
	}
	return append(qs, b.archetype.Questions...)
}

// Unanswered returns the required questions that still lack an answer,
// in question order.
func (b *Builder) Unanswered() []manifest.Question {
	var out []manifest.Question
	for _, q := range b.Questions() {
		if !q.Required {
			continue
		}
		if _, ok := b.answers[q.Key]; !ok {
			out = append(out, q)
		}
	}
	return out
}

// Answer validates one answer against its question's declared type and
// constraint and records it. Invalid answers leave the state unchanged and
// report the offending question key.
func (b *Builder) Answer(key, value string) error {
	if b.state != AnsweringQuestions {
		return errors.Newf(errors.EProfileState, "cannot answer questions in state %q", b.state)
	}
	q, ok := b.findQuestion(key)
	if !ok {
		return errors.NewWithDetails(errors.EValidationFailed,
			"no such question for archetype "+b.archetype.Name,
			map[string]string{"question": key})
	}
	normalized, err := validateAnswer(q, value)
	if err != nil {
		return err
	}
	b.answers[key] = normalized
	return nil
}

// Review transitions to Reviewing once every required question has a
// non-empty answer. Optional questions with declared defaults are filled in
// here so the review shows the effective answer set.
func (b *Builder) Review() error {
	if b.state != AnsweringQuestions {
		return errors.Newf(errors.EProfileState, "cannot review in state %q", b.state)
	}
	if missing := b.Unanswered(); len(missing) > 0 {
		return errors.NewWithDetails(errors.EValidationFailed,
			"required questions remain unanswered",
			map[string]string{"question": missing[0].Key})
	}
	for _, q := range b.Questions() {
		if _, ok := b.answers[q.Key]; !ok && q.Default != "" {
			b.answers[q.Key] = q.Default
		}
	}
	b.state = Reviewing
	return nil
}

// Revise clears exactly one answer and returns to AnsweringQuestions,
// keeping every other answer. This is the reconfigure path.
func (b *Builder) Revise(key string) error {
	if b.state != Reviewing {
		return errors.Newf(errors.EProfileState, "cannot revise in state %q", b.state)
	}
	if _, ok := b.findQuestion(key); !ok {
		return errors.NewWithDetails(errors.EValidationFailed,
			"no such question for archetype "+b.archetype.Name,
			map[string]string{"question": key})
	}
	delete(b.answers, key)
	b.state = AnsweringQuestions
	return nil
}

// Accept finalizes the conversation and produces the immutable Profile.
func (b *Builder) Accept() (*Profile, error) {
	if b.state != Reviewing {
		return nil, errors.Newf(errors.EProfileState, "cannot accept in state %q", b.state)
	}
	answers := make(map[string]string, len(b.answers))
	for k, v := range b.answers {
		answers[k] = v
	}
	p := &Profile{
		archetypeID:        b.archetype.Name,
		projectName:        answers[KeyProjectName],
		projectDescription: answers[KeyProjectDescription],
		answers:            answers,
		createdAt:          b.now(),
	}
	b.state = Complete
	return p, nil
}

// Cancel moves any non-terminal state to Cancelled.
func (b *Builder) Cancel() error {
	if b.state == Complete || b.state == Cancelled {
		return errors.Newf(errors.EProfileState, "cannot cancel in terminal state %q", b.state)
	}
	b.state = Cancelled
	return nil
}

// Answers returns a copy of the answers recorded so far.
func (b *Builder) Answers() map[string]string {
	cp := make(map[string]string, len(b.answers))
	for k, v := range b.answers {
		cp[k] = v
	}
	return cp
}

func (b *Builder) findQuestion(key string) (manifest.Question, bool) {
	for _, q := range b.Questions() {
		if q.Key == key {
			return q, true
		}
	}
	return manifest.Question{}, false
}

// validateAnswer checks value against the question's declared type and
// returns the normalized form ("true"/"false" for bools).
func validateAnswer(q manifest.Question, value string) (string, error) {
	value = strings.TrimSpace(value)

	switch q.Type {
	case manifest.QuestionString:
		if value == "" && q.Required {
			return "", errors.NewWithDetails(errors.EValidationFailed,
				"answer must not be empty",
				map[string]string{"question": q.Key})
		}
		return value, nil

	case manifest.QuestionEnum:
		for _, opt := range q.Options {
			if value == opt {
				return value, nil
			}
		}
		return "", errors.NewWithDetails(errors.EValidationFailed,
			"answer must be one of: "+strings.Join(q.Options, ", "),
			map[string]string{"question": q.Key})

	case manifest.QuestionBool:
		switch strings.ToLower(value) {
		case "true", "yes", "y", "1":
			return "true", nil
		case "false", "no", "n", "0":
			return "false", nil
		}
		return "", errors.NewWithDetails(errors.EValidationFailed,
			"answer must be yes or no",
			map[string]string{"question": q.Key})

	default:
		return "", errors.NewWithDetails(errors.EValidationFailed,
			"question has unknown type "+q.Type,
			map[string]string{"question": q.Key})
	}
}
