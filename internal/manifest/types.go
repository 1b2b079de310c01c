package manifest

// ArchetypeManifest is the declarative description of one archetype: its
// identity, recommended stack, guided question set, declared placeholders,
// and the directory/file template it generates.
type ArchetypeManifest struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Version     string `yaml:"version" json:"version"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Description string `yaml:"description" json:"description"`
	Focus       string `yaml:"focus,omitempty" json:"focus,omitempty"`

	Stack        StackMetadata     `yaml:"stack,omitempty" json:"stack,omitempty"`
	Questions    []Question        `yaml:"questions,omitempty" json:"questions,omitempty"`
	Placeholders []PlaceholderDecl `yaml:"placeholders,omitempty" json:"placeholders,omitempty"`
	Template     []TemplateNode    `yaml:"template" json:"template"`
}

// StackMetadata records the recommended technology stack for an archetype.
// It is presentation data: the engine never installs anything.
type StackMetadata struct {
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	DevTools     []string `yaml:"dev_tools,omitempty" json:"dev_tools,omitempty"`
	Optional     []string `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// Question declares one entry of an archetype's guided question set.
type Question struct {
	Key      string   `yaml:"key" json:"key"`
	Prompt   string   `yaml:"prompt" json:"prompt"`
	Type     string   `yaml:"type" json:"type"` // "string", "enum", or "bool"
	Required bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Options  []string `yaml:"options,omitempty" json:"options,omitempty"`
	Default  string   `yaml:"default,omitempty" json:"default,omitempty"`
}

// PlaceholderDecl declares a placeholder token the template may reference.
// A declaration with a Default is optional: resolution falls back to the
// default when the profile has no answer for it.
type PlaceholderDecl struct {
	Name        string  `yaml:"name" json:"name"`
	Default     *string `yaml:"default,omitempty" json:"default,omitempty"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
}

// HasDefault reports whether the declaration carries a default value.
// A declared empty-string default still counts.
func (d PlaceholderDecl) HasDefault() bool { return d.Default != nil }

// TemplateNode is either a directory node (Dir set) or a file node
// (File set, with Content). Paths are relative to the target root.
type TemplateNode struct {
	Dir       string `yaml:"dir,omitempty" json:"dir,omitempty"`
	File      string `yaml:"file,omitempty" json:"file,omitempty"`
	Content   string `yaml:"content,omitempty" json:"content,omitempty"`
	Overwrite bool   `yaml:"overwrite,omitempty" json:"overwrite,omitempty"`
}

// IsDir reports whether the node describes a directory.
func (n TemplateNode) IsDir() bool { return n.Dir != "" }

// Path returns the node's relative path regardless of kind.
func (n TemplateNode) Path() string {
	if n.IsDir() {
		return n.Dir
	}
	return n.File
}

// Question type constants.
const (
	QuestionString = "string"
	QuestionEnum   = "enum"
	QuestionBool   = "bool"
)

// TypeArchetype is the required value of the manifest type discriminator.
const TypeArchetype = "archetype"
