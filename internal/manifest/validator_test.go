package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate_Valid(t *testing.T) {
	result, err := Validate([]byte(validManifest))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, got issues: %+v", result.Issues)
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oracle.yaml")
	if err := os.WriteFile(path, []byte(validManifest), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := ValidateFile(path)
	if err != nil {
		t.Fatalf("ValidateFile error: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid, got issues: %+v", result.Issues)
	}

	if _, err := ValidateFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	result, err := Validate([]byte(`
name: oracle
type: archetype
template:
  - dir: src
`))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid, got valid")
	}
	if len(result.Issues) == 0 {
		t.Fatal("expected at least one issue")
	}
}

func TestValidate_BadNamePattern(t *testing.T) {
	result, err := Validate([]byte(`
name: "Bad Name"
type: archetype
version: 1.0.0
display_name: X
description: d
template:
  - dir: src
`))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid, got valid")
	}
	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue.Path, "name") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an issue at /name, got %+v", result.Issues)
	}
}

func TestValidate_BadVersion(t *testing.T) {
	result, err := Validate([]byte(`
name: oracle
type: archetype
version: one-point-oh
display_name: X
description: d
template:
  - dir: src
`))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid, got valid")
	}
}

func TestValidate_EmptyTemplate(t *testing.T) {
	result, err := Validate([]byte(`
name: oracle
type: archetype
version: 1.0.0
display_name: X
description: d
template: []
`))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid, got valid")
	}
}

func TestValidate_UnknownField(t *testing.T) {
	result, err := Validate([]byte(`
name: oracle
type: archetype
version: 1.0.0
display_name: X
description: d
hooks: []
template:
  - dir: src
`))
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if result.Valid {
		t.Fatal("expected invalid for unknown top-level field, got valid")
	}
}

func TestValidate_MalformedYAML(t *testing.T) {
	_, err := Validate([]byte("name: [unclosed"))
	if err == nil {
		t.Fatal("expected YAML parse error, got nil")
	}
}
