package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
)

func TestDoctor_CheckManifestValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	valid := `
name: minimal
type: archetype
version: 0.1.0
display_name: Minimal
description: Bare layout.
template:
  - dir: src
  - file: README.md
    content: "# {{project_name}}"
`
	if err := os.WriteFile(path, []byte(valid), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "", "doctor", "--check-manifest", path)
	if err != nil {
		t.Fatalf("doctor --check-manifest: %v\noutput:\n%s", err, out)
	}
	if !strings.Contains(out, "Valid archetype manifest: minimal") {
		t.Errorf("output missing validity report:\n%s", out)
	}
}

func TestDoctor_CheckManifestInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	// Missing version, display_name, description, and template.
	if err := os.WriteFile(path, []byte("name: broken\ntype: archetype\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "", "doctor", "--check-manifest", path)
	if errors.GetCode(err) != errors.EInvalidManifest {
		t.Fatalf("error = %v, want E_INVALID_MANIFEST", err)
	}
	if !strings.Contains(out, "[FAIL]") {
		t.Errorf("output missing failure report:\n%s", out)
	}
}

func TestDoctor_CheckManifestMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nowhere.yaml")

	_, err := runCLI(t, "", "doctor", "--check-manifest", path)
	if errors.GetCode(err) != errors.EInvalidManifest {
		t.Fatalf("error = %v, want E_INVALID_MANIFEST", err)
	}
}
