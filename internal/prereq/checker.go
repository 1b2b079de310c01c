package prereq

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Kind identifies the class of condition a RequirementSpec evaluates.
type Kind string

const (
	// KindBinary checks that a named executable is on PATH.
	KindBinary Kind = "binary"
	// KindMinVersion checks that a tool's reported version satisfies a minimum.
	KindMinVersion Kind = "min-version"
	// KindWritable checks write permission on a directory (or its nearest
	// existing ancestor, since the target root may not exist yet).
	KindWritable Kind = "writable"
	// KindNetwork checks TCP reachability of host:port within a timeout.
	KindNetwork Kind = "network"
)

// RequirementSpec names a single host-environment condition and how to
// evaluate it. Hard requirements block generation when they fail; soft ones
// only warn (blocking policy for soft failures belongs to the caller).
type RequirementSpec struct {
	Name       string        // display name, e.g. "git"
	Kind       Kind          //
	Target     string        // binary name, directory path, or host:port
	MinVersion string        // for KindMinVersion, e.g. "2.30.0"
	Hard       bool          //
	Timeout    time.Duration // for KindNetwork; defaults to 3s
	Hint       string        // remediation hint shown on failure
}

// CheckResult is the outcome of evaluating one requirement.
type CheckResult struct {
	Spec   RequirementSpec
	Passed bool
	Detail string // what was observed, e.g. resolved path or probed version
	Hint   string // remediation hint, set on failure
}

// CheckReport lists every requirement's result. All requirements are
// evaluated independently; there is no short-circuit.
type CheckReport struct {
	Results []CheckResult
}

// Passed reports whether every hard requirement passed.
func (r *CheckReport) Passed() bool {
	return len(r.HardFailures()) == 0
}

// HardFailures returns the failed hard requirements.
func (r *CheckReport) HardFailures() []CheckResult {
	var out []CheckResult
	for _, res := range r.Results {
		if !res.Passed && res.Spec.Hard {
			out = append(out, res)
		}
	}
	return out
}

// Warnings returns the failed soft requirements.
func (r *CheckReport) Warnings() []CheckResult {
	var out []CheckResult
	for _, res := range r.Results {
		if !res.Passed && !res.Spec.Hard {
			out = append(out, res)
		}
	}
	return out
}

// Checker evaluates requirements against the host. The probe functions are
// injectable so checks can be exercised without a real environment.
type Checker struct {
	LookPath    func(name string) (string, error)
	VersionOf   func(ctx context.Context, name string) (string, error)
	DialTimeout func(network, addr string, timeout time.Duration) (net.Conn, error)
}

// NewChecker returns a Checker wired to the real host environment.
func NewChecker() *Checker {
	return &Checker{
		LookPath:    exec.LookPath,
		VersionOf:   probeVersion,
		DialTimeout: net.DialTimeout,
	}
}

// Check evaluates every requirement and returns the full report.
// It never mutates state beyond a short-lived write probe for KindWritable.
func (c *Checker) Check(ctx context.Context, specs []RequirementSpec) *CheckReport {
	report := &CheckReport{Results: make([]CheckResult, 0, len(specs))}
	for _, spec := range specs {
		report.Results = append(report.Results, c.evaluate(ctx, spec))
	}
	return report
}

func (c *Checker) evaluate(ctx context.Context, spec RequirementSpec) CheckResult {
	res := CheckResult{Spec: spec}

	switch spec.Kind {
	case KindBinary:
		path, err := c.LookPath(spec.Target)
		if err != nil {
			res.Hint = failHint(spec, fmt.Sprintf("install %s and ensure it is on PATH", spec.Target))
			return res
		}
		res.Passed = true
		res.Detail = path

	case KindMinVersion:
		got, err := c.VersionOf(ctx, spec.Target)
		if err != nil {
			res.Hint = failHint(spec, fmt.Sprintf("install %s and ensure it is on PATH", spec.Target))
			return res
		}
		ok, err := atLeast(got, spec.MinVersion)
		if err != nil {
			res.Detail = got
			res.Hint = failHint(spec, fmt.Sprintf("could not compare %s version %q against %q", spec.Target, got, spec.MinVersion))
			return res
		}
		res.Detail = got
		if !ok {
			res.Hint = failHint(spec, fmt.Sprintf("upgrade %s to %s or newer (found %s)", spec.Target, spec.MinVersion, got))
			return res
		}
		res.Passed = true

	case KindWritable:
		dir := nearestExistingDir(spec.Target)
		if err := probeWrite(dir); err != nil {
			res.Detail = dir
			res.Hint = failHint(spec, fmt.Sprintf("grant write permission on %s", dir))
			return res
		}
		res.Passed = true
		res.Detail = dir

	case KindNetwork:
		timeout := spec.Timeout
		if timeout <= 0 {
			timeout = 3 * time.Second
		}
		conn, err := c.DialTimeout("tcp", spec.Target, timeout)
		if err != nil {
			res.Hint = failHint(spec, fmt.Sprintf("check network connectivity to %s", spec.Target))
			return res
		}
		conn.Close()
		res.Passed = true
		res.Detail = spec.Target

	default:
		res.Hint = fmt.Sprintf("unknown requirement kind %q", spec.Kind)
	}

	return res
}

// failHint prefers the requirement's declared hint over the computed fallback.
func failHint(spec RequirementSpec, fallback string) string {
	if spec.Hint != "" {
		return spec.Hint
	}
	return fallback
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// probeVersion runs `<name> --version` and extracts the first version-shaped
// token from its output.
func probeVersion(ctx context.Context, name string) (string, error) {
	out, err := exec.CommandContext(ctx, name, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("probing %s version: %w", name, err)
	}
	v := versionPattern.FindString(string(out))
	if v == "" {
		return "", fmt.Errorf("no version found in %s output %q", name, strings.TrimSpace(string(out)))
	}
	return v, nil
}

// atLeast reports whether version got satisfies the minimum min.
func atLeast(got, min string) (bool, error) {
	gv, err := semver.NewVersion(got)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", got, err)
	}
	constraint, err := semver.NewConstraint(">= " + min)
	if err != nil {
		return false, fmt.Errorf("parsing minimum %q: %w", min, err)
	}
	return constraint.Check(gv), nil
}

// nearestExistingDir walks up from dir to the closest directory that exists.
func nearestExistingDir(dir string) string {
	for {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

// probeWrite creates and removes a temp file in dir.
func probeWrite(dir string) error {
	f, err := os.CreateTemp(dir, ".genesis-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
