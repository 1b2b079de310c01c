package prereq

import "time"

// DefaultRequirements returns the standard requirement set for a generation
// into targetRoot: write permission on the target (hard), git on PATH
// (soft, projects are expected to be version-controlled by the user), and
// reachability of github.com for users who push right after generating
// (soft, short timeout).
func DefaultRequirements(targetRoot string) []RequirementSpec {
	return []RequirementSpec{
		{
			Name:   "target writable",
			Kind:   KindWritable,
			Target: targetRoot,
			Hard:   true,
			Hint:   "choose a target directory you have write permission on",
		},
		{
			Name:   "git",
			Kind:   KindBinary,
			Target: "git",
			Hint:   "install git to version-control the generated project",
		},
		{
			Name:    "github.com reachable",
			Kind:    KindNetwork,
			Target:  "github.com:443",
			Timeout: 2 * time.Second,
			Hint:    "network is unreachable; pushing the generated project will fail until it is restored",
		},
	}
}
