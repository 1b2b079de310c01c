package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/manifest"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/prereq"
)

var (
	doctorTargetDir string
	checkManifest   string
)

func init() {
	doctorCmd.Flags().StringVar(&doctorTargetDir, "target-dir", ".", "Directory to check write permission on")
	doctorCmd.Flags().StringVar(&checkManifest, "check-manifest", "", "Validate an archetype manifest file at the given path")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment for project generation",
	Long:  `Run the prerequisite checks a generation would run, and report each result.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkManifest != "" {
			return runManifestCheck(cmd, checkManifest)
		}

		checker := prereq.NewChecker()
		report := checker.Check(cmd.Context(), prereq.DefaultRequirements(doctorTargetDir))

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Environment check:")
		for _, res := range report.Results {
			switch {
			case res.Passed:
				fmt.Fprintf(out, "  [ OK ] %s (%s)\n", res.Spec.Name, res.Detail)
			case res.Spec.Hard:
				fmt.Fprintf(out, "  [FAIL] %s: %s\n", res.Spec.Name, res.Hint)
			default:
				fmt.Fprintf(out, "  [WARN] %s: %s\n", res.Spec.Name, res.Hint)
			}
		}

		if !report.Passed() {
			return errors.New(errors.EPrereqFailed, "hard prerequisite checks failed")
		}
		return nil
	},
}

// runManifestCheck validates a manifest against the archetype schema and
// structure rules, reporting every issue found.
func runManifestCheck(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Manifest validation: %s\n", path)

	result, err := manifest.ValidateFile(path)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return errors.Wrap(errors.EInvalidManifest, "manifest validation failed", err)
	}

	if !result.Valid {
		fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
		for _, issue := range result.Issues {
			if issue.Path != "" {
				fmt.Fprintf(out, "    - %s: %s\n", issue.Path, issue.Message)
			} else {
				fmt.Fprintf(out, "    - %s\n", issue.Message)
			}
		}
		return errors.Newf(errors.EInvalidManifest,
			"manifest %s has %d validation issue(s)", path, len(result.Issues))
	}

	m, err := manifest.ParseFile(path)
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return errors.Wrap(errors.EInvalidManifest, "parsing manifest", err)
	}
	if err := m.Check(); err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		return errors.Wrap(errors.EInvalidManifest, "checking manifest", err)
	}

	fmt.Fprintf(out, "  [ OK ] Valid archetype manifest: %s (v%s)\n", m.Name, m.Version)
	return nil
}
