package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/archetype"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/config"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/executor"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/manifest"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/plan"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/prereq"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/profile"
)

var (
	initArchetype   string
	initName        string
	initDescription string
	initAnswers     []string
	initTargetDir   string
	initManifest    string
	initReconfigure []string
	initDryRun      bool
	initSkipChecks  bool
	initYes         bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new project from an archetype",
	Long: `Initialize a new project through a guided conversation.

With no flags, init walks you through archetype selection and the
archetype's question set interactively. Every answer can instead be
supplied up front with --archetype, --name, --description, and repeated
--answer key=value flags, which makes init scriptable.

Generation is transactional. If any step fails, everything already
written is rolled back and the target directory is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVarP(&initArchetype, "archetype", "a", "", "Archetype identifier (skips interactive selection)")
	initCmd.Flags().StringVarP(&initName, "name", "n", "", "Project name")
	initCmd.Flags().StringVarP(&initDescription, "description", "d", "", "One-line project description")
	initCmd.Flags().StringArrayVar(&initAnswers, "answer", nil, "Answer a question as key=value (repeatable)")
	initCmd.Flags().StringVarP(&initTargetDir, "target-dir", "t", "", "Parent directory for the generated project (default: config target_dir, else current directory)")
	initCmd.Flags().StringVarP(&initManifest, "manifest", "m", "", "Register a custom archetype manifest from a YAML file")
	initCmd.Flags().StringArrayVar(&initReconfigure, "reconfigure", nil, "Re-ask the named question, keeping every other answer (repeatable)")
	initCmd.Flags().BoolVar(&initDryRun, "dry-run", false, "Print the operation plan without touching the file system")
	initCmd.Flags().BoolVar(&initSkipChecks, "skip-checks", false, "Skip prerequisite checks")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept the review without prompting (non-interactive mode)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	registry, err := archetype.NewRegistry()
	if err != nil {
		return errors.Wrap(errors.EInternal, "loading built-in archetypes", err)
	}
	if initManifest != "" {
		data, err := os.ReadFile(initManifest)
		if err != nil {
			return errors.Wrap(errors.EIO, "reading manifest "+initManifest, err)
		}
		m, err := registry.RegisterYAML(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Registered custom archetype %q (v%s)\n", m.Name, m.Version)
	}

	builder := profile.NewBuilder(registry)

	// Archetype selection: flag first, numbered menu otherwise.
	if initArchetype != "" {
		if err := builder.SelectArchetype(initArchetype); err != nil {
			return err
		}
	} else {
		if initYes {
			return errors.New(errors.EUsage, "--yes requires --archetype")
		}
		id, err := selectArchetype(in, out, registry.List())
		if err != nil {
			return err
		}
		if err := builder.SelectArchetype(id); err != nil {
			return err
		}
	}

	// Seed answers supplied as flags before any prompting.
	if initName != "" {
		if err := builder.Answer(profile.KeyProjectName, initName); err != nil {
			return err
		}
	}
	if initDescription != "" {
		if err := builder.Answer(profile.KeyProjectDescription, initDescription); err != nil {
			return err
		}
	}
	for _, kv := range initAnswers {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return errors.Newf(errors.EUsage, "malformed --answer %q: expected key=value", kv)
		}
		if err := builder.Answer(key, value); err != nil {
			return err
		}
	}

	if !initYes {
		if err := askQuestions(in, out, builder); err != nil {
			return err
		}
	}

	if err := builder.Review(); err != nil {
		return err
	}

	// --reconfigure re-enters the question state for the named answers,
	// keeping everything else.
	for _, key := range initReconfigure {
		if err := builder.Revise(key); err != nil {
			return err
		}
		q, _ := questionByKey(builder, key)
		if err := askOne(in, out, builder, q); err != nil {
			return err
		}
		if err := builder.Review(); err != nil {
			return err
		}
	}

	if !initYes {
		if err := reviewLoop(in, out, builder); err != nil {
			return err
		}
	}

	prof, err := builder.Accept()
	if err != nil {
		return err
	}

	targetRoot, err := resolveTargetRoot(prof.ProjectName())
	if err != nil {
		return err
	}

	if !initSkipChecks {
		if err := runPrereqChecks(cmd, out, targetRoot); err != nil {
			return err
		}
	}

	ops, err := resolvePlan(builder.Archetype(), prof, targetRoot)
	if err != nil {
		return err
	}

	if initDryRun {
		ops.Print(out, targetRoot)
		fmt.Fprintln(out, "\nDry run: nothing was written.")
		return nil
	}

	result, err := executor.New(logger).Execute(cmd.Context(), ops, targetRoot)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nProject %q created at %s (%d paths).\n", prof.ProjectName(), targetRoot, len(result.Created))
	fmt.Fprintf(out, "\nNext steps:\n  cd %s\n  git init\n", targetRoot)
	return nil
}

// resolvePlan expands the archetype template and appends a profile snapshot
// node so the generated tree records how it was configured. The snapshot is
// part of the plan, so it commits or rolls back with everything else.
func resolvePlan(m *manifest.ArchetypeManifest, prof *profile.Profile, targetRoot string) (plan.OperationPlan, error) {
	snap, err := prof.MarshalYAML()
	if err != nil {
		return nil, errors.Wrap(errors.EInternal, "serializing profile snapshot", err)
	}

	withSnapshot := *m
	withSnapshot.Template = append(append([]manifest.TemplateNode{}, m.Template...),
		manifest.TemplateNode{File: "docs/project_profile.yaml", Content: string(snap)})

	return plan.Resolve(&withSnapshot, prof, targetRoot)
}

// resolveTargetRoot derives the project directory: the parent comes from
// --target-dir, then the target_dir config key, then the working directory;
// the leaf is the slugified project name.
func resolveTargetRoot(projectName string) (string, error) {
	parent := initTargetDir
	if parent == "" {
		parent = config.Get(config.KeyTargetDir)
	}
	if parent == "" {
		parent = "."
	}

	slug := slugify(projectName)
	if slug == "" {
		return "", errors.NewWithDetails(errors.EValidationFailed,
			"project name produces an empty directory name",
			map[string]string{"question": profile.KeyProjectName})
	}
	return filepath.Join(parent, slug), nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9-]+`)

// slugify turns a project name into a safe directory name.
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// runPrereqChecks evaluates the default requirement set. Hard failures
// always block; soft failures warn unless the soft_checks_block config key
// turns them into blockers.
func runPrereqChecks(cmd *cobra.Command, out io.Writer, targetRoot string) error {
	checker := prereq.NewChecker()
	report := checker.Check(cmd.Context(), prereq.DefaultRequirements(targetRoot))

	for _, w := range report.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s check failed: %s\n", w.Spec.Name, w.Hint)
	}

	if failures := report.HardFailures(); len(failures) > 0 {
		for _, f := range failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "prerequisite failed: %s: %s\n", f.Spec.Name, f.Hint)
		}
		return errors.NewWithDetails(errors.EPrereqFailed,
			"hard prerequisite checks failed",
			map[string]string{"failed": failures[0].Spec.Name})
	}

	if len(report.Warnings()) > 0 && config.GetBool(config.KeySoftChecksBlock) {
		return errors.NewWithDetails(errors.EPrereqFailed,
			"soft prerequisite checks failed and soft_checks_block is enabled",
			map[string]string{"failed": report.Warnings()[0].Spec.Name})
	}
	return nil
}

// selectArchetype presents a numbered menu and returns the chosen identifier.
func selectArchetype(in *bufio.Reader, out io.Writer, summaries []archetype.Summary) (string, error) {
	fmt.Fprintln(out, "\nSelect an archetype:")
	for i, s := range summaries {
		fmt.Fprintf(out, "  %d) %s - %s\n", i+1, s.ID, s.Focus)
	}
	fmt.Fprintf(out, "Enter number [1-%d]: ", len(summaries))

	line, err := in.ReadString('\n')
	if err != nil {
		return "", cancelled(err)
	}

	num, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || num < 1 || num > len(summaries) {
		return "", errors.Newf(errors.EValidationFailed,
			"invalid selection %q: choose 1-%d", strings.TrimSpace(line), len(summaries))
	}
	return summaries[num-1].ID, nil
}

// askQuestions prompts for every question that still lacks an answer.
// Invalid answers re-prompt; they never advance the conversation.
func askQuestions(in *bufio.Reader, out io.Writer, builder *profile.Builder) error {
	answered := builder.Answers()
	for _, q := range builder.Questions() {
		if _, ok := answered[q.Key]; ok {
			continue
		}
		if err := askOne(in, out, builder, q); err != nil {
			return err
		}
	}
	return nil
}

func askOne(in *bufio.Reader, out io.Writer, builder *profile.Builder, q manifest.Question) error {
	for {
		fmt.Fprintf(out, "\n%s\n", q.Prompt)
		if q.Type == manifest.QuestionEnum {
			for _, opt := range q.Options {
				fmt.Fprintf(out, "  - %s\n", opt)
			}
		}
		switch {
		case q.Default != "":
			fmt.Fprintf(out, "[%s]: ", q.Default)
		case !q.Required:
			fmt.Fprint(out, "(optional): ")
		default:
			fmt.Fprint(out, "> ")
		}

		line, err := in.ReadString('\n')
		if err != nil {
			return cancelled(err)
		}
		value := strings.TrimSpace(line)

		// Empty input takes the default or skips an optional question.
		if value == "" {
			if q.Default != "" {
				value = q.Default
			} else if !q.Required {
				return nil
			}
		}

		if err := builder.Answer(q.Key, value); err != nil {
			if ge, ok := errors.AsGenesisError(err); ok && ge.Code == errors.EValidationFailed {
				fmt.Fprintf(out, "  %s\n", ge.Msg)
				continue
			}
			return err
		}
		return nil
	}
}

// reviewLoop shows the effective answers and lets the user accept, revise a
// single answer, or cancel.
func reviewLoop(in *bufio.Reader, out io.Writer, builder *profile.Builder) error {
	for {
		answers := builder.Answers()
		fmt.Fprintf(out, "\nReview (%s):\n", builder.Archetype().DisplayName)
		for _, q := range builder.Questions() {
			if v, ok := answers[q.Key]; ok {
				fmt.Fprintf(out, "  %-24s %s\n", q.Key+":", v)
			}
		}
		fmt.Fprint(out, "\n[a]ccept, [r]evise <key>, [c]ancel: ")

		line, err := in.ReadString('\n')
		if err != nil {
			return cancelled(err)
		}
		input := strings.TrimSpace(line)

		switch {
		case input == "a" || input == "accept" || input == "":
			return nil
		case input == "c" || input == "cancel":
			_ = builder.Cancel()
			return errors.New(errors.ECancelled, "initialization cancelled")
		case strings.HasPrefix(input, "r ") || strings.HasPrefix(input, "revise "):
			_, key, _ := strings.Cut(input, " ")
			key = strings.TrimSpace(key)
			if err := builder.Revise(key); err != nil {
				if ge, ok := errors.AsGenesisError(err); ok && ge.Code == errors.EValidationFailed {
					fmt.Fprintf(out, "  %s\n", ge.Msg)
					continue
				}
				return err
			}
			q, _ := questionByKey(builder, key)
			if err := askOne(in, out, builder, q); err != nil {
				return err
			}
			if err := builder.Review(); err != nil {
				return err
			}
		default:
			fmt.Fprintf(out, "  unrecognized input %q\n", input)
		}
	}
}

func questionByKey(builder *profile.Builder, key string) (manifest.Question, bool) {
	for _, q := range builder.Questions() {
		if q.Key == key {
			return q, true
		}
	}
	return manifest.Question{}, false
}

// cancelled maps an input stream error (EOF, closed terminal) to a
// cancellation.
func cancelled(err error) error {
	return errors.Wrap(errors.ECancelled, "initialization cancelled", err)
}
