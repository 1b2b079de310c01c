package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/branding"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/config"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds new projects from archetype templates through a
guided conversation. Generation is transactional: a project is either
created completely or the target directory is left exactly as it was.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.EUsage, err.Error(), err)
	})
}

// Execute runs the root command with build info injected via ldflags.
// Errors surfacing from cobra itself (unknown commands, bad arguments) are
// usage errors; command implementations return coded errors directly.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	if err != nil && errors.GetCode(err) == "" {
		return errors.Wrap(errors.EUsage, err.Error(), err)
	}
	return err
}

// newLogger builds the CLI's logger. Verbosity comes from --verbose, then
// the log_level config key, then a quiet default.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if cfg := config.Get(config.KeyLogLevel); cfg != "" {
		if parsed, err := zerolog.ParseLevel(cfg); err == nil {
			level = parsed
		}
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
