package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/archetype"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
)

var archetypesJSON bool

var archetypesCmd = &cobra.Command{
	Use:   "archetypes",
	Short: "List available archetypes",
	Long:  `List every archetype this build can generate projects from.`,
	Args:  cobra.NoArgs,
	RunE:  runArchetypes,
}

func init() {
	archetypesCmd.Flags().BoolVar(&archetypesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(archetypesCmd)
}

func runArchetypes(cmd *cobra.Command, args []string) error {
	registry, err := archetype.NewRegistry()
	if err != nil {
		return errors.Wrap(errors.EInternal, "loading built-in archetypes", err)
	}
	summaries := registry.List()

	if archetypesJSON {
		data, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return errors.Wrap(errors.EInternal, "marshaling archetype list", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFOCUS\tVERSION")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.DisplayName, s.Focus, s.Version)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(errors.EIO, "writing archetype table", err)
	}
	return nil
}
