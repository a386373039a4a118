package cmd

import (
	"fmt"
	"slices"

	"github.com/abdul-hamid-achik/limetest/packages/fixture"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the cases of a suite",
	Long: `List the cases run by default and every case directory found in the
suite directory.

Examples:
  limetest list
  limetest list -C ./tests`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSuite(cmd)
	if err != nil {
		return err
	}

	discovered, err := fixture.Discover(s.root)
	if err != nil {
		return &configError{err: err}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Default cases (%s):\n", s.root)
	for _, name := range s.config.Cases {
		status := ""
		if !slices.Contains(discovered, name) {
			status = " (missing)"
		}
		fmt.Fprintf(out, "  - %s%s\n", name, status)
	}

	var extra []string
	for _, name := range discovered {
		if !slices.Contains(s.config.Cases, name) {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		fmt.Fprintf(out, "\nOther cases:\n")
		for _, name := range extra {
			fmt.Fprintf(out, "  - %s\n", name)
		}
	}

	return nil
}
