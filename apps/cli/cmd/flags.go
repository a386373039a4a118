package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/limetest/packages/core/runner"
	"github.com/spf13/cobra"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Print the build flags of the library",
	Long: `Resolve the compiler and linker flags of the library under test the same
way a run does (pkg-config, or toolchain.flags from the config file) and
print them.

Examples:
  limetest flags
  limetest flags --library http-dev`,
	Args: cobra.NoArgs,
	RunE: flagsCommand,
}

func flagsCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSuite(cmd)
	if err != nil {
		return err
	}

	r, err := runner.NewRunner(s.runnerConfig(""))
	if err != nil {
		return &configError{err: err}
	}

	flags, err := r.ResolveFlags(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), flags.String())
	return nil
}
