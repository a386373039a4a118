package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/limetest/packages/core/config"
	"github.com/abdul-hamid-achik/limetest/packages/fixture"
	"github.com/spf13/cobra"
)

var (
	forceInit bool
	portInit  int
)

var initCmd = &cobra.Command{
	Use:   "init <case>",
	Short: "Scaffold a new test case",
	Long: `Create a new case directory in the suite directory.

This creates:
  - <case>/<case>.cc  - Server program answering "hello world"
  - <case>/curl.txt   - One curl request against it
  - <case>/ans.txt    - The expected answer
  - .limetest.yaml    - Configuration file, unless one exists

Examples:
  limetest init test6
  limetest init test6 --port 9090 --force`,
	Args: cobra.ExactArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().IntVarP(&portInit, "port", "p", 8080, "Port the scaffolded server listens on")
}

func initCommand(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(dirFlag)
	if err != nil {
		return err
	}

	written, err := fixture.Scaffold(root, args[0], portInit, forceInit)
	if err != nil {
		return &configError{err: err}
	}
	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
	}

	if !hasConfigFile(root) {
		configFile := filepath.Join(root, config.ConfigFilenames[0])
		if err := config.DefaultConfig().SaveConfig(configFile); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nCase %s initialized!\n", args[0])
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'limetest run %s' to build and check it.\n", args[0])

	return nil
}

func hasConfigFile(root string) bool {
	for _, name := range config.ConfigFilenames {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return true
		}
	}
	return false
}
