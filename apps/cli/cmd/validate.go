package cmd

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/limetest/packages/compare"
	"github.com/abdul-hamid-achik/limetest/packages/fixture"
	"github.com/abdul-hamid-achik/limetest/packages/replay"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [case...]",
	Short: "Check case fixtures without building anything",
	Long: `Check that every case has its program, request script and answers, that
each request line can be tokenized, and that there is one answer per request.

Examples:
  limetest validate
  limetest validate test1 test3`,
	Args: cobra.ArbitraryArgs,
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	s, err := loadSuite(cmd)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = s.config.Cases
	}

	hasErrors := false
	for _, name := range names {
		if err := validateCase(s.root, name); err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", name, err)
			hasErrors = true
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", name)
		}
	}

	if hasErrors {
		return &configError{err: errors.New("validation failed")}
	}

	return nil
}

func validateCase(root, name string) error {
	c, err := fixture.Load(root, name)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	requests, err := replay.LoadScript(c.RequestScriptPath)
	if err != nil {
		return err
	}
	answers, err := compare.LoadAnswers(c.AnswersPath)
	if err != nil {
		return err
	}
	if len(requests) != len(answers) {
		return &compare.StructuralMismatchError{Expected: len(answers), Actual: len(requests)}
	}
	return nil
}
