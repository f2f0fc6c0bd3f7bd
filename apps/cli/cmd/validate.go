package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/validate"
	"github.com/spf13/cobra"
)

var (
	validateSource  requestSource
	validateEnvFile string
)

var validateCmd = &cobra.Command{
	Use:   "validate [request-file]",
	Short: "Check a request without sending it",
	Long: `Check a request for an empty URL, an invalid JSON body, missing auth
credentials and unresolved variables. Unresolved variables are warnings
unless --strict or strictVariables is set.

Examples:
  hitdesk validate users.json
  hitdesk validate users.json --strict
  hitdesk validate -c "My API" -r "Create user"`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: validateCommand,
}

func init() {
	validateSource.addFlags(validateCmd)
	validateCmd.Flags().StringVar(&validateEnvFile, "env-file", getEnvString("HITDESK_ENV_FILE", ""), "Path to .env file overlaid on stored variables (env: HITDESK_ENV_FILE)")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	tmpl, _, _, err := validateSource.load(args)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	environment, err := loadEnvironment(store, validateEnvFile)
	if err != nil {
		return err
	}

	result := validate.New(validate.WithPolicy(policy())).Validate(tmpl, environment.Values())

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	if err := formatter.FormatIssues(result.Issues); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}

	if !result.Valid() {
		return &ExitError{Code: ExitValidationError, Err: fmt.Errorf("validation failed with %d errors", len(result.Errors()))}
	}
	return nil
}
