package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/pipeline"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/abdul-hamid-achik/hitdesk/packages/export/curl"
	"github.com/spf13/cobra"
)

var (
	resolveSource  requestSource
	resolveEnvFile string

	curlSource  requestSource
	curlEnvFile string
	curlRaw     bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [request-file]",
	Short: "Show a request with its variables substituted",
	Long: `Validate a request and print it with every {{VARIABLE}} replaced by its
value from the active environment. Nothing is sent.

Examples:
  hitdesk resolve users.json
  hitdesk resolve users.json --env-file .env.staging -o json`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: resolveCommand,
}

var curlCmd = &cobra.Command{
	Use:   "curl [request-file]",
	Short: "Print a request as a curl command",
	Long: `Print the resolved request as a curl command that can be pasted into a
shell. Use --raw to keep {{VARIABLE}} placeholders.

Examples:
  hitdesk curl users.json
  hitdesk curl users.json --raw
  hitdesk curl -c "My API" -r "Create user"`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: curlCommand,
}

func init() {
	resolveSource.addFlags(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveEnvFile, "env-file", getEnvString("HITDESK_ENV_FILE", ""), "Path to .env file overlaid on stored variables (env: HITDESK_ENV_FILE)")

	curlSource.addFlags(curlCmd)
	curlCmd.Flags().StringVar(&curlEnvFile, "env-file", getEnvString("HITDESK_ENV_FILE", ""), "Path to .env file overlaid on stored variables (env: HITDESK_ENV_FILE)")
	curlCmd.Flags().BoolVar(&curlRaw, "raw", false, "Export the template without resolving variables")
}

// prepare validates and resolves the request chosen by source.
func prepare(cmd *cobra.Command, source *requestSource, envFile string, args []string) (*request.Template, error) {
	tmpl, _, _, err := source.load(args)
	if err != nil {
		return nil, err
	}

	store, err := openStore()
	if err != nil {
		return nil, err
	}
	defer store.Close()

	environment, err := loadEnvironment(store, envFile)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(pipeline.WithWarnFunc(warnTo(cmd)))
	prepared, err := p.Prepare(&pipeline.AppState{Request: tmpl, Env: environment, Policy: policy()})
	if err != nil {
		return nil, err
	}
	return prepared.Request, nil
}

func resolveCommand(cmd *cobra.Command, args []string) error {
	resolved, err := prepare(cmd, &resolveSource, resolveEnvFile, args)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	if err := formatter.FormatTemplate(resolved); err != nil {
		return fmt.Errorf("error writing output: %w", err)
	}
	return nil
}

func curlCommand(cmd *cobra.Command, args []string) error {
	var tmpl *request.Template
	var err error
	if curlRaw {
		tmpl, _, _, err = curlSource.load(args)
	} else {
		tmpl, err = prepare(cmd, &curlSource, curlEnvFile, args)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), curl.ToCurl(tmpl))
	return nil
}
