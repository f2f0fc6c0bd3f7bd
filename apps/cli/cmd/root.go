package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/validate"
	"github.com/abdul-hamid-achik/hitdesk/packages/http"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	dataDirFlag string
	outputFlag  string
	noColorFlag bool
	strictFlag  bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "hitdesk",
	Short: "Compose, validate and send HTTP requests.",
	Long: `hitdesk builds HTTP requests from templates with {{VARIABLE}}
placeholders, checks them before sending, resolves them against the active
environment and keeps a history of what was sent.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return loadConfig() },
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("HITDESK_CONFIG", ""), "Path to config file (env: HITDESK_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory holding history, variables and collections")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "console", "Output format: console, json")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&strictFlag, "strict", false, "Treat unresolved variables as errors")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(curlCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(versionCmd)
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// ExitError carries the process exit code for err.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsageError, Err: err}
}

// usageArgs wraps a cobra argument validator so violations exit with ExitUsageError.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := fn(cmd, a); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func exitCode(err error) int {
	var exitErr *ExitError
	var validationErr *validate.Error
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &validationErr):
		return ExitValidationError
	case errors.Is(err, http.ErrTransport):
		return ExitNetworkError
	default:
		return ExitFailure
	}
}

func printError(err error) {
	if outputFlag == "json" {
		newJSONErrorFormatter().FormatError(err)
		return
	}
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(os.Stderr, "%s %v\n", red("Error:"), err)

	var validationErr *validate.Error
	if errors.As(err, &validationErr) {
		for _, issue := range validationErr.Issues {
			fmt.Fprintf(os.Stderr, "  %s %s\n", red("✗"), issue.String())
		}
	}
}
