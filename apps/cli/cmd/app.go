package cmd

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/config"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/validate"
	"github.com/abdul-hamid-achik/hitdesk/packages/db"
	"github.com/abdul-hamid-achik/hitdesk/packages/http"
	"github.com/abdul-hamid-achik/hitdesk/packages/output"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// activeEnvironment names the stored variable set.
const activeEnvironment = "default"

// cfg is loaded before every command runs.
var cfg = config.DefaultConfig()

// loadConfig reads the config file and applies CLI flag overrides.
func loadConfig() error {
	c, err := config.LoadConfig(configFlag)
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: fmt.Errorf("failed to load config: %w", err)}
	}

	if dataDirFlag != "" {
		c.DataDir = dataDirFlag
	}
	if noColorFlag {
		c.NoColor = config.BoolPtr(true)
	}
	if strictFlag {
		c.StrictVariables = config.BoolPtr(true)
	}
	if verboseFlag {
		c.Verbose = config.BoolPtr(true)
	}
	if c.GetNoColor() {
		color.NoColor = true
	}

	cfg = c
	return nil
}

func newFormatter(cmd *cobra.Command) (output.Formatter, error) {
	f, err := output.New(outputFlag, cmd.OutOrStdout(), cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return nil, usageError(err)
	}
	return f, nil
}

func newJSONErrorFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(output.JSONWithWriter(os.Stderr))
}

func policy() validate.Policy {
	if cfg.GetStrictVariables() {
		return validate.Strict
	}
	return validate.Lenient
}

func openStore() (*db.Store, error) {
	store, err := db.OpenPath(cfg.HistoryDBPath())
	if err != nil {
		return nil, &ExitError{Code: ExitConfigError, Err: fmt.Errorf("failed to open data store: %w", err)}
	}
	return store, nil
}

func collectionStore() *collection.Store {
	return collection.NewStore(cfg.CollectionsPath())
}

// loadEnvironment returns the stored variables, overlaid with the variables of
// envFile when it is set.
func loadEnvironment(store *db.Store, envFile string) (*env.Environment, error) {
	e, err := store.Environment(activeEnvironment)
	if err != nil {
		return nil, fmt.Errorf("failed to load variables: %w", err)
	}
	if envFile == "" {
		return e, nil
	}

	vars, err := env.LoadDotEnv(envFile)
	if err != nil {
		return nil, err
	}
	for _, v := range vars {
		e.Set(v.Key, v.Value, v.Enabled)
	}
	return e, nil
}

func newClient() *http.Client {
	return http.NewClient(
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithMaxRedirects(cfg.MaxRedirects),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithProxy(cfg.Proxy),
		http.WithDefaultHeaders(cfg.Headers),
		http.WithRateLimit(cfg.RateLimit),
	)
}

// warnTo prints resolver and pipeline warnings to the command's stderr.
func warnTo(cmd *cobra.Command) env.WarnFunc {
	yellow := color.New(color.FgYellow).SprintFunc()
	return func(format string, args ...any) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", yellow("warning:"), fmt.Sprintf(format, args...))
	}
}
