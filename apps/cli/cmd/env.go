package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/db"
	"github.com/spf13/cobra"
)

var (
	envDisabledFlag  bool
	envOutFlag       string
	envOverwriteFlag bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage environment variables",
	Long: `Manage the variables that {{NAME}} placeholders resolve against. Only
enabled variables take part in resolution.

Examples:
  hitdesk env set BASE_URL https://api.example.com
  hitdesk env set TOKEN secret --disabled
  hitdesk env enable TOKEN
  hitdesk env export --out env.json
  hitdesk env import env.json --overwrite
  hitdesk env load-dotenv .env`,
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List variables",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *db.Store) error {
			vars, err := store.EnvVars()
			if err != nil {
				return err
			}
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			return formatter.FormatEnv(vars)
		})
	},
}

var envSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a variable",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *db.Store) error {
			err := store.SetEnvVar(env.EnvVar{Key: args[0], Value: args[1], Enabled: !envDisabledFlag})
			if errors.Is(err, db.ErrInvalidKey) {
				return usageError(err)
			}
			return err
		})
	},
}

var envRmCmd = &cobra.Command{
	Use:     "rm <key>",
	Aliases: []string{"delete"},
	Short:   "Remove a variable",
	Args:    usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *db.Store) error {
			return notFound(store.DeleteEnvVar(args[0]), args[0])
		})
	},
}

var envRenameCmd = &cobra.Command{
	Use:   "rename <old-key> <new-key>",
	Short: "Rename a variable, keeping its value",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *db.Store) error {
			return notFound(store.RenameEnvVar(args[0], args[1]), args[0])
		})
	},
}

func toggleCmd(use, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <key>",
		Short: short,
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *db.Store) error {
				return notFound(store.SetEnvVarEnabled(args[0], enabled), args[0])
			})
		},
	}
}

var envExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export variables as JSON",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *db.Store) error {
			e, err := store.Environment(activeEnvironment)
			if err != nil {
				return err
			}
			data, err := env.Export(e, time.Now())
			if err != nil {
				return err
			}
			if envOutFlag == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := os.WriteFile(envOutFlag, data, 0644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d variables to %s\n", e.Len(), envOutFlag)
			return nil
		})
	},
}

var envImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import variables from an exported JSON document",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		return withStore(func(store *db.Store) error {
			e, err := store.Environment(activeEnvironment)
			if err != nil {
				return err
			}

			var conflict env.ConflictFunc
			if envOverwriteFlag {
				conflict = func(existing, incoming env.EnvVar) bool { return true }
			}
			result, err := env.Import(data, e, conflict)
			if err != nil {
				return err
			}
			if err := store.SaveEnvironment(e); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d variables (%d overwritten, %d skipped)\n",
				result.Added+result.Overwritten, result.Overwritten, result.Skipped)
			return nil
		})
	},
}

var envLoadDotEnvCmd = &cobra.Command{
	Use:   "load-dotenv <file>",
	Short: "Import variables from a .env file",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := env.LoadDotEnv(args[0])
		if err != nil {
			return err
		}

		return withStore(func(store *db.Store) error {
			loaded, skipped := 0, 0
			for _, v := range vars {
				if !env.ValidKey(v.Key) {
					skipped++
					continue
				}
				if err := store.SetEnvVar(v); err != nil {
					return err
				}
				loaded++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d variables (%d skipped)\n", loaded, skipped)
			return nil
		})
	},
}

func init() {
	envSetCmd.Flags().BoolVar(&envDisabledFlag, "disabled", false, "Store the variable disabled")
	envExportCmd.Flags().StringVar(&envOutFlag, "out", "", "Write to this file instead of stdout")
	envImportCmd.Flags().BoolVar(&envOverwriteFlag, "overwrite", false, "Replace variables that already exist")

	envCmd.AddCommand(envListCmd)
	envCmd.AddCommand(envSetCmd)
	envCmd.AddCommand(envRmCmd)
	envCmd.AddCommand(envRenameCmd)
	envCmd.AddCommand(toggleCmd("enable", "Enable a variable", true))
	envCmd.AddCommand(toggleCmd("disable", "Disable a variable", false))
	envCmd.AddCommand(envExportCmd)
	envCmd.AddCommand(envImportCmd)
	envCmd.AddCommand(envLoadDotEnvCmd)
}

func withStore(fn func(store *db.Store) error) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func notFound(err error, key string) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("variable %q: %w", key, err)
	}
	if errors.Is(err, db.ErrInvalidKey) || errors.Is(err, db.ErrDuplicateKey) {
		return usageError(err)
	}
	return err
}
