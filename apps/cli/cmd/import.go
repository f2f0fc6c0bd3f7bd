package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/import/curl"
	"github.com/abdul-hamid-achik/hitdesk/packages/import/insomnia"
	"github.com/abdul-hamid-achik/hitdesk/packages/import/openapi"
	"github.com/abdul-hamid-achik/hitdesk/packages/workspace"
	"github.com/spf13/cobra"
)

var (
	importNameFlag        string
	importOutFlag         string
	importNoEnvFlag       bool
	importCommandFlag     string
	importBaseURLFlag     string
	importTagsFlag        string
	importExcludeTagsFlag string
	importSkipDisabled    bool
)

var importCmd = &cobra.Command{
	Use:   "import <format> <source>",
	Short: "Import requests from other tools",
	Long: `Import requests from curl commands, Insomnia exports or OpenAPI
specifications. Imported requests become a new collection; variables found
in the source are added to the stored environment unless already set.

Supported formats:
  curl     - A file of curl commands, or a single command with --command
  insomnia - Insomnia v4 export (JSON)
  openapi  - OpenAPI 3.0/3.1 (YAML or JSON), file or URL

Examples:
  hitdesk import curl requests.sh --name "Scratch"
  hitdesk import curl --command "curl https://api.example.com/users" --out users.json
  hitdesk import insomnia insomnia.json
  hitdesk import openapi spec.yaml --tags users,auth --base-url http://localhost:3000
  hitdesk import openapi spec.yaml --out api-collection.json`,
}

var importCurlCmd = &cobra.Command{
	Use:   "curl [file]",
	Short: "Import curl commands",
	Args:  usageArgs(cobra.MaximumNArgs(1)),
	RunE:  importCurlCommand,
}

var importInsomniaCmd = &cobra.Command{
	Use:   "insomnia <export-file>",
	Short: "Import an Insomnia export",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE:  importInsomniaCommand,
}

var importOpenAPICmd = &cobra.Command{
	Use:   "openapi <spec-file-or-url>",
	Short: "Import from OpenAPI/Swagger specification",
	Long: `Import an OpenAPI 3.0/3.1 specification file or URL as a collection with
one folder per tag. Request URLs start with {{baseUrl}}, which is added to
the stored environment from the first server entry or --base-url.`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: importOpenAPICommand,
}

func init() {
	for _, c := range []*cobra.Command{importCurlCmd, importInsomniaCmd, importOpenAPICmd} {
		c.Flags().StringVar(&importNameFlag, "name", "", "Collection name (default: taken from the source)")
		c.Flags().StringVar(&importOutFlag, "out", "", "Write to this file instead of the collection store")
		c.Flags().BoolVar(&importNoEnvFlag, "no-env", false, "Do not add imported variables to the stored environment")
	}

	importCurlCmd.Flags().StringVar(&importCommandFlag, "command", "", "Convert a single curl command to a request file")

	importInsomniaCmd.Flags().BoolVar(&importSkipDisabled, "skip-disabled", false, "Drop disabled params and headers")

	importOpenAPICmd.Flags().StringVar(&importBaseURLFlag, "base-url", "", "Override base URL from spec")
	importOpenAPICmd.Flags().StringVar(&importTagsFlag, "tags", "", "Filter operations by tags (comma-separated)")
	importOpenAPICmd.Flags().StringVar(&importExcludeTagsFlag, "exclude-tags", "", "Skip operations with these tags (comma-separated)")

	importCmd.AddCommand(importCurlCmd)
	importCmd.AddCommand(importInsomniaCmd)
	importCmd.AddCommand(importOpenAPICmd)
}

func importCurlCommand(cmd *cobra.Command, args []string) error {
	converter := curl.NewConverter()

	if importCommandFlag != "" {
		if len(args) > 0 {
			return usageError(fmt.Errorf("give either a file or --command, not both"))
		}
		_, tmpl, err := converter.ConvertCommand(importCommandFlag)
		if err != nil {
			return fmt.Errorf("failed to convert curl command: %w", err)
		}
		if importOutFlag == "" {
			formatter, err := newFormatter(cmd)
			if err != nil {
				return err
			}
			return formatter.FormatTemplate(tmpl)
		}
		f := workspace.NewRequestFile(tmpl)
		if importNameFlag != "" {
			f.Name = importNameFlag
		}
		if err := workspace.SaveFile(importOutFlag, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported to %s\n", importOutFlag)
		return nil
	}

	if len(args) != 1 {
		return usageError(fmt.Errorf("a file of curl commands or --command is required"))
	}

	name := importNameFlag
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	col, err := converter.ConvertFile(args[0], name)
	if err != nil {
		return fmt.Errorf("failed to convert curl commands: %w", err)
	}
	return saveImport(cmd, col, nil)
}

func importInsomniaCommand(cmd *cobra.Command, args []string) error {
	converter := insomnia.NewConverter(insomnia.WithKeepDisabled(!importSkipDisabled))

	result, err := converter.ConvertFile(args[0], importNameFlag)
	if err != nil {
		return fmt.Errorf("failed to convert Insomnia export: %w", err)
	}
	return saveImport(cmd, result.Collection, result.Env)
}

func importOpenAPICommand(cmd *cobra.Command, args []string) error {
	opts := []openapi.Option{openapi.WithWarnFunc(warnTo(cmd))}

	if importBaseURLFlag != "" {
		opts = append(opts, openapi.WithBaseURL(importBaseURLFlag))
	}
	if tags := splitList(importTagsFlag); len(tags) > 0 {
		opts = append(opts, openapi.WithTags(tags))
	}
	if tags := splitList(importExcludeTagsFlag); len(tags) > 0 {
		opts = append(opts, openapi.WithExcludeTags(tags))
	}

	result, err := openapi.NewConverter(opts...).ConvertFile(args[0], importNameFlag)
	if err != nil {
		return fmt.Errorf("failed to convert OpenAPI spec: %w", err)
	}
	return saveImport(cmd, result.Collection, result.Env)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// saveImport writes col to --out as an export document, or appends it to the
// collection store, then adds vars that are not yet stored.
func saveImport(cmd *cobra.Command, col *collection.Collection, vars []env.EnvVar) error {
	if importOutFlag != "" {
		data, err := collection.Export([]collection.Collection{*col}, time.Now())
		if err != nil {
			return err
		}
		if dir := filepath.Dir(importOutFlag); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		}
		if err := os.WriteFile(importOutFlag, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported %d requests to %s\n", col.Count(), importOutFlag)
	} else {
		err := collectionStore().Update(func(cols []collection.Collection) ([]collection.Collection, error) {
			return append(cols, *col), nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d requests into collection %q (%s)\n", col.Count(), col.Name, col.ID)
	}

	if importNoEnvFlag || len(vars) == 0 {
		return nil
	}

	added, err := addMissingVars(vars)
	if err != nil {
		return err
	}
	if added > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %d variables to the environment\n", added)
	}
	return nil
}

// addMissingVars stores the variables whose keys are not already set.
func addMissingVars(vars []env.EnvVar) (int, error) {
	store, err := openStore()
	if err != nil {
		return 0, err
	}
	defer store.Close()

	e, err := store.Environment(activeEnvironment)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, v := range vars {
		if _, exists := e.Get(v.Key); exists {
			continue
		}
		if err := store.SetEnvVar(v); err != nil {
			return added, err
		}
		e.Set(v.Key, v.Value, v.Enabled)
		added++
	}
	return added, nil
}
