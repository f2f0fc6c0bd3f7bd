package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/workspace"
	"github.com/spf13/cobra"
)

var (
	collectionFolderFlag string
	collectionNameFlag   string
	collectionInFlag     string
	collectionOutFlag    string
)

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"col"},
	Short:   "Manage saved request collections",
	Long: `Collections group saved requests in nested folders. Collections are
referenced by id or name; requests and folders by id.

Examples:
  hitdesk collection new "My API"
  hitdesk collection mkdir "My API" Users
  hitdesk collection add "My API" users.json --folder <folder-id>
  hitdesk collection search users
  hitdesk collection rm "My API" <request-id>
  hitdesk collection export --out backup.json
  hitdesk collection import backup.json`,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections (-v shows their requests)",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		cols, err := collectionStore().Load()
		if err != nil {
			return err
		}
		formatter, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		return formatter.FormatCollections(cols)
	},
}

var collectionNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create an empty collection",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		col := collection.New(args[0])
		err := collectionStore().Update(func(cols []collection.Collection) ([]collection.Collection, error) {
			return append(cols, *col), nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created collection %q (%s)\n", col.Name, col.ID)
		return nil
	},
}

var collectionMkdirCmd = &cobra.Command{
	Use:   "mkdir <collection> <folder-name>",
	Short: "Create a folder",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		var folderID string
		err := updateCollection(args[0], func(col *collection.Collection) error {
			f, err := col.AddFolder(collectionFolderFlag, args[1])
			if err != nil {
				return err
			}
			folderID = f.ID
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created folder %q (%s)\n", args[1], folderID)
		return nil
	},
}

var collectionAddCmd = &cobra.Command{
	Use:   "add <collection> <request-file>",
	Short: "Save a request file into a collection",
	Args:  usageArgs(cobra.ExactArgs(2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := workspace.Load(args[1])
		if err != nil {
			return err
		}
		name := f.Name
		if collectionNameFlag != "" {
			name = collectionNameFlag
		}
		if name == "" {
			name = workspace.DefaultName(&f.Request)
		}

		var requestID string
		err = updateCollection(args[0], func(col *collection.Collection) error {
			r, err := col.AddRequest(collectionFolderFlag, name, &f.Request)
			if err != nil {
				return err
			}
			requestID = r.ID
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %q (%s)\n", name, requestID)
		return nil
	},
}

var collectionSaveCmd = &cobra.Command{
	Use:   "save <collection> <request-id> <file>",
	Short: "Write a saved request to a request file",
	Args:  usageArgs(cobra.ExactArgs(3)),
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, err := findSavedRequest(args[0], args[1])
		if err != nil {
			return err
		}
		if err := workspace.SaveFile(args[2], &workspace.RequestFile{Name: saved.Name, Request: saved.Request}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[2])
		return nil
	},
}

var collectionMvCmd = &cobra.Command{
	Use:   "mv <collection> <request-id> <folder-id|root>",
	Short: "Move a request to another folder",
	Args:  usageArgs(cobra.ExactArgs(3)),
	RunE: func(cmd *cobra.Command, args []string) error {
		folderID := args[2]
		if folderID == "root" {
			folderID = ""
		}
		return updateCollection(args[0], func(col *collection.Collection) error {
			return col.MoveRequest(args[1], folderID)
		})
	},
}

var collectionRenameCmd = &cobra.Command{
	Use:   "rename <collection> <id> <name>",
	Short: "Rename a request or folder",
	Args:  usageArgs(cobra.ExactArgs(3)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateCollection(args[0], func(col *collection.Collection) error {
			return col.Rename(args[1], args[2])
		})
	},
}

var collectionRmCmd = &cobra.Command{
	Use:   "rm <collection> [id]",
	Short: "Remove a collection, or a request or folder inside it",
	Args:  usageArgs(cobra.RangeArgs(1, 2)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 2 {
			return updateCollection(args[0], func(col *collection.Collection) error {
				if !col.Remove(args[1]) {
					return fmt.Errorf("item %q: %w", args[1], collection.ErrNotFound)
				}
				return nil
			})
		}

		return collectionStore().Update(func(cols []collection.Collection) ([]collection.Collection, error) {
			col, err := collection.Find(cols, args[0])
			if err != nil {
				return nil, err
			}
			out := make([]collection.Collection, 0, len(cols)-1)
			for _, c := range cols {
				if c.ID != col.ID {
					out = append(out, c)
				}
			}
			return out, nil
		})
	},
}

var collectionSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find saved requests by name, URL or method",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		cols, err := collectionStore().Load()
		if err != nil {
			return err
		}

		if collectionInFlag != "" {
			col, err := collection.Find(cols, collectionInFlag)
			if err != nil {
				return err
			}
			cols = []collection.Collection{*col}
		}

		var matches []collection.Match
		for i := range cols {
			matches = append(matches, cols[i].Search(args[0])...)
		}

		formatter, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		return formatter.FormatMatches(matches)
	},
}

var collectionExportCmd = &cobra.Command{
	Use:   "export [collection...]",
	Short: "Export collections as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cols, err := collectionStore().Load()
		if err != nil {
			return err
		}
		if len(args) > 0 {
			selected := make([]collection.Collection, 0, len(args))
			for _, ref := range args {
				col, err := collection.Find(cols, ref)
				if err != nil {
					return err
				}
				selected = append(selected, *col)
			}
			cols = selected
		}

		data, err := collection.Export(cols, time.Now())
		if err != nil {
			return err
		}
		if collectionOutFlag == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		if err := os.WriteFile(collectionOutFlag, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d collections to %s\n", len(cols), collectionOutFlag)
		return nil
	},
}

var collectionImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import collections from an exported JSON document",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		imported, err := collection.Import(data)
		if err != nil {
			return err
		}

		err = collectionStore().Update(func(cols []collection.Collection) ([]collection.Collection, error) {
			return append(cols, imported...), nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d collections\n", len(imported))
		return nil
	},
}

// updateCollection applies fn to the collection ref and saves the result.
func updateCollection(ref string, fn func(col *collection.Collection) error) error {
	return collectionStore().Update(func(cols []collection.Collection) ([]collection.Collection, error) {
		col, err := collection.Find(cols, ref)
		if err != nil {
			return nil, err
		}
		if err := fn(col); err != nil {
			return nil, err
		}
		return cols, nil
	})
}

func init() {
	collectionMkdirCmd.Flags().StringVar(&collectionFolderFlag, "parent", "", "Parent folder id (default: collection root)")
	collectionAddCmd.Flags().StringVar(&collectionFolderFlag, "folder", "", "Folder id (default: collection root)")
	collectionAddCmd.Flags().StringVar(&collectionNameFlag, "name", "", "Request name (default: from the file)")
	collectionSearchCmd.Flags().StringVarP(&collectionInFlag, "collection", "c", "", "Search only this collection")
	collectionExportCmd.Flags().StringVar(&collectionOutFlag, "out", "", "Write to this file instead of stdout")

	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionNewCmd)
	collectionCmd.AddCommand(collectionMkdirCmd)
	collectionCmd.AddCommand(collectionAddCmd)
	collectionCmd.AddCommand(collectionSaveCmd)
	collectionCmd.AddCommand(collectionMvCmd)
	collectionCmd.AddCommand(collectionRenameCmd)
	collectionCmd.AddCommand(collectionRmCmd)
	collectionCmd.AddCommand(collectionSearchCmd)
	collectionCmd.AddCommand(collectionExportCmd)
	collectionCmd.AddCommand(collectionImportCmd)
}
