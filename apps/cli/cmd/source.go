package cmd

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/abdul-hamid-achik/hitdesk/packages/workspace"
	"github.com/spf13/cobra"
)

// requestSource selects a template from a request file or a saved request.
type requestSource struct {
	collection string
	request    string
}

func (s *requestSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.collection, "collection", "c", "", "Collection holding the request (id or name)")
	cmd.Flags().StringVarP(&s.request, "request", "r", "", "Saved request id or name (with --collection)")
}

// load returns the template and a display name. path is empty unless the
// template came from a file.
func (s *requestSource) load(args []string) (t *request.Template, name, path string, err error) {
	if s.collection != "" || s.request != "" {
		if len(args) > 0 {
			return nil, "", "", usageError(fmt.Errorf("give either a request file or --collection/--request, not both"))
		}
		if s.collection == "" || s.request == "" {
			return nil, "", "", usageError(fmt.Errorf("--collection and --request must be used together"))
		}
		saved, err := findSavedRequest(s.collection, s.request)
		if err != nil {
			return nil, "", "", err
		}
		return saved.Request.Clone(), saved.Name, "", nil
	}

	if len(args) != 1 {
		return nil, "", "", usageError(fmt.Errorf("a request file is required"))
	}
	f, err := workspace.Load(args[0])
	if err != nil {
		return nil, "", "", err
	}
	return &f.Request, f.Name, args[0], nil
}

// findSavedRequest looks up ref by id, then by case-insensitive name, in the
// collection colRef.
func findSavedRequest(colRef, ref string) (*collection.SavedRequest, error) {
	cols, err := collectionStore().Load()
	if err != nil {
		return nil, err
	}
	col, err := collection.Find(cols, colRef)
	if err != nil {
		return nil, err
	}

	if r := col.FindRequest(ref); r != nil {
		return r, nil
	}

	var found *collection.SavedRequest
	_ = col.Walk(func(path []string, r *collection.SavedRequest) error {
		if strings.EqualFold(r.Name, ref) {
			found = r
			return collection.ErrStop
		}
		return nil
	})
	if found == nil {
		return nil, fmt.Errorf("request %q in %s: %w", ref, col.Name, collection.ErrNotFound)
	}
	return found, nil
}
