package collection

import (
	"errors"
	"strings"
)

// ErrStop ends a Walk early without reporting an error.
var ErrStop = errors.New("stop walk")

// WalkFunc is called for each request with the names of the folders above it,
// starting with the collection name.
type WalkFunc func(path []string, r *SavedRequest) error

// Walk visits every request in pre-order: a folder's own requests, then its
// sub-folders in order. Returning ErrStop ends the walk and Walk returns nil.
func (c *Collection) Walk(fn WalkFunc) error {
	var err error
	walk(c, nil, func(path []string, r *SavedRequest) bool {
		err = fn(path, r)
		return err == nil
	})
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

// Match is a search hit.
type Match struct {
	Path    []string
	Request SavedRequest
}

// Location renders the folder path as "a / b / c".
func (m Match) Location() string {
	return strings.Join(m.Path, " / ")
}

// Search returns requests whose name, URL or method contains query,
// case-insensitively, in pre-order. An empty query matches everything.
func (c *Collection) Search(query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	var matches []Match
	walk(c, nil, func(path []string, r *SavedRequest) bool {
		if q == "" ||
			strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Request.URL), q) ||
			strings.Contains(strings.ToLower(r.Request.Method), q) {
			matches = append(matches, Match{Path: append([]string(nil), path...), Request: *r})
		}
		return true
	})
	return matches
}

// walk visits requests pre-order until visit returns false.
func walk(f *Folder, parent []string, visit func(path []string, r *SavedRequest) bool) bool {
	path := append(append([]string(nil), parent...), f.Name)
	for i := range f.Requests {
		if !visit(path, &f.Requests[i]) {
			return false
		}
	}
	for i := range f.Folders {
		if !walk(&f.Folders[i], path, visit) {
			return false
		}
	}
	return true
}
