package collection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/google/uuid"
)

// MaxDepth bounds folder nesting below a collection root.
const MaxDepth = 32

var (
	// ErrTooDeep is returned when folders nest deeper than MaxDepth.
	ErrTooDeep = errors.New("collection nesting exceeds maximum depth")
	// ErrNotFound is returned when an id or name matches nothing.
	ErrNotFound = errors.New("not found")
)

// SavedRequest is a named request template stored in a collection.
type SavedRequest struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Request request.Template `json:"request"`
}

// Folder holds requests and nested folders.
type Folder struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Requests []SavedRequest `json:"requests"`
	Folders  []Folder       `json:"folders"`
}

// Collection is a root folder.
type Collection = Folder

// New returns an empty collection with a fresh id.
func New(name string) *Collection {
	return &Collection{
		ID:       uuid.NewString(),
		Name:     name,
		Requests: []SavedRequest{},
		Folders:  []Folder{},
	}
}

// NewFolder returns an empty folder with a fresh id.
func NewFolder(name string) Folder {
	return Folder{ID: uuid.NewString(), Name: name, Requests: []SavedRequest{}, Folders: []Folder{}}
}

// NewSavedRequest copies t into a saved request with a fresh id.
func NewSavedRequest(name string, t *request.Template) SavedRequest {
	return SavedRequest{ID: uuid.NewString(), Name: name, Request: *t.Clone()}
}

// AddFolder creates a folder under parentID, or under the root when
// parentID is empty or the collection's own id.
func (c *Collection) AddFolder(parentID, name string) (*Folder, error) {
	parent, depth, err := c.folder(parentID)
	if err != nil {
		return nil, err
	}
	if depth+1 > MaxDepth {
		return nil, ErrTooDeep
	}
	parent.Folders = append(parent.Folders, NewFolder(name))
	return &parent.Folders[len(parent.Folders)-1], nil
}

// AddRequest stores a copy of t in folderID (root when empty).
func (c *Collection) AddRequest(folderID, name string, t *request.Template) (*SavedRequest, error) {
	parent, _, err := c.folder(folderID)
	if err != nil {
		return nil, err
	}
	parent.Requests = append(parent.Requests, NewSavedRequest(name, t))
	return &parent.Requests[len(parent.Requests)-1], nil
}

// Remove deletes the request or folder with id. Removing a folder removes
// everything under it.
func (c *Collection) Remove(id string) bool {
	_, ok := c.takeRequest(id)
	if ok {
		return true
	}
	return c.removeFolder(id)
}

// MoveRequest moves a request into folderID (root when empty).
func (c *Collection) MoveRequest(id, folderID string) error {
	if _, _, err := c.folder(folderID); err != nil {
		return err
	}
	r, ok := c.takeRequest(id)
	if !ok {
		return fmt.Errorf("request %q: %w", id, ErrNotFound)
	}
	target, _, err := c.folder(folderID)
	if err != nil {
		return err
	}
	target.Requests = append(target.Requests, r)
	return nil
}

// Rename renames the collection, a folder or a request by id.
func (c *Collection) Rename(id, name string) error {
	if r := c.FindRequest(id); r != nil {
		r.Name = name
		return nil
	}
	f, _ := find(c, id, 0)
	if f == nil {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	f.Name = name
	return nil
}

// FindRequest returns the request with id, or nil.
func (c *Collection) FindRequest(id string) *SavedRequest {
	var found *SavedRequest
	walk(c, nil, func(_ []string, r *SavedRequest) bool {
		if r.ID == id {
			found = r
			return false
		}
		return true
	})
	return found
}

// FindFolder returns the folder with id, or nil.
func (c *Collection) FindFolder(id string) *Folder {
	f, _ := find(c, id, 0)
	return f
}

// CheckDepth returns ErrTooDeep if any folder nests deeper than MaxDepth.
func (c *Collection) CheckDepth() error {
	if depth(c) > MaxDepth {
		return ErrTooDeep
	}
	return nil
}

// Count returns the number of requests in the tree.
func (c *Collection) Count() int {
	n := 0
	walk(c, nil, func([]string, *SavedRequest) bool {
		n++
		return true
	})
	return n
}

func (c *Collection) folder(id string) (*Folder, int, error) {
	if id == "" {
		return c, 0, nil
	}
	f, d := find(c, id, 0)
	if f == nil {
		return nil, 0, fmt.Errorf("folder %q: %w", id, ErrNotFound)
	}
	return f, d, nil
}

func (c *Collection) takeRequest(id string) (SavedRequest, bool) {
	var taken SavedRequest
	var ok bool
	var visit func(f *Folder) bool
	visit = func(f *Folder) bool {
		for i := range f.Requests {
			if f.Requests[i].ID == id {
				taken = f.Requests[i]
				f.Requests = append(f.Requests[:i], f.Requests[i+1:]...)
				ok = true
				return true
			}
		}
		for i := range f.Folders {
			if visit(&f.Folders[i]) {
				return true
			}
		}
		return false
	}
	visit(c)
	return taken, ok
}

func (c *Collection) removeFolder(id string) bool {
	var visit func(f *Folder) bool
	visit = func(f *Folder) bool {
		for i := range f.Folders {
			if f.Folders[i].ID == id {
				f.Folders = append(f.Folders[:i], f.Folders[i+1:]...)
				return true
			}
			if visit(&f.Folders[i]) {
				return true
			}
		}
		return false
	}
	return visit(c)
}

// find returns the folder with id and its depth below f.
func find(f *Folder, id string, d int) (*Folder, int) {
	if f.ID == id {
		return f, d
	}
	for i := range f.Folders {
		if found, fd := find(&f.Folders[i], id, d+1); found != nil {
			return found, fd
		}
	}
	return nil, 0
}

// depth returns the deepest folder level below f.
func depth(f *Folder) int {
	deepest := 0
	for i := range f.Folders {
		if d := 1 + depth(&f.Folders[i]); d > deepest {
			deepest = d
			if deepest > MaxDepth {
				return deepest
			}
		}
	}
	return deepest
}

// normalize replaces nil slices with empty ones and assigns missing ids.
func normalize(f *Folder) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Requests == nil {
		f.Requests = []SavedRequest{}
	}
	if f.Folders == nil {
		f.Folders = []Folder{}
	}
	for i := range f.Requests {
		if f.Requests[i].ID == "" {
			f.Requests[i].ID = uuid.NewString()
		}
	}
	for i := range f.Folders {
		normalize(&f.Folders[i])
	}
}

// Find returns the collection in cols whose id equals ref or whose name
// matches ref case-insensitively.
func Find(cols []Collection, ref string) (*Collection, error) {
	for i := range cols {
		if cols[i].ID == ref {
			return &cols[i], nil
		}
	}
	for i := range cols {
		if strings.EqualFold(cols[i].Name, ref) {
			return &cols[i], nil
		}
	}
	return nil, fmt.Errorf("collection %q: %w", ref, ErrNotFound)
}
