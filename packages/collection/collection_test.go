package collection

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tmpl(method, url string) *request.Template {
	t := request.New()
	t.Method = method
	t.URL = url
	return t
}

// buildSample returns:
//
//	API
//	├── GET list users
//	├── Users/
//	│   ├── POST create user
//	│   └── Admin/
//	│       └── DELETE remove user
//	└── Orders/
//	    └── GET list orders
func buildSample(t *testing.T) *Collection {
	t.Helper()
	c := New("API")

	_, err := c.AddRequest("", "list users", tmpl("GET", "{{BASE}}/users"))
	require.NoError(t, err)

	users, err := c.AddFolder("", "Users")
	require.NoError(t, err)
	usersID := users.ID
	_, err = c.AddRequest(usersID, "create user", tmpl("POST", "{{BASE}}/users"))
	require.NoError(t, err)

	admin, err := c.AddFolder(usersID, "Admin")
	require.NoError(t, err)
	_, err = c.AddRequest(admin.ID, "remove user", tmpl("DELETE", "{{BASE}}/users/1"))
	require.NoError(t, err)

	orders, err := c.AddFolder("", "Orders")
	require.NoError(t, err)
	_, err = c.AddRequest(orders.ID, "list orders", tmpl("GET", "{{BASE}}/orders"))
	require.NoError(t, err)

	return c
}

func names(c *Collection) []string {
	var out []string
	_ = c.Walk(func(_ []string, r *SavedRequest) error {
		out = append(out, r.Name)
		return nil
	})
	return out
}

func TestWalk_PreOrder(t *testing.T) {
	c := buildSample(t)

	assert.Equal(t, []string{"list users", "create user", "remove user", "list orders"}, names(c))
	assert.Equal(t, 4, c.Count())

	var paths []string
	_ = c.Walk(func(path []string, r *SavedRequest) error {
		paths = append(paths, strings.Join(path, "/"))
		return nil
	})
	assert.Equal(t, []string{"API", "API/Users", "API/Users/Admin", "API/Orders"}, paths)
}

func TestWalk_Stop(t *testing.T) {
	c := buildSample(t)

	visited := 0
	err := c.Walk(func(_ []string, _ *SavedRequest) error {
		visited++
		if visited == 2 {
			return ErrStop
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, visited)

	boom := errors.New("boom")
	assert.ErrorIs(t, c.Walk(func([]string, *SavedRequest) error { return boom }), boom)
}

func TestSearch(t *testing.T) {
	c := buildSample(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"users", []string{"list users", "create user", "remove user"}},
		{"ORDERS", []string{"list orders"}},
		{"delete", []string{"remove user"}},
		{"", []string{"list users", "create user", "remove user", "list orders"}},
		{"nothing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []string
			for _, m := range c.Search(tt.query) {
				got = append(got, m.Request.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	m := c.Search("remove")[0]
	assert.Equal(t, "API / Users / Admin", m.Location())
}

func TestRemoveMoveRename(t *testing.T) {
	c := buildSample(t)
	orders := c.Folders[1]
	create := c.Folders[0].Requests[0]

	require.NoError(t, c.MoveRequest(create.ID, orders.ID))
	assert.Equal(t, []string{"list users", "remove user", "list orders", "create user"}, names(c))

	require.NoError(t, c.Rename(create.ID, "add user"))
	assert.Equal(t, "add user", c.FindRequest(create.ID).Name)

	require.NoError(t, c.Rename(orders.ID, "Billing"))
	assert.Equal(t, "Billing", c.FindFolder(orders.ID).Name)

	assert.True(t, c.Remove(c.Folders[0].ID))
	assert.Equal(t, []string{"list users", "list orders", "add user"}, names(c))

	assert.False(t, c.Remove("missing"))
	assert.ErrorIs(t, c.MoveRequest("missing", ""), ErrNotFound)
	assert.ErrorIs(t, c.MoveRequest(create.ID, "missing"), ErrNotFound)
	assert.ErrorIs(t, c.Rename("missing", "x"), ErrNotFound)
}

func TestAddRequest_CopiesTemplate(t *testing.T) {
	c := New("API")
	src := tmpl("GET", "https://a.test")
	src.Headers = []request.KeyValue{{Key: "A", Value: "1", Enabled: true}}

	saved, err := c.AddRequest("", "a", src)
	require.NoError(t, err)

	src.Headers[0].Value = "changed"
	assert.Equal(t, "1", saved.Request.Headers[0].Value)
}

func TestDepthBound(t *testing.T) {
	c := New("deep")
	parent := ""
	for i := 0; i < MaxDepth; i++ {
		f, err := c.AddFolder(parent, "level")
		require.NoError(t, err)
		parent = f.ID
	}

	_, err := c.AddFolder(parent, "too deep")
	assert.ErrorIs(t, err, ErrTooDeep)
	assert.NoError(t, c.CheckDepth())

	// A hand-built tree past the bound is rejected on check
	leaf := c.FindFolder(parent)
	leaf.Folders = append(leaf.Folders, NewFolder("sneaky"))
	assert.ErrorIs(t, c.CheckDepth(), ErrTooDeep)
}

func TestFind(t *testing.T) {
	cols := []Collection{*New("Alpha"), *New("Beta")}

	c, err := Find(cols, "beta")
	require.NoError(t, err)
	assert.Equal(t, "Beta", c.Name)

	c, err = Find(cols, cols[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", c.Name)

	_, err = Find(cols, "gamma")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "data", "collections.json"))

	cols, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, cols)

	require.NoError(t, store.Save([]Collection{*buildSample(t)}))

	err = store.Update(func(cols []Collection) ([]Collection, error) {
		return append(cols, *New("Second")), nil
	})
	require.NoError(t, err)

	cols, err = store.Load()
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, []string{"list users", "create user", "remove user", "list orders"}, names(&cols[0]))
	assert.Equal(t, "Second", cols[1].Name)
}

func TestExportImport(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	data, err := Export([]Collection{*buildSample(t)}, now)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, DocumentVersion, doc.Version)
	assert.Equal(t, "2024-05-01T12:00:00Z", doc.ExportedAt)

	cols, err := Import(data)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, 4, cols[0].Count())
}

func TestImport_AssignsIDs(t *testing.T) {
	data := []byte(`{"collections":[{"name":"Bare","requests":[{"name":"ping","request":{"method":"GET","url":"https://x.test"}}]}]}`)

	cols, err := Import(data)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.NotEmpty(t, cols[0].ID)
	assert.NotEmpty(t, cols[0].Requests[0].ID)
	assert.NotNil(t, cols[0].Folders)
}

func TestImport_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{"collections":`},
		{"missing collections", `{"version":"1.0"}`},
		{"request without url", `{"collections":[{"name":"x","requests":[{"name":"r","request":{"method":"GET"}}]}]}`},
		{"bad enabled type", `{"collections":[{"name":"x","requests":[{"name":"r","request":{"url":"u","headers":[{"key":"k","enabled":"yes"}]}}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestImport_TooDeep(t *testing.T) {
	root := NewFolder("deep")
	cur := &root
	for i := 0; i <= MaxDepth; i++ {
		cur.Folders = append(cur.Folders, NewFolder("level"))
		cur = &cur.Folders[0]
	}

	data, err := Export([]Collection{root}, time.Now())
	require.NoError(t, err)

	_, err = Import(data)
	assert.ErrorIs(t, err, ErrTooDeep)
}
