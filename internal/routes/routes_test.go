package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(Definitions())
	require.NoError(t, err)
	return table
}

func TestDefinitions_Valid(t *testing.T) {
	assert.NoError(t, Validate(Definitions()))
}

func TestFlatten_Patterns(t *testing.T) {
	var patterns []string
	for _, leaf := range Flatten(Definitions()) {
		patterns = append(patterns, leaf.Pattern)
	}

	assert.Equal(t, []string{
		"/*",
		"/main",
		"/",
		"/job-order",
		"/kasbon",
		"/invoice",
		"/penerimaan",
		"/transfer",
		"/pelunasan",
		"/laporan",
		"/users",
		"/settings",
		"/rekon",
		"/rekon/settings",
		"/auth/login",
		"/auth/register",
		"/auth/error",
	}, patterns)
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		parent, child, want string
	}{
		{"/auth", "login", "/auth/login"},
		{"/auth/", "login", "/auth/login"},
		{"/main", "/job-order", "/job-order"},
		{"/main", "", "/main"},
		{"/", "x", "/x"},
	}
	for _, tt := range tests {
		t.Run(tt.parent+"+"+tt.child, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinPath(tt.parent, tt.child))
		})
	}
}

func TestRequiresAuth(t *testing.T) {
	protected := &Route{Path: "/p", Meta: Meta{RequiresAuth: Bool(true)}}
	public := &Route{Path: "/q", Meta: Meta{RequiresAuth: Bool(false)}}
	plain := &Route{Path: "x"}

	tests := []struct {
		name  string
		chain []*Route
		want  bool
	}{
		{"no flags", []*Route{plain}, false},
		{"inherited from parent", []*Route{protected, plain}, true},
		{"overridden by child", []*Route{protected, public}, false},
		{"public parent, protected child", []*Route{public, protected}, true},
		{"empty chain", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiresAuth(tt.chain))
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	page := func(name, path string) *Route {
		return &Route{Name: name, Path: path, Component: Of(templNop)}
	}
	catchAll := page("NotFound", CatchAllPath)

	tests := []struct {
		name    string
		roots   []*Route
		wantErr error
	}{
		{
			name:    "missing catch-all",
			roots:   []*Route{page("A", "/a")},
			wantErr: ErrMissingCatchAll,
		},
		{
			name:    "duplicate name",
			roots:   []*Route{catchAll, page("A", "/a"), page("A", "/b")},
			wantErr: ErrDuplicateName,
		},
		{
			name:    "duplicate sibling path",
			roots:   []*Route{catchAll, page("A", "/a"), page("B", "/a")},
			wantErr: ErrDuplicatePath,
		},
		{
			name: "duplicate resolved pattern across subtrees",
			roots: []*Route{
				catchAll,
				{Path: "/x", Children: []*Route{page("A", "/same")}},
				{Path: "/y", Children: []*Route{page("B", "/same")}},
			},
			wantErr: ErrDuplicatePath,
		},
		{
			name:    "leaf without component",
			roots:   []*Route{catchAll, {Name: "Empty", Path: "/empty"}},
			wantErr: ErrMissingComponent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.roots)
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = NewTable(tt.roots)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTable_Resolve(t *testing.T) {
	table := newDefaultTable(t)

	tests := []struct {
		path     string
		wantName string
		wantAuth bool
	}{
		{"/", NameDashboard, true},
		{"/job-order", "JobOrder", true},
		{"/job-order/", "JobOrder", true},
		{"/invoice?page=2", "Invoice", true},
		{"/rekon/settings", "RekonSettings", true},
		{"/auth/login", NameLogin, false},
		{"/auth/register", NameRegister, false},
		{"/auth/error", NameError, false},
		{"/unknown-path", NameNotFound, false},
		{"/auth", NameNotFound, false},
		{"/job-order/42/edit", NameNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := table.Resolve(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.wantName, m.Route().Name)
			assert.Equal(t, tt.wantAuth, RequiresAuth(m.Chain))
		})
	}
}

func TestTable_Resolve_Redirect(t *testing.T) {
	table := newDefaultTable(t)

	m, ok := table.Resolve("/main")
	require.True(t, ok)
	assert.Equal(t, "/", m.Route().Redirect)
}

func TestTable_Resolve_Malformed(t *testing.T) {
	table := newDefaultTable(t)

	_, ok := table.Resolve("")
	assert.False(t, ok)
	_, ok = table.Resolve("job-order")
	assert.False(t, ok)
}

func TestTable_Lookup(t *testing.T) {
	table := newDefaultTable(t)

	leaf, ok := table.Lookup(NameLogin)
	require.True(t, ok)
	assert.Equal(t, "/auth/login", leaf.Pattern)
	assert.Equal(t, "Login", leaf.Title())

	_, ok = table.Lookup("Nope")
	assert.False(t, ok)
}

func TestTable_Mount(t *testing.T) {
	table := newDefaultTable(t)

	r := chi.NewRouter()
	table.Mount(r, func(leaf Leaf) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(leaf.Route().Name))
		})
	})

	tests := map[string]string{
		"/":               NameDashboard,
		"/kasbon":         "Kasbon",
		"/auth/login":     NameLogin,
		"/does/not/exist": NameNotFound,
	}
	for path, want := range tests {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, want, rec.Body.String())
		})
	}
}

func TestLeaf_Components(t *testing.T) {
	table := newDefaultTable(t)

	leaf, ok := table.Lookup("Invoice")
	require.True(t, ok)
	assert.False(t, leaf.Chain[0].Component.Loaded(), "layout loads on first navigation")

	components, err := leaf.Components()
	require.NoError(t, err)
	assert.Len(t, components, 2, "layout + page")
	assert.True(t, leaf.Chain[0].Component.Loaded())
	assert.True(t, leaf.Route().Component.Loaded())
}
