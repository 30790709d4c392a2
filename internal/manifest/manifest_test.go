package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochmaxence/peniche/pkg/types"
)

func TestParseWorkspace(t *testing.T) {
	m, err := ParseWorkspace([]byte(`
[workspace]
resolver = "2"
name = "demo"
members = ["core", "cli"]
`))
	require.NoError(t, err)
	assert.Equal(t, "demo", m.Workspace.Name)
	assert.Equal(t, []string{"core", "cli"}, m.Workspace.Members)
}

func TestParseWorkspaceMalformed(t *testing.T) {
	_, err := ParseWorkspace([]byte("[workspace\nname ="))
	assert.ErrorIs(t, err, types.ErrManifestInvalid)
}

func TestParseCrateDependencyForms(t *testing.T) {
	m, err := ParseCrate([]byte(`
[package]
name = "cli"
version = "0.1.0"

[dependencies]
serde = "1.0"
core = { path = "../core", version = "0.1.0" }
tokio = { version = "1", features = ["rt", "macros"] }
`))
	require.NoError(t, err)

	deps := m.DependencyList()
	require.Len(t, deps, 3)

	assert.Equal(t, types.Dependency{Name: "core", Path: "../core", Version: "0.1.0"}, deps[0])
	assert.Equal(t, types.Dependency{Name: "serde", Version: "1.0"}, deps[1])
	assert.Equal(t, types.Dependency{Name: "tokio", Version: "1", Features: []string{"rt", "macros"}}, deps[2])
}

func TestParseCrateMissingName(t *testing.T) {
	_, err := ParseCrate([]byte("[package]\nversion = \"0.1.0\"\n"))
	assert.ErrorIs(t, err, types.ErrManifestInvalid)
}

func TestReadWorkspaceMissingFile(t *testing.T) {
	_, err := ReadWorkspace(filepath.Join(t.TempDir(), "Cargo.toml"))
	assert.ErrorIs(t, err, types.ErrManifestNotFound)
}

func TestSaveAtomicReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cargo.toml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, SaveAtomic(path, []byte("new")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, WorkspaceFile), InitialWorkspace("demo"), 0o644))
	nested := filepath.Join(root, "crates", "core", "src")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	// A crate manifest without [workspace] must not terminate the search.
	require.NoError(t, os.WriteFile(filepath.Join(root, "crates", "core", WorkspaceFile), InitialCrate("core"), 0o644))

	got, err := FindRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindRootNotFound(t *testing.T) {
	_, err := FindRoot(t.TempDir())
	assert.ErrorIs(t, err, types.ErrWorkspaceNotFound)
}

func TestAddRemoveMemberRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, WorkspaceFile)
	doc := `# workspace for the demo project
[workspace]
resolver = "2"
name = "demo"
members = []

[profile.release]
lto = "thin"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	require.NoError(t, AddMember(path, "crates/core"))
	require.NoError(t, AddMember(path, "crates/cli"))

	m, err := ReadWorkspace(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"crates/core", "crates/cli"}, m.Workspace.Members)

	// Unrelated content survives the patch.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# workspace for the demo project")
	assert.Contains(t, string(data), `lto = "thin"`)

	require.NoError(t, RemoveMember(path, "crates/core"))
	require.NoError(t, RemoveMember(path, "crates/cli"))

	m, err = ReadWorkspace(path)
	require.NoError(t, err)
	assert.Empty(t, m.Workspace.Members)
}

func TestAddDependencyForms(t *testing.T) {
	tests := []struct {
		name string
		dep  types.Dependency
		want string
	}{
		{
			name: "path only",
			dep:  types.Dependency{Name: "core", Path: "../core"},
			want: `core = { path = "../core" }`,
		},
		{
			name: "version only uses string form",
			dep:  types.Dependency{Name: "serde", Version: "1.0"},
			want: `serde = "1.0"`,
		},
		{
			name: "path and version",
			dep:  types.Dependency{Name: "core", Path: "../core", Version: "0.1.0"},
			want: `core = { path = "../core", version = "0.1.0" }`,
		},
		{
			name: "features",
			dep:  types.Dependency{Name: "tokio", Version: "1", Features: []string{"rt"}},
			want: `tokio = { version = "1", features = ["rt"] }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), WorkspaceFile)
			require.NoError(t, os.WriteFile(path, InitialCrate("cli"), 0o644))

			require.NoError(t, AddDependency(path, tt.dep))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(data), tt.want)

			_, err = ReadCrate(path)
			assert.NoError(t, err, "patched manifest must stay parseable")
		})
	}
}

func TestRemoveDependency(t *testing.T) {
	path := filepath.Join(t.TempDir(), WorkspaceFile)
	require.NoError(t, os.WriteFile(path, InitialCrate("cli"), 0o644))
	require.NoError(t, AddDependency(path, types.Dependency{Name: "core", Path: "../core"}))

	require.NoError(t, RemoveDependency(path, "core"))

	m, err := ReadCrate(path)
	require.NoError(t, err)
	assert.Empty(t, m.DependencyList())

	err = RemoveDependency(path, "core")
	assert.ErrorIs(t, err, types.ErrEdgeNotFound)
}

func TestRemoveDependencyTableForm(t *testing.T) {
	path := filepath.Join(t.TempDir(), WorkspaceFile)
	doc := `[package]
name = "cli"
version = "0.1.0"

[dependencies.core]
path = "../core"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	require.NoError(t, RemoveDependency(path, "core"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "core")
}
