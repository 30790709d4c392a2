// Package manifest is the persistence layer for workspace and crate
// manifests. Reads go through a typed TOML parse; targeted edits go through
// tomledit patches so hand-authored content round-trips unchanged; writes
// are atomic (temp file + rename).
package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/kochmaxence/peniche/pkg/types"
)

// Manifest file names.
const (
	WorkspaceFile = "Cargo.toml"
	ScriptsFile   = "Peniche.toml"
)

// WorkspaceManifest is the typed view of a root Cargo.toml.
type WorkspaceManifest struct {
	Workspace WorkspaceSection `toml:"workspace"`
}

// WorkspaceSection mirrors the [workspace] table.
type WorkspaceSection struct {
	Name     string   `toml:"name"`
	Resolver string   `toml:"resolver"`
	Members  []string `toml:"members"`
}

// CrateManifest is the typed view of a member crate's Cargo.toml.
// Dependencies stay loosely typed at parse time because TOML allows both
// `name = "1.0"` and `name = { path = "...", version = "..." }` forms.
type CrateManifest struct {
	Package      PackageSection `toml:"package"`
	Dependencies map[string]any `toml:"dependencies"`
}

// PackageSection mirrors the [package] table.
type PackageSection struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

// ParseWorkspace decodes root manifest bytes.
func ParseWorkspace(data []byte) (*WorkspaceManifest, error) {
	var m WorkspaceManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrManifestInvalid, err)
	}
	return &m, nil
}

// ParseCrate decodes crate manifest bytes.
func ParseCrate(data []byte) (*CrateManifest, error) {
	var m CrateManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrManifestInvalid, err)
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("%w: missing package.name", types.ErrManifestInvalid)
	}
	return &m, nil
}

// DependencyList normalizes the loosely typed dependency table into
// types.Dependency values, sorted by name.
func (m *CrateManifest) DependencyList() []types.Dependency {
	deps := make([]types.Dependency, 0, len(m.Dependencies))
	for name, value := range m.Dependencies {
		deps = append(deps, normalizeDependency(name, value))
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps
}

func normalizeDependency(name string, value any) types.Dependency {
	dep := types.Dependency{Name: name}
	switch v := value.(type) {
	case string:
		dep.Version = v
	case map[string]any:
		if s, ok := v["path"].(string); ok {
			dep.Path = s
		}
		if s, ok := v["version"].(string); ok {
			dep.Version = s
		}
		if list, ok := v["features"].([]any); ok {
			for _, f := range list {
				if s, ok := f.(string); ok {
					dep.Features = append(dep.Features, s)
				}
			}
		}
	}
	return dep
}

// renderDependency produces the raw TOML value for a dependency entry.
// Version-only dependencies use the short string form; anything else uses an
// inline table.
func renderDependency(dep types.Dependency) string {
	if dep.Path == "" && len(dep.Features) == 0 {
		return fmt.Sprintf("%q", dep.Version)
	}
	var parts []string
	if dep.Path != "" {
		parts = append(parts, fmt.Sprintf("path = %q", dep.Path))
	}
	if dep.Version != "" {
		parts = append(parts, fmt.Sprintf("version = %q", dep.Version))
	}
	if len(dep.Features) > 0 {
		quoted := make([]string, len(dep.Features))
		for i, f := range dep.Features {
			quoted[i] = fmt.Sprintf("%q", f)
		}
		parts = append(parts, "features = ["+strings.Join(quoted, ", ")+"]")
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// InitialWorkspace renders the root manifest written by workspace init.
func InitialWorkspace(name string) []byte {
	var b strings.Builder
	b.WriteString("[workspace]\n")
	b.WriteString("resolver = \"2\"\n")
	fmt.Fprintf(&b, "name = %q\n", name)
	b.WriteString("members = []\n")
	return []byte(b.String())
}

// InitialCrate renders a new member crate's manifest.
func InitialCrate(name string) []byte {
	var b strings.Builder
	b.WriteString("[package]\n")
	fmt.Fprintf(&b, "name = %q\n", name)
	b.WriteString("version = \"0.1.0\"\n")
	b.WriteString("edition = \"2021\"\n")
	b.WriteString("\n[dependencies]\n")
	return []byte(b.String())
}
