// Package workspace orchestrates crate lifecycle and link operations
// against the manifest store and the link graph. Every mutating operation
// holds the workspace's single-writer lock and leaves both the manifests
// and the in-memory model consistent, rolling back partial work on error.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kochmaxence/peniche/internal/graph"
	"github.com/kochmaxence/peniche/internal/manifest"
	"github.com/kochmaxence/peniche/pkg/types"
)

// Workspace is the loaded model of one multi-crate project.
type Workspace struct {
	Root         string
	ManifestPath string
	Name         string

	// Members holds the member paths in manifest order.
	Members []string

	// Crates maps crate name to its loaded model.
	Crates map[string]*types.Crate

	// Graph holds the member-only dependency edges.
	Graph *graph.Graph
}

// Init creates a new workspace root at path. Fails with ErrWorkspaceExists
// when path already contains a workspace manifest.
func Init(name, path string) (*Workspace, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	manifestPath := filepath.Join(abs, manifest.WorkspaceFile)
	if _, err := os.Stat(manifestPath); err == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrWorkspaceExists, manifestPath)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace directory %s: %w", abs, err)
	}
	if err := manifest.SaveAtomic(manifestPath, manifest.InitialWorkspace(name)); err != nil {
		return nil, err
	}

	return Load(abs)
}

// Load resolves the workspace root upward from dir and builds the full
// model: root manifest, every member crate, and the link graph.
func Load(dir string) (*Workspace, error) {
	root, err := manifest.FindRoot(dir)
	if err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(root, manifest.WorkspaceFile)
	rootManifest, err := manifest.ReadWorkspace(manifestPath)
	if err != nil {
		return nil, err
	}

	w := &Workspace{
		Root:         root,
		ManifestPath: manifestPath,
		Name:         rootManifest.Workspace.Name,
		Members:      rootManifest.Workspace.Members,
		Crates:       make(map[string]*types.Crate, len(rootManifest.Workspace.Members)),
	}

	for _, member := range w.Members {
		crate, err := loadCrate(root, member)
		if err != nil {
			return nil, err
		}
		if _, dup := w.Crates[crate.Name]; dup {
			return nil, fmt.Errorf("%w: member %q declared twice", types.ErrManifestInvalid, crate.Name)
		}
		w.Crates[crate.Name] = crate
	}

	w.Graph = w.buildGraph()
	return w, nil
}

// loadCrate reads one member crate's manifest and infers its kind from the
// scaffold layout.
func loadCrate(root, member string) (*types.Crate, error) {
	crateDir := filepath.Join(root, member)
	m, err := manifest.ReadCrate(filepath.Join(crateDir, manifest.WorkspaceFile))
	if err != nil {
		return nil, err
	}

	kind := types.KindLib
	if _, err := os.Stat(filepath.Join(crateDir, "src", "main.rs")); err == nil {
		kind = types.KindBin
	}

	return &types.Crate{
		Name:         m.Package.Name,
		Kind:         kind,
		Version:      m.Package.Version,
		Path:         member,
		Dependencies: m.DependencyList(),
	}, nil
}

// buildGraph hydrates the member-only edge graph from the loaded crates.
// SetEdge tolerates hand-edited manifests that already violate invariants;
// TopologicalOrder surfaces the damage.
func (w *Workspace) buildGraph() *graph.Graph {
	names := make([]string, 0, len(w.Crates))
	for name := range w.Crates {
		names = append(names, name)
	}
	g := graph.New(names)
	for name, crate := range w.Crates {
		for _, dep := range crate.Dependencies {
			if _, member := w.Crates[dep.Name]; member {
				g.SetEdge(name, dep.Name, dep.Version)
			}
		}
	}
	return g
}

// CrateNames returns the member crate names, sorted.
func (w *Workspace) CrateNames() []string {
	names := make([]string, 0, len(w.Crates))
	for name := range w.Crates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// crateManifestPath returns the manifest path for a loaded crate.
func (w *Workspace) crateManifestPath(c *types.Crate) string {
	return filepath.Join(w.Root, c.Path, manifest.WorkspaceFile)
}

// validCrateName rejects names that would escape the workspace directory
// or collide with manifest syntax.
func validCrateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: crate name is empty", types.ErrManifestInvalid)
	}
	if strings.ContainsAny(name, "/\\ \t") || name == "." || name == ".." {
		return fmt.Errorf("%w: invalid crate name %q", types.ErrManifestInvalid, name)
	}
	return nil
}

// NewCrate creates a member crate: directory, manifest, scaffold source
// file, and the members entry in the root manifest. If any step after
// directory creation fails, the directory is removed before the error is
// surfaced, so no half-created crate survives.
func (w *Workspace) NewCrate(name string, kind types.CrateKind) error {
	unlock := lockRoot(w.Root)
	defer unlock()

	if err := validCrateName(name); err != nil {
		return err
	}
	if !types.ValidKind(kind) {
		return fmt.Errorf("%w: %q", types.ErrInvalidKind, kind)
	}
	if _, exists := w.Crates[name]; exists {
		return fmt.Errorf("%w: %s", types.ErrDuplicateName, name)
	}
	for _, member := range w.Members {
		if member == name {
			return fmt.Errorf("%w: path %s", types.ErrDuplicateName, name)
		}
	}

	crateDir := filepath.Join(w.Root, name)
	if _, err := os.Stat(crateDir); err == nil {
		return fmt.Errorf("%w: directory %s already exists", types.ErrDuplicateName, crateDir)
	}

	if err := os.MkdirAll(filepath.Join(crateDir, "src"), 0o755); err != nil {
		return fmt.Errorf("creating crate directory %s: %w", crateDir, err)
	}

	committed := false
	defer func() {
		if !committed {
			os.RemoveAll(crateDir)
		}
	}()

	if err := manifest.SaveAtomic(filepath.Join(crateDir, manifest.WorkspaceFile), manifest.InitialCrate(name)); err != nil {
		return err
	}

	scaffold := filepath.Join(crateDir, "src", "lib.rs")
	content := "pub fn add(left: u64, right: u64) -> u64 {\n    left + right\n}\n"
	if kind == types.KindBin {
		scaffold = filepath.Join(crateDir, "src", "main.rs")
		content = "fn main() {\n    println!(\"Hello, world!\");\n}\n"
	}
	if err := os.WriteFile(scaffold, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing scaffold %s: %w", scaffold, err)
	}

	if err := manifest.AddMember(w.ManifestPath, name); err != nil {
		return err
	}
	committed = true

	w.Members = append(w.Members, name)
	w.Crates[name] = &types.Crate{Name: name, Kind: kind, Version: "0.1.0", Path: name}
	w.Graph.AddNode(name)
	return nil
}

// DeleteCrate removes a member crate from the workspace. Without force it
// fails with ErrHasDependents while other members still link to the crate;
// with force the incoming dependency entries are cascaded away first.
// removeDir additionally deletes the crate directory from disk.
func (w *Workspace) DeleteCrate(name string, force, removeDir bool) error {
	unlock := lockRoot(w.Root)
	defer unlock()

	crate, ok := w.Crates[name]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrCrateNotFound, name)
	}

	dependents := w.Graph.Dependents(name)
	if len(dependents) > 0 {
		if !force {
			return fmt.Errorf("%w: %s is required by %s",
				types.ErrHasDependents, name, strings.Join(dependents, ", "))
		}
		for _, dependent := range dependents {
			if err := w.removeEdgeLocked(dependent, name); err != nil {
				return fmt.Errorf("cascading removal of %s -> %s: %w", dependent, name, err)
			}
		}
	}

	if err := manifest.RemoveMember(w.ManifestPath, crate.Path); err != nil {
		return err
	}

	w.Graph.RemoveNode(name)
	delete(w.Crates, name)
	for i, member := range w.Members {
		if member == crate.Path {
			w.Members = append(w.Members[:i], w.Members[i+1:]...)
			break
		}
	}

	if removeDir {
		if err := os.RemoveAll(filepath.Join(w.Root, crate.Path)); err != nil {
			return fmt.Errorf("deleting crate directory for %s: %w", name, err)
		}
	}
	return nil
}

// Link declares a dependency edge from source to target. The graph check
// runs first without mutating anything; the manifest patch commits the
// edge; only then is it confirmed in memory, so a failed patch leaves the
// graph untouched.
func (w *Workspace) Link(source, target string, withVersion bool) error {
	unlock := lockRoot(w.Root)
	defer unlock()

	if err := w.Graph.CheckEdge(source, target); err != nil {
		return err
	}

	src := w.Crates[source]
	dst := w.Crates[target]

	rel, err := filepath.Rel(filepath.Join(w.Root, src.Path), filepath.Join(w.Root, dst.Path))
	if err != nil {
		return fmt.Errorf("relating %s to %s: %w", source, target, err)
	}

	dep := types.Dependency{Name: target, Path: filepath.ToSlash(rel)}
	constraint := ""
	if withVersion {
		dep.Version = dst.Version
		constraint = dst.Version
	}

	if err := manifest.AddDependency(w.crateManifestPath(src), dep); err != nil {
		return err
	}

	w.Graph.SetEdge(source, target, constraint)
	src.Dependencies = append(src.Dependencies, dep)
	return nil
}

// Unlink removes the dependency edge from source to target.
func (w *Workspace) Unlink(source, target string) error {
	unlock := lockRoot(w.Root)
	defer unlock()

	if _, ok := w.Crates[source]; !ok {
		return fmt.Errorf("%w: %s", types.ErrCrateNotFound, source)
	}
	return w.removeEdgeLocked(source, target)
}

// removeEdgeLocked drops one edge from both the manifest and the graph.
// Callers hold the workspace lock.
func (w *Workspace) removeEdgeLocked(source, target string) error {
	if !w.Graph.HasEdge(source, target) {
		return fmt.Errorf("%w: %s -> %s", types.ErrEdgeNotFound, source, target)
	}

	src := w.Crates[source]
	if err := manifest.RemoveDependency(w.crateManifestPath(src), target); err != nil {
		return err
	}

	if err := w.Graph.RemoveEdge(source, target); err != nil {
		return err
	}
	for i, dep := range src.Dependencies {
		if dep.Name == target {
			src.Dependencies = append(src.Dependencies[:i], src.Dependencies[i+1:]...)
			break
		}
	}
	return nil
}
