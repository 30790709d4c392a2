package types

import "errors"

// CrateKind distinguishes binary from library crates.
type CrateKind string

const (
	KindBin CrateKind = "bin"
	KindLib CrateKind = "lib"
)

// ErrInvalidKind is returned when a crate kind is neither bin nor lib.
var ErrInvalidKind = errors.New("invalid crate kind")

// ValidKind reports whether k is a recognized crate kind.
func ValidKind(k CrateKind) bool {
	return k == KindBin || k == KindLib
}

// Dependency is one entry in a crate's dependency table. A dependency whose
// name matches a workspace member is a member edge; anything else is
// external and exempt from graph invariants.
type Dependency struct {
	Name     string
	Path     string
	Version  string
	Features []string
}

// IsPath reports whether the dependency is resolved by relative path.
func (d Dependency) IsPath() bool { return d.Path != "" }

// Crate is a single member of the workspace.
type Crate struct {
	Name    string
	Kind    CrateKind
	Version string

	// Path is the crate directory relative to the workspace root.
	Path string

	// Dependencies are the crate's outgoing edges, member and external.
	Dependencies []Dependency
}

// Dependency returns the named dependency entry, if present.
func (c *Crate) Dependency(name string) (Dependency, bool) {
	for _, d := range c.Dependencies {
		if d.Name == name {
			return d, true
		}
	}
	return Dependency{}, false
}

// DependsOn reports whether the crate declares a dependency on name.
func (c *Crate) DependsOn(name string) bool {
	_, ok := c.Dependency(name)
	return ok
}
