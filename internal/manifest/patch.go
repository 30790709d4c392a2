package manifest

import (
	"fmt"

	"github.com/kochmaxence/peniche/internal/tomledit"
	"github.com/kochmaxence/peniche/pkg/types"
)

// patch applies edit to the manifest at path, re-parses the result as a
// validity check, and saves atomically. The file on disk is untouched if
// the edit or the validation fails.
func patch(path string, edit func(*tomledit.Document) error, validate func([]byte) error) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	doc := tomledit.Parse(data)
	if err := edit(doc); err != nil {
		return err
	}
	out := doc.Bytes()
	if err := validate(out); err != nil {
		return fmt.Errorf("patched manifest %s failed validation: %w", path, err)
	}
	return SaveAtomic(path, out)
}

func validWorkspace(data []byte) error {
	_, err := ParseWorkspace(data)
	return err
}

func validCrate(data []byte) error {
	_, err := ParseCrate(data)
	return err
}

// AddMember appends a member path to the root manifest's members array.
func AddMember(rootManifestPath, member string) error {
	return patch(rootManifestPath, func(d *tomledit.Document) error {
		if err := d.AppendToArray("workspace", "members", fmt.Sprintf("%q", member)); err != nil {
			return fmt.Errorf("adding member %q: %w", member, err)
		}
		return nil
	}, validWorkspace)
}

// RemoveMember drops a member path from the root manifest's members array.
func RemoveMember(rootManifestPath, member string) error {
	return patch(rootManifestPath, func(d *tomledit.Document) error {
		if err := d.RemoveFromArray("workspace", "members", fmt.Sprintf("%q", member)); err != nil {
			return fmt.Errorf("removing member %q: %w", member, err)
		}
		return nil
	}, validWorkspace)
}

// AddDependency writes a dependency entry into a crate manifest's
// [dependencies] table.
func AddDependency(crateManifestPath string, dep types.Dependency) error {
	return patch(crateManifestPath, func(d *tomledit.Document) error {
		d.SetRaw("dependencies", dep.Name, renderDependency(dep))
		return nil
	}, validCrate)
}

// RemoveDependency deletes a dependency entry from a crate manifest. Both
// the inline form (`name = {...}` under [dependencies]) and the expanded
// table form ([dependencies.name]) are handled.
func RemoveDependency(crateManifestPath, name string) error {
	return patch(crateManifestPath, func(d *tomledit.Document) error {
		if d.HasKey("dependencies", name) {
			return d.RemoveKey("dependencies", name)
		}
		if err := d.RemoveTable("dependencies." + name); err != nil {
			return fmt.Errorf("%w: %s in %s", types.ErrEdgeNotFound, name, crateManifestPath)
		}
		return nil
	}, validCrate)
}
