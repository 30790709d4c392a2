package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kochmaxence/peniche/internal/tomledit"

	"github.com/kochmaxence/peniche/pkg/types"
)

// saveRetryBackoff is the pause before the single retry of a failed rename.
// Transient races (another process replacing the file, antivirus holds on
// some platforms) usually clear within this window.
const saveRetryBackoff = 25 * time.Millisecond

// readFile loads manifest bytes, mapping a missing file to the sentinel.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrManifestNotFound, path)
		}
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return data, nil
}

// ReadWorkspace loads and parses the root manifest at path.
func ReadWorkspace(path string) (*WorkspaceManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseWorkspace(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadCrate loads and parses a crate manifest at path.
func ReadCrate(path string) (*CrateManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseCrate(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// SaveAtomic replaces the file at path with data. The write goes to a temp
// file in the same directory followed by a rename, so a crash mid-write
// never leaves a truncated manifest. A failed rename is retried once after
// a short backoff.
func SaveAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp manifest in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp manifest %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp manifest %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting mode on %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		time.Sleep(saveRetryBackoff)
		if err := os.Rename(tmpName, path); err != nil {
			return fmt.Errorf("replacing manifest %s: %w", path, err)
		}
	}
	return nil
}

// FindRoot walks upward from startDir looking for a Cargo.toml containing a
// [workspace] table. Returns the workspace root directory.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", startDir, err)
	}
	for {
		candidate := filepath.Join(dir, WorkspaceFile)
		if data, err := os.ReadFile(candidate); err == nil {
			if tomledit.Parse(data).HasTable("workspace") {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s with a [workspace] table above %s",
				types.ErrWorkspaceNotFound, WorkspaceFile, startDir)
		}
		dir = parent
	}
}
