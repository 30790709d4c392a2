// Package script resolves named script tokens from the workspace's
// Peniche.toml into executable command sequences for the runner.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/kochmaxence/peniche/internal/manifest"
	"github.com/kochmaxence/peniche/internal/runner"
	"github.com/kochmaxence/peniche/pkg/types"
)

// Registry holds the scripts declared for one workspace.
type Registry struct {
	root    string
	scripts map[string]types.Script
}

// rawFile mirrors the parseable shape of Peniche.toml. Script values stay
// loosely typed: a plain string is a one-liner, a table carries working
// directory, environment, per-OS variants, and multi-step sequences.
type rawFile struct {
	Cmd map[string]any `toml:"cmd"`
}

// Load reads the script registry from the workspace root. A missing
// Peniche.toml yields an empty registry; every resolve then fails with
// ErrUnknownScript, which is the useful failure mode for `run`.
func Load(rootDir string) (*Registry, error) {
	r := &Registry{root: rootDir, scripts: make(map[string]types.Script)}

	path := filepath.Join(rootDir, manifest.ScriptsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw rawFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, types.ErrManifestInvalid, err)
	}

	for name, value := range raw.Cmd {
		s, err := r.normalize(name, value)
		if err != nil {
			return nil, fmt.Errorf("%s: script %q: %w", path, name, err)
		}
		r.scripts[name] = s
	}
	return r, nil
}

// Names returns the registered script names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scripts))
	for n := range r.scripts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the named script.
func (r *Registry) Get(name string) (types.Script, bool) {
	s, ok := r.scripts[name]
	return s, ok
}

// Resolve maps script names to runner specs, preserving request order.
// Unknown names fail before anything is dispatched.
func (r *Registry) Resolve(names []string) ([]runner.Spec, error) {
	specs := make([]runner.Spec, 0, len(names))
	for _, name := range names {
		s, ok := r.scripts[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q (available: %s)",
				types.ErrUnknownScript, name, strings.Join(r.Names(), ", "))
		}
		specs = append(specs, runner.Spec{Target: name, Commands: s.Commands})
	}
	return specs, nil
}

// AllParallel reports whether every named script declares parallel mode,
// letting a batch opt into concurrency without the CLI flag.
func (r *Registry) AllParallel(names []string) bool {
	if len(names) == 0 {
		return false
	}
	for _, name := range names {
		if s, ok := r.scripts[name]; !ok || s.Mode != types.ModeParallel {
			return false
		}
	}
	return true
}

// normalize converts one raw [cmd] entry into a Script.
func (r *Registry) normalize(name string, value any) (types.Script, error) {
	s := types.Script{Name: name, Mode: types.ModeSequential}

	switch v := value.(type) {
	case string:
		cmd, err := r.parseCommand(v, r.root, nil)
		if err != nil {
			return s, err
		}
		s.Commands = []types.CommandSpec{cmd}
		return s, nil

	case map[string]any:
		dir := r.root
		if wd, ok := v["working_dir"].(string); ok && wd != "" {
			if !filepath.IsAbs(wd) {
				wd = filepath.Join(r.root, wd)
			}
			dir = wd
		}

		env := map[string]string{}
		if rawEnv, ok := v["env"].(map[string]any); ok {
			for k, ev := range rawEnv {
				if str, ok := ev.(string); ok {
					env[k] = str
				}
			}
		}

		if m, ok := v["mode"].(string); ok {
			switch types.ScriptMode(m) {
			case types.ModeSequential, types.ModeParallel:
				s.Mode = types.ScriptMode(m)
			default:
				return s, fmt.Errorf("%w: unknown mode %q", types.ErrManifestInvalid, m)
			}
		}

		if list, ok := v["commands"].([]any); ok {
			for _, item := range list {
				str, ok := item.(string)
				if !ok {
					return s, fmt.Errorf("%w: commands must be strings", types.ErrManifestInvalid)
				}
				cmd, err := r.parseCommand(str, dir, env)
				if err != nil {
					return s, err
				}
				s.Commands = append(s.Commands, cmd)
			}
			if len(s.Commands) == 0 {
				return s, types.ErrEmptyCommand
			}
			return s, nil
		}

		line := platformCommand(v)
		cmd, err := r.parseCommand(line, dir, env)
		if err != nil {
			return s, err
		}
		s.Commands = []types.CommandSpec{cmd}
		return s, nil

	default:
		return s, fmt.Errorf("%w: script value must be a string or a table", types.ErrManifestInvalid)
	}
}

// platformCommand picks the per-OS command variant, falling back to the
// generic `command` key.
func platformCommand(v map[string]any) string {
	if s, ok := v[runtime.GOOS].(string); ok && s != "" {
		return s
	}
	if s, ok := v["command"].(string); ok {
		return s
	}
	return ""
}

// parseCommand splits a command line on whitespace. There is deliberately
// no shell involved: scripts wanting shell features spell out `sh -c '...'`.
func (r *Registry) parseCommand(line, dir string, env map[string]string) (types.CommandSpec, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return types.CommandSpec{}, types.ErrEmptyCommand
	}
	return types.CommandSpec{
		Program: fields[0],
		Args:    fields[1:],
		Dir:     dir,
		Env:     env,
	}, nil
}
