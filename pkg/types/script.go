package types

// CommandSpec is one executable command: program, arguments, working
// directory, and environment overrides layered over the parent environment.
type CommandSpec struct {
	Program string
	Args    []string
	Dir     string
	Env     map[string]string
}

// ScriptMode controls how a multi-command script executes its commands.
type ScriptMode string

const (
	// ModeSequential runs commands in order, stopping at the first failure.
	ModeSequential ScriptMode = "sequential"

	// ModeParallel lets the script's commands run alongside its siblings.
	ModeParallel ScriptMode = "parallel"
)

// Script is a named, ordered command definition from the workspace's
// Peniche.toml [cmd] table.
type Script struct {
	Name     string
	Commands []CommandSpec
	Mode     ScriptMode
}
