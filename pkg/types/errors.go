package types

import (
	"errors"
	"fmt"
)

// Workspace and manifest errors.
var (
	ErrWorkspaceNotFound = errors.New("workspace manifest not found")
	ErrWorkspaceExists   = errors.New("workspace already initialized")
	ErrManifestNotFound  = errors.New("manifest file not found")
	ErrManifestInvalid   = errors.New("manifest content is invalid")
)

// Crate lifecycle errors.
var (
	ErrCrateNotFound = errors.New("crate not found")
	ErrDuplicateName = errors.New("crate name already in use")
	ErrHasDependents = errors.New("crate still has dependents")
)

// Link graph errors.
var (
	ErrSelfEdge      = errors.New("crate cannot depend on itself")
	ErrCycleDetected = errors.New("dependency cycle detected")
	ErrDuplicateEdge = errors.New("dependency edge already exists")
	ErrEdgeNotFound  = errors.New("dependency edge not found")
)

// Script errors.
var (
	ErrUnknownScript = errors.New("unknown script")
	ErrEmptyCommand  = errors.New("script command is empty")
)

// SpawnError reports a process that could not be started at all: missing
// executable, permission denied, bad working directory. A spawn failure is
// surfaced immediately and the task never reaches a terminal status.
type SpawnError struct {
	Target  string
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning %q for target %s: %v", e.Program, e.Target, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
