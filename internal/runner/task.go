// Package runner spawns and supervises the external processes behind script
// execution. It supports sequential and parallel batches, streams output
// incrementally into a log sink, and always returns one outcome per target.
package runner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kochmaxence/peniche/pkg/types"
)

// Status is the lifecycle state of one execution task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCrashed   Status = "crashed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCrashed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Spec describes one target to execute: a named, ordered command sequence.
type Spec struct {
	Target   string
	Commands []types.CommandSpec
}

// Task is the transient record of one running target. It exists only for
// the duration of a batch and is never persisted.
type Task struct {
	ID       string
	Target   string
	status   Status
	started  time.Time
	finished time.Time
}

func newTask(target string) *Task {
	return &Task{
		ID:     uuid.NewString(),
		Target: target,
		status: StatusPending,
	}
}

// Status returns the task's current state.
func (t *Task) Status() Status { return t.status }

// transition moves the task between states, enforcing the machine
// pending -> running -> terminal. A bad transition is a programming error
// in the runner, not a user-facing condition.
func (t *Task) transition(from, to Status) error {
	if t.status != from {
		return fmt.Errorf("task %s: invalid transition %s -> %s (current %s)", t.Target, from, to, t.status)
	}
	if !allowedTransition(from, to) {
		return fmt.Errorf("task %s: disallowed transition %s -> %s", t.Target, from, to)
	}
	t.status = to
	switch to {
	case StatusRunning:
		t.started = time.Now()
	case StatusSucceeded, StatusFailed, StatusCrashed:
		t.finished = time.Now()
	}
	return nil
}

func allowedTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning || to == StatusCancelled
	case StatusRunning:
		return to == StatusSucceeded || to == StatusFailed || to == StatusCrashed
	default:
		return false
	}
}

// elapsed returns the task's wall-clock runtime so far.
func (t *Task) elapsed() time.Duration {
	if t.started.IsZero() {
		return 0
	}
	if t.finished.IsZero() {
		return time.Since(t.started)
	}
	return t.finished.Sub(t.started)
}
