// Package logsink receives tagged output from running tasks and renders it.
// The runner guarantees per-target ordering of calls; a sink only has to
// keep concurrent calls from corrupting individual lines.
package logsink

import "time"

// StatusKind is a terminal or lifecycle event for one target.
type StatusKind string

const (
	StatusStarted   StatusKind = "started"
	StatusSucceeded StatusKind = "succeeded"
	StatusFailed    StatusKind = "failed"
	StatusCrashed   StatusKind = "crashed"
	StatusCancelled StatusKind = "cancelled"
)

// StatusEvent reports a task lifecycle change.
type StatusEvent struct {
	Kind     StatusKind
	ExitCode int
	Reason   string
	Elapsed  time.Duration
}

// Sink consumes tagged lines and status events. Lines from one target
// arrive in production order; lines from different targets may interleave.
// Implementations must be safe for concurrent use.
type Sink interface {
	Line(target, text string, stderr bool)
	Status(target string, ev StatusEvent)
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Line(string, string, bool)  {}
func (Discard) Status(string, StatusEvent) {}
