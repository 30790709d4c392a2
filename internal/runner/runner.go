package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/kochmaxence/peniche/internal/logsink"
	"github.com/kochmaxence/peniche/pkg/types"
)

// killGracePeriod is how long a cancelled process gets between SIGTERM and
// SIGKILL.
const killGracePeriod = 5 * time.Second

// Options controls one batch.
type Options struct {
	// Parallel starts every target at once instead of one after another.
	Parallel bool

	// ContinueOnError keeps a sequential batch going past a failed target.
	// Ignored in parallel mode, where all targets are already in flight.
	ContinueOnError bool

	// Timeout, when positive, bounds the whole batch. Targets still running
	// at the deadline are terminated and reported as crashed.
	Timeout time.Duration
}

// Runner executes batches of Specs against a log sink.
type Runner struct {
	sink logsink.Sink
}

// New returns a Runner emitting into sink.
func New(sink logsink.Sink) *Runner {
	if sink == nil {
		sink = logsink.Discard{}
	}
	return &Runner{sink: sink}
}

// event is one unit funneled from producer goroutines to the single sink
// consumer.
type event struct {
	target string
	line   string
	stderr bool
	status *logsink.StatusEvent
}

// Run executes the batch and returns one outcome per spec, in spec order.
// The returned error reports runner-level problems only; per-target
// failures live in the BatchResult. Run never retries a target.
func (r *Runner) Run(ctx context.Context, specs []Spec, opts Options) (*BatchResult, error) {
	if len(specs) == 0 {
		return &BatchResult{}, nil
	}
	for _, s := range specs {
		if len(s.Commands) == 0 {
			return nil, fmt.Errorf("%w: target %s", types.ErrEmptyCommand, s.Target)
		}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	// Many producers, one consumer: every task goroutine pushes tagged
	// events into one channel and a single loop forwards them to the sink,
	// so the sink never sees contended writes.
	events := make(chan event, 256)
	var consumer sync.WaitGroup
	consumer.Add(1)
	go func() {
		defer consumer.Done()
		for ev := range events {
			if ev.status != nil {
				r.sink.Status(ev.target, *ev.status)
				continue
			}
			r.sink.Line(ev.target, ev.line, ev.stderr)
		}
	}()

	outcomes := make([]Outcome, len(specs))
	if opts.Parallel {
		p := pool.New()
		for i, spec := range specs {
			i, spec := i, spec
			p.Go(func() {
				outcomes[i] = r.runTask(ctx, spec, events)
			})
		}
		p.Wait()
	} else {
		stopped := false
		for i, spec := range specs {
			if stopped || ctx.Err() != nil {
				outcomes[i] = r.cancelledOutcome(spec, events)
				continue
			}
			outcomes[i] = r.runTask(ctx, spec, events)
			if !outcomes[i].OK() && !opts.ContinueOnError {
				stopped = true
			}
		}
	}

	close(events)
	consumer.Wait()

	return &BatchResult{Outcomes: outcomes}, nil
}

// cancelledOutcome reports a target that never started. Tasks skipped by an
// earlier failure or an interrupt are surfaced, never silently dropped.
func (r *Runner) cancelledOutcome(spec Spec, events chan<- event) Outcome {
	events <- event{target: spec.Target, status: &logsink.StatusEvent{Kind: logsink.StatusCancelled}}
	return Outcome{Target: spec.Target, Status: StatusCancelled, Reason: "not started"}
}

// commandResult is the classification of a single finished command.
type commandResult struct {
	status   Status
	exitCode int
	reason   string
}

// runTask drives one target through its command sequence to a terminal
// state. Commands within a target always run in order; the first failing
// command ends the target. The task's state machine is owned entirely by
// this goroutine.
func (r *Runner) runTask(ctx context.Context, spec Spec, events chan<- event) Outcome {
	task := newTask(spec.Target)

	for i, cmdSpec := range spec.Commands {
		res, spawnErr := r.runCommand(ctx, task, cmdSpec, events)
		if spawnErr != nil {
			if task.Status() == StatusPending {
				// The target never came up; it has no terminal status.
				return Outcome{Target: spec.Target, Status: StatusPending, Err: spawnErr}
			}
			// A later command in the sequence failed to spawn.
			mustTransition(task, StatusRunning, StatusFailed)
			out := Outcome{
				Target:  spec.Target,
				Status:  StatusFailed,
				Reason:  spawnErr.Error(),
				Elapsed: task.elapsed(),
				Err:     spawnErr,
			}
			r.emitStatus(events, out)
			return out
		}

		if res.status != StatusSucceeded {
			mustTransition(task, StatusRunning, res.status)
			out := Outcome{
				Target:   spec.Target,
				Status:   res.status,
				ExitCode: res.exitCode,
				Reason:   res.reason,
				Elapsed:  task.elapsed(),
			}
			r.emitStatus(events, out)
			return out
		}

		if i == len(spec.Commands)-1 {
			mustTransition(task, StatusRunning, StatusSucceeded)
			out := Outcome{Target: spec.Target, Status: StatusSucceeded, Elapsed: task.elapsed()}
			r.emitStatus(events, out)
			return out
		}
	}

	// Unreachable: the loop always returns on the final command.
	panic("runner: command loop fell through")
}

// mustTransition applies a state change the runner's control flow has
// already made valid; a failure here is a bug in the runner itself.
func mustTransition(t *Task, from, to Status) {
	if err := t.transition(from, to); err != nil {
		panic(err)
	}
}

func (r *Runner) emitStatus(events chan<- event, o Outcome) {
	ev := logsink.StatusEvent{ExitCode: o.ExitCode, Reason: o.Reason, Elapsed: o.Elapsed}
	switch o.Status {
	case StatusSucceeded:
		ev.Kind = logsink.StatusSucceeded
	case StatusFailed:
		ev.Kind = logsink.StatusFailed
	case StatusCrashed:
		ev.Kind = logsink.StatusCrashed
	case StatusCancelled:
		ev.Kind = logsink.StatusCancelled
	default:
		return
	}
	events <- event{target: o.Target, status: &ev}
}

// runCommand starts and supervises a single command of a target, streaming
// its output into the event channel. It reports how the command ended, or
// a spawn error when the process could not be started at all.
func (r *Runner) runCommand(ctx context.Context, task *Task, spec types.CommandSpec, events chan<- event) (commandResult, *types.SpawnError) {
	cmd := exec.CommandContext(ctx, spec.Program, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = mergedEnv(spec.Env)

	// Cancellation sends SIGTERM first so the child can clean up; WaitDelay
	// escalates to SIGKILL if it lingers.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = killGracePeriod

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return commandResult{}, &types.SpawnError{Target: task.Target, Program: spec.Program, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return commandResult{}, &types.SpawnError{Target: task.Target, Program: spec.Program, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return commandResult{}, &types.SpawnError{Target: task.Target, Program: spec.Program, Err: err}
	}

	if task.Status() == StatusPending {
		mustTransition(task, StatusPending, StatusRunning)
		events <- event{target: task.Target, status: &logsink.StatusEvent{Kind: logsink.StatusStarted}}
	}

	// One goroutine per stream; each forwards its lines in read order, so
	// per-stream ordering survives while cross-target interleaving stays
	// possible.
	var streams sync.WaitGroup
	scan := func(reader io.Reader, isStderr bool) {
		defer streams.Done()
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			events <- event{target: task.Target, line: scanner.Text(), stderr: isStderr}
		}
	}
	streams.Add(2)
	go scan(stdout, false)
	go scan(stderr, true)

	streams.Wait()
	waitErr := cmd.Wait()

	return classify(ctx, waitErr), nil
}

// classify maps a Wait error to a command result.
func classify(ctx context.Context, waitErr error) commandResult {
	if waitErr == nil {
		return commandResult{status: StatusSucceeded}
	}

	if ctx.Err() != nil {
		// The process died because the batch was cancelled or timed out;
		// the exact exit error is secondary.
		reason := "interrupted"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = "timed out"
		}
		return commandResult{status: StatusCrashed, reason: reason}
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return commandResult{status: StatusCrashed, reason: "signal: " + ws.Signal().String()}
		}
		return commandResult{status: StatusFailed, exitCode: exitErr.ExitCode()}
	}

	return commandResult{status: StatusCrashed, reason: waitErr.Error()}
}

// mergedEnv layers overrides on top of the parent environment.
func mergedEnv(overrides map[string]string) []string {
	if len(overrides) == 0 {
		return nil // exec uses the parent environment
	}
	env := os.Environ()
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
