package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochmaxence/peniche/internal/logsink"
	"github.com/kochmaxence/peniche/pkg/types"
)

func shSpec(target, script string) Spec {
	return Spec{
		Target:   target,
		Commands: []types.CommandSpec{{Program: "sh", Args: []string{"-c", script}}},
	}
}

func TestParallelIndependentStreams(t *testing.T) {
	sink := logsink.NewRecorder()
	r := New(sink)

	specs := []Spec{
		shSpec("alpha", "for i in 1 2 3 4 5; do echo alpha-$i; done"),
		shSpec("beta", "for i in 1 2 3 4 5; do echo beta-$i; done"),
		shSpec("gamma", "for i in 1 2 3 4 5; do echo gamma-$i; done"),
	}

	res, err := r.Run(context.Background(), specs, Options{Parallel: true})
	require.NoError(t, err)

	require.Len(t, res.Outcomes, 3)
	for _, o := range res.Outcomes {
		assert.Equal(t, StatusSucceeded, o.Status, "target %s", o.Target)
	}
	assert.Equal(t, 0, res.ExitCode())

	// Each target's stream is internally ordered even though the three
	// interleave freely in the sink.
	for _, target := range []string{"alpha", "beta", "gamma"} {
		texts := sink.Texts(target)
		require.Len(t, texts, 5, "target %s", target)
		for i, line := range texts {
			assert.Equal(t, target+"-"+string(rune('1'+i)), line)
		}
	}
}

func TestSpawnErrorDoesNotPoisonBatch(t *testing.T) {
	r := New(logsink.NewRecorder())

	specs := []Spec{
		{Target: "ghost", Commands: []types.CommandSpec{{Program: "peniche-test-no-such-binary"}}},
		shSpec("ok", "echo fine"),
	}

	res, err := r.Run(context.Background(), specs, Options{Parallel: true})
	require.NoError(t, err)

	ghost, found := res.Outcome("ghost")
	require.True(t, found)
	assert.Equal(t, StatusPending, ghost.Status, "spawn failure never reaches a terminal status")
	var spawnErr *types.SpawnError
	require.ErrorAs(t, ghost.Err, &spawnErr)
	assert.Equal(t, "ghost", spawnErr.Target)

	ok, found := res.Outcome("ok")
	require.True(t, found)
	assert.Equal(t, StatusSucceeded, ok.Status)

	assert.NotZero(t, res.ExitCode())
}

func TestParallelFailureAggregation(t *testing.T) {
	sink := logsink.NewRecorder()
	r := New(sink)

	specs := []Spec{
		shSpec("build", "echo building; exit 1"),
		shSpec("test", "echo testing"),
	}

	res, err := r.Run(context.Background(), specs, Options{Parallel: true})
	require.NoError(t, err)

	build, _ := res.Outcome("build")
	assert.Equal(t, StatusFailed, build.Status)
	assert.Equal(t, 1, build.ExitCode)

	tst, _ := res.Outcome("test")
	assert.Equal(t, StatusSucceeded, tst.Status)

	assert.Equal(t, 1, res.ExitCode())
	assert.Equal(t, []string{"building"}, sink.Texts("build"))
	assert.Equal(t, []string{"testing"}, sink.Texts("test"))
}

func TestSequentialStopsAtFirstFailure(t *testing.T) {
	sink := logsink.NewRecorder()
	r := New(sink)

	specs := []Spec{
		shSpec("one", "echo one"),
		shSpec("two", "exit 3"),
		shSpec("three", "echo three"),
	}

	res, err := r.Run(context.Background(), specs, Options{})
	require.NoError(t, err)

	one, _ := res.Outcome("one")
	assert.Equal(t, StatusSucceeded, one.Status)

	two, _ := res.Outcome("two")
	assert.Equal(t, StatusFailed, two.Status)
	assert.Equal(t, 3, two.ExitCode)

	three, _ := res.Outcome("three")
	assert.Equal(t, StatusCancelled, three.Status, "skipped targets are reported, not dropped")
	assert.Empty(t, sink.Texts("three"))

	statuses := sink.Statuses("three")
	require.Len(t, statuses, 1)
	assert.Equal(t, logsink.StatusCancelled, statuses[0].Kind)

	assert.Equal(t, 3, res.ExitCode())
}

func TestSequentialContinueOnError(t *testing.T) {
	r := New(nil)

	specs := []Spec{
		shSpec("one", "exit 1"),
		shSpec("two", "echo two"),
	}

	res, err := r.Run(context.Background(), specs, Options{ContinueOnError: true})
	require.NoError(t, err)

	two, _ := res.Outcome("two")
	assert.Equal(t, StatusSucceeded, two.Status)
	assert.Equal(t, 1, res.ExitCode())
}

func TestMultiCommandSequence(t *testing.T) {
	sink := logsink.NewRecorder()
	r := New(sink)

	specs := []Spec{{
		Target: "steps",
		Commands: []types.CommandSpec{
			{Program: "echo", Args: []string{"first"}},
			{Program: "echo", Args: []string{"second"}},
		},
	}}

	res, err := r.Run(context.Background(), specs, Options{})
	require.NoError(t, err)

	o, _ := res.Outcome("steps")
	assert.Equal(t, StatusSucceeded, o.Status)
	assert.Equal(t, []string{"first", "second"}, sink.Texts("steps"))

	// Exactly one terminal status event.
	var terminal int
	for _, ev := range sink.Statuses("steps") {
		if ev.Kind != logsink.StatusStarted {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)
}

func TestMultiCommandStopsAtFailure(t *testing.T) {
	sink := logsink.NewRecorder()
	r := New(sink)

	specs := []Spec{{
		Target: "steps",
		Commands: []types.CommandSpec{
			{Program: "sh", Args: []string{"-c", "exit 2"}},
			{Program: "echo", Args: []string{"never"}},
		},
	}}

	res, err := r.Run(context.Background(), specs, Options{})
	require.NoError(t, err)

	o, _ := res.Outcome("steps")
	assert.Equal(t, StatusFailed, o.Status)
	assert.Equal(t, 2, o.ExitCode)
	assert.Empty(t, sink.Texts("steps"))
}

func TestTimeoutCrashesRunningTasks(t *testing.T) {
	r := New(nil)

	specs := []Spec{shSpec("sleeper", "sleep 30")}

	start := time.Now()
	res, err := r.Run(context.Background(), specs, Options{Timeout: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)

	o, _ := res.Outcome("sleeper")
	assert.Equal(t, StatusCrashed, o.Status)
	assert.Equal(t, "timed out", o.Reason)
	assert.NotZero(t, res.ExitCode())
}

func TestInterruptReportsCrashAndCancel(t *testing.T) {
	r := New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	specs := []Spec{
		shSpec("running", "sleep 30"),
		shSpec("queued", "echo never"),
	}

	res, err := r.Run(ctx, specs, Options{})
	require.NoError(t, err)

	running, _ := res.Outcome("running")
	assert.Equal(t, StatusCrashed, running.Status)
	assert.Equal(t, "interrupted", running.Reason)

	queued, _ := res.Outcome("queued")
	assert.Equal(t, StatusCancelled, queued.Status)
}

func TestEnvAndDirApplied(t *testing.T) {
	sink := logsink.NewRecorder()
	r := New(sink)

	dir := t.TempDir()
	specs := []Spec{{
		Target: "env",
		Commands: []types.CommandSpec{{
			Program: "sh",
			Args:    []string{"-c", "echo $PENICHE_TEST_VALUE; pwd"},
			Dir:     dir,
			Env:     map[string]string{"PENICHE_TEST_VALUE": "hello"},
		}},
	}}

	res, err := r.Run(context.Background(), specs, Options{})
	require.NoError(t, err)
	require.True(t, res.OK())

	texts := sink.Texts("env")
	require.Len(t, texts, 2)
	assert.Equal(t, "hello", texts[0])
	assert.Contains(t, texts[1], dir)
}

func TestEmptyCommandsRejected(t *testing.T) {
	r := New(nil)

	_, err := r.Run(context.Background(), []Spec{{Target: "empty"}}, Options{})
	assert.ErrorIs(t, err, types.ErrEmptyCommand)
}

func TestEmptyBatch(t *testing.T) {
	r := New(nil)

	res, err := r.Run(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Outcomes)
	assert.Equal(t, 0, res.ExitCode())
}

func TestTaskTransitions(t *testing.T) {
	task := newTask("t")
	assert.Equal(t, StatusPending, task.Status())

	require.NoError(t, task.transition(StatusPending, StatusRunning))
	require.NoError(t, task.transition(StatusRunning, StatusSucceeded))

	err := task.transition(StatusSucceeded, StatusRunning)
	assert.Error(t, err, "terminal states are final")

	task = newTask("t")
	require.NoError(t, task.transition(StatusPending, StatusCancelled))
	assert.True(t, task.Status().Terminal())

	task = newTask("t")
	err = task.transition(StatusPending, StatusFailed)
	assert.Error(t, err, "pending cannot fail without running first")
}
