package logsink

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleTagsLines(t *testing.T) {
	var out, errOut strings.Builder
	c := NewConsole(&out, &errOut, false)

	c.Line("build", "compiling core", false)
	c.Line("build", "warning: unused import", true)

	assert.Equal(t, "[build] compiling core\n", out.String())
	assert.Equal(t, "[build] warning: unused import\n", errOut.String())
}

func TestConsoleStatusRendering(t *testing.T) {
	var out, errOut strings.Builder
	c := NewConsole(&out, &errOut, false)

	c.Status("test", StatusEvent{Kind: StatusStarted})
	c.Status("test", StatusEvent{Kind: StatusFailed, ExitCode: 1})
	c.Status("build", StatusEvent{Kind: StatusCrashed, Reason: "signal: killed"})

	assert.Empty(t, out.String())
	s := errOut.String()
	assert.Contains(t, s, "[test] ✗ exit code 1")
	assert.Contains(t, s, "[build] 💥 crashed: signal: killed")
	assert.NotContains(t, s, "started")
}

func TestConsoleConcurrentLinesStayWhole(t *testing.T) {
	var out strings.Builder
	c := NewConsole(&out, &out, false)

	var wg sync.WaitGroup
	for _, target := range []string{"a", "b", "c"} {
		target := target
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Line(target, "line from "+target, false)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(t, lines, 150)
	for _, l := range lines {
		target := strings.Trim(strings.Fields(l)[0], "[]")
		assert.Equal(t, "["+target+"] line from "+target, l)
	}
}

func TestRecorderPreservesPerTargetOrder(t *testing.T) {
	r := NewRecorder()
	r.Line("a", "one", false)
	r.Line("b", "uno", false)
	r.Line("a", "two", true)

	assert.Equal(t, []string{"one", "two"}, r.Texts("a"))
	assert.Equal(t, []RecordedLine{{Text: "uno"}}, r.Lines("b"))
	assert.True(t, r.Lines("a")[1].Stderr)
}
