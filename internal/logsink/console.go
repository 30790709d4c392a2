package logsink

import (
	"fmt"
	"hash/fnv"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// timeUnit picks a rounding unit so short runs keep millisecond detail
// while long runs stay readable.
func timeUnit(d time.Duration) time.Duration {
	if d < time.Second {
		return time.Millisecond
	}
	return 10 * time.Millisecond
}

// Console renders tagged lines to stdout/stderr writers. Each target gets a
// stable color derived from hashing its name, so the same script keeps the
// same color across runs. A single mutex serializes writes: concurrent
// targets interleave by whole lines, never mid-line.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	color  bool

	styles map[string]lipgloss.Style
}

// Status glyphs.
const (
	glyphOK    = "✓"
	glyphFail  = "✗"
	glyphCrash = "💥"
)

var (
	dimStyle     = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// NewConsole builds a console sink. When color is false all styling is
// skipped, leaving plain `[target] line` output.
func NewConsole(out, errOut io.Writer, color bool) *Console {
	return &Console{
		out:    out,
		errOut: errOut,
		color:  color,
		styles: make(map[string]lipgloss.Style),
	}
}

// targetStyle returns the memoized style for a target. Callers hold c.mu.
func (c *Console) targetStyle(target string) lipgloss.Style {
	if s, ok := c.styles[target]; ok {
		return s
	}
	h := fnv.New32a()
	h.Write([]byte(target))
	sum := h.Sum32()
	color := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x",
		0x60|byte(sum>>16), 0x60|byte(sum>>8), 0x60|byte(sum)))
	s := lipgloss.NewStyle().Foreground(color).Bold(true)
	c.styles[target] = s
	return s
}

// tag renders the `[target]` prefix. Callers hold c.mu.
func (c *Console) tag(target string) string {
	if !c.color {
		return "[" + target + "]"
	}
	return dimStyle.Render("[") + c.targetStyle(target).Render(target) + dimStyle.Render("]")
}

// Line writes one tagged output line.
func (c *Console) Line(target, text string, stderr bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w := c.out
	if stderr {
		w = c.errOut
	}
	fmt.Fprintf(w, "%s %s\n", c.tag(target), text)
}

// Status writes a tagged lifecycle event. Start events are suppressed to
// keep the log close to the raw process output.
func (c *Console) Status(target string, ev StatusEvent) {
	if ev.Kind == StatusStarted {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var msg string
	switch ev.Kind {
	case StatusSucceeded:
		msg = fmt.Sprintf("%s done in %s", glyphOK, ev.Elapsed.Round(timeUnit(ev.Elapsed)))
		if c.color {
			msg = successStyle.Render(msg)
		}
	case StatusFailed:
		msg = fmt.Sprintf("%s exit code %d", glyphFail, ev.ExitCode)
		if c.color {
			msg = failureStyle.Render(msg)
		}
	case StatusCrashed:
		msg = fmt.Sprintf("%s crashed: %s", glyphCrash, ev.Reason)
		if c.color {
			msg = failureStyle.Render(msg)
		}
	case StatusCancelled:
		msg = "cancelled before start"
		if c.color {
			msg = dimStyle.Render(msg)
		}
	}
	fmt.Fprintf(c.errOut, "%s %s\n", c.tag(target), msg)
}
