package logsink

import "sync"

// RecordedLine is one captured Line call.
type RecordedLine struct {
	Text   string
	Stderr bool
}

// Recorder is a Sink for tests: it captures everything per target.
type Recorder struct {
	mu       sync.Mutex
	lines    map[string][]RecordedLine
	statuses map[string][]StatusEvent
	order    []string
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		lines:    make(map[string][]RecordedLine),
		statuses: make(map[string][]StatusEvent),
	}
}

func (r *Recorder) Line(target, text string, stderr bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[target] = append(r.lines[target], RecordedLine{Text: text, Stderr: stderr})
	r.order = append(r.order, target)
}

func (r *Recorder) Status(target string, ev StatusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[target] = append(r.statuses[target], ev)
}

// Lines returns the captured lines for target, in arrival order.
func (r *Recorder) Lines(target string) []RecordedLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedLine, len(r.lines[target]))
	copy(out, r.lines[target])
	return out
}

// Texts returns just the line texts for target.
func (r *Recorder) Texts(target string) []string {
	lines := r.Lines(target)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

// Statuses returns the captured status events for target.
func (r *Recorder) Statuses(target string) []StatusEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StatusEvent, len(r.statuses[target]))
	copy(out, r.statuses[target])
	return out
}

// Targets returns every target that produced at least one line or status.
func (r *Recorder) Targets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for t := range r.lines {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for t := range r.statuses {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
