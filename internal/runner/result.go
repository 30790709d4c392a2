package runner

import "time"

// Outcome is the final record for one target in a batch. When Err holds a
// spawn failure the task never started and Status stays pending.
type Outcome struct {
	Target   string
	Status   Status
	ExitCode int
	Reason   string
	Elapsed  time.Duration
	Err      error
}

// OK reports whether the target finished successfully.
func (o Outcome) OK() bool { return o.Status == StatusSucceeded && o.Err == nil }

// BatchResult aggregates per-target outcomes for one runner invocation.
// It always contains exactly one outcome per requested target, in request
// order, whatever mix of success and failure occurred.
type BatchResult struct {
	Outcomes []Outcome
}

// Outcome returns the record for target, if present.
func (b *BatchResult) Outcome(target string) (Outcome, bool) {
	for _, o := range b.Outcomes {
		if o.Target == target {
			return o, true
		}
	}
	return Outcome{}, false
}

// OK reports whether every target succeeded.
func (b *BatchResult) OK() bool {
	for _, o := range b.Outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}

// ExitCode aggregates the worst per-target outcome: 0 only on full success,
// otherwise the highest failing exit code (crashes, cancellations, and
// spawn failures count as 1).
func (b *BatchResult) ExitCode() int {
	code := 0
	for _, o := range b.Outcomes {
		switch {
		case o.OK():
		case o.Status == StatusFailed && o.ExitCode > code:
			code = o.ExitCode
		case code == 0:
			code = 1
		}
	}
	return code
}
