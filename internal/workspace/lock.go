package workspace

import "sync"

// Workspace mutations are single-writer: one lock per workspace root path,
// shared process-wide. Readers work from the snapshot a Load produced and
// never take the lock.
var (
	locksMu sync.Mutex
	locks   = make(map[string]*sync.Mutex)
)

// lockRoot acquires the mutation lock for a workspace root and returns the
// release function. Scoped acquisition: callers defer the release so every
// exit path, including error paths, lets the next writer in.
func lockRoot(root string) func() {
	locksMu.Lock()
	mu, ok := locks[root]
	if !ok {
		mu = &sync.Mutex{}
		locks[root] = mu
	}
	locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
