/*
runner.go - Asynchronous allocation run coordinator

PURPOSE:
  Runs the greedy allocation engine in a background goroutine so the
  run endpoint can return immediately, and guarantees that at most one
  run is in flight at a time.

DESIGN:
  - Start() either claims the runner under a fresh run ID or reports
    that a run is already in progress; callers map the latter to 409.
  - The engine itself is pure and fast. A configurable Delay simulates
    a long-running job so the status endpoint is observable; tests set
    it to zero.
  - Status() is safe to call at any time, including mid-run.

USAGE:
  runner := NewAllocationRunner()
  runID, ok := runner.Start(func(runID string) { ... })
  if !ok {
      // a run is already in flight
  }

SEE ALSO:
  - handlers.go: RunAllocations / GetRunStatus endpoints
  - allocation/engine.go: The engine executed inside the run
*/
package api

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AllocationRunner serializes allocation runs.
type AllocationRunner struct {
	// Delay is slept before the run executes, to simulate a
	// long-running job. Zero in tests.
	Delay time.Duration

	mu          sync.Mutex
	running     bool
	runID       string
	startedAt   time.Time
	completedAt time.Time
}

// NewAllocationRunner creates a runner with no artificial delay.
func NewAllocationRunner() *AllocationRunner {
	return &AllocationRunner{}
}

// Start launches fn in a background goroutine under a fresh run ID.
// It returns ("", false) if a run is already in flight.
func (ar *AllocationRunner) Start(fn func(runID string)) (string, bool) {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	if ar.running {
		return "", false
	}

	runID := uuid.NewString()
	ar.running = true
	ar.runID = runID
	ar.startedAt = time.Now()
	ar.completedAt = time.Time{}

	go func() {
		defer ar.finish(runID)

		if ar.Delay > 0 {
			time.Sleep(ar.Delay)
		}
		fn(runID)
	}()

	log.Printf("[Runner] Started allocation run %s", runID)
	return runID, true
}

func (ar *AllocationRunner) finish(runID string) {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	ar.running = false
	ar.completedAt = time.Now()
	log.Printf("[Runner] Completed allocation run %s in %v", runID, ar.completedAt.Sub(ar.startedAt))
}

// Status reports the runner's current state.
func (ar *AllocationRunner) Status() RunStatusDTO {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	status := RunStatusDTO{
		Running: ar.running,
		RunID:   ar.runID,
	}
	if !ar.startedAt.IsZero() {
		status.StartedAt = ar.startedAt.Format(time.RFC3339)
	}
	if !ar.completedAt.IsZero() {
		status.CompletedAt = ar.completedAt.Format(time.RFC3339)
	}
	return status
}

// Wait blocks until no run is in flight, polling at a short interval.
// Intended for tests and shutdown paths.
func (ar *AllocationRunner) Wait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		ar.mu.Lock()
		running := ar.running
		ar.mu.Unlock()
		if !running {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
