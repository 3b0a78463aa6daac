package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/flowgrid/flowgrid/pkg/models"
)

// ExecutionStore is the process-wide registry of in-flight executions. It
// enforces the active-execution ceiling as back-pressure (no queueing) and
// runs a periodic sweep that evicts trackers leaked by runs that never
// reached their cleanup path.
type ExecutionStore struct {
	mu      sync.RWMutex
	entries map[string]*models.ExecutionTracker
	cfg     Config
	logger  *slog.Logger
	stop    chan struct{}
	done    chan struct{}
}

// NewExecutionStore creates an empty store. Call Start to begin the stale
// sweep and Shutdown to stop it.
func NewExecutionStore(cfg Config, logger *slog.Logger) *ExecutionStore {
	return &ExecutionStore{
		entries: make(map[string]*models.ExecutionTracker),
		cfg:     cfg.withDefaults(),
		logger:  logger.With("module", "execution_store"),
	}
}

// Start launches the background sweep. Calling Start twice is an error in
// the caller; the previous sweep must be shut down first.
func (s *ExecutionStore) Start() {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.sweepLoop(s.stop, s.done)
}

// Shutdown stops the sweep and waits for it to exit. Registered entries are
// left in place; owners still running will remove themselves.
func (s *ExecutionStore) Shutdown() {
	if s.stop == nil {
		return
	}

	close(s.stop)
	<-s.done
	s.stop = nil
	s.done = nil
}

// Register adds a tracker, rejecting with a capacity error when the active
// ceiling is reached. Callers must retry later; there is no queue.
func (s *ExecutionStore) Register(tracker *models.ExecutionTracker) error {
	const op = "engine.ExecutionStore.Register"

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.cfg.MaxActiveExecutions {
		return newError(op, "CAPACITY_EXCEEDED",
			fmt.Sprintf("%d active executions at limit %d", len(s.entries), s.cfg.MaxActiveExecutions),
			ErrCapacityExceeded)
	}

	s.entries[tracker.ExecutionID] = tracker

	return nil
}

// UpdateStatus is best effort: a no-op when the entry was already evicted.
func (s *ExecutionStore) UpdateStatus(executionID string, status models.ExecutionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tracker, ok := s.entries[executionID]; ok {
		tracker.Status = status
	}
}

// Remove deletes a tracker. Safe to call for entries the sweep already took.
func (s *ExecutionStore) Remove(executionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, executionID)
}

// Active returns a snapshot of the registered trackers.
func (s *ExecutionStore) Active() []*models.ExecutionTracker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ExecutionTracker, 0, len(s.entries))
	for _, tracker := range s.entries {
		copied := *tracker
		out = append(out, &copied)
	}

	return out
}

// Count returns the number of active entries.
func (s *ExecutionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

func (s *ExecutionStore) sweepLoop(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep evicts entries older than the staleness threshold.
func (s *ExecutionStore) sweep() {
	cutoff := time.Now().Add(-s.cfg.StaleThreshold)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, tracker := range s.entries {
		if tracker.StartTime.Before(cutoff) {
			s.logger.Warn("evicting stale execution tracker",
				"execution_id", id,
				"workflow_id", tracker.WorkflowID,
				"started_at", tracker.StartTime,
				"status", tracker.Status)
			delete(s.entries, id)
		}
	}
}
