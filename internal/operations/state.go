package operations

import (
	"sync"

	"fishintel/internal/dataprocessing"
	"fishintel/internal/files"
	"fishintel/pkg/contracts/domain"
)

// RunStatus represents the overall status of a run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState carries the data handed from one step to the next
type RunState struct {
	mu sync.RWMutex

	RunID string

	// Filled by the load steps
	Market       []domain.FactRecord
	Landings     []domain.WideLandingsRow
	MonthColumns []dataprocessing.MonthColumn

	// Filled by the build step
	Result   *BuildResult
	Manifest *domain.Manifest

	// Filled by the write step, consumed by publish
	Staging *files.Staging

	stats map[string]int
}

// NewRunState creates the state of a fresh run
func NewRunState(runID string) *RunState {
	return &RunState{
		RunID:        runID,
		MonthColumns: dataprocessing.DefaultMonthColumns(),
		stats:        make(map[string]int),
	}
}

// SetStat records a counter
func (s *RunState) SetStat(name string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[name] = value
}

// Stat returns a counter, zero when unset
func (s *RunState) Stat(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats[name]
}

// Stats returns a copy of every counter
func (s *RunState) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}
