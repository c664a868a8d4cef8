package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// RunReport records how a run went, stage by stage. It is written next to
// the logs; it is not part of the published output set.
type RunReport struct {
	mu sync.RWMutex `json:"-"`

	RunID     string     `json:"run_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Duration  string     `json:"duration,omitempty"`

	// Inputs and options of the run
	Config map[string]interface{} `json:"config,omitempty"`

	Stages []StageExecution `json:"stages"`
	Stats  map[string]int   `json:"stats,omitempty"`

	Status      RunStatus `json:"status"`
	LastUpdated time.Time `json:"last_updated"`
	Error       string    `json:"error,omitempty"`
}

// StageExecution tracks the execution of a single stage
type StageExecution struct {
	StageID   string                 `json:"stage_id"`
	StageName string                 `json:"stage_name"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Duration  string                 `json:"duration"`
	Status    StepStatus             `json:"status"`
	Error     string                 `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewRunReport creates a pending report
func NewRunReport(runID string, config map[string]interface{}) *RunReport {
	now := time.Now()
	return &RunReport{
		RunID:       runID,
		StartTime:   now,
		Config:      config,
		Stages:      []StageExecution{},
		Status:      RunStatusPending,
		LastUpdated: now,
	}
}

// Start marks the run as running
func (m *RunReport) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Status = RunStatusRunning
	m.LastUpdated = m.StartTime
}

// RecordStageStart records the start of a stage execution
func (m *RunReport) RecordStageStart(stageID, stageName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Stages = append(m.Stages, StageExecution{
		StageID:   stageID,
		StageName: stageName,
		StartTime: time.Now(),
		Status:    StepStatusActive,
	})
	m.LastUpdated = time.Now()
}

// RecordStageCompletion records the completion of a stage
func (m *RunReport) RecordStageCompletion(stageID string, metadata map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.stageIndex(stageID); i >= 0 {
		m.Stages[i].EndTime = time.Now()
		m.Stages[i].Duration = m.Stages[i].EndTime.Sub(m.Stages[i].StartTime).String()
		m.Stages[i].Status = StepStatusCompleted
		m.Stages[i].Metadata = metadata
	}
	m.LastUpdated = time.Now()
}

// RecordStageFailure records a stage failure
func (m *RunReport) RecordStageFailure(stageID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.stageIndex(stageID); i >= 0 {
		m.Stages[i].EndTime = time.Now()
		m.Stages[i].Duration = m.Stages[i].EndTime.Sub(m.Stages[i].StartTime).String()
		m.Stages[i].Status = StepStatusFailed
		m.Stages[i].Error = err.Error()
	}
	m.LastUpdated = time.Now()
}

// stageIndex returns the position of the latest execution of stageID, or -1
func (m *RunReport) stageIndex(stageID string) int {
	for i := len(m.Stages) - 1; i >= 0; i-- {
		if m.Stages[i].StageID == stageID {
			return i
		}
	}
	return -1
}

// IsStageCompleted checks if a stage has been completed
func (m *RunReport) IsStageCompleted(stageID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.stageIndex(stageID)
	return i >= 0 && m.Stages[i].Status == StepStatusCompleted
}

// Finish closes the report with the run's outcome and counters
func (m *RunReport) Finish(err error, stats map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.EndTime = &now
	m.Duration = now.Sub(m.StartTime).String()
	m.Stats = stats
	m.LastUpdated = now

	switch {
	case err == nil:
		m.Status = RunStatusCompleted
	case IsCancellation(err):
		m.Status = RunStatusCancelled
		m.Error = err.Error()
	default:
		m.Status = RunStatusFailed
		m.Error = err.Error()
	}
}

// SaveToFile saves the report to a JSON file
func (m *RunReport) SaveToFile(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	return nil
}

// LoadRunReport loads a report from a JSON file
func LoadRunReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}

	var report RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run report: %w", err)
	}
	return &report, nil
}

// ReportFileName is the name a run's report is saved under
func ReportFileName(runID string) string {
	return fmt.Sprintf("run-%s.json", runID)
}
