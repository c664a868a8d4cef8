package operations

import (
	"context"
)

// Step is one stage of a preprocessing run
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Execute runs the Step against the shared run state
	Execute(ctx context.Context, state *RunState) error

	// Validate checks that the state holds what Execute needs
	Validate(state *RunState) error

	// GetDependencies returns the IDs of steps that must complete before this Step
	GetDependencies() []string
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// BaseStage provides common functionality for Step implementations
type BaseStage struct {
	id           string
	name         string
	dependencies []string
}

// NewBaseStage creates a new base Step
func NewBaseStage(id, name string, dependencies []string) BaseStage {
	if dependencies == nil {
		dependencies = []string{}
	}
	return BaseStage{
		id:           id,
		name:         name,
		dependencies: dependencies,
	}
}

// ID returns the Step ID
func (b *BaseStage) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// Name returns the Step name
func (b *BaseStage) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// GetDependencies returns the Step dependencies
func (b *BaseStage) GetDependencies() []string {
	if b == nil {
		return nil
	}
	return b.dependencies
}

// Validate provides a default validation that always passes
func (b *BaseStage) Validate(state *RunState) error {
	if state == nil {
		return NewValidationError(b.ID(), "run state is nil")
	}
	return nil
}

// funcStep adapts a function into a Step
type funcStep struct {
	BaseStage
	run      func(ctx context.Context, state *RunState) error
	validate func(state *RunState) error
}

// NewStep builds a Step from an execute function and an optional validator
func NewStep(id, name string, dependencies []string, run func(context.Context, *RunState) error, validate func(*RunState) error) Step {
	return &funcStep{
		BaseStage: NewBaseStage(id, name, dependencies),
		run:       run,
		validate:  validate,
	}
}

// Execute runs the wrapped function
func (s *funcStep) Execute(ctx context.Context, state *RunState) error {
	return s.run(ctx, state)
}

// Validate runs the base check, then the wrapped validator
func (s *funcStep) Validate(state *RunState) error {
	if err := s.BaseStage.Validate(state); err != nil {
		return err
	}
	if s.validate == nil {
		return nil
	}
	return s.validate(state)
}
