package core

import "time"

// StepResult captures the outcome of executing a single keyword step
type StepResult struct {
	// Identity
	Index   int      `json:"index"`           // 0-based position in suite
	Phase   string   `json:"phase,omitempty"` // setup, teardown or empty for main steps
	Keyword string   `json:"keyword"`         // Keyword name as written
	Args    []string `json:"args,omitempty"`  // Arguments after variable expansion

	// Status
	Status   StepStatus    `json:"status"`
	Category ErrorCategory `json:"errorCategory,omitempty"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Output
	Output  interface{} `json:"output,omitempty"`  // Keyword return value
	Assign  string      `json:"assign,omitempty"`  // Variable the output was stored in
	Message string      `json:"message,omitempty"` // Human-readable explanation

	// Error Details
	Error string `json:"error,omitempty"`
}

// SuiteResult captures the outcome of executing one suite file
type SuiteResult struct {
	// Identity
	Name     string `json:"name"`
	FilePath string `json:"filePath"`

	// Status (aggregated from steps)
	Status StepStatus `json:"status"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Steps []StepResult `json:"steps"`

	// Summary (computed)
	TotalSteps   int `json:"totalSteps"`
	PassedSteps  int `json:"passedSteps"`
	FailedSteps  int `json:"failedSteps"`
	SkippedSteps int `json:"skippedSteps"`

	// Error info (if suite failed)
	Error string `json:"error,omitempty"`
}

// ComputeSummary calculates step counts from the Steps slice
func (s *SuiteResult) ComputeSummary() {
	s.TotalSteps = len(s.Steps)
	s.PassedSteps = 0
	s.FailedSteps = 0
	s.SkippedSteps = 0

	for _, step := range s.Steps {
		switch step.Status {
		case StatusPassed:
			s.PassedSteps++
		case StatusFailed, StatusErrored:
			s.FailedSteps++
		case StatusSkipped:
			s.SkippedSteps++
		}
	}
}

// AggregateStatus determines the suite status from step results.
// The first failed or errored step decides; an empty suite passes.
func (s *SuiteResult) AggregateStatus() StepStatus {
	for _, step := range s.Steps {
		if step.Status == StatusFailed || step.Status == StatusErrored {
			return step.Status
		}
	}
	return StatusPassed
}

// RunResult captures the outcome of one CLI run over several suites
type RunResult struct {
	RunID string `json:"runId"`

	// Timing
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`

	// Results
	Suites []SuiteResult `json:"suites"`

	// Summary
	TotalSuites  int `json:"totalSuites"`
	PassedSuites int `json:"passedSuites"`
	FailedSuites int `json:"failedSuites"`
}

// ComputeSummary calculates suite counts from the Suites slice
func (r *RunResult) ComputeSummary() {
	r.TotalSuites = len(r.Suites)
	r.PassedSuites = 0
	r.FailedSuites = 0

	for _, suite := range r.Suites {
		if suite.Status.IsSuccess() {
			r.PassedSuites++
		} else {
			r.FailedSuites++
		}
	}
}

// Success returns true if all suites passed
func (r *RunResult) Success() bool {
	for _, suite := range r.Suites {
		if !suite.Status.IsSuccess() {
			return false
		}
	}
	return len(r.Suites) > 0
}
