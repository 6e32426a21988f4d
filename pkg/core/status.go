package core

import "fmt"

// StepStatus represents the execution status of a step
type StepStatus int

const (
	StatusPending StepStatus = iota // Not yet started
	StatusRunning                   // Currently executing
	StatusPassed                    // Completed successfully
	StatusFailed                    // Assertion failed (expected behavior didn't occur)
	StatusErrored                   // Unexpected error (locator, transport, gesture rejected)
	StatusSkipped                   // Previous step failed
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusErrored:
		return "errored"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsTerminal returns true if the status is a final state
func (s StepStatus) IsTerminal() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusErrored, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsSuccess returns true if the step passed
func (s StepStatus) IsSuccess() bool {
	return s == StatusPassed
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryAssertion                       // Element not found, text mismatch, attribute mismatch
	ErrCategoryTimeout                         // Wait condition not met before the deadline
	ErrCategoryConnection                      // WDA server unreachable or transport failure
	ErrCategoryLocator                         // Malformed locator or unsupported prefix
	ErrCategoryGesture                         // Gesture script rejected by the server
	ErrCategoryConfig                          // Invalid configuration or keyword arguments
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryLocator:
		return "locator"
	case ErrCategoryGesture:
		return "gesture"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}

// StatusFor maps a step error to the status it should be reported with.
// Assertion and timeout failures are "failed"; everything else "errored".
func StatusFor(err error) StepStatus {
	if err == nil {
		return StatusPassed
	}
	switch CategoryOf(err) {
	case ErrCategoryAssertion, ErrCategoryTimeout:
		return StatusFailed
	default:
		return StatusErrored
	}
}

// MarshalText encodes the status by name.
func (s StepStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name written by MarshalText.
func (s *StepStatus) UnmarshalText(text []byte) error {
	for st := StatusPending; st <= StatusSkipped; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown step status %q", text)
}

// MarshalText encodes the category by name.
func (c ErrorCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name written by MarshalText.
func (c *ErrorCategory) UnmarshalText(text []byte) error {
	for cat := ErrCategoryNone; cat <= ErrCategoryConfig; cat++ {
		if cat.String() == string(text) {
			*c = cat
			return nil
		}
	}
	return fmt.Errorf("unknown error category %q", text)
}
