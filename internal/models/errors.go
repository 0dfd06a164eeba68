package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of reconciliation errors
type ErrorType int

const (
	ErrValidation ErrorType = iota
	ErrAmbiguousIdentity
	ErrExternalCommand
	ErrMalformedOutput
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrValidation:
		return "Validation"
	case ErrAmbiguousIdentity:
		return "AmbiguousIdentity"
	case ErrExternalCommand:
		return "ExternalCommand"
	case ErrMalformedOutput:
		return "MalformedOutput"
	default:
		return "Unknown"
	}
}

// ReconcileError represents a terminal error during reconciliation. None of
// these are retried or locally recovered; each one aborts the invocation.
type ReconcileError struct {
	Type ErrorType
	Err  error

	// Diagnostic context from the external command, set for
	// ErrExternalCommand only.
	ExitCode int
	Stdout   string
	Stderr   string
}

// Error implements the error interface
func (e *ReconcileError) Error() string {
	if e.Type == ErrExternalCommand {
		return fmt.Sprintf("[%s] %v (zypper exit code %d)", e.Type, e.Err, e.ExitCode)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// NewFailureReport maps an error to the structured failure object handed to
// the host framework. Command output is carried through verbatim.
func NewFailureReport(err error) FailureReport {
	report := FailureReport{Msg: err.Error()}

	var re *ReconcileError
	if errors.As(err, &re) {
		report.Msg = re.Err.Error()
		if re.Type == ErrExternalCommand {
			if re.ExitCode != 0 {
				code := re.ExitCode
				report.ZypperExitCode = &code
			}
			report.Stdout = re.Stdout
			report.Stderr = re.Stderr
		}
	}
	return report
}
