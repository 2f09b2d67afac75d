// Package lifecycle runs the bootstrap phases in their fixed order.
// It resolves every planned phase against the handler registry up front,
// enforces mandatory coverage, and executes the surviving handlers with
// fail-fast semantics.
package lifecycle

import (
	"errors"
	"fmt"
)

// FailureClass classifies a bootstrap failure for exit-code mapping and
// for the run journal.
type FailureClass string

const (
	// ClassUsage indicates the invocation itself was invalid.
	// Examples: unknown install mode, too many positional arguments,
	// config-only runs without a configuration source.
	ClassUsage FailureClass = "usage"

	// ClassUnsupportedPlatform indicates the kernel or distribution
	// could not be identified well enough to dispatch handlers.
	ClassUnsupportedPlatform FailureClass = "unsupported-platform"

	// ClassEndOfLife indicates the platform was identified but is
	// rejected by the support policy (end-of-life release, or a
	// release the requested install mode cannot serve).
	ClassEndOfLife FailureClass = "end-of-life"

	// ClassMissingHandler indicates a mandatory phase resolved no
	// handler for the detected platform.
	ClassMissingHandler FailureClass = "missing-handler"

	// ClassPhaseFailed indicates a handler ran and returned an error.
	ClassPhaseFailed FailureClass = "phase-failed"

	// ClassVerificationFailed indicates the final daemon check found
	// the installed services not running.
	ClassVerificationFailed FailureClass = "verification-failed"
)

// Exit codes reported by the saltboot process. Every failure class maps
// to exactly one code so wrapping scripts can branch on $?.
const (
	ExitOK                  = 0
	ExitPhaseFailed         = 1
	ExitUsage               = 2
	ExitUnsupportedPlatform = 3
	ExitEndOfLife           = 4
	ExitMissingHandler      = 5
	ExitVerificationFailed  = 6
)

var exitCodes = map[FailureClass]int{
	ClassUsage:               ExitUsage,
	ClassUnsupportedPlatform: ExitUnsupportedPlatform,
	ClassEndOfLife:           ExitEndOfLife,
	ClassMissingHandler:      ExitMissingHandler,
	ClassPhaseFailed:         ExitPhaseFailed,
	ClassVerificationFailed:  ExitVerificationFailed,
}

// RunError represents a classified bootstrap failure with context.
type RunError struct {
	// Class is the failure classification for exit-code mapping.
	Class FailureClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Phase is the lifecycle phase that failed, if applicable.
	Phase string `json:"phase,omitempty"`

	// Handler is the handler name involved, if one was resolved.
	Handler string `json:"handler,omitempty"`

	// Err is the underlying error that caused this error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *RunError) Error() string {
	switch {
	case e.Phase != "" && e.Handler != "":
		return fmt.Sprintf("[%s] %s (phase=%s, handler=%s)%s",
			e.Class, e.Message, e.Phase, e.Handler, e.unwrapSuffix())
	case e.Phase != "":
		return fmt.Sprintf("[%s] %s (phase=%s)%s",
			e.Class, e.Message, e.Phase, e.unwrapSuffix())
	default:
		return fmt.Sprintf("[%s] %s%s", e.Class, e.Message, e.unwrapSuffix())
	}
}

// Unwrap returns the underlying error for error chain inspection.
func (e *RunError) Unwrap() error {
	return e.Err
}

func (e *RunError) unwrapSuffix() string {
	if e.Err != nil {
		return ": " + e.Err.Error()
	}
	return ""
}

// Is implements error equality checking for errors.Is.
func (e *RunError) Is(target error) bool {
	t, ok := target.(*RunError)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// NewUsageError creates a new usage error.
func NewUsageError(message string, err error) *RunError {
	return &RunError{Class: ClassUsage, Message: message, Err: err}
}

// NewUnsupportedPlatformError creates a new unsupported-platform error.
func NewUnsupportedPlatformError(message string, err error) *RunError {
	return &RunError{Class: ClassUnsupportedPlatform, Message: message, Err: err}
}

// NewEndOfLifeError creates a new end-of-life policy error.
func NewEndOfLifeError(message string, err error) *RunError {
	return &RunError{Class: ClassEndOfLife, Message: message, Err: err}
}

// NewMissingHandlerError creates a new missing-handler error.
func NewMissingHandlerError(message string, err error) *RunError {
	return &RunError{Class: ClassMissingHandler, Message: message, Err: err}
}

// NewPhaseError creates a new phase-failed error.
func NewPhaseError(message string, err error) *RunError {
	return &RunError{Class: ClassPhaseFailed, Message: message, Err: err}
}

// NewVerificationError creates a new verification-failed error.
func NewVerificationError(message string, err error) *RunError {
	return &RunError{Class: ClassVerificationFailed, Message: message, Err: err}
}

// WithPhase adds phase context to an error.
func (e *RunError) WithPhase(phase string) *RunError {
	e.Phase = phase
	return e
}

// WithHandler adds handler context to an error.
func (e *RunError) WithHandler(handler string) *RunError {
	e.Handler = handler
	return e
}

// ExitCode maps an error to the process exit code. A nil error maps to
// ExitOK; errors that carry no RunError in their chain map to
// ExitPhaseFailed.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *RunError
	if errors.As(err, &e) {
		if code, ok := exitCodes[e.Class]; ok {
			return code
		}
	}
	return ExitPhaseFailed
}

// ClassOf returns the failure class of an error, or ClassPhaseFailed
// when the chain carries no RunError.
func ClassOf(err error) FailureClass {
	var e *RunError
	if errors.As(err, &e) {
		return e.Class
	}
	return ClassPhaseFailed
}
