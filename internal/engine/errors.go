package engine

import (
	"errors"
	"fmt"
)

// DispatchError is raised by the cascade guard. The engine logs it and skips
// the offending dispatch; it never fails the operation that emitted the event.
type DispatchError struct {
	// Code identifies the guard that tripped.
	Code DispatchErrorCode

	// Message is a human-readable description.
	Message string

	// Flow identifies the cascade.
	Flow string

	// ScriptID is set for cycle errors.
	ScriptID string

	// Event is the event being dispatched.
	Event string
}

// DispatchErrorCode categorizes guard errors.
type DispatchErrorCode string

const (
	// ErrCodeCycleDetected means a script would re-enter itself for the same event.
	ErrCodeCycleDetected DispatchErrorCode = "CYCLE_DETECTED"

	// ErrCodeQuotaExceeded means the flow ran more script dispatches than allowed.
	ErrCodeQuotaExceeded DispatchErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeDepthExceeded means events nested deeper than allowed.
	ErrCodeDepthExceeded DispatchErrorCode = "DEPTH_EXCEEDED"
)

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Flow != "" && e.ScriptID != "" {
		return fmt.Sprintf("%s: %s (flow=%s, script=%s)", e.Code, e.Message, e.Flow, e.ScriptID)
	}
	if e.Flow != "" {
		return fmt.Sprintf("%s: %s (flow=%s)", e.Code, e.Message, e.Flow)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code DispatchErrorCode) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsCycleError reports whether err is a cycle detection error.
func IsCycleError(err error) bool {
	return hasCode(err, ErrCodeCycleDetected)
}

// IsQuotaError reports whether err is a quota exceeded error.
func IsQuotaError(err error) bool {
	return hasCode(err, ErrCodeQuotaExceeded)
}

// IsDepthError reports whether err is a depth exceeded error.
func IsDepthError(err error) bool {
	return hasCode(err, ErrCodeDepthExceeded)
}

// NewCycleError creates a DispatchError for a re-entrant dispatch.
func NewCycleError(flow, scriptID, event string) *DispatchError {
	return &DispatchError{
		Code:     ErrCodeCycleDetected,
		Message:  fmt.Sprintf("script is already handling %s in this flow", event),
		Flow:     flow,
		ScriptID: scriptID,
		Event:    event,
	}
}

// NewQuotaError creates a DispatchError for an exhausted step quota.
func NewQuotaError(flow string, steps, maxSteps int) *DispatchError {
	return &DispatchError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("flow exceeded max steps (%d > %d)", steps, maxSteps),
		Flow:    flow,
	}
}

// NewDepthError creates a DispatchError for an event nested too deeply.
func NewDepthError(flow, event string, depth, maxDepth int) *DispatchError {
	return &DispatchError{
		Code:    ErrCodeDepthExceeded,
		Message: fmt.Sprintf("event nested too deeply (%d > %d)", depth, maxDepth),
		Flow:    flow,
		Event:   event,
	}
}
