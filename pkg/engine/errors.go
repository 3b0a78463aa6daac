package engine

import (
	"errors"
	"fmt"
)

// Validation errors: raised synchronously before any execution state exists.
var (
	ErrEmptyWorkflow      = errors.New("workflow has no nodes")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrMissingAgentConfig = errors.New("ai_agent node missing agent config")
)

// Limit errors: structural ceilings and back-pressure.
var (
	ErrTooManyNodes      = errors.New("workflow exceeds node limit")
	ErrTooManyEdges      = errors.New("workflow exceeds edge limit")
	ErrCapacityExceeded  = errors.New("too many active executions")
	ErrResultTooLarge    = errors.New("node result exceeds size limit")
	ErrReservedResultKey = errors.New("reserved key in node result")
)

// Execution errors.
var (
	ErrCycleDetected     = errors.New("cycle detected in workflow graph")
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrUnknownNodeType   = errors.New("unknown node type")
	ErrNodeFailed        = errors.New("node execution failed")
	ErrExecutionTimeout  = errors.New("workflow execution timed out")
)

// Apology is the only failure text ever surfaced to end users; internals stay
// in logs.
const Apology = "I'm sorry, something went wrong while processing your request. Please try again."

const maxErrorLength = 500

// Error wraps engine failures with an operation name and a machine-usable
// code for logging and alerting. The message is sanitized before it is
// surfaced.
type Error struct {
	Op      string // Operation that failed
	Code    string // Stable error code for API responses and alerts
	Message string // Sanitized human-readable message
	Err     error  // Underlying sentinel or cause
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

func newError(op, code, message string, err error) *Error {
	return &Error{
		Op:      op,
		Code:    code,
		Message: sanitizeMessage(message),
		Err:     err,
	}
}

// sanitizeMessage truncates error text so raw internals cannot leak unbounded
// detail to callers or logs.
func sanitizeMessage(msg string) string {
	runes := []rune(msg)
	if len(runes) <= maxErrorLength {
		return msg
	}

	return string(runes[:maxErrorLength]) + "..."
}

// asEngineError unwraps err into an *Error when one is in the chain.
func asEngineError(err error, target **Error) bool {
	return errors.As(err, target)
}

// IsValidationError reports whether err indicates a malformed graph or
// invalid run parameters.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyWorkflow) ||
		errors.Is(err, ErrInvalidIdentifier) ||
		errors.Is(err, ErrMissingAgentConfig)
}

// IsLimitError reports whether err is a structural or capacity ceiling
// breach.
func IsLimitError(err error) bool {
	return errors.Is(err, ErrTooManyNodes) ||
		errors.Is(err, ErrTooManyEdges) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrResultTooLarge)
}

// IsCycleError reports whether err is a dependency cycle.
func IsCycleError(err error) bool {
	return errors.Is(err, ErrCycleDetected)
}

// IsTimeoutError reports whether err is a run deadline breach.
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrExecutionTimeout)
}

// IsNodeError reports whether err wraps a single node handler's failure.
func IsNodeError(err error) bool {
	return errors.Is(err, ErrNodeFailed) ||
		errors.Is(err, ErrUnsupportedAction) ||
		errors.Is(err, ErrUnknownNodeType)
}
