package tools

import "fmt"

// Error kinds. Every failed command resolves to exactly one of these so the
// assistant can phrase the failure back to the operator.
const (
	KindValidation = "validation_failed"
	KindNotFound   = "not_found"
	KindConflict   = "conflict"
	KindExternal   = "external_service_error"
	KindBatch      = "partial_batch_failure"
	KindInternal   = "internal"
)

// Error is a structured command failure.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// Failures is populated only for batch commands, one entry per failed
	// input item.
	Failures []BatchFailure `json:"failures,omitempty"`
}

// BatchFailure names one failed item of a batch command.
type BatchFailure struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Validationf builds a validation error.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a conflict error.
func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Externalf builds an external-service error.
func Externalf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindExternal, Message: fmt.Sprintf(format, args...)}
}
