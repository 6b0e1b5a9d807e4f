package errors

import "fmt"

// WarningCode identifies a non-fatal issue.
type WarningCode string

// UnresolvedType indicates a type was degraded to an opaque schema
const UnresolvedType WarningCode = "UNRESOLVED_TYPE"

// Warning is advisory only and never stops a run.
type Warning struct {
	Code    WarningCode `json:"code"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// NewUnresolvedTypeWarning reports that subject could not be mapped to a concrete schema kind.
func NewUnresolvedTypeWarning(subject, reason string) Warning {
	return Warning{Code: UnresolvedType, Subject: subject, Message: reason}
}

// String returns a formatted representation.
func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Code, w.Subject, w.Message)
}
