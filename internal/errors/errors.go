package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all fatal failure modes
type ErrorCode string

const (
	// ConfigurationError indicates a missing or invalid scan configuration
	ConfigurationError ErrorCode = "CONFIGURATION_ERROR"
	// SourceParseError indicates a source file could not be parsed into a syntax tree
	SourceParseError ErrorCode = "SOURCE_PARSE_ERROR"
	// OutputError indicates a generated document could not be written
	OutputError ErrorCode = "OUTPUT_ERROR"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditFile suggests editing a file
	EditFile FixActionType = "edit-file"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Path        string        `json:"path,omitempty"`
	Description string        `json:"description,omitempty"`
}

// Error is a restdoc error with a stable code, a message and suggestions
type Error struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new Error. Suggested fixes default to the ones registered for the code.
func New(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// NewConfigurationError creates a CONFIGURATION_ERROR.
func NewConfigurationError(message string, cause error) *Error {
	return New(ConfigurationError, message, cause)
}

// NewSourceParseError creates a SOURCE_PARSE_ERROR for the given file.
func NewSourceParseError(file string, cause error) *Error {
	return New(SourceParseError, "cannot parse source file "+file, cause).WithDetails(map[string]string{"file": file})
}

// NewOutputError creates an OUTPUT_ERROR for the given output path.
func NewOutputError(path string, cause error) *Error {
	return New(OutputError, "cannot write file "+path, cause).WithDetails(map[string]string{"path": path})
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or InternalError.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ConfigurationError: {
		{
			Type:        RunCommand,
			Command:     "restdoc config init",
			Description: "Write a sample configuration file",
		},
		{
			Type:        RunCommand,
			Command:     "restdoc config show",
			Description: "Print the effective configuration",
		},
	},
	SourceParseError: {
		{
			Type:        EditFile,
			Description: "Fix the syntax error or exclude the file's directory from sourceRoots",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
