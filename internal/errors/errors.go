package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// RepoUnreachable indicates the repository could not be fetched at all
	RepoUnreachable ErrorCode = "REPO_UNREACHABLE"
	// NotFound indicates a missing repository, branch, file, or symbol
	NotFound ErrorCode = "NOT_FOUND"
	// RateLimited indicates the GitHub API budget is exhausted
	RateLimited ErrorCode = "RATE_LIMITED"
	// AuthFailed indicates the token was rejected by the API
	AuthFailed ErrorCode = "AUTH_FAILED"
	// ParseFailed indicates a source file could not be parsed
	ParseFailed ErrorCode = "PARSE_FAILED"
	// InvalidParameter indicates a bad tool or CLI parameter
	InvalidParameter ErrorCode = "INVALID_PARAMETER"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// CacheFailed indicates the local cache store misbehaved
	CacheFailed ErrorCode = "CACHE_FAILED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ResearchError represents a tool failure with a stable code and cause chain.
type ResearchError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new ResearchError.
func New(code ErrorCode, message string, cause error) *ResearchError {
	return &ResearchError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *ResearchError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ResearchError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ResearchError) WithDetails(details interface{}) *ResearchError {
	e.Details = details
	return e
}

// NewRepoUnreachable wraps a transport failure that aborts a whole operation.
func NewRepoUnreachable(owner, repo string, cause error) *ResearchError {
	return New(RepoUnreachable, fmt.Sprintf("repository %s/%s is unreachable", owner, repo), cause)
}

// NewNotFound reports a missing resource by description.
func NewNotFound(what string) *ResearchError {
	return New(NotFound, fmt.Sprintf("%s not found", what), nil)
}

// NewRateLimited reports an exhausted API budget.
func NewRateLimited(tier string, resetSeconds int) *ResearchError {
	return New(RateLimited, fmt.Sprintf("%s rate limit exhausted", tier), nil).
		WithDetails(map[string]interface{}{"resetInSeconds": resetSeconds})
}

// NewInvalidParameter reports a bad tool parameter.
func NewInvalidParameter(name, reason string) *ResearchError {
	return New(InvalidParameter, fmt.Sprintf("invalid parameter %q: %s", name, reason), nil)
}

// CodeOf extracts the ErrorCode from an error chain, or InternalError.
func CodeOf(err error) ErrorCode {
	var re *ResearchError
	if errors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// IsCode reports whether the error chain carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var re *ResearchError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}
