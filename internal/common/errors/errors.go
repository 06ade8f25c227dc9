// Package errors provides standardized error handling for the recruitment pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Missing referenced entities: caller errors, surfaced immediately.
	ErrCodeCandidateNotFound ErrorCode = "CANDIDATE_NOT_FOUND"
	ErrCodeVacancyNotFound   ErrorCode = "VACANCY_NOT_FOUND"
	ErrCodeAgentNotFound     ErrorCode = "AGENT_NOT_FOUND"
	ErrCodeUserNotFound      ErrorCode = "USER_NOT_FOUND"

	// Data integrity
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	ErrCodeInvalidChannel   ErrorCode = "INVALID_CHANNEL"
	ErrCodeDuplicateEmail   ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeMissingCVText    ErrorCode = "MISSING_CV_TEXT"

	// Infrastructure-adjacent: contained at adapter boundaries, degrade gracefully.
	ErrCodeCVExtractionFailed ErrorCode = "CV_EXTRACTION_FAILED"
	ErrCodeSearchQueryFailed  ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"

	// Auth
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeSessionInvalid     ErrorCode = "SESSION_INVALID"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is one of the missing-entity codes.
func IsNotFound(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	switch stdErr.Code {
	case ErrCodeCandidateNotFound, ErrCodeVacancyNotFound, ErrCodeAgentNotFound, ErrCodeUserNotFound:
		return true
	}
	return false
}

// CodeOf extracts the error code, defaulting to INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCandidateNotFound creates a non-retryable missing-candidate error.
func NewCandidateNotFound(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCandidateNotFound,
		Message:   "Candidate not found",
		Details:   fmt.Sprintf("candidate id %q", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVacancyNotFound creates a non-retryable missing-vacancy error.
func NewVacancyNotFound(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVacancyNotFound,
		Message:   "Vacancy not found",
		Details:   fmt.Sprintf("vacancy id %q", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAgentNotFound creates a non-retryable missing-agent error.
func NewAgentNotFound(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAgentNotFound,
		Message:   "AI agent not found",
		Details:   fmt.Sprintf("agent id %q", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserNotFound creates a non-retryable missing-user error.
func NewUserNotFound(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUserNotFound,
		Message:   "User not found",
		Details:   fmt.Sprintf("user id %q", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailed creates a non-retryable validation error.
func NewValidationFailed(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStatus creates a non-retryable bad-status error.
func NewInvalidStatus(status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStatus,
		Message:   "Unknown pipeline status",
		Details:   fmt.Sprintf("status %q", status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidChannel creates a non-retryable bad-channel error.
func NewInvalidChannel(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidChannel,
		Message:   "Unknown notification channel",
		Details:   fmt.Sprintf("channel %q", channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingCVText signals a scoring request for a candidate without CV text.
func NewMissingCVText(candidateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCVText,
		Message:   "Candidate has no CV text to score",
		Details:   fmt.Sprintf("candidate id %q", candidateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateEmail creates a non-retryable duplicate-user error.
func NewDuplicateEmail(email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateEmail,
		Message:   "A user with this email already exists",
		Details:   email,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCVExtractionFailed creates a non-retryable extraction error.
func NewCVExtractionFailed(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCVExtractionFailed,
		Message:   "Could not extract text from the uploaded document",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailed creates a retryable database error.
func NewQueryExecutionFailed(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailed creates a retryable search error.
func NewSearchQueryFailed(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Candidate search failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidCredentials creates a non-retryable login failure.
func NewInvalidCredentials() *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidCredentials,
		Message:   "Invalid email or password",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionInvalid creates a non-retryable session error.
func NewSessionInvalid() *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionInvalid,
		Message:   "Missing or expired session",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewForbidden creates a non-retryable authorization error.
func NewForbidden(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeForbidden,
		Message:   "Insufficient role for this operation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternal wraps an unexpected error.
func NewInternal(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
