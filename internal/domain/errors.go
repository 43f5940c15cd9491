package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Run-level errors. Any of these stops a batch before generation starts.
	ErrSchema            ErrorCode = "SCHEMA_ERROR"
	ErrNoEligibleRecords ErrorCode = "NO_ELIGIBLE_RECORDS"
	ErrMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	ErrUnknownProfile    ErrorCode = "UNKNOWN_PROFILE"

	// Item-level errors. These are recorded and the batch continues.
	ErrIneligibleRecord ErrorCode = "INELIGIBLE_RECORD"
	ErrLLMServiceError  ErrorCode = "LLM_SERVICE_ERROR"
	ErrParse            ErrorCode = "PARSE_ERROR"

	// ErrEmptyResult is returned when a batch finished without a single row.
	ErrEmptyResult ErrorCode = "EMPTY_RESULT"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Err     error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any *DomainError with the same code, so callers can write
// errors.Is(err, domain.NewError(domain.ErrSchema, "", nil)) or use HasCode.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext attaches a detail value that is reported alongside the error.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Details: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// HasCode reports whether err is, or wraps, a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Helper functions for common errors
func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewSchemaError(missing []string) *DomainError {
	return NewError(ErrSchema,
		fmt.Sprintf("input is missing required columns: %s", strings.Join(missing, ", ")), nil).
		WithContext("missing_columns", missing)
}

func NewNoEligibleRecordsError(reason string) *DomainError {
	return NewError(ErrNoEligibleRecords, "no eligible competency records: "+reason, nil)
}

func NewMissingCredentialError(provider, key string) *DomainError {
	return NewError(ErrMissingCredential,
		fmt.Sprintf("%s credential is not configured (set %s)", provider, key), nil).
		WithContext("provider", provider)
}

func NewUnknownProfileError(name string) *DomainError {
	return NewError(ErrUnknownProfile, fmt.Sprintf("unknown input profile: %s", name), nil)
}

func NewIneligibleRecordError(name string, count int) *DomainError {
	return NewError(ErrIneligibleRecord,
		fmt.Sprintf("competency %q has %d indicator(s), at least %d required", name, count, MinIndicators), nil)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(ErrLLMServiceError, "Failed to process with LLM service", err)
}

func NewParseError(message string, err error) *DomainError {
	return NewError(ErrParse, message, err)
}

func NewEmptyResultError(attempts int) *DomainError {
	return NewError(ErrEmptyResult,
		fmt.Sprintf("batch finished with no generated SJTs after %d attempt(s)", attempts), nil)
}
