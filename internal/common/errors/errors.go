// Package errors provides the error taxonomy shared by the EIV pipeline and
// its delivery surfaces (HTTP and Zeebe).
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Validation errors
const (
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	ErrCodeRange        ErrorCode = "RANGE_ERROR"
	ErrCodeInvalidName  ErrorCode = "INVALID_NAME"
	ErrCodeInvalidType  ErrorCode = "INVALID_TYPE"
	ErrCodeMalformed    ErrorCode = "MALFORMED_REQUEST"
)

// Reference errors
const (
	ErrCodeUnknownCategory     ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeReferenceLoadFailed ErrorCode = "REFERENCE_LOAD_FAILED"
)

// Model errors
const (
	ErrCodeModelUnavailable  ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeModelInputInvalid ErrorCode = "MODEL_INPUT_INVALID"
)

// Operational errors
const (
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// Categories returned by GetErrorCategory.
const (
	CategoryValidation    = "VALIDATION"
	CategoryReference     = "REFERENCE"
	CategoryModelArtifact = "MODEL_ARTIFACT"
	CategoryModelInput    = "MODEL_INPUT"
	CategoryPersistence   = "PERSISTENCE"
	CategoryOther         = "OTHER"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

// Error returns the message alone; it is surfaced verbatim in response bodies.
func (e *StandardError) Error() string {
	return e.Message
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// String includes the code for logs.
func (e *StandardError) String() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job error variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewMissingFieldError reports a declared request field absent from the input.
func NewMissingFieldError(field string) *StandardError {
	e := newError(ErrCodeMissingField, fmt.Sprintf("Column '%s' not found in the input.", field), "", nil)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

// NewRangeError reports a numeric field outside its allowed range or not numeric.
func NewRangeError(field string, value interface{}, reason string) *StandardError {
	e := newError(ErrCodeRange, fmt.Sprintf("%s: %s", field, reason), fmt.Sprintf("value: %v", value), nil)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

// NewInvalidNameError reports a name field that is not a name and surname.
func NewInvalidNameError(field string) *StandardError {
	e := newError(ErrCodeInvalidName, fmt.Sprintf("%s: Provide a valid name and lastname", field), "", nil)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

// NewTypeError reports a field carrying the wrong JSON type.
func NewTypeError(field, expected string) *StandardError {
	e := newError(ErrCodeInvalidType, fmt.Sprintf("%s must be %s", field, expected), "", nil)
	e.Metadata = map[string]interface{}{"field": field}
	return e
}

// NewMalformedRequestError reports an inbound payload that is not decodable.
func NewMalformedRequestError(cause error) *StandardError {
	return newError(ErrCodeMalformed, "Invalid JSON format in request body", errDetails(cause), cause)
}

func NewUnknownCategoryError(column string, value string) *StandardError {
	e := newError(ErrCodeUnknownCategory,
		fmt.Sprintf("Feature: %s, not in ALLOWED %s CATEGORIES", value, column),
		fmt.Sprintf("column: %s", column), nil)
	e.Metadata = map[string]interface{}{"column": column, "value": value}
	return e
}

func NewReferenceLoadError(cause error) *StandardError {
	return newError(ErrCodeReferenceLoadFailed, "Reference dataset could not be loaded", errDetails(cause), cause)
}

// NewModelUnavailableError reports an artifact that is missing, unreadable or corrupt.
func NewModelUnavailableError(artifact, message string, cause error) *StandardError {
	e := newError(ErrCodeModelUnavailable, message, errDetails(cause), cause)
	e.Metadata = map[string]interface{}{"artifact": artifact}
	return e
}

func NewModelInputError(reason string) *StandardError {
	return newError(ErrCodeModelInputInvalid, fmt.Sprintf("Model input mismatch: %s", reason), "", nil)
}

func NewPersistenceError(cause error) *StandardError {
	return newError(ErrCodePersistenceFailed, "Prediction result could not be persisted", errDetails(cause), cause)
}

// NewInternalError wraps anything unclassified. The message stays generic.
func NewInternalError(cause error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", errDetails(cause), cause)
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 4. Error Conversion
// ==========================

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN codes are identical to internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		ErrorVariables: map[string]interface{}{
			"errorCategory": GetErrorCategory(stdErr.Code),
			"statusCode":    StatusForCode(stdErr.Code),
			"timestamp":     stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// Normalize returns err as a StandardError, wrapping unknown errors as internal.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the taxonomy family of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeMissingField, ErrCodeRange, ErrCodeInvalidName, ErrCodeInvalidType, ErrCodeMalformed:
		return CategoryValidation
	case ErrCodeUnknownCategory, ErrCodeReferenceLoadFailed:
		return CategoryReference
	case ErrCodeModelUnavailable:
		return CategoryModelArtifact
	case ErrCodeModelInputInvalid:
		return CategoryModelInput
	case ErrCodePersistenceFailed:
		return CategoryPersistence
	default:
		return CategoryOther
	}
}

// StatusForCode maps a code to the boundary status code.
// Model artifact failures stay client errors (400).
func StatusForCode(code ErrorCode) int {
	switch GetErrorCategory(code) {
	case CategoryValidation, CategoryReference, CategoryModelArtifact, CategoryModelInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatus maps any error to the boundary status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return StatusForCode(Normalize(err).Code)
}

// HasCode reports whether err carries a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}
