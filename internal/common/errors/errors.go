// Package errors provides the classified error taxonomy shared by the store,
// the enrichment clients and the resolution engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind groups error codes into the categories surfaced to API clients.
type Kind string

const (
	KindConfiguration Kind = "CONFIGURATION_ERROR"
	KindUpstream      Kind = "UPSTREAM_ERROR"
	KindValidation    Kind = "VALIDATION_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
	KindInternal      Kind = "INTERNAL_ERROR"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMissingAPIKey ErrorCode = "MISSING_API_KEY"

	ErrCodeUpstreamStatus      ErrorCode = "UPSTREAM_STATUS"
	ErrCodeUpstreamPayload     ErrorCode = "UPSTREAM_PAYLOAD"
	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"

	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidIdentifier ErrorCode = "INVALID_IDENTIFIER"
	ErrCodeInvalidPhone      ErrorCode = "INVALID_PHONE"
	ErrCodeDuplicatePhone    ErrorCode = "DUPLICATE_PHONE"

	ErrCodeCityNotFound ErrorCode = "CITY_NOT_FOUND"

	ErrCodeStoreFailure ErrorCode = "STORE_FAILURE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// StandardError represents a structured application error. Message is safe to
// show to API clients; Details and Cause are for logs only.
type StandardError struct {
	Kind     Kind
	Code     ErrorCode
	Message  string
	Details  string
	Metadata map[string]interface{}
	Cause    error
}

func (e *StandardError) Error() string {
	return e.Message
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches another *StandardError by code so that sentinel-style
// comparisons work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Extensions is picked up by the GraphQL layer and rendered under the
// "extensions" key of the error.
func (e *StandardError) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code": string(e.Code),
		"kind": string(e.Kind),
	}
	for k, v := range e.Metadata {
		ext[k] = v
	}
	return ext
}

// LogString renders every field, including the ones hidden from clients.
func (e *StandardError) LogString() string {
	s := fmt.Sprintf("StandardError[%s/%s]: %s", e.Kind, e.Code, e.Message)
	if e.Details != "" {
		s += " (" + e.Details + ")"
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

// NewMissingAPIKeyError is returned when an enrichment call is attempted
// without a configured API key.
func NewMissingAPIKeyError(endpoint string) *StandardError {
	return &StandardError{
		Kind:    KindConfiguration,
		Code:    ErrCodeMissingAPIKey,
		Message: "enrichment service is not configured",
		Details: fmt.Sprintf("API key required for %s request", endpoint),
	}
}

func NewUpstreamStatusError(endpoint string, status int) *StandardError {
	return &StandardError{
		Kind:     KindUpstream,
		Code:     ErrCodeUpstreamStatus,
		Message:  fmt.Sprintf("error in %s API request", endpoint),
		Details:  fmt.Sprintf("status: %d", status),
		Metadata: map[string]interface{}{"endpoint": endpoint, "status": status},
	}
}

func NewUpstreamPayloadError(endpoint string, err error) *StandardError {
	return &StandardError{
		Kind:     KindUpstream,
		Code:     ErrCodeUpstreamPayload,
		Message:  fmt.Sprintf("unexpected response from %s API", endpoint),
		Metadata: map[string]interface{}{"endpoint": endpoint},
		Cause:    err,
	}
}

func NewUpstreamUnavailableError(endpoint string, err error) *StandardError {
	return &StandardError{
		Kind:     KindUpstream,
		Code:     ErrCodeUpstreamUnavailable,
		Message:  fmt.Sprintf("%s API is unavailable", endpoint),
		Metadata: map[string]interface{}{"endpoint": endpoint},
		Cause:    err,
	}
}

func NewInvalidInputError(field string) *StandardError {
	return &StandardError{
		Kind:     KindValidation,
		Code:     ErrCodeInvalidInput,
		Message:  fmt.Sprintf("%s must not be empty", field),
		Metadata: map[string]interface{}{"field": field},
	}
}

func NewInvalidIdentifierError(id string) *StandardError {
	return &StandardError{
		Kind:    KindValidation,
		Code:    ErrCodeInvalidIdentifier,
		Message: "invalid restaurant id",
		Details: fmt.Sprintf("id: %q", id),
	}
}

func NewInvalidPhoneError(phone string) *StandardError {
	return &StandardError{
		Kind:    KindValidation,
		Code:    ErrCodeInvalidPhone,
		Message: "phone number format is not valid",
		Details: fmt.Sprintf("phone: %s", phone),
	}
}

func NewDuplicatePhoneError(phone string) *StandardError {
	return &StandardError{
		Kind:    KindValidation,
		Code:    ErrCodeDuplicatePhone,
		Message: "phone already registered",
		Details: fmt.Sprintf("phone: %s", phone),
	}
}

func NewCityNotFoundError(city string) *StandardError {
	return &StandardError{
		Kind:     KindNotFound,
		Code:     ErrCodeCityNotFound,
		Message:  fmt.Sprintf("no coordinates found for city %q", city),
		Metadata: map[string]interface{}{"city": city},
	}
}

func NewStoreFailureError(op string, err error) *StandardError {
	return &StandardError{
		Kind:    KindInternal,
		Code:    ErrCodeStoreFailure,
		Message: "restaurant store is unavailable",
		Details: fmt.Sprintf("op: %s", op),
		Cause:   err,
	}
}

// NewInternalError hides an unclassified error behind a generic message.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Kind:    KindInternal,
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Cause:   err,
	}
}

// As returns the first *StandardError in err's chain.
func As(err error) (*StandardError, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// CodeOf returns the code of the first *StandardError in err's chain, or ""
// if there is none.
func CodeOf(err error) ErrorCode {
	if se, ok := As(err); ok {
		return se.Code
	}
	return ""
}

// KindOf returns KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	if se, ok := As(err); ok {
		return se.Kind
	}
	return KindInternal
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
