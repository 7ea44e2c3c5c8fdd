// Package errors is the POS error vocabulary. Services return *Error with a Code; the
// response writer turns the code into an HTTP status and a public envelope.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodePolicy        Code = "POLICY_VIOLATION"
	CodeIdempotency   Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"
)

// Metadata is how a code is presented over HTTP.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

// rejected codes are the caller's fault; retrying the same request will not help.
func rejected(status int, public string, details bool) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: public, DetailsAllowed: details}
}

func failed(status int, public string, details bool) Metadata {
	m := rejected(status, public, details)
	m.Retryable = true
	return m
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:    rejected(http.StatusBadRequest, "validation failed", true),
	CodeUnauthorized:  rejected(http.StatusUnauthorized, "authentication required", false),
	CodeForbidden:     rejected(http.StatusForbidden, "access denied", false),
	CodeNotFound:      rejected(http.StatusNotFound, "resource not found", false),
	CodeConflict:      rejected(http.StatusConflict, "conflict detected", false),
	CodeStateConflict: rejected(http.StatusUnprocessableEntity, "state transition disallowed", true),
	CodePolicy:        rejected(http.StatusBadRequest, "request violates store policy", true),
	CodeIdempotency:   rejected(http.StatusConflict, "idempotency key reused", true),
	CodeRateLimit:     rejected(http.StatusTooManyRequests, "rate limit exceeded", false),
	CodeInternal:      failed(http.StatusInternalServerError, "internal server error", false),
	CodeDependency:    failed(http.StatusServiceUnavailable, "dependency unavailable", true),
}

// MetadataFor treats unknown codes as internal errors.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap keeps err reachable through errors.Is/As. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// Policy reports a store rule the sale broke (age check, stock, redemption) with details
// the register can show, e.g. {"product_id": ..., "available": 2}.
func Policy(message string, details map[string]any) *Error {
	e := New(CodePolicy, message)
	if len(details) > 0 {
		e.details = details
	}
	return e
}

func Internal(err error, message string) *Error {
	return Wrap(CodeInternal, err, message)
}

// The accessors are nil-safe so handlers can call them on an untyped lookup.

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// Error includes the cause only for internal errors; client-facing codes keep their
// message stable for log grouping.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil && e.code == CodeInternal:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
