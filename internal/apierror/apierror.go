// Package apierror provides standardized error response structures for the API
// and the typed error kinds used across the service layer. All errors returned
// to clients go through this package to ensure consistency and to prevent
// leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	// Step identifies the failing phase of a multi-step operation (set only
	// for partial failures, e.g. "loyalty_refund").
	Step string `json:"step,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}

func (e *ValidationError) Error() string { return e.Detail }

// ── Typed error kinds ─────────────────────────────────────────────────────────
// Every failure of a service operation is attributable to exactly one kind,
// so handlers can map it to a status code and operators can judge whether
// manual intervention is needed.

type Kind string

const (
	KindValidation     Kind = "validation"      // bad input, transition on a terminal order
	KindConflict       Kind = "conflict"        // invariant violation, conditional write lost a race
	KindNotFound       Kind = "not_found"       // referenced order/session/customer absent
	KindPartialFailure Kind = "partial_failure" // primary effect committed, compensating effect did not
	KindUpstream       Kind = "upstream"        // persistence or notification collaborator failed
)

// Error is the typed error returned by the service layer.
type Error struct {
	Kind   Kind
	Detail string
	// Step names the failing sub-step for partial failures and upstream errors.
	Step string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }
func Conflict(detail string) *Error   { return &Error{Kind: KindConflict, Detail: detail} }
func NotFound(detail string) *Error   { return &Error{Kind: KindNotFound, Detail: detail} }

func Upstream(step string, err error) *Error {
	return &Error{Kind: KindUpstream, Detail: "Falha ao comunicar com o armazenamento", Step: step, Err: err}
}

// PartialFailure reports a multi-step sequence whose primary effect committed
// but whose secondary effect did not. It must be surfaced, never swallowed.
func PartialFailure(step, detail string, err error) *Error {
	return &Error{Kind: KindPartialFailure, Detail: detail, Step: step, Err: err}
}

// KindOf extracts the kind of err, or KindUpstream for untyped errors so
// nothing escapes the taxonomy.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// HTTPStatus maps an error to its response status code. Partial failures map
// to 200: the primary action succeeded and the body carries the warning.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindPartialFailure:
		return http.StatusOK
	default:
		return http.StatusBadGateway
	}
}
