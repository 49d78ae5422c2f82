// Package apierrors defines the gateway's closed error taxonomy and its
// Mastodon-shaped wire envelope.
package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Kind is a closed set of error categories every core component maps its
// own errors onto at the boundary (spec.md §7: "every error crosses a
// boundary exactly once").
type Kind string

const (
	KindValidation    Kind = "validation_failed"
	KindUnauthorized  Kind = "unauthorized"
	KindForbidden     Kind = "forbidden"
	KindNotFound      Kind = "not_found"
	KindUnprocessable Kind = "unprocessable"
	KindRateLimited   Kind = "rate_limited"
	KindCancelled     Kind = "cancelled"
	KindUpstream      Kind = "upstream"
	KindInternal      Kind = "internal"
)

// Error is the single error type that crosses a boundary into the HTTP
// layer. Field is only meaningful for KindValidation.
type Error struct {
	Cause error
	Kind  Kind
	Field string
	Msg   string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return e.Kind.String() + ": " + e.Field + ": " + e.Msg
	}
	if e.Msg != "" {
		return e.Kind.String() + ": " + e.Msg
	}
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

func (k Kind) String() string { return string(k) }

// Constructors mirror the taxonomy in spec.md §7.

func ValidationFailed(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Msg: resource}
}

func Unprocessable(msg string) error {
	return &Error{Kind: KindUnprocessable, Msg: msg}
}

func RateLimited() error {
	return &Error{Kind: KindRateLimited}
}

func Cancelled() error {
	return &Error{Kind: KindCancelled}
}

func Upstream(cause error) error {
	return &Error{Kind: KindUpstream, Cause: cause}
}

func Internal(cause error) error {
	return &Error{Kind: KindInternal, Cause: cause}
}

// As extracts an *Error from any error, falling through to Internal for
// anything the core didn't tag itself (spec.md §4.8: "all other errors
// fall through to internal_server_error"), and recognizing context
// cancellation/decoding/encoding errors per spec.md §4.8.
func As(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindCancelled, Cause: err}
	}

	var syntaxErr *json.SyntaxError
	var unmarshalErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &unmarshalErr) {
		return &Error{Kind: KindValidation, Cause: err}
	}

	var marshalErr *json.MarshalerError
	if errors.As(err, &marshalErr) {
		return &Error{Kind: KindInternal, Cause: err}
	}

	return &Error{Kind: KindInternal, Cause: err}
}

// HTTPStatus returns the status code for a Kind per spec.md §4.8.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// code returns the Mastodon-shaped "error" field for a Kind.
func (k Kind) code() string {
	switch k {
	case KindValidation:
		return "invalid_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUnprocessable:
		return "unprocessable_entity"
	case KindRateLimited:
		return "rate_limit_exceeded"
	default:
		return "internal_server_error"
	}
}

// Envelope is the Mastodon-compatible JSON error body.
type Envelope struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ToEnvelope converts any error into its HTTP status and wire envelope.
func ToEnvelope(err error) (int, Envelope) {
	apiErr := As(err)
	desc := apiErr.Msg
	if desc == "" && apiErr.Cause != nil {
		desc = apiErr.Cause.Error()
	}
	return apiErr.Kind.HTTPStatus(), Envelope{
		Error:            apiErr.Kind.code(),
		ErrorDescription: desc,
	}
}

// WriteJSON writes err's HTTP status and JSON error envelope to w.
func WriteJSON(w http.ResponseWriter, err error) {
	status, env := ToEnvelope(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
