package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation         ErrKind = "validation"          // 400
	KindConflict           ErrKind = "conflict"            // 409
	KindInvalidCredentials ErrKind = "invalid_credentials" // 400
	KindUnauthorized       ErrKind = "unauthorized"        // 401
	KindInternal           ErrKind = "internal"            // 500
)

// FieldViolation describes one failed input rule.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code (do not change casually)
// - Message: safe summary for clients (avoid leaking sensitive details)
// - Meta: optional details (field, reason, etc.)
// - Violations: per-field validation failures
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind       ErrKind
	Code       string
	Message    string
	Meta       map[string]string
	Violations []FieldViolation
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether err is a domain error carrying code.
func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// KindOf returns the kind of a domain error, or KindInternal for anything else.
func KindOf(err error) ErrKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrValidation(violations []FieldViolation) *Error {
	err := New(KindValidation, "validation_failed", "validation failed")
	err.Violations = violations
	return err
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

func ErrWeakPassword(reason string) *Error {
	return WithMeta(New(KindValidation, "weak_password", "password does not meet requirements"), map[string]string{
		"reason": reason,
	})
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "email already registered")
}

// ----------------------
// Invalid credentials (400)
// ----------------------

// IMPORTANT: login failures share this error so that a missing account, a
// wrong password and an unverified account are indistinguishable.
func ErrInvalidCredentials() *Error {
	return New(KindInvalidCredentials, "invalid_credentials", "invalid credentials")
}

// ErrInvalidToken is returned for unknown or already consumed verification tokens.
func ErrInvalidToken() *Error {
	return New(KindInvalidCredentials, "invalid_token", "invalid credentials")
}

// ----------------------
// Unauthorized (401)
// ----------------------

func ErrTokenMissing() *Error {
	return New(KindUnauthorized, "token_missing", "no session token provided")
}

func ErrTokenInvalid() *Error {
	return New(KindUnauthorized, "token_invalid", "invalid session token")
}

func ErrTokenExpired() *Error {
	return New(KindUnauthorized, "token_expired", "session token is expired")
}

// ----------------------
// Not found (store-level only, never sent to clients as-is)
// ----------------------

// ErrAccountNotFound is returned by stores; the service maps it to a
// caller-visible kind depending on the flow.
func ErrAccountNotFound() *Error {
	return New(KindInternal, "account_not_found", "account not found")
}

// ----------------------
// Internal (500)
// ----------------------

func ErrStoreUnavailable(cause error) *Error {
	return Wrap(KindInternal, "store_unavailable", "internal error", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "internal error", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "internal error", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "internal error", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
