// Package errors defines the error taxonomy shared by every connector.
//
// A connector only ever produces *ConnectorError values for failures it
// detects itself (bad config, malformed provider payloads, rejected
// exchanges). Network and timeout failures coming from the HTTP client are
// returned as-is so the host can apply its own I/O policy.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of connector failure.
type Code string

const (
	CodeGeneral                  Code = "general"
	CodeInvalidConfig            Code = "invalid_config"
	CodeInvalidResponse          Code = "invalid_response"
	CodeSocialAuthCodeInvalid    Code = "social_auth_code_invalid"
	CodeSocialAccessTokenInvalid Code = "social_access_token_invalid"
	CodeNotImplemented           Code = "not_implemented"
)

// ConnectorError is the standard connector error.
type ConnectorError struct {
	Code Code
	// Data is diagnostic payload: a validation detail, a response body,
	// the rejected callback payload, or a {"message": ...} map.
	Data any
	// Err is the underlying cause, if any. Never rendered to clients.
	Err error
}

// Error implements the error interface.
func (e *ConnectorError) Error() string {
	msg := fmt.Sprintf("connector error [%s]", e.Code)
	if d := e.dataString(); d != "" {
		msg += ": " + d
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the cause.
func (e *ConnectorError) Unwrap() error {
	return e.Err
}

// Is matches any *ConnectorError carrying the same code, so callers can
// write errors.Is(err, ErrInvalidResponse).
func (e *ConnectorError) Is(target error) bool {
	var t *ConnectorError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithData returns a copy carrying the given diagnostic payload.
func (e *ConnectorError) WithData(data any) *ConnectorError {
	cp := *e
	cp.Data = data
	return &cp
}

// WithCause returns a copy carrying the given cause.
func (e *ConnectorError) WithCause(err error) *ConnectorError {
	cp := *e
	cp.Err = err
	return &cp
}

// Message builds the {"message": ...} payload used for human readable details.
func Message(msg string) map[string]string {
	return map[string]string{"message": msg}
}

// CodeOf returns the code of the first ConnectorError in err's chain.
func CodeOf(err error) (Code, bool) {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}

func (e *ConnectorError) dataString() string {
	switch d := e.Data.(type) {
	case nil:
		return ""
	case string:
		return d
	case error:
		return d.Error()
	case fmt.Stringer:
		return d.String()
	case map[string]string:
		if m, ok := d["message"]; ok {
			return m
		}
	}
	return fmt.Sprintf("%v", e.Data)
}

// Predefined errors. Use WithData/WithCause to attach details; both return
// copies so these values are never mutated.
var (
	ErrGeneral                  = &ConnectorError{Code: CodeGeneral}
	ErrInvalidConfig            = &ConnectorError{Code: CodeInvalidConfig}
	ErrInvalidResponse          = &ConnectorError{Code: CodeInvalidResponse}
	ErrSocialAuthCodeInvalid    = &ConnectorError{Code: CodeSocialAuthCodeInvalid}
	ErrSocialAccessTokenInvalid = &ConnectorError{Code: CodeSocialAccessTokenInvalid}
	ErrNotImplemented           = &ConnectorError{Code: CodeNotImplemented}
)
