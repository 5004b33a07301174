// Package river defines the core types of the streaming engine: the closed
// item set, resumption tokens, stream definitions, and the interfaces that
// the log backend, runner harness, and resume reader all implement against.
package river

import "fmt"

// ErrorKind classifies an Error for propagation purposes (see §7 of the
// specification).
type ErrorKind string

const (
	ErrorKindUnknown                ErrorKind = "unknown"
	ErrorKindValidation             ErrorKind = "validation"
	ErrorKindProvider               ErrorKind = "provider"
	ErrorKindStreamNotFound         ErrorKind = "stream_not_found"
	ErrorKindInvalidResumptionToken ErrorKind = "invalid_resumption_token"
	ErrorKindRunnerError            ErrorKind = "runner_error"
	ErrorKindNetwork                ErrorKind = "network"
)

// Error is the engine's serializable error value. It implements the error
// interface so it can be returned and wrapped like any Go error, but it also
// round-trips through a stable map form for the wire and the log.
type Error struct {
	Kind    ErrorKind      `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithDetails attaches the open detail map and returns the receiver for
// chaining at the call site.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

func (e *Error) Error() string {
	return fmt.Sprintf("river: %s: %s", e.Kind, e.Message)
}

// ToMap serializes the error to its stable map form.
func (e *Error) ToMap() map[string]any {
	m := map[string]any{
		"kind":    string(e.Kind),
		"message": e.Message,
	}
	if e.Details != nil {
		m["details"] = e.Details
	}
	return m
}

// ErrorFromMap deserializes an Error from its stable map form. Unknown or
// missing kinds decode as ErrorKindUnknown rather than failing, since the
// map form is also used to carry errors surfaced by arbitrary runners.
func ErrorFromMap(m map[string]any) *Error {
	e := &Error{Kind: ErrorKindUnknown}
	if k, ok := m["kind"].(string); ok {
		switch kind := ErrorKind(k); kind {
		case ErrorKindValidation, ErrorKindProvider, ErrorKindStreamNotFound,
			ErrorKindInvalidResumptionToken, ErrorKindRunnerError, ErrorKindNetwork:
			e.Kind = kind
		}
	}
	if msg, ok := m["message"].(string); ok {
		e.Message = msg
	}
	if d, ok := m["details"].(map[string]any); ok {
		e.Details = d
	}
	return e
}

// AsRunnerError wraps an arbitrary runner fault as a runner_error, the way
// the harness does when a runner task returns an unhandled error (§4.3 step
// 7). Fatal errors that are already a *Error pass through unwrapped so their
// original kind survives.
func AsRunnerError(err error) *Error {
	if err == nil {
		return nil
	}
	if re, ok := err.(*Error); ok {
		return re
	}
	return NewError(ErrorKindRunnerError, err.Error())
}
