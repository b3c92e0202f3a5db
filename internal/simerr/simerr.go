// Package simerr centralizes the kernel's error taxonomy so every subsystem
// raises errors a caller can match with errors.Is / errors.As instead of
// parsing messages.
package simerr

import "fmt"

// Kind classifies a kernel error per the error handling design.
type Kind string

const (
	SchemaViolation       Kind = "SchemaViolation"
	UnknownKind           Kind = "UnknownKind"
	UnknownEntity         Kind = "UnknownEntity"
	UnknownJob            Kind = "UnknownJob"
	InvariantViolation    Kind = "InvariantViolation"
	ValidationRejected    Kind = "ValidationRejected"
	PluginError           Kind = "PluginError"
	InsufficientResources Kind = "InsufficientResources"
	NotFound              Kind = "NotFound"
	AlreadyReserving      Kind = "AlreadyReserving"
)

// Error is the concrete error type carried across every facade boundary.
type Error struct {
	Kind    Kind
	Message string
	Path    string // JSON pointer, only meaningful for SchemaViolation
	Err     error  // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, simerr.SchemaViolation) style matching against a
// bare Kind value wrapped as an error via New.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func WithPath(kind Kind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Sentinel values usable with errors.Is to test only the Kind.
var (
	ErrSchemaViolation       = &Error{Kind: SchemaViolation}
	ErrUnknownKind           = &Error{Kind: UnknownKind}
	ErrUnknownEntity         = &Error{Kind: UnknownEntity}
	ErrUnknownJob            = &Error{Kind: UnknownJob}
	ErrInvariantViolation    = &Error{Kind: InvariantViolation}
	ErrValidationRejected    = &Error{Kind: ValidationRejected}
	ErrPluginError           = &Error{Kind: PluginError}
	ErrInsufficientResources = &Error{Kind: InsufficientResources}
	ErrNotFound              = &Error{Kind: NotFound}
	ErrAlreadyReserving      = &Error{Kind: AlreadyReserving}
)
