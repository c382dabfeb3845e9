// Package errkind classifies engine failures into the small set of kinds
// callers are expected to branch on.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is the caller-visible category of a failure.
type Kind int

const (
	// Internal covers persistence outages and anything unexpected.
	Internal Kind = iota
	// Validation marks unknown award or criterion keys and malformed content ids.
	Validation
	// NotFound marks content ids absent from the content source.
	NotFound
	// Conflict marks a concurrent write that could not be resolved by retrying.
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Sentinels so callers can use errors.Is without importing Kind.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

// Error carries the operation, kind and underlying cause.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == Validation
	case ErrNotFound:
		return e.Kind == NotFound
	case ErrConflict:
		return e.Kind == Conflict
	case ErrInternal:
		return e.Kind == Internal
	}
	return false
}

// New builds an error of kind with a formatted message.
func New(op string, kind Kind, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WrapKind attaches op and kind to err. A nil err stays nil.
func WrapKind(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap attaches op to err, keeping the kind of an already classified error
// and defaulting to Internal otherwise.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{Op: op, Kind: e.Kind, Err: err}
	}
	return &Error{Op: op, Kind: Internal, Err: err}
}

// KindOf reports the kind of err; unclassified errors are Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
