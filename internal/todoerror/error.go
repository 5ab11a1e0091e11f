package todoerror

import (
	"fmt"

	"github.com/pkg/errors"
)

// A Kind classifies a TodoError.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that are not TodoErrors.
	KindUnknown Kind = iota
	// KindValidation is a missing field or a field exceeding its length bound.
	KindValidation
	// KindStoreUnavailable is any failure to reach the todo collection.
	KindStoreUnavailable
	// KindSessionExpired is an unknown or expired menu token.
	KindSessionExpired
	// KindForbidden is a menu token used by someone else than its requester.
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStoreUnavailable:
		return "store-unavailable"
	case KindSessionExpired:
		return "session-expired"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// A TodoError is an error that can be rendered to the requester.
// Message is safe to show, the wrapped cause is only meant for logs.
type TodoError struct {
	Kind    Kind
	Field   string
	Message string
	cause   error
}

// New returns a new TodoError with the given kind and message.
func New(kind Kind, message string) *TodoError {
	return &TodoError{Kind: kind, Message: message}
}

// Validation returns a validation error for the given field.
func Validation(field, message string) *TodoError {
	return &TodoError{Kind: KindValidation, Field: field, Message: message}
}

// Unavailable wraps err as a store failure.
func Unavailable(err error, message string) *TodoError {
	return &TodoError{Kind: KindStoreUnavailable, Message: message, cause: err}
}

// KindOf returns the kind of the first TodoError found in err's chain.
func KindOf(err error) Kind {
	var te *TodoError
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindUnknown
}

// Is returns true if err carries a TodoError of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Error implements error interface.
func (e *TodoError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.cause)
	}
	return e.Message
}

// Cause returns the underlying error (github.com/pkg/errors).
func (e *TodoError) Cause() error {
	return e.cause
}

// Unwrap returns the underlying error.
func (e *TodoError) Unwrap() error {
	return e.cause
}
