package submission

import (
	"errors"
	"fmt"
)

// Kind classifies a report creation failure.
type Kind int

const (
	KindUnspecified Kind = iota
	KindValidation
	KindUnauthorized
	KindInsufficientRights
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindInsufficientRights:
		return "insufficient_rights"
	case KindNotFound:
		return "not_found"
	default:
		return "unspecified"
	}
}

// Error is a classified report creation failure. Message is the text the
// report API returned and may be shown to the user for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain. Anything else,
// timeouts included, is unspecified.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnspecified
}
