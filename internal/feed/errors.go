package feed

import (
	"errors"
	"fmt"
)

// Kind classifies feed errors that are the caller's fault
type Kind int

const (
	// KindBadRequest marks missing or malformed required input.
	KindBadRequest Kind = iota + 1
	// KindUnauthenticated marks an operation that needs a signed-in viewer.
	KindUnauthenticated
	// KindNotFound marks a referenced tag, user or page that does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is returned for rejected feed requests. Detail is safe to show to clients.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a feed Error of the given kind
func IsKind(err error, kind Kind) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == kind
}
