// Package apperror defines the closed set of failures the services return.
// Handlers translate a Kind into an HTTP status; nothing else is attached.
package apperror

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPolicyViolation
	KindValidation
	KindConflict
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindPolicyViolation:
		return "POLICY_VIOLATION"
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindConflict:
		return "CONFLICT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_ERROR"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrTaskNotFound = &Error{
		Kind:    KindNotFound,
		Message: "Task not found or you do not have permission to access it",
	}
	ErrPolicyViolation = &Error{
		Kind:    KindPolicyViolation,
		Message: "Cannot update priority or dueDate for a task that is marked as DONE. Only title, description and status can be updated.",
	}
	ErrUserNotFound = &Error{
		Kind:    KindNotFound,
		Message: "User not found",
	}
	ErrEmailTaken = &Error{
		Kind:    KindConflict,
		Message: "User with this email already exists",
	}
	ErrInvalidCredentials = &Error{
		Kind:    KindUnauthorized,
		Message: "Invalid email or password",
	}
	ErrInvalidToken = &Error{
		Kind:    KindUnauthorized,
		Message: "Invalid or expired token",
	}
	ErrTokenUserGone = &Error{
		Kind:    KindUnauthorized,
		Message: "User not found. Token may be invalid.",
	}
)

// Validation reports a field value the services refuse to store.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf classifies err; errors from outside this package are KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is matches on kind and message so copies of a sentinel compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Message == e.Message
}
