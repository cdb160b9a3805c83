package schedule

import (
	"errors"
	"fmt"

	"github.com/pawcal/pawcal/internal/backend"
	"github.com/pawcal/pawcal/internal/reminder"
)

// Kind classifies why a schedule operation failed.
type Kind int

const (
	KindInvalidSchedule Kind = iota + 1
	KindIncompleteForm
	KindPastSchedule
	KindDuplicateSchedule
	KindTransportFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSchedule:
		return "InvalidSchedule"
	case KindIncompleteForm:
		return "IncompleteForm"
	case KindPastSchedule:
		return "PastSchedule"
	case KindDuplicateSchedule:
		return "DuplicateSchedule"
	case KindTransportFailure:
		return "TransportFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a failed create, update or delete. Message is ready to show.
type Error struct {
	Kind     Kind
	Message  string
	Conflict *reminder.Reminder // set for KindDuplicateSchedule
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

var (
	ErrInvalidSchedule   = &Error{Kind: KindInvalidSchedule}
	ErrIncompleteForm    = &Error{Kind: KindIncompleteForm}
	ErrPastSchedule      = &Error{Kind: KindPastSchedule}
	ErrDuplicateSchedule = &Error{Kind: KindDuplicateSchedule}
	ErrTransportFailure  = &Error{Kind: KindTransportFailure}

	// ErrSubmitInProgress rejects a second submit while one is in flight.
	ErrSubmitInProgress = errors.New("a submission is already in progress")
)

const (
	msgInvalidDate = "Please enter a valid date."
	msgInvalidTime = "Please enter a valid time."
	msgIncomplete  = "Please fill in the owner, at least one pet, the reminder type and the message."
	msgPast        = "Reminders cannot be scheduled in the past. Please pick a future date and time."
)

func invalidError(msg string) *Error {
	return &Error{Kind: KindInvalidSchedule, Message: msg}
}

func duplicateError(ownerName string, conflict reminder.Reminder) *Error {
	if ownerName == "" {
		ownerName = conflict.OwnerName
	}
	c := conflict
	return &Error{
		Kind: KindDuplicateSchedule,
		Message: fmt.Sprintf("Duplicate booking: %q already has %q on %s at %s. Please pick another time.",
			ownerName, conflict.Type, conflict.DateKey(), conflict.TimeKey()),
		Conflict: &c,
	}
}

func transportError(err error) *Error {
	return &Error{
		Kind:    KindTransportFailure,
		Message: backend.ErrorMessage(err),
		Err:     err,
	}
}

// asError converts any failure into an *Error, treating unknown errors as
// transport failures.
func asError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return transportError(err)
}
