package calendar

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDecode = errors.New("decode error")

	ErrMissingID         = errors.New("event id is required")
	ErrMissingTime       = errors.New("event start and end are required")
	ErrKindMismatch      = errors.New("start and end hold different temporal kinds")
	ErrEndBeforeStart    = errors.New("event ends before it starts")
	ErrAllDayMismatch    = errors.New("all-day flag does not match start/end kind")
	ErrDuplicateAttendee = errors.New("duplicate attendee email")
	ErrInvalidRecurrence = errors.New("invalid recurrence rule")
)

// DecodeError reports a malformed external payload.
type DecodeError struct {
	Provider ProviderID
	UID      string
	Reason   string
	Err      error
}

func NewDecodeError(provider ProviderID, uid, reason string, err error) *DecodeError {
	return &DecodeError{Provider: provider, UID: uid, Reason: reason, Err: err}
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s decode", e.Provider)
	if e.UID != "" {
		fmt.Fprintf(&b, " of %q", e.UID)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDecode}
	}
	return []error{ErrDecode, e.Err}
}

// ValidationError is one violated model invariant.
type ValidationError struct {
	Field string
	Err   error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every violation found in one event.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "invalid event: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, e := range v {
		errs = append(errs, e)
	}
	return errs
}
