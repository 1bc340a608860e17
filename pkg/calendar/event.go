package calendar

import (
	"slices"
	"strings"

	"github.com/klokku/klokku-calendar/pkg/temporal"
)

type ProviderID string

const (
	ProviderGoogle    ProviderID = "google"
	ProviderMicrosoft ProviderID = "microsoft"
	ProviderICS       ProviderID = "ics"
)

func (p ProviderID) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderMicrosoft, ProviderICS:
		return true
	}
	return false
}

type AttendeeStatus string

const (
	StatusAccepted    AttendeeStatus = "accepted"
	StatusDeclined    AttendeeStatus = "declined"
	StatusTentative   AttendeeStatus = "tentative"
	StatusNeedsAction AttendeeStatus = "needs-action"
	StatusUnknown     AttendeeStatus = "unknown"
)

type AttendeeType string

const (
	AttendeeRequired AttendeeType = "required"
	AttendeeOptional AttendeeType = "optional"
	AttendeeResource AttendeeType = "resource"
)

type Attendee struct {
	Email  string
	Name   string
	Status AttendeeStatus
	Type   AttendeeType
}

// DraftIDPrefix marks ids generated locally for events that were never persisted.
const DraftIDPrefix = "draft-"

// Event is the provider-agnostic calendar event. Start and End hold the same
// temporal variant; for all-day events both are PlainDate and End is the last
// included day.
type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	URL         string

	Start  temporal.Value
	End    temporal.Value
	AllDay bool

	Attendees []Attendee
	// Recurrence holds raw RFC 5545 lines (RRULE:, EXDATE:, ...). They are carried, not expanded.
	Recurrence []string
	Status     string
	Color      Color
	ReadOnly   bool

	ProviderID ProviderID
	AccountID  string
	CalendarID string
}

func (e Event) IsDraft() bool {
	return strings.HasPrefix(e.ID, DraftIDPrefix)
}

// Clone returns a copy that shares no slices with e.
func (e Event) Clone() Event {
	e.Attendees = slices.Clone(e.Attendees)
	e.Recurrence = slices.Clone(e.Recurrence)
	return e
}
