package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/pkg/temporal"
	"github.com/teambition/rrule-go"
)

// Validate checks the model invariants and returns nil or ValidationErrors.
func Validate(e Event) error {
	var errs ValidationErrors

	if strings.TrimSpace(e.ID) == "" {
		errs = append(errs, ValidationError{Field: "id", Err: ErrMissingID})
	}

	if e.Start == nil || e.End == nil {
		errs = append(errs, ValidationError{Field: "start", Err: ErrMissingTime})
	} else if !temporal.SameKind(e.Start, e.End) {
		errs = append(errs, ValidationError{
			Field: "end",
			Err:   fmt.Errorf("%w: start is %s, end is %s", ErrKindMismatch, e.Start.Kind(), e.End.Kind()),
		})
	} else {
		if isDate := e.Start.Kind() == temporal.KindDate; isDate != e.AllDay {
			errs = append(errs, ValidationError{
				Field: "allDay",
				Err:   fmt.Errorf("%w: allDay=%t with %s values", ErrAllDayMismatch, e.AllDay, e.Start.Kind()),
			})
		}
		order, err := temporal.Compare(e.Start, e.End, referenceZone(e))
		if err != nil {
			errs = append(errs, ValidationError{Field: "start", Err: err})
		} else if order == temporal.After {
			errs = append(errs, ValidationError{
				Field: "end",
				Err:   fmt.Errorf("%w: %s > %s", ErrEndBeforeStart, e.Start, e.End),
			})
		}
	}

	seen := make(map[string]struct{}, len(e.Attendees))
	for i, a := range e.Attendees {
		key := strings.ToLower(strings.TrimSpace(a.Email))
		if _, ok := seen[key]; ok {
			errs = append(errs, ValidationError{
				Field: fmt.Sprintf("attendees[%d]", i),
				Err:   fmt.Errorf("%w: %s", ErrDuplicateAttendee, a.Email),
			})
			continue
		}
		seen[key] = struct{}{}
	}

	for i, line := range e.Recurrence {
		if err := validateRecurrenceLine(line); err != nil {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("recurrence[%d]", i), Err: err})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// referenceZone is the event's own zone: the start's zone for zoned values and UTC
// otherwise.
func referenceZone(e Event) *time.Location {
	if z, ok := e.Start.(temporal.ZonedCivilTime); ok {
		if loc, err := temporal.LoadZone(z.Zone); err == nil {
			return loc
		}
	}
	return time.UTC
}

func validateRecurrenceLine(line string) error {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, line)
	}
	if !strings.EqualFold(name, "RRULE") {
		return nil
	}
	if _, err := rrule.StrToROption(value); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecurrence, err)
	}
	return nil
}
