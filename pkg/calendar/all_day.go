package calendar

import (
	"fmt"
	"time"

	"github.com/klokku/klokku-calendar/pkg/temporal"
)

// NormalizeAllDayEnd turns the exclusive end date used on the wire (the day after the
// last included day) into the inclusive last day kept by Event. A wire end equal to
// the start is already inclusive and kept as is.
func NormalizeAllDayEnd(start, exclusiveEnd temporal.PlainDate) temporal.PlainDate {
	if exclusiveEnd.After(start) {
		return exclusiveEnd.AddDays(-1)
	}
	return exclusiveEnd
}

// ExclusiveAllDayEnd is the reverse of NormalizeAllDayEnd, used when encoding.
func ExclusiveAllDayEnd(lastDay temporal.PlainDate) temporal.PlainDate {
	return lastDay.AddDays(1)
}

// DisplayBounds resolves the event into the closed interval a renderer shows in loc.
// All-day events end at the last nanosecond of their last day.
func DisplayBounds(e Event, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if e.AllDay {
		start, ok := e.Start.(temporal.PlainDate)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: all-day start is %T", ErrAllDayMismatch, e.Start)
		}
		end, ok := e.End.(temporal.PlainDate)
		if !ok {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: all-day end is %T", ErrAllDayMismatch, e.End)
		}
		return start.In(loc), endOfDay(end, loc), nil
	}
	start, err := temporal.ResolveToInstant(e.Start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := temporal.ResolveToInstant(e.End, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start.Time().In(loc), end.Time().In(loc), nil
}

func endOfDay(d temporal.PlainDate, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 999999999, loc)
}
