package temporal

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidConversion = errors.New("invalid temporal conversion")

// Kind tags the variant held by a Value.
type Kind int

const (
	KindInstant Kind = iota + 1
	KindZoned
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindInstant:
		return "instant"
	case KindZoned:
		return "zoned"
	case KindDate:
		return "date"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is a point or a day in calendar time together with its timezone policy.
// It is a closed set: only Instant, ZonedCivilTime and PlainDate implement it.
type Value interface {
	Kind() Kind
	String() string
	sealed()
}

// Order is the result of comparing two values.
type Order int

const (
	Before Order = -1
	Equal  Order = 0
	After  Order = 1
)

// Instant is an absolute point on the UTC timeline.
type Instant struct {
	t time.Time
}

func NewInstant(t time.Time) Instant {
	return Instant{t: t.UTC()}
}

func (i Instant) Kind() Kind      { return KindInstant }
func (i Instant) sealed()         {}
func (i Instant) Time() time.Time { return i.t }
func (i Instant) IsZero() bool    { return i.t.IsZero() }

func (i Instant) Equal(other Instant) bool {
	return i.t.Equal(other.t)
}

func (i Instant) String() string {
	return i.t.Format(time.RFC3339Nano)
}

func (i Instant) MarshalJSON() ([]byte, error) {
	return i.t.MarshalJSON()
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	var t time.Time
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = NewInstant(t)
	return nil
}

// PlainDate is a calendar date without time of day or zone.
type PlainDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Date returns the normalized PlainDate, so Date(2024, 2, 30) is 2024-03-01.
func Date(year int, month time.Month, day int) PlainDate {
	return PlainDateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// PlainDateOf takes the calendar date of t in t's own location.
func PlainDateOf(t time.Time) PlainDate {
	y, m, d := t.Date()
	return PlainDate{Year: y, Month: m, Day: d}
}

func ParsePlainDate(s string) (PlainDate, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return PlainDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return PlainDateOf(t), nil
}

func (d PlainDate) Kind() Kind { return KindDate }
func (d PlainDate) sealed()    {}

func (d PlainDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d PlainDate) AddDays(n int) PlainDate {
	return Date(d.Year, d.Month, d.Day+n)
}

// In returns midnight of the date in loc.
func (d PlainDate) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d PlainDate) Compare(other PlainDate) Order {
	a, b := d.In(time.UTC), other.In(time.UTC)
	switch {
	case a.Before(b):
		return Before
	case a.After(b):
		return After
	}
	return Equal
}

func (d PlainDate) Before(other PlainDate) bool { return d.Compare(other) == Before }
func (d PlainDate) After(other PlainDate) bool  { return d.Compare(other) == After }

// ZonedCivilTime is a wall-clock date and time bound to an IANA zone.
type ZonedCivilTime struct {
	Date       PlainDate
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
	Zone       string
}

// Zoned returns the wall-clock reading of t in zone.
func Zoned(t time.Time, zone string) (ZonedCivilTime, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return ZonedCivilTime{}, err
	}
	local := t.In(loc)
	return ZonedCivilTime{
		Date:       PlainDateOf(local),
		Hour:       local.Hour(),
		Minute:     local.Minute(),
		Second:     local.Second(),
		Nanosecond: local.Nanosecond(),
		Zone:       zone,
	}, nil
}

// Civil builds a ZonedCivilTime from wall-clock fields, checking only the zone.
func Civil(date PlainDate, hour, minute, second int, zone string) (ZonedCivilTime, error) {
	if _, err := LoadZone(zone); err != nil {
		return ZonedCivilTime{}, err
	}
	return ZonedCivilTime{Date: date, Hour: hour, Minute: minute, Second: second, Zone: zone}, nil
}

func (z ZonedCivilTime) Kind() Kind { return KindZoned }
func (z ZonedCivilTime) sealed()    {}

// Time resolves the wall clock against the zone's offset rules. Wall times inside a
// DST gap or overlap follow time.Date.
func (z ZonedCivilTime) Time() (time.Time, error) {
	loc, err := LoadZone(z.Zone)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(z.Date.Year, z.Date.Month, z.Date.Day, z.Hour, z.Minute, z.Second, z.Nanosecond, loc), nil
}

// CivilString formats the wall clock without the zone, e.g. 2024-03-01T09:00:00.
func (z ZonedCivilTime) CivilString() string {
	t := time.Date(z.Date.Year, z.Date.Month, z.Date.Day, z.Hour, z.Minute, z.Second, z.Nanosecond, time.UTC)
	return t.Format(civilLayout)
}

func (z ZonedCivilTime) String() string {
	return z.CivilString() + "[" + z.Zone + "]"
}

const civilLayout = "2006-01-02T15:04:05.999999999"

// ResolveToInstant maps any value onto the UTC timeline. Instants are returned as is,
// zoned values use their own zone and dates resolve to midnight in referenceZone
// (UTC when nil).
func ResolveToInstant(v Value, referenceZone *time.Location) (Instant, error) {
	if referenceZone == nil {
		referenceZone = time.UTC
	}
	switch tv := v.(type) {
	case Instant:
		return tv, nil
	case ZonedCivilTime:
		t, err := tv.Time()
		if err != nil {
			return Instant{}, err
		}
		return NewInstant(t), nil
	case PlainDate:
		return NewInstant(tv.In(referenceZone)), nil
	case nil:
		return Instant{}, fmt.Errorf("%w: nil value", ErrInvalidConversion)
	}
	return Instant{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidConversion, v)
}

// Compare orders a and b after resolving both to instants.
func Compare(a, b Value, referenceZone *time.Location) (Order, error) {
	ia, err := ResolveToInstant(a, referenceZone)
	if err != nil {
		return Equal, err
	}
	ib, err := ResolveToInstant(b, referenceZone)
	if err != nil {
		return Equal, err
	}
	switch {
	case ia.t.Before(ib.t):
		return Before, nil
	case ia.t.After(ib.t):
		return After, nil
	}
	return Equal, nil
}

// WithZone reinterprets the instant denoted by v as a wall clock in zone.
// A PlainDate has no offset to reinterpret and yields ErrInvalidConversion.
func WithZone(v Value, zone string) (ZonedCivilTime, error) {
	switch tv := v.(type) {
	case Instant:
		return Zoned(tv.t, zone)
	case ZonedCivilTime:
		t, err := tv.Time()
		if err != nil {
			return ZonedCivilTime{}, err
		}
		return Zoned(t, zone)
	case PlainDate:
		return ZonedCivilTime{}, fmt.Errorf("%w: date %s has no time zone", ErrInvalidConversion, tv)
	}
	return ZonedCivilTime{}, fmt.Errorf("%w: unsupported value %T", ErrInvalidConversion, v)
}

// SameKind reports whether a and b hold the same variant.
func SameKind(a, b Value) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind()
}

// Add shifts v by d. Zoned values keep their zone and move along the absolute timeline.
// Dates only move by whole days; any other d is ErrInvalidConversion.
func Add(v Value, d time.Duration) (Value, error) {
	switch tv := v.(type) {
	case Instant:
		return NewInstant(tv.t.Add(d)), nil
	case ZonedCivilTime:
		t, err := tv.Time()
		if err != nil {
			return nil, err
		}
		return Zoned(t.Add(d), tv.Zone)
	case PlainDate:
		if d%(24*time.Hour) != 0 {
			return nil, fmt.Errorf("%w: %s is not a whole number of days", ErrInvalidConversion, d)
		}
		return tv.AddDays(int(d / (24 * time.Hour))), nil
	}
	return nil, fmt.Errorf("%w: unsupported value %T", ErrInvalidConversion, v)
}
