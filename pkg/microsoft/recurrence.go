package microsoft

import (
	"fmt"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	"github.com/teambition/rrule-go"
)

var weekdays = map[string]rrule.Weekday{
	"monday":    rrule.MO,
	"tuesday":   rrule.TU,
	"wednesday": rrule.WE,
	"thursday":  rrule.TH,
	"friday":    rrule.FR,
	"saturday":  rrule.SA,
	"sunday":    rrule.SU,
}

// weekdayNames is indexed by rrule.Weekday.Day().
var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var indexes = map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4, "last": -1}

var indexNames = map[int]string{1: "first", 2: "second", 3: "third", 4: "fourth", -1: "last"}

// recurrenceToRRule turns a patterned recurrence into one RRULE line.
func recurrenceToRRule(r *graphRecurrence) (string, error) {
	p := r.Pattern
	opt := rrule.ROption{Interval: max(p.Interval, 1)}

	if p.FirstDayOfWeek != "" {
		wkst, ok := weekdays[strings.ToLower(p.FirstDayOfWeek)]
		if !ok {
			return "", fmt.Errorf("unknown firstDayOfWeek %q", p.FirstDayOfWeek)
		}
		opt.Wkst = wkst
	}

	days, err := patternDays(p.DaysOfWeek)
	if err != nil {
		return "", err
	}

	switch strings.ToLower(p.Type) {
	case "daily":
		opt.Freq = rrule.DAILY
	case "weekly":
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = days
	case "absolutemonthly":
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{p.DayOfMonth}
	case "relativemonthly":
		opt.Freq = rrule.MONTHLY
		if opt.Byweekday, err = nthDays(days, p.Index); err != nil {
			return "", err
		}
	case "absoluteyearly":
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{p.Month}
		opt.Bymonthday = []int{p.DayOfMonth}
	case "relativeyearly":
		opt.Freq = rrule.YEARLY
		opt.Bymonth = []int{p.Month}
		if opt.Byweekday, err = nthDays(days, p.Index); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown recurrence pattern %q", p.Type)
	}

	switch strings.ToLower(r.Range.Type) {
	case "enddate":
		end, err := temporal.ParsePlainDate(r.Range.EndDate)
		if err != nil {
			return "", fmt.Errorf("invalid range endDate: %w", err)
		}
		opt.Until = time.Date(end.Year, end.Month, end.Day, 23, 59, 59, 0, time.UTC)
	case "numbered":
		opt.Count = r.Range.NumberOfOccurrences
	case "noend", "":
	default:
		return "", fmt.Errorf("unknown recurrence range %q", r.Range.Type)
	}
	return "RRULE:" + opt.RRuleString(), nil
}

func patternDays(names []string) ([]rrule.Weekday, error) {
	days := make([]rrule.Weekday, 0, len(names))
	for _, name := range names {
		day, ok := weekdays[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown day of week %q", name)
		}
		days = append(days, day)
	}
	return days, nil
}

func nthDays(days []rrule.Weekday, index string) ([]rrule.Weekday, error) {
	n, ok := indexes[strings.ToLower(index)]
	if index == "" {
		n, ok = 1, true
	}
	if !ok {
		return nil, fmt.Errorf("unknown week index %q", index)
	}
	for i := range days {
		days[i] = days[i].Nth(n)
	}
	return days, nil
}

// rruleToRecurrence is the reverse of recurrenceToRRule. Rules Graph cannot express
// (sub-daily frequencies, BYSETPOS, several month days, mixed week indexes) are
// rejected with calendar.ErrInvalidRecurrence.
func rruleToRecurrence(line string, start temporal.Value) (*graphRecurrence, error) {
	opt, err := rrule.StrToROption(line[len("RRULE:"):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", calendar.ErrInvalidRecurrence, err)
	}
	unsupported := func(what string) (*graphRecurrence, error) {
		return nil, fmt.Errorf("%w: %s has no Graph equivalent", calendar.ErrInvalidRecurrence, what)
	}
	if len(opt.Bysetpos) > 0 || len(opt.Byyearday) > 0 || len(opt.Byweekno) > 0 ||
		len(opt.Byhour) > 0 || len(opt.Byminute) > 0 || len(opt.Bysecond) > 0 || len(opt.Byeaster) > 0 {
		return unsupported("BY rule part")
	}
	if len(opt.Bymonthday) > 1 || len(opt.Bymonth) > 1 {
		return unsupported("multiple BYMONTH/BYMONTHDAY values")
	}

	r := &graphRecurrence{
		Pattern: recurrencePattern{
			Interval:       max(opt.Interval, 1),
			FirstDayOfWeek: weekdayNames[opt.Wkst.Day()],
		},
		Range: recurrenceRange{Type: "noEnd", StartDate: startDate(start).String()},
	}
	p := &r.Pattern

	var index int
	for i, wd := range opt.Byweekday {
		if i > 0 && wd.N() != index {
			return unsupported("mixed week indexes")
		}
		index = wd.N()
		p.DaysOfWeek = append(p.DaysOfWeek, weekdayNames[wd.Day()])
	}
	if len(opt.Bymonthday) == 1 {
		p.DayOfMonth = opt.Bymonthday[0]
	}
	if len(opt.Bymonth) == 1 {
		p.Month = opt.Bymonth[0]
	}

	switch opt.Freq {
	case rrule.DAILY:
		if len(p.DaysOfWeek) > 0 {
			return unsupported("daily BYDAY")
		}
		p.Type = "daily"
	case rrule.WEEKLY:
		if index != 0 {
			return unsupported("weekly BYDAY with index")
		}
		if len(p.DaysOfWeek) == 0 {
			p.DaysOfWeek = []string{weekdayNames[weekdayIndex(startDate(start))]}
		}
		p.Type = "weekly"
	case rrule.MONTHLY, rrule.YEARLY:
		kind := "Monthly"
		if opt.Freq == rrule.YEARLY {
			kind = "Yearly"
			if p.Month == 0 {
				p.Month = int(startDate(start).Month)
			}
		}
		if len(p.DaysOfWeek) > 0 {
			name, ok := indexNames[index]
			if !ok {
				return unsupported(fmt.Sprintf("BYDAY week index %d", index))
			}
			p.Type = "relative" + kind
			p.Index = name
		} else {
			if p.DayOfMonth == 0 {
				p.DayOfMonth = startDate(start).Day
			}
			p.Type = "absolute" + kind
		}
	default:
		return unsupported("FREQ=" + opt.Freq.String())
	}

	switch {
	case opt.Count > 0:
		r.Range.Type = "numbered"
		r.Range.NumberOfOccurrences = opt.Count
	case !opt.Until.IsZero():
		r.Range.Type = "endDate"
		r.Range.EndDate = temporal.PlainDateOf(opt.Until.UTC()).String()
	}
	return r, nil
}

func startDate(v temporal.Value) temporal.PlainDate {
	switch tv := v.(type) {
	case temporal.PlainDate:
		return tv
	case temporal.ZonedCivilTime:
		return tv.Date
	case temporal.Instant:
		return temporal.PlainDateOf(tv.Time())
	}
	return temporal.PlainDate{}
}

// weekdayIndex returns the Monday-based index of d.
func weekdayIndex(d temporal.PlainDate) int {
	return (int(d.In(time.UTC).Weekday()) + 6) % 7
}
