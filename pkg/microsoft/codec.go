package microsoft

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	log "github.com/sirupsen/logrus"
)

// Graph writes seven fractional digits and no offset; the zone travels in timeZone.
const (
	graphLayout      = "2006-01-02T15:04:05.0000000"
	graphParseLayout = "2006-01-02T15:04:05.9999999"
)

const utcZone = "UTC"

type Codec struct {
	accountID  string
	calendarID string
}

func NewCodec(accountID, calendarID string) *Codec {
	return &Codec{accountID: accountID, calendarID: calendarID}
}

func (c *Codec) Provider() calendar.ProviderID {
	return calendar.ProviderMicrosoft
}

func (c *Codec) Decode(payload []byte) (calendar.Event, error) {
	var item graphEvent
	if err := json.Unmarshal(payload, &item); err != nil {
		return calendar.Event{}, calendar.NewDecodeError(calendar.ProviderMicrosoft, "", "malformed event JSON", err)
	}
	return c.decodeEvent(&item)
}

// DecodeBatch accepts a Graph collection ({"value": [...]}) or a bare array.
func (c *Codec) DecodeBatch(payload []byte) ([]calendar.Event, []error) {
	var items []graphEvent
	trimmed := bytes.TrimSpace(payload)
	var err error
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &items)
	} else {
		var list eventList
		err = json.Unmarshal(trimmed, &list)
		items = list.Value
	}
	if err != nil {
		return nil, []error{calendar.NewDecodeError(calendar.ProviderMicrosoft, "", "malformed events JSON", err)}
	}

	events := make([]calendar.Event, 0, len(items))
	var failures []error
	for i := range items {
		event, err := c.decodeEvent(&items[i])
		if err != nil {
			log.Warnf("skipping microsoft event: %v", err)
			failures = append(failures, err)
			continue
		}
		events = append(events, event)
	}
	return events, failures
}

func (c *Codec) Encode(event calendar.Event) ([]byte, error) {
	item, err := encodeEvent(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(item)
}

func (c *Codec) EncodeBatch(events []calendar.Event) ([]byte, error) {
	list := eventList{Value: make([]graphEvent, 0, len(events))}
	for _, event := range events {
		item, err := encodeEvent(event)
		if err != nil {
			return nil, err
		}
		list.Value = append(list.Value, *item)
	}
	return json.Marshal(list)
}

func (c *Codec) decodeEvent(item *graphEvent) (calendar.Event, error) {
	if strings.TrimSpace(item.ID) == "" {
		return calendar.Event{}, calendar.NewDecodeError(calendar.ProviderMicrosoft, "", "missing id", nil)
	}
	fail := func(reason string, err error) (calendar.Event, error) {
		return calendar.Event{}, calendar.NewDecodeError(calendar.ProviderMicrosoft, item.ID, reason, err)
	}
	if item.Start == nil || item.End == nil {
		return fail("missing start or end", nil)
	}
	start, err := decodeDateTime(item.Start, item.IsAllDay)
	if err != nil {
		return fail("invalid start", err)
	}
	end, err := decodeDateTime(item.End, item.IsAllDay)
	if err != nil {
		return fail("invalid end", err)
	}

	event := calendar.Event{
		ID:         item.ID,
		Title:      item.Subject,
		URL:        item.WebLink,
		Start:      start,
		End:        end,
		AllDay:     item.IsAllDay,
		Status:     eventStatus(item),
		Color:      colorFromCategories(item.Categories),
		ReadOnly:   item.IsOrganizer != nil && !*item.IsOrganizer,
		ProviderID: calendar.ProviderMicrosoft,
		AccountID:  c.accountID,
		CalendarID: c.calendarID,
	}
	if item.Body != nil {
		event.Description = item.Body.Content
	}
	if item.Location != nil {
		event.Location = item.Location.DisplayName
	}
	if item.IsAllDay {
		event.End = calendar.NormalizeAllDayEnd(start.(temporal.PlainDate), end.(temporal.PlainDate))
	}
	for _, a := range item.Attendees {
		event.Attendees = append(event.Attendees, calendar.Attendee{
			Email:  a.EmailAddress.Address,
			Name:   a.EmailAddress.Name,
			Status: attendeeStatus(a.Status),
			Type:   attendeeType(a.Type),
		})
	}
	if item.Recurrence != nil {
		line, err := recurrenceToRRule(item.Recurrence)
		if err != nil {
			return fail("invalid recurrence", fmt.Errorf("%w: %v", calendar.ErrInvalidRecurrence, err))
		}
		event.Recurrence = []string{line}
	}

	if err := calendar.Validate(event); err != nil {
		return fail("invalid event", err)
	}
	return event, nil
}

// decodeDateTime maps a Graph dateTimeTimeZone: all-day values keep only the date,
// UTC (or zone-less) values become instants and anything else is bound to its zone,
// translating Windows zone names.
func decodeDateTime(dt *dateTimeZone, allDay bool) (temporal.Value, error) {
	t, err := time.Parse(graphParseLayout, strings.TrimSuffix(dt.DateTime, "Z"))
	if err != nil {
		return nil, err
	}
	if allDay {
		return temporal.PlainDateOf(t), nil
	}
	if dt.TimeZone == "" || strings.EqualFold(dt.TimeZone, utcZone) {
		return temporal.NewInstant(t), nil
	}
	zone, ok := temporal.NormalizeZoneName(dt.TimeZone)
	if !ok {
		return nil, fmt.Errorf("%w: %q", temporal.ErrUnknownZone, dt.TimeZone)
	}
	z, err := temporal.Civil(temporal.PlainDateOf(t), t.Hour(), t.Minute(), t.Second(), zone)
	if err != nil {
		return nil, err
	}
	z.Nanosecond = t.Nanosecond()
	return z, nil
}

func encodeDateTime(v temporal.Value) (*dateTimeZone, error) {
	switch tv := v.(type) {
	case temporal.PlainDate:
		return &dateTimeZone{DateTime: tv.In(time.UTC).Format(graphLayout), TimeZone: utcZone}, nil
	case temporal.Instant:
		return &dateTimeZone{DateTime: tv.Time().Format(graphLayout), TimeZone: utcZone}, nil
	case temporal.ZonedCivilTime:
		civil := time.Date(tv.Date.Year, tv.Date.Month, tv.Date.Day, tv.Hour, tv.Minute, tv.Second, tv.Nanosecond, time.UTC)
		return &dateTimeZone{DateTime: civil.Format(graphLayout), TimeZone: tv.Zone}, nil
	}
	return nil, fmt.Errorf("%w: cannot encode %T", temporal.ErrInvalidConversion, v)
}

func encodeEvent(event calendar.Event) (*graphEvent, error) {
	if err := calendar.Validate(event); err != nil {
		return nil, fmt.Errorf("cannot encode event %q: %w", event.ID, err)
	}
	end := event.End
	if lastDay, ok := end.(temporal.PlainDate); ok {
		end = calendar.ExclusiveAllDayEnd(lastDay)
	}
	start, err := encodeDateTime(event.Start)
	if err != nil {
		return nil, err
	}
	endDT, err := encodeDateTime(end)
	if err != nil {
		return nil, err
	}

	item := &graphEvent{
		ID:          event.ID,
		Subject:     event.Title,
		Start:       start,
		End:         endDT,
		IsAllDay:    event.AllDay,
		IsCancelled: strings.EqualFold(event.Status, "cancelled"),
		WebLink:     event.URL,
	}
	if strings.EqualFold(event.Status, "tentative") {
		item.ShowAs = "tentative"
	}
	if event.ReadOnly {
		organizer := false
		item.IsOrganizer = &organizer
	}
	if event.Description != "" {
		item.Body = &itemBody{ContentType: "text", Content: event.Description}
	}
	if event.Location != "" {
		item.Location = &location{DisplayName: event.Location}
	}
	if category, ok := colorCategories[event.Color]; ok {
		item.Categories = []string{category}
	}
	for _, a := range event.Attendees {
		attendeeType := string(a.Type)
		if attendeeType == "" {
			attendeeType = string(calendar.AttendeeRequired)
		}
		item.Attendees = append(item.Attendees, graphAttendee{
			EmailAddress: emailAddress{Address: a.Email, Name: a.Name},
			Status:       &responseStatus{Response: statusToResponse[a.Status]},
			Type:         attendeeType,
		})
	}
	for _, line := range event.Recurrence {
		if !strings.HasPrefix(strings.ToUpper(line), "RRULE:") {
			log.Warnf("dropping %q from event %s: Graph keeps exceptions as separate instances", line, event.ID)
			continue
		}
		if item.Recurrence != nil {
			return nil, fmt.Errorf("%w: event %s has more than one RRULE", calendar.ErrInvalidRecurrence, event.ID)
		}
		if item.Recurrence, err = rruleToRecurrence(line, event.Start); err != nil {
			return nil, err
		}
	}
	return item, nil
}
