package google

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
)

const (
	eventsKind          = "calendar#events"
	localDateTimeLayout = "2006-01-02T15:04:05.999999999"
)

// Codec converts Google Calendar v3 event resources. Decoded events are stamped with
// the account and calendar they were read from.
type Codec struct {
	accountID  string
	calendarID string
}

func NewCodec(accountID, calendarID string) *Codec {
	return &Codec{accountID: accountID, calendarID: calendarID}
}

func (c *Codec) Provider() calendar.ProviderID {
	return calendar.ProviderGoogle
}

func (c *Codec) Decode(payload []byte) (calendar.Event, error) {
	var item gcal.Event
	if err := json.Unmarshal(payload, &item); err != nil {
		return calendar.Event{}, calendar.NewDecodeError(calendar.ProviderGoogle, "", "malformed event JSON", err)
	}
	return c.googleEventToEvent(&item)
}

// DecodeBatch accepts an events list resource ({"items": [...]}) or a bare array.
// Cancelled instances without times, as returned by incremental sync, are skipped.
func (c *Codec) DecodeBatch(payload []byte) ([]calendar.Event, []error) {
	items, err := unmarshalItems(payload)
	if err != nil {
		return nil, []error{calendar.NewDecodeError(calendar.ProviderGoogle, "", "malformed events JSON", err)}
	}
	events := make([]calendar.Event, 0, len(items))
	var failures []error
	for _, item := range items {
		if item == nil {
			continue
		}
		if item.Status == "cancelled" && item.Start == nil {
			log.Debugf("skipping cancelled google event %s", item.Id)
			continue
		}
		event, err := c.googleEventToEvent(item)
		if err != nil {
			log.Warnf("skipping google event: %v", err)
			failures = append(failures, err)
			continue
		}
		events = append(events, event)
	}
	return events, failures
}

func unmarshalItems(payload []byte) ([]*gcal.Event, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []*gcal.Event
		err := json.Unmarshal(trimmed, &items)
		return items, err
	}
	var list gcal.Events
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Codec) Encode(event calendar.Event) ([]byte, error) {
	item, err := eventToGoogleEvent(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(item)
}

func (c *Codec) EncodeBatch(events []calendar.Event) ([]byte, error) {
	list := gcal.Events{Kind: eventsKind, Items: make([]*gcal.Event, 0, len(events))}
	for _, event := range events {
		item, err := eventToGoogleEvent(event)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	return json.Marshal(&list)
}

func (c *Codec) googleEventToEvent(item *gcal.Event) (calendar.Event, error) {
	if strings.TrimSpace(item.Id) == "" {
		return calendar.Event{}, calendar.NewDecodeError(calendar.ProviderGoogle, "", "missing id", nil)
	}
	fail := func(reason string, err error) (calendar.Event, error) {
		return calendar.Event{}, calendar.NewDecodeError(calendar.ProviderGoogle, item.Id, reason, err)
	}
	if item.Start == nil {
		return fail("missing start", nil)
	}
	start, err := decodeDateTime(item.Start)
	if err != nil {
		return fail("invalid start", err)
	}
	end := start
	if item.End != nil {
		if end, err = decodeDateTime(item.End); err != nil {
			return fail("invalid end", err)
		}
	} else if date, ok := start.(temporal.PlainDate); ok {
		end = date.AddDays(1)
	}

	event := calendar.Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		URL:         item.HtmlLink,
		Start:       start,
		End:         end,
		Recurrence:  item.Recurrence,
		Status:      strings.ToLower(item.Status),
		Color:       colorFromID(item.ColorId),
		ReadOnly:    item.Locked,
		ProviderID:  calendar.ProviderGoogle,
		AccountID:   c.accountID,
		CalendarID:  c.calendarID,
	}
	if startDate, ok := start.(temporal.PlainDate); ok {
		event.AllDay = true
		if endDate, ok := end.(temporal.PlainDate); ok {
			event.End = calendar.NormalizeAllDayEnd(startDate, endDate)
		}
	}
	for _, a := range item.Attendees {
		if a == nil {
			continue
		}
		attendeeType := calendar.AttendeeRequired
		switch {
		case a.Resource:
			attendeeType = calendar.AttendeeResource
		case a.Optional:
			attendeeType = calendar.AttendeeOptional
		}
		event.Attendees = append(event.Attendees, calendar.Attendee{
			Email:  a.Email,
			Name:   a.DisplayName,
			Status: attendeeStatus(a.ResponseStatus),
			Type:   attendeeType,
		})
	}

	if err := calendar.Validate(event); err != nil {
		return fail("invalid event", err)
	}
	return event, nil
}

// decodeDateTime reads an EventDateTime: date -> PlainDate, dateTime with timeZone ->
// ZonedCivilTime in that zone (the offset may then be omitted), bare dateTime -> Instant.
func decodeDateTime(dt *gcal.EventDateTime) (temporal.Value, error) {
	if dt.Date != "" {
		return temporal.ParsePlainDate(dt.Date)
	}
	if dt.DateTime == "" {
		return nil, fmt.Errorf("neither date nor dateTime is set")
	}
	t, err := time.Parse(time.RFC3339, dt.DateTime)
	if err != nil && dt.TimeZone == "" {
		return nil, err
	}
	if dt.TimeZone == "" {
		return temporal.NewInstant(t), nil
	}
	zone, ok := temporal.NormalizeZoneName(dt.TimeZone)
	if !ok {
		return nil, fmt.Errorf("%w: %q", temporal.ErrUnknownZone, dt.TimeZone)
	}
	if err == nil {
		return temporal.Zoned(t, zone)
	}
	local, localErr := time.Parse(localDateTimeLayout, dt.DateTime)
	if localErr != nil {
		return nil, err
	}
	civil, err := temporal.Civil(temporal.PlainDateOf(local), local.Hour(), local.Minute(), local.Second(), zone)
	if err != nil {
		return nil, err
	}
	civil.Nanosecond = local.Nanosecond()
	return civil, nil
}

func encodeDateTime(v temporal.Value) (*gcal.EventDateTime, error) {
	switch tv := v.(type) {
	case temporal.PlainDate:
		return &gcal.EventDateTime{Date: tv.String()}, nil
	case temporal.Instant:
		return &gcal.EventDateTime{DateTime: tv.Time().Format(time.RFC3339)}, nil
	case temporal.ZonedCivilTime:
		t, err := tv.Time()
		if err != nil {
			return nil, err
		}
		return &gcal.EventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: tv.Zone}, nil
	}
	return nil, fmt.Errorf("%w: cannot encode %T", temporal.ErrInvalidConversion, v)
}

func eventToGoogleEvent(event calendar.Event) (*gcal.Event, error) {
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

	item := &gcal.Event{
		Id:          event.ID,
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		HtmlLink:    event.URL,
		Status:      event.Status,
		Start:       start,
		End:         endDT,
		Recurrence:  event.Recurrence,
		Locked:      event.ReadOnly,
		ColorId:     colorToID[event.Color],
	}
	for _, a := range event.Attendees {
		item.Attendees = append(item.Attendees, &gcal.EventAttendee{
			Email:          a.Email,
			DisplayName:    a.Name,
			ResponseStatus: responseStatus(a.Status),
			Optional:       a.Type == calendar.AttendeeOptional,
			Resource:       a.Type == calendar.AttendeeResource,
		})
	}
	return item, nil
}
