package ics

import (
	"fmt"
	"strings"

	ical "github.com/arran4/golang-ical"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	log "github.com/sirupsen/logrus"
)

const defaultProductID = "-//Klokku//Klokku Calendar//EN"

type DocumentType string

const (
	DocumentCalendar DocumentType = "calendar"
	DocumentEvent    DocumentType = "event"
)

// DetectType tells a full VCALENDAR from a bare VEVENT. Text carrying neither marker
// is treated as a calendar.
func DetectType(text string) DocumentType {
	upper := strings.ToUpper(text)
	if strings.Contains(upper, "BEGIN:VCALENDAR") {
		return DocumentCalendar
	}
	if strings.Contains(upper, "BEGIN:VEVENT") {
		return DocumentEvent
	}
	return DocumentCalendar
}

type Options struct {
	AccountID  string
	CalendarID string
	// DefaultZone binds floating DATE-TIME values (no TZID, no Z).
	DefaultZone string
	ProductID   string
}

type Codec struct {
	opts Options
}

func NewCodec(opts Options) *Codec {
	if opts.DefaultZone == "" {
		opts.DefaultZone = "UTC"
	}
	if opts.ProductID == "" {
		opts.ProductID = defaultProductID
	}
	return &Codec{opts: opts}
}

func (c *Codec) Provider() calendar.ProviderID {
	return calendar.ProviderICS
}

// Decode returns the first VEVENT of payload, which may be a calendar or a bare event.
func (c *Codec) Decode(payload []byte) (calendar.Event, error) {
	cal, err := c.parse(payload)
	if err != nil {
		return calendar.Event{}, err
	}
	events := cal.Events()
	if len(events) == 0 {
		return calendar.Event{}, calendar.NewDecodeError(calendar.ProviderICS, "", "no VEVENT found", nil)
	}
	return c.decodeEvent(events[0])
}

// DecodeBatch decodes every VEVENT. Events that fail are dropped and reported.
func (c *Codec) DecodeBatch(payload []byte) ([]calendar.Event, []error) {
	cal, err := c.parse(payload)
	if err != nil {
		return nil, []error{err}
	}
	components := cal.Events()
	events := make([]calendar.Event, 0, len(components))
	var failures []error
	for _, component := range components {
		event, err := c.decodeEvent(component)
		if err != nil {
			log.Warnf("skipping VEVENT: %v", err)
			failures = append(failures, err)
			continue
		}
		events = append(events, event)
	}
	log.Debugf("ics decode completed: %d events, %d failures", len(events), len(failures))
	return events, failures
}

func (c *Codec) Encode(event calendar.Event) ([]byte, error) {
	return c.EncodeBatch([]calendar.Event{event})
}

func (c *Codec) EncodeBatch(events []calendar.Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetProductId(c.opts.ProductID)
	for _, event := range events {
		if err := c.encodeEvent(cal, event); err != nil {
			return nil, err
		}
	}
	return []byte(cal.Serialize()), nil
}

func (c *Codec) parse(payload []byte) (*ical.Calendar, error) {
	text := string(payload)
	if strings.TrimSpace(text) == "" {
		return nil, calendar.NewDecodeError(calendar.ProviderICS, "", "empty payload", nil)
	}
	if DetectType(text) == DocumentEvent {
		text = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + c.opts.ProductID + "\r\n" + strings.TrimSpace(text) + "\r\nEND:VCALENDAR\r\n"
	}
	cal, err := ical.ParseCalendar(strings.NewReader(text))
	if err != nil {
		return nil, calendar.NewDecodeError(calendar.ProviderICS, "", "malformed iCalendar text", err)
	}
	return cal, nil
}

func (c *Codec) decodeEvent(ve *ical.VEvent) (calendar.Event, error) {
	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || strings.TrimSpace(uidProp.Value) == "" {
		return calendar.Event{}, calendar.NewDecodeError(calendar.ProviderICS, "", "missing UID", nil)
	}
	uid := strings.TrimSpace(uidProp.Value)
	fail := func(reason string, err error) (calendar.Event, error) {
		return calendar.Event{}, calendar.NewDecodeError(calendar.ProviderICS, uid, reason, err)
	}

	event := calendar.Event{
		ID:         uid,
		Color:      calendar.DefaultColor,
		ProviderID: calendar.ProviderICS,
		AccountID:  c.opts.AccountID,
		CalendarID: c.opts.CalendarID,
	}
	event.Title = rawProperty(ve, ical.ComponentPropertySummary)
	event.Description = rawProperty(ve, ical.ComponentPropertyDescription)
	event.Location = rawProperty(ve, ical.ComponentPropertyLocation)
	event.URL = rawProperty(ve, propertyURL)
	event.Status = strings.ToLower(rawProperty(ve, ical.ComponentPropertyStatus))
	if p := ve.GetProperty(propertyColor); p != nil {
		event.Color = color(p.Value)
	}

	startProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return fail("missing DTSTART", nil)
	}
	start, err := parseValue(startProp, c.opts.DefaultZone)
	if err != nil {
		return fail("invalid DTSTART", err)
	}
	end, err := c.decodeEnd(ve, start)
	if err != nil {
		return fail("invalid DTEND", err)
	}
	event.Start, event.End = start, end
	if startDate, ok := start.(temporal.PlainDate); ok {
		event.AllDay = true
		if endDate, ok := end.(temporal.PlainDate); ok {
			event.End = calendar.NormalizeAllDayEnd(startDate, endDate)
		}
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		event.Attendees = append(event.Attendees, decodeAttendee(p))
	}

	for _, name := range []ical.ComponentProperty{ical.ComponentPropertyRrule, propertyRDate, propertyExDate} {
		for _, p := range ve.GetProperties(name) {
			event.Recurrence = append(event.Recurrence, recurrenceLine(string(name), p))
		}
	}

	if err := calendar.Validate(event); err != nil {
		return fail("invalid event", err)
	}
	return event, nil
}

// decodeEnd reads DTEND, falling back to DTSTART+DURATION and then to the start
// itself. The returned all-day end is still exclusive.
func (c *Codec) decodeEnd(ve *ical.VEvent, start temporal.Value) (temporal.Value, error) {
	if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
		return parseValue(p, c.opts.DefaultZone)
	}
	if p := ve.GetProperty(propertyDur); p != nil {
		d, err := parseDuration(p.Value)
		if err != nil {
			return nil, err
		}
		return temporal.Add(start, d)
	}
	if date, ok := start.(temporal.PlainDate); ok {
		return date.AddDays(1), nil
	}
	return start, nil
}

func decodeAttendee(p *ical.IANAProperty) calendar.Attendee {
	email := strings.TrimSpace(p.Value)
	if len(email) >= len(mailtoPrefix) && strings.EqualFold(email[:len(mailtoPrefix)], mailtoPrefix) {
		email = email[len(mailtoPrefix):]
	}
	return calendar.Attendee{
		Email:  email,
		Name:   param(p, paramCN),
		Status: attendeeStatus(param(p, paramPartStat)),
		Type:   attendeeType(param(p, paramRole), param(p, paramCUType)),
	}
}

func (c *Codec) encodeEvent(cal *ical.Calendar, event calendar.Event) error {
	if err := calendar.Validate(event); err != nil {
		return fmt.Errorf("cannot encode event %q: %w", event.ID, err)
	}
	ve := cal.AddEvent(event.ID)

	setText(ve, ical.ComponentPropertySummary, event.Title)
	setText(ve, ical.ComponentPropertyDescription, event.Description)
	setText(ve, ical.ComponentPropertyLocation, event.Location)
	if event.URL != "" {
		ve.SetProperty(propertyURL, event.URL)
	}
	if event.Status != "" {
		ve.SetProperty(ical.ComponentPropertyStatus, strings.ToUpper(event.Status))
	}
	if col := event.Color.OrDefault(); col != calendar.DefaultColor {
		ve.SetProperty(propertyColor, string(col))
	}

	end := event.End
	if lastDay, ok := end.(temporal.PlainDate); ok {
		end = calendar.ExclusiveAllDayEnd(lastDay)
	}
	if err := setValue(ve, ical.ComponentPropertyDtStart, event.Start); err != nil {
		return err
	}
	if err := setValue(ve, ical.ComponentPropertyDtEnd, end); err != nil {
		return err
	}

	for _, a := range event.Attendees {
		ve.AddProperty(ical.ComponentPropertyAttendee, mailtoPrefix+a.Email, attendeeParams(a)...)
	}

	for _, line := range event.Recurrence {
		name, value, params, err := splitRecurrenceLine(line)
		if err != nil {
			return err
		}
		ve.AddProperty(name, value, params...)
	}
	return nil
}

func attendeeParams(a calendar.Attendee) []ical.PropertyParameter {
	var params []ical.PropertyParameter
	if a.Name != "" {
		params = append(params, &ical.KeyValues{Key: paramCN, Value: []string{a.Name}})
	}
	if partStat, ok := statusToPartStat[a.Status]; ok {
		params = append(params, &ical.KeyValues{Key: paramPartStat, Value: []string{partStat}})
	}
	role, ok := typeToRole[a.Type]
	if !ok {
		role = typeToRole[calendar.AttendeeRequired]
	}
	params = append(params, &ical.KeyValues{Key: paramRole, Value: []string{role}})
	if a.Type == calendar.AttendeeResource {
		params = append(params, &ical.KeyValues{Key: paramCUType, Value: []string{"RESOURCE"}})
	}
	return params
}

func setValue(ve *ical.VEvent, property ical.ComponentProperty, v temporal.Value) error {
	value, params, err := formatValue(v)
	if err != nil {
		return err
	}
	ve.SetProperty(property, value, params...)
	return nil
}

func setText(ve *ical.VEvent, property ical.ComponentProperty, value string) {
	if value != "" {
		ve.SetProperty(property, value)
	}
}

func rawProperty(ve *ical.VEvent, property ical.ComponentProperty) string {
	if p := ve.GetProperty(property); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}
