package calendar

import (
	"fmt"

	"github.com/klokku/klokku-calendar/pkg/temporal"
)

type AttendeeDTO struct {
	Email  string         `json:"email"`
	Name   string         `json:"name,omitempty"`
	Status AttendeeStatus `json:"status"`
	Type   AttendeeType   `json:"type"`
}

// EventDTO is the JSON form of Event used by the HTTP API.
type EventDTO struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	URL         string        `json:"url,omitempty"`
	Start       temporal.Wire `json:"start"`
	End         temporal.Wire `json:"end"`
	AllDay      bool          `json:"allDay"`
	Attendees   []AttendeeDTO `json:"attendees,omitempty"`
	Recurrence  []string      `json:"recurrence,omitempty"`
	Status      string        `json:"status,omitempty"`
	Color       Color         `json:"color"`
	ReadOnly    bool          `json:"readOnly"`
	ProviderID  ProviderID    `json:"providerId,omitempty"`
	AccountID   string        `json:"accountId,omitempty"`
	CalendarID  string        `json:"calendarId,omitempty"`
}

func EventToDTO(e Event) EventDTO {
	dto := EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		URL:         e.URL,
		Start:       temporal.ToWire(e.Start),
		End:         temporal.ToWire(e.End),
		AllDay:      e.AllDay,
		Recurrence:  e.Recurrence,
		Status:      e.Status,
		Color:       e.Color.OrDefault(),
		ReadOnly:    e.ReadOnly,
		ProviderID:  e.ProviderID,
		AccountID:   e.AccountID,
		CalendarID:  e.CalendarID,
	}
	for _, a := range e.Attendees {
		dto.Attendees = append(dto.Attendees, AttendeeDTO(a))
	}
	return dto
}

func DTOToEvent(dto EventDTO) (Event, error) {
	start, err := temporal.FromWire(dto.Start)
	if err != nil {
		return Event{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := temporal.FromWire(dto.End)
	if err != nil {
		return Event{}, fmt.Errorf("invalid end: %w", err)
	}
	e := Event{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
		Location:    dto.Location,
		URL:         dto.URL,
		Start:       start,
		End:         end,
		AllDay:      dto.AllDay,
		Recurrence:  dto.Recurrence,
		Status:      dto.Status,
		Color:       dto.Color.OrDefault(),
		ReadOnly:    dto.ReadOnly,
		ProviderID:  dto.ProviderID,
		AccountID:   dto.AccountID,
		CalendarID:  dto.CalendarID,
	}
	for _, a := range dto.Attendees {
		e.Attendees = append(e.Attendees, Attendee(a))
	}
	return e, nil
}
