package google

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

var codec = NewCodec("user@example.com", "primary")

func TestCodec_Decode(t *testing.T) {
	t.Run("should decode all-day event with inclusive end", func(t *testing.T) {
		// given
		payload := `{"id":"g1","summary":"Holiday","start":{"date":"2024-03-01"},"end":{"date":"2024-03-02"}}`

		// when
		event, err := codec.Decode([]byte(payload))

		// then
		require.NoError(t, err)
		assert.True(t, event.AllDay)
		assert.Equal(t, temporal.Date(2024, 3, 1), event.Start)
		assert.Equal(t, temporal.Date(2024, 3, 1), event.End)
		assert.Equal(t, calendar.ProviderGoogle, event.ProviderID)
		assert.Equal(t, "user@example.com", event.AccountID)
		assert.Equal(t, "primary", event.CalendarID)
	})

	t.Run("should decode multi-day all-day event", func(t *testing.T) {
		// given
		payload := `{"id":"g2","start":{"date":"2024-07-01"},"end":{"date":"2024-07-08"}}`

		// when
		event, err := codec.Decode([]byte(payload))

		// then
		require.NoError(t, err)
		assert.Equal(t, temporal.Date(2024, 7, 7), event.End)
	})

	t.Run("should decode local dateTime with timeZone", func(t *testing.T) {
		// given
		payload := `{"id":"e1",
			"start":{"dateTime":"2024-03-01T09:00:00","timeZone":"Europe/Berlin"},
			"end":{"dateTime":"2024-03-01T10:00:00.5","timeZone":"Europe/Berlin"}}`

		// when
		event, err := codec.Decode([]byte(payload))

		// then
		require.NoError(t, err)
		start, err := temporal.Civil(temporal.Date(2024, 3, 1), 9, 0, 0, "Europe/Berlin")
		require.NoError(t, err)
		assert.Equal(t, start, event.Start)
		end, ok := event.End.(temporal.ZonedCivilTime)
		require.True(t, ok)
		assert.Equal(t, 10, end.Hour)
		assert.Equal(t, 500000000, end.Nanosecond)
		assert.Equal(t, "Europe/Berlin", end.Zone)
	})

	t.Run("should reject local dateTime without timeZone", func(t *testing.T) {
		// given
		payload := `{"id":"e2","start":{"dateTime":"2024-03-01T09:00:00"},"end":{"dateTime":"2024-03-01T10:00:00"}}`

		// when
		_, err := codec.Decode([]byte(payload))

		// then
		assert.ErrorIs(t, err, calendar.ErrDecode)
	})

	t.Run("should decode dateTime with timeZone as zoned civil time", func(t *testing.T) {
		// given
		payload := `{"id":"g3",
			"start":{"dateTime":"2024-03-09T23:30:00-05:00","timeZone":"America/New_York"},
			"end":{"dateTime":"2024-03-10T03:30:00-04:00","timeZone":"America/New_York"}}`

		// when
		event, err := codec.Decode([]byte(payload))

		// then
		require.NoError(t, err)
		start := event.Start.(temporal.ZonedCivilTime)
		end := event.End.(temporal.ZonedCivilTime)
		assert.Equal(t, "America/New_York", start.Zone)
		assert.Equal(t, 23, start.Hour)
		assert.Equal(t, 3, end.Hour)
		assert.False(t, event.AllDay)
	})

	t.Run("should convert dateTime into the given zone", func(t *testing.T) {
		// given
		payload := `{"id":"g4",
			"start":{"dateTime":"2024-06-01T08:00:00Z","timeZone":"Europe/Warsaw"},
			"end":{"dateTime":"2024-06-01T09:00:00Z","timeZone":"Europe/Warsaw"}}`

		// when
		event, err := codec.Decode([]byte(payload))

		// then
		require.NoError(t, err)
		assert.Equal(t, 10, event.Start.(temporal.ZonedCivilTime).Hour)
	})

	t.Run("should decode dateTime without timeZone as instant", func(t *testing.T) {
		// given
		payload := `{"id":"g5","start":{"dateTime":"2024-06-01T10:00:00+02:00"},"end":{"dateTime":"2024-06-01T11:00:00+02:00"}}`

		// when
		event, err := codec.Decode([]byte(payload))

		// then
		require.NoError(t, err)
		instant := event.Start.(temporal.Instant)
		assert.Equal(t, 8, instant.Time().Hour())
	})

	t.Run("should map colors, attendees and metadata", func(t *testing.T) {
		// given
		payload := `{"id":"g6","summary":"Sync","description":"Weekly","location":"Room 1",
			"htmlLink":"https://calendar.google.com/event?eid=g6","status":"confirmed","colorId":"11","locked":true,
			"recurrence":["RRULE:FREQ=WEEKLY;BYDAY=MO"],
			"start":{"dateTime":"2024-06-03T09:00:00Z"},"end":{"dateTime":"2024-06-03T09:30:00Z"},
			"attendees":[
				{"email":"a@example.com","displayName":"A","responseStatus":"accepted"},
				{"email":"b@example.com","responseStatus":"tentative","optional":true},
				{"email":"room@resource.calendar.google.com","responseStatus":"needsAction","resource":true},
				{"email":"c@example.com","responseStatus":"declined"},
				{"email":"d@example.com","responseStatus":"something-new"}
			]}`

		// when
		event, err := codec.Decode([]byte(payload))

		// then
		require.NoError(t, err)
		assert.Equal(t, "Sync", event.Title)
		assert.Equal(t, "Weekly", event.Description)
		assert.Equal(t, "Room 1", event.Location)
		assert.Equal(t, "https://calendar.google.com/event?eid=g6", event.URL)
		assert.Equal(t, "confirmed", event.Status)
		assert.Equal(t, calendar.ColorTomato, event.Color)
		assert.True(t, event.ReadOnly)
		assert.Equal(t, []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"}, event.Recurrence)
		assert.Equal(t, []calendar.Attendee{
			{Email: "a@example.com", Name: "A", Status: calendar.StatusAccepted, Type: calendar.AttendeeRequired},
			{Email: "b@example.com", Status: calendar.StatusTentative, Type: calendar.AttendeeOptional},
			{Email: "room@resource.calendar.google.com", Status: calendar.StatusNeedsAction, Type: calendar.AttendeeResource},
			{Email: "c@example.com", Status: calendar.StatusDeclined, Type: calendar.AttendeeRequired},
			{Email: "d@example.com", Status: calendar.StatusUnknown, Type: calendar.AttendeeRequired},
		}, event.Attendees)
	})

	t.Run("should fall back to default color for unknown color id", func(t *testing.T) {
		for _, colorID := range []string{"", "0", "12", "blue"} {
			// given
			item := gcal.Event{Id: "g7", ColorId: colorID,
				Start: &gcal.EventDateTime{Date: "2024-01-01"}, End: &gcal.EventDateTime{Date: "2024-01-02"}}
			payload, _ := json.Marshal(&item)

			// when
			event, err := codec.Decode(payload)

			// then
			require.NoError(t, err)
			assert.Equal(t, calendar.DefaultColor, event.Color, "colorId %q", colorID)
		}
	})

	t.Run("should return decode error", func(t *testing.T) {
		cases := map[string]string{
			"malformed json":   `{"id":`,
			"missing id":       `{"start":{"date":"2024-01-01"}}`,
			"missing start":    `{"id":"x"}`,
			"empty start":      `{"id":"x","start":{}}`,
			"unknown zone":     `{"id":"x","start":{"dateTime":"2024-01-01T10:00:00Z","timeZone":"Mars/Olympus"}}`,
			"kind mismatch":    `{"id":"x","start":{"date":"2024-01-01"},"end":{"dateTime":"2024-01-01T10:00:00Z"}}`,
			"end before start": `{"id":"x","start":{"dateTime":"2024-01-01T10:00:00Z"},"end":{"dateTime":"2024-01-01T09:00:00Z"}}`,
		}
		for name, payload := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := codec.Decode([]byte(payload))

				require.Error(t, err)
				assert.True(t, errors.Is(err, calendar.ErrDecode))
				var decodeErr *calendar.DecodeError
				require.ErrorAs(t, err, &decodeErr)
				assert.Equal(t, calendar.ProviderGoogle, decodeErr.Provider)
			})
		}
	})
}

func TestCodec_Encode(t *testing.T) {
	t.Run("should re-add the exclusive day for all-day events", func(t *testing.T) {
		// given
		event := calendar.Event{ID: "g1", Title: "Holiday", AllDay: true,
			Start: temporal.Date(2024, 3, 1), End: temporal.Date(2024, 3, 1)}

		// when
		payload, err := codec.Encode(event)

		// then
		require.NoError(t, err)
		var item gcal.Event
		require.NoError(t, json.Unmarshal(payload, &item))
		assert.Equal(t, "2024-03-01", item.Start.Date)
		assert.Equal(t, "2024-03-02", item.End.Date)
		assert.Empty(t, item.ColorId)
	})

	t.Run("should encode zoned time with offset and zone", func(t *testing.T) {
		// given
		start, _ := temporal.Civil(temporal.Date(2024, 7, 1), 9, 0, 0, "Europe/Warsaw")
		end, _ := temporal.Civil(temporal.Date(2024, 7, 1), 10, 0, 0, "Europe/Warsaw")
		event := calendar.Event{ID: "g2", Start: start, End: end, Color: calendar.ColorBasil}

		// when
		payload, err := codec.Encode(event)

		// then
		require.NoError(t, err)
		var item gcal.Event
		require.NoError(t, json.Unmarshal(payload, &item))
		assert.Equal(t, "2024-07-01T09:00:00+02:00", item.Start.DateTime)
		assert.Equal(t, "Europe/Warsaw", item.Start.TimeZone)
		assert.Equal(t, "10", item.ColorId)
	})

	t.Run("should reject invalid event", func(t *testing.T) {
		// given
		event := calendar.Event{ID: "g3", Start: temporal.Date(2024, 3, 2), End: temporal.Date(2024, 3, 1), AllDay: true}

		// when
		_, err := codec.Encode(event)

		// then
		assert.ErrorIs(t, err, calendar.ErrEndBeforeStart)
	})
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Run("should keep wire format for unchanged event", func(t *testing.T) {
		// given
		payload := `{"id":"rt1","summary":"Offsite","colorId":"3","start":{"date":"2024-05-06"},"end":{"date":"2024-05-09"},
			"attendees":[{"email":"x@example.com","responseStatus":"accepted","optional":true},{"email":"y@example.com"}]}`

		// when
		event, err := codec.Decode([]byte(payload))
		require.NoError(t, err)
		encoded, err := codec.Encode(event)
		require.NoError(t, err)

		// then
		var item gcal.Event
		require.NoError(t, json.Unmarshal(encoded, &item))
		assert.Equal(t, "2024-05-06", item.Start.Date)
		assert.Equal(t, "2024-05-09", item.End.Date)
		assert.Equal(t, "3", item.ColorId)
		require.Len(t, item.Attendees, 2)
		assert.Equal(t, "accepted", item.Attendees[0].ResponseStatus)
		assert.True(t, item.Attendees[0].Optional)
		assert.Empty(t, item.Attendees[1].ResponseStatus)

		again, err := codec.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, event, again)
	})

	t.Run("should keep zoned event across DST", func(t *testing.T) {
		// given
		start, _ := temporal.Civil(temporal.Date(2024, 3, 9), 23, 0, 0, "America/New_York")
		end, _ := temporal.Civil(temporal.Date(2024, 3, 10), 4, 0, 0, "America/New_York")
		event := calendar.Event{ID: "rt2", Start: start, End: end, Color: calendar.DefaultColor,
			ProviderID: calendar.ProviderGoogle, AccountID: "user@example.com", CalendarID: "primary"}

		// when
		encoded, err := codec.Encode(event)
		require.NoError(t, err)
		decoded, err := codec.Decode(encoded)

		// then
		require.NoError(t, err)
		assert.Equal(t, event, decoded)
	})
}

func TestCodec_DecodeBatch(t *testing.T) {
	t.Run("should decode list resource and report failures", func(t *testing.T) {
		// given
		payload := `{"kind":"calendar#events","items":[
			{"id":"ok1","start":{"date":"2024-01-01"},"end":{"date":"2024-01-02"}},
			{"id":"bad","start":{"date":"2024-01-03"},"end":{"date":"2024-01-01"}},
			{"id":"gone","status":"cancelled"},
			{"id":"ok2","start":{"dateTime":"2024-01-01T10:00:00Z"},"end":{"dateTime":"2024-01-01T11:00:00Z"}}
		]}`

		// when
		events, failures := codec.DecodeBatch([]byte(payload))

		// then
		require.Len(t, events, 2)
		assert.Equal(t, "ok1", events[0].ID)
		assert.Equal(t, "ok2", events[1].ID)
		require.Len(t, failures, 1)
		assert.ErrorIs(t, failures[0], calendar.ErrEndBeforeStart)
	})

	t.Run("should decode bare array", func(t *testing.T) {
		payload := `[{"id":"a","start":{"date":"2024-01-01"}}]`

		events, failures := codec.DecodeBatch([]byte(payload))

		assert.Empty(t, failures)
		require.Len(t, events, 1)
		assert.Equal(t, temporal.Date(2024, 1, 1), events[0].End)
	})

	t.Run("should report malformed payload", func(t *testing.T) {
		events, failures := codec.DecodeBatch([]byte(`{"items":`))

		assert.Empty(t, events)
		require.Len(t, failures, 1)
		assert.ErrorIs(t, failures[0], calendar.ErrDecode)
	})

	t.Run("should encode batch as list resource", func(t *testing.T) {
		// given
		events := []calendar.Event{
			{ID: "a", AllDay: true, Start: temporal.Date(2024, 1, 1), End: temporal.Date(2024, 1, 1)},
			{ID: "b", AllDay: true, Start: temporal.Date(2024, 1, 2), End: temporal.Date(2024, 1, 3)},
		}

		// when
		payload, err := codec.EncodeBatch(events)
		require.NoError(t, err)
		decoded, failures := codec.DecodeBatch(payload)

		// then
		assert.Empty(t, failures)
		require.Len(t, decoded, 2)
		assert.Equal(t, temporal.Date(2024, 1, 3), decoded[1].End)
		assert.Contains(t, string(payload), `"kind":"calendar#events"`)
	})
}
