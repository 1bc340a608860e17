package calendar_provider

import (
	"errors"
	"strings"
	"testing"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/google"
	"github.com/klokku/klokku-calendar/pkg/ics"
	"github.com/klokku/klokku-calendar/pkg/microsoft"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleCodec implements only calendar.Codec.
type singleCodec struct{}

func (singleCodec) Provider() calendar.ProviderID { return "single" }

func (singleCodec) Decode(payload []byte) (calendar.Event, error) {
	if len(payload) == 0 {
		return calendar.Event{}, calendar.NewDecodeError("single", "", "empty payload", nil)
	}
	return calendar.Event{ID: string(payload), AllDay: true,
		Start: temporal.Date(2024, 1, 1), End: temporal.Date(2024, 1, 1)}, nil
}

func (singleCodec) Encode(event calendar.Event) ([]byte, error) {
	return []byte(event.ID), nil
}

const icsPayload = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\n" +
	"BEGIN:VEVENT\r\nUID:ok\r\nSUMMARY:Holiday\r\nDTSTART;VALUE=DATE:20240301\r\nDTEND;VALUE=DATE:20240302\r\nEND:VEVENT\r\n" +
	"BEGIN:VEVENT\r\nUID:broken\r\nSUMMARY:No start\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func newTestProvider() *CalendarProvider {
	return NewCalendarProvider(
		ics.NewCodec(ics.Options{AccountID: "local", CalendarID: "import"}),
		google.NewCodec("user@example.com", "primary"),
		microsoft.NewCodec("user@contoso.com", "calendar"),
		singleCodec{},
	)
}

func TestCalendarProvider_Import(t *testing.T) {
	provider := newTestProvider()

	t.Run("should report failures next to decoded events", func(t *testing.T) {
		// when
		result, err := provider.Import(calendar.ProviderICS, []byte(icsPayload))

		// then
		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, "ok", result.Events[0].ID)
		require.Len(t, result.Failures, 1)
		assert.ErrorIs(t, result.Failures[0], calendar.ErrDecode)
	})

	t.Run("should fall back to single decode", func(t *testing.T) {
		result, err := provider.Import("single", []byte("abc"))

		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, "abc", result.Events[0].ID)

		result, err = provider.Import("single", nil)
		require.NoError(t, err)
		assert.Empty(t, result.Events)
		assert.Len(t, result.Failures, 1)
	})

	t.Run("should fail for unknown provider", func(t *testing.T) {
		_, err := provider.Import("yahoo", []byte("{}"))

		assert.True(t, errors.Is(err, ErrUnknownProvider))
	})
}

func TestCalendarProvider_Export(t *testing.T) {
	provider := newTestProvider()
	events := []calendar.Event{
		{ID: "a", AllDay: true, Start: temporal.Date(2024, 1, 1), End: temporal.Date(2024, 1, 1)},
		{ID: "b", AllDay: true, Start: temporal.Date(2024, 1, 2), End: temporal.Date(2024, 1, 2)},
	}

	t.Run("should encode batch", func(t *testing.T) {
		payload, err := provider.Export(calendar.ProviderICS, events)

		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(payload), "BEGIN:VEVENT"))
	})

	t.Run("should encode single event without batch support", func(t *testing.T) {
		payload, err := provider.Export("single", events[:1])

		require.NoError(t, err)
		assert.Equal(t, "a", string(payload))
	})

	t.Run("should refuse many events without batch support", func(t *testing.T) {
		_, err := provider.Export("single", events)

		assert.ErrorIs(t, err, ErrBatchUnsupported)
	})
}

func TestEventsMigrator_Migrate(t *testing.T) {
	migrator := NewEventsMigrator(newTestProvider())

	t.Run("should convert google all-day events into ics", func(t *testing.T) {
		// given
		payload := `{"items":[
			{"id":"g1","summary":"Offsite","start":{"date":"2024-05-06"},"end":{"date":"2024-05-09"}},
			{"id":"g2","summary":"Call","start":{"dateTime":"2024-05-06T10:00:00+02:00","timeZone":"Europe/Warsaw"},"end":{"dateTime":"2024-05-06T10:30:00+02:00","timeZone":"Europe/Warsaw"}}
		]}`

		// when
		result, err := migrator.Migrate(calendar.ProviderGoogle, calendar.ProviderICS, []byte(payload))

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, result.MigratedEvents)
		assert.Empty(t, result.Failures)
		out := string(result.Payload)
		assert.Contains(t, out, "DTSTART;VALUE=DATE:20240506")
		assert.Contains(t, out, "DTEND;VALUE=DATE:20240509")
		assert.Contains(t, out, "DTSTART;TZID=Europe/Warsaw:20240506T100000")
	})

	t.Run("should skip events the target cannot encode", func(t *testing.T) {
		// given
		payload := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//Test//EN\r\n" +
			"BEGIN:VEVENT\r\nUID:hourly\r\nDTSTART:20240301T090000Z\r\nDTEND:20240301T100000Z\r\nRRULE:FREQ=HOURLY\r\nEND:VEVENT\r\n" +
			"BEGIN:VEVENT\r\nUID:weekly\r\nDTSTART:20240301T090000Z\r\nDTEND:20240301T100000Z\r\nRRULE:FREQ=WEEKLY;COUNT=3\r\nEND:VEVENT\r\n" +
			"END:VCALENDAR\r\n"

		// when
		result, err := migrator.Migrate(calendar.ProviderICS, calendar.ProviderMicrosoft, []byte(payload))

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, result.MigratedEvents)
		require.Len(t, result.Failures, 1)
		assert.ErrorIs(t, result.Failures[0], calendar.ErrInvalidRecurrence)
		assert.Contains(t, string(result.Payload), `"id":"weekly"`)
		assert.NotContains(t, string(result.Payload), `"id":"hourly"`)
	})

	t.Run("should carry decode failures", func(t *testing.T) {
		result, err := migrator.Migrate(calendar.ProviderICS, calendar.ProviderGoogle, []byte(icsPayload))

		require.NoError(t, err)
		assert.Equal(t, 1, result.MigratedEvents)
		assert.Len(t, result.Failures, 1)
	})

	t.Run("should fail for unknown target", func(t *testing.T) {
		_, err := migrator.Migrate(calendar.ProviderICS, "yahoo", []byte(icsPayload))

		assert.ErrorIs(t, err, ErrUnknownProvider)
	})
}
