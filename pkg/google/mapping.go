package google

import (
	"strings"

	"github.com/klokku/klokku-calendar/pkg/calendar"
)

// colorIDs follows the event palette returned by the Google colors endpoint.
var colorIDs = map[string]calendar.Color{
	"1":  calendar.ColorLavender,
	"2":  calendar.ColorSage,
	"3":  calendar.ColorGrape,
	"4":  calendar.ColorFlamingo,
	"5":  calendar.ColorBanana,
	"6":  calendar.ColorTangerine,
	"7":  calendar.ColorPeacock,
	"8":  calendar.ColorGraphite,
	"9":  calendar.ColorBlueberry,
	"10": calendar.ColorBasil,
	"11": calendar.ColorTomato,
}

var colorToID = func() map[calendar.Color]string {
	m := make(map[calendar.Color]string, len(colorIDs))
	for id, c := range colorIDs {
		m[c] = id
	}
	return m
}()

func colorFromID(id string) calendar.Color {
	if c, ok := colorIDs[strings.TrimSpace(id)]; ok {
		return c
	}
	return calendar.DefaultColor
}

var responseStatuses = map[string]calendar.AttendeeStatus{
	"accepted":    calendar.StatusAccepted,
	"declined":    calendar.StatusDeclined,
	"tentative":   calendar.StatusTentative,
	"needsAction": calendar.StatusNeedsAction,
}

func attendeeStatus(response string) calendar.AttendeeStatus {
	if s, ok := responseStatuses[response]; ok {
		return s
	}
	return calendar.StatusUnknown
}

// responseStatus is the reverse of attendeeStatus. StatusUnknown is left empty.
func responseStatus(s calendar.AttendeeStatus) string {
	for response, status := range responseStatuses {
		if status == s {
			return response
		}
	}
	return ""
}
