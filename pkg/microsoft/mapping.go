package microsoft

import (
	"strings"

	"github.com/klokku/klokku-calendar/pkg/calendar"
)

var responses = map[string]calendar.AttendeeStatus{
	"accepted":            calendar.StatusAccepted,
	"organizer":           calendar.StatusAccepted,
	"declined":            calendar.StatusDeclined,
	"tentativelyaccepted": calendar.StatusTentative,
	"notresponded":        calendar.StatusNeedsAction,
	"none":                calendar.StatusUnknown,
}

var statusToResponse = map[calendar.AttendeeStatus]string{
	calendar.StatusAccepted:    "accepted",
	calendar.StatusDeclined:    "declined",
	calendar.StatusTentative:   "tentativelyAccepted",
	calendar.StatusNeedsAction: "notResponded",
	calendar.StatusUnknown:     "none",
}

func attendeeStatus(s *responseStatus) calendar.AttendeeStatus {
	if s == nil {
		return calendar.StatusUnknown
	}
	if status, ok := responses[strings.ToLower(s.Response)]; ok {
		return status
	}
	return calendar.StatusUnknown
}

func attendeeType(t string) calendar.AttendeeType {
	switch strings.ToLower(t) {
	case "optional":
		return calendar.AttendeeOptional
	case "resource":
		return calendar.AttendeeResource
	}
	return calendar.AttendeeRequired
}

// categoryColors maps Outlook's preset category names onto the shared palette.
var categoryColors = map[string]calendar.Color{
	"red category":       calendar.ColorTomato,
	"orange category":    calendar.ColorTangerine,
	"yellow category":    calendar.ColorBanana,
	"green category":     calendar.ColorBasil,
	"blue category":      calendar.ColorBlueberry,
	"purple category":    calendar.ColorGrape,
	"teal category":      calendar.ColorPeacock,
	"gray category":      calendar.ColorGraphite,
	"olive category":     calendar.ColorSage,
	"cranberry category": calendar.ColorFlamingo,
	"steel category":     calendar.ColorLavender,
}

var colorCategories = map[calendar.Color]string{
	calendar.ColorTomato:    "Red category",
	calendar.ColorTangerine: "Orange category",
	calendar.ColorBanana:    "Yellow category",
	calendar.ColorBasil:     "Green category",
	calendar.ColorBlueberry: "Blue category",
	calendar.ColorGrape:     "Purple category",
	calendar.ColorPeacock:   "Teal category",
	calendar.ColorGraphite:  "Gray category",
	calendar.ColorSage:      "Olive category",
	calendar.ColorFlamingo:  "Cranberry category",
	calendar.ColorLavender:  "Steel category",
}

// colorFromCategories returns the color of the first preset category.
func colorFromCategories(categories []string) calendar.Color {
	for _, c := range categories {
		if color, ok := categoryColors[strings.ToLower(strings.TrimSpace(c))]; ok {
			return color
		}
	}
	return calendar.DefaultColor
}

func eventStatus(e *graphEvent) string {
	switch {
	case e.IsCancelled:
		return "cancelled"
	case strings.EqualFold(e.ShowAs, "tentative"):
		return "tentative"
	}
	return "confirmed"
}
