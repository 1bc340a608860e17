package ics

import (
	"strings"

	"github.com/klokku/klokku-calendar/pkg/calendar"
)

var partStatToStatus = map[string]calendar.AttendeeStatus{
	"ACCEPTED":     calendar.StatusAccepted,
	"DECLINED":     calendar.StatusDeclined,
	"TENTATIVE":    calendar.StatusTentative,
	"NEEDS-ACTION": calendar.StatusNeedsAction,
}

// StatusUnknown is written without PARTSTAT.
var statusToPartStat = map[calendar.AttendeeStatus]string{
	calendar.StatusAccepted:    "ACCEPTED",
	calendar.StatusDeclined:    "DECLINED",
	calendar.StatusTentative:   "TENTATIVE",
	calendar.StatusNeedsAction: "NEEDS-ACTION",
}

var roleToType = map[string]calendar.AttendeeType{
	"CHAIR":           calendar.AttendeeRequired,
	"REQ-PARTICIPANT": calendar.AttendeeRequired,
	"OPT-PARTICIPANT": calendar.AttendeeOptional,
	"NON-PARTICIPANT": calendar.AttendeeOptional,
}

var typeToRole = map[calendar.AttendeeType]string{
	calendar.AttendeeRequired: "REQ-PARTICIPANT",
	calendar.AttendeeOptional: "OPT-PARTICIPANT",
	calendar.AttendeeResource: "NON-PARTICIPANT",
}

var resourceCUTypes = map[string]bool{
	"RESOURCE": true,
	"ROOM":     true,
}

func attendeeStatus(partStat string) calendar.AttendeeStatus {
	if s, ok := partStatToStatus[strings.ToUpper(partStat)]; ok {
		return s
	}
	return calendar.StatusUnknown
}

func attendeeType(role, cuType string) calendar.AttendeeType {
	if resourceCUTypes[strings.ToUpper(cuType)] {
		return calendar.AttendeeResource
	}
	if t, ok := roleToType[strings.ToUpper(role)]; ok {
		return t
	}
	return calendar.AttendeeRequired
}

var knownColors = map[string]calendar.Color{
	string(calendar.ColorLavender):  calendar.ColorLavender,
	string(calendar.ColorSage):      calendar.ColorSage,
	string(calendar.ColorGrape):     calendar.ColorGrape,
	string(calendar.ColorFlamingo):  calendar.ColorFlamingo,
	string(calendar.ColorBanana):    calendar.ColorBanana,
	string(calendar.ColorTangerine): calendar.ColorTangerine,
	string(calendar.ColorPeacock):   calendar.ColorPeacock,
	string(calendar.ColorGraphite):  calendar.ColorGraphite,
	string(calendar.ColorBlueberry): calendar.ColorBlueberry,
	string(calendar.ColorBasil):     calendar.ColorBasil,
	string(calendar.ColorTomato):    calendar.ColorTomato,
}

func color(value string) calendar.Color {
	if c, ok := knownColors[strings.ToLower(strings.TrimSpace(value))]; ok {
		return c
	}
	return calendar.DefaultColor
}
