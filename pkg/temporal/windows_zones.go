package temporal

import "strings"

// windowsZones maps the Windows zone names emitted by Exchange and Outlook onto IANA
// names (CLDR "001" territory).
var windowsZones = map[string]string{
	"Dateline Standard Time":         "Etc/GMT+12",
	"Hawaiian Standard Time":         "Pacific/Honolulu",
	"Alaskan Standard Time":          "America/Anchorage",
	"Pacific Standard Time":          "America/Los_Angeles",
	"US Mountain Standard Time":      "America/Phoenix",
	"Mountain Standard Time":         "America/Denver",
	"Central Standard Time":          "America/Chicago",
	"Central America Standard Time":  "America/Guatemala",
	"Canada Central Standard Time":   "America/Regina",
	"Mexico Standard Time":           "America/Mexico_City",
	"Eastern Standard Time":          "America/New_York",
	"SA Pacific Standard Time":       "America/Bogota",
	"Atlantic Standard Time":         "America/Halifax",
	"Newfoundland Standard Time":     "America/St_Johns",
	"E. South America Standard Time": "America/Sao_Paulo",
	"Argentina Standard Time":        "America/Argentina/Buenos_Aires",
	"UTC":                            "UTC",
	"Coordinated Universal Time":     "UTC",
	"GMT Standard Time":              "Europe/London",
	"Greenwich Standard Time":        "Atlantic/Reykjavik",
	"W. Europe Standard Time":        "Europe/Berlin",
	"Central Europe Standard Time":   "Europe/Budapest",
	"Central European Standard Time": "Europe/Warsaw",
	"Romance Standard Time":          "Europe/Paris",
	"E. Europe Standard Time":        "Europe/Chisinau",
	"GTB Standard Time":              "Europe/Bucharest",
	"FLE Standard Time":              "Europe/Kyiv",
	"Turkey Standard Time":           "Europe/Istanbul",
	"Israel Standard Time":           "Asia/Jerusalem",
	"South Africa Standard Time":     "Africa/Johannesburg",
	"Russian Standard Time":          "Europe/Moscow",
	"Arabian Standard Time":          "Asia/Dubai",
	"Pakistan Standard Time":         "Asia/Karachi",
	"India Standard Time":            "Asia/Kolkata",
	"Bangladesh Standard Time":       "Asia/Dhaka",
	"SE Asia Standard Time":          "Asia/Bangkok",
	"China Standard Time":            "Asia/Shanghai",
	"Singapore Standard Time":        "Asia/Singapore",
	"Taipei Standard Time":           "Asia/Taipei",
	"Tokyo Standard Time":            "Asia/Tokyo",
	"Korea Standard Time":            "Asia/Seoul",
	"AUS Central Standard Time":      "Australia/Darwin",
	"AUS Eastern Standard Time":      "Australia/Sydney",
	"E. Australia Standard Time":     "Australia/Brisbane",
	"West Pacific Standard Time":     "Pacific/Port_Moresby",
	"New Zealand Standard Time":      "Pacific/Auckland",
}

// NormalizeZoneName returns an IANA name for name, translating Windows names and
// trimming the leading slash some ICS producers put in TZID. The second result is
// false when the name cannot be loaded.
func NormalizeZoneName(name string) (string, bool) {
	name = strings.Trim(strings.TrimSpace(name), `"`)
	name = strings.TrimPrefix(name, "/")
	if iana, ok := windowsZones[name]; ok {
		name = iana
	}
	if _, err := LoadZone(name); err != nil {
		return "", false
	}
	return name, true
}
