package ics

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/klokku/klokku-calendar/pkg/temporal"
)

const (
	dateLayout     = "20060102"
	localLayout    = "20060102T150405"
	utcLayout      = "20060102T150405Z"
	paramValue     = "VALUE"
	paramTZID      = "TZID"
	paramCN        = "CN"
	paramPartStat  = "PARTSTAT"
	paramRole      = "ROLE"
	paramCUType    = "CUTYPE"
	valueTypeDate  = "DATE"
	mailtoPrefix   = "mailto:"
	propertyColor  = ical.ComponentProperty("COLOR")
	propertyURL    = ical.ComponentProperty("URL")
	propertyDur    = ical.ComponentProperty("DURATION")
	propertyRDate  = ical.ComponentProperty("RDATE")
	propertyExDate = ical.ComponentProperty("EXDATE")
)

func param(p *ical.IANAProperty, name string) string {
	for k, vs := range p.ICalParameters {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return strings.Trim(vs[0], `"`)
		}
	}
	return ""
}

// parseValue reads a DTSTART/DTEND property. DATE values become PlainDate, UTC
// DATE-TIME values become Instant, and local DATE-TIME values are bound to their TZID
// (or defaultZone when floating).
func parseValue(p *ical.IANAProperty, defaultZone string) (temporal.Value, error) {
	v := strings.TrimSpace(p.Value)
	if strings.EqualFold(param(p, paramValue), valueTypeDate) || len(v) == len(dateLayout) {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Errorf("invalid DATE %q: %w", v, err)
		}
		return temporal.PlainDateOf(t), nil
	}
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(utcLayout, v)
		if err != nil {
			return nil, fmt.Errorf("invalid UTC DATE-TIME %q: %w", v, err)
		}
		return temporal.NewInstant(t), nil
	}
	t, err := time.Parse(localLayout, v)
	if err != nil {
		return nil, fmt.Errorf("invalid DATE-TIME %q: %w", v, err)
	}
	zone := defaultZone
	if tzid := param(p, paramTZID); tzid != "" {
		normalized, ok := temporal.NormalizeZoneName(tzid)
		if !ok {
			return nil, fmt.Errorf("%w: TZID %q", temporal.ErrUnknownZone, tzid)
		}
		zone = normalized
	}
	return temporal.Civil(temporal.PlainDateOf(t), t.Hour(), t.Minute(), t.Second(), zone)
}

// formatValue renders v as a property value plus the parameters it needs.
func formatValue(v temporal.Value) (string, []ical.PropertyParameter, error) {
	switch tv := v.(type) {
	case temporal.PlainDate:
		return tv.In(time.UTC).Format(dateLayout), []ical.PropertyParameter{
			&ical.KeyValues{Key: paramValue, Value: []string{valueTypeDate}},
		}, nil
	case temporal.Instant:
		return tv.Time().Format(utcLayout), nil, nil
	case temporal.ZonedCivilTime:
		civil := time.Date(tv.Date.Year, tv.Date.Month, tv.Date.Day, tv.Hour, tv.Minute, tv.Second, 0, time.UTC)
		return civil.Format(localLayout), []ical.PropertyParameter{
			&ical.KeyValues{Key: paramTZID, Value: []string{tv.Zone}},
		}, nil
	}
	return "", nil, fmt.Errorf("%w: cannot encode %T", temporal.ErrInvalidConversion, v)
}

var durationPattern = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseDuration reads an RFC 5545 DURATION such as P1D, PT1H30M or P2W.
func parseDuration(s string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || s == "P" || s == "PT" {
		return 0, fmt.Errorf("invalid DURATION %q", s)
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+2] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+2])
		if err != nil {
			return 0, fmt.Errorf("invalid DURATION %q: %w", s, err)
		}
		d += time.Duration(n) * unit
	}
	if m[1] == "-" {
		d = -d
	}
	return d, nil
}

// recurrenceLine rebuilds "NAME;PARAM=V:value" from a parsed property.
func recurrenceLine(name string, p *ical.IANAProperty) string {
	var b strings.Builder
	b.WriteString(name)
	for k, vs := range p.ICalParameters {
		b.WriteString(";")
		b.WriteString(strings.ToUpper(k))
		b.WriteString("=")
		b.WriteString(strings.Join(vs, ","))
	}
	b.WriteString(":")
	b.WriteString(p.Value)
	return b.String()
}

// splitRecurrenceLine is the reverse of recurrenceLine.
func splitRecurrenceLine(line string) (ical.ComponentProperty, string, []ical.PropertyParameter, error) {
	head, value, ok := strings.Cut(line, ":")
	if !ok {
		return "", "", nil, fmt.Errorf("invalid recurrence line %q", line)
	}
	parts := strings.Split(head, ";")
	var params []ical.PropertyParameter
	for _, part := range parts[1:] {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		params = append(params, &ical.KeyValues{Key: strings.ToUpper(k), Value: strings.Split(v, ",")})
	}
	return ical.ComponentProperty(strings.ToUpper(parts[0])), value, params, nil
}
