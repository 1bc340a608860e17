package temporal

import (
	"fmt"
	"time"
)

// Wire is the JSON shape of a Value used by the HTTP API.
type Wire struct {
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	TimeZone string `json:"timeZone,omitempty"`
}

func ToWire(v Value) Wire {
	switch tv := v.(type) {
	case Instant:
		return Wire{Kind: KindInstant.String(), Value: tv.String()}
	case ZonedCivilTime:
		return Wire{Kind: KindZoned.String(), Value: tv.CivilString(), TimeZone: tv.Zone}
	case PlainDate:
		return Wire{Kind: KindDate.String(), Value: tv.String()}
	}
	return Wire{}
}

func FromWire(w Wire) (Value, error) {
	switch w.Kind {
	case KindInstant.String():
		t, err := time.Parse(time.RFC3339Nano, w.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid instant %q: %w", w.Value, err)
		}
		return NewInstant(t), nil
	case KindZoned.String():
		t, err := time.Parse(civilLayout, w.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid civil time %q: %w", w.Value, err)
		}
		z, err := Civil(PlainDateOf(t), t.Hour(), t.Minute(), t.Second(), w.TimeZone)
		if err != nil {
			return nil, err
		}
		z.Nanosecond = t.Nanosecond()
		return z, nil
	case KindDate.String():
		return ParsePlainDate(w.Value)
	case "":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidConversion, w.Kind)
}
