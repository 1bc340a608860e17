package calendar_provider

import (
	"errors"
	"fmt"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnknownProvider  = errors.New("unknown calendar provider")
	ErrBatchUnsupported = errors.New("codec cannot encode more than one event")
)

// CalendarProvider routes payloads to the codec registered for their provider.
type CalendarProvider struct {
	codecs map[calendar.ProviderID]calendar.Codec
}

func NewCalendarProvider(codecs ...calendar.Codec) *CalendarProvider {
	registry := make(map[calendar.ProviderID]calendar.Codec, len(codecs))
	for _, c := range codecs {
		registry[c.Provider()] = c
	}
	return &CalendarProvider{codecs: registry}
}

func (c *CalendarProvider) Codec(provider calendar.ProviderID) (calendar.Codec, error) {
	codec, ok := c.codecs[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	return codec, nil
}

// ImportResult holds the events that decoded and one error per item that did not.
type ImportResult struct {
	Events   []calendar.Event
	Failures []error
}

// Import decodes every event of payload. Only an unknown provider is an error; bad
// items are reported in Failures.
func (c *CalendarProvider) Import(provider calendar.ProviderID, payload []byte) (ImportResult, error) {
	codec, err := c.Codec(provider)
	if err != nil {
		return ImportResult{}, err
	}
	if batch, ok := codec.(calendar.BatchCodec); ok {
		events, failures := batch.DecodeBatch(payload)
		log.Debugf("imported %d %s events, %d failures", len(events), provider, len(failures))
		return ImportResult{Events: events, Failures: failures}, nil
	}
	event, err := codec.Decode(payload)
	if err != nil {
		return ImportResult{Failures: []error{err}}, nil
	}
	return ImportResult{Events: []calendar.Event{event}}, nil
}

func (c *CalendarProvider) Export(provider calendar.ProviderID, events []calendar.Event) ([]byte, error) {
	codec, err := c.Codec(provider)
	if err != nil {
		return nil, err
	}
	if batch, ok := codec.(calendar.BatchCodec); ok {
		return batch.EncodeBatch(events)
	}
	if len(events) != 1 {
		return nil, fmt.Errorf("%w: %s got %d events", ErrBatchUnsupported, provider, len(events))
	}
	return codec.Encode(events[0])
}
