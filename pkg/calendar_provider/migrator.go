package calendar_provider

import (
	"fmt"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

type MigrationResult struct {
	Payload        []byte
	MigratedEvents int
	Failures       []error
}

// EventsMigrator converts payloads from one provider format into another.
type EventsMigrator struct {
	provider *CalendarProvider
}

func NewEventsMigrator(provider *CalendarProvider) *EventsMigrator {
	return &EventsMigrator{provider: provider}
}

// Migrate decodes payload with the from codec and encodes every event the to codec
// accepts. Events that fail either step are reported and skipped.
func (m *EventsMigrator) Migrate(from, to calendar.ProviderID, payload []byte) (MigrationResult, error) {
	target, err := m.provider.Codec(to)
	if err != nil {
		return MigrationResult{}, err
	}
	imported, err := m.provider.Import(from, payload)
	if err != nil {
		return MigrationResult{}, err
	}

	failures := imported.Failures
	migrated := make([]calendar.Event, 0, len(imported.Events))
	for _, event := range imported.Events {
		event.ProviderID = to
		if _, err := target.Encode(event); err != nil {
			log.Errorf("failed to convert event %s from %s to %s: %v. Trying to continue", event.ID, from, to, err)
			failures = append(failures, fmt.Errorf("event %s: %w", event.ID, err))
			continue
		}
		migrated = append(migrated, event)
	}

	out, err := m.provider.Export(to, migrated)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("failed to encode %s payload: %w", to, err)
	}
	return MigrationResult{Payload: out, MigratedEvents: len(migrated), Failures: failures}, nil
}
