package event_store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	log "github.com/sirupsen/logrus"
)

// PostgresPersistence stores each event as its JSON form next to the resolved display
// bounds used for ordering.
type PostgresPersistence struct {
	db  *pgxpool.Pool
	loc *time.Location
}

// NewPostgresPersistence resolves all-day and floating values in defaultZone.
func NewPostgresPersistence(db *pgxpool.Pool, defaultZone string) (*PostgresPersistence, error) {
	loc, err := temporal.LoadZone(defaultZone)
	if err != nil {
		return nil, err
	}
	return &PostgresPersistence{db: db, loc: loc}, nil
}

func (p *PostgresPersistence) List(ctx context.Context) ([]calendar.Event, error) {
	query := "SELECT payload FROM calendar_event ORDER BY start_at, position"
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	payloads, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	events := make([]calendar.Event, 0, len(payloads))
	for _, payload := range payloads {
		var dto calendar.EventDTO
		if err := json.Unmarshal(payload, &dto); err != nil {
			log.Warnf("skipping unreadable stored event: %v", err)
			continue
		}
		event, err := calendar.DTOToEvent(dto)
		if err != nil {
			log.Warnf("skipping stored event %s: %v", dto.ID, err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (p *PostgresPersistence) Create(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	created := event.Clone()
	created.ID = uuid.NewString() + serverIDSuffix
	payload, start, end, err := p.row(created)
	if err != nil {
		return calendar.Event{}, err
	}

	query := "INSERT INTO calendar_event (id, start_at, end_at, payload) VALUES ($1, $2, $3, $4)"
	if _, err := p.db.Exec(ctx, query, created.ID, start, end, payload); err != nil {
		return calendar.Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

func (p *PostgresPersistence) Update(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	updated := event.Clone()
	payload, start, end, err := p.row(updated)
	if err != nil {
		return calendar.Event{}, err
	}

	query := `UPDATE calendar_event
		SET start_at = $2, end_at = $3, payload = $4, updated_at = now()
		WHERE id = $1`
	tag, err := p.db.Exec(ctx, query, updated.ID, start, end, payload)
	if err != nil {
		return calendar.Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return calendar.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, updated.ID)
	}
	return updated, nil
}

func (p *PostgresPersistence) Delete(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, "DELETE FROM calendar_event WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return nil
}

func (p *PostgresPersistence) row(event calendar.Event) ([]byte, time.Time, time.Time, error) {
	if err := calendar.Validate(event); err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	start, end, err := calendar.DisplayBounds(event, p.loc)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	payload, err := json.Marshal(calendar.EventToDTO(event))
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	return payload, start, end, nil
}
