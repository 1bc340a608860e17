package event_store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/ics"
	log "github.com/sirupsen/logrus"
)

const serverIDSuffix = "@klokku"

// FilePersistence keeps confirmed events in a single iCalendar file. Every mutation
// rewrites the whole file.
type FilePersistence struct {
	mu     sync.Mutex
	path   string
	codec  *ics.Codec
	events []calendar.Event
}

// NewFilePersistence reads the existing file at path, if any. VEVENTs that fail to
// decode are dropped with a warning.
func NewFilePersistence(path string, codec *ics.Codec) (*FilePersistence, error) {
	p := &FilePersistence{path: path, codec: codec}
	payload, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("Event file not found at %s, starting empty", path)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}
	events, failures := codec.DecodeBatch(payload)
	for _, failure := range failures {
		log.Warnf("event file %s: %v", path, failure)
	}
	p.events = events
	log.Infof("Loaded %d events from %s", len(events), path)
	return p, nil
}

// List returns the persisted events in file order.
func (p *FilePersistence) List(ctx context.Context) ([]calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	events := make([]calendar.Event, 0, len(p.events))
	for _, e := range p.events {
		events = append(events, e.Clone())
	}
	return events, nil
}

func (p *FilePersistence) Create(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return calendar.Event{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	created := event.Clone()
	created.ID = uuid.NewString() + serverIDSuffix
	created.ProviderID = calendar.ProviderICS
	if err := p.write(append(slices.Clone(p.events), created)); err != nil {
		return calendar.Event{}, err
	}
	return created.Clone(), nil
}

func (p *FilePersistence) Update(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	if err := ctx.Err(); err != nil {
		return calendar.Event{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.index(event.ID)
	if i < 0 {
		return calendar.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, event.ID)
	}
	updated := event.Clone()
	updated.ProviderID = calendar.ProviderICS
	events := slices.Clone(p.events)
	events[i] = updated
	if err := p.write(events); err != nil {
		return calendar.Event{}, err
	}
	return updated.Clone(), nil
}

func (p *FilePersistence) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return p.write(slices.Delete(slices.Clone(p.events), i, i+1))
}

func (p *FilePersistence) index(id string) int {
	return slices.IndexFunc(p.events, func(e calendar.Event) bool { return e.ID == id })
}

// write replaces the file through a temporary sibling and only then adopts events.
func (p *FilePersistence) write(events []calendar.Event) error {
	payload, err := p.codec.EncodeBatch(events)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create event directory: %w", err)
		}
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write event file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace event file: %w", err)
	}
	p.events = events
	return nil
}
