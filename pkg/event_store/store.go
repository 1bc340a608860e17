package event_store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/klokku/klokku-calendar/internal/event_bus"
	"github.com/klokku/klokku-calendar/internal/utils"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	log "github.com/sirupsen/logrus"
)

// NewDraftID returns a fresh local id for an unsaved event.
func NewDraftID() string {
	return calendar.DraftIDPrefix + uuid.NewString()
}

// Store serialises actions through Reduce and announces the results on the bus.
// Mutations it emits are published as event_bus.MutationRequested.
type Store struct {
	mu    sync.Mutex
	state State
	bus   *event_bus.EventBus
	clock utils.Clock
}

func NewStore(settings Settings, bus *event_bus.EventBus, clock utils.Clock) *Store {
	return &Store{
		state: NewState(settings),
		bus:   bus,
		clock: clock,
	}
}

// State returns the current state. States are never modified in place, so the value
// stays consistent after later dispatches.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Dispatch(ctx context.Context, action Action) (Effect, error) {
	name := ActionName(action)

	s.mu.Lock()
	next, effect, err := Reduce(s.state, action)
	if err != nil {
		s.mu.Unlock()
		log.Debugf("event store rejected %s: %v", name, err)
		return Effect{}, err
	}
	s.state = next
	changed := event_bus.StoreChanged{Action: name, Events: len(next.Events()), Selected: next.Selected()}
	s.mu.Unlock()

	if effect.Stale {
		log.Debugf("ignoring stale %s response: %+v", name, action)
		return effect, nil
	}
	for _, failure := range effect.Failures {
		log.Warnf("event store skipped loaded event: %v", failure)
	}
	s.publish(ctx, event_bus.TypeStoreChanged, changed)
	if m := effect.Mutation; m != nil {
		log.Debugf("requesting %s of event %s (seq %d)", m.Kind, m.ID, m.Seq)
		s.publish(ctx, event_bus.TypeMutationRequested, event_bus.MutationRequested{
			Kind:  string(m.Kind),
			ID:    m.ID,
			Seq:   m.Seq,
			Event: m.Event.Clone(),
		})
	}
	return effect, nil
}

func (s *Store) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		log.Errorf("failed to publish %s: %v", eventType, err)
	}
}

// Draft adds event as an unsaved draft, generating an id when it has none, and
// returns the stored copy.
func (s *Store) Draft(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	if event.ID == "" {
		event.ID = NewDraftID()
	}
	if _, err := s.Dispatch(ctx, Draft{Event: event, At: s.clock.Now()}); err != nil {
		return calendar.Event{}, err
	}
	entry, _ := s.Entry(event.ID)
	return entry.Event, nil
}

func (s *Store) Save(ctx context.Context, id string) error {
	_, err := s.Dispatch(ctx, Save{ID: id})
	return err
}

func (s *Store) Move(ctx context.Context, id string, start, end temporal.Value) error {
	_, err := s.Dispatch(ctx, Move{ID: id, Start: start, End: end})
	return err
}

func (s *Store) Update(ctx context.Context, event calendar.Event) error {
	_, err := s.Dispatch(ctx, Update{Event: event})
	return err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.Dispatch(ctx, Delete{ID: id})
	return err
}

func (s *Store) Select(ctx context.Context, id string) error {
	_, err := s.Dispatch(ctx, Select{ID: id})
	return err
}

func (s *Store) Unselect(ctx context.Context, id string) error {
	_, err := s.Dispatch(ctx, Unselect{ID: id})
	return err
}

// Load merges server events and returns the ones that were skipped as invalid.
func (s *Store) Load(ctx context.Context, events []calendar.Event) []error {
	effect, err := s.Dispatch(ctx, Load{Events: events})
	if err != nil {
		return []error{err}
	}
	return effect.Failures
}

func (s *Store) Events() []calendar.Event {
	return s.State().Events()
}

func (s *Store) Selected() []string {
	return s.State().Selected()
}

func (s *Store) Primary() (string, bool) {
	return s.State().Primary()
}

func (s *Store) Entry(id string) (Entry, bool) {
	return s.State().Entry(id)
}
