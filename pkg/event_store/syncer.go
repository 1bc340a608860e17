package event_store

import (
	"context"
	"fmt"
	"sync"

	"github.com/klokku/klokku-calendar/internal/event_bus"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

// Persistence carries out mutations against the calendar backend. Create and Update
// return the server's copy of the event. List returns everything stored, for the
// initial Load.
type Persistence interface {
	List(ctx context.Context) ([]calendar.Event, error)
	Create(ctx context.Context, event calendar.Event) (calendar.Event, error)
	Update(ctx context.Context, event calendar.Event) (calendar.Event, error)
	Delete(ctx context.Context, id string) error
}

// Syncer runs every mutation the store requests in its own goroutine and feeds the
// outcome back as SaveConfirmed or Reject. Responses may arrive in any order.
type Syncer struct {
	store       *Store
	persistence Persistence
	wg          sync.WaitGroup
	unsubscribe func()
}

func NewSyncer(store *Store, bus *event_bus.EventBus, persistence Persistence) *Syncer {
	s := &Syncer{store: store, persistence: persistence}
	s.unsubscribe = event_bus.SubscribeTyped[event_bus.MutationRequested](bus, event_bus.TypeMutationRequested, s.onMutation)
	return s
}

func (s *Syncer) onMutation(e event_bus.EventT[event_bus.MutationRequested]) error {
	m := e.Data
	ctx := context.WithoutCancel(e.Context())
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.apply(ctx, m)
	}()
	return nil
}

func (s *Syncer) apply(ctx context.Context, m event_bus.MutationRequested) {
	var (
		server calendar.Event
		err    error
	)
	switch MutationKind(m.Kind) {
	case MutationCreate:
		server, err = s.persistence.Create(ctx, m.Event)
	case MutationUpdate:
		server, err = s.persistence.Update(ctx, m.Event)
	case MutationDelete:
		server = m.Event
		err = s.persistence.Delete(ctx, m.ID)
	default:
		err = fmt.Errorf("unknown mutation kind %q", m.Kind)
	}

	if err == nil {
		_, err = s.store.Dispatch(ctx, SaveConfirmed{ID: m.ID, Seq: m.Seq, Event: server})
		if err == nil {
			return
		}
		log.Errorf("unable to apply confirmed %s of event %s: %v", m.Kind, m.ID, err)
	} else {
		log.Warnf("%s of event %s (seq %d) failed: %v", m.Kind, m.ID, m.Seq, err)
	}
	if _, err := s.store.Dispatch(ctx, Reject{ID: m.ID, Seq: m.Seq, Reason: err.Error()}); err != nil {
		log.Errorf("unable to roll back event %s: %v", m.ID, err)
	}
}

// Wait blocks until every mutation started so far, and the follow-ups they
// triggered, has completed.
func (s *Syncer) Wait() {
	s.wg.Wait()
}

// Close stops listening for new mutations and waits for the running ones.
func (s *Syncer) Close() {
	s.unsubscribe()
	s.wg.Wait()
}
