package event_bus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrHandlerPanic wraps a panic recovered from a subscriber.
var ErrHandlerPanic = errors.New("event handler panicked")

type EventType string

// Event carries one store notification. Data holds the payload declared for Type in
// events.go.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{ctx: ctx, Type: eventType, Timestamp: time.Now(), Data: data}
}

// Context is the context of the dispatch that produced the event, or Background.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT is Event with Data already asserted to T.
type EventT[T any] struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      T
}

func (e EventT[T]) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

type subscription struct {
	id uint64
	h  func(Event) error
}

// EventBus delivers events synchronously, in subscription order, on the publishing
// goroutine. Handlers may dispatch back into the Store.
type EventBus struct {
	mu     sync.RWMutex
	subs   map[EventType][]subscription
	nextID uint64
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[EventType][]subscription)}
}

// Subscribe adds h for eventType. The returned function removes it and is safe to
// call more than once.
func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) (unsubscribe func()) {
	eb.mu.Lock()
	eb.nextID++
	id := eb.nextID
	eb.subs[eventType] = append(eb.subs[eventType], subscription{id: id, h: h})
	eb.mu.Unlock()

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		remaining := slices.DeleteFunc(eb.subs[eventType], func(s subscription) bool { return s.id == id })
		if len(remaining) == 0 {
			delete(eb.subs, eventType)
			return
		}
		eb.subs[eventType] = remaining
	}
}

// SubscribeTyped subscribes h to events whose Data is a T. Events with another
// payload are skipped. It is a function because methods cannot take type parameters.
//
//	unsubscribe := event_bus.SubscribeTyped(bus, event_bus.TypeMutationRequested,
//	    func(e event_bus.EventT[event_bus.MutationRequested]) error {
//	        log.Infof("sending %s for event %s (seq %d)", e.Data.Kind, e.Data.ID, e.Data.Seq)
//	        return nil
//	    })
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(EventT[T]) error) (unsubscribe func()) {
	return eb.Subscribe(eventType, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Debugf("skipping %s handler: payload is %T, want %T", eventType, e.Data, *new(T))
			return nil
		}
		return h(EventT[T]{ctx: e.ctx, Type: e.Type, Timestamp: e.Timestamp, Data: payload})
	})
}

// Publish runs every handler of e.Type. A failing or panicking handler does not stop
// the others; their errors are joined into the result. A cancelled context stops
// delivery.
func (eb *EventBus) Publish(e Event) error {
	ctx := e.Context()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("event %s not published: %w", e.Type, err)
	}

	eb.mu.RLock()
	subs := slices.Clone(eb.subs[e.Type])
	eb.mu.RUnlock()

	var errs []error
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("delivery interrupted: %w", err))
			break
		}
		if err := deliver(sub, e); err != nil {
			log.Errorf("handler %d failed on %s: %v", sub.id, e.Type, err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("event %s: %d handler(s) failed: %w", e.Type, len(errs), errors.Join(errs...))
	}
	return nil
}

func deliver(sub subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return sub.h(e)
}
