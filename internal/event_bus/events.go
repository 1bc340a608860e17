package event_bus

import "github.com/klokku/klokku-calendar/pkg/calendar"

const (
	TypeStoreChanged      EventType = "store.changed"
	TypeMutationRequested EventType = "store.mutation_requested"
)

// StoreChanged is published after every action that changed the event store.
type StoreChanged struct {
	Action   string
	Events   int
	Selected []string
}

// MutationRequested asks the persistence layer to carry out a create, update or
// delete. The outcome must be reported back with the same ID and Seq.
type MutationRequested struct {
	Kind  string
	ID    string
	Seq   uint64
	Event calendar.Event
}
