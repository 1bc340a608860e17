package event_store

import (
	"time"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
)

// Action is one of the store's inputs. The set is closed.
type Action interface {
	actionName() string
}

type Select struct{ ID string }

type Unselect struct{ ID string }

// Draft adds an unsaved event. Missing times are filled from the settings, starting
// at At.
type Draft struct {
	Event calendar.Event
	At    time.Time
}

// Save sends a draft's create request.
type Save struct{ ID string }

type Move struct {
	ID    string
	Start temporal.Value
	End   temporal.Value
}

// Update replaces an event's fields; the id selects the entry.
type Update struct{ Event calendar.Event }

type Delete struct{ ID string }

// SaveConfirmed reports that the server accepted mutation Seq of entry ID. Event is
// the server's copy and is ignored for deletes.
type SaveConfirmed struct {
	ID    string
	Seq   uint64
	Event calendar.Event
}

type Reject struct {
	ID     string
	Seq    uint64
	Reason string
}

// Load merges events fetched from the server.
type Load struct{ Events []calendar.Event }

func (Select) actionName() string        { return "select" }
func (Unselect) actionName() string      { return "unselect" }
func (Draft) actionName() string         { return "draft" }
func (Save) actionName() string          { return "save" }
func (Move) actionName() string          { return "move" }
func (Update) actionName() string        { return "update" }
func (Delete) actionName() string        { return "delete" }
func (SaveConfirmed) actionName() string { return "saveConfirmed" }
func (Reject) actionName() string        { return "reject" }
func (Load) actionName() string          { return "load" }

// ActionName returns the wire name of a.
func ActionName(a Action) string {
	return a.actionName()
}

type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Mutation is a request the persistence collaborator must carry out. Its response
// comes back as SaveConfirmed or Reject with the same ID and Seq.
type Mutation struct {
	Kind  MutationKind
	ID    string
	Seq   uint64
	Event calendar.Event
}

// Effect describes what a reduction did besides changing the state.
type Effect struct {
	Mutation *Mutation
	// Stale is set when a server response was superseded by a newer local mutation.
	Stale bool
	// Failures lists events Load skipped.
	Failures []error
}
