package event_store

import (
	"slices"
	"time"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
)

type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingCreate Status = "pending-create"
	StatusConfirmed     Status = "confirmed"
	StatusPendingUpdate Status = "pending-update"
	StatusPendingDelete Status = "pending-delete"
)

// Settings are the defaults the store applies to new drafts.
type Settings struct {
	DefaultTimeZone      string
	DefaultEventDuration time.Duration
	// WeekStartsOn is carried for presentation layers only.
	WeekStartsOn time.Weekday
}

// Entry is one event together with its synchronisation bookkeeping.
type Entry struct {
	Event  calendar.Event
	Status Status
	// Seq is the sequence number of the newest local mutation of this entry.
	Seq uint64
	// Snapshot is the last known-good state, restored when the in-flight mutation is
	// rejected. It is nil while nothing is in flight.
	Snapshot *calendar.Event
	// SnapshotSeq is the mutation that produced Snapshot; for a pending create it is
	// the create request itself.
	SnapshotSeq uint64
	// DeleteQueued marks a draft deleted while its create request was in flight.
	DeleteQueued bool
}

// Visible reports whether the entry belongs to the rendered event list.
func (e Entry) Visible() bool {
	return e.Status != StatusPendingDelete && !e.DeleteQueued
}

// InFlight reports whether a server response is outstanding.
func (e Entry) InFlight() bool {
	switch e.Status {
	case StatusPendingCreate, StatusPendingUpdate, StatusPendingDelete:
		return true
	}
	return false
}

func (e Entry) clone() Entry {
	e.Event = e.Event.Clone()
	if e.Snapshot != nil {
		snapshot := e.Snapshot.Clone()
		e.Snapshot = &snapshot
	}
	return e
}

// State is an immutable value; Reduce always returns a new one.
type State struct {
	settings  Settings
	entries   map[string]Entry
	order     []string
	selection []string
	lastSeq   uint64
}

func NewState(settings Settings) State {
	if settings.DefaultTimeZone == "" {
		settings.DefaultTimeZone = "UTC"
	}
	if settings.DefaultEventDuration <= 0 {
		settings.DefaultEventDuration = time.Hour
	}
	return State{settings: settings, entries: map[string]Entry{}}
}

func (s State) Settings() Settings {
	return s.settings
}

// Entry returns a copy of the entry stored under id, including hidden ones.
func (s State) Entry(id string) (Entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Events returns the visible events ordered by start, resolving dates in the
// default time zone. Events starting together keep insertion order.
func (s State) Events() []calendar.Event {
	loc, err := temporal.LoadZone(s.settings.DefaultTimeZone)
	if err != nil {
		loc = time.UTC
	}
	type keyed struct {
		event calendar.Event
		start time.Time
	}
	visible := make([]keyed, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		if !e.Visible() {
			continue
		}
		var start time.Time
		if resolved, err := temporal.ResolveToInstant(e.Event.Start, loc); err == nil {
			start = resolved.Time()
		}
		visible = append(visible, keyed{event: e.Event.Clone(), start: start})
	}
	slices.SortStableFunc(visible, func(a, b keyed) int {
		return a.start.Compare(b.start)
	})
	events := make([]calendar.Event, 0, len(visible))
	for _, k := range visible {
		events = append(events, k.event)
	}
	return events
}

// Selected returns selected ids, most recently selected first.
func (s State) Selected() []string {
	return slices.Clone(s.selection)
}

// Primary returns the most recently selected id.
func (s State) Primary() (string, bool) {
	if len(s.selection) == 0 {
		return "", false
	}
	return s.selection[0], true
}

// Len counts every entry, hidden ones included.
func (s State) Len() int {
	return len(s.entries)
}

func (s State) clone() State {
	entries := make(map[string]Entry, len(s.entries))
	for id, e := range s.entries {
		entries[id] = e.clone()
	}
	s.entries = entries
	s.order = slices.Clone(s.order)
	s.selection = slices.Clone(s.selection)
	return s
}

func (s *State) nextSeq() uint64 {
	s.lastSeq++
	return s.lastSeq
}

func (s *State) put(e Entry) {
	if _, ok := s.entries[e.Event.ID]; !ok {
		s.order = append(s.order, e.Event.ID)
	}
	s.entries[e.Event.ID] = e
}

func (s *State) remove(id string) {
	delete(s.entries, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	s.unselect(id)
}

// rekey moves the entry stored under oldID to e.Event.ID, keeping its position in
// the order and the selection.
func (s *State) rekey(oldID string, e Entry) {
	newID := e.Event.ID
	if _, taken := s.entries[newID]; taken && newID != oldID {
		s.remove(newID)
	}
	delete(s.entries, oldID)
	s.entries[newID] = e
	for i, id := range s.order {
		if id == oldID {
			s.order[i] = newID
		}
	}
	for i, id := range s.selection {
		if id == oldID {
			s.selection[i] = newID
		}
	}
}

func (s *State) selectID(id string) {
	s.unselect(id)
	s.selection = slices.Insert(s.selection, 0, id)
}

func (s *State) unselect(id string) {
	s.selection = slices.DeleteFunc(s.selection, func(o string) bool { return o == id })
}
