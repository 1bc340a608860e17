package event_store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrDuplicateID   = errors.New("event id already exists")
	ErrReadOnly      = errors.New("event is read-only")
	ErrNotDraft      = errors.New("event is not a draft")
	ErrPendingDelete = errors.New("event is being deleted")
)

// Reduce applies action to state and returns the new state. The input state is never
// modified; on error it is returned unchanged. Responses older than the entry's
// newest local mutation are ignored and reported through Effect.Stale.
func Reduce(state State, action Action) (State, Effect, error) {
	next := state.clone()
	var (
		effect Effect
		err    error
	)
	switch a := action.(type) {
	case Select:
		err = next.selectEvent(a.ID)
	case Unselect:
		next.unselect(a.ID)
	case Draft:
		err = next.draft(a)
	case Save:
		effect, err = next.save(a.ID)
	case Move:
		effect, err = next.move(a)
	case Update:
		effect, err = next.update(a.Event.ID, a.Event)
	case Delete:
		effect, err = next.delete(a.ID)
	case SaveConfirmed:
		effect, err = next.confirm(a)
	case Reject:
		effect = next.reject(a)
	case Load:
		effect = next.load(a.Events)
	default:
		err = fmt.Errorf("unsupported action %T", action)
	}
	if err != nil {
		return state, Effect{}, err
	}
	return next, effect, nil
}

func (s *State) lookup(id string) (Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return e, nil
}

func (s *State) selectEvent(id string) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if !e.Visible() {
		return fmt.Errorf("%w: %s", ErrPendingDelete, id)
	}
	s.selectID(id)
	return nil
}

func (s *State) draft(a Draft) error {
	e := a.Event.Clone()
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("draft: %w", calendar.ErrMissingID)
	}
	if _, ok := s.entries[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	if e.Start == nil {
		start, err := temporal.Zoned(a.At.Truncate(time.Minute), s.settings.DefaultTimeZone)
		if err != nil {
			return fmt.Errorf("draft default start: %w", err)
		}
		e.Start = start
	}
	if e.End == nil {
		if date, ok := e.Start.(temporal.PlainDate); ok {
			e.End = date
		} else {
			end, err := temporal.Add(e.Start, s.settings.DefaultEventDuration)
			if err != nil {
				return fmt.Errorf("draft default end: %w", err)
			}
			e.End = end
		}
	}
	e.AllDay = e.Start.Kind() == temporal.KindDate
	e.Color = e.Color.OrDefault()
	if err := calendar.Validate(e); err != nil {
		return err
	}
	s.put(Entry{Event: e, Status: StatusDraft})
	return nil
}

func (s *State) save(id string) (Effect, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Effect{}, err
	}
	if e.Status != StatusDraft {
		return Effect{}, fmt.Errorf("%w: %s is %s", ErrNotDraft, id, e.Status)
	}
	snapshot := e.Event.Clone()
	e.Seq = s.nextSeq()
	e.Status = StatusPendingCreate
	e.Snapshot = &snapshot
	e.SnapshotSeq = e.Seq
	s.entries[id] = e
	return Effect{Mutation: &Mutation{Kind: MutationCreate, ID: id, Seq: e.Seq, Event: e.Event.Clone()}}, nil
}

func (s *State) move(a Move) (Effect, error) {
	e, err := s.lookup(a.ID)
	if err != nil {
		return Effect{}, err
	}
	if a.Start == nil || a.End == nil {
		return Effect{}, fmt.Errorf("move: %w", calendar.ErrMissingTime)
	}
	moved := e.Event.Clone()
	moved.Start, moved.End = a.Start, a.End
	moved.AllDay = a.Start.Kind() == temporal.KindDate
	return s.update(a.ID, moved)
}

func (s *State) update(id string, updated calendar.Event) (Effect, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Effect{}, err
	}
	if !e.Visible() {
		return Effect{}, fmt.Errorf("%w: %s", ErrPendingDelete, id)
	}
	if e.Event.ReadOnly {
		return Effect{}, fmt.Errorf("%w: %s", ErrReadOnly, id)
	}
	updated = updated.Clone()
	updated.ID = id
	updated.Color = updated.Color.OrDefault()
	if err := calendar.Validate(updated); err != nil {
		return Effect{}, err
	}

	switch e.Status {
	case StatusDraft:
		e.Event = updated
		s.entries[id] = e
		return Effect{}, nil
	case StatusPendingCreate:
		// Sent as an update once the create confirms and the server id is known.
		e.Event = updated
		e.Seq = s.nextSeq()
		s.entries[id] = e
		return Effect{}, nil
	case StatusConfirmed:
		snapshot := e.Event.Clone()
		e.Snapshot = &snapshot
		e.SnapshotSeq = e.Seq
	}
	e.Event = updated
	e.Status = StatusPendingUpdate
	e.Seq = s.nextSeq()
	s.entries[id] = e
	return Effect{Mutation: &Mutation{Kind: MutationUpdate, ID: id, Seq: e.Seq, Event: updated.Clone()}}, nil
}

func (s *State) delete(id string) (Effect, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Effect{}, err
	}
	switch e.Status {
	case StatusDraft:
		s.remove(id)
		return Effect{}, nil
	case StatusPendingCreate:
		if !e.DeleteQueued {
			e.DeleteQueued = true
			e.Seq = s.nextSeq()
			s.entries[id] = e
			s.unselect(id)
		}
		return Effect{}, nil
	case StatusPendingDelete:
		return Effect{}, nil
	}
	if e.Event.ReadOnly {
		return Effect{}, fmt.Errorf("%w: %s", ErrReadOnly, id)
	}
	if e.Status == StatusConfirmed {
		snapshot := e.Event.Clone()
		e.Snapshot = &snapshot
		e.SnapshotSeq = e.Seq
	}
	e.Status = StatusPendingDelete
	e.Seq = s.nextSeq()
	s.entries[id] = e
	s.unselect(id)
	return Effect{Mutation: &Mutation{Kind: MutationDelete, ID: id, Seq: e.Seq, Event: e.Event.Clone()}}, nil
}

func (s *State) confirm(a SaveConfirmed) (Effect, error) {
	e, ok := s.entries[a.ID]
	if !ok || a.Seq > e.Seq {
		return Effect{Stale: true}, nil
	}

	switch e.Status {
	case StatusPendingCreate:
		if a.Seq != e.SnapshotSeq {
			return Effect{Stale: true}, nil
		}
		server, err := serverCopy(a)
		if err != nil {
			return Effect{}, err
		}
		switch {
		case e.DeleteQueued:
			next := Entry{Event: server, Status: StatusPendingDelete, Seq: s.nextSeq(), Snapshot: &server, SnapshotSeq: a.Seq}
			s.rekey(a.ID, next)
			return Effect{Mutation: &Mutation{Kind: MutationDelete, ID: server.ID, Seq: next.Seq, Event: server.Clone()}}, nil
		case a.Seq < e.Seq:
			local := e.Event.Clone()
			local.ID = server.ID
			next := Entry{Event: local, Status: StatusPendingUpdate, Seq: s.nextSeq(), Snapshot: &server, SnapshotSeq: a.Seq}
			s.rekey(a.ID, next)
			return Effect{Mutation: &Mutation{Kind: MutationUpdate, ID: server.ID, Seq: next.Seq, Event: local.Clone()}}, nil
		}
		s.rekey(a.ID, Entry{Event: server, Status: StatusConfirmed, Seq: e.Seq})
		return Effect{}, nil

	case StatusPendingUpdate, StatusPendingDelete:
		if a.Seq < e.Seq {
			// Still the newest state the server is known to hold.
			if a.Seq > e.SnapshotSeq {
				if server, err := serverCopy(a); err == nil && server.ID == a.ID {
					e.Snapshot = &server
					e.SnapshotSeq = a.Seq
					s.entries[a.ID] = e
				}
			}
			return Effect{Stale: true}, nil
		}
		if e.Status == StatusPendingDelete {
			s.remove(a.ID)
			return Effect{}, nil
		}
		server, err := serverCopy(a)
		if err != nil {
			return Effect{}, err
		}
		s.rekey(a.ID, Entry{Event: server, Status: StatusConfirmed, Seq: e.Seq})
		return Effect{}, nil
	}
	return Effect{Stale: true}, nil
}

// serverCopy validates the server's version of the event. A response without an id
// keeps the local one.
func serverCopy(a SaveConfirmed) (calendar.Event, error) {
	server := a.Event.Clone()
	if strings.TrimSpace(server.ID) == "" {
		server.ID = a.ID
	}
	server.Color = server.Color.OrDefault()
	if err := calendar.Validate(server); err != nil {
		return calendar.Event{}, fmt.Errorf("server response for %s: %w", a.ID, err)
	}
	return server, nil
}

func (s *State) reject(a Reject) Effect {
	e, ok := s.entries[a.ID]
	if !ok {
		return Effect{Stale: true}
	}
	switch e.Status {
	case StatusPendingCreate:
		if a.Seq != e.SnapshotSeq {
			return Effect{Stale: true}
		}
		if e.DeleteQueued {
			s.remove(a.ID)
			return Effect{}
		}
		// Edits made while the create was in flight stay; drafts are local anyway.
		e.Status = StatusDraft
		e.Snapshot = nil
		e.SnapshotSeq = 0
		s.entries[a.ID] = e
		return Effect{}
	case StatusPendingUpdate, StatusPendingDelete:
		if a.Seq != e.Seq || e.Snapshot == nil {
			return Effect{Stale: true}
		}
		s.entries[a.ID] = Entry{Event: e.Snapshot.Clone(), Status: StatusConfirmed, Seq: e.Seq}
		return Effect{}
	}
	return Effect{Stale: true}
}

func (s *State) load(events []calendar.Event) Effect {
	var effect Effect
	for _, event := range events {
		if err := calendar.Validate(event); err != nil {
			effect.Failures = append(effect.Failures, fmt.Errorf("event %s: %w", event.ID, err))
			continue
		}
		existing, ok := s.entries[event.ID]
		if ok && existing.Status != StatusConfirmed {
			continue
		}
		event = event.Clone()
		event.Color = event.Color.OrDefault()
		s.put(Entry{Event: event, Status: StatusConfirmed, Seq: existing.Seq})
	}
	return effect
}
