package event_store

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/klokku-calendar/internal/rest"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	log "github.com/sirupsen/logrus"
)

type EntryDTO struct {
	calendar.EventDTO
	SyncStatus Status `json:"syncStatus"`
}

type EventsDTO struct {
	Events   []EntryDTO `json:"events"`
	Selected []string   `json:"selected"`
	Primary  string     `json:"primary,omitempty"`
}

type MoveDTO struct {
	Start temporal.Wire `json:"start"`
	End   temporal.Wire `json:"end"`
}

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	state := h.store.State()
	events := state.Events()
	dto := EventsDTO{
		Events:   make([]EntryDTO, 0, len(events)),
		Selected: state.Selected(),
	}
	for _, e := range events {
		entry, _ := state.Entry(e.ID)
		dto.Events = append(dto.Events, EntryDTO{EventDTO: calendar.EventToDTO(e), SyncStatus: entry.Status})
	}
	dto.Primary, _ = state.Primary()
	rest.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	event, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	draft, err := h.store.Draft(r.Context(), event)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.writeEntry(w, http.StatusCreated, draft.ID)
}

func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Save(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	h.writeEntry(w, http.StatusAccepted, id)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	event, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	event.ID = id
	if err := h.store.Update(r.Context(), event); err != nil {
		writeStoreError(w, err)
		return
	}
	h.writeEntry(w, http.StatusOK, id)
}

func (h *Handler) MoveEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var dto MoveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	start, err := temporal.FromWire(dto.Start)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid start", err.Error())
		return
	}
	end, err := temporal.FromWire(dto.End)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid end", err.Error())
		return
	}
	if err := h.store.Move(r.Context(), id, start, end); err != nil {
		writeStoreError(w, err)
		return
	}
	h.writeEntry(w, http.StatusOK, id)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SelectEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Select(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnselectEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Unselect(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeEntry(w http.ResponseWriter, status int, id string) {
	entry, ok := h.store.Entry(id)
	if !ok {
		// The entry can be re-keyed by a fast server response.
		w.WriteHeader(status)
		return
	}
	rest.WriteJSON(w, status, EntryDTO{EventDTO: calendar.EventToDTO(entry.Event), SyncStatus: entry.Status})
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (calendar.Event, bool) {
	var dto calendar.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return calendar.Event{}, false
	}
	event, err := calendar.DTOToEvent(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
		return calendar.Event{}, false
	}
	return event, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	var validation calendar.ValidationErrors
	switch {
	case errors.Is(err, ErrEventNotFound):
		rest.WriteError(w, http.StatusNotFound, "Event not found", err.Error())
	case errors.Is(err, ErrReadOnly):
		rest.WriteError(w, http.StatusForbidden, "Event is read-only", err.Error())
	case errors.Is(err, ErrNotDraft), errors.Is(err, ErrDuplicateID), errors.Is(err, ErrPendingDelete):
		rest.WriteError(w, http.StatusConflict, "Event state conflict", err.Error())
	case errors.As(err, &validation), errors.Is(err, calendar.ErrMissingID), errors.Is(err, calendar.ErrMissingTime):
		rest.WriteError(w, http.StatusUnprocessableEntity, "Invalid event", err.Error())
	default:
		log.Errorf("event store operation failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Event store failure", err.Error())
	}
}
