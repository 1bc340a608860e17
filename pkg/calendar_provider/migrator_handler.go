package calendar_provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/klokku/klokku-calendar/internal/rest"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

const maxPayloadBytes = 10 << 20

type ImportResultDTO struct {
	Events   []calendar.EventDTO `json:"events"`
	Failures []string            `json:"failures"`
}

type MigrationStatusDTO struct {
	Status         string   `json:"status"`
	MigratedEvents int      `json:"migratedEvents"`
	Failures       []string `json:"failures"`
	Payload        string   `json:"payload"`
}

type MigratorHandler struct {
	provider *CalendarProvider
	migrator *EventsMigrator
}

func NewMigratorHandler(provider *CalendarProvider, migrator *EventsMigrator) *MigratorHandler {
	return &MigratorHandler{
		provider: provider,
		migrator: migrator,
	}
}

func (h *MigratorHandler) Import(w http.ResponseWriter, r *http.Request) {
	provider := calendar.ProviderID(mux.Vars(r)["provider"])
	payload, ok := readPayload(w, r)
	if !ok {
		return
	}

	result, err := h.provider.Import(provider, payload)
	if err != nil {
		writeProviderError(w, err)
		return
	}

	dto := ImportResultDTO{
		Events:   make([]calendar.EventDTO, 0, len(result.Events)),
		Failures: errorStrings(result.Failures),
	}
	for _, e := range result.Events {
		dto.Events = append(dto.Events, calendar.EventToDTO(e))
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

func (h *MigratorHandler) Export(w http.ResponseWriter, r *http.Request) {
	provider := calendar.ProviderID(mux.Vars(r)["provider"])
	var dtos []calendar.EventDTO
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&dtos); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	events := make([]calendar.Event, 0, len(dtos))
	for i, dto := range dtos {
		e, err := calendar.DTOToEvent(dto)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid event", fmt.Sprintf("events[%d]: %v", i, err))
			return
		}
		events = append(events, e)
	}

	payload, err := h.provider.Export(provider, events)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(provider))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		log.Errorf("failed to write %s export: %v", provider, err)
	}
}

func (h *MigratorHandler) Convert(w http.ResponseWriter, r *http.Request) {
	from := calendar.ProviderID(r.URL.Query().Get("from"))
	to := calendar.ProviderID(r.URL.Query().Get("to"))
	if !from.Valid() || !to.Valid() {
		rest.WriteError(w, http.StatusBadRequest, "Invalid provider",
			"'from' and 'to' must be one of: google, microsoft, ics")
		return
	}
	payload, ok := readPayload(w, r)
	if !ok {
		return
	}

	result, err := h.migrator.Migrate(from, to, payload)
	if err != nil {
		writeProviderError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, MigrationStatusDTO{
		Status:         "COMPLETED",
		MigratedEvents: result.MigratedEvents,
		Failures:       errorStrings(result.Failures),
		Payload:        string(result.Payload),
	})
}

func readPayload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Unable to read request body", err.Error())
		return nil, false
	}
	return payload, true
}

func writeProviderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownProvider):
		rest.WriteError(w, http.StatusNotFound, "Unknown provider", err.Error())
	case errors.Is(err, ErrBatchUnsupported):
		rest.WriteError(w, http.StatusBadRequest, "Too many events", err.Error())
	default:
		var validation calendar.ValidationErrors
		if errors.As(err, &validation) {
			rest.WriteError(w, http.StatusUnprocessableEntity, "Invalid event", err.Error())
			return
		}
		log.Errorf("provider operation failed: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Conversion failed", err.Error())
	}
}

func contentType(provider calendar.ProviderID) string {
	if provider == calendar.ProviderICS {
		return "text/calendar; charset=utf-8"
	}
	return "application/json"
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
