package timezone

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/klokku/klokku-calendar/internal/rest"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	log "github.com/sirupsen/logrus"
)

const civilQueryLayout = "2006-01-02T15:04:05"

type TransitionsDTO struct {
	Zone        string       `json:"zone"`
	Transitions []Transition `json:"transitions"`
}

type Handler struct {
	finder *Finder
}

func NewHandler(finder *Finder) *Handler {
	return &Handler{finder: finder}
}

// GetTransitions serves ?zone=..&start=..&count=..|until=.. . start and until accept an
// RFC3339 instant, a date or a wall-clock time read in zone.
func (h *Handler) GetTransitions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	zone := query.Get("zone")
	if zone == "" {
		rest.WriteError(w, http.StatusBadRequest, "Missing zone", "'zone' must be an IANA time zone name")
		return
	}

	start, err := parseQueryValue(query.Get("start"), zone)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid start", err.Error())
		return
	}

	var limit Limit
	if countString := query.Get("count"); countString != "" {
		count, err := strconv.Atoi(countString)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid count", "'count' must be a positive integer")
			return
		}
		limit.MaxTransitions = count
	}
	if limit.Until, err = parseQueryValue(query.Get("until"), zone); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid until", err.Error())
		return
	}

	transitions, err := h.finder.FindTransitions(zone, start, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidArgument):
			rest.WriteError(w, http.StatusBadRequest, "Invalid limit", err.Error())
		case errors.Is(err, temporal.ErrUnknownZone):
			rest.WriteError(w, http.StatusBadRequest, "Unknown zone", err.Error())
		default:
			log.Errorf("failed to find transitions for %s: %v", zone, err)
			rest.WriteError(w, http.StatusInternalServerError, "Transition search failed", err.Error())
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, TransitionsDTO{Zone: zone, Transitions: transitions})
}

func parseQueryValue(s, zone string) (temporal.Value, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return temporal.NewInstant(t), nil
	}
	if d, err := temporal.ParsePlainDate(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(civilQueryLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%q is neither an RFC3339 instant, a date nor a local date-time", s)
	}
	return temporal.Civil(temporal.PlainDateOf(t), t.Hour(), t.Minute(), t.Second(), zone)
}
