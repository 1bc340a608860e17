package timezone

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klokku/klokku-calendar/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandler() *Handler {
	clock := &utils.MockClock{FixedNow: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewHandler(NewFinder(clock))
}

func TestHandler_GetTransitions(t *testing.T) {
	handler := setupHandler()

	t.Run("should return next transitions by count", func(t *testing.T) {
		// given
		req := httptest.NewRequest(http.MethodGet, "/api/timezone/transitions?zone=America/New_York&count=2", nil)
		w := httptest.NewRecorder()

		// when
		handler.GetTransitions(w, req)

		// then
		require.Equal(t, http.StatusOK, w.Code)
		var dto TransitionsDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "America/New_York", dto.Zone)
		require.Len(t, dto.Transitions, 2)
		assert.Equal(t, "2024-03-10T07:00:00Z", dto.Transitions[0].Instant.String())
		assert.Equal(t, "-05:00", dto.Transitions[0].OffsetBefore)
		assert.Equal(t, "-04:00", dto.Transitions[0].OffsetAfter)
		assert.Equal(t, "2024-11-03T06:00:00Z", dto.Transitions[1].Instant.String())
	})

	t.Run("should accept date start and until", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/timezone/transitions?zone=Europe/Warsaw&start=2024-06-01&until=2025-06-01", nil)
		w := httptest.NewRecorder()

		handler.GetTransitions(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var dto TransitionsDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		require.Len(t, dto.Transitions, 2)
		assert.Equal(t, "2024-10-27T01:00:00Z", dto.Transitions[0].Instant.String())
		assert.Equal(t, "2025-03-30T01:00:00Z", dto.Transitions[1].Instant.String())
	})

	t.Run("should return empty list for fixed offset zone", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/timezone/transitions?zone=Asia/Kolkata&count=3", nil)
		w := httptest.NewRecorder()

		handler.GetTransitions(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"zone":"Asia/Kolkata","transitions":[]}`, w.Body.String())
	})

	t.Run("should reject bad requests", func(t *testing.T) {
		for _, query := range []string{
			"",
			"?zone=Europe/Warsaw",
			"?zone=Europe/Warsaw&count=2&until=2025-01-01",
			"?zone=Europe/Warsaw&count=two",
			"?zone=Europe/Warsaw&count=-1",
			"?zone=Mars/Olympus&count=1",
			"?zone=Europe/Warsaw&count=1&start=yesterday",
		} {
			req := httptest.NewRequest(http.MethodGet, "/api/timezone/transitions"+query, nil)
			w := httptest.NewRecorder()

			handler.GetTransitions(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, query)
		}
	})
}
