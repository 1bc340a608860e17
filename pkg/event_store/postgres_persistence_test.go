package event_store

import (
	"context"
	"strings"
	"testing"

	"github.com/klokku/klokku-calendar/internal/test_utils"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresPersistence(t *testing.T) {
	db := test_utils.TestWithDB(t)
	ctx := context.Background()
	p, err := NewPostgresPersistence(db, testZone)
	require.NoError(t, err)

	t.Run("should create and list events by start", func(t *testing.T) {
		// given
		allDay := calendar.Event{ID: "draft-2", Title: "Holiday", AllDay: true,
			Start: temporal.Date(2024, 3, 4), End: temporal.Date(2024, 3, 4)}

		// when
		late, err := p.Create(ctx, meeting(t, "draft-1", 15))
		require.NoError(t, err)
		early, err := p.Create(ctx, allDay)
		require.NoError(t, err)

		// then
		assert.True(t, strings.HasSuffix(late.ID, "@klokku"))
		events, err := p.List(ctx)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, early.ID, events[0].ID)
		assert.Equal(t, temporal.Date(2024, 3, 4), events[0].End)
		assert.Equal(t, late.ID, events[1].ID)
		assert.Equal(t, at(t, 15, 0), events[1].Start)
	})

	t.Run("should update and delete an event", func(t *testing.T) {
		// given
		created, err := p.Create(ctx, meeting(t, "draft-3", 9))
		require.NoError(t, err)

		// when
		created.Title = "Moved"
		created.Start, created.End = at(t, 11, 0), at(t, 12, 0)
		_, err = p.Update(ctx, created)

		// then
		require.NoError(t, err)
		events, err := p.List(ctx)
		require.NoError(t, err)
		var found bool
		for _, e := range events {
			if e.ID == created.ID {
				found = true
				assert.Equal(t, "Moved", e.Title)
				assert.Equal(t, at(t, 11, 0), e.Start)
			}
		}
		assert.True(t, found)

		// when
		err = p.Delete(ctx, created.ID)

		// then
		require.NoError(t, err)
		assert.ErrorIs(t, p.Delete(ctx, created.ID), ErrEventNotFound)
	})

	t.Run("should fail to update a missing event", func(t *testing.T) {
		// when
		_, err := p.Update(ctx, meeting(t, "missing", 9))

		// then
		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}
