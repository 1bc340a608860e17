package event_store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klokku/klokku-calendar/pkg/ics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePersistence(t *testing.T) {
	ctx := context.Background()
	codec := ics.NewCodec(ics.Options{DefaultZone: testZone})

	t.Run("should start empty without a file", func(t *testing.T) {
		// when
		p, err := NewFilePersistence(filepath.Join(t.TempDir(), "events.ics"), codec)

		// then
		require.NoError(t, err)
		events, err := p.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("should persist created events across reloads", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "data", "events.ics")
		p, err := NewFilePersistence(path, codec)
		require.NoError(t, err)

		// when
		created, err := p.Create(ctx, meeting(t, "draft-1", 9))
		require.NoError(t, err)

		// then
		assert.True(t, strings.HasSuffix(created.ID, "@klokku"))
		payload, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(payload), "UID:"+created.ID)

		reloaded, err := NewFilePersistence(path, codec)
		require.NoError(t, err)
		events, err := reloaded.List(ctx)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, created.ID, events[0].ID)
		assert.Equal(t, "Meeting draft-1", events[0].Title)
		assert.Equal(t, at(t, 9, 0), events[0].Start)
	})

	t.Run("should update and delete stored events", func(t *testing.T) {
		// given
		p, err := NewFilePersistence(filepath.Join(t.TempDir(), "events.ics"), codec)
		require.NoError(t, err)
		created, err := p.Create(ctx, meeting(t, "draft-1", 9))
		require.NoError(t, err)

		// when
		created.Title = "Renamed"
		_, err = p.Update(ctx, created)

		// then
		require.NoError(t, err)
		events, err := p.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", events[0].Title)

		// when
		err = p.Delete(ctx, created.ID)

		// then
		require.NoError(t, err)
		events, err = p.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("should fail for unknown events", func(t *testing.T) {
		// given
		p, err := NewFilePersistence(filepath.Join(t.TempDir(), "events.ics"), codec)
		require.NoError(t, err)

		// when
		_, updateErr := p.Update(ctx, meeting(t, "missing", 9))
		deleteErr := p.Delete(ctx, "missing")

		// then
		assert.ErrorIs(t, updateErr, ErrEventNotFound)
		assert.ErrorIs(t, deleteErr, ErrEventNotFound)
	})
}
