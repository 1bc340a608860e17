package event_store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/klokku/klokku-calendar/internal/event_bus"
	"github.com/klokku/klokku-calendar/internal/utils"
	"github.com/klokku/klokku-calendar/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePersistence struct {
	mu      sync.Mutex
	gate    chan struct{}
	fail    error
	nextID  int
	deleted []string
}

func (f *fakePersistence) List(ctx context.Context) ([]calendar.Event, error) {
	return nil, nil
}

func (f *fakePersistence) Create(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return calendar.Event{}, f.fail
	}
	f.nextID++
	event.ID = fmt.Sprintf("evt-%d", f.nextID)
	return event, nil
}

func (f *fakePersistence) Update(ctx context.Context, event calendar.Event) (calendar.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return calendar.Event{}, f.fail
	}
	return event, nil
}

func (f *fakePersistence) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func setupSyncer(persistence *fakePersistence) (*Store, *Syncer, *event_bus.EventBus) {
	bus := event_bus.NewEventBus()
	clock := &utils.MockClock{FixedNow: time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)}
	store := NewStore(Settings{DefaultTimeZone: testZone}, bus, clock)
	return store, NewSyncer(store, bus, persistence), bus
}

func TestSyncer(t *testing.T) {
	ctx := context.Background()

	t.Run("should confirm a saved draft under the server id", func(t *testing.T) {
		// given
		store, syncer, _ := setupSyncer(&fakePersistence{})
		defer syncer.Close()
		draft, err := store.Draft(ctx, calendar.Event{Title: "Review"})
		require.NoError(t, err)
		assert.True(t, draft.IsDraft())

		// when
		require.NoError(t, store.Save(ctx, draft.ID))
		syncer.Wait()

		// then
		entry, ok := store.Entry("evt-1")
		require.True(t, ok)
		assert.Equal(t, StatusConfirmed, entry.Status)
		assert.Equal(t, "Review", entry.Event.Title)
		_, ok = store.Entry(draft.ID)
		assert.False(t, ok)
	})

	t.Run("should roll back a failed update", func(t *testing.T) {
		// given
		persistence := &fakePersistence{fail: errors.New("conflict")}
		store, syncer, _ := setupSyncer(persistence)
		defer syncer.Close()
		require.Empty(t, store.Load(ctx, []calendar.Event{meeting(t, "a", 9)}))

		// when
		require.NoError(t, store.Move(ctx, "a", at(t, 15, 0), at(t, 16, 0)))
		syncer.Wait()

		// then
		entry, _ := store.Entry("a")
		assert.Equal(t, StatusConfirmed, entry.Status)
		assert.Equal(t, at(t, 9, 0), entry.Event.Start)
	})

	t.Run("should delete a draft removed while its create was in flight", func(t *testing.T) {
		// given
		persistence := &fakePersistence{gate: make(chan struct{})}
		store, syncer, _ := setupSyncer(persistence)
		defer syncer.Close()
		draft, err := store.Draft(ctx, calendar.Event{Title: "Short-lived"})
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, draft.ID))

		// when
		require.NoError(t, store.Delete(ctx, draft.ID))
		close(persistence.gate)
		syncer.Wait()

		// then
		assert.Equal(t, 0, store.State().Len())
		assert.Equal(t, []string{"evt-1"}, persistence.deleted)
	})

	t.Run("should announce store changes", func(t *testing.T) {
		// given
		store, syncer, bus := setupSyncer(&fakePersistence{})
		defer syncer.Close()
		var actions []string
		var mu sync.Mutex
		unsubscribe := event_bus.SubscribeTyped[event_bus.StoreChanged](bus, event_bus.TypeStoreChanged,
			func(e event_bus.EventT[event_bus.StoreChanged]) error {
				mu.Lock()
				defer mu.Unlock()
				actions = append(actions, e.Data.Action)
				return nil
			})
		defer unsubscribe()

		// when
		draft, err := store.Draft(ctx, calendar.Event{Title: "Announce"})
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, draft.ID))
		syncer.Wait()

		// then
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"draft", "save", "saveConfirmed"}, actions)
	})
}
