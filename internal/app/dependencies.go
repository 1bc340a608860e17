package app

import (
	"github.com/klokku/klokku-calendar/internal/config"
	"github.com/klokku/klokku-calendar/internal/event_bus"
	"github.com/klokku/klokku-calendar/internal/utils"
	"github.com/klokku/klokku-calendar/pkg/calendar_provider"
	"github.com/klokku/klokku-calendar/pkg/event_store"
	"github.com/klokku/klokku-calendar/pkg/google"
	"github.com/klokku/klokku-calendar/pkg/ics"
	"github.com/klokku/klokku-calendar/pkg/microsoft"
	"github.com/klokku/klokku-calendar/pkg/timezone"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	ICSCodec                *ics.Codec
	CalendarProvider        *calendar_provider.CalendarProvider
	CalendarMigrator        *calendar_provider.EventsMigrator
	CalendarMigratorHandler *calendar_provider.MigratorHandler

	TransitionFinder *timezone.Finder
	TimezoneHandler  *timezone.Handler

	Persistence       event_store.Persistence
	EventStore        *event_store.Store
	EventSyncer       *event_store.Syncer
	EventStoreHandler *event_store.Handler
}

func newICSCodec(cfg config.Application) *ics.Codec {
	return ics.NewCodec(ics.Options{
		AccountID:   cfg.Provider.AccountID,
		CalendarID:  cfg.Provider.CalendarID,
		DefaultZone: cfg.ICS.DefaultTimeZone,
		ProductID:   cfg.ICS.ProductID,
	})
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(cfg config.Application, icsCodec *ics.Codec, persistence event_store.Persistence) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.ICSCodec = icsCodec
	deps.CalendarProvider = calendar_provider.NewCalendarProvider(
		deps.ICSCodec,
		google.NewCodec(cfg.Provider.AccountID, cfg.Provider.CalendarID),
		microsoft.NewCodec(cfg.Provider.AccountID, cfg.Provider.CalendarID),
	)
	deps.CalendarMigrator = calendar_provider.NewEventsMigrator(deps.CalendarProvider)
	deps.CalendarMigratorHandler = calendar_provider.NewMigratorHandler(deps.CalendarProvider, deps.CalendarMigrator)

	deps.TransitionFinder = timezone.NewFinder(deps.Clock)
	deps.TimezoneHandler = timezone.NewHandler(deps.TransitionFinder)

	deps.Persistence = persistence
	deps.EventStore = event_store.NewStore(event_store.Settings{
		DefaultTimeZone:      cfg.Store.DefaultTimeZone,
		DefaultEventDuration: cfg.Store.DefaultEventDuration,
		WeekStartsOn:         cfg.Store.Weekday(),
	}, deps.EventBus, deps.Clock)
	deps.EventSyncer = event_store.NewSyncer(deps.EventStore, deps.EventBus, deps.Persistence)
	deps.EventStoreHandler = event_store.NewHandler(deps.EventStore)

	return deps
}
