package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/klokku-calendar/internal/config"
	"github.com/klokku/klokku-calendar/internal/database"
	"github.com/klokku/klokku-calendar/pkg/event_store"
	"github.com/klokku/klokku-calendar/pkg/ics"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, persistence, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	deps   *Dependencies
	db     *pgxpool.Pool
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}
	ctx := context.Background()

	icsCodec := newICSCodec(cfg)
	persistence, db, err := openPersistence(ctx, cfg, icsCodec)
	if err != nil {
		return nil, err
	}

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(cfg, icsCodec, persistence)

	release := func() {
		deps.EventSyncer.Close()
		if db != nil {
			db.Close()
		}
	}
	if err := loadStore(ctx, deps.EventStore, persistence, release); err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Middleware chain
	SetupMiddleware(r)

	// Routes
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, db: db, router: r, srv: srv}, nil
}

// openPersistence picks the backend confirmed events are written to. The pool is nil
// for the file backend.
func openPersistence(ctx context.Context, cfg config.Application, icsCodec *ics.Codec) (event_store.Persistence, *pgxpool.Pool, error) {
	switch cfg.Store.Backend {
	case "postgres":
		databaseURL := database.URL(cfg.Database)
		if err := database.Migrate(databaseURL); err != nil {
			return nil, nil, err
		}
		db, err := database.Open(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		persistence, err := event_store.NewPostgresPersistence(db, cfg.Store.DefaultTimeZone)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return persistence, db, nil
	case "file", "":
		persistence, err := event_store.NewFilePersistence(cfg.Store.File, icsCodec)
		return persistence, nil, err
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// loadStore seeds the store with the persisted events. release is called when they
// cannot be read.
func loadStore(ctx context.Context, store *event_store.Store, persistence event_store.Persistence, release func()) error {
	events, err := persistence.List(ctx)
	if err != nil {
		release()
		return fmt.Errorf("failed to load stored events: %w", err)
	}
	if failures := store.Load(ctx, events); len(failures) > 0 {
		log.Warnf("%d stored events could not be loaded", len(failures))
	}
	log.Infof("Event store loaded with %d events", len(store.Events()))
	return nil
}

// Run starts the HTTP server and blocks until it fails or ctx is cancelled. Pending
// mutations are drained and the database is closed once the server stops.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	errs := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errs <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	}
}

func (a *Application) close() {
	a.deps.EventSyncer.Close()
	if a.db != nil {
		a.db.Close()
	}
}
