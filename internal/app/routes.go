package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Provider conversion
	r.HandleFunc("/api/import/{provider}", deps.CalendarMigratorHandler.Import).Methods("POST")
	r.HandleFunc("/api/export/{provider}", deps.CalendarMigratorHandler.Export).Methods("POST")
	r.HandleFunc("/api/convert", deps.CalendarMigratorHandler.Convert).Methods("POST")

	// Time zones
	r.HandleFunc("/api/timezone/transitions", deps.TimezoneHandler.GetTransitions).Methods("GET")

	// Event store
	r.HandleFunc("/api/events", deps.EventStoreHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/events/draft", deps.EventStoreHandler.CreateDraft).Methods("POST")
	r.HandleFunc("/api/events/{id}/save", deps.EventStoreHandler.SaveDraft).Methods("POST")
	r.HandleFunc("/api/events/{id}", deps.EventStoreHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/events/{id}/time", deps.EventStoreHandler.MoveEvent).Methods("PATCH")
	r.HandleFunc("/api/events/{id}", deps.EventStoreHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/events/{id}/selection", deps.EventStoreHandler.SelectEvent).Methods("PUT")
	r.HandleFunc("/api/events/{id}/selection", deps.EventStoreHandler.UnselectEvent).Methods("DELETE")
}
