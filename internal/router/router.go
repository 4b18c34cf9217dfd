package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/neptou/go-travel-assistant/internal/api/assistant"
	"github.com/neptou/go-travel-assistant/internal/api/itinerary"
	"github.com/neptou/go-travel-assistant/internal/api/knowledge"
	"github.com/neptou/go-travel-assistant/internal/api/location"
	"github.com/neptou/go-travel-assistant/internal/api/trips"
)

// Config contains dependencies needed for the router setup
type Config struct {
	KnowledgeHandler *knowledge.Handler
	LocationHandler  *location.Handler
	ItineraryHandler *itinerary.Handler
	TripsHandler     *trips.Handler
	AssistantHandler *assistant.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", cfg.KnowledgeHandler.Search)
		r.Post("/knowledge/reload", cfg.KnowledgeHandler.ReloadIndex)

		r.Get("/places", cfg.LocationHandler.ListPlaces)
		r.Get("/locations/resolve", cfg.LocationHandler.ResolveLocation)

		r.Post("/itinerary/optimize", cfg.ItineraryHandler.Optimize)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", cfg.TripsHandler.SaveTrip)
			r.Get("/", cfg.TripsHandler.ListTrips)
			r.Get("/{tripID}", cfg.TripsHandler.GetTrip)
			r.Put("/{tripID}", cfg.TripsHandler.UpdateTrip)
			r.Delete("/{tripID}", cfg.TripsHandler.DeleteTrip)
		})

		r.Post("/chat", cfg.AssistantHandler.Chat)
	})

	return r
}
