package handlers

import (
	"net/http"

	"lovetrack-backend/internal/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups every HTTP handler served by the router
type Handlers struct {
	Users     *UserHandler
	Couples   *CoupleHandler
	Events    *EventHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler
}

// NewRouter wires the routes and middleware
func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", h.Health.Liveness)
	r.Get("/readyz", h.Health.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", Root)

		r.Post("/users", h.Users.CreateUser)
		r.Put("/users/{auth_id}/token", h.Users.UpdateToken)

		r.Post("/couples", h.Couples.CreateCouple)
		r.Post("/couples/join", h.Couples.JoinCouple)
		r.Get("/couples/{couple_id}", h.Couples.GetCouple)

		r.Post("/events", h.Events.CreateEvent)
		r.Get("/events", h.Events.ListEvents)
		r.Get("/events/{event_id}", h.Events.GetEvent)
		r.Put("/events/{event_id}", h.Events.UpdateEvent)
		r.Delete("/events/{event_id}", h.Events.DeleteEvent)
	})

	// WebSocket route
	r.Get("/ws", h.WebSocket.HandleWebSocket)

	return r
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
