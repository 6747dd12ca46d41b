package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"passin/internal/delivery/http/controllers"
	"passin/internal/delivery/http/middleware"
	"passin/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Event    *controllers.EventController
	Attendee *controllers.AttendeeController
	CheckIn  *controllers.CheckInController
	Health   *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, metrics *middleware.HTTPMetrics, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/refresh-token", c.Auth.RefreshToken)
	mux.HandleFunc("POST /auth/profile", auth(c.Auth.Profile))

	// Users
	mux.HandleFunc("POST /users", c.User.Create)
	mux.HandleFunc("GET /users", auth(c.User.List))
	mux.HandleFunc("GET /users/{id}", auth(c.User.Get))
	mux.HandleFunc("PATCH /users/{id}", auth(c.User.Update))
	mux.HandleFunc("DELETE /users/{id}", auth(c.User.Delete))
	mux.HandleFunc("GET /users/{id}/events", auth(c.Attendee.ListMyRegisteredEvents))

	// Events
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", auth(c.Event.ListEvents))
	mux.HandleFunc("GET /events/{slug}", auth(c.Event.GetEvent))
	mux.HandleFunc("PATCH /events/{slug}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{slug}", auth(c.Event.DeleteEvent))

	// Attendance
	mux.HandleFunc("POST /events/{eventSlug}/attendee/{userId}/register", auth(c.Attendee.RegisterForEvent))
	mux.HandleFunc("GET /events/{eventSlug}/attendee/{userId}/badge", auth(c.CheckIn.GetBadge))
	mux.HandleFunc("POST /events/{eventId}/attendee/{userId}/check-in", auth(c.CheckIn.CheckIn))

	// Operations
	mux.HandleFunc("GET /health", c.Health.Check)
	mux.Handle("GET /metrics", metrics.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with the request middleware chain: logging, metrics, then CORS.
func NewHandler(mux http.Handler, metrics *middleware.HTTPMetrics, allowedOrigins []string, logger *slog.Logger) http.Handler {
	return middleware.LoggingMiddleware(logger, metrics.Middleware(middleware.CORS(allowedOrigins, mux)))
}
