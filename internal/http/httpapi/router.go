package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/middleware"
)

// NewRouter assembles the API surface. Everything under /v1 except the
// health check requires a bearer token.
func NewRouter(app *handlers.App, countryLookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.AllowedOrigins),
		middleware.Locale(app.Config.DefaultLocale, countryLookup),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(app.Config.JWTSecret))

		r.Get("/v1/me", app.Me)

		r.Route("/v1/practitioners", func(r chi.Router) {
			r.Post("/", app.CreatePractitioner)
			r.Patch("/{practitioner_id}", app.UpdatePractitioner)
			r.Patch("/{practitioner_id}/phone", app.UpdatePractitionerPhone)
		})

		r.Route("/v1/protocols", func(r chi.Router) {
			r.Get("/", app.ListProtocols)
			r.Post("/", app.CreateProtocol)
			r.Get("/{protocol_id}", app.GetProtocol)
			r.Patch("/{protocol_id}/status", app.UpdateProtocolStatus)
			r.Post("/{protocol_id}/archive", app.ArchiveProtocol)
			r.Post("/{protocol_id}/hide", app.HideProtocol)
			r.Post("/{protocol_id}/delete", app.DeleteProtocol)
		})

		r.Route("/v1/ai", func(r chi.Router) {
			r.Post("/jobs", app.CreateJob)
			r.Get("/jobs/{job_id}", app.JobStatus)
			r.Post("/jobs/{job_id}/protocol", app.MaterializeJob)
			r.Post("/generate", app.Generate)
		})

		r.Route("/v1/orders", func(r chi.Router) {
			r.Get("/", app.ListOrders)
			r.Get("/{order_id}/items", app.OrderItems)
		})
	})

	return r
}
