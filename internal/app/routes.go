package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		app.notFoundResponse(w, req)
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(otelchi.Middleware("booking-engine", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)

	r.Get("/health", app.GetHealth)
	r.Get("/films", app.ListFilms)
	r.Get("/showtimes", app.ListShowtimes)
	r.Get("/showtimes/{showtimeId}/seat-map", app.GetSeatMapByShowtime)

	r.Group(func(r chi.Router) {
		r.Use(app.rateLimit)
		r.Use(app.requireUser)

		r.Post("/showtimes/{showtimeId}/claims", app.CreateClaim)
		r.Get("/claims", app.ListClaims)
		r.Delete("/claims/{claimRef}", app.ReleaseClaim)
	})

	return r
}
