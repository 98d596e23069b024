package app

import (
	"net/http"
	"time"

	"github.com/cinetix/booking-engine/api"
	"github.com/cinetix/booking-engine/internal/domain"
)

func (app *Application) ListFilms(w http.ResponseWriter, r *http.Request) {
	films, err := app.filmRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.FilmListResponse{
		Films: toApiFilms(films),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiFilms(films []domain.Film) []api.Film {
	apiFilms := make([]api.Film, len(films))

	for i, film := range films {
		apiFilms[i] = toApiFilm(film)
	}

	return apiFilms
}

func toApiFilm(film domain.Film) api.Film {
	return api.Film{
		Id:              film.ID,
		Name:            film.Name,
		DurationMinutes: int(film.Duration / time.Minute),
	}
}
