package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cinetix/booking-engine/api"
	"github.com/cinetix/booking-engine/internal/domain"
)

func (app *Application) ListShowtimes(w http.ResponseWriter, r *http.Request) {
	filmID := 0

	if param := r.URL.Query().Get("filmId"); param != "" {
		id, err := strconv.Atoi(param)
		if err != nil || id < 1 {
			app.badRequestResponse(w, r, fmt.Errorf("invalid filmId parameter"))
			return
		}
		filmID = id
	}

	showtimes, err := app.showtimes.GetAll(r.Context(), filmID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ShowtimeListResponse{
		Showtimes: toApiShowtimes(showtimes),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiShowtimes(showtimes []domain.Showtime) []api.Showtime {
	apiShowtimes := make([]api.Showtime, len(showtimes))

	for i, showtime := range showtimes {
		apiShowtimes[i] = api.Showtime{
			Id:        showtime.ID,
			Film:      toApiFilm(showtime.Film),
			RoomName:  showtime.Room.Name,
			Date:      showtime.Date.Format("2006-01-02"),
			StartTime: showtime.StartTime,
			EndTime:   showtime.EndTime,
		}
	}

	return apiShowtimes
}

// GetSeatMapByShowtime renders the room's full grid with per-coordinate
// occupancy. Only ACTIVE claims occupy a seat; queued reservations are
// invisible here.
func (app *Application) GetSeatMapByShowtime(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readIntParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	showtime, err := app.showtimes.Resolve(r.Context(), showtimeID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	occupied, err := app.claimRepo.ActiveSeatsByShowtime(r.Context(), showtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(showtime, occupied)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(showtime *domain.Showtime, occupied []domain.Coordinate) api.SeatMapResponse {
	occupiedSet := make(map[domain.Coordinate]bool, len(occupied))
	for _, seat := range occupied {
		occupiedSet[seat] = true
	}

	room := showtime.Room
	seatRows := make([]api.SeatRow, room.RowCount)

	for row := 1; row <= room.RowCount; row++ {
		seats := make([]api.Seat, room.ColumnCount)

		for col := 1; col <= room.ColumnCount; col++ {
			seats[col-1] = api.Seat{
				Row:      row,
				Column:   col,
				Occupied: occupiedSet[domain.Coordinate{Row: row, Col: col}],
			}
		}

		seatRows[row-1] = api.SeatRow{Row: row, Seats: seats}
	}

	return api.SeatMapResponse{
		ShowtimeId:  showtime.ID,
		RoomName:    room.Name,
		RowCount:    room.RowCount,
		ColumnCount: room.ColumnCount,
		SeatRows:    seatRows,
	}
}
