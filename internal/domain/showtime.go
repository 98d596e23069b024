package domain

import (
	"context"
	"time"
)

type Film struct {
	ID       int
	Name     string
	Duration time.Duration
}

// Room describes a seating grid as plain bounds. Seats are not modeled as
// discrete entities; a coordinate is valid iff it falls inside the grid.
type Room struct {
	ID          int
	Name        string
	RowCount    int
	ColumnCount int
}

// Contains reports whether seat is a valid coordinate of the room.
func (r Room) Contains(seat Coordinate) bool {
	return seat.Row >= 1 && seat.Row <= r.RowCount &&
		seat.Col >= 1 && seat.Col <= r.ColumnCount
}

type Showtime struct {
	ID        int
	Room      Room
	Film      Film
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time
}

// ShowtimeRegistry is the read-only catalog lookup the booking core needs.
// Showtime data is maintained elsewhere and trusted to be valid.
type ShowtimeRegistry interface {
	Resolve(ctx context.Context, showtimeID int) (*Showtime, error)
	GetAll(ctx context.Context, filmID int) ([]Showtime, error)
}

type FilmRepository interface {
	GetAll(ctx context.Context) ([]Film, error)
}
