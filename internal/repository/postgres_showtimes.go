package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowtimeRegistry struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRegistry(db *pgxpool.Pool) *PostgresShowtimeRegistry {
	return &PostgresShowtimeRegistry{
		db: db,
	}
}

func (p *PostgresShowtimeRegistry) Resolve(ctx context.Context, showtimeID int) (*domain.Showtime, error) {
	query := `
		SELECT
			s.id,
			s.show_date,
			s.start_time,
			s.end_time,
			r.id,
			r.name,
			r.row_count,
			r.column_count,
			f.id,
			f.name,
			f.duration_minutes
		FROM showtimes s
		JOIN rooms r ON s.room_id = r.id
		JOIN films f ON s.film_id = f.id
		WHERE s.id = $1
	`

	var showtime domain.Showtime
	var durationMinutes int

	err := p.db.QueryRow(ctx, query, showtimeID).Scan(
		&showtime.ID,
		&showtime.Date,
		&showtime.StartTime,
		&showtime.EndTime,
		&showtime.Room.ID,
		&showtime.Room.Name,
		&showtime.Room.RowCount,
		&showtime.Room.ColumnCount,
		&showtime.Film.ID,
		&showtime.Film.Name,
		&durationMinutes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	showtime.Film.Duration = time.Duration(durationMinutes) * time.Minute

	return &showtime, nil
}

func (p *PostgresShowtimeRegistry) GetAll(ctx context.Context, filmID int) ([]domain.Showtime, error) {
	query := `
		SELECT
			s.id,
			s.show_date,
			s.start_time,
			s.end_time,
			r.id,
			r.name,
			r.row_count,
			r.column_count,
			f.id,
			f.name,
			f.duration_minutes
		FROM showtimes s
		JOIN rooms r ON s.room_id = r.id
		JOIN films f ON s.film_id = f.id
		WHERE f.id = $1 OR $1 = 0
		ORDER BY s.show_date, s.start_time, s.id
	`

	rows, err := p.db.Query(ctx, query, filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	showtimes := make([]domain.Showtime, 0)

	for rows.Next() {
		var showtime domain.Showtime
		var durationMinutes int

		err = rows.Scan(
			&showtime.ID,
			&showtime.Date,
			&showtime.StartTime,
			&showtime.EndTime,
			&showtime.Room.ID,
			&showtime.Room.Name,
			&showtime.Room.RowCount,
			&showtime.Room.ColumnCount,
			&showtime.Film.ID,
			&showtime.Film.Name,
			&durationMinutes,
		)
		if err != nil {
			return nil, err
		}

		showtime.Film.Duration = time.Duration(durationMinutes) * time.Minute
		showtimes = append(showtimes, showtime)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return showtimes, nil
}
