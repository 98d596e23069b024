package repository

import (
	"context"
	"time"

	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresFilmRepository struct {
	db *pgxpool.Pool
}

func NewPostgresFilmRepository(db *pgxpool.Pool) *PostgresFilmRepository {
	return &PostgresFilmRepository{
		db: db,
	}
}

func (p *PostgresFilmRepository) GetAll(ctx context.Context) ([]domain.Film, error) {
	query := `
		SELECT id, name, duration_minutes
		FROM films
		ORDER BY name, id
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	films := make([]domain.Film, 0)

	for rows.Next() {
		var film domain.Film
		var durationMinutes int

		err = rows.Scan(&film.ID, &film.Name, &durationMinutes)
		if err != nil {
			return nil, err
		}

		film.Duration = time.Duration(durationMinutes) * time.Minute
		films = append(films, film)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return films, nil
}
