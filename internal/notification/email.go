// Package notification adapts the mailer into the booking core's
// notification sink.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/cinetix/booking-engine/internal/mailer"
)

const seatReleasedTemplate = "seat-released.tmpl"

type EmailSink struct {
	users     domain.UserRepository
	showtimes domain.ShowtimeRegistry
	mailer    mailer.Mailer
	logger    *slog.Logger
}

func NewEmailSink(
	users domain.UserRepository,
	showtimes domain.ShowtimeRegistry,
	m mailer.Mailer,
	logger *slog.Logger,
) *EmailSink {
	return &EmailSink{
		users:     users,
		showtimes: showtimes,
		mailer:    m,
		logger:    logger,
	}
}

// Notify emails the user that their reserved seat is free. The returned
// bool confirms the SMTP server accepted the message; it does not imply
// the user read it, only that delivery was handed off.
func (s *EmailSink) Notify(ctx context.Context, userID int, seat domain.Coordinate, showtimeID int) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("looking up user %d: %w", userID, err)
	}

	showtime, err := s.showtimes.Resolve(ctx, showtimeID)
	if err != nil {
		return false, fmt.Errorf("resolving showtime %d: %w", showtimeID, err)
	}

	data := map[string]any{
		"Name":     user.Name,
		"Row":      seat.Row,
		"Column":   seat.Col,
		"FilmName": showtime.Film.Name,
	}

	err = s.mailer.Send(user.Email, seatReleasedTemplate, data)
	if err != nil {
		return false, err
	}

	s.logger.Info("seat release notification sent",
		"user_id", userID,
		"showtime_id", showtimeID,
		"row", seat.Row,
		"col", seat.Col,
	)

	return true, nil
}
