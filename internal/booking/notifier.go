package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cinetix/booking-engine/internal/domain"
)

type NotifyOutcome struct {
	// NotifiedUserID is the user whose reservation was fulfilled, or zero
	// when nobody could be reached.
	NotifiedUserID int
	Fulfilled      bool
	// Attempts counts notification sends tried, including failed ones.
	Attempts int
}

// ReleaseNotifier consumes a freed (showtime, coordinate) and hands the
// seat to the reservation queue: the earliest-created RESERVED claim whose
// holder can be reached gets notified, and that claim is removed. One
// release fulfils at most one reservation; everyone else stays queued.
type ReleaseNotifier struct {
	claims domain.ClaimRepository
	sink   domain.NotificationSink
	logger *slog.Logger
}

func NewReleaseNotifier(claims domain.ClaimRepository, sink domain.NotificationSink, logger *slog.Logger) *ReleaseNotifier {
	return &ReleaseNotifier{
		claims: claims,
		sink:   sink,
		logger: logger,
	}
}

func (n *ReleaseNotifier) HandleRelease(
	ctx context.Context,
	showtimeID int,
	seat domain.Coordinate,
) (*NotifyOutcome, error) {

	var queue []domain.Claim

	err := n.claims.WithSeatTx(ctx, showtimeID, seat, func(tx domain.ClaimTx) error {
		seatClaims, err := tx.ClaimsBySeat(ctx)
		if err != nil {
			return err
		}

		queue = seatClaims.Reserved
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading reservation queue: %w", err)
	}

	outcome := &NotifyOutcome{}

	for _, reserved := range queue {
		outcome.Attempts++

		delivered, err := n.sink.Notify(ctx, reserved.UserID, seat, showtimeID)
		if err != nil || !delivered {
			// The reservation stays queued; a later release will try this
			// user again.
			n.logger.Warn("seat release notification not delivered",
				"showtime_id", showtimeID,
				"row", seat.Row,
				"col", seat.Col,
				"user_id", reserved.UserID,
				"error", err,
			)
			continue
		}

		// Delivery is confirmed, so the reservation is fulfilled and the
		// claim comes off the queue. Losing a delete race to a concurrent
		// withdrawal is fine; the user was notified either way.
		err = n.claims.Delete(ctx, reserved.ID)
		if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("removing fulfilled reservation %d: %w", reserved.ID, err)
		}

		outcome.NotifiedUserID = reserved.UserID
		outcome.Fulfilled = true
		break
	}

	return outcome, nil
}
