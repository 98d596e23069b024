// Package booking holds the seat-booking decision core: the engine that
// arbitrates concurrent claims on a coordinate and the notifier that hands
// a freed seat to the reservation queue.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/google/uuid"
)

type Outcome string

const (
	// Booked means the claim was accepted as the coordinate's ACTIVE claim.
	Booked Outcome = "BOOKED"
	// Queued means the claim was stored as a RESERVED claim behind the
	// current ACTIVE one (or as a plain reservation).
	Queued Outcome = "QUEUED"
)

type ClaimOutcome struct {
	Claim   *domain.Claim
	Outcome Outcome
	// Downgraded is set when the caller asked for ACTIVE but the seat was
	// taken, so the engine stored a RESERVED claim instead.
	Downgraded bool
}

type ReleaseOutcome struct {
	Released *domain.Claim
	// Promotion is the notifier's result when the released claim was
	// ACTIVE and the reservation queue was consulted. Nil otherwise.
	Promotion *NotifyOutcome
}

// EventPublisher emits claim lifecycle events to interested consumers.
// Publishing is best effort; implementations must not block the booking
// flow on broker availability.
type EventPublisher interface {
	ClaimCreated(ctx context.Context, claim *domain.Claim)
	SeatFreed(ctx context.Context, showtimeID int, seat domain.Coordinate)
}

// Engine decides, under concurrent requests, whether a seat claim
// succeeds, queues, or is rejected. It holds no claim state of its own:
// every decision reads and writes through the store inside a single
// per-coordinate transaction.
type Engine struct {
	claims    domain.ClaimRepository
	showtimes domain.ShowtimeRegistry
	notifier  *ReleaseNotifier
	events    EventPublisher
	logger    *slog.Logger
}

func NewEngine(
	claims domain.ClaimRepository,
	showtimes domain.ShowtimeRegistry,
	notifier *ReleaseNotifier,
	events EventPublisher,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		claims:    claims,
		showtimes: showtimes,
		notifier:  notifier,
		events:    events,
		logger:    logger,
	}
}

// SubmitClaim evaluates a claim for (showtimeID, seat) on behalf of userID.
// requested is the caller's preference: ClaimActive to book now, or
// ClaimReserved to queue. A request for ACTIVE on a taken seat is downgraded
// to RESERVED unless the user already holds a claim there.
func (e *Engine) SubmitClaim(
	ctx context.Context,
	showtimeID int,
	seat domain.Coordinate,
	userID int,
	requested domain.ClaimStatus,
) (*ClaimOutcome, error) {

	showtime, err := e.showtimes.Resolve(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("resolving showtime %d: %w", showtimeID, err)
	}

	if !showtime.Room.Contains(seat) {
		return nil, domain.ErrInvalidSeat
	}

	var outcome *ClaimOutcome

	err = e.claims.WithSeatTx(ctx, showtimeID, seat, func(tx domain.ClaimTx) error {
		seatClaims, err := tx.ClaimsBySeat(ctx)
		if err != nil {
			return err
		}

		outcome, err = e.decide(ctx, tx, showtime, seat, userID, requested, seatClaims)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.events.ClaimCreated(ctx, outcome.Claim)

	return outcome, nil
}

func (e *Engine) decide(
	ctx context.Context,
	tx domain.ClaimTx,
	showtime *domain.Showtime,
	seat domain.Coordinate,
	userID int,
	requested domain.ClaimStatus,
	seatClaims *domain.SeatClaims,
) (*ClaimOutcome, error) {

	active := seatClaims.Active

	if active != nil && active.UserID == userID {
		return nil, domain.ErrDuplicateClaim
	}

	var ownReserved *domain.Claim
	for i := range seatClaims.Reserved {
		if seatClaims.Reserved[i].UserID == userID {
			ownReserved = &seatClaims.Reserved[i]
			break
		}
	}

	status := domain.ClaimReserved
	if active == nil && requested == domain.ClaimActive {
		status = domain.ClaimActive
	}

	if ownReserved != nil {
		// The caller already queues on this seat. Booking it while free
		// fulfils the reservation, so the queued claim is swapped for the
		// ACTIVE one in the same transaction. Anything short of that is a
		// duplicate.
		if status != domain.ClaimActive {
			return nil, domain.ErrDuplicateClaim
		}

		if err := tx.Delete(ctx, ownReserved.ID); err != nil {
			return nil, err
		}
	}

	claim, err := e.createClaim(ctx, tx, showtime, seat, userID, status)
	if err != nil {
		return nil, err
	}

	outcome := &ClaimOutcome{Claim: claim, Outcome: Queued}
	if status == domain.ClaimActive {
		outcome.Outcome = Booked
	} else if requested == domain.ClaimActive {
		outcome.Downgraded = true
	}

	return outcome, nil
}

func (e *Engine) createClaim(
	ctx context.Context,
	tx domain.ClaimTx,
	showtime *domain.Showtime,
	seat domain.Coordinate,
	userID int,
	status domain.ClaimStatus,
) (*domain.Claim, error) {

	// The bounds are re-checked against the resolved showtime right before
	// every insert, so a stale resolution can never put a claim outside
	// the grid.
	if !showtime.Room.Contains(seat) {
		return nil, domain.ErrInvalidSeat
	}

	claim := &domain.Claim{
		Ref:        uuid.New(),
		ShowtimeID: showtime.ID,
		Seat:       seat,
		UserID:     userID,
		Status:     status,
	}

	if err := tx.Create(ctx, claim); err != nil {
		return nil, err
	}

	return claim, nil
}

// ReleaseClaim deletes the claim identified by ref on behalf of userID.
// Only the claim's owner may release it unless elevated is set. When the
// deleted claim was ACTIVE, the reservation queue at its coordinate is
// consulted and the earliest reachable reservation holder is notified;
// notification failures never fail the release itself.
func (e *Engine) ReleaseClaim(
	ctx context.Context,
	ref uuid.UUID,
	userID int,
	elevated bool,
) (*ReleaseOutcome, error) {

	claim, err := e.claims.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	if claim.UserID != userID && !elevated {
		return nil, domain.ErrNotOwner
	}

	err = e.claims.WithSeatTx(ctx, claim.ShowtimeID, claim.Seat, func(tx domain.ClaimTx) error {
		return tx.Delete(ctx, claim.ID)
	})
	if err != nil {
		// A concurrent release already removed the claim. Report it as
		// not found; the seat-freed workflow ran (or is running) on the
		// winning request, so no second notification is owed.
		return nil, err
	}

	outcome := &ReleaseOutcome{Released: claim}

	if claim.Status != domain.ClaimActive {
		return outcome, nil
	}

	e.events.SeatFreed(ctx, claim.ShowtimeID, claim.Seat)

	promotion, err := e.notifier.HandleRelease(ctx, claim.ShowtimeID, claim.Seat)
	if err != nil {
		e.logger.Error("release notification failed",
			"showtime_id", claim.ShowtimeID,
			"row", claim.Seat.Row,
			"col", claim.Seat.Col,
			"error", err,
		)
		return outcome, nil
	}

	outcome.Promotion = promotion

	return outcome, nil
}

// IsRetryable reports whether err indicates transient contention worth
// retrying by the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, domain.ErrSeatContention)
}
