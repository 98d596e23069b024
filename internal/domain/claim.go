package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ClaimStatus string

const (
	ClaimActive   ClaimStatus = "ACTIVE"
	ClaimReserved ClaimStatus = "RESERVED"
)

// Coordinate is a seat position within a room's seating grid, 1-based.
type Coordinate struct {
	Row int
	Col int
}

// Claim is a user's hold on a seat coordinate for a showtime. An ACTIVE
// claim is a confirmed booking; a RESERVED claim queues behind it waiting
// for the seat to be released.
type Claim struct {
	ID         int
	Ref        uuid.UUID
	ShowtimeID int
	Seat       Coordinate
	UserID     int
	Status     ClaimStatus
	CreatedAt  time.Time
}

// SeatClaims is the full claim set of one coordinate: the ACTIVE claim,
// if any, plus the RESERVED queue ordered by creation time ascending.
type SeatClaims struct {
	Active   *Claim
	Reserved []Claim
}

// ClaimTx is the transactional view of a single (showtime, coordinate)
// pair. All reads and writes through it happen inside one store
// transaction that holds the seat's lock, so the claim set cannot change
// underneath the caller.
type ClaimTx interface {
	ClaimsBySeat(ctx context.Context) (*SeatClaims, error)
	Create(ctx context.Context, claim *Claim) error
	Delete(ctx context.Context, claimID int) error
}

type ClaimRepository interface {
	// WithSeatTx runs fn inside a transaction that serializes all access
	// to the given coordinate. Lock acquisition is bounded; on timeout it
	// returns ErrSeatContention and fn is never invoked.
	WithSeatTx(ctx context.Context, showtimeID int, seat Coordinate, fn func(tx ClaimTx) error) error

	GetByRef(ctx context.Context, ref uuid.UUID) (*Claim, error)
	Delete(ctx context.Context, claimID int) error
	ActiveSeatsByShowtime(ctx context.Context, showtimeID int) ([]Coordinate, error)

	// ClaimsByUser lists a user's claims ordered by creation time. A zero
	// showtimeID means all showtimes.
	ClaimsByUser(ctx context.Context, userID, showtimeID int) ([]Claim, error)
}
