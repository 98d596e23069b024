package domain

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidSeat means the coordinate lies outside the room's grid.
	ErrInvalidSeat = errors.New("seat is outside the room's seating grid")

	// ErrDuplicateClaim means the user already holds a claim on this
	// coordinate for this showtime.
	ErrDuplicateClaim = errors.New("seat already claimed by this user")

	// ErrClaimConflict is raised by the store when an insert would break
	// the at-most-one-ACTIVE invariant. With the seat lock held correctly
	// it should never surface; seeing it indicates a logic bug.
	ErrClaimConflict = errors.New("claim conflicts with an existing active claim")

	ErrNotOwner = errors.New("claim belongs to another user")

	// ErrSeatContention means the seat lock could not be acquired within
	// the transaction's lock timeout. Callers may retry.
	ErrSeatContention = errors.New("seat is contended, try again")
)
