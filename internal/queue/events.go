package queue

import "time"

const (
	QueueClaimCreated = "claim.created"
	QueueSeatFreed    = "seat.freed"
)

// ClaimCreatedEvent announces that a claim was accepted, either as a
// booking or as a queued reservation.
type ClaimCreatedEvent struct {
	ClaimRef   string    `json:"claim_ref"`
	ShowtimeID int       `json:"showtime_id"`
	Row        int       `json:"row"`
	Column     int       `json:"column"`
	UserID     int       `json:"user_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// SeatFreedEvent announces that a coordinate lost its ACTIVE claim.
type SeatFreedEvent struct {
	ShowtimeID int       `json:"showtime_id"`
	Row        int       `json:"row"`
	Column     int       `json:"column"`
	OccurredAt time.Time `json:"occurred_at"`
}
