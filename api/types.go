// Package api defines the JSON request and response shapes of the booking
// HTTP surface.
package api

import "time"

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type CreateClaimRequest struct {
	Row    int    `json:"row" validate:"required,min=1"`
	Column int    `json:"column" validate:"required,min=1"`
	Status string `json:"status" validate:"omitempty,claim_status"`
}

type Claim struct {
	Ref        string    `json:"ref"`
	ShowtimeId int       `json:"showtimeId"`
	Row        int       `json:"row"`
	Column     int       `json:"column"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ClaimResponse struct {
	Claim Claim `json:"claim"`
	// Outcome is BOOKED when the claim became the seat's active booking,
	// QUEUED when it was stored as a reservation.
	Outcome string `json:"outcome"`
	// Downgraded reports that an ACTIVE request was queued because the
	// seat was already taken.
	Downgraded bool `json:"downgraded,omitempty"`
}

type ClaimListResponse struct {
	Claims []Claim `json:"claims"`
}

type ReleaseResponse struct {
	Ref string `json:"ref"`
	// PromotionTriggered reports that the release freed an active booking
	// and the reservation queue was consulted.
	PromotionTriggered bool `json:"promotionTriggered"`
	// NotifiedUserId is set when a queued reservation holder was notified
	// that the seat is free.
	NotifiedUserId *int `json:"notifiedUserId,omitempty"`
}

type Seat struct {
	Row      int  `json:"row"`
	Column   int  `json:"column"`
	Occupied bool `json:"occupied"`
}

type SeatRow struct {
	Row   int    `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ShowtimeId  int       `json:"showtimeId"`
	RoomName    string    `json:"roomName"`
	RowCount    int       `json:"rowCount"`
	ColumnCount int       `json:"columnCount"`
	SeatRows    []SeatRow `json:"seatRows"`
}

type Film struct {
	Id              int    `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
}

type FilmListResponse struct {
	Films []Film `json:"films"`
}

type Showtime struct {
	Id        int       `json:"id"`
	Film      Film      `json:"film"`
	RoomName  string    `json:"roomName"`
	Date      string    `json:"date"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type ShowtimeListResponse struct {
	Showtimes []Showtime `json:"showtimes"`
}
