package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cinetix/booking-engine/api"
	"github.com/cinetix/booking-engine/internal/booking"
	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (app *Application) CreateClaim(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := app.readIntParam(r, "showtimeId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.CreateClaimRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	requested := domain.ClaimStatus(input.Status)
	if requested == "" {
		requested = domain.ClaimActive
	}

	userID := app.contextGetUserID(r)
	seat := domain.Coordinate{Row: input.Row, Col: input.Column}

	outcome, err := app.engine.SubmitClaim(r.Context(), showtimeID, seat, userID, requested)
	if err != nil {
		app.claimErrorResponse(w, r, err)
		return
	}

	resp := api.ClaimResponse{
		Claim:      toApiClaim(outcome.Claim),
		Outcome:    string(outcome.Outcome),
		Downgraded: outcome.Downgraded,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ListClaims returns the authenticated user's own claims, so a booking or
// reservation made earlier can be found again and released by ref.
func (app *Application) ListClaims(w http.ResponseWriter, r *http.Request) {
	showtimeID := 0

	if param := r.URL.Query().Get("showtimeId"); param != "" {
		id, err := strconv.Atoi(param)
		if err != nil || id < 1 {
			app.badRequestResponse(w, r, fmt.Errorf("invalid showtimeId parameter"))
			return
		}
		showtimeID = id
	}

	userID := app.contextGetUserID(r)

	claims, err := app.claimRepo.ClaimsByUser(r.Context(), userID, showtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ClaimListResponse{
		Claims: make([]api.Claim, len(claims)),
	}
	for i := range claims {
		resp.Claims[i] = toApiClaim(&claims[i])
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ReleaseClaim(w http.ResponseWriter, r *http.Request) {
	ref, err := uuid.Parse(chi.URLParam(r, "claimRef"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid claim reference"))
		return
	}

	userID := app.contextGetUserID(r)

	outcome, err := app.engine.ReleaseClaim(r.Context(), ref, userID, app.contextIsStaff(r))
	if err != nil {
		app.claimErrorResponse(w, r, err)
		return
	}

	resp := api.ReleaseResponse{
		Ref:                outcome.Released.Ref.String(),
		PromotionTriggered: outcome.Promotion != nil,
	}

	if outcome.Promotion != nil && outcome.Promotion.Fulfilled {
		notified := outcome.Promotion.NotifiedUserID
		resp.NotifiedUserId = &notified
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) claimErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		app.notFoundResponse(w, r)

	case errors.Is(err, domain.ErrInvalidSeat):
		app.errorResponse(w, r, http.StatusUnprocessableEntity, domain.ErrInvalidSeat.Error())

	case errors.Is(err, domain.ErrDuplicateClaim):
		app.conflictResponse(w, r, domain.ErrDuplicateClaim.Error())

	case errors.Is(err, domain.ErrNotOwner):
		app.forbiddenResponse(w, r)

	case booking.IsRetryable(err):
		app.contentionResponse(w, r)

	case errors.Is(err, domain.ErrClaimConflict):
		// The store's invariant fired despite the seat lock. That's a
		// logic bug, not a user error.
		app.serverErrorResponse(w, r, fmt.Errorf("claim invariant violation: %w", err))

	default:
		app.serverErrorResponse(w, r, err)
	}
}

func toApiClaim(claim *domain.Claim) api.Claim {
	return api.Claim{
		Ref:        claim.Ref.String(),
		ShowtimeId: claim.ShowtimeID,
		Row:        claim.Seat.Row,
		Column:     claim.Seat.Col,
		Status:     string(claim.Status),
		CreatedAt:  claim.CreatedAt,
	}
}
