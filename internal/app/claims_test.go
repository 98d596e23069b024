package app

import (
	"net/http"
	"testing"

	"github.com/cinetix/booking-engine/api"
	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ClaimHandlersTestSuite struct {
	suite.Suite
	ta *testApplication
}

func (s *ClaimHandlersTestSuite) SetupTest() {
	s.ta = newTestApplication()
}

func TestClaimHandlersSuite(t *testing.T) {
	suite.Run(t, new(ClaimHandlersTestSuite))
}

func (s *ClaimHandlersTestSuite) givenShowtime(id, rows, cols int) {
	showtime := &domain.Showtime{
		ID:   id,
		Room: domain.Room{ID: 1, Name: "Room 1", RowCount: rows, ColumnCount: cols},
		Film: domain.Film{ID: 1, Name: "Test Film"},
	}

	s.ta.registry.On("Resolve", mock.Anything, id).Return(showtime, nil)
}

func (s *ClaimHandlersTestSuite) TestCreateClaim_BooksSeat() {
	s.givenShowtime(7, 5, 5)

	req := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 2, Column: 3})
	rr := s.ta.executeRequest(asUser(req, "10"))

	s.Require().Equal(http.StatusCreated, rr.Code)

	resp := decodeJSON[api.ClaimResponse](s.T(), rr)
	s.Equal("BOOKED", resp.Outcome)
	s.False(resp.Downgraded)
	s.Equal(7, resp.Claim.ShowtimeId)
	s.Equal(2, resp.Claim.Row)
	s.Equal(3, resp.Claim.Column)
	s.Equal("ACTIVE", resp.Claim.Status)

	_, err := uuid.Parse(resp.Claim.Ref)
	s.NoError(err)
}

func (s *ClaimHandlersTestSuite) TestCreateClaim_QueuesWhenSeatTaken() {
	s.givenShowtime(7, 5, 5)

	first := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 1, Column: 1})
	s.Require().Equal(http.StatusCreated, s.ta.executeRequest(asUser(first, "10")).Code)

	second := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 1, Column: 1})
	rr := s.ta.executeRequest(asUser(second, "20"))

	s.Require().Equal(http.StatusCreated, rr.Code)

	resp := decodeJSON[api.ClaimResponse](s.T(), rr)
	s.Equal("QUEUED", resp.Outcome)
	s.True(resp.Downgraded)
	s.Equal("RESERVED", resp.Claim.Status)
}

func (s *ClaimHandlersTestSuite) TestCreateClaim_RequiresIdentity() {
	tests := []struct {
		name   string
		userID string
	}{
		{"missing header", ""},
		{"non-numeric", "abc"},
		{"zero", "0"},
		{"negative", "-3"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
				api.CreateClaimRequest{Row: 1, Column: 1})
			if tt.userID != "" {
				req.Header.Set("X-User-ID", tt.userID)
			}

			checkErrorResponse(s.T(), s.ta.executeRequest(req), http.StatusUnauthorized)
		})
	}
}

func (s *ClaimHandlersTestSuite) TestCreateClaim_BadRequests() {
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"malformed json", "/showtimes/7/claims", `{"row": 1,`},
		{"unknown field", "/showtimes/7/claims", `{"row": 1, "column": 1, "price": 10}`},
		{"non-numeric showtime id", "/showtimes/abc/claims", `{"row": 1, "column": 1}`},
		{"zero showtime id", "/showtimes/0/claims", `{"row": 1, "column": 1}`},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := newRawRequest(s.T(), http.MethodPost, tt.target, tt.body)
			checkErrorResponse(s.T(), s.ta.executeRequest(asUser(req, "10")), http.StatusBadRequest)
		})
	}
}

func (s *ClaimHandlersTestSuite) TestCreateClaim_ValidationFailures() {
	tests := []struct {
		name      string
		body      api.CreateClaimRequest
		wantField string
	}{
		{"missing row", api.CreateClaimRequest{Column: 1}, "Row"},
		{"missing column", api.CreateClaimRequest{Row: 1}, "Column"},
		{"unknown status", api.CreateClaimRequest{Row: 1, Column: 1, Status: "PENDING"}, "Status"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims", tt.body)
			rr := s.ta.executeRequest(asUser(req, "10"))

			s.Require().Equal(http.StatusUnprocessableEntity, rr.Code)

			resp := decodeJSON[api.ValidationErrorResponse](s.T(), rr)
			s.Require().Len(resp.ValidationErrors, 1)
			s.Equal(tt.wantField, resp.ValidationErrors[0].Field)
		})
	}
}

func (s *ClaimHandlersTestSuite) TestCreateClaim_SeatOutsideGrid() {
	s.givenShowtime(7, 3, 3)

	req := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 9, Column: 9})
	rr := s.ta.executeRequest(asUser(req, "10"))

	checkErrorResponse(s.T(), rr, http.StatusUnprocessableEntity)
}

func (s *ClaimHandlersTestSuite) TestCreateClaim_UnknownShowtime() {
	s.ta.registry.On("Resolve", mock.Anything, 999).Return(nil, domain.ErrRecordNotFound)

	req := newJSONRequest(s.T(), http.MethodPost, "/showtimes/999/claims",
		api.CreateClaimRequest{Row: 1, Column: 1})
	rr := s.ta.executeRequest(asUser(req, "10"))

	checkErrorResponse(s.T(), rr, http.StatusNotFound)
}

func (s *ClaimHandlersTestSuite) TestCreateClaim_DuplicateClaim() {
	s.givenShowtime(7, 5, 5)

	req := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 1, Column: 1})
	s.Require().Equal(http.StatusCreated, s.ta.executeRequest(asUser(req, "10")).Code)

	again := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 1, Column: 1})
	rr := s.ta.executeRequest(asUser(again, "10"))

	checkErrorResponse(s.T(), rr, http.StatusConflict)
}

func (s *ClaimHandlersTestSuite) TestListClaims_ReturnsOwnClaimsOnly() {
	s.givenShowtime(7, 5, 5)

	mine := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 1, Column: 1})
	s.Require().Equal(http.StatusCreated, s.ta.executeRequest(asUser(mine, "10")).Code)

	theirs := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 2, Column: 2})
	s.Require().Equal(http.StatusCreated, s.ta.executeRequest(asUser(theirs, "20")).Code)

	queued := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 2, Column: 2, Status: "RESERVED"})
	s.Require().Equal(http.StatusCreated, s.ta.executeRequest(asUser(queued, "10")).Code)

	rr := s.ta.executeRequest(asUser(newRawRequest(s.T(), http.MethodGet, "/claims", ""), "10"))

	s.Require().Equal(http.StatusOK, rr.Code)

	// Both the booking and the queued reservation belong to user 10; the
	// other user's booking must not leak in. Order follows creation time.
	resp := decodeJSON[api.ClaimListResponse](s.T(), rr)
	s.Require().Len(resp.Claims, 2)
	s.Equal(1, resp.Claims[0].Row)
	s.Equal("ACTIVE", resp.Claims[0].Status)
	s.Equal(2, resp.Claims[1].Row)
	s.Equal("RESERVED", resp.Claims[1].Status)
	s.NotEmpty(resp.Claims[0].Ref)
}

func (s *ClaimHandlersTestSuite) TestListClaims_FiltersByShowtime() {
	s.givenShowtime(7, 5, 5)
	s.givenShowtime(8, 5, 5)

	first := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 1, Column: 1})
	s.Require().Equal(http.StatusCreated, s.ta.executeRequest(asUser(first, "10")).Code)

	second := newJSONRequest(s.T(), http.MethodPost, "/showtimes/8/claims",
		api.CreateClaimRequest{Row: 3, Column: 3})
	s.Require().Equal(http.StatusCreated, s.ta.executeRequest(asUser(second, "10")).Code)

	rr := s.ta.executeRequest(asUser(
		newRawRequest(s.T(), http.MethodGet, "/claims?showtimeId=8", ""), "10"))

	s.Require().Equal(http.StatusOK, rr.Code)

	resp := decodeJSON[api.ClaimListResponse](s.T(), rr)
	s.Require().Len(resp.Claims, 1)
	s.Equal(8, resp.Claims[0].ShowtimeId)
}

func (s *ClaimHandlersTestSuite) TestListClaims_EmptyForNewUser() {
	rr := s.ta.executeRequest(asUser(newRawRequest(s.T(), http.MethodGet, "/claims", ""), "10"))

	s.Require().Equal(http.StatusOK, rr.Code)

	resp := decodeJSON[api.ClaimListResponse](s.T(), rr)
	s.NotNil(resp.Claims)
	s.Empty(resp.Claims)
}

func (s *ClaimHandlersTestSuite) TestListClaims_InvalidShowtimeFilter() {
	for _, param := range []string{"abc", "0", "-1"} {
		rr := s.ta.executeRequest(asUser(
			newRawRequest(s.T(), http.MethodGet, "/claims?showtimeId="+param, ""), "10"))

		checkErrorResponse(s.T(), rr, http.StatusBadRequest)
	}
}

func (s *ClaimHandlersTestSuite) TestListClaims_RequiresIdentity() {
	rr := s.ta.executeRequest(newRawRequest(s.T(), http.MethodGet, "/claims", ""))

	checkErrorResponse(s.T(), rr, http.StatusUnauthorized)
}

func (s *ClaimHandlersTestSuite) TestReleaseClaim_ReleasesAndNotifies() {
	s.givenShowtime(7, 5, 5)

	first := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 2, Column: 2})
	created := decodeJSON[api.ClaimResponse](s.T(), s.ta.executeRequest(asUser(first, "10")))

	second := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 2, Column: 2, Status: "RESERVED"})
	s.Require().Equal(http.StatusCreated, s.ta.executeRequest(asUser(second, "20")).Code)

	release := newRawRequest(s.T(), http.MethodDelete, "/claims/"+created.Claim.Ref, "")
	rr := s.ta.executeRequest(asUser(release, "10"))

	s.Require().Equal(http.StatusOK, rr.Code)

	resp := decodeJSON[api.ReleaseResponse](s.T(), rr)
	s.Equal(created.Claim.Ref, resp.Ref)
	s.True(resp.PromotionTriggered)
	s.Require().NotNil(resp.NotifiedUserId)
	s.Equal(20, *resp.NotifiedUserId)

	s.Require().Len(s.ta.sink.Calls(), 1)
	s.Equal(20, s.ta.sink.Calls()[0].UserID)
}

func (s *ClaimHandlersTestSuite) TestReleaseClaim_NotOwner() {
	s.givenShowtime(7, 5, 5)

	req := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 2, Column: 2})
	created := decodeJSON[api.ClaimResponse](s.T(), s.ta.executeRequest(asUser(req, "10")))

	release := newRawRequest(s.T(), http.MethodDelete, "/claims/"+created.Claim.Ref, "")
	rr := s.ta.executeRequest(asUser(release, "20"))

	checkErrorResponse(s.T(), rr, http.StatusForbidden)
}

func (s *ClaimHandlersTestSuite) TestReleaseClaim_StaffMayReleaseAnyClaim() {
	s.givenShowtime(7, 5, 5)

	req := newJSONRequest(s.T(), http.MethodPost, "/showtimes/7/claims",
		api.CreateClaimRequest{Row: 2, Column: 2})
	created := decodeJSON[api.ClaimResponse](s.T(), s.ta.executeRequest(asUser(req, "10")))

	release := newRawRequest(s.T(), http.MethodDelete, "/claims/"+created.Claim.Ref, "")
	rr := s.ta.executeRequest(asStaff(release, "99"))

	s.Equal(http.StatusOK, rr.Code)
}

func (s *ClaimHandlersTestSuite) TestReleaseClaim_InvalidRef() {
	release := newRawRequest(s.T(), http.MethodDelete, "/claims/not-a-uuid", "")
	rr := s.ta.executeRequest(asUser(release, "10"))

	checkErrorResponse(s.T(), rr, http.StatusBadRequest)
}

func (s *ClaimHandlersTestSuite) TestReleaseClaim_UnknownRef() {
	release := newRawRequest(s.T(), http.MethodDelete, "/claims/"+uuid.NewString(), "")
	rr := s.ta.executeRequest(asUser(release, "10"))

	checkErrorResponse(s.T(), rr, http.StatusNotFound)
}
