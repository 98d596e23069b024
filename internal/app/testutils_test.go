package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cinetix/booking-engine/api"
	"github.com/cinetix/booking-engine/internal/booking"
	"github.com/cinetix/booking-engine/internal/mocks"
	appvalidator "github.com/cinetix/booking-engine/internal/validator"
	"github.com/stretchr/testify/require"
)

// testApplication bundles an Application running on in-memory collaborators
// with the doubles the tests script and inspect.
type testApplication struct {
	app      *Application
	store    *mocks.InMemoryClaimStore
	registry *mocks.MockShowtimeRegistry
	sink     *mocks.MockNotificationSink
	events   *mocks.MockEventPublisher
	films    *mocks.MockFilmRepo
}

func newTestApplication() *testApplication {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := mocks.NewInMemoryClaimStore()
	registry := new(mocks.MockShowtimeRegistry)
	sink := mocks.NewMockNotificationSink()
	events := new(mocks.MockEventPublisher)
	films := new(mocks.MockFilmRepo)

	notifier := booking.NewReleaseNotifier(store, sink, logger)
	engine := booking.NewEngine(store, registry, notifier, events, logger)

	app := &Application{
		config: Config{
			Env:       "test",
			RateLimit: RateLimitConfig{Enabled: false},
		},
		logger:    logger,
		validator: appvalidator.NewValidator(),
		engine:    engine,
		claimRepo: store,
		filmRepo:  films,
		showtimes: registry,
	}

	return &testApplication{
		app:      app,
		store:    store,
		registry: registry,
		sink:     sink,
		events:   events,
		films:    films,
	}
}

func (ta *testApplication) executeRequest(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	ta.app.Routes().ServeHTTP(rr, req)
	return rr
}

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	return req
}

func newRawRequest(t *testing.T, method, target, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	req.Header.Set("X-User-ID", userID)
	return req
}

func asStaff(req *http.Request, userID string) *http.Request {
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("X-User-Role", "staff")
	return req
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	err := json.NewDecoder(rr.Body).Decode(&v)
	require.NoError(t, err)

	return v
}

func checkErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, wantStatus int) api.ErrorResponse {
	t.Helper()

	require.Equal(t, wantStatus, rr.Code)

	resp := decodeJSON[api.ErrorResponse](t, rr)
	require.NotEmpty(t, resp.Message)

	return resp
}
