package mocks

import (
	"context"
	"sync"

	"github.com/cinetix/booking-engine/internal/domain"
)

// NotifyCall records one delivery attempt handed to the sink.
type NotifyCall struct {
	UserID     int
	Seat       domain.Coordinate
	ShowtimeID int
}

// MockNotificationSink scripts delivery outcomes per user. Unscripted
// users are confirmed delivered.
type MockNotificationSink struct {
	mu    sync.Mutex
	calls []NotifyCall

	// Undelivered lists users whose sends return (false, nil).
	Undelivered map[int]bool
	// Errors maps users to a transport error.
	Errors map[int]error
}

func NewMockNotificationSink() *MockNotificationSink {
	return &MockNotificationSink{
		Undelivered: make(map[int]bool),
		Errors:      make(map[int]error),
	}
}

func (m *MockNotificationSink) Notify(ctx context.Context, userID int, seat domain.Coordinate, showtimeID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, NotifyCall{UserID: userID, Seat: seat, ShowtimeID: showtimeID})

	if err, ok := m.Errors[userID]; ok {
		return false, err
	}
	if m.Undelivered[userID] {
		return false, nil
	}

	return true, nil
}

func (m *MockNotificationSink) Calls() []NotifyCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]NotifyCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}
