package mocks

import (
	"context"
	"sync"

	"github.com/cinetix/booking-engine/internal/domain"
)

// MockEventPublisher records published events.
type MockEventPublisher struct {
	mu      sync.Mutex
	created []domain.Claim
	freed   []domain.Coordinate
}

func (m *MockEventPublisher) ClaimCreated(_ context.Context, claim *domain.Claim) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.created = append(m.created, *claim)
}

func (m *MockEventPublisher) SeatFreed(_ context.Context, showtimeID int, seat domain.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.freed = append(m.freed, seat)
}

func (m *MockEventPublisher) CreatedEvents() []domain.Claim {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]domain.Claim, len(m.created))
	copy(events, m.created)
	return events
}

func (m *MockEventPublisher) FreedEvents() []domain.Coordinate {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := make([]domain.Coordinate, len(m.freed))
	copy(events, m.freed)
	return events
}
