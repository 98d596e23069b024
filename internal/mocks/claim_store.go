package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/google/uuid"
)

type seatKey struct {
	showtimeID int
	seat       domain.Coordinate
}

// InMemoryClaimStore implements domain.ClaimRepository for tests. It
// honors the store contract: per-seat mutual exclusion in WithSeatTx and
// enforcement of both uniqueness invariants on Create, so engine tests
// exercise the same failure surface as the Postgres store.
type InMemoryClaimStore struct {
	mu     sync.Mutex
	seatMu map[seatKey]*sync.Mutex
	claims map[int]domain.Claim
	nextID int
	now    time.Time
}

func NewInMemoryClaimStore() *InMemoryClaimStore {
	return &InMemoryClaimStore{
		seatMu: make(map[seatKey]*sync.Mutex),
		claims: make(map[int]domain.Claim),
		nextID: 1,
		now:    time.Now(),
	}
}

func (s *InMemoryClaimStore) lockFor(key seatKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.seatMu[key]
	if !ok {
		m = &sync.Mutex{}
		s.seatMu[key] = m
	}

	return m
}

func (s *InMemoryClaimStore) WithSeatTx(
	ctx context.Context,
	showtimeID int,
	seat domain.Coordinate,
	fn func(tx domain.ClaimTx) error,
) error {

	key := seatKey{showtimeID: showtimeID, seat: seat}

	m := s.lockFor(key)
	m.Lock()
	defer m.Unlock()

	return fn(&memClaimTx{store: s, key: key})
}

func (s *InMemoryClaimStore) GetByRef(ctx context.Context, ref uuid.UUID) (*domain.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, claim := range s.claims {
		if claim.Ref == ref {
			c := claim
			return &c, nil
		}
	}

	return nil, domain.ErrRecordNotFound
}

func (s *InMemoryClaimStore) Delete(ctx context.Context, claimID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteLocked(claimID)
}

func (s *InMemoryClaimStore) deleteLocked(claimID int) error {
	if _, ok := s.claims[claimID]; !ok {
		return domain.ErrRecordNotFound
	}

	delete(s.claims, claimID)
	return nil
}

func (s *InMemoryClaimStore) ActiveSeatsByShowtime(ctx context.Context, showtimeID int) ([]domain.Coordinate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seats := make([]domain.Coordinate, 0)
	for _, claim := range s.claims {
		if claim.ShowtimeID == showtimeID && claim.Status == domain.ClaimActive {
			seats = append(seats, claim.Seat)
		}
	}

	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Col < seats[j].Col
	})

	return seats, nil
}

func (s *InMemoryClaimStore) ClaimsByUser(ctx context.Context, userID, showtimeID int) ([]domain.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims := make([]domain.Claim, 0)
	for _, claim := range s.claims {
		if claim.UserID != userID {
			continue
		}
		if showtimeID != 0 && claim.ShowtimeID != showtimeID {
			continue
		}

		claims = append(claims, claim)
	}

	sort.Slice(claims, func(i, j int) bool {
		if !claims[i].CreatedAt.Equal(claims[j].CreatedAt) {
			return claims[i].CreatedAt.Before(claims[j].CreatedAt)
		}
		return claims[i].ID < claims[j].ID
	})

	return claims, nil
}

// ClaimsAt returns the current claim set of a seat, for assertions.
func (s *InMemoryClaimStore) ClaimsAt(showtimeID int, seat domain.Coordinate) *domain.SeatClaims {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.claimsAtLocked(seatKey{showtimeID: showtimeID, seat: seat})
}

func (s *InMemoryClaimStore) claimsAtLocked(key seatKey) *domain.SeatClaims {
	seatClaims := &domain.SeatClaims{Reserved: make([]domain.Claim, 0)}

	ids := make([]int, 0)
	for id := range s.claims {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		claim := s.claims[id]
		if claim.ShowtimeID != key.showtimeID || claim.Seat != key.seat {
			continue
		}

		if claim.Status == domain.ClaimActive {
			active := claim
			seatClaims.Active = &active
		} else {
			seatClaims.Reserved = append(seatClaims.Reserved, claim)
		}
	}

	sort.Slice(seatClaims.Reserved, func(i, j int) bool {
		a, b := seatClaims.Reserved[i], seatClaims.Reserved[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return seatClaims
}

// Seed inserts a claim directly, bypassing invariant checks, and returns
// it with its assigned ID.
func (s *InMemoryClaimStore) Seed(claim domain.Claim) domain.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()

	if claim.Ref == uuid.Nil {
		claim.Ref = uuid.New()
	}
	if claim.CreatedAt.IsZero() {
		s.now = s.now.Add(time.Millisecond)
		claim.CreatedAt = s.now
	}

	claim.ID = s.nextID
	s.nextID++
	s.claims[claim.ID] = claim

	return claim
}

type memClaimTx struct {
	store *InMemoryClaimStore
	key   seatKey
}

func (t *memClaimTx) ClaimsBySeat(ctx context.Context) (*domain.SeatClaims, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	return t.store.claimsAtLocked(t.key), nil
}

func (t *memClaimTx) Create(ctx context.Context, claim *domain.Claim) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	current := t.store.claimsAtLocked(t.key)

	if claim.Status == domain.ClaimActive && current.Active != nil {
		return domain.ErrClaimConflict
	}

	if current.Active != nil && current.Active.UserID == claim.UserID {
		return domain.ErrDuplicateClaim
	}
	for _, reserved := range current.Reserved {
		if reserved.UserID == claim.UserID {
			return domain.ErrDuplicateClaim
		}
	}

	t.store.now = t.store.now.Add(time.Millisecond)
	claim.ID = t.store.nextID
	claim.CreatedAt = t.store.now
	t.store.nextID++
	t.store.claims[claim.ID] = *claim

	return nil
}

func (t *memClaimTx) Delete(ctx context.Context, claimID int) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	return t.store.deleteLocked(claimID)
}
