package mocks

import (
	"context"

	"github.com/cinetix/booking-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockFilmRepo struct {
	mock.Mock
	domain.FilmRepository
}

func (m *MockFilmRepo) GetAll(ctx context.Context) ([]domain.Film, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Film), args.Error(1)
}
