package mocks

import (
	"context"

	"github.com/opsboard/opsboard-backend/internal/core/domain"
	"github.com/opsboard/opsboard-backend/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockStatsRepository is a mock implementation of ports.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func NewMockStatsRepository() *MockStatsRepository {
	return &MockStatsRepository{}
}

func (m *MockStatsRepository) GetTaskStats(ctx context.Context) (*domain.TaskStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskStats), args.Error(1)
}

// MockEventPublisher is a mock implementation of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Emit(params ports.EmitParams) error {
	args := m.Called(params)
	return args.Error(0)
}
