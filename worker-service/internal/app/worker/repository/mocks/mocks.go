package mocks

import (
	"context"
	"time"

	"brisamarket/worker-service/internal/app/worker/entity"

	"github.com/stretchr/testify/mock"
)

// MockOrderRepository мок репозитория заказов
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetExpiredPending(ctx context.Context, olderThan time.Time) ([]entity.Order, error) {
	args := m.Called(ctx, olderThan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Order), args.Error(1)
}

func (m *MockOrderRepository) CancelAndRestock(ctx context.Context, order *entity.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockCartRepository мок репозитория корзин
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) ClearStaleItems(ctx context.Context, idleSince time.Time) (int, error) {
	args := m.Called(ctx, idleSince)
	return args.Int(0), args.Error(1)
}

// MockStatsRepository мок репозитория статистики
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Create(ctx context.Context, stat *entity.OrderStatistic) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

// MockProductCache мок кеша каталога
type MockProductCache struct {
	mock.Mock
}

func (m *MockProductCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
